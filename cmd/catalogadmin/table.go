package main

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/railzwaylabs/catalogadmin/internal/catalog/domain"
)

func renderProducts(w io.Writer, products []domain.Product, variant domain.Variant, imageBaseURL string) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)

	header := table.Row{"ID", "Name", "Details", "Price"}
	if variant.HasCategories() {
		header = append(header, "Type", "Size")
	}
	header = append(header, "Image")
	if variant.TracksOrigin() {
		header = append(header, "Synced")
	}
	t.AppendHeader(header)

	for _, p := range products {
		row := table.Row{p.ID, p.Name, p.Details, p.Price.String()}
		if variant.HasCategories() {
			row = append(row, p.Category, p.Size)
		}
		row = append(row, p.ImageURL(imageBaseURL))
		if variant.TracksOrigin() {
			synced := text.FgYellow.Sprint("local")
			if p.FromAPI {
				synced = text.FgGreen.Sprint("api")
			}
			row = append(row, synced)
		}
		t.AppendRow(row)
	}
	t.AppendFooter(table.Row{"", "Total", len(products)})
	t.Render()
}
