package export

import (
	"fmt"
	"io"

	"github.com/railzwaylabs/catalogadmin/internal/catalog/domain"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const SheetName = "Products"

// WriteXLSX renders the catalog as a spreadsheet. Prices that parse as decimals are
// written as numbers; anything else is kept as the text the operator typed.
func WriteXLSX(w io.Writer, products []domain.Product, variant domain.Variant, imageBaseURL string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return err
	}

	headers := []string{"ID", "Name", "Details", "Price"}
	if variant.HasCategories() {
		headers = append(headers, "Type", "Size")
	}
	headers = append(headers, "Image")
	if variant.TracksOrigin() {
		headers = append(headers, "From API")
	}
	if err := f.SetSheetRow(SheetName, "A1", &headers); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetName, "A1", last, bold); err != nil {
		return err
	}

	for i, p := range products {
		row := []any{p.ID, p.Name, p.Details, priceCell(p.Price)}
		if variant.HasCategories() {
			row = append(row, p.Category, p.Size)
		}
		row = append(row, p.ImageURL(imageBaseURL))
		if variant.TracksOrigin() {
			row = append(row, p.FromAPI)
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	_, err = f.WriteTo(w)
	return err
}

func priceCell(p domain.Price) any {
	d, err := decimal.NewFromString(p.String())
	if err != nil {
		return p.String()
	}
	v, _ := d.Float64()
	return v
}
