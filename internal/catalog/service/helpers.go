package service

import (
	"strings"

	"github.com/railzwaylabs/catalogadmin/internal/catalog/domain"
	"go.uber.org/zap"
)

// mergeProducts appends cached records whose id the remote list does not contain,
// then renumbers the result positionally from 1. Remote records win on id collisions.
func mergeProducts(remote, cached []domain.Product, log *zap.Logger) []domain.Product {
	remoteIDs := make(map[int64]struct{}, len(remote))
	for _, p := range remote {
		remoteIDs[p.ID] = struct{}{}
	}

	merged := make([]domain.Product, 0, len(remote)+len(cached))
	for _, p := range remote {
		p.FromAPI = true
		merged = append(merged, p)
	}
	for _, p := range cached {
		if _, dup := remoteIDs[p.ID]; dup {
			log.Debug("cached product shadowed by remote", zap.Int64("id", p.ID))
			continue
		}
		merged = append(merged, p)
	}

	for i := range merged {
		merged[i].ID = int64(i + 1)
	}
	return merged
}

func nextID(products []domain.Product) int64 {
	var maxID int64
	for _, p := range products {
		if p.ID > maxID {
			maxID = p.ID
		}
	}
	return maxID + 1
}

func findProduct(products []domain.Product, id int64) (domain.Product, bool) {
	for _, p := range products {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

func removeProduct(products []domain.Product, id int64) []domain.Product {
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if p.ID != id {
			out = append(out, p)
		}
	}
	return out
}

// overlayCreated copies the non-empty fields of the server's answer over the local record.
// The id stays in the local numbering.
func overlayCreated(record domain.Product, created *domain.Product) domain.Product {
	if created == nil {
		return record
	}
	if v := strings.TrimSpace(created.Name); v != "" {
		record.Name = created.Name
	}
	if v := strings.TrimSpace(created.Details); v != "" {
		record.Details = created.Details
	}
	if v := strings.TrimSpace(string(created.Price)); v != "" {
		record.Price = created.Price
	}
	if v := strings.TrimSpace(created.Category); v != "" {
		record.Category = created.Category
	}
	if v := strings.TrimSpace(created.Size); v != "" {
		record.Size = created.Size
	}
	if v := strings.TrimSpace(created.ProductImage); v != "" {
		record.ProductImage = created.ProductImage
	}
	return record
}
