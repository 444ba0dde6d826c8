package domain

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Product is a catalog record as rendered by the admin surfaces and stored in the cache.
// Category is carried on the wire as "type" to stay compatible with the product API.
type Product struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Details      string `json:"details"`
	Price        Price  `json:"price"`
	Category     string `json:"type,omitempty"`
	Size         string `json:"size,omitempty"`
	ProductImage string `json:"productImage,omitempty"`
	FromAPI      bool   `json:"isFromAPI,omitempty"`
}

// Price is the form value of a product price. The API sends numbers, the form sends text.
type Price string

func (p Price) String() string { return string(p) }

func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = Price(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*p = Price(n.String())
	return nil
}

const (
	CategoryCream  = "cream"
	CategoryIce    = "ice"
	CategoryYogurt = "yogurt"

	SizeBulk   = "bulk"
	SizeSingle = "single"
)

var (
	Categories = []string{CategoryCream, CategoryIce, CategoryYogurt}
	Sizes      = []string{SizeBulk, SizeSingle}
)

// ImageURL resolves a persisted image reference against the API base URL.
func (p Product) ImageURL(baseURL string) string {
	ref := strings.TrimSpace(p.ProductImage)
	if ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(ref, "/")
}

// ImageUpload is a pending binary upload attached to a create request.
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

type CreateRequest struct {
	Name     string
	Details  string
	Price    Price
	Category string
	Size     string
	Image    *ImageUpload

	// IdempotencyKey is forwarded to the API; a fresh key is generated when empty.
	IdempotencyKey string
}

// Outcome tells which path a mutation took.
type Outcome string

const (
	OutcomeSyncedRemote Outcome = "synced_remote"
	OutcomeLocalOnly    Outcome = "local_only"
)

type Result struct {
	Outcome Outcome  `json:"outcome"`
	Product *Product `json:"product,omitempty"`
}
