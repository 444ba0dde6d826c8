package domain

const (
	FieldName         = "name"
	FieldDetails      = "details"
	FieldPrice        = "price"
	FieldCategory     = "type"
	FieldSize         = "size"
	FieldProductImage = "productImage"
)

// EditBuffer is the scratch copy of a record's editable fields. It doubles as the
// PUT body, so its JSON shape matches Product.
type EditBuffer struct {
	Name         string `json:"name"`
	Details      string `json:"details"`
	Price        Price  `json:"price"`
	Category     string `json:"type,omitempty"`
	Size         string `json:"size,omitempty"`
	ProductImage string `json:"productImage,omitempty"`
}

func BufferFrom(p Product) EditBuffer {
	return EditBuffer{
		Name:         p.Name,
		Details:      p.Details,
		Price:        p.Price,
		Category:     p.Category,
		Size:         p.Size,
		ProductImage: p.ProductImage,
	}
}

// Set assigns one field. Fields outside the variant are rejected.
func (b *EditBuffer) Set(v Variant, field, value string) error {
	allowed := false
	for _, f := range v.EditableFields() {
		if f == field {
			allowed = true
			break
		}
	}
	if !allowed {
		return ErrUnknownField
	}

	switch field {
	case FieldName:
		b.Name = value
	case FieldDetails:
		b.Details = value
	case FieldPrice:
		b.Price = Price(value)
	case FieldCategory:
		b.Category = value
	case FieldSize:
		b.Size = value
	case FieldProductImage:
		b.ProductImage = value
	}
	return nil
}

// ApplyTo shallow-merges the buffer over p: every editable field of the variant is overwritten.
func (b EditBuffer) ApplyTo(v Variant, p Product) Product {
	p.Name = b.Name
	p.Details = b.Details
	p.Price = b.Price
	p.ProductImage = b.ProductImage
	if v.HasCategories() {
		p.Category = b.Category
		p.Size = b.Size
	}
	return p
}

// EditState is either Idle or Editing. Only one row can be in the Editing state.
type EditState interface {
	isEditState()
}

type Idle struct{}

type Editing struct {
	TargetID int64      `json:"target_id"`
	Buffer   EditBuffer `json:"buffer"`
}

func (Idle) isEditState()    {}
func (Editing) isEditState() {}
