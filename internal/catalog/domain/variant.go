package domain

import (
	"fmt"
	"slices"
	"strings"
)

// Variant selects which flavour of the admin panel the engine serves.
//
// The full variant carries category and size, and always attempts remote deletes.
// The simple variant has neither, and tracks whether each record came from the API.
type Variant string

const (
	VariantFull   Variant = "full"
	VariantSimple Variant = "simple"
)

func ParseVariant(s string) (Variant, error) {
	switch Variant(strings.ToLower(strings.TrimSpace(s))) {
	case "", VariantFull:
		return VariantFull, nil
	case VariantSimple:
		return VariantSimple, nil
	default:
		return "", fmt.Errorf("unknown catalog variant %q", s)
	}
}

func (v Variant) HasCategories() bool { return v != VariantSimple }

func (v Variant) TracksOrigin() bool { return v == VariantSimple }

// EditableFields lists the buffer fields that ChangeEdit accepts for this variant.
func (v Variant) EditableFields() []string {
	if v.HasCategories() {
		return []string{FieldName, FieldDetails, FieldPrice, FieldCategory, FieldSize, FieldProductImage}
	}
	return []string{FieldName, FieldDetails, FieldPrice, FieldProductImage}
}

// RequiredFields lists the create fields that must be present.
func (v Variant) RequiredFields() []string {
	return v.EditableFields()
}

// ChoiceError reports a category or size outside its allowed values.
type ChoiceError struct {
	Field   string
	Value   string
	Allowed []string
}

func (e *ChoiceError) Error() string {
	return fmt.Sprintf("%s %q must be one of %s", e.Field, e.Value, strings.Join(e.Allowed, ", "))
}

// CheckChoices rejects a category or size outside the allowed values. Empty values
// are left to the required-field check, and variants without categories ignore both.
func (v Variant) CheckChoices(category, size string) error {
	if !v.HasCategories() {
		return nil
	}
	if category != "" && !slices.Contains(Categories, category) {
		return &ChoiceError{Field: FieldCategory, Value: category, Allowed: Categories}
	}
	if size != "" && !slices.Contains(Sizes, size) {
		return &ChoiceError{Field: FieldSize, Value: size, Allowed: Sizes}
	}
	return nil
}
