package domain

import (
	"context"
	"errors"
	"strings"
)

type Service interface {
	// Load reconciles the remote list with the cache and returns the visible list.
	Load(ctx context.Context) ([]Product, error)
	// List returns the cached list without contacting the API.
	List(ctx context.Context) ([]Product, error)
	Create(ctx context.Context, req CreateRequest) (Result, error)
	Delete(ctx context.Context, id int64) (Result, error)

	BeginEdit(ctx context.Context, id int64) (Editing, error)
	ChangeEdit(ctx context.Context, field, value string) (Editing, error)
	SaveEdit(ctx context.Context) (Result, error)
	CancelEdit(ctx context.Context) error
	EditState(ctx context.Context) EditState

	Variant() Variant
}

var (
	ErrValidation        = errors.New("validation_failed")
	ErrRemoteUnavailable = errors.New("remote_unavailable")
	ErrNotFound          = errors.New("not_found")
	ErrNotEditing        = errors.New("not_editing")
	ErrUnknownField      = errors.New("unknown_field")
	ErrNotConfirmed      = errors.New("not_confirmed")
)

// ValidationError lists the required fields that were empty.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Missing, ", ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }
