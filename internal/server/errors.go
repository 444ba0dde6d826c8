package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/railzwaylabs/catalogadmin/internal/catalog/domain"
)

// APIError is the error body returned by the admin API.
type APIError struct {
	Status  int      `json:"-"`
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Field   string   `json:"field,omitempty"`
	Missing []string `json:"missing,omitempty"`
}

func (e *APIError) Error() string { return e.Code + ": " + e.Message }

var (
	ErrInvalidRequest = &APIError{Status: http.StatusBadRequest, Code: "invalid_request", Message: "invalid request"}
	ErrInternal       = &APIError{Status: http.StatusInternalServerError, Code: "internal_error", Message: "internal error"}
)

func invalidRequestError() error { return ErrInvalidRequest }

func newValidationError(field, code, message string) error {
	return &APIError{Status: http.StatusBadRequest, Code: code, Message: message, Field: field}
}

// AbortWithError writes err as the response, along with any notices the engine raised
// before failing.
func AbortWithError(c *gin.Context, err error) {
	apiErr := toAPIError(err)
	if apiErr.Status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(apiErr.Status, gin.H{
		"error":   apiErr,
		"notices": noticesFrom(c),
	})
}

func toAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var (
		verr *domain.ValidationError
		cerr *domain.ChoiceError
	)
	switch {
	case errors.As(err, &cerr):
		return &APIError{
			Status:  http.StatusBadRequest,
			Code:    "invalid_" + cerr.Field,
			Message: cerr.Field + " must be one of " + strings.Join(cerr.Allowed, ", "),
			Field:   cerr.Field,
		}
	case errors.As(err, &verr):
		return &APIError{
			Status:  http.StatusUnprocessableEntity,
			Code:    domain.ErrValidation.Error(),
			Message: "All fields are required!",
			Missing: verr.Missing,
		}
	case errors.Is(err, domain.ErrNotFound):
		return &APIError{Status: http.StatusNotFound, Code: err.Error(), Message: "product not found"}
	case errors.Is(err, domain.ErrNotEditing):
		return &APIError{Status: http.StatusConflict, Code: err.Error(), Message: "no product is being edited"}
	case errors.Is(err, domain.ErrNotConfirmed):
		return &APIError{Status: http.StatusConflict, Code: err.Error(), Message: "deletion was not confirmed"}
	case errors.Is(err, domain.ErrUnknownField):
		return &APIError{Status: http.StatusBadRequest, Code: err.Error(), Message: "field is not editable"}
	default:
		return ErrInternal
	}
}
