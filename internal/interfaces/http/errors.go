package http

import (
	"errors"
	"net/http"

	"github.com/garyjia/leave-approval/internal/domain/entity"
)

// Error codes returned in Response.Code
const (
	CodeValidation          = "VALIDATION"
	CodeConflict            = "CONFLICT"
	CodeNotFound            = "NOT_FOUND"
	CodeInvalidState        = "INVALID_STATE"
	CodeInsufficientBalance = "INSUFFICIENT_BALANCE"
	CodeInternal            = "INTERNAL"
	CodeRateLimited         = "RATE_LIMITED"
)

// errorStatus maps a business error kind to its HTTP status and code.
// Anything unrecognised is an internal error.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, entity.ErrValidation):
		return http.StatusBadRequest, CodeValidation
	case errors.Is(err, entity.ErrNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, entity.ErrConflict):
		return http.StatusConflict, CodeConflict
	case errors.Is(err, entity.ErrInvalidState):
		return http.StatusConflict, CodeInvalidState
	case errors.Is(err, entity.ErrInsufficientBalance):
		return http.StatusUnprocessableEntity, CodeInsufficientBalance
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}
