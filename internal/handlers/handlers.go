// Package handlers exposes the HTTP surface. Handlers translate between
// request events and the services; no settlement or lifecycle rule lives
// here.
package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/pocketbase/pocketbase/apis"

	"planify/internal/auth"
	"planify/internal/status"
)

// apiError maps a service error to the matching API error response.
func apiError(err error) error {
	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		return apis.NewUnauthorizedError("Unauthorized", nil)
	case errors.Is(err, auth.ErrForbidden):
		return apis.NewForbiddenError("Access denied", nil)
	case errors.Is(err, status.ErrNotFound), errors.Is(err, sql.ErrNoRows):
		return apis.NewNotFoundError("Not found", err)
	case errors.Is(err, status.ErrInvalidInput),
		errors.Is(err, status.ErrMalformedCallback),
		errors.Is(err, status.ErrOrderMismatch):
		return apis.NewBadRequestError(err.Error(), nil)
	case errors.Is(err, status.ErrInvalidTransition):
		return apis.NewApiError(http.StatusConflict, err.Error(), nil)
	case errors.Is(err, status.ErrGatewayUnavailable), errors.Is(err, status.ErrGatewayFetch):
		return apis.NewApiError(http.StatusBadGateway, "Payment gateway unavailable", nil)
	default:
		return apis.NewApiError(http.StatusInternalServerError, "Something went wrong", nil)
	}
}
