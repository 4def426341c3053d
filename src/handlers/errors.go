package handlers

import (
	"errors"
	"net/http"

	"github.com/username/fintrack/backend/src/models"
)

// statusForError maps service error kinds to HTTP statuses. Unknown errors
// are treated as internal; the caller must not assume any side effect
// occurred.
func statusForError(err error) int {
	switch {
	case errors.Is(err, models.ErrAccountNotFound),
		errors.Is(err, models.ErrTransactionNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrDuplicateCategory),
		errors.Is(err, models.ErrDuplicateItem):
		return http.StatusConflict
	case errors.Is(err, models.ErrInvalidAmount),
		errors.Is(err, models.ErrSameAccount),
		errors.Is(err, models.ErrEmptyName),
		errors.Is(err, models.ErrUnknownCategory):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrUnauthenticated):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
