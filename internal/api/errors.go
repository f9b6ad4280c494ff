package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/lexcram/recall-api/internal/domain"
	"github.com/lexcram/recall-api/internal/service/auth"
	"github.com/lexcram/recall-api/internal/service/review"
	"github.com/lexcram/recall-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// leaking internal error types or messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized

	// Not found errors
	case errors.Is(err, review.ErrSessionNotFound),
		errors.Is(err, store.ErrCardNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors: the request is well-formed but illegal in the
	// session's current state
	case errors.Is(err, review.ErrSessionComplete),
		errors.Is(err, review.ErrAnswerNotRevealed):
		return http.StatusConflict

	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, domain.ErrInvalidQuality),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// Special cases
	case errors.Is(err, review.ErrNoCardsDue):
		return http.StatusNoContent

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly message for the
// given error.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"

	// Not found errors
	case errors.Is(err, review.ErrSessionNotFound):
		return "Review session not found"

	case errors.Is(err, store.ErrCardNotFound):
		return "Card not found"

	case errors.Is(err, store.ErrNotFound):
		return "Not found"

	// Conflict errors
	case errors.Is(err, review.ErrSessionComplete):
		return "Review session is already complete"

	case errors.Is(err, review.ErrAnswerNotRevealed):
		return "Reveal the answer before grading"

	case errors.Is(err, store.ErrDuplicate):
		return "Card already exists"

	// Bad request errors
	case errors.Is(err, domain.ErrInvalidQuality):
		return "Quality grade must be between 0 and 5"

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return "Invalid card data"

	// No cards due is handled separately with StatusNoContent

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError turns a validator error into a user-friendly
// message without echoing request contents back.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	if strings.Contains(errMsg, "Field validation") {
		// Example: "Key: 'GradeRequest.Quality' Error:Field validation for
		// 'Quality' failed on the 'max' tag"
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}
				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly messages.
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min":
		return "too small"
	case "max":
		return "too large"
	case "oneof":
		return "invalid value"
	case "dive":
		return "invalid entry"
	default:
		return "validation failed"
	}
}
