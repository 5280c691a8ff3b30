package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/studyflow/intelligence-api/internal/domain/srs"
	"github.com/studyflow/intelligence-api/internal/service"
	"github.com/studyflow/intelligence-api/internal/service/auth"
	"github.com/studyflow/intelligence-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// leaking internal error types or messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrWrongTokenType):
		return http.StatusUnauthorized

	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, service.ErrNoSessionData),
		errors.Is(err, service.ErrNoReviewData):
		return http.StatusNotFound

	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	case errors.Is(err, srs.ErrInvalidInput):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly message for the
// error.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"

	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid token"

	case errors.Is(err, store.ErrReviewNotFound):
		return "No review data found for this topic"

	case errors.Is(err, store.ErrSessionNotFound):
		return "Study session not found"

	case errors.Is(err, store.ErrTopicNotFound):
		return "Topic not found"

	case errors.Is(err, service.ErrNoSessionData):
		return "No study sessions found"

	case errors.Is(err, service.ErrNoReviewData):
		return "No completed reviews found"

	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	case errors.Is(err, store.ErrDuplicate):
		return "Resource already exists"

	// Scheduling validation errors carry only field bounds, which are safe
	// to show.
	case errors.Is(err, srs.ErrInvalidInput):
		return err.Error()

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError turns a validator error into a user-friendly
// message without echoing request contents back.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	if strings.Contains(errMsg, "Field validation") {
		// Example: "Key: 'NextReviewRequest.Quality' Error:Field validation
		// for 'Quality' failed on the 'max' tag"
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
					return fmt.Sprintf("Invalid %s: %s", field, validationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

func validationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min", "gte":
		return "value too small"
	case "max", "lte":
		return "value too large"
	case "uuid":
		return "invalid UUID format"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}
