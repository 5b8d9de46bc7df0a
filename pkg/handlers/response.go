// Package handlers contains the HTTP surface of makerfolio-api:
// net/http ServeMux handlers with method patterns, JSON bodies, and a
// uniform mapping from the apperrors taxonomy to status codes.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/makerfolio/makerfolio-api/pkg/apperrors"
)

// ErrorResponse writes a JSON error response and returns any encoding error.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(map[string]string{
		"error":   errorCode,
		"message": message,
	})
}

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}

// RespondServiceError maps a service error onto the documented status
// codes. Taxonomy errors carry their reason to the caller; anything
// else is a 500 with a generic message and the detail logged only.
func RespondServiceError(w http.ResponseWriter, logger *zap.Logger, err error, fallback string) {
	var status int
	var code string
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, apperrors.ErrForbidden):
		status, code = http.StatusForbidden, "forbidden"
	case errors.Is(err, apperrors.ErrConflict):
		status, code = http.StatusConflict, "conflict"
	case errors.Is(err, apperrors.ErrInvalid):
		status, code = http.StatusBadRequest, "invalid"
	default:
		logger.Error(fallback, zap.Error(err))
		if respErr := ErrorResponse(w, http.StatusInternalServerError, "internal_error", fallback); respErr != nil {
			logger.Error("Failed to write error response", zap.Error(respErr))
		}
		return
	}

	if err := ErrorResponse(w, status, code, reasonOf(err)); err != nil {
		logger.Error("Failed to write error response", zap.Error(err))
	}
}

// reasonOf strips the sentinel prefix ("forbidden: ", "invalid: ")
// from a wrapped taxonomy error, leaving the human-readable reason.
func reasonOf(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, ": "); i >= 0 {
		return msg[i+2:]
	}
	return msg
}
