package handler

// RESPONSE HELPERS:
// Every JSON response goes through writeJSON, every failure through
// writeError or writeValidation, so the API has exactly one error shape:
//
//	{"error": "conflict", "message": "User already exist"}
//	{"error": "validation_error", "message": "...", "fields": {"email": "..."}}
//
// The frontend can always read "message" for a toast and "fields" for
// per-input hints.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/binamite/internal/apperror"
	"github.com/sakif/binamite/internal/validation"
)

// ErrorResponse is the standard error format returned by all API endpoints.
type ErrorResponse struct {
	Error   string            `json:"error"`            // Machine-readable error type (e.g., "conflict")
	Message string            `json:"message"`          // Human-readable description
	Fields  map[string]string `json:"fields,omitempty"` // Per-field validation messages
	Next    string            `json:"next,omitempty"`   // Page the client should go to, if any
}

// writeJSON sends a JSON response with the given status code.
// Headers and status must be written before the body.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// headers are gone already, all we can do is log
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a service error to an HTTP status and sends it.
//
// The service layer knows nothing about HTTP. It returns errors wrapping
// apperror sentinels; errors.Is walks the chain to find which one.
// Anything unrecognised becomes a generic 500 so internal details never
// reach the client.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		errorType := "internal_error"

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
			errorType = "validation_error"
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
			errorType = "not_found"
		case errors.Is(err, apperror.ErrUnauthorized):
			status = http.StatusUnauthorized
			errorType = "unauthorized"
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusConflict
			errorType = "conflict"
		}

		resp := ErrorResponse{
			Error:   errorType,
			Message: appErr.Message,
		}
		if appErr.Field != "" {
			resp.Fields = map[string]string{appErr.Field: appErr.Message}
		}
		if status == http.StatusUnauthorized {
			resp.Next = PathLanding
		}
		writeJSON(w, status, resp)
		return
	}

	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}

// writeValidation sends 400 with one message per invalid form field.
func writeValidation(w http.ResponseWriter, errs validation.Errors) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{
		Error:   "validation_error",
		Message: "Please fix the highlighted fields",
		Fields:  errs,
	})
}

// decodeJSON reads a JSON body of at most maxBodyBytes into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperror.ValidationFailed("", "Invalid JSON body")
	}
	return nil
}

const maxBodyBytes = 1 << 20
