package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/havenhome/haven-core/internal/auth"
	"github.com/havenhome/haven-core/internal/device"
	"github.com/havenhome/haven-core/internal/room"
	"github.com/havenhome/haven-core/internal/rule"
	"github.com/havenhome/haven-core/internal/scene"
)

// Error represents a structured error response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes.
const (
	ErrCodeBadRequest     = "bad_request"
	ErrCodeNotFound       = "not_found"
	ErrCodeUnauthorized   = "unauthorised"
	ErrCodeConflict       = "conflict"
	ErrCodeInternal       = "internal_error"
	ErrCodeNotImplemented = "not_implemented"
)

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{
		Status:  status,
		Code:    code,
		Message: message,
	})
}

// writeBadRequest writes a 400 error response.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// writeNotFound writes a 404 error response.
func writeNotFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

// writeUnauthorized writes a 401 error response.
func writeUnauthorized(w http.ResponseWriter, message string) {
	writeError(w, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

// writeInternalError writes a 500 error response. The message is always
// generic; internal detail stays in the logs.
func writeInternalError(w http.ResponseWriter) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, "internal server error")
}

// validationErrors are domain errors that map to a 400 response.
var validationErrors = []error{
	room.ErrInvalidName,
	device.ErrInvalidName,
	device.ErrInvalidType,
	device.ErrInvalidStatus,
	scene.ErrInvalidName,
	scene.ErrInvalidBinding,
	scene.ErrUnknownTemplate,
	rule.ErrInvalidName,
	auth.ErrInvalidUsername,
	auth.ErrInvalidPassword,
}

// notFoundErrors are domain errors that map to a 404 response. Ownership
// violations land here too: a foreign resource is indistinguishable from
// a missing one.
var notFoundErrors = []error{
	room.ErrNotFound,
	device.ErrNotFound,
	scene.ErrNotFound,
	scene.ErrDeviceNotFound,
	rule.ErrNotFound,
	auth.ErrUserNotFound,
	auth.ErrNotOwner,
}

// writeDomainError maps a domain error onto the HTTP error taxonomy.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			writeNotFound(w, "resource not found")
			return
		}
	}
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			writeBadRequest(w, err.Error())
			return
		}
	}
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrTokenInvalid):
		writeUnauthorized(w, "invalid credentials")
	case errors.Is(err, scene.ErrNotImplemented):
		writeError(w, http.StatusNotImplemented, ErrCodeNotImplemented, "not implemented")
	case errors.Is(err, device.ErrConflict):
		writeError(w, http.StatusConflict, ErrCodeConflict, "concurrent modification, retry")
	default:
		s.logger.Error("request failed",
			"method", r.Method, "path", r.URL.Path, "error", err,
			"request_id", r.Context().Value(ctxKeyRequestID))
		writeInternalError(w)
	}
}
