package handler

// RESPONSE HELPERS:
// Every handler answers through writeJSON or writeError, so all responses
// share one shape.
//
// ERROR FORMAT:
// Every error body is {"detail": "..."}. The client shows detail verbatim,
// so the message must already be something a user can read:
//
//	{"detail": "User not found"}
//	{"detail": "No changes made"}

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sakif/health-diary/internal/apperror"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// MessageResponse is the body of responses that only confirm an action.
type MessageResponse struct {
	Message string `json:"message"`
}

// writeJSON sends data as JSON with the given status.
// Headers must be set before WriteHeader; anything set afterwards is ignored.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; logging is all that is left.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a service error to a status code and a {"detail"} body.
//
// ERROR MAPPING:
//
//	ErrNotFound                  → 404
//	ErrConflict, ErrValidation   → 400
//	ErrUnavailable               → 503
//	other *AppError              → 500 with its message
//	anything else                → 500 with a generic message
//
// Conflict is 400 rather than 409 because that is what existing clients of
// this API expect for "Username already exists".
//
// 5xx responses are logged at Error with the full error chain.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		logger.Error("unexpected handler error", slog.String("error", err.Error()))
		// Raw errors may carry SQL or file paths; never echo them.
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Detail: "An internal error occurred"})
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperror.ErrConflict), errors.Is(err, apperror.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, apperror.ErrUnavailable):
		status = http.StatusServiceUnavailable
	}

	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			slog.Int("status", status),
			slog.String("error", err.Error()),
		)
	}
	writeJSON(w, status, ErrorResponse{Detail: appErr.Message})
}

// decodeJSON reads the request body into v. A malformed body is a
// validation error so it comes back as 400.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperror.ValidationFailed("body", "Invalid JSON body: "+err.Error())
	}
	return nil
}

// queryLimit reads the optional ?limit= parameter. Missing means 0, which
// the services turn into their default.
func queryLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apperror.ValidationFailed("limit", "limit must be a non-negative integer")
	}
	return n, nil
}
