// Package apperror defines the error kinds shared by the client and the
// reference collaborator.
//
// THREE CLIENT-SIDE KINDS:
//   - Validation: a required field is missing or malformed. Raised before any
//     network call, so nothing was sent.
//   - Transport:  the request never produced a usable answer (network down,
//     body that isn't the JSON we expect). There is no structured reason.
//   - Rejected:   the collaborator answered with a non-2xx status. Its "detail"
//     is kept so it can be shown verbatim.
//
// The collaborator side adds NotFound, Conflict, Unavailable and Internal,
// which its HTTP layer maps to status codes.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrValidation  = errors.New("Validation Error")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")
	ErrInternal    = errors.New("internal error")
	ErrTransport   = errors.New("transport error")
	ErrRejected    = errors.New("rejected")
)

type AppError struct {
	Err     error  // sentinel kind
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
	Status  int    // Optional: HTTP status of a rejected request
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

// NotFoundMessage is NotFound with a caller-chosen message.
func NotFoundMessage(message string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: message,
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Conflict returns an AppError for a resource that already exists.
// message is returned to clients as-is.
func Conflict(message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: message,
	}
}

// Unavailable signals that a dependency needed for the request is not
// configured or not reachable. HTTP handlers map this to 503.
func Unavailable(message string) *AppError {
	return &AppError{
		Err:     ErrUnavailable,
		Message: message,
	}
}

// Internal is a server-side failure whose message is safe to show, such as
// the reason a model call failed.
func Internal(message string) *AppError {
	return &AppError{
		Err:     ErrInternal,
		Message: message,
	}
}

// Transport wraps a failure that left us without a usable response.
func Transport(cause error) *AppError {
	msg := "request failed"
	if cause != nil {
		msg = cause.Error()
	}
	return &AppError{
		Err:     ErrTransport,
		Message: msg,
	}
}

// Rejected records a non-2xx response. detail may be empty when the
// collaborator sent no reason.
func Rejected(status int, detail string) *AppError {
	return &AppError{
		Err:     ErrRejected,
		Message: detail,
		Status:  status,
	}
}

// UserMessage renders err for display. fallback is used whenever the error
// carries no reason of its own. Transport causes are for logs only.
//
//	Validation → its message
//	Rejected   → the collaborator's detail, else fallback
//	Transport  → fallback
//	anything else → fallback
func UserMessage(err error, fallback string) string {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return fallback
	}
	if errors.Is(appErr, ErrValidation) || errors.Is(appErr, ErrRejected) {
		if appErr.Message != "" {
			return appErr.Message
		}
	}
	return fallback
}
