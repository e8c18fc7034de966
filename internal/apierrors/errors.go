// Package apierrors defines client-visible errors and the envelope they are
// rendered into.
package apierrors

import (
	"errors"
	"net/http"
	"strings"
)

// Entry is a single item of the error envelope.
type Entry struct {
	Type     string `json:"type"`
	Msg      string `json:"msg"`
	Path     string `json:"path"`
	Location string `json:"location"`
}

// Envelope is the body of every error response.
type Envelope struct {
	Errors []Entry `json:"errors"`
}

// APIError is an error that is safe to show to clients.
type APIError struct {
	Status  int
	Entries []Entry
}

func (e *APIError) Error() string {
	msgs := make([]string, 0, len(e.Entries))
	for _, entry := range e.Entries {
		msgs = append(msgs, entry.Msg)
	}
	return strings.Join(msgs, "; ")
}

// Envelope returns the response body for e.
func (e *APIError) Envelope() Envelope {
	return Envelope{Errors: e.Entries}
}

const (
	TypeUnauthorized = "UnauthorizedError"
	TypeForbidden    = "ForbiddenError"
	TypeBadRequest   = "BadRequestError"
	TypeConflict     = "ConflictError"
	TypeNotFound     = "NotFoundError"
	TypeInternal     = "InternalServerError"
	TypeField        = "field"
)

func newError(status int, typ, msg string) *APIError {
	return &APIError{
		Status:  status,
		Entries: []Entry{{Type: typ, Msg: msg}},
	}
}

func NewErrMissingAuthorizationToken() *APIError {
	return newError(http.StatusUnauthorized, TypeUnauthorized, "Authorization token is missing")
}

func NewErrInvalidAuthorizationToken() *APIError {
	return newError(http.StatusUnauthorized, TypeUnauthorized, "Invalid token")
}

func NewErrForbidden() *APIError {
	return newError(http.StatusForbidden, TypeForbidden, "You do not have permission to access")
}

func NewErrEmailIsTaken() *APIError {
	return newError(http.StatusBadRequest, TypeConflict, "Email is already exists!")
}

func NewErrInvalidCredentials() *APIError {
	return newError(http.StatusBadRequest, TypeBadRequest, "Email or password does not match.")
}

func NewErrInvalidURLParam() *APIError {
	return newError(http.StatusBadRequest, TypeBadRequest, "Invalid url param.")
}

func NewErrMalformedBody() *APIError {
	return newError(http.StatusBadRequest, TypeBadRequest, "Malformed request body.")
}

func NewErrTenantNotFound() *APIError {
	return newError(http.StatusBadRequest, TypeNotFound, "Tenant does not exist.")
}

func NewErrUserNotFound() *APIError {
	return newError(http.StatusBadRequest, TypeNotFound, "User does not exist.")
}

func NewErrInternalServerError() *APIError {
	return newError(http.StatusInternalServerError, TypeInternal, "Internal server error")
}

// NewErrValidation wraps field level failures into a single 400 error.
func NewErrValidation(entries ...Entry) *APIError {
	return &APIError{Status: http.StatusBadRequest, Entries: entries}
}

// FieldEntry describes one invalid field of a request body.
func FieldEntry(path, msg string) Entry {
	return Entry{Type: TypeField, Msg: msg, Path: path, Location: "body"}
}

// From returns the APIError carried by err, or a generic internal error.
// The second result is false when err held no APIError.
func From(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return NewErrInternalServerError(), false
}
