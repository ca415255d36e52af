package domain

import "net/http"

// Error codes for domain failures.
const (
	CodeUnauthenticated   = "unauthenticated"
	CodeUnauthorized      = "unauthorized"
	CodeNotFound          = "not_found"
	CodeConflict          = "conflict"
	CodeInvalidCredential = "invalid_credential"
	CodeBadRequest        = "bad_request"
)

// Error carries a machine-readable code, the HTTP status the transport
// should answer with, and a human-readable message. Nothing else (query
// text, stack traces) ever crosses the API boundary.
type Error struct {
	Code    string
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Unauthenticated marks a request that carries no valid token.
func Unauthenticated() *Error {
	return &Error{Code: CodeUnauthenticated, Status: http.StatusUnauthorized, Message: "Unauthenticated"}
}

// Unauthorized marks a valid identity with insufficient permission.
func Unauthorized() *Error {
	return &Error{Code: CodeUnauthorized, Status: http.StatusUnauthorized, Message: "Unauthorized"}
}

// NotFound marks an absent user or message.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Status: http.StatusNotFound, Message: msg}
}

// Conflict marks a duplicate-username registration. The status is 400 to
// match the original API contract rather than 409.
func Conflict(msg string) *Error {
	return &Error{Code: CodeConflict, Status: http.StatusBadRequest, Message: msg}
}

// InvalidCredential marks a failed password check.
func InvalidCredential() *Error {
	return &Error{Code: CodeInvalidCredential, Status: http.StatusBadRequest, Message: "invalid username/password"}
}

// BadRequest marks a structurally invalid request.
func BadRequest(msg string) *Error {
	return &Error{Code: CodeBadRequest, Status: http.StatusBadRequest, Message: msg}
}
