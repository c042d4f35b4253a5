package service

import "errors"

// Failure kinds the HTTP layer maps to status codes. Anything not wrapped in
// one of these is treated as a server-side error and never shown to clients.
var (
	ErrValidation         = errors.New("validation_failed")
	ErrEmailTaken         = errors.New("email_taken")
	ErrStudentIDTaken     = errors.New("student_id_taken")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrNotFound           = errors.New("not_found")
)

// Error pairs a failure kind with a message safe to return to clients.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func fail(kind error, message string) error {
	return &Error{Kind: kind, Message: message}
}

// ClientMessage extracts the client-safe message from a service failure.
func ClientMessage(err error) string {
	var serr *Error
	if errors.As(err, &serr) {
		return serr.Message
	}
	return "Server error"
}
