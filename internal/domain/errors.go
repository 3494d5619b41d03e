package domain

import "errors"

var (
	// ErrNoQuestions is returned when the question set is empty.
	ErrNoQuestions = errors.New("no questions available")
	// ErrLocked is returned when an admin action is attempted without an unlocked session.
	ErrLocked = errors.New("admin session locked")
	// ErrInvalidPassword is returned when the admin password does not match.
	ErrInvalidPassword = errors.New("incorrect password")
	// ErrAdminSecretMissing indicates no admin secret is configured and the default is not allowed.
	ErrAdminSecretMissing = errors.New("admin password not configured")
	// ErrSessionNotFound indicates an unknown or expired admin session.
	ErrSessionNotFound = errors.New("admin session not found")
	// ErrReadOnlySource is returned when appending to a question source that cannot be written.
	ErrReadOnlySource = errors.New("question source is read-only")
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
