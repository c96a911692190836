package identity

import "errors"

// Classified collaborator failures. Callers match with errors.Is; anything
// not in this set is treated as the unknown cause.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrWrongPassword   = errors.New("wrong password")
	ErrInvalidEmail    = errors.New("invalid email")
	ErrEmailInUse      = errors.New("email already in use")
	ErrWeakPassword    = errors.New("weak password")
	ErrTooManyRequests = errors.New("too many requests")
	ErrUserDisabled    = errors.New("user disabled")
)
