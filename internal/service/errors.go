package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials is returned for an unknown email and for a wrong
	// password alike.
	ErrInvalidCredentials = errors.New("unable to login")
	ErrUnauthorized       = errors.New("please authenticate")
	ErrUserNotFound       = errors.New("user not found")
	ErrTaskNotFound       = errors.New("task not found")
	ErrAvatarNotFound     = errors.New("avatar not found")
)

var (
	ErrEmailTaken     = &ValidationError{Field: "email", Message: "email already taken"}
	ErrAvatarFormat   = &ValidationError{Field: "avatar", Message: "please upload a jpg, jpeg or png image"}
	ErrAvatarTooLarge = &ValidationError{Field: "avatar", Message: "avatar must be 1MB or smaller"}
)

// ValidationError reports input that was rejected before reaching the store.
// Field is the JSON name of the offending field, empty when the problem is
// with the request as a whole.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError builds a ValidationError not tied to a single field.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
