// Package apperror holds the error taxonomy shared by services and the
// HTTP gateway.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNotCancellable    = errors.New("order cannot be cancelled")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
)

// DomainError is a business rule failure with a message safe to show to
// the client.
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func Domain(format string, args ...interface{}) error {
	return &DomainError{Message: fmt.Sprintf(format, args...)}
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError reports a malformed request body.
type ValidationError struct {
	Message string
	Fields  []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s: %s %s", e.Message, e.Fields[0].Field, e.Fields[0].Message)
}

func NotFound(what string) error {
	return fmt.Errorf("%s %w", what, ErrNotFound)
}

func IsDomain(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// MessageError carries a client facing message for one of the sentinels
// above.
type MessageError struct {
	Message string
	Err     error
}

func (e *MessageError) Error() string {
	return e.Message
}

func (e *MessageError) Unwrap() error {
	return e.Err
}

func Unauthorized(message string) error {
	return &MessageError{Message: message, Err: ErrUnauthorized}
}

func Forbidden(message string) error {
	return &MessageError{Message: message, Err: ErrForbidden}
}
