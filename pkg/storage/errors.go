package storage

import (
	"errors"
	"fmt"
)

// ErrInvalidCredentials is returned by Authenticate for an unknown email or
// a wrong password. The two cases are not distinguished.
var ErrInvalidCredentials = errors.New("invalid email or password")

// NotFoundError is returned when a record doesn't exist in the store.
type NotFoundError struct {
	Kind string
	ID   any
}

func (e NotFoundError) Error() string {
	kind := e.Kind
	if kind == "" {
		kind = "record"
	}
	if e.ID == nil {
		return kind + " not found"
	}

	return fmt.Sprintf("%s not found: %v", kind, e.ID)
}

// ConflictError is returned when a write would break a uniqueness rule.
type ConflictError struct {
	Field string
	Value string
}

func (e ConflictError) Error() string {
	return fmt.Sprintf("%s already in use: %s", e.Field, e.Value)
}

// IsNotFound reports whether err is, or wraps, a NotFoundError.
func IsNotFound(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf)
}

// IsConflict reports whether err is, or wraps, a ConflictError.
func IsConflict(err error) bool {
	var c ConflictError
	return errors.As(err, &c)
}
