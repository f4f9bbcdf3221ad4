package errs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrForbidden      = errors.New("forbidden")
	ErrInvalidID      = errors.New("invalid id")
)

// MissingFieldsError lists required request fields that were absent.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func Invalid(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// QuotaError is returned when a family reached its artwork limit.
type QuotaError struct {
	Limit   int
	Current int64
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("artwork limit reached (%d/%d)", e.Current, e.Limit)
}

type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string { return e.Message }

func (e *ForbiddenError) Is(target error) bool { return target == ErrForbidden }

func Forbidden(message string) error {
	return &ForbiddenError{Message: message}
}

type NotFoundError struct {
	What string
}

func (e *NotFoundError) Error() string { return e.What + " not found" }

func (e *NotFoundError) Is(target error) bool { return target == ErrRecordNotFound }

func NotFound(what string) error {
	return &NotFoundError{What: what}
}

// DependencyError wraps a failure of storage, the database or image
// processing. Message is safe to show, Err goes to "details".
type DependencyError struct {
	Message string
	Err     error
}

func (e *DependencyError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *DependencyError) Unwrap() error { return e.Err }

func Dependency(message string, err error) error {
	return &DependencyError{Message: message, Err: err}
}
