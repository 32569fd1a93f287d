package errors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalid       = errors.New("invalid")
	ErrNotFound      = errors.New("not found")
	ErrNotConfigured = errors.New("not configured")
	ErrUnavailable   = errors.New("source unavailable")
	ErrUpstream      = errors.New("upstream service failed")
)

type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type ValidationError struct {
	Items []FieldError
}

func (e ValidationError) Error() string {
	if len(e.Items) == 0 {
		return "validation failed"
	}

	var b strings.Builder
	b.WriteString("validation failed:\n")
	for _, item := range e.Items {
		b.WriteString(" - ")
		b.WriteString(item.Error())
		b.WriteString("\n")
	}
	return b.String()
}

func (e *ValidationError) Add(field, msg string) {
	e.Items = append(e.Items, FieldError{
		Field:   field,
		Message: msg,
	})
}

func (e ValidationError) Is(target error) bool {
	return target == ErrInvalid
}

func (e ValidationError) HasAny() bool {
	return len(e.Items) > 0
}

// First returns the first field message, which is what the form endpoints
// show to the submitter.
func (e ValidationError) First() string {
	if len(e.Items) == 0 {
		return "validation failed"
	}
	return e.Items[0].Message
}

// ParseError reports a single malformed content file.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// SourceUnavailableError covers a missing content directory, a remote client
// that could not be created, or a failed remote query.
type SourceUnavailableError struct {
	Source string
	Err    error
}

func (e *SourceUnavailableError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: source unavailable", e.Source)
	}
	return fmt.Sprintf("%s: source unavailable: %v", e.Source, e.Err)
}

func (e *SourceUnavailableError) Unwrap() error { return e.Err }

func (e *SourceUnavailableError) Is(target error) bool {
	return target == ErrUnavailable
}

// UpstreamServiceError is a token exchange or mail send failure.
type UpstreamServiceError struct {
	Service string
	Status  int
	Err     error
}

func (e *UpstreamServiceError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Service, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *UpstreamServiceError) Unwrap() error { return e.Err }

func (e *UpstreamServiceError) Is(target error) bool {
	return target == ErrUpstream
}
