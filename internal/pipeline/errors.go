// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidQuery is returned before any source is called when a query
	// or batch is malformed.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrAllSourcesFailed is returned when every source in the chain failed
	// for a query. It is distinct from a successful fetch with no results.
	ErrAllSourcesFailed = errors.New("all sources failed")

	// ErrMissingRequiredField marks a raw record without title or author.
	ErrMissingRequiredField = errors.New("missing required field")
)

// AllSourcesFailedError carries the error of every source tried for a query.
type AllSourcesFailedError struct {
	Keyword string
	Errs    []error
}

func (e *AllSourcesFailedError) Error() string {
	msgs := make([]string, len(e.Errs))
	for i, err := range e.Errs {
		msgs[i] = err.Error()
	}
	if len(msgs) == 0 {
		return fmt.Sprintf("%v for %q: no sources configured", ErrAllSourcesFailed, e.Keyword)
	}
	return fmt.Sprintf("%v for %q: %s", ErrAllSourcesFailed, e.Keyword, strings.Join(msgs, "; "))
}

// Unwrap exposes the sentinel and each source error to errors.Is and errors.As.
func (e *AllSourcesFailedError) Unwrap() []error {
	return append([]error{ErrAllSourcesFailed}, e.Errs...)
}

// MissingFieldError reports a raw record dropped during normalization.
type MissingFieldError struct {
	Field string
	// Title is whatever title the record had, for log context.
	Title string
}

func (e *MissingFieldError) Error() string {
	if e.Title != "" {
		return fmt.Sprintf("%v %q (title %q)", ErrMissingRequiredField, e.Field, e.Title)
	}
	return fmt.Sprintf("%v %q", ErrMissingRequiredField, e.Field)
}

func (e *MissingFieldError) Unwrap() error { return ErrMissingRequiredField }

func invalidQuery(err error) error {
	return fmt.Errorf("%w: %v", ErrInvalidQuery, err)
}
