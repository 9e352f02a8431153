// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package source fetches raw bibliographic records for a keyword query.
// Each source (the delegated crawler service, the local Scholar scraper)
// implements Adapter. Adapters never retry; falling back to another source
// is the caller's job.
package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/pdiddy/paper-crawler/internal/httputil"
	"github.com/pdiddy/paper-crawler/pkg/types"
)

// Adapter fetches raw records for a single query.
type Adapter interface {
	Name() string
	Fetch(ctx context.Context, query types.Query) ([]types.RawRecord, error)
}

// BatchFetcher is implemented by adapters that can crawl several keywords
// in one call.
type BatchFetcher interface {
	FetchBatch(ctx context.Context, batch types.BatchQuery) ([]types.RawRecord, error)
}

// HealthChecker is implemented by adapters that can report whether they are usable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Kind classifies an adapter failure.
type Kind int

const (
	// Unavailable means the source could not be reached or refused service.
	Unavailable Kind = iota + 1
	// BadResponse means the source answered with something unusable.
	BadResponse
	// Timeout means the call did not finish within its deadline.
	Timeout
)

func (k Kind) String() string {
	switch k {
	case Unavailable:
		return "unavailable"
	case BadResponse:
		return "bad response"
	case Timeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Error is returned by every adapter failure.
type Error struct {
	Kind   Kind
	Source string
	Err    error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Source, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Source, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error with the same Kind, so callers can write
// errors.Is(err, &source.Error{Kind: source.Timeout}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Source == "" || t.Source == e.Source)
}

// KindOf returns the Kind of err, or 0 if err is not an adapter error.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return 0
}

func newError(source string, kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Source: source, Err: fmt.Errorf(format, args...)}
}

// transportError classifies a failed round trip as Timeout or Unavailable.
func transportError(ctx context.Context, source string, err error) *Error {
	if httputil.IsTimeout(err) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &Error{Kind: Timeout, Source: source, Err: err}
	}
	return &Error{Kind: Unavailable, Source: source, Err: err}
}
