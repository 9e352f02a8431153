// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pdiddy/paper-crawler/internal/ratelimit"
	"github.com/pdiddy/paper-crawler/internal/source"
	"github.com/pdiddy/paper-crawler/pkg/types"
)

const defaultAdapterTimeout = 30 * time.Second

// Fallback tries sources in priority order and returns the normalized
// output of the first one that succeeds. It is a fallback chain, not a
// merge: once a source answers, later sources are not called.
type Fallback struct {
	Adapters []source.Adapter

	// Timeout bounds each source call (default 30s).
	Timeout time.Duration

	// Pacer is awaited before every source call. May be nil.
	Pacer *ratelimit.Pacer

	Logger *slog.Logger
}

// Report describes how a query was served.
type Report struct {
	// Source is the adapter that answered; empty when all failed.
	Source string `json:"source,omitempty"`

	// Fetched is the number of raw records the source returned.
	Fetched int `json:"fetched"`

	// SourceErrors holds the failures of sources tried before Source.
	SourceErrors []error `json:"-"`

	// Dropped holds the normalization errors of discarded records.
	Dropped []error `json:"-"`
}

// Run fetches query from the first source that succeeds. A source that
// succeeds with zero records ends the chain with an empty result. When every
// source fails the error is an *AllSourcesFailedError.
func (f *Fallback) Run(ctx context.Context, query types.Query) ([]types.Paper, Report, error) {
	var report Report
	if err := query.Validate(); err != nil {
		return nil, report, invalidQuery(err)
	}

	for _, a := range f.Adapters {
		if err := f.Pacer.Wait(ctx); err != nil {
			return nil, report, err
		}

		raws, err := f.fetch(ctx, a, query)
		if err != nil {
			f.logger().Warn("source failed, trying next", "source", a.Name(), "keyword", query.Keyword, "error", err)
			report.SourceErrors = append(report.SourceErrors, err)
			continue
		}

		papers, dropped := NormalizeAll(raws, a.Name(), f.logger())
		if len(papers) > query.MaxResults {
			papers = papers[:query.MaxResults]
		}
		report.Source = a.Name()
		report.Fetched = len(raws)
		report.Dropped = dropped
		f.logger().Info("source answered", "source", a.Name(), "keyword", query.Keyword,
			"fetched", len(raws), "kept", len(papers), "dropped", len(dropped))
		return papers, report, nil
	}

	return nil, report, &AllSourcesFailedError{Keyword: query.Keyword, Errs: report.SourceErrors}
}

type fetchResult struct {
	raws []types.RawRecord
	err  error
}

// fetch calls a with a bounded deadline.
func (f *Fallback) fetch(ctx context.Context, a source.Adapter, query types.Query) ([]types.RawRecord, error) {
	return f.call(ctx, a.Name(), f.timeout(), func(callCtx context.Context) ([]types.RawRecord, error) {
		return a.Fetch(callCtx, query)
	})
}

func (f *Fallback) timeout() time.Duration {
	if f.Timeout <= 0 {
		return defaultAdapterTimeout
	}
	return f.Timeout
}

// call runs fn under a deadline. fn runs in its own goroutine so a source
// that ignores its context still cannot block past the deadline.
func (f *Fallback) call(ctx context.Context, name string, timeout time.Duration, fn func(context.Context) ([]types.RawRecord, error)) ([]types.RawRecord, error) {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ch := make(chan fetchResult, 1)
	go func() {
		raws, err := fn(callCtx)
		ch <- fetchResult{raws: raws, err: err}
	}()

	select {
	case res := <-ch:
		if res.err != nil {
			return nil, classify(callCtx, name, res.err)
		}
		return res.raws, nil
	case <-callCtx.Done():
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return nil, &source.Error{Kind: source.Timeout, Source: name, Err: fmt.Errorf("no answer within %v", timeout)}
		}
		return nil, &source.Error{Kind: source.Unavailable, Source: name, Err: callCtx.Err()}
	}
}

// classify makes sure every source failure is a *source.Error.
func classify(ctx context.Context, name string, err error) error {
	if source.KindOf(err) != 0 {
		return err
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &source.Error{Kind: source.Timeout, Source: name, Err: err}
	}
	return &source.Error{Kind: source.Unavailable, Source: name, Err: err}
}

func (f *Fallback) logger() *slog.Logger {
	if f.Logger != nil {
		return f.Logger
	}
	return slog.Default()
}
