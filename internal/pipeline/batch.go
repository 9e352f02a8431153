// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/pdiddy/paper-crawler/internal/source"
	"github.com/pdiddy/paper-crawler/pkg/types"
)

// State is the progress of one keyword in a batch.
type State string

const (
	StatePending   State = "pending"
	StateFetching  State = "fetching"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

// KeywordOutcome records what happened to one batch keyword.
type KeywordOutcome struct {
	Keyword string `json:"keyword" yaml:"keyword"`
	State   State  `json:"state" yaml:"state"`
	Source  string `json:"source,omitempty" yaml:"source,omitempty"`
	Fetched int    `json:"fetched" yaml:"fetched"`
	Error   string `json:"error,omitempty" yaml:"error,omitempty"`

	Err error `json:"-" yaml:"-"`
}

// BatchResult holds the union of a batch run and the per-keyword outcomes.
type BatchResult struct {
	Papers            []types.Paper
	Outcomes          []KeywordOutcome
	DuplicatesRemoved int
	FilteredByYear    int
	Dropped           int
}

// Succeeded returns the number of keywords that were served by a source.
func (r BatchResult) Succeeded() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.State == StateSucceeded {
			n++
		}
	}
	return n
}

// Failures returns the outcomes of keywords every source failed for.
func (r BatchResult) Failures() []KeywordOutcome {
	var failed []KeywordOutcome
	for _, o := range r.Outcomes {
		if o.State == StateFailed {
			failed = append(failed, o)
		}
	}
	return failed
}

// HasFailures reports whether any keyword failed.
func (r BatchResult) HasFailures() bool {
	return len(r.Failures()) > 0
}

// Batch runs the fallback chain over several keywords one at a time.
type Batch struct {
	Fallback *Fallback

	// PreferBatchEndpoint makes Run try a single batch call on the first
	// source, when it supports one, before crawling the keywords it did not
	// serve one by one.
	PreferBatchEndpoint bool

	Logger *slog.Logger
}

// Run crawls every keyword in order. A keyword for which every source fails
// is recorded as failed and the batch moves on. The returned papers are the
// union of all successful keywords, deduplicated against known and against
// each other, then filtered by year.
//
// Run returns an error only for an invalid batch, a cancelled context
// (checked between keywords), or when every keyword failed; in the last
// two cases the partial result is returned alongside the error.
func (b *Batch) Run(ctx context.Context, batch types.BatchQuery, known Known) (BatchResult, error) {
	if err := batch.Validate(); err != nil {
		return BatchResult{}, invalidQuery(err)
	}

	result := BatchResult{Outcomes: make([]KeywordOutcome, len(batch.Keywords))}
	for i, kw := range batch.Keywords {
		result.Outcomes[i] = KeywordOutcome{Keyword: kw, State: StatePending}
	}

	var all []types.Paper
	done := make([]bool, len(batch.Keywords))
	if b.PreferBatchEndpoint {
		all = b.tryBatchEndpoint(ctx, batch, &result, done)
	}

	for i, kw := range batch.Keywords {
		if done[i] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return b.finish(all, batch, known, result), err
		}

		out := &result.Outcomes[i]
		out.State = StateFetching
		papers, report, err := b.Fallback.Run(ctx, batch.QueryFor(kw))
		result.Dropped += len(report.Dropped)
		if err != nil {
			if !errors.Is(err, ErrAllSourcesFailed) {
				// Pacing was interrupted by cancellation.
				out.State = StatePending
				return b.finish(all, batch, known, result), err
			}
			out.State = StateFailed
			out.Err = err
			out.Error = err.Error()
			b.logger().Error("keyword failed", "keyword", kw, "error", err)
			continue
		}
		out.State = StateSucceeded
		out.Source = report.Source
		out.Fetched = report.Fetched
		all = append(all, papers...)
	}

	result = b.finish(all, batch, known, result)
	if result.Succeeded() == 0 {
		var errs []error
		for _, o := range result.Outcomes {
			errs = append(errs, o.Err)
		}
		return result, &AllSourcesFailedError{Keyword: strings.Join(batch.Keywords, ", "), Errs: errs}
	}
	return result, nil
}

// tryBatchEndpoint makes one batch call when the first source supports it.
// A keyword counts as served only when the reply carries records tagged
// with it; done is set for those keywords and the rest go through the
// per-keyword chain. An empty reply, or one with untagged records, serves
// no keyword.
func (b *Batch) tryBatchEndpoint(ctx context.Context, batch types.BatchQuery, result *BatchResult, done []bool) []types.Paper {
	f := b.Fallback
	if len(f.Adapters) == 0 {
		return nil
	}
	first := f.Adapters[0]
	bf, ok := first.(source.BatchFetcher)
	if !ok {
		return nil
	}
	if err := f.Pacer.Wait(ctx); err != nil {
		return nil
	}

	// The service crawls the keywords sequentially, so the deadline scales.
	timeout := f.timeout() * time.Duration(len(batch.Keywords))
	raws, err := f.call(ctx, first.Name(), timeout, func(callCtx context.Context) ([]types.RawRecord, error) {
		return bf.FetchBatch(callCtx, batch)
	})
	if err != nil {
		b.logger().Warn("batch endpoint failed, crawling keywords one by one", "source", first.Name(), "error", err)
		return nil
	}

	groups, ok := attribute(raws, batch.Keywords)
	if !ok {
		b.logger().Warn("batch reply not attributable to keywords, crawling keywords one by one",
			"source", first.Name(), "records", len(raws))
		return nil
	}

	var papers []types.Paper
	for i, group := range groups {
		if len(group) == 0 {
			continue
		}
		ps, dropped := NormalizeAll(group, first.Name(), b.logger())
		if len(ps) > batch.MaxResultsPerKeyword {
			ps = ps[:batch.MaxResultsPerKeyword]
		}
		result.Dropped += len(dropped)
		out := &result.Outcomes[i]
		out.State = StateSucceeded
		out.Source = first.Name()
		out.Fetched = len(group)
		done[i] = true
		papers = append(papers, ps...)
	}
	b.logger().Info("batch endpoint answered", "source", first.Name(), "keywords", len(batch.Keywords), "fetched", len(raws))
	return papers
}

// attribute groups raws by their "keyword" field, one group per keyword.
// It reports false when raws is empty or any record names no batch keyword.
func attribute(raws []types.RawRecord, keywords []string) ([][]types.RawRecord, bool) {
	if len(raws) == 0 {
		return nil, false
	}
	index := make(map[string]int, len(keywords))
	for i, kw := range keywords {
		index[strings.ToLower(strings.TrimSpace(kw))] = i
	}
	groups := make([][]types.RawRecord, len(keywords))
	for _, raw := range raws {
		i, ok := index[strings.ToLower(stringField(raw, "keyword"))]
		if !ok {
			return nil, false
		}
		groups[i] = append(groups[i], raw)
	}
	return groups, true
}

func (b *Batch) finish(all []types.Paper, batch types.BatchQuery, known Known, result BatchResult) BatchResult {
	deduped, removed := Dedupe(all, known)
	filtered := FilterByYear(deduped, batch.YearFrom, batch.YearTo)
	result.Papers = filtered
	result.DuplicatesRemoved = removed
	result.FilteredByYear = len(deduped) - len(filtered)
	return result
}

func (b *Batch) logger() *slog.Logger {
	if b.Logger != nil {
		return b.Logger
	}
	return slog.Default()
}
