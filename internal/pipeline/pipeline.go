// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline fetches bibliographic records through an ordered chain of
// sources and reconciles them: normalization, deduplication against stored
// and already-seen papers, and year filtering. Crawler is the entry point.
//
// Processing is sequential. One query, or one batch keyword, is fetched,
// normalized, deduplicated and filtered before the next begins, and a shared
// Pacer spaces out the source calls.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/pdiddy/paper-crawler/internal/ratelimit"
	"github.com/pdiddy/paper-crawler/internal/source"
	"github.com/pdiddy/paper-crawler/pkg/types"
)

// Store persists papers. CreatePaper returns false when the store declined
// the paper, for example because it already holds it.
type Store interface {
	CreatePaper(ctx context.Context, paper types.Paper) (bool, error)
	AllPapers(ctx context.Context) ([]types.Paper, error)
}

// KeyLister is implemented by stores that can list the keys of stored
// papers without loading the papers themselves.
type KeyLister interface {
	Keys(ctx context.Context) ([]types.Key, error)
}

// Result is the outcome of a single-keyword crawl. An empty Papers with a
// nil error means the source found nothing; a failed fetch is always an error.
type Result struct {
	Keyword           string        `json:"keyword"`
	Papers            []types.Paper `json:"papers"`
	Source            string        `json:"source,omitempty"`
	Fetched           int           `json:"fetched"`
	Dropped           int           `json:"dropped"`
	DuplicatesRemoved int           `json:"duplicatesRemoved"`
	FilteredByYear    int           `json:"filteredByYear"`
}

// Crawler wires the sources, the pacer and the store into the crawl
// operations.
type Crawler struct {
	adapters []source.Adapter
	fallback *Fallback
	batch    *Batch
	store    Store
	logger   *slog.Logger
}

// New returns a Crawler that tries adapters in the given order. store may be
// nil, in which case nothing is treated as already known and the persist
// operations fail.
func New(adapters []source.Adapter, store Store, cfg types.PipelineConfig, logger *slog.Logger) *Crawler {
	if logger == nil {
		logger = slog.Default()
	}
	fb := &Fallback{
		Adapters: adapters,
		Timeout:  cfg.AdapterTimeout,
		Pacer:    ratelimit.NewPacer("sources", cfg.PacingInterval),
		Logger:   logger,
	}
	return &Crawler{
		adapters: adapters,
		fallback: fb,
		batch: &Batch{
			Fallback:            fb,
			PreferBatchEndpoint: cfg.PreferBatchEndpoint,
			Logger:              logger,
		},
		store:  store,
		logger: logger,
	}
}

// Crawl fetches one keyword, drops papers already stored or repeated, and
// applies the year bounds.
func (c *Crawler) Crawl(ctx context.Context, query types.Query) (Result, error) {
	if err := query.Validate(); err != nil {
		return Result{}, invalidQuery(err)
	}
	known, err := c.known(ctx)
	if err != nil {
		return Result{}, err
	}

	papers, report, err := c.fallback.Run(ctx, query)
	if err != nil {
		return Result{Keyword: query.Keyword}, err
	}

	deduped, removed := Dedupe(papers, known)
	filtered := FilterByYear(deduped, query.YearFrom, query.YearTo)
	return Result{
		Keyword:           query.Keyword,
		Papers:            filtered,
		Source:            report.Source,
		Fetched:           report.Fetched,
		Dropped:           len(report.Dropped),
		DuplicatesRemoved: removed,
		FilteredByYear:    len(deduped) - len(filtered),
	}, nil
}

// CrawlAndPersist crawls and stores the result. The returned Papers are the
// ones the store accepted.
func (c *Crawler) CrawlAndPersist(ctx context.Context, query types.Query) (Result, error) {
	if c.store == nil {
		return Result{}, errNoStore
	}
	res, err := c.Crawl(ctx, query)
	if err != nil {
		return res, err
	}
	saved, err := c.persist(ctx, res.Papers)
	res.Papers = saved
	return res, err
}

// CrawlBatch crawls every keyword of batch. See Batch.Run.
func (c *Crawler) CrawlBatch(ctx context.Context, batch types.BatchQuery) (BatchResult, error) {
	if err := batch.Validate(); err != nil {
		return BatchResult{}, invalidQuery(err)
	}
	known, err := c.known(ctx)
	if err != nil {
		return BatchResult{}, err
	}
	return c.batch.Run(ctx, batch, known)
}

// CrawlBatchAndPersist crawls a batch and stores the union. The returned
// Papers are the ones the store accepted.
func (c *Crawler) CrawlBatchAndPersist(ctx context.Context, batch types.BatchQuery) (BatchResult, error) {
	if c.store == nil {
		return BatchResult{}, errNoStore
	}
	res, err := c.CrawlBatch(ctx, batch)
	if errors.Is(err, ErrInvalidQuery) || (err != nil && len(res.Outcomes) == 0) {
		return res, err
	}
	saved, perr := c.persist(ctx, res.Papers)
	res.Papers = saved
	return res, errors.Join(err, perr)
}

// PersistSelected stores papers chosen by a caller, typically from an
// earlier crawl. Papers without title or author, papers already stored, and
// repeats within papers are skipped. It returns the papers the store accepted.
func (c *Crawler) PersistSelected(ctx context.Context, papers []types.Paper) ([]types.Paper, error) {
	if c.store == nil {
		return nil, errNoStore
	}
	known, err := c.known(ctx)
	if err != nil {
		return nil, err
	}

	valid := make([]types.Paper, 0, len(papers))
	for _, p := range papers {
		p.Title = strings.TrimSpace(p.Title)
		p.Author = strings.TrimSpace(p.Author)
		switch {
		case p.Title == "":
			c.logger.Warn("skipping selected paper", "error", &MissingFieldError{Field: "title"})
			continue
		case p.Author == "":
			c.logger.Warn("skipping selected paper", "error", &MissingFieldError{Field: "author", Title: p.Title})
			continue
		}
		valid = append(valid, p)
	}

	deduped, removed := Dedupe(valid, known)
	if removed > 0 {
		c.logger.Info("skipping papers already stored", "count", removed)
	}
	return c.persist(ctx, deduped)
}

// HealthCheck reports whether every source that supports health checks is usable.
// It is false when no configured source supports probing.
func (c *Crawler) HealthCheck(ctx context.Context) bool {
	status := c.Health(ctx)
	if len(status) == 0 {
		return false
	}
	for _, err := range status {
		if err != nil {
			return false
		}
	}
	return true
}

// Health checks every source that implements source.HealthChecker and
// returns the result per source name.
func (c *Crawler) Health(ctx context.Context) map[string]error {
	status := make(map[string]error)
	for _, a := range c.adapters {
		hc, ok := a.(source.HealthChecker)
		if !ok {
			continue
		}
		err := hc.Health(ctx)
		if err != nil {
			c.logger.Warn("health check failed", "source", a.Name(), "error", err)
		}
		status[a.Name()] = err
	}
	return status
}

var errNoStore = errors.New("no paper store configured")

func (c *Crawler) known(ctx context.Context) (Known, error) {
	if c.store == nil {
		return NewKeySet(), nil
	}
	if kl, ok := c.store.(KeyLister); ok {
		keys, err := kl.Keys(ctx)
		if err != nil {
			return nil, fmt.Errorf("loading stored keys: %w", err)
		}
		ks := make(KeySet, len(keys))
		for _, k := range keys {
			ks.Add(k)
		}
		return ks, nil
	}
	stored, err := c.store.AllPapers(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading stored papers: %w", err)
	}
	return NewKeySet(stored...), nil
}

// persist stores papers one by one, assigning IDs to new ones, and returns
// those the store accepted.
// A failing paper is logged and skipped; the errors are joined.
func (c *Crawler) persist(ctx context.Context, papers []types.Paper) ([]types.Paper, error) {
	saved := make([]types.Paper, 0, len(papers))
	var errs []error
	for _, p := range papers {
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		ok, err := c.store.CreatePaper(ctx, p)
		if err != nil {
			c.logger.Error("storing paper failed", "title", p.Title, "error", err)
			errs = append(errs, fmt.Errorf("storing %q: %w", p.Title, err))
			continue
		}
		if !ok {
			c.logger.Debug("store declined paper", "title", p.Title)
			continue
		}
		saved = append(saved, p)
	}
	c.logger.Info("persisted papers", "saved", len(saved), "offered", len(papers))
	return saved, errors.Join(errs...)
}
