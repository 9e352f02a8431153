// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/pdiddy/paper-crawler/internal/source"
	"github.com/pdiddy/paper-crawler/pkg/types"
)

// --- mock adapter ---

type mockAdapter struct {
	name    string
	records []types.RawRecord
	err     error
	// byKeyword overrides records/err per keyword when set.
	byKeyword map[string]mockResponse
	// block makes Fetch wait for ctx cancellation.
	block bool

	mu      sync.Mutex
	queries []types.Query
}

type mockResponse struct {
	records []types.RawRecord
	err     error
}

func (m *mockAdapter) Name() string { return m.name }

func (m *mockAdapter) Fetch(ctx context.Context, q types.Query) ([]types.RawRecord, error) {
	m.mu.Lock()
	m.queries = append(m.queries, q)
	m.mu.Unlock()

	if m.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if r, ok := m.byKeyword[q.Keyword]; ok {
		return r.records, r.err
	}
	return m.records, m.err
}

func (m *mockAdapter) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queries)
}

// batchAdapter adds FetchBatch to mockAdapter.
type batchAdapter struct {
	mockAdapter
	batchRecords []types.RawRecord
	batchErr     error
	batchCalls   int
}

func (b *batchAdapter) FetchBatch(_ context.Context, _ types.BatchQuery) ([]types.RawRecord, error) {
	b.batchCalls++
	return b.batchRecords, b.batchErr
}

// healthyAdapter adds Health to mockAdapter.
type healthyAdapter struct {
	mockAdapter
	healthErr error
}

func (h *healthyAdapter) Health(context.Context) error { return h.healthErr }

// --- mock store ---

type memStore struct {
	papers  []types.Paper
	listErr error
	saveErr error
}

func (s *memStore) CreatePaper(_ context.Context, p types.Paper) (bool, error) {
	if s.saveErr != nil {
		return false, s.saveErr
	}
	for _, existing := range s.papers {
		if existing.Key() == p.Key() {
			return false, nil
		}
	}
	s.papers = append(s.papers, p)
	return true, nil
}

func (s *memStore) AllPapers(context.Context) ([]types.Paper, error) {
	return s.papers, s.listErr
}

// --- helpers ---

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func raw(title, author string, year any) types.RawRecord {
	r := types.RawRecord{"title": title, "author": author}
	if year != nil {
		r["year"] = year
	}
	return r
}

func paper(title, author string, year int) types.Paper {
	p := types.Paper{Title: title, Author: author}
	if year != 0 {
		p.Year = types.YearOf(year)
	}
	return p
}

func timeoutErr(name string) error {
	return &source.Error{Kind: source.Timeout, Source: name}
}

func unavailableErr(name string) error {
	return &source.Error{Kind: source.Unavailable, Source: name}
}

func testPipelineCfg() types.PipelineConfig {
	return types.PipelineConfig{
		AdapterTimeout: 2 * time.Second,
		PacingInterval: 0,
	}
}
