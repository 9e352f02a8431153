// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-crawler/pkg/types"
)

// resultPage renders n result blocks numbered from offset.
func resultPage(offset, n int) string {
	var b strings.Builder
	b.WriteString(`<html><body><div id="gs_res_ccl_mid">`)
	for i := offset; i < offset+n; i++ {
		fmt.Fprintf(&b, `<div class="gs_r gs_or gs_scl"><div class="gs_ri">
<h3 class="gs_rt"><a href="https://example.org/%d">Paper %d</a></h3>
<div class="gs_a">Author %d - Journal of Tests, %d - example.org</div>
<div class="gs_rs">Snippet %d</div></div></div>`, i, i, i, 2000+i%20, i)
	}
	b.WriteString(`</div></body></html>`)
	return b.String()
}

// scholarServer serves total results in pages of ten and records the
// queries it saw.
type scholarServer struct {
	total int

	mu      sync.Mutex
	queries []url.Values
}

func (s *scholarServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.queries = append(s.queries, r.URL.Query())
	s.mu.Unlock()

	start, _ := strconv.Atoi(r.URL.Query().Get("start"))
	n := min(scholarPageSize, max(s.total-start, 0))
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, resultPage(start, n))
}

func (s *scholarServer) seen() []url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queries
}

func newTestScholar(ts *httptest.Server) *Scholar {
	return NewScholar(types.ScholarConfig{
		BaseURL:    ts.URL,
		HTTPConfig: types.HTTPConfig{Timeout: 5 * time.Second},
	}, nil)
}

func TestScholarFetchSinglePage(t *testing.T) {
	srv := &scholarServer{total: 3}
	ts := httptest.NewServer(srv)
	defer ts.Close()

	records, err := newTestScholar(ts).Fetch(context.Background(), types.Query{Keyword: "graph neural networks", MaxResults: 5})
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "Paper 0", records[0]["title"])
	assert.Equal(t, "Author 0", records[0]["author"])
	assert.Equal(t, "Journal of Tests", records[0]["journal"])
	assert.Equal(t, 2000, records[0]["year"])

	seen := srv.seen()
	require.Len(t, seen, 1, "a short page ends pagination")
	assert.Equal(t, "graph neural networks", seen[0].Get("q"))
	assert.Equal(t, "en", seen[0].Get("hl"))
	assert.Empty(t, seen[0].Get("start"))
}

func TestScholarFetchPaginates(t *testing.T) {
	srv := &scholarServer{total: 100}
	ts := httptest.NewServer(srv)
	defer ts.Close()

	records, err := newTestScholar(ts).Fetch(context.Background(), types.Query{Keyword: "k", MaxResults: 15})
	require.NoError(t, err)
	require.Len(t, records, 15)
	assert.Equal(t, "Paper 14", records[14]["title"])

	seen := srv.seen()
	require.Len(t, seen, 2)
	assert.Equal(t, "10", seen[1].Get("start"))
}

func TestScholarFetchStopsOnEmptyPage(t *testing.T) {
	srv := &scholarServer{total: 10}
	ts := httptest.NewServer(srv)
	defer ts.Close()

	records, err := newTestScholar(ts).Fetch(context.Background(), types.Query{Keyword: "k", MaxResults: 30})
	require.NoError(t, err)
	assert.Len(t, records, 10)
	assert.Len(t, srv.seen(), 2)
}

func TestScholarFetchNoResults(t *testing.T) {
	ts := httptest.NewServer(&scholarServer{total: 0})
	defer ts.Close()

	records, err := newTestScholar(ts).Fetch(context.Background(), types.Query{Keyword: "zzzz", MaxResults: 5})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestScholarFetchNoMatchNotice(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body><p>Your search - <b>zzzz</b> - did not match any articles.</p></body></html>`)
	}))
	defer ts.Close()

	records, err := newTestScholar(ts).Fetch(context.Background(), types.Query{Keyword: "zzzz", MaxResults: 5})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestScholarSendsYearBounds(t *testing.T) {
	srv := &scholarServer{total: 1}
	ts := httptest.NewServer(srv)
	defer ts.Close()

	_, err := newTestScholar(ts).Fetch(context.Background(), types.Query{
		Keyword: "k", MaxResults: 5, YearFrom: types.YearOf(2018), YearTo: types.YearOf(2020),
	})
	require.NoError(t, err)
	seen := srv.seen()
	require.Len(t, seen, 1)
	assert.Equal(t, "2018", seen[0].Get("as_ylo"))
	assert.Equal(t, "2020", seen[0].Get("as_yhi"))
}

func TestScholarFetchFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    Kind
	}{
		{"rate limited", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}, Unavailable},
		{"service unavailable", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}, Unavailable},
		{"server error", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}, BadResponse},
		{"not found", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}, BadResponse},
		{"captcha", func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `<html><body><div id="gs_captcha_ccl"><form id="gs_captcha_f"></form></div></body></html>`)
		}, Unavailable},
		{"unusual traffic", func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `<html><body>Our systems have detected unusual traffic from your computer network.</body></html>`)
		}, Unavailable},
		{"consent page", func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `<html><body><h1>Before you continue to Google</h1></body></html>`)
		}, BadResponse},
		{"unknown layout", func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `<html><body><div class="results"><div class="hit">Paper</div></div></body></html>`)
		}, BadResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(tt.handler)
			defer ts.Close()

			_, err := newTestScholar(ts).Fetch(context.Background(), types.Query{Keyword: "k", MaxResults: 5})
			require.Error(t, err)
			assert.Equal(t, tt.want, KindOf(err), "err = %v", err)
			assert.ErrorContains(t, err, ScholarName)
		})
	}
}

func TestScholarFetchUnreachable(t *testing.T) {
	ts := httptest.NewServer(&scholarServer{})
	s := newTestScholar(ts)
	ts.Close()

	_, err := s.Fetch(context.Background(), types.Query{Keyword: "k", MaxResults: 5})
	assert.Equal(t, Unavailable, KindOf(err))
}

func TestScholarFetchTimeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := newTestScholar(ts).Fetch(ctx, types.Query{Keyword: "k", MaxResults: 5})
	assert.Equal(t, Timeout, KindOf(err), "err = %v", err)
}

func TestScholarSearchURL(t *testing.T) {
	s := &Scholar{}
	got, err := url.Parse(s.searchURL(types.Query{Keyword: "a b&c"}, 20))
	require.NoError(t, err)

	assert.Equal(t, "scholar.google.com", got.Host)
	assert.Equal(t, "/scholar", got.Path)
	assert.Equal(t, "a b&c", got.Query().Get("q"))
	assert.Equal(t, "20", got.Query().Get("start"))
	assert.Empty(t, got.Query().Get("as_ylo"))
}

func TestScholarPageTimeout(t *testing.T) {
	s := &Scholar{Timeout: 10 * time.Second}
	assert.Equal(t, 10*time.Second, s.pageTimeout(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.LessOrEqual(t, s.pageTimeout(ctx), time.Second)

	assert.Equal(t, defaultPageTimeout, (&Scholar{}).pageTimeout(context.Background()))
}
