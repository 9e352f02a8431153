// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/pdiddy/paper-crawler/internal/httputil"
	"github.com/pdiddy/paper-crawler/internal/pipeline"
	"github.com/pdiddy/paper-crawler/pkg/types"
)

type crawlRequest struct {
	Keyword    string `json:"keyword"`
	MaxResults *int   `json:"maxResults"`
	YearFrom   *int   `json:"yearFrom"`
	YearTo     *int   `json:"yearTo"`
}

func (r crawlRequest) query() types.Query {
	q := types.Query{Keyword: r.Keyword, MaxResults: defaultMaxResults, YearFrom: r.YearFrom, YearTo: r.YearTo}
	if r.MaxResults != nil {
		q.MaxResults = *r.MaxResults
	}
	return q
}

type batchRequest struct {
	Keywords             []string `json:"keywords"`
	MaxResultsPerKeyword *int     `json:"maxResultsPerKeyword"`
	YearFrom             *int     `json:"yearFrom"`
	YearTo               *int     `json:"yearTo"`
}

func (r batchRequest) batch() types.BatchQuery {
	b := types.BatchQuery{
		Keywords:             r.Keywords,
		MaxResultsPerKeyword: defaultMaxResultsPerKeyword,
		YearFrom:             r.YearFrom,
		YearTo:               r.YearTo,
	}
	if r.MaxResultsPerKeyword != nil {
		b.MaxResultsPerKeyword = *r.MaxResultsPerKeyword
	}
	return b
}

type papersResponse struct {
	Success              bool                      `json:"success"`
	Papers               []types.Paper             `json:"papers"`
	Count                int                       `json:"count"`
	Keyword              string                    `json:"keyword,omitempty"`
	Keywords             []string                  `json:"keywords,omitempty"`
	MaxResultsPerKeyword int                       `json:"maxResultsPerKeyword,omitempty"`
	Source               string                    `json:"source,omitempty"`
	Failures             []pipeline.KeywordOutcome `json:"failures,omitempty"`
	Message              string                    `json:"message,omitempty"`
}

func newPapersResponse(papers []types.Paper) papersResponse {
	if papers == nil {
		papers = []types.Paper{}
	}
	return papersResponse{Success: true, Papers: papers, Count: len(papers)}
}

// errorResponse carries the papers that were saved before a store error,
// so a client knows what was persisted.
type errorResponse struct {
	Success  bool                      `json:"success"`
	Error    string                    `json:"error"`
	Papers   []types.Paper             `json:"papers,omitempty"`
	Count    int                       `json:"count,omitempty"`
	Failures []pipeline.KeywordOutcome `json:"failures,omitempty"`
}

type healthResponse struct {
	Success bool              `json:"success"`
	Healthy bool              `json:"healthy"`
	Sources map[string]string `json:"sources"`
	Message string            `json:"message"`
}

func (s *Server) handleCrawl(w http.ResponseWriter, r *http.Request) {
	s.crawlOne(w, r, s.crawler.Crawl, "")
}

func (s *Server) handleCrawlAndSave(w http.ResponseWriter, r *http.Request) {
	s.crawlOne(w, r, s.crawler.CrawlAndPersist, "papers crawled and saved")
}

func (s *Server) crawlOne(w http.ResponseWriter, r *http.Request,
	run func(context.Context, types.Query) (pipeline.Result, error), message string) {
	var req crawlRequest
	if !s.decode(w, r, &req) {
		return
	}
	res, err := run(r.Context(), req.query())
	if err != nil {
		s.writeError(w, err, res.Papers, nil)
		return
	}
	resp := newPapersResponse(res.Papers)
	resp.Keyword = res.Keyword
	resp.Source = res.Source
	resp.Message = message
	s.write(w, http.StatusOK, resp)
}

func (s *Server) handleCrawlBatch(w http.ResponseWriter, r *http.Request) {
	s.crawlMany(w, r, s.crawler.CrawlBatch, "")
}

func (s *Server) handleCrawlBatchAndSave(w http.ResponseWriter, r *http.Request) {
	s.crawlMany(w, r, s.crawler.CrawlBatchAndPersist, "batch crawled and saved")
}

func (s *Server) crawlMany(w http.ResponseWriter, r *http.Request,
	run func(context.Context, types.BatchQuery) (pipeline.BatchResult, error), message string) {
	var req batchRequest
	if !s.decode(w, r, &req) {
		return
	}
	batch := req.batch()
	res, err := run(r.Context(), batch)
	if err != nil {
		s.writeError(w, err, res.Papers, res.Failures())
		return
	}
	resp := newPapersResponse(res.Papers)
	resp.Keywords = batch.Keywords
	resp.MaxResultsPerKeyword = batch.MaxResultsPerKeyword
	resp.Failures = res.Failures()
	resp.Message = message
	s.write(w, http.StatusOK, resp)
}

func (s *Server) handleSaveSelected(w http.ResponseWriter, r *http.Request) {
	var papers []types.Paper
	if !s.decode(w, r, &papers) {
		return
	}
	saved, err := s.crawler.PersistSelected(r.Context(), papers)
	if err != nil {
		s.writeError(w, err, saved, nil)
		return
	}
	resp := newPapersResponse(saved)
	resp.Message = fmt.Sprintf("%d of %d selected papers saved", len(saved), len(papers))
	s.write(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := s.crawler.Health(r.Context())
	resp := healthResponse{
		Success: true,
		Healthy: len(status) > 0,
		Sources: make(map[string]string, len(status)),
		Message: "health check complete",
	}
	for name, err := range status {
		if err != nil {
			resp.Healthy = false
			resp.Sources[name] = err.Error()
			continue
		}
		resp.Sources[name] = "ok"
	}
	s.write(w, http.StatusOK, resp)
}

// decode reads a JSON body into v, answering 400 on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := dec.Decode(v); err != nil {
		s.write(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid request body: %v", err)})
		return false
	}
	return true
}

func (s *Server) writeError(w http.ResponseWriter, err error, papers []types.Paper, failures []pipeline.KeywordOutcome) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "status", status, "error", err, "saved", len(papers))
	}
	s.write(w, status, errorResponse{Error: err.Error(), Papers: papers, Count: len(papers), Failures: failures})
}

func (s *Server) write(w http.ResponseWriter, status int, v any) {
	if err := httputil.WriteJSON(w, status, v); err != nil {
		s.logger.Warn("writing response failed", "error", err)
	}
}

// statusFor maps pipeline errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, pipeline.ErrInvalidQuery):
		return http.StatusBadRequest
	case errors.Is(err, pipeline.ErrAllSourcesFailed):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
