// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"net/http"
	"strings"

	"github.com/pdiddy/paper-crawler/internal/httputil"
	"github.com/pdiddy/paper-crawler/pkg/types"
)

// RemoteName identifies records produced by the crawler service.
const RemoteName = "remote"

// Remote delegates crawling to the external crawler service over HTTP.
type Remote struct {
	Client    *http.Client
	BaseURL   string
	UserAgent string
	// Token, when set, is sent as a bearer token.
	Token string
}

// NewRemote returns a Remote configured from cfg.
func NewRemote(client *http.Client, cfg types.RemoteConfig) *Remote {
	return &Remote{
		Client:    client,
		BaseURL:   strings.TrimRight(cfg.URL, "/"),
		UserAgent: cfg.UserAgent,
		Token:     cfg.Token,
	}
}

// Name returns the adapter identifier.
func (r *Remote) Name() string { return RemoteName }

type crawlRequest struct {
	Keyword    string `json:"keyword"`
	MaxResults int    `json:"maxResults"`
	YearFrom   *int   `json:"yearFrom,omitempty"`
	YearTo     *int   `json:"yearTo,omitempty"`
}

type batchRequest struct {
	Keywords             []string `json:"keywords"`
	MaxResultsPerKeyword int      `json:"maxResultsPerKeyword"`
	YearFrom             *int     `json:"yearFrom,omitempty"`
	YearTo               *int     `json:"yearTo,omitempty"`
}

// crawlResponse is the body of both /crawl and /crawl/batch. Papers is a
// pointer so a missing array can be told apart from an empty one.
type crawlResponse struct {
	Success bool               `json:"success"`
	Papers  *[]types.RawRecord `json:"papers"`
	Error   string             `json:"error"`
}

// Fetch sends one keyword to POST /crawl.
func (r *Remote) Fetch(ctx context.Context, query types.Query) ([]types.RawRecord, error) {
	body := crawlRequest{
		Keyword:    query.Keyword,
		MaxResults: query.MaxResults,
		YearFrom:   query.YearFrom,
		YearTo:     query.YearTo,
	}
	return r.post(ctx, "/crawl", body)
}

// FetchBatch sends several keywords to POST /crawl/batch. Records are
// returned as the service sent them; a service that tags each record with a
// "keyword" field lets the caller tell which keywords were answered.
func (r *Remote) FetchBatch(ctx context.Context, batch types.BatchQuery) ([]types.RawRecord, error) {
	body := batchRequest{
		Keywords:             batch.Keywords,
		MaxResultsPerKeyword: batch.MaxResultsPerKeyword,
		YearFrom:             batch.YearFrom,
		YearTo:               batch.YearTo,
	}
	return r.post(ctx, "/crawl/batch", body)
}

// Health calls GET /health and returns nil on HTTP 200.
func (r *Remote) Health(ctx context.Context) error {
	req, err := httputil.NewJSONRequest(ctx, http.MethodGet, r.BaseURL+"/health", nil, r.UserAgent)
	if err != nil {
		return newError(RemoteName, Unavailable, "%v", err)
	}
	r.authorize(req)

	resp, err := r.Client.Do(req)
	if err != nil {
		return transportError(ctx, RemoteName, err)
	}
	defer httputil.Drain(resp)

	if resp.StatusCode != http.StatusOK {
		return newError(RemoteName, Unavailable, "health check returned HTTP %d", resp.StatusCode)
	}
	return nil
}

func (r *Remote) post(ctx context.Context, path string, body any) ([]types.RawRecord, error) {
	req, err := httputil.NewJSONRequest(ctx, http.MethodPost, r.BaseURL+path, body, r.UserAgent)
	if err != nil {
		return nil, newError(RemoteName, BadResponse, "%v", err)
	}
	r.authorize(req)

	resp, err := r.Client.Do(req)
	if err != nil {
		return nil, transportError(ctx, RemoteName, err)
	}
	defer httputil.Drain(resp)

	switch resp.StatusCode {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return nil, newError(RemoteName, Unavailable, "%s returned HTTP %d", path, resp.StatusCode)
	}

	var cr crawlResponse
	if err := httputil.DecodeJSON(resp, &cr); err != nil {
		if httputil.IsTimeout(err) {
			return nil, transportError(ctx, RemoteName, err)
		}
		return nil, newError(RemoteName, BadResponse, "%s returned HTTP %d: %v", path, resp.StatusCode, err)
	}

	if !cr.Success {
		msg := cr.Error
		if msg == "" {
			msg = "success=false"
		}
		return nil, newError(RemoteName, BadResponse, "%s returned HTTP %d: %s", path, resp.StatusCode, msg)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, newError(RemoteName, BadResponse, "%s returned HTTP %d", path, resp.StatusCode)
	}
	if cr.Papers == nil {
		return nil, newError(RemoteName, BadResponse, "%s response has no papers array", path)
	}
	return *cr.Papers, nil
}

func (r *Remote) authorize(req *http.Request) {
	if r.Token != "" {
		req.Header.Set("Authorization", "Bearer "+r.Token)
	}
}
