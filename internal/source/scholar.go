// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly"

	"github.com/pdiddy/paper-crawler/pkg/types"
)

// ScholarName identifies records produced by the local scraper.
const ScholarName = "scholar"

const (
	defaultScholarBase = "https://scholar.google.com"
	scholarPageSize    = 10
	defaultPageTimeout = 30 * time.Second
	defaultUserAgent   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
)

// Scholar scrapes Google Scholar result pages in process. It fetches pages
// with colly and extracts result blocks with goquery.
type Scholar struct {
	BaseURL       string
	UserAgent     string
	Timeout       time.Duration
	PageDelay     time.Duration
	RespectRobots bool
	Logger        *slog.Logger
}

// NewScholar returns a Scholar configured from cfg.
func NewScholar(cfg types.ScholarConfig, logger *slog.Logger) *Scholar {
	return &Scholar{
		BaseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		UserAgent:     cfg.UserAgent,
		Timeout:       cfg.Timeout,
		PageDelay:     cfg.PageDelay,
		RespectRobots: cfg.RespectRobots,
		Logger:        logger,
	}
}

// Name returns the adapter identifier.
func (s *Scholar) Name() string { return ScholarName }

// Fetch walks result pages until query.MaxResults records are collected or
// a page comes back short.
func (s *Scholar) Fetch(ctx context.Context, query types.Query) ([]types.RawRecord, error) {
	var page pageResult
	c, err := s.collector(&page)
	if err != nil {
		return nil, newError(ScholarName, BadResponse, "configuring collector: %v", err)
	}

	var records []types.RawRecord
	for start := 0; len(records) < query.MaxResults; start += scholarPageSize {
		if err := ctx.Err(); err != nil {
			return nil, transportError(ctx, ScholarName, err)
		}
		c.SetRequestTimeout(s.pageTimeout(ctx))

		parsed, err := s.fetchPage(ctx, c, &page, s.searchURL(query, start))
		if err != nil {
			return nil, err
		}
		if len(parsed) == 0 {
			break
		}
		records = append(records, parsed...)
		s.logger().Debug("scholar page parsed", "keyword", query.Keyword, "start", start, "records", len(parsed))
		if len(parsed) < scholarPageSize {
			break
		}
	}

	if len(records) > query.MaxResults {
		records = records[:query.MaxResults]
	}
	return records, nil
}

// pageResult receives the outcome of the collector callbacks for the page
// being visited.
type pageResult struct {
	body   []byte
	status int
	err    error
}

func (s *Scholar) collector(page *pageResult) (*colly.Collector, error) {
	ua := s.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	c := colly.NewCollector(
		colly.UserAgent(ua),
		colly.AllowURLRevisit(),
	)
	c.IgnoreRobotsTxt = !s.RespectRobots

	if s.PageDelay > 0 {
		if err := c.Limit(&colly.LimitRule{DomainGlob: "*", Parallelism: 1, Delay: s.PageDelay}); err != nil {
			return nil, err
		}
	}

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		r.Headers.Set("Accept-Language", "en-US,en;q=0.5")
	})
	c.OnResponse(func(r *colly.Response) {
		page.body = r.Body
		page.status = r.StatusCode
	})
	c.OnError(func(r *colly.Response, err error) {
		if r != nil {
			page.status = r.StatusCode
		}
		page.err = err
	})
	return c, nil
}

// fetchPage visits one result page and parses it. The collector is
// synchronous, so callbacks have run by the time Visit returns.
func (s *Scholar) fetchPage(ctx context.Context, c *colly.Collector, page *pageResult, pageURL string) ([]types.RawRecord, error) {
	*page = pageResult{}
	if err := c.Visit(pageURL); err != nil && page.err == nil {
		page.err = err
	}

	if page.err != nil {
		switch {
		case page.status == http.StatusTooManyRequests || page.status == http.StatusServiceUnavailable:
			return nil, newError(ScholarName, Unavailable, "HTTP %d from %s", page.status, pageURL)
		case page.status >= 400:
			return nil, newError(ScholarName, BadResponse, "HTTP %d from %s", page.status, pageURL)
		default:
			return nil, transportError(ctx, ScholarName, page.err)
		}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.body))
	if err != nil {
		return nil, newError(ScholarName, BadResponse, "parsing %s: %v", pageURL, err)
	}
	if isBlockedPage(doc) {
		return nil, newError(ScholarName, Unavailable, "blocked by interstitial at %s", pageURL)
	}
	if !isResultPage(doc) {
		return nil, newError(ScholarName, BadResponse, "no result listing at %s", pageURL)
	}
	return parseResults(doc), nil
}

func (s *Scholar) searchURL(query types.Query, start int) string {
	base := s.BaseURL
	if base == "" {
		base = defaultScholarBase
	}
	params := url.Values{
		"q":      {query.Keyword},
		"hl":     {"en"},
		"as_sdt": {"0,5"},
	}
	if start > 0 {
		params.Set("start", strconv.Itoa(start))
	}
	if query.YearFrom != nil {
		params.Set("as_ylo", strconv.Itoa(*query.YearFrom))
	}
	if query.YearTo != nil {
		params.Set("as_yhi", strconv.Itoa(*query.YearTo))
	}
	return fmt.Sprintf("%s/scholar?%s", base, params.Encode())
}

// pageTimeout is the configured timeout, shortened to the context deadline.
func (s *Scholar) pageTimeout(ctx context.Context) time.Duration {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = defaultPageTimeout
	}
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = max(remaining, time.Millisecond)
		}
	}
	return timeout
}

func (s *Scholar) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
