// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the paper-crawler pipeline:
// queries, raw and canonical paper records, and configuration.
package types

import (
	"fmt"
	"strings"
)

// Query describes a single keyword crawl.
type Query struct {
	// Keyword is the search phrase sent to every source.
	Keyword string `json:"keyword" yaml:"keyword"`

	// MaxResults caps the number of records returned.
	MaxResults int `json:"maxResults" yaml:"max_results"`

	// YearFrom and YearTo bound the publication year, both inclusive.
	YearFrom *int `json:"yearFrom,omitempty" yaml:"year_from,omitempty"`
	YearTo   *int `json:"yearTo,omitempty" yaml:"year_to,omitempty"`
}

// Validate reports whether q can be sent to a source.
func (q Query) Validate() error {
	if strings.TrimSpace(q.Keyword) == "" {
		return fmt.Errorf("keyword is empty")
	}
	if q.MaxResults <= 0 {
		return fmt.Errorf("maxResults must be positive, got %d", q.MaxResults)
	}
	return validateYears(q.YearFrom, q.YearTo)
}

// BatchQuery describes a crawl over several keywords.
type BatchQuery struct {
	Keywords             []string `json:"keywords" yaml:"keywords"`
	MaxResultsPerKeyword int      `json:"maxResultsPerKeyword" yaml:"max_results_per_keyword"`
	YearFrom             *int     `json:"yearFrom,omitempty" yaml:"year_from,omitempty"`
	YearTo               *int     `json:"yearTo,omitempty" yaml:"year_to,omitempty"`
}

// Validate reports whether b can be run.
func (b BatchQuery) Validate() error {
	if len(b.Keywords) == 0 {
		return fmt.Errorf("keyword list is empty")
	}
	for i, kw := range b.Keywords {
		if strings.TrimSpace(kw) == "" {
			return fmt.Errorf("keyword %d is empty", i)
		}
	}
	if b.MaxResultsPerKeyword <= 0 {
		return fmt.Errorf("maxResultsPerKeyword must be positive, got %d", b.MaxResultsPerKeyword)
	}
	return validateYears(b.YearFrom, b.YearTo)
}

// QueryFor returns the single-keyword query for one batch keyword.
func (b BatchQuery) QueryFor(keyword string) Query {
	return Query{
		Keyword:    keyword,
		MaxResults: b.MaxResultsPerKeyword,
		YearFrom:   b.YearFrom,
		YearTo:     b.YearTo,
	}
}

func validateYears(from, to *int) error {
	if from != nil && to != nil && *from > *to {
		return fmt.Errorf("yearFrom %d is after yearTo %d", *from, *to)
	}
	return nil
}
