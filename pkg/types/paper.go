// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "strings"

// RawRecord is a bibliographic record as returned by a source, before
// normalization. Values are whatever the source decoded: strings, numbers,
// nil, or nested values.
type RawRecord map[string]any

// Paper is the canonical bibliographic record produced by the pipeline.
// Title and Author are always non-empty once a Paper leaves the normalizer.
type Paper struct {
	// ID is assigned when the paper is first persisted.
	ID string `json:"id,omitempty" yaml:"id,omitempty"`

	// Title is the paper title.
	Title string `json:"title" yaml:"title"`

	// Author is the author line as reported by the source
	// (e.g. "A Vaswani, N Shazeer, N Parmar").
	Author string `json:"author" yaml:"author"`

	// Journal is the venue. Empty when the source did not report one.
	Journal string `json:"journal,omitempty" yaml:"journal,omitempty"`

	// AbstractText is the abstract or result snippet.
	AbstractText string `json:"abstractText,omitempty" yaml:"abstract_text,omitempty"`

	// Year is the publication year; nil when unknown.
	Year *int `json:"year,omitempty" yaml:"year,omitempty"`

	// Source names the adapter that produced the record (e.g. "remote", "scholar").
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
}

// Key identifies a paper for deduplication: lowercased title and author.
type Key struct {
	Title  string
	Author string
}

// Key returns the equivalence key of p.
func (p Paper) Key() Key {
	return Key{
		Title:  strings.ToLower(p.Title),
		Author: strings.ToLower(p.Author),
	}
}

// YearOf returns a pointer to y, for building Papers and queries.
func YearOf(y int) *int {
	return &y
}
