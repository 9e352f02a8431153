// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-crawler/internal/pipeline"
	"github.com/pdiddy/paper-crawler/pkg/types"
)

// ResultFile is the on-disk form of a crawl and its papers. A user can
// review it, remove unwanted papers, and persist the rest with
// Crawler.PersistSelected.
type ResultFile struct {
	Query   ResultQuery   `yaml:"query"`
	Papers  []types.Paper `yaml:"papers"`
	Summary ResultSummary `yaml:"summary"`
}

// ResultQuery records what was crawled.
type ResultQuery struct {
	Keyword    string   `yaml:"keyword,omitempty"`
	Keywords   []string `yaml:"keywords,omitempty"`
	MaxResults int      `yaml:"max_results"`
	YearFrom   *int     `yaml:"year_from,omitempty"`
	YearTo     *int     `yaml:"year_to,omitempty"`
}

// ResultSummary stores result statistics and a timestamp.
type ResultSummary struct {
	Total             int                       `yaml:"total"`
	Source            string                    `yaml:"source,omitempty"`
	DuplicatesRemoved int                       `yaml:"duplicates_removed"`
	FilteredByYear    int                       `yaml:"filtered_by_year"`
	Dropped           int                       `yaml:"dropped"`
	Failures          []pipeline.KeywordOutcome `yaml:"failures,omitempty"`
	Timestamp         time.Time                 `yaml:"timestamp"`
}

// NewResultFile builds the file contents for a single-keyword crawl.
func NewResultFile(q types.Query, res pipeline.Result, now time.Time) ResultFile {
	return ResultFile{
		Query: ResultQuery{
			Keyword:    q.Keyword,
			MaxResults: q.MaxResults,
			YearFrom:   q.YearFrom,
			YearTo:     q.YearTo,
		},
		Papers: res.Papers,
		Summary: ResultSummary{
			Total:             len(res.Papers),
			Source:            res.Source,
			DuplicatesRemoved: res.DuplicatesRemoved,
			FilteredByYear:    res.FilteredByYear,
			Dropped:           res.Dropped,
			Timestamp:         now,
		},
	}
}

// NewBatchResultFile builds the file contents for a batch crawl.
func NewBatchResultFile(b types.BatchQuery, res pipeline.BatchResult, now time.Time) ResultFile {
	return ResultFile{
		Query: ResultQuery{
			Keywords:   b.Keywords,
			MaxResults: b.MaxResultsPerKeyword,
			YearFrom:   b.YearFrom,
			YearTo:     b.YearTo,
		},
		Papers: res.Papers,
		Summary: ResultSummary{
			Total:             len(res.Papers),
			DuplicatesRemoved: res.DuplicatesRemoved,
			FilteredByYear:    res.FilteredByYear,
			Dropped:           res.Dropped,
			Failures:          res.Failures(),
			Timestamp:         now,
		},
	}
}

// WriteResultFile saves rf as YAML at path.
func WriteResultFile(path string, rf ResultFile) error {
	data, err := yaml.Marshal(&rf)
	if err != nil {
		return fmt.Errorf("marshaling result file: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing result file: %w", err)
	}
	return nil
}

// ReadResultFile loads a result file written by WriteResultFile.
func ReadResultFile(path string) (*ResultFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading result file: %w", err)
	}
	var rf ResultFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing result file: %w", err)
	}
	return &rf, nil
}
