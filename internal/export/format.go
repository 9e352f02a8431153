// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export renders crawl results for people and tools: a text table,
// JSON, CSL-YAML for reference managers, and YAML result files that can be
// reloaded to persist a selection later.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/paper-crawler/internal/pipeline"
	"github.com/pdiddy/paper-crawler/pkg/types"
)

// FormatTable writes papers as an aligned text table to w.
func FormatTable(papers []types.Paper, w io.Writer) {
	if len(papers) == 0 {
		fmt.Fprintln(w, "No papers found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-60s  %-24s  %-4s  %-24s  %s\n",
		"#", "Title", "Author", "Year", "Journal", "Source")
	fmt.Fprintln(w, strings.Repeat("-", 130))

	for i, p := range papers {
		year := ""
		if p.Year != nil {
			year = strconv.Itoa(*p.Year)
		}
		fmt.Fprintf(w, "%-4d  %-60s  %-24s  %-4s  %-24s  %s\n",
			i+1, truncate(p.Title, 60), truncate(p.Author, 24), year, truncate(p.Journal, 24), p.Source)
	}
}

// FormatResult writes a single-keyword crawl as a table plus a summary line.
func FormatResult(res pipeline.Result, w io.Writer) {
	FormatTable(res.Papers, w)
	fmt.Fprintf(w, "\n%d papers for %q", len(res.Papers), res.Keyword)
	if res.Source != "" {
		fmt.Fprintf(w, " from %s", res.Source)
	}
	writeCounts(w, res.DuplicatesRemoved, res.FilteredByYear, res.Dropped)
	fmt.Fprintln(w)
}

// FormatBatch writes a batch crawl as a table, a summary line and one line
// per failed keyword.
func FormatBatch(res pipeline.BatchResult, w io.Writer) {
	FormatTable(res.Papers, w)
	fmt.Fprintf(w, "\n%d papers, %d/%d keywords succeeded", len(res.Papers), res.Succeeded(), len(res.Outcomes))
	writeCounts(w, res.DuplicatesRemoved, res.FilteredByYear, res.Dropped)
	fmt.Fprintln(w)
	for _, o := range res.Failures() {
		fmt.Fprintf(w, "failed  %s: %s\n", o.Keyword, o.Error)
	}
}

func writeCounts(w io.Writer, dups, filtered, dropped int) {
	var parts []string
	if dups > 0 {
		parts = append(parts, fmt.Sprintf("%d duplicates removed", dups))
	}
	if filtered > 0 {
		parts = append(parts, fmt.Sprintf("%d outside year range", filtered))
	}
	if dropped > 0 {
		parts = append(parts, fmt.Sprintf("%d malformed records dropped", dropped))
	}
	if len(parts) > 0 {
		fmt.Fprintf(w, " (%s)", strings.Join(parts, ", "))
	}
}

// FormatJSON writes papers as indented JSON to w.
func FormatJSON(papers []types.Paper, w io.Writer) error {
	if papers == nil {
		papers = []types.Paper{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(papers)
}

// truncate shortens s to at most max runes.
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max-3]) + "..."
}
