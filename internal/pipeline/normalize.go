// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"encoding/json"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/pdiddy/paper-crawler/pkg/types"
)

// Normalize converts a raw source record into a Paper. Title and author are
// required; a malformed year is dropped rather than failing the record.
func Normalize(raw types.RawRecord) (types.Paper, error) {
	p, _, err := normalize(raw)
	return p, err
}

// normalize also reports whether a year value was present but unusable.
func normalize(raw types.RawRecord) (types.Paper, bool, error) {
	title := stringField(raw, "title")
	if title == "" {
		return types.Paper{}, false, &MissingFieldError{Field: "title"}
	}
	author := stringField(raw, "author")
	if author == "" {
		return types.Paper{}, false, &MissingFieldError{Field: "author", Title: title}
	}

	p := types.Paper{
		Title:        title,
		Author:       author,
		Journal:      stringField(raw, "journal"),
		AbstractText: stringField(raw, "abstractText"),
	}

	badYear := false
	if v, ok := raw["year"]; ok && v != nil {
		if y, ok := parseYear(v); ok {
			p.Year = &y
		} else {
			badYear = true
		}
	}
	return p, badYear, nil
}

// NormalizeAll normalizes every record. Records that fail are left out and
// their errors returned alongside the papers that succeeded.
func NormalizeAll(raws []types.RawRecord, source string, logger *slog.Logger) ([]types.Paper, []error) {
	if logger == nil {
		logger = slog.Default()
	}
	papers := make([]types.Paper, 0, len(raws))
	var issues []error
	for i, raw := range raws {
		p, badYear, err := normalize(raw)
		if err != nil {
			logger.Warn("dropping record", "source", source, "index", i, "error", err)
			issues = append(issues, err)
			continue
		}
		if badYear {
			logger.Info("ignoring unparseable year", "source", source, "title", p.Title, "year", raw["year"])
		}
		p.Source = source
		papers = append(papers, p)
	}
	return papers, issues
}

// stringField returns the trimmed string value of key, or "" when the key
// is missing or not a string.
func stringField(raw types.RawRecord, key string) string {
	s, ok := raw[key].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

// parseYear accepts integers, integral floats (JSON numbers), json.Number,
// and numeric strings.
func parseYear(v any) (int, bool) {
	switch y := v.(type) {
	case int:
		return y, true
	case int32:
		return int(y), true
	case int64:
		return int(y), true
	case float64:
		if y != math.Trunc(y) || math.IsInf(y, 0) {
			return 0, false
		}
		return int(y), true
	case json.Number:
		n, err := strconv.Atoi(y.String())
		return n, err == nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(y))
		return n, err == nil
	default:
		return 0, false
	}
}
