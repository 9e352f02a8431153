// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import "github.com/pdiddy/paper-crawler/pkg/types"

// FilterByYear keeps records whose year lies within [from, to]. Either bound
// may be nil. Records without a year always pass.
func FilterByYear(records []types.Paper, from, to *int) []types.Paper {
	if from == nil && to == nil {
		return records
	}
	out := make([]types.Paper, 0, len(records))
	for _, r := range records {
		if InYearRange(r.Year, from, to) {
			out = append(out, r)
		}
	}
	return out
}

// InYearRange reports whether year passes the inclusive bounds.
func InYearRange(year, from, to *int) bool {
	if year == nil {
		return true
	}
	if from != nil && *year < *from {
		return false
	}
	if to != nil && *year > *to {
		return false
	}
	return true
}
