// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/paper-crawler/pkg/types"
)

func TestInYearRange(t *testing.T) {
	y := types.YearOf
	tests := []struct {
		name     string
		year     *int
		from, to *int
		want     bool
	}{
		{"no bounds", y(1990), nil, nil, true},
		{"equal to from", y(2020), y(2020), nil, true},
		{"below from", y(2020), y(2021), nil, false},
		{"equal to to", y(2020), nil, y(2020), true},
		{"above to", y(2021), nil, y(2020), false},
		{"inside both", y(2015), y(2010), y(2020), true},
		{"single-year range", y(2020), y(2020), y(2020), true},
		{"absent year, from only", nil, y(2021), nil, true},
		{"absent year, to only", nil, nil, y(1900), true},
		{"absent year, both", nil, y(2000), y(2001), true},
		{"absent year, none", nil, nil, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InYearRange(tt.year, tt.from, tt.to))
		})
	}
}

func TestFilterByYear(t *testing.T) {
	records := []types.Paper{
		paper("Old", "A", 1999),
		paper("Undated", "B", 0),
		paper("Mid", "C", 2010),
		paper("New", "D", 2024),
	}

	got := FilterByYear(records, types.YearOf(2000), types.YearOf(2020))
	var titles []string
	for _, p := range got {
		titles = append(titles, p.Title)
	}
	assert.Equal(t, []string{"Undated", "Mid"}, titles)

	assert.Len(t, FilterByYear(records, nil, nil), 4)
}
