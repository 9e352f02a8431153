// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-crawler/pkg/types"
)

func TestNormalizeYear(t *testing.T) {
	tests := []struct {
		name string
		year any
		want *int
	}{
		{"numeric string", "1999", types.YearOf(1999)},
		{"padded numeric string", " 2004 ", types.YearOf(2004)},
		{"int", 2017, types.YearOf(2017)},
		{"int64", int64(2018), types.YearOf(2018)},
		{"json float", float64(2020), types.YearOf(2020)},
		{"json number", json.Number("2021"), types.YearOf(2021)},
		{"non-numeric string", "unknown", nil},
		{"fractional float", 2020.5, nil},
		{"bool", true, nil},
		{"nil", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Normalize(types.RawRecord{"title": "T", "author": "A", "year": tt.year})
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Year)
		})
	}
}

func TestNormalizeMissingYear(t *testing.T) {
	p, err := Normalize(types.RawRecord{"title": "T", "author": "A"})
	require.NoError(t, err)
	assert.Nil(t, p.Year)
}

func TestNormalizeRequiredFields(t *testing.T) {
	tests := []struct {
		name  string
		raw   types.RawRecord
		field string
	}{
		{"missing title", types.RawRecord{"author": "A"}, "title"},
		{"blank title", types.RawRecord{"title": "  ", "author": "A"}, "title"},
		{"non-string title", types.RawRecord{"title": 42, "author": "A"}, "title"},
		{"missing author", types.RawRecord{"title": "T"}, "author"},
		{"empty author", types.RawRecord{"title": "T", "author": ""}, "author"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.raw)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMissingRequiredField))

			var mf *MissingFieldError
			require.True(t, errors.As(err, &mf))
			assert.Equal(t, tt.field, mf.Field)
		})
	}
}

func TestNormalizeOptionalFields(t *testing.T) {
	p, err := Normalize(types.RawRecord{
		"title":        "  Attention Is All You Need ",
		"author":       "A Vaswani",
		"journal":      "NeurIPS",
		"abstractText": "The dominant sequence transduction models...",
		"citations":    120000,
		"pdfUrl":       "https://example.org/a.pdf",
	})
	require.NoError(t, err)
	assert.Equal(t, "Attention Is All You Need", p.Title)
	assert.Equal(t, "NeurIPS", p.Journal)
	assert.Equal(t, "The dominant sequence transduction models...", p.AbstractText)

	p, err = Normalize(types.RawRecord{"title": "T", "author": "A", "journal": nil})
	require.NoError(t, err)
	assert.Empty(t, p.Journal)
	assert.Empty(t, p.AbstractText)
}

func TestNormalizeAllDropsBadRecordsAndContinues(t *testing.T) {
	raws := []types.RawRecord{
		raw("First", "A", "2001"),
		{"author": "no title"},
		raw("Third", "C", "unknown"),
	}

	papers, issues := NormalizeAll(raws, "remote", quietLogger())
	require.Len(t, papers, 2)
	require.Len(t, issues, 1)
	assert.True(t, errors.Is(issues[0], ErrMissingRequiredField))

	assert.Equal(t, "First", papers[0].Title)
	assert.Equal(t, 2001, *papers[0].Year)
	assert.Equal(t, "Third", papers[1].Title)
	assert.Nil(t, papers[1].Year)
	for _, p := range papers {
		assert.Equal(t, "remote", p.Source)
	}
}
