// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-crawler/internal/pipeline"
	"github.com/pdiddy/paper-crawler/pkg/types"
)

func newTestSQLite(t *testing.T) *SQLite {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "db", "papers.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return s
}

func testPaper(id, title, author string, year int) types.Paper {
	p := types.Paper{ID: id, Title: title, Author: author, Journal: "J", AbstractText: "abs", Source: "remote"}
	if year != 0 {
		p.Year = types.YearOf(year)
	}
	return p
}

func TestSQLiteCreateAndList(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	ok, err := s.CreatePaper(ctx, testPaper("1", "Deep Learning", "Y LeCun", 2015))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.CreatePaper(ctx, testPaper("2", "Undated", "Anon", 0))
	require.NoError(t, err)
	assert.True(t, ok)

	papers, err := s.AllPapers(ctx)
	require.NoError(t, err)
	require.Len(t, papers, 2)
	assert.Equal(t, testPaper("1", "Deep Learning", "Y LeCun", 2015), papers[0])
	assert.Equal(t, "Undated", papers[1].Title)
	assert.Nil(t, papers[1].Year)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestSQLiteRejectsDuplicateKey(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	ok, err := s.CreatePaper(ctx, testPaper("1", "Deep Learning", "Y LeCun", 2015))
	require.NoError(t, err)
	require.True(t, ok)

	tests := []struct {
		name  string
		paper types.Paper
	}{
		{"same key, different case", testPaper("2", "DEEP LEARNING", "y lecun", 2016)},
		{"same id", testPaper("1", "Other", "Other", 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := s.CreatePaper(ctx, tt.paper)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSQLiteKeys(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	_, err := s.CreatePaper(ctx, testPaper("1", "Deep Learning", "Y LeCun", 0))
	require.NoError(t, err)

	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []types.Key{{Title: "deep learning", Author: "y lecun"}}, keys)
}

func TestSQLiteValidates(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	_, err := s.CreatePaper(ctx, testPaper("", "T", "A", 0))
	assert.Error(t, err)

	_, err = s.CreatePaper(ctx, testPaper("1", "T", "", 0))
	assert.True(t, errors.Is(err, pipeline.ErrMissingRequiredField))
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "papers.db")
	ctx := context.Background()

	s, err := NewSQLite(path)
	require.NoError(t, err)
	_, err = s.CreatePaper(ctx, testPaper("1", "T", "A", 2000))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = NewSQLite(path)
	require.NoError(t, err)
	defer s.Close()
	papers, err := s.AllPapers(ctx)
	require.NoError(t, err)
	assert.Len(t, papers, 1)
}

func TestSQLiteWithCrawler(t *testing.T) {
	s := newTestSQLite(t)
	c := pipeline.New(nil, s, types.PipelineConfig{}, nil)

	saved, err := c.PersistSelected(context.Background(), []types.Paper{
		{Title: "A", Author: "X"}, {Title: "a", Author: "x"}, {Title: "B", Author: "Y"},
	})
	require.NoError(t, err)
	assert.Len(t, saved, 2)

	saved, err = c.PersistSelected(context.Background(), []types.Paper{{Title: "B", Author: "Y"}})
	require.NoError(t, err)
	assert.Empty(t, saved)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, types.StoreConfig{Backend: types.StoreSQLite, Path: filepath.Join(t.TempDir(), "p.db")})
	require.NoError(t, err)
	require.NotNil(t, s)
	require.NoError(t, s.Close())

	s, err = Open(ctx, types.StoreConfig{Backend: types.StoreNone})
	require.NoError(t, err)
	assert.Nil(t, s)

	_, err = Open(ctx, types.StoreConfig{Backend: types.StoreMongo})
	assert.Error(t, err)

	_, err = Open(ctx, types.StoreConfig{Backend: "postgres"})
	assert.Error(t, err)
}

func TestMongo(t *testing.T) {
	uri := os.Getenv("PAPER_CRAWLER_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("PAPER_CRAWLER_TEST_MONGO_URI not set")
	}
	ctx := context.Background()
	db := "paper_crawler_test_" + time.Now().Format("20060102150405")

	m, err := NewMongo(ctx, uri, db)
	require.NoError(t, err)
	t.Cleanup(func() {
		m.client.Database(db).Drop(context.Background())
		m.Close()
	})

	ok, err := m.CreatePaper(ctx, testPaper("1", "Deep Learning", "Y LeCun", 2015))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = m.CreatePaper(ctx, testPaper("2", "deep learning", "Y LECUN", 0))
	require.NoError(t, err)
	assert.False(t, ok)

	papers, err := m.AllPapers(ctx)
	require.NoError(t, err)
	require.Len(t, papers, 1)
	assert.Equal(t, 2015, *papers[0].Year)

	keys, err := m.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []types.Key{{Title: "deep learning", Author: "y lecun"}}, keys)
}
