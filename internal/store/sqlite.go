// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/paper-crawler/pkg/types"
)

// SQLite stores papers in a SQLite database file.
type SQLite struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewSQLite opens or creates the database at path and creates the schema
// if it does not exist.
func NewSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
	}

	db, err := sqlx.Connect("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One writer at a time; SQLite serializes writes anyway.
	db.SetMaxOpenConns(1)

	s := &SQLite{db: db, now: time.Now}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS papers (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			author TEXT NOT NULL,
			journal TEXT NOT NULL DEFAULT '',
			abstract_text TEXT NOT NULL DEFAULT '',
			year INTEGER,
			source TEXT NOT NULL DEFAULT '',
			title_key TEXT NOT NULL,
			author_key TEXT NOT NULL,
			created_at DATETIME NOT NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_papers_key ON papers(title_key, author_key)`,
		`CREATE INDEX IF NOT EXISTS idx_papers_year ON papers(year)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// CreatePaper inserts p. It returns false without error when a paper with
// the same key (or ID) is already stored.
func (s *SQLite) CreatePaper(ctx context.Context, p types.Paper) (bool, error) {
	if err := validate(p); err != nil {
		return false, err
	}
	res, err := s.db.NamedExecContext(ctx, `INSERT OR IGNORE INTO papers
		(id, title, author, journal, abstract_text, year, source, title_key, author_key, created_at)
		VALUES (:id, :title, :author, :journal, :abstract_text, :year, :source, :title_key, :author_key, :created_at)`,
		toRow(p, s.now()))
	if err != nil {
		return false, fmt.Errorf("inserting paper: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("inserting paper: %w", err)
	}
	return n == 1, nil
}

// AllPapers returns every stored paper in insertion order.
func (s *SQLite) AllPapers(ctx context.Context) ([]types.Paper, error) {
	var rows []paperRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT id, title, author, journal, abstract_text,
		year, source, title_key, author_key, created_at FROM papers ORDER BY created_at, rowid`); err != nil {
		return nil, fmt.Errorf("listing papers: %w", err)
	}
	papers := make([]types.Paper, len(rows))
	for i, r := range rows {
		papers[i] = r.paper()
	}
	return papers, nil
}

// Keys returns the deduplication key of every stored paper.
func (s *SQLite) Keys(ctx context.Context) ([]types.Key, error) {
	var rows []struct {
		Title  string `db:"title_key"`
		Author string `db:"author_key"`
	}
	if err := s.db.SelectContext(ctx, &rows, `SELECT title_key, author_key FROM papers`); err != nil {
		return nil, fmt.Errorf("listing paper keys: %w", err)
	}
	keys := make([]types.Key, len(rows))
	for i, r := range rows {
		keys[i] = types.Key{Title: r.Title, Author: r.Author}
	}
	return keys, nil
}

// Count returns the number of stored papers.
func (s *SQLite) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT count(*) FROM papers`); err != nil {
		return 0, fmt.Errorf("counting papers: %w", err)
	}
	return n, nil
}
