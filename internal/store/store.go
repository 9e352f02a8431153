// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists papers. Two backends are provided: a SQLite file
// (the default) and a MongoDB collection. Both enforce one paper per
// (lowercased title, lowercased author) key, so saving a paper twice is a
// no-op rather than an error.
package store

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pdiddy/paper-crawler/internal/pipeline"
	"github.com/pdiddy/paper-crawler/pkg/types"
)

const (
	defaultPath     = "papers.db"
	defaultDatabase = "paper_crawler"
	collectionName  = "papers"
)

// Store is a paper store with a key listing and a connection to release.
type Store interface {
	pipeline.Store
	pipeline.KeyLister
	io.Closer

	Count(ctx context.Context) (int, error)
}

// Open returns the store selected by cfg.Backend. It returns a nil Store
// and no error for the "none" backend.
func Open(ctx context.Context, cfg types.StoreConfig) (Store, error) {
	switch cfg.Backend {
	case types.StoreSQLite, "":
		path := cfg.Path
		if path == "" {
			path = defaultPath
		}
		s, err := NewSQLite(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case types.StoreMongo:
		if cfg.MongoURI == "" {
			return nil, fmt.Errorf("mongo store: no connection URI configured")
		}
		db := cfg.MongoDatabase
		if db == "" {
			db = defaultDatabase
		}
		m, err := NewMongo(ctx, cfg.MongoURI, db)
		if err != nil {
			return nil, err
		}
		return m, nil
	case types.StoreNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// paperRow is the stored form of a Paper, shared by both backends.
type paperRow struct {
	ID           string    `db:"id" bson:"_id"`
	Title        string    `db:"title" bson:"title"`
	Author       string    `db:"author" bson:"author"`
	Journal      string    `db:"journal" bson:"journal,omitempty"`
	AbstractText string    `db:"abstract_text" bson:"abstract_text,omitempty"`
	Year         *int      `db:"year" bson:"year,omitempty"`
	Source       string    `db:"source" bson:"source,omitempty"`
	TitleKey     string    `db:"title_key" bson:"title_key"`
	AuthorKey    string    `db:"author_key" bson:"author_key"`
	CreatedAt    time.Time `db:"created_at" bson:"created_at"`
}

func toRow(p types.Paper, now time.Time) paperRow {
	k := p.Key()
	return paperRow{
		ID:           p.ID,
		Title:        p.Title,
		Author:       p.Author,
		Journal:      p.Journal,
		AbstractText: p.AbstractText,
		Year:         p.Year,
		Source:       p.Source,
		TitleKey:     k.Title,
		AuthorKey:    k.Author,
		CreatedAt:    now.UTC(),
	}
}

func (r paperRow) paper() types.Paper {
	return types.Paper{
		ID:           r.ID,
		Title:        r.Title,
		Author:       r.Author,
		Journal:      r.Journal,
		AbstractText: r.AbstractText,
		Year:         r.Year,
		Source:       r.Source,
	}
}

func validate(p types.Paper) error {
	if p.ID == "" {
		return fmt.Errorf("paper %q has no ID", p.Title)
	}
	if p.Title == "" || p.Author == "" {
		return fmt.Errorf("paper %q: %w", p.ID, pipeline.ErrMissingRequiredField)
	}
	return nil
}
