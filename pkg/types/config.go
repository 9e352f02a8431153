// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by sources that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// RemoteConfig configures the delegated crawler service source.
type RemoteConfig struct {
	HTTPConfig `yaml:",inline"`

	// Enabled controls whether the remote source is part of the chain.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// URL is the base URL of the crawler service (e.g. "http://localhost:5000").
	URL string `json:"url" yaml:"url"`

	// Token is an optional bearer token sent to the service.
	Token string `json:"token,omitempty" yaml:"token,omitempty"`
}

// ScholarConfig configures the local Google Scholar scraping source.
type ScholarConfig struct {
	HTTPConfig `yaml:",inline"`

	// Enabled controls whether the local scraper is part of the chain.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// BaseURL is the Scholar host (default https://scholar.google.com).
	BaseURL string `json:"base_url" yaml:"base_url"`

	// PageDelay is the delay between result pages of one query (default 1s).
	PageDelay time.Duration `json:"page_delay" yaml:"page_delay"`

	// RespectRobots makes the scraper honor robots.txt.
	RespectRobots bool `json:"respect_robots" yaml:"respect_robots"`
}

// PipelineConfig holds settings for the fetch-and-reconcile pipeline.
type PipelineConfig struct {
	// AdapterTimeout bounds every single source call (default 30s).
	AdapterTimeout time.Duration `json:"adapter_timeout" yaml:"adapter_timeout"`

	// PacingInterval is the minimum interval between external source calls (default 2s).
	PacingInterval time.Duration `json:"pacing_interval" yaml:"pacing_interval"`

	// PreferBatchEndpoint tries the remote batch endpoint before crawling
	// keywords one by one.
	PreferBatchEndpoint bool `json:"prefer_batch_endpoint" yaml:"prefer_batch_endpoint"`
}

// StoreBackend selects the paper store implementation.
type StoreBackend string

const (
	StoreSQLite StoreBackend = "sqlite"
	StoreMongo  StoreBackend = "mongo"
	StoreNone   StoreBackend = "none"
)

// StoreConfig holds settings for the paper store.
type StoreConfig struct {
	// Backend selects sqlite, mongo, or none.
	Backend StoreBackend `json:"backend" yaml:"backend"`

	// Path is the SQLite database file (default papers.db).
	Path string `json:"path" yaml:"path"`

	// MongoURI is the MongoDB connection string.
	MongoURI string `json:"mongo_uri,omitempty" yaml:"mongo_uri,omitempty"`

	// MongoDatabase is the MongoDB database name (default paper_crawler).
	MongoDatabase string `json:"mongo_database" yaml:"mongo_database"`
}

// ServerConfig holds settings for the REST API.
type ServerConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string `json:"addr" yaml:"addr"`
}

// Config groups all settings of the crawler.
type Config struct {
	Remote   RemoteConfig   `json:"remote" yaml:"remote"`
	Scholar  ScholarConfig  `json:"scholar" yaml:"scholar"`
	Pipeline PipelineConfig `json:"pipeline" yaml:"pipeline"`
	Store    StoreConfig    `json:"store" yaml:"store"`
	Server   ServerConfig   `json:"server" yaml:"server"`
}
