// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/paper-crawler/internal/pipeline"
	"github.com/pdiddy/paper-crawler/internal/secrets"
	"github.com/pdiddy/paper-crawler/internal/source"
	"github.com/pdiddy/paper-crawler/internal/store"
	"github.com/pdiddy/paper-crawler/pkg/types"
)

// setDefaults registers the default value of every configuration key.
func setDefaults(v *viper.Viper) {
	v.SetDefault("http.timeout", 30*time.Second)
	// Empty lets each source pick its own user agent.
	v.SetDefault("http.user_agent", "")

	v.SetDefault("remote.enabled", true)
	v.SetDefault("remote.url", "http://localhost:5000")
	v.SetDefault("remote.token", "")

	v.SetDefault("scholar.enabled", true)
	v.SetDefault("scholar.base_url", "https://scholar.google.com")
	v.SetDefault("scholar.page_delay", time.Second)
	v.SetDefault("scholar.respect_robots", false)

	v.SetDefault("pipeline.adapter_timeout", 30*time.Second)
	v.SetDefault("pipeline.pacing_interval", 2*time.Second)
	v.SetDefault("pipeline.prefer_batch_endpoint", false)

	v.SetDefault("store.backend", string(types.StoreSQLite))
	v.SetDefault("store.path", "papers.db")
	v.SetDefault("store.mongo_uri", "")
	v.SetDefault("store.mongo_database", "paper_crawler")

	v.SetDefault("server.addr", ":8080")
}

// loadConfig builds the crawler configuration from v and fills missing
// credentials from secret files.
func loadConfig(v *viper.Viper, secretValues map[string]string) types.Config {
	httpCfg := types.HTTPConfig{
		Timeout:   v.GetDuration("http.timeout"),
		UserAgent: v.GetString("http.user_agent"),
	}
	cfg := types.Config{
		Remote: types.RemoteConfig{
			HTTPConfig: httpCfg,
			Enabled:    v.GetBool("remote.enabled"),
			URL:        v.GetString("remote.url"),
			Token:      v.GetString("remote.token"),
		},
		Scholar: types.ScholarConfig{
			HTTPConfig:    httpCfg,
			Enabled:       v.GetBool("scholar.enabled"),
			BaseURL:       v.GetString("scholar.base_url"),
			PageDelay:     v.GetDuration("scholar.page_delay"),
			RespectRobots: v.GetBool("scholar.respect_robots"),
		},
		Pipeline: types.PipelineConfig{
			AdapterTimeout:      v.GetDuration("pipeline.adapter_timeout"),
			PacingInterval:      v.GetDuration("pipeline.pacing_interval"),
			PreferBatchEndpoint: v.GetBool("pipeline.prefer_batch_endpoint"),
		},
		Store: types.StoreConfig{
			Backend:       types.StoreBackend(v.GetString("store.backend")),
			Path:          v.GetString("store.path"),
			MongoURI:      v.GetString("store.mongo_uri"),
			MongoDatabase: v.GetString("store.mongo_database"),
		},
		Server: types.ServerConfig{
			Addr: v.GetString("server.addr"),
		},
	}
	secrets.Apply(&cfg, secretValues)
	return cfg
}

// buildAdapters returns the enabled sources in fallback order: the crawler
// service first, the local scraper second.
func buildAdapters(cfg types.Config, logger *slog.Logger) []source.Adapter {
	var adapters []source.Adapter
	if cfg.Remote.Enabled {
		client := &http.Client{Timeout: cfg.Remote.Timeout}
		adapters = append(adapters, source.NewRemote(client, cfg.Remote))
	}
	if cfg.Scholar.Enabled {
		adapters = append(adapters, source.NewScholar(cfg.Scholar, logger))
	}
	return adapters
}

// buildCrawler wires sources and store into a Crawler. The returned store is
// nil for the "none" backend; otherwise it must be released with closeStore.
func buildCrawler(ctx context.Context, cfg types.Config) (*pipeline.Crawler, store.Store, error) {
	logger := slog.Default()
	adapters := buildAdapters(cfg, logger)
	if len(adapters) == 0 {
		return nil, nil, fmt.Errorf("no sources enabled: set remote.enabled or scholar.enabled")
	}

	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, nil, err
	}
	var ps pipeline.Store
	if st != nil {
		ps = st
	}
	return pipeline.New(adapters, ps, cfg.Pipeline, logger), st, nil
}

// currentCrawler builds a Crawler from the global configuration.
func currentCrawler(ctx context.Context) (*pipeline.Crawler, store.Store, error) {
	return buildCrawler(ctx, loadConfig(viper.GetViper(), loadedSecrets))
}

func closeStore(st store.Store) {
	if st == nil {
		return
	}
	if err := st.Close(); err != nil {
		slog.Warn("closing store", "error", err)
	}
}
