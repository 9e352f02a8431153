// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-crawler/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the crawl operations as a JSON API",
	Long: `Serve exposes crawl, batch crawl, save and health under /api/crawler.
The server stops gracefully on interrupt.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from server.addr)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := loadConfig(viper.GetViper(), loadedSecrets)
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}

	crawler, st, err := buildCrawler(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore(st)

	return server.New(crawler, slog.Default()).ListenAndServe(ctx, cfg.Server.Addr)
}
