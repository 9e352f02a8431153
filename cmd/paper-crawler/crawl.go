// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-crawler/internal/export"
	"github.com/pdiddy/paper-crawler/pkg/types"
)

var crawlCmd = &cobra.Command{
	Use:   "crawl <keyword>...",
	Short: "Fetch papers for one keyword",
	Long: `Crawl fetches papers for a keyword, trying each enabled source in order
until one answers. Arguments are joined into a single keyword. Papers already
in the store are skipped. With --save the new papers are persisted; with --out
they are written to a result file that save can persist after review.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCrawl,
}

func init() {
	crawlCmd.Flags().Int("max-results", 10, "maximum number of papers to fetch")
	addOutputFlags(crawlCmd)

	rootCmd.AddCommand(crawlCmd)
}

func runCrawl(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	maxResults, _ := cmd.Flags().GetInt("max-results")
	save, _ := cmd.Flags().GetBool("save")
	from, to := yearBounds(cmd)

	query := types.Query{
		Keyword:    strings.Join(args, " "),
		MaxResults: maxResults,
		YearFrom:   from,
		YearTo:     to,
	}

	crawler, st, err := currentCrawler(ctx)
	if err != nil {
		return err
	}
	defer closeStore(st)

	run := crawler.Crawl
	if save {
		run = crawler.CrawlAndPersist
	}
	res, err := run(ctx, query)
	if err != nil {
		return err
	}

	if err := writeResultFile(cmd, export.NewResultFile(query, res, time.Now())); err != nil {
		return err
	}
	return writePapers(cmd, os.Stdout, res.Papers, func(w io.Writer) {
		export.FormatResult(res, w)
	})
}
