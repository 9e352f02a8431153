// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-crawler/internal/export"
	"github.com/pdiddy/paper-crawler/pkg/types"
)

var batchCmd = &cobra.Command{
	Use:   "batch [keyword]...",
	Short: "Fetch papers for several keywords",
	Long: `Batch fetches papers for every keyword given as an argument or listed in
--keywords-file (one per line, # starts a comment). A keyword that fails on all
sources is reported but does not stop the others. The papers of all keywords
are deduplicated together before the year filter applies.`,
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().Int("max-per-keyword", 5, "maximum number of papers to fetch per keyword")
	batchCmd.Flags().String("keywords-file", "", "file with one keyword per line")
	addOutputFlags(batchCmd)

	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	perKeyword, _ := cmd.Flags().GetInt("max-per-keyword")
	file, _ := cmd.Flags().GetString("keywords-file")
	save, _ := cmd.Flags().GetBool("save")
	from, to := yearBounds(cmd)

	keywords, err := readKeywords(args, file)
	if err != nil {
		return err
	}
	if len(keywords) == 0 {
		return fmt.Errorf("no keywords: pass them as arguments or with --keywords-file")
	}
	batch := types.BatchQuery{
		Keywords:             keywords,
		MaxResultsPerKeyword: perKeyword,
		YearFrom:             from,
		YearTo:               to,
	}

	crawler, st, err := currentCrawler(ctx)
	if err != nil {
		return err
	}
	defer closeStore(st)

	run := crawler.CrawlBatch
	if save {
		run = crawler.CrawlBatchAndPersist
	}
	res, err := run(ctx, batch)
	if err != nil {
		if len(res.Outcomes) > 0 {
			export.FormatBatch(res, os.Stderr)
		}
		return err
	}

	if err := writeResultFile(cmd, export.NewBatchResultFile(batch, res, time.Now())); err != nil {
		return err
	}
	return writePapers(cmd, os.Stdout, res.Papers, func(w io.Writer) {
		export.FormatBatch(res, w)
	})
}
