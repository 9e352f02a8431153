// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-crawler/internal/export"
)

var saveCmd = &cobra.Command{
	Use:   "save <result-file>",
	Short: "Persist the papers of a reviewed result file",
	Long: `Save reads a result file written by crawl --out or batch --out and
persists its papers. Remove entries from the file first to keep only the
papers you selected. Papers already stored or missing a title or author are
skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runSave,
}

func init() {
	rootCmd.AddCommand(saveCmd)
}

func runSave(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	rf, err := export.ReadResultFile(args[0])
	if err != nil {
		return err
	}

	crawler, st, err := currentCrawler(ctx)
	if err != nil {
		return err
	}
	defer closeStore(st)

	saved, err := crawler.PersistSelected(ctx, rf.Papers)
	printSaveSummary(os.Stdout, len(saved), len(rf.Papers))
	return err
}

// printSaveSummary reports how many offered papers were saved. Skipped
// papers were already stored, lacked a title or author, or failed to store;
// the log names the reason for each.
func printSaveSummary(w io.Writer, saved, offered int) {
	fmt.Fprintf(w, "Saved %d of %d papers", saved, offered)
	if skipped := offered - saved; skipped > 0 {
		fmt.Fprintf(w, ", %d skipped (see log)", skipped)
	}
	fmt.Fprintln(w)
}
