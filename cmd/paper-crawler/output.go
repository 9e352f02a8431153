// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-crawler/internal/export"
	"github.com/pdiddy/paper-crawler/pkg/types"
)

// addOutputFlags registers the flags shared by commands that print papers.
func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().Int("from", 0, "earliest publication year (0 for no bound)")
	cmd.Flags().Int("to", 0, "latest publication year (0 for no bound)")
	cmd.Flags().Bool("json", false, "output papers as JSON")
	cmd.Flags().Bool("csl", false, "output papers as CSL YAML")
	cmd.Flags().String("out", "", "also write a result file for later review and save")
	cmd.Flags().Bool("save", false, "persist the papers found")
}

// yearBounds reads --from and --to, treating zero as unset.
func yearBounds(cmd *cobra.Command) (from, to *int) {
	if v, _ := cmd.Flags().GetInt("from"); v != 0 {
		from = types.YearOf(v)
	}
	if v, _ := cmd.Flags().GetInt("to"); v != 0 {
		to = types.YearOf(v)
	}
	return from, to
}

// writePapers prints papers in the format chosen by flags. The default
// format is rendered by table, which prints the papers with a summary.
func writePapers(cmd *cobra.Command, w io.Writer, papers []types.Paper, table func(io.Writer)) error {
	asJSON, _ := cmd.Flags().GetBool("json")
	asCSL, _ := cmd.Flags().GetBool("csl")
	switch {
	case asJSON && asCSL:
		return fmt.Errorf("--json and --csl are mutually exclusive")
	case asJSON:
		return export.FormatJSON(papers, w)
	case asCSL:
		return export.FormatCSL(papers, w)
	}
	table(w)
	return nil
}

// writeResultFile saves rf when --out is set.
func writeResultFile(cmd *cobra.Command, rf export.ResultFile) error {
	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		return nil
	}
	if err := export.WriteResultFile(out, rf); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Wrote %d papers to %s\n", len(rf.Papers), out)
	return nil
}

// readKeywords returns keywords from args followed by the non-empty,
// non-comment lines of file.
func readKeywords(args []string, file string) ([]string, error) {
	keywords := append([]string(nil), args...)
	if file == "" {
		return keywords, nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("reading keywords file: %w", err)
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		keywords = append(keywords, line)
	}
	return keywords, nil
}
