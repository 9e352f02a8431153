// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the sources answer",
	Long: `Health checks every source that supports a health check and prints its
status, followed by the number of stored papers. It exits non-zero when any
source is unhealthy.`,
	RunE: runHealth,
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

func runHealth(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	crawler, st, err := currentCrawler(ctx)
	if err != nil {
		return err
	}
	defer closeStore(st)

	healthy := printHealth(os.Stdout, crawler.Health(ctx))
	if st != nil {
		n, err := st.Count(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "%-10s %d papers\n", "store", n)
	}
	if !healthy {
		return fmt.Errorf("unhealthy")
	}
	return nil
}

// printHealth writes one line per source and reports whether all are healthy.
// No checked source counts as unhealthy.
func printHealth(w io.Writer, status map[string]error) bool {
	if len(status) == 0 {
		fmt.Fprintln(w, "No source supports a health check.")
		return false
	}
	names := make([]string, 0, len(status))
	for name := range status {
		names = append(names, name)
	}
	sort.Strings(names)

	healthy := true
	for _, name := range names {
		if err := status[name]; err != nil {
			healthy = false
			fmt.Fprintf(w, "%-10s down  %v\n", name, err)
			continue
		}
		fmt.Fprintf(w, "%-10s ok\n", name)
	}
	return healthy
}
