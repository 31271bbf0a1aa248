// Package cmd defines and implements the CLI commands for the facultyscraper
// executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "facultyscraper",
		Short: "A bounded-time, multi-stage faculty contact scraper.",
		Long: `facultyscraper walks an institution site from its root navigation down to
individual faculty profile pages and extracts contact records into a CSV
file. The crawl runs as a three-stage pipeline of worker pools under a
global time budget and records per-run statistics on exit.`,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default searches ., /etc/facultyscraper)")

	cmd.AddCommand(newScrapeCmd())
	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
