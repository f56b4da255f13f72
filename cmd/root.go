// Package cmd defines and implements the CLI commands for the bookscrape
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
		Use:   "bookscrape",
		Short: "A batch scraper for product pages listed in a CSV file.",
		Long: `bookscrape fetches every product page listed in a CSV file, extracts
the title and the product information table from each page, and writes one
JSON record per page into an output directory, reporting the elapsed time
for the whole run.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (optional; defaults apply without one)")

	cmd.AddCommand(newScrapeCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "bookscrape: %v\n", err)
		os.Exit(1)
	}
}
