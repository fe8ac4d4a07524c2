// Package main provides the refdup CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/matsen/refdup"
	"github.com/matsen/refdup/citation"
	"github.com/matsen/refdup/internal/config"
	"github.com/matsen/refdup/tabular"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "refdup",
	Short: "Citation ingestion and deduplication CLI",
	Long: `refdup reads bibliographic citations from the common database export
formats and finds duplicate records among them.

Core features:
  - Parsers for RIS, PubMed/MEDLINE, EndNote XML and delimited tables
  - Format auto-detection from file content
  - Duplicate detection by DOI and fuzzy title matching
  - DOI and title extraction from article PDFs

All commands output JSON by default for AI agent integration.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Load .env if present (for REFDUP_CONFIG)
	_ = godotenv.Load()

	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.Version = Version
}

// mustLoadConfig loads the user config file, exits on error.
func mustLoadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return cfg
}

// mustReadFile reads one input file, exits on error.
func mustReadFile(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		exitWithError(ExitError, "reading %s: %v", path, err)
	}
	return string(data)
}

// mustParseFile reads and parses one citation file, exiting on failure.
// An empty format means auto-detection; a non-zero delimiter overrides
// the column separator for delimited tables.
func mustParseFile(path string, format refdup.Format, delimiter byte) ([]citation.Citation, refdup.Format) {
	input := mustReadFile(path)

	f := format
	if f == "" {
		detected, err := refdup.Detect(input)
		if err != nil {
			exitWithError(ExitDataError, "%s: %v", path, err)
		}
		f = detected
	}

	var parser citation.Parser
	if f == refdup.FormatCSV && delimiter != 0 {
		cfg := tabular.DefaultConfig()
		cfg.Delimiter = delimiter
		parser = tabular.NewWithConfig(cfg)
	} else {
		p, err := refdup.NewParser(f)
		if err != nil {
			exitWithError(ExitDataError, "%s: %v", path, err)
		}
		parser = p
	}

	citations, err := parser.Parse(input)
	if err != nil {
		exitWithError(ExitDataError, "parsing %s: %v", path, err)
	}
	return citations, f
}
