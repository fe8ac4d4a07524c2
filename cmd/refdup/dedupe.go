package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/refdup/citation"
	"github.com/matsen/refdup/dedupe"
)

var (
	dedupeByYear    bool
	dedupeParallel  bool
	dedupeWorkers   int
	dedupeThreshold float64
	dedupePrefer    []string
	dedupeCheck     bool
)

func init() {
	dedupeCmd.Flags().BoolVar(&dedupeByYear, "by-year", false, "Only compare citations from the same publication year")
	dedupeCmd.Flags().BoolVar(&dedupeParallel, "parallel", false, "Compare year buckets in parallel (implies --by-year usefulness)")
	dedupeCmd.Flags().IntVar(&dedupeWorkers, "workers", 0, "Worker cap for --parallel (0 uses all CPUs)")
	dedupeCmd.Flags().Float64Var(&dedupeThreshold, "threshold", 0, "Minimum title similarity in [0,1] (0 uses the default)")
	dedupeCmd.Flags().StringSliceVar(&dedupePrefer, "prefer", nil, "Input files whose citations win tie-breaks, most preferred first")
	dedupeCmd.Flags().BoolVar(&dedupeCheck, "check", false, "Exit with status 1 when any duplicates are found")
	rootCmd.AddCommand(dedupeCmd)
}

var dedupeCmd = &cobra.Command{
	Use:   "dedupe <file>...",
	Short: "Find duplicate citations across files",
	Long: `Find duplicate citations across one or more citation files.

Each file's format is detected from its content. Citations are compared
by DOI when both sides have one and otherwise by fuzzy title match with
journal compatibility. Each duplicate group reports the citation kept
as unique and the duplicates folded into it.

Flag defaults can be set in ` + "~/.config/refdup/config.yml" + `.

Examples:
  refdup dedupe pubmed.nbib embase.ris
  refdup dedupe all.ris --by-year --parallel
  refdup dedupe a.ris b.ris --prefer a.ris
  refdup dedupe merged.ris --check`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDedupe,
}

// DedupeResult is the response for the dedupe command.
type DedupeResult struct {
	Citations  int                       `json:"citations"`
	Groups     []citation.DuplicateGroup `json:"groups"`
	TotalDupes int                       `json:"total_duplicates"`
}

func runDedupe(cmd *cobra.Command, args []string) error {
	applyDedupeConfig(cmd)

	var citations []citation.Citation
	var sources []string
	for _, path := range args {
		parsed, _ := mustParseFile(path, "", 0)
		citations = append(citations, parsed...)
		for range parsed {
			sources = append(sources, path)
		}
	}

	d := dedupe.New(dedupe.Config{
		GroupByYear:       dedupeByYear,
		Parallel:          dedupeParallel,
		Workers:           dedupeWorkers,
		SourcePreferences: dedupePrefer,
		TitleThreshold:    dedupeThreshold,
	})
	groups, err := d.FindDuplicatesWithSources(citations, sources)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	totalDupes := 0
	for _, g := range groups {
		totalDupes += len(g.Duplicates)
	}
	result := DedupeResult{
		Citations:  len(citations),
		Groups:     groups,
		TotalDupes: totalDupes,
	}
	if result.Groups == nil {
		result.Groups = []citation.DuplicateGroup{}
	}

	if humanOutput {
		printDedupeHuman(result)
	} else {
		outputJSON(result)
	}

	if dedupeCheck && totalDupes > 0 {
		os.Exit(ExitDuplicatesFound)
	}
	return nil
}

// applyDedupeConfig fills flag values from the config file for flags
// not given on the command line.
func applyDedupeConfig(cmd *cobra.Command) {
	cfg := mustLoadConfig()
	if !cmd.Flags().Changed("by-year") {
		dedupeByYear = cfg.GroupByYear
	}
	if !cmd.Flags().Changed("parallel") {
		dedupeParallel = cfg.Parallel
	}
	if !cmd.Flags().Changed("workers") && cfg.Workers > 0 {
		dedupeWorkers = cfg.Workers
	}
	if !cmd.Flags().Changed("threshold") && cfg.TitleThreshold > 0 {
		dedupeThreshold = cfg.TitleThreshold
	}
	if !cmd.Flags().Changed("prefer") && len(cfg.SourcePreferences) > 0 {
		dedupePrefer = cfg.SourcePreferences
	}
}

func printDedupeHuman(result DedupeResult) {
	if len(result.Groups) == 0 {
		fmt.Printf("No duplicates found in %d citations.\n", result.Citations)
		return
	}

	fmt.Printf("Found %d duplicate groups (%d total duplicates) in %d citations:\n\n",
		len(result.Groups), result.TotalDupes, result.Citations)
	for _, g := range result.Groups {
		fmt.Print("Keep: ")
		printCitationLine(g.Unique)
		for _, dup := range g.Duplicates {
			fmt.Print("  Drop: ")
			printCitationLine(dup)
		}
		fmt.Println()
	}
}
