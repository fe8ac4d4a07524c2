package main

import (
	"fmt"
	"reflect"

	"github.com/spf13/cobra"

	"github.com/matsen/refdup/citation"
	"github.com/matsen/refdup/dedupe"
	"github.com/matsen/refdup/internal/pdfscan"
)

var pdfAgainst string

func init() {
	pdfCmd.Flags().StringVar(&pdfAgainst, "against", "", "Citation file to match the probed PDFs against")
	rootCmd.AddCommand(pdfCmd)
}

var pdfCmd = &cobra.Command{
	Use:   "pdf <file>...",
	Short: "Extract citation data from article PDFs",
	Long: `Extract citation seed data from article PDFs.

Scans the opening pages of each PDF for a printed DOI and guesses the
title from the first page. The result is a partial citation per file;
fields that could not be recovered are left empty.

With --against, each probed citation is matched against a citation
file and the library records describing the same work are reported.

Examples:
  refdup pdf paper.pdf
  refdup pdf downloads/*.pdf --human
  refdup pdf paper.pdf --against library.ris`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPDF,
}

// PDFResult describes one probed PDF.
type PDFResult struct {
	Path     string            `json:"path"`
	Citation citation.Citation `json:"citation"`
}

// PDFMatchResult describes one probed PDF matched against a library.
type PDFMatchResult struct {
	Path     string              `json:"path"`
	Citation citation.Citation   `json:"citation"`
	Matches  []citation.Citation `json:"matches"`
}

func runPDF(cmd *cobra.Command, args []string) error {
	if pdfAgainst != "" {
		return runPDFAgainst(args)
	}

	var results []PDFResult
	for _, path := range args {
		c, err := pdfscan.Probe(path)
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		results = append(results, PDFResult{Path: path, Citation: c})
	}

	if humanOutput {
		for _, r := range results {
			fmt.Printf("%s:\n  ", r.Path)
			printCitationLine(r.Citation)
		}
	} else {
		outputJSON(results)
	}
	return nil
}

// runPDFAgainst probes each PDF and reports the citations in the
// --against file that the engine groups with the probe.
func runPDFAgainst(args []string) error {
	library, _ := mustParseFile(pdfAgainst, "", 0)

	var results []PDFMatchResult
	for _, path := range args {
		probe, err := pdfscan.Probe(path)
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		matches, err := matchAgainst(probe, library)
		if err != nil {
			exitWithError(ExitError, "matching %s: %v", path, err)
		}
		results = append(results, PDFMatchResult{Path: path, Citation: probe, Matches: matches})
	}

	if humanOutput {
		for _, r := range results {
			fmt.Printf("%s:\n  ", r.Path)
			printCitationLine(r.Citation)
			if len(r.Matches) == 0 {
				fmt.Println("  No matches.")
				continue
			}
			for _, m := range r.Matches {
				fmt.Print("  Match: ")
				printCitationLine(m)
			}
		}
	} else {
		outputJSON(results)
	}
	return nil
}

// matchAgainst runs the probe together with the library through the
// deduplication engine and returns the library members of the probe's
// duplicate group, the kept citation first.
func matchAgainst(probe citation.Citation, library []citation.Citation) ([]citation.Citation, error) {
	input := make([]citation.Citation, 0, len(library)+1)
	input = append(input, probe)
	input = append(input, library...)

	groups, err := dedupe.New(dedupe.Config{}).FindDuplicates(input)
	if err != nil {
		return nil, err
	}

	matches := []citation.Citation{}
	for _, g := range groups {
		members := append([]citation.Citation{g.Unique}, g.Duplicates...)
		probeAt := -1
		for i, m := range members {
			if reflect.DeepEqual(m, probe) {
				probeAt = i
				break
			}
		}
		if probeAt < 0 {
			continue
		}
		for i, m := range members {
			if i != probeAt {
				matches = append(matches, m)
			}
		}
		break
	}
	return matches, nil
}
