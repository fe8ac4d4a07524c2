package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matsen/refdup"
)

func init() {
	rootCmd.AddCommand(detectCmd)
}

var detectCmd = &cobra.Command{
	Use:   "detect <file>",
	Short: "Detect the citation format of a file",
	Long: `Detect the citation format of a file from its content.

Recognized formats: ris, pubmed, endnote-xml, csv.

Examples:
  refdup detect export.ris
  refdup detect export.txt --human`,
	Args: cobra.ExactArgs(1),
	RunE: runDetect,
}

// DetectResult is the response for the detect command.
type DetectResult struct {
	Path   string `json:"path"`
	Format string `json:"format"`
}

func runDetect(cmd *cobra.Command, args []string) error {
	input := mustReadFile(args[0])

	format, err := refdup.Detect(input)
	if err != nil {
		exitWithError(ExitDataError, "%s: %v", args[0], err)
	}

	if humanOutput {
		fmt.Println(string(format))
	} else {
		outputJSON(DetectResult{Path: args[0], Format: string(format)})
	}
	return nil
}
