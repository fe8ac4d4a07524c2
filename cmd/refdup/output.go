package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/matsen/refdup/citation"
)

// Title truncation length for human-readable listings.
const ListTitleMaxLen = 70

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// formatAuthorShort formats an author as "Family G" (abbreviated given name).
func formatAuthorShort(a citation.Author) string {
	if a.Given == "" {
		return a.Family
	}
	initial := []rune(a.Given)[0]
	return a.Family + " " + string(initial)
}

// formatAuthorsShort formats authors with abbreviation and "et al." for more than maxCount.
func formatAuthorsShort(authors []citation.Author, maxCount int) string {
	if len(authors) == 0 {
		return ""
	}

	var names []string
	for i, a := range authors {
		if i >= maxCount {
			names = append(names, "et al.")
			break
		}
		names = append(names, formatAuthorShort(a))
	}
	return strings.Join(names, ", ")
}

// printCitationLine prints a one-line human-readable summary of a citation.
func printCitationLine(c citation.Citation) {
	line := truncateString(c.Title, ListTitleMaxLen)
	if line == "" {
		line = "(untitled)"
	}
	if authors := formatAuthorsShort(c.Authors, 3); authors != "" {
		line += " - " + authors
	}
	if c.Date.Year != 0 {
		line += fmt.Sprintf(" (%d)", c.Date.Year)
	}
	if c.DOI != "" {
		line += " doi:" + c.DOI
	}
	fmt.Println(line)
}
