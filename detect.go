// Package refdup ingests bibliographic citations from the common
// database export formats and finds duplicate records among them. The
// format parsers live in the ris, pubmed, endnote and tabular
// subpackages; this package detects which of them an input belongs to.
package refdup

import (
	"fmt"
	"strings"

	"github.com/matsen/refdup/citation"
	"github.com/matsen/refdup/endnote"
	"github.com/matsen/refdup/pubmed"
	"github.com/matsen/refdup/ris"
	"github.com/matsen/refdup/tabular"
)

// Format identifies a supported citation file format.
type Format string

const (
	FormatRIS        Format = "ris"
	FormatPubMed     Format = "pubmed"
	FormatEndNoteXML Format = "endnote-xml"
	FormatCSV        Format = "csv"
)

// detectWindow bounds how much of the input Detect examines.
const detectWindow = 4096

// NewParser returns a parser for the given format.
func NewParser(f Format) (citation.Parser, error) {
	switch f {
	case FormatRIS:
		return ris.New(), nil
	case FormatPubMed:
		return pubmed.New(), nil
	case FormatEndNoteXML:
		return endnote.New(), nil
	case FormatCSV:
		return tabular.New(), nil
	}
	return nil, fmt.Errorf("format %q: %w", string(f), citation.ErrUnknownFormat)
}

// Detect examines the start of input and reports which citation format
// it appears to be, looking only at whole lines within the first 4 KiB.
// Tag-based formats are checked before delimited tables, so a RIS or
// MEDLINE export whose fields contain commas is not taken for CSV. When
// nothing matches the returned error wraps citation.ErrUnknownFormat.
func Detect(input string) (Format, error) {
	lines := headLines(input)

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "<?xml") || strings.HasPrefix(trimmed, "<xml") ||
			strings.HasPrefix(trimmed, "<records") || strings.HasPrefix(trimmed, "<record") {
			return FormatEndNoteXML, nil
		}
		break
	}

	for _, line := range lines {
		if isRISMarker(line) {
			return FormatRIS, nil
		}
	}
	for _, line := range lines {
		if isPubMedMarker(line) {
			return FormatPubMed, nil
		}
	}
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.ContainsAny(trimmed, ",\t;") {
			return FormatCSV, nil
		}
		break
	}

	return "", fmt.Errorf("no known citation format in input: %w", citation.ErrUnknownFormat)
}

// DetectAndParse runs Detect and hands the input to the matching
// parser. The detected format is reported alongside any parse error so
// callers can say which parser rejected the input.
func DetectAndParse(input string) ([]citation.Citation, Format, error) {
	format, err := Detect(input)
	if err != nil {
		return nil, "", err
	}
	parser, err := NewParser(format)
	if err != nil {
		return nil, "", err
	}
	citations, err := parser.Parse(input)
	if err != nil {
		return nil, format, err
	}
	return citations, format, nil
}

// headLines splits the detection window into lines. When the input
// exceeds the window it is cut at the last complete line; if the first
// line alone overflows the window, its prefix is considered as-is.
func headLines(input string) []string {
	window := input
	if len(window) > detectWindow {
		if cut := strings.LastIndexByte(window[:detectWindow], '\n'); cut >= 0 {
			window = window[:cut]
		} else {
			window = window[:detectWindow]
		}
	}
	return strings.Split(window, "\n")
}

func isRISMarker(line string) bool {
	if strings.HasPrefix(line, "TY  - ") {
		return true
	}
	trimmed := strings.TrimRight(line, " \t\r")
	return trimmed == "ER" || trimmed == "ER  -"
}

func isPubMedMarker(line string) bool {
	return strings.HasPrefix(line, "PMID- ") ||
		strings.HasPrefix(line, "OWN - ") ||
		strings.HasPrefix(line, "STAT- ")
}
