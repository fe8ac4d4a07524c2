// Package bibtext provides small text normalization helpers shared by the
// citation format parsers: DOI cleanup, page-range completion, author name
// splitting, and ISSN validation.
package bibtext

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/matsen/refdup/citation"
)

// NormalizeDOI extracts a bare DOI from common decorations: URL prefixes
// (https://doi.org/..., dx.doi.org/...), "doi:" labels, surrounding
// whitespace, and trailing annotations like "[doi]". The result is
// lowercased. Returns "" when no DOI-shaped value is present.
func NormalizeDOI(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	i := strings.Index(s, "10.")
	if i < 0 {
		return ""
	}
	s = s[i:]
	if j := strings.IndexFunc(s, unicode.IsSpace); j >= 0 {
		s = s[:j]
	}
	return strings.TrimRight(s, ".,;")
}

// FormatPageRange merges a start and end page into a single range,
// completing shorthand end pages against the start page. "1234" + "45"
// becomes "1234-1245"; "R575" + "82" becomes "R575-R582"; identical start
// and end collapse to the single page.
func FormatPageRange(start, end string) string {
	start = strings.TrimSpace(start)
	end = strings.TrimSpace(end)
	if start == "" {
		return end
	}
	if end == "" {
		return start
	}
	if len(end) < len(start) {
		end = start[:len(start)-len(end)] + end
	}
	if end == start {
		return start
	}
	return start + "-" + end
}

// CompletePageRange normalizes an already-joined page value such as
// "1234-45", applying the same end-page completion as FormatPageRange.
// Values without a dash pass through unchanged.
func CompletePageRange(pages string) string {
	pages = strings.TrimSpace(pages)
	start, end, ok := strings.Cut(pages, "-")
	if !ok {
		return pages
	}
	return FormatPageRange(start, end)
}

// ParseAuthorName splits "Family, Given" on the first comma. A bare name
// with no comma is treated entirely as the family name.
func ParseAuthorName(name string) citation.Author {
	name = strings.TrimSpace(name)
	family, given, ok := strings.Cut(name, ",")
	if !ok {
		return citation.Author{Family: name}
	}
	return citation.Author{
		Family: strings.TrimSpace(family),
		Given:  strings.TrimSpace(given),
	}
}

// SplitISSNs extracts every valid ISSN from a free-text field that may
// carry several, separated by semicolons, commas, or whitespace and often
// annotated with "(Print)" or "(Electronic)" labels. Each result is in
// canonical NNNN-NNNC form with an uppercase check character.
func SplitISSNs(s string) []string {
	var issns []string
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ';' || r == ',' || unicode.IsSpace(r)
	})
	for _, f := range fields {
		if issn, ok := canonicalISSN(f); ok {
			issns = append(issns, issn)
		}
	}
	return issns
}

// canonicalISSN validates an ISSN candidate: eight characters after hyphen
// removal, seven digits then a digit or X.
func canonicalISSN(s string) (string, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), "-", "")
	if len(s) != 8 {
		return "", false
	}
	for _, r := range s[:7] {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	last := s[7]
	if (last < '0' || last > '9') && last != 'X' && last != 'x' {
		return "", false
	}
	return strings.ToUpper(s[:4] + "-" + s[4:]), true
}

// ParseYear parses a bare numeric year, returning 0 when the text is not
// a number.
func ParseYear(s string) int {
	year, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || year <= 0 {
		return 0
	}
	return year
}
