// Package pdfscan pulls citation seed data out of PDF files.
package pdfscan

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/matsen/refdup/citation"
	"github.com/matsen/refdup/internal/bibtext"
)

// probePages caps how many pages Probe searches. Identifiers and
// titles sit on the first page of almost every published article.
const probePages = 3

// DOI pattern: 10.XXXX/... where XXXX is 4+ digits
var doiPattern = regexp.MustCompile(`10\.\d{4,9}/[^\s<>"{}|\\^~\[\]` + "`" + `]+`)

// Probe reads the first pages of the PDF at path and returns a partial
// citation carrying whatever could be recovered: the first DOI printed
// in the text and a best-guess title from the opening page. An
// unreadable file is an error; a readable file without identifiers is
// not.
func Probe(path string) (citation.Citation, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return citation.Citation{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	pages := r.NumPage()
	if pages > probePages {
		pages = probePages
	}

	var c citation.Citation
	for i := 1; i <= pages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if i == 1 {
			c.Title = guessTitle(text)
		}
		if c.DOI == "" {
			c.DOI = findDOI(text)
		}
		if c.DOI != "" {
			break
		}
	}
	return c, nil
}

// findDOI returns the first plausible DOI in text, in normalized form.
func findDOI(text string) string {
	for _, match := range doiPattern.FindAllString(text, -1) {
		match = strings.TrimRight(match, ".,;:)")
		if isValidDOI(match) {
			return bibtext.NormalizeDOI(match)
		}
	}
	return ""
}

// isValidDOI performs basic validation on a DOI candidate.
func isValidDOI(doi string) bool {
	if len(doi) < 10 {
		return false
	}
	if !strings.HasPrefix(doi, "10.") {
		return false
	}
	slash := strings.Index(doi, "/")
	return slash != -1 && slash < len(doi)-1
}

// guessTitle takes the first substantial line of the first page,
// skipping the running heads journals print above it.
func guessTitle(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) > 20 && !isHeaderLine(line) {
			return line
		}
	}
	return ""
}

// isHeaderLine checks if a line is likely a running head or footer.
func isHeaderLine(line string) bool {
	lower := strings.ToLower(line)
	if strings.Contains(lower, "journal") {
		return true
	}
	if strings.Contains(lower, "volume") && strings.Contains(lower, "issue") {
		return true
	}
	if strings.Contains(lower, "copyright") {
		return true
	}
	if strings.Contains(lower, "article") && strings.Contains(lower, "published") {
		return true
	}
	if strings.Contains(lower, "downloaded from") {
		return true
	}
	return false
}
