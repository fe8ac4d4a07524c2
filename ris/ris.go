// Package ris parses RIS tag-line citation data: records of TAG  - VALUE
// lines opened by a TY tag and closed by an ER tag.
package ris

import (
	"strconv"
	"strings"

	"github.com/matsen/refdup/citation"
	"github.com/matsen/refdup/internal/bibtext"
)

const formatName = "ris"

// Parser parses RIS-format citation text. The zero value is ready to use.
type Parser struct{}

// New returns a RIS parser.
func New() *Parser { return &Parser{} }

var _ citation.Parser = (*Parser)(nil)

// metadataPrefixes mark provider preamble lines some databases wrap around
// exported records; they carry no citation data.
var metadataPrefixes = []string{"Record #", "Provider:", "Content:", "Database:"}

func isMetadataLine(line string) bool {
	for _, p := range metadataPrefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}

// Parse converts RIS text into citations. A record left unclosed by an ER
// tag, or stray text outside of any record, fails the whole parse with a
// citation.ParseError; no partial results are returned. Empty input yields
// no citations and no error.
func (p *Parser) Parse(input string) ([]citation.Citation, error) {
	var (
		citations []citation.Citation
		rec       *record
		recLine   int // line of the open record's TY tag
	)

	for i, line := range strings.Split(input, "\n") {
		lineNo := i + 1
		line = strings.TrimRight(line, " \t\r")
		if strings.TrimSpace(line) == "" || isMetadataLine(line) {
			continue
		}

		tag, value, ok := splitTagLine(line)
		if !ok {
			if rec != nil {
				if rec.continuable() {
					rec.appendContinuation(line)
				}
				continue
			}
			return nil, citation.ParseError{
				Format:  formatName,
				Line:    lineNo,
				Message: "text outside of a record",
			}
		}

		switch tag {
		case tagStart:
			if rec != nil {
				return nil, citation.ParseError{
					Format:  formatName,
					Line:    recLine,
					Message: "record not closed with ER",
				}
			}
			rec = newRecord()
			recLine = lineNo
			rec.apply(tag, value)
		case tagEnd:
			if rec == nil {
				return nil, citation.ParseError{
					Format:  formatName,
					Line:    lineNo,
					Message: "ER tag outside of a record",
				}
			}
			citations = append(citations, rec.build())
			rec = nil
		default:
			if rec == nil {
				return nil, citation.ParseError{
					Format:  formatName,
					Line:    lineNo,
					Message: "tag " + tag + " before start-of-record TY tag",
				}
			}
			rec.apply(tag, value)
		}
	}

	if rec != nil {
		return nil, citation.ParseError{
			Format:  formatName,
			Line:    recLine,
			Message: "record not closed with ER",
		}
	}
	return citations, nil
}

// separators in match order. The two-space forms come first so that
// "AB  - text" splits as "AB" + "text" rather than at the bare dash.
var separators = []string{"  - ", "  -", " - ", "- ", "-"}

// splitTagLine splits a "TAG  - value" line. Tags are two alphanumeric
// characters, normalized to upper case; exporters vary the separator, so
// several spellings are accepted. A bare two-character tag with nothing
// after it (some files close records with just "ER") is a tag with an
// empty value.
func splitTagLine(line string) (tag, value string, ok bool) {
	if len(line) < 2 {
		return "", "", false
	}
	for i := 0; i < 2; i++ {
		c := line[i]
		if !('A' <= c && c <= 'Z' || 'a' <= c && c <= 'z' || '0' <= c && c <= '9') {
			return "", "", false
		}
	}
	rest := line[2:]
	if rest == "" {
		return strings.ToUpper(line[:2]), "", true
	}
	for _, sep := range separators {
		if v, found := strings.CutPrefix(rest, sep); found {
			return strings.ToUpper(line[:2]), strings.TrimSpace(v), true
		}
	}
	return "", "", false
}

// record accumulates raw tag values for one citation between TY and ER.
// Scalar fields keep only the last occurrence; sequence fields keep all.
// Conversion to a Citation happens once, when the record closes.
type record struct {
	scalars map[field]string
	lists   map[field][]string
	last    field // field the previous tag line fed, for continuations
}

func newRecord() *record {
	return &record{
		scalars: make(map[field]string),
		lists:   make(map[field][]string),
	}
}

func (r *record) apply(tag, value string) {
	f, known := tagFields[tag]
	if !known {
		r.last = fieldNone
		return
	}
	switch f.kind() {
	case kindAppend:
		if value != "" {
			r.lists[f] = append(r.lists[f], value)
		}
	default:
		r.scalars[f] = value
	}
	r.last = f
}

// continuable reports whether an untagged line may continue the previous
// field. Only titles and abstracts wrap across physical lines.
func (r *record) continuable() bool {
	return r.last == fieldTitle || r.last == fieldAbstract
}

func (r *record) appendContinuation(line string) {
	text := strings.TrimSpace(line)
	if text == "" {
		return
	}
	if cur := r.scalars[r.last]; cur != "" {
		r.scalars[r.last] = cur + " " + text
	} else {
		r.scalars[r.last] = text
	}
}

func (r *record) build() citation.Citation {
	c := citation.Citation{
		Type:      r.lists[fieldType],
		Title:     r.scalars[fieldTitle],
		Volume:    r.scalars[fieldVolume],
		Issue:     r.scalars[fieldIssue],
		Abstract:  r.scalars[fieldAbstract],
		Keywords:  r.lists[fieldKeyword],
		Language:  r.scalars[fieldLanguage],
		Publisher: r.scalars[fieldPublisher],
		PMID:      r.scalars[fieldPMID],
		URLs:      r.lists[fieldURL],
		Date:      parseDate(r.scalars[fieldDate]),
	}
	c.Journal.Name = r.scalars[fieldJournal]
	c.Journal.Abbrev = r.scalars[fieldJournalAbbrev]

	for _, raw := range r.lists[fieldAuthor] {
		if a := bibtext.ParseAuthorName(raw); a.Family != "" || a.Given != "" {
			c.Authors = append(c.Authors, a)
		}
	}
	for _, raw := range r.lists[fieldISSN] {
		c.Journal.ISSN = append(c.Journal.ISSN, bibtext.SplitISSNs(raw)...)
	}

	if ep := r.scalars[fieldEndPage]; ep != "" {
		c.Pages = bibtext.FormatPageRange(r.scalars[fieldStartPage], ep)
	} else {
		c.Pages = bibtext.CompletePageRange(r.scalars[fieldStartPage])
	}

	// The custom-2 tag holds a PMC accession for PubMed-derived exports
	// but arbitrary text otherwise.
	if v := r.scalars[fieldPMCID]; strings.Contains(v, "PMC") {
		c.PMCID = v
	}

	c.DOI = bibtext.NormalizeDOI(r.scalars[fieldDOI])
	if c.DOI == "" {
		for _, u := range c.URLs {
			if strings.Contains(u, "doi.org") {
				if d := bibtext.NormalizeDOI(u); d != "" {
					c.DOI = d
					break
				}
			}
		}
	}
	return c
}

// parseDate reads slash-separated RIS date text such as "2023/05/30",
// "2023//", or "1999/12/25/Christmas edition", keeping only the leading
// numeric year/month/day components and ignoring trailing free text.
func parseDate(s string) citation.Date {
	parts := strings.Split(s, "/")
	year := bibtext.ParseYear(parts[0])
	if year == 0 {
		return citation.Date{}
	}
	d := citation.Date{Year: year}
	if len(parts) > 1 {
		m, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil || m < 1 || m > 12 {
			return d
		}
		d.Month = m
	}
	if len(parts) > 2 {
		if day, err := strconv.Atoi(strings.TrimSpace(parts[2])); err == nil && day >= 1 && day <= 31 {
			d.Day = day
		}
	}
	return d
}
