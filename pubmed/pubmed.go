// Package pubmed parses MEDLINE/PubMed tag format citation data (.nbib
// exports): records of "TAG - value" lines separated by blank lines.
package pubmed

import (
	"strings"

	"github.com/matsen/refdup/citation"
	"github.com/matsen/refdup/internal/bibtext"
)

const formatName = "pubmed"

// Parser parses MEDLINE-format citation text. The zero value is ready to
// use.
type Parser struct{}

// New returns a MEDLINE parser.
func New() *Parser { return &Parser{} }

var _ citation.Parser = (*Parser)(nil)

// Parse converts MEDLINE text into citations, one per blank-line-separated
// record. A record containing no recognizable tag line fails the whole
// parse with a citation.ParseError; no partial results are returned. Empty
// input yields no citations and no error.
func (p *Parser) Parse(input string) ([]citation.Citation, error) {
	var citations []citation.Citation

	lines := strings.Split(input, "\n")
	for i := 0; i < len(lines); {
		for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
			i++
		}
		if i >= len(lines) {
			break
		}
		start := i
		var chunk []string
		for i < len(lines) {
			line := strings.TrimRight(lines[i], "\r")
			if strings.TrimSpace(line) == "" {
				break
			}
			chunk = append(chunk, line)
			i++
		}
		c, err := parseRecord(chunk, start+1)
		if err != nil {
			return nil, err
		}
		citations = append(citations, c)
	}
	return citations, nil
}

// parseRecord builds one citation from a run of non-blank lines.
// startLine is the 1-based position of the record's first line, used in
// error messages.
func parseRecord(chunk []string, startLine int) (citation.Citation, error) {
	r := &record{}
	sawTag := false
	for _, line := range chunk {
		tag, value, ok := splitTagLine(line)
		if !ok {
			r.applyContinuation(line)
			continue
		}
		sawTag = true
		r.apply(tag, value)
	}
	if !sawTag {
		return citation.Citation{}, citation.ParseError{
			Format:  formatName,
			Line:    startLine,
			Message: "no MEDLINE tag lines in record",
		}
	}
	return r.c, nil
}

// splitTagLine splits a "TAG - value" line. Tags are two to four upper
// case letters or digits, space-padded to a fixed column before the dash.
// Indented lines are continuations, never tags.
func splitTagLine(line string) (tag, value string, ok bool) {
	if line == "" || line[0] == ' ' || line[0] == '\t' {
		return "", "", false
	}
	before, after, found := strings.Cut(line, "-")
	if !found {
		return "", "", false
	}
	tag = strings.TrimSpace(before)
	if len(tag) < 2 || len(tag) > 4 {
		return "", "", false
	}
	for _, c := range tag {
		if !('A' <= c && c <= 'Z' || '0' <= c && c <= '9') {
			return "", "", false
		}
	}
	return tag, strings.TrimSpace(after), true
}

// field tracks which citation field the previous tag line fed, for the
// continuation rule: only titles and abstracts wrap across lines.
type field int

const (
	fieldOther field = iota
	fieldTitle
	fieldAbstract
)

// record accumulates one citation while its tag lines are applied in
// order. Author handling is positional: a FAU line emits an author, an AU
// line immediately after it is the same person abbreviated and is skipped,
// and AD lines attach to the most recently emitted author.
type record struct {
	c           citation.Citation
	last        field
	prevWasFull bool // previous author tag was FAU
}

func (r *record) apply(tag, value string) {
	r.last = fieldOther
	switch tag {
	case "PMID":
		r.c.PMID = value
	case "TI":
		r.c.Title = value
		r.last = fieldTitle
	case "BTI": // book title, a fallback when no article title exists
		if r.c.Title == "" {
			r.c.Title = value
		}
		r.last = fieldTitle
	case "AB":
		r.c.Abstract = value
		r.last = fieldAbstract
	case "FAU":
		r.addAuthor(value)
		r.prevWasFull = true
	case "AU":
		if !r.prevWasFull {
			r.addAuthor(value)
		}
		r.prevWasFull = false
	case "AD":
		r.attachAffiliation(value)
	case "JT":
		r.c.Journal.Name = value
	case "TA":
		r.c.Journal.Abbrev = value
	case "DP":
		r.c.Date = parseDate(value)
	case "VI":
		r.c.Volume = value
	case "IP":
		r.c.Issue = value
	case "PG":
		r.c.Pages = bibtext.CompletePageRange(value)
	case "IS":
		r.c.Journal.ISSN = append(r.c.Journal.ISSN, bibtext.SplitISSNs(value)...)
	case "LID", "AID":
		// Location/article identifiers carry their kind as a suffix;
		// only "[doi]" values are DOIs, others are piis and the like.
		if strings.HasSuffix(value, "[doi]") {
			if d := bibtext.NormalizeDOI(value); d != "" {
				r.c.DOI = d
			}
		}
	case "PMC":
		r.c.PMCID = value
	case "LA":
		r.c.Language = value
	case "PT":
		if value != "" {
			r.c.Type = append(r.c.Type, value)
		}
	case "MH":
		if value != "" {
			r.c.MeshTerms = append(r.c.MeshTerms, value)
		}
	case "OT":
		if value != "" {
			r.c.Keywords = append(r.c.Keywords, value)
		}
	}
}

func (r *record) addAuthor(name string) {
	if a := bibtext.ParseAuthorName(name); a.Family != "" || a.Given != "" {
		r.c.Authors = append(r.c.Authors, a)
	}
}

// attachAffiliation adds an affiliation to the most recently emitted
// author; an affiliation before any author has nothing to attach to and is
// dropped. Repeated affiliations for one author are joined with " and ".
func (r *record) attachAffiliation(value string) {
	if len(r.c.Authors) == 0 || value == "" {
		return
	}
	a := &r.c.Authors[len(r.c.Authors)-1]
	if a.Affiliation == "" {
		a.Affiliation = value
	} else {
		a.Affiliation += " and " + value
	}
}

// applyContinuation extends the title or abstract with a wrapped line.
// A fragment ending in a hyphen joins directly; otherwise a single space
// separates the pieces.
func (r *record) applyContinuation(line string) {
	text := strings.TrimSpace(line)
	if text == "" {
		return
	}
	switch r.last {
	case fieldTitle:
		r.c.Title = joinWrapped(r.c.Title, text)
	case fieldAbstract:
		r.c.Abstract = joinWrapped(r.c.Abstract, text)
	}
}

func joinWrapped(cur, text string) string {
	if cur == "" {
		return text
	}
	if strings.HasSuffix(cur, "-") {
		return cur + text
	}
	return cur + " " + text
}
