package dedupe

import (
	"strings"

	"github.com/xrash/smetrics"

	"github.com/matsen/refdup/citation"
	"github.com/matsen/refdup/internal/bibtext"
)

// DefaultTitleThreshold is the minimum Jaro-Winkler similarity two
// normalized titles must reach before a pair without shared DOIs can
// be considered duplicates.
const DefaultTitleThreshold = 0.93

// prepared carries the precomputed comparison keys for one citation so
// the pairwise loop never re-normalizes.
type prepared struct {
	index         int    // position in the input slice
	source        string // provenance label, empty when none supplied
	title         string // normalized title
	journalName   string // normalized journal name
	journalAbbrev string // normalized journal abbreviation
	issns         []string
	doi           string // comparison form, empty when absent
	year          int
	hasAbstract   bool
	hasDOI        bool
}

func prepare(c *citation.Citation, index int) prepared {
	p := prepared{
		index:         index,
		title:         normalizeTitle(c.Title),
		journalName:   normalizeJournal(c.Journal.Name),
		journalAbbrev: normalizeJournal(c.Journal.Abbrev),
		year:          c.Date.Year,
		hasAbstract:   strings.TrimSpace(c.Abstract) != "",
		hasDOI:        strings.TrimSpace(c.DOI) != "",
	}
	for _, issn := range c.Journal.ISSN {
		p.issns = append(p.issns, bibtext.SplitISSNs(issn)...)
	}
	if p.hasDOI {
		p.doi = bibtext.NormalizeDOI(c.DOI)
		if p.doi == "" {
			p.doi = strings.ToLower(strings.TrimSpace(c.DOI))
		}
	}
	return p
}

// match reports whether two citations refer to the same work. When both
// carry a DOI the comparison is decided by the DOI alone; otherwise the
// normalized titles must clear the similarity threshold and the journals
// must not contradict each other.
func (d *Deduplicator) match(a, b *prepared) bool {
	if a.doi != "" && b.doi != "" {
		return a.doi == b.doi
	}
	if a.title == "" || b.title == "" {
		return false
	}
	if smetrics.JaroWinkler(a.title, b.title, 0.7, 4) < d.threshold {
		return false
	}
	return journalsCompatible(a, b)
}

// journalsCompatible reports whether two citations could plausibly come
// from the same venue. A citation with no journal information at all is
// compatible with anything.
func journalsCompatible(a, b *prepared) bool {
	if !a.hasJournal() || !b.hasJournal() {
		return true
	}
	for _, x := range a.journalNames() {
		for _, y := range b.journalNames() {
			// Prefixes shorter than four characters are too
			// ambiguous to count as an abbreviation.
			if len(x) >= 4 && len(y) >= 4 {
				if strings.HasPrefix(x, y) || strings.HasPrefix(y, x) {
					return true
				}
			} else if x == y {
				return true
			}
		}
	}
	for _, i := range a.issns {
		for _, j := range b.issns {
			if i == j {
				return true
			}
		}
	}
	return false
}

func (p *prepared) hasJournal() bool {
	return p.journalName != "" || p.journalAbbrev != "" || len(p.issns) > 0
}

func (p *prepared) journalNames() []string {
	names := make([]string, 0, 2)
	if p.journalName != "" {
		names = append(names, p.journalName)
	}
	if p.journalAbbrev != "" {
		names = append(names, p.journalAbbrev)
	}
	return names
}
