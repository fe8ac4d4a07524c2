// Package endnote parses EndNote XML citation exports.
//
// Exports wrap element text in formatting runs (<style face="normal">...)
// and nest fields under wrapper elements (<titles>, <contributors>,
// <dates>), so the parser walks decoder tokens and matches field elements
// by local name at any depth instead of unmarshaling a fixed struct.
package endnote

import (
	"encoding/xml"
	"io"
	"strconv"
	"strings"

	"github.com/matsen/refdup/citation"
	"github.com/matsen/refdup/internal/bibtext"
)

const formatName = "endnote-xml"

// Parser parses EndNote XML citation data. The zero value is ready to use.
type Parser struct{}

// New returns an EndNote XML parser.
func New() *Parser { return &Parser{} }

var _ citation.Parser = (*Parser)(nil)

// Parse converts an EndNote XML document into citations, one per <record>
// element. Unparseable markup fails the whole parse with a
// citation.ParseError carrying the decoder's position; a well-formed
// document with unexpected or missing elements degrades to absent fields
// instead of failing. A document without records yields no citations and
// no error.
func (p *Parser) Parse(input string) ([]citation.Citation, error) {
	dec := xml.NewDecoder(strings.NewReader(input))
	var citations []citation.Citation
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return citations, nil
		}
		if err != nil {
			return nil, citation.ParseError{Format: formatName, Message: err.Error()}
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "record" {
			continue
		}
		c, err := parseRecord(dec)
		if err != nil {
			if err == io.EOF {
				return nil, citation.ParseError{Format: formatName, Message: "unexpected end of document inside record"}
			}
			return nil, citation.ParseError{Format: formatName, Message: err.Error()}
		}
		citations = append(citations, c)
	}
}

// parseRecord consumes tokens up to the record's end element. Field
// elements are recognized by local name wherever they sit; wrapper and
// unknown elements are descended into, so schema variations cost nothing.
func parseRecord(dec *xml.Decoder) (citation.Citation, error) {
	var r record
	for {
		tok, err := dec.Token()
		if err != nil {
			return citation.Citation{}, err
		}
		switch t := tok.(type) {
		case xml.EndElement:
			if t.Name.Local == "record" {
				return r.build(), nil
			}
		case xml.StartElement:
			if err := r.element(dec, t); err != nil {
				return citation.Citation{}, err
			}
		}
	}
}

// record holds raw field text collected from one <record> element until
// build assembles the citation; the title/journal fallback chain needs all
// title variants before it can decide.
type record struct {
	types          []string
	title          string
	secondaryTitle string
	altTitle       string
	fullTitle      string
	authors        []string
	date           citation.Date
	volume         string
	issue          string
	pages          string
	abstract       string
	keywords       []string
	doi            string
	pmid           string
	custom2        string
	issns          []string
	urls           []string
	language       string
	publisher      string
}

func (r *record) element(dec *xml.Decoder, se xml.StartElement) error {
	switch se.Name.Local {
	case "ref-type":
		if name := attr(se, "name"); name != "" {
			r.types = append(r.types, name)
		}
		return dec.Skip()
	case "year":
		return r.year(dec, se)
	case "title":
		return capture(dec, &r.title)
	case "secondary-title":
		return capture(dec, &r.secondaryTitle)
	case "alt-title":
		return capture(dec, &r.altTitle)
	case "full-title":
		return capture(dec, &r.fullTitle)
	case "author":
		text, err := elementText(dec)
		if err != nil {
			return err
		}
		if text != "" {
			r.authors = append(r.authors, text)
		}
		return nil
	case "volume":
		return capture(dec, &r.volume)
	case "number":
		return capture(dec, &r.issue)
	case "pages":
		return capture(dec, &r.pages)
	case "abstract":
		return capture(dec, &r.abstract)
	case "keyword":
		text, err := elementText(dec)
		if err != nil {
			return err
		}
		if text != "" {
			r.keywords = append(r.keywords, text)
		}
		return nil
	case "electronic-resource-num":
		text, err := elementText(dec)
		if err != nil {
			return err
		}
		if d := bibtext.NormalizeDOI(text); d != "" {
			r.doi = d
		}
		return nil
	case "isbn":
		text, err := elementText(dec)
		if err != nil {
			return err
		}
		r.issns = append(r.issns, bibtext.SplitISSNs(text)...)
		return nil
	case "accession-num":
		return capture(dec, &r.pmid)
	case "custom2":
		return capture(dec, &r.custom2)
	case "url":
		text, err := elementText(dec)
		if err != nil {
			return err
		}
		if text != "" {
			r.urls = append(r.urls, text)
		}
		return nil
	case "language":
		return capture(dec, &r.language)
	case "publisher":
		return capture(dec, &r.publisher)
	}
	// Wrapper or unknown element: descend by doing nothing, the token
	// walk continues inside it.
	return nil
}

// year reads a <year> element, preferring its year/month/day attributes
// and falling back to the element text as a bare year.
func (r *record) year(dec *xml.Decoder, se xml.StartElement) error {
	var d citation.Date
	d.Year = bibtext.ParseYear(attr(se, "year"))
	if m, err := strconv.Atoi(attr(se, "month")); err == nil && m >= 1 && m <= 12 {
		d.Month = m
	}
	if day, err := strconv.Atoi(attr(se, "day")); err == nil && day >= 1 && day <= 31 {
		d.Day = day
	}
	text, err := elementText(dec)
	if err != nil {
		return err
	}
	if d.Year == 0 {
		d.Year = bibtext.ParseYear(text)
	}
	if !d.IsZero() {
		r.date = d
	}
	return nil
}

func attr(se xml.StartElement, name string) string {
	for _, a := range se.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// capture reads an element's text into dst, keeping the last non-empty
// occurrence.
func capture(dec *xml.Decoder, dst *string) error {
	text, err := elementText(dec)
	if err != nil {
		return err
	}
	if text != "" {
		*dst = text
	}
	return nil
}

// elementText concatenates all character data until the current element
// closes, descending through nested formatting elements so styled runs
// lose no text.
func elementText(dec *xml.Decoder) (string, error) {
	var sb strings.Builder
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		case xml.CharData:
			sb.Write(t)
		}
	}
	return strings.TrimSpace(sb.String()), nil
}

func (r *record) build() citation.Citation {
	c := citation.Citation{
		Type:      r.types,
		Authors:   parseAuthors(r.authors),
		Date:      r.date,
		Volume:    r.volume,
		Issue:     r.issue,
		Pages:     bibtext.CompletePageRange(r.pages),
		Abstract:  r.abstract,
		Keywords:  r.keywords,
		DOI:       r.doi,
		PMID:      r.pmid,
		Language:  r.language,
		Publisher: r.publisher,
		URLs:      r.urls,
	}
	c.Journal.ISSN = r.issns

	// Title fallback chain: a record with no <title> promotes its
	// secondary (journal) title; an alternate title fills the first
	// still-empty slot of abbreviation, journal name, then title.
	if r.title != "" {
		c.Title = r.title
		c.Journal.Name = r.secondaryTitle
	} else {
		c.Title = r.secondaryTitle
	}
	if r.altTitle != "" {
		switch {
		case c.Journal.Abbrev == "":
			c.Journal.Abbrev = r.altTitle
		case c.Journal.Name == "":
			c.Journal.Name = r.altTitle
		case c.Title == "":
			c.Title = r.altTitle
		}
	}
	if c.Journal.Name == "" {
		c.Journal.Name = r.fullTitle
	}

	if strings.Contains(r.custom2, "PMC") {
		c.PMCID = r.custom2
	}
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

func parseAuthors(raw []string) []citation.Author {
	var authors []citation.Author
	for _, name := range raw {
		if a := bibtext.ParseAuthorName(name); a.Family != "" || a.Given != "" {
			authors = append(authors, a)
		}
	}
	return authors
}
