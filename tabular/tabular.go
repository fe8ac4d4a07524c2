// Package tabular parses delimited citation tables (CSV and similar) with
// a configurable header-to-field mapping and delimiter.
package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/matsen/refdup/citation"
	"github.com/matsen/refdup/internal/bibtext"
)

const formatName = "csv"

// Config controls how a delimited table maps onto citations.
type Config struct {
	// FieldMap maps logical citation fields to the header spellings that
	// may carry them, in preference order. Headers are matched
	// case-insensitively after trimming; the first column matching a
	// field claims it and later matches are ignored.
	FieldMap map[string][]string

	// Delimiter separates columns. Zero means comma.
	Delimiter byte

	// HasHeader marks the first row as a header. Without one, columns
	// are addressed as "column1", "column2", ... so a custom FieldMap
	// can bind them by position.
	HasHeader bool
}

// DefaultConfig returns the standard configuration: comma-delimited with a
// header row and the DefaultFieldMap.
func DefaultConfig() Config {
	return Config{
		FieldMap:  DefaultFieldMap(),
		Delimiter: ',',
		HasHeader: true,
	}
}

// DefaultFieldMap covers the header spellings common across reference
// manager and database exports.
func DefaultFieldMap() map[string][]string {
	return map[string][]string{
		"title":          {"title", "article title", "publication title"},
		"authors":        {"author", "authors", "creator", "creators"},
		"journal":        {"journal", "journal title", "source title", "publication"},
		"journal_abbrev": {"journal abbreviation", "journal abbrev", "abbreviated journal"},
		"year":           {"year", "publication year", "pub year", "date"},
		"volume":         {"volume", "vol"},
		"issue":          {"issue", "number"},
		"pages":          {"pages", "page numbers", "page range"},
		"doi":            {"doi", "digital object identifier"},
		"pmid":           {"pmid", "pubmed id"},
		"pmcid":          {"pmcid", "pmc id"},
		"abstract":       {"abstract", "summary"},
		"keywords":       {"keywords", "tags"},
		"issn":           {"issn"},
		"language":       {"language"},
		"publisher":      {"publisher"},
		"url":            {"url", "link", "web address"},
		"type":           {"type", "reference type", "item type"},
	}
}

// Parser parses delimited citation tables.
type Parser struct {
	cfg Config
}

// New returns a parser with DefaultConfig.
func New() *Parser { return NewWithConfig(DefaultConfig()) }

// NewWithConfig returns a parser for cfg. A nil FieldMap falls back to
// DefaultFieldMap and a zero delimiter to comma.
func NewWithConfig(cfg Config) *Parser {
	if cfg.FieldMap == nil {
		cfg.FieldMap = DefaultFieldMap()
	}
	if cfg.Delimiter == 0 {
		cfg.Delimiter = ','
	}
	return &Parser{cfg: cfg}
}

var _ citation.Parser = (*Parser)(nil)

// Parse converts delimited text into citations, one per data row. A row
// with the wrong column count fails the whole parse with a
// citation.ParseError identifying the row; no partial results are
// returned. Empty input yields no citations and no error.
func (p *Parser) Parse(input string) ([]citation.Citation, error) {
	if strings.TrimSpace(input) == "" {
		return nil, nil
	}
	d := p.cfg.Delimiter
	if d == '"' || d == '\r' || d == '\n' {
		return nil, citation.ConfigError{Message: fmt.Sprintf("invalid delimiter %q", d)}
	}

	r := csv.NewReader(strings.NewReader(input))
	r.Comma = rune(d)
	rows, err := r.ReadAll()
	if err != nil {
		var ce *csv.ParseError
		if errors.As(err, &ce) {
			return nil, citation.ParseError{Format: formatName, Line: ce.Line, Message: ce.Err.Error()}
		}
		return nil, citation.ParseError{Format: formatName, Message: err.Error()}
	}
	if len(rows) == 0 {
		return nil, nil
	}

	var header []string
	data := rows
	if p.cfg.HasHeader {
		header = rows[0]
		data = rows[1:]
	} else {
		header = make([]string, len(rows[0]))
		for i := range header {
			header[i] = fmt.Sprintf("column%d", i+1)
		}
	}
	columns := p.mapColumns(header)

	citations := make([]citation.Citation, 0, len(data))
	for _, row := range data {
		citations = append(citations, buildRow(row, columns))
	}
	return citations, nil
}

// columnField binds one column index to a logical field.
type columnField struct {
	col   int
	field string
}

// mapColumns resolves the header row against the field map. Fields are
// visited in sorted name order so that claiming is deterministic; the
// first column matching a field wins.
func (p *Parser) mapColumns(header []string) []columnField {
	aliases := make(map[string]string) // header spelling → field
	fields := make([]string, 0, len(p.cfg.FieldMap))
	for f := range p.cfg.FieldMap {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		for _, alias := range p.cfg.FieldMap[f] {
			key := strings.ToLower(strings.TrimSpace(alias))
			if _, taken := aliases[key]; !taken {
				aliases[key] = f
			}
		}
	}

	var columns []columnField
	claimed := make(map[string]bool)
	for i, h := range header {
		f, ok := aliases[strings.ToLower(strings.TrimSpace(h))]
		if !ok || claimed[f] {
			continue
		}
		claimed[f] = true
		columns = append(columns, columnField{col: i, field: f})
	}
	return columns
}

func buildRow(row []string, columns []columnField) citation.Citation {
	var c citation.Citation
	for _, cf := range columns {
		if cf.col >= len(row) {
			continue
		}
		value := strings.TrimSpace(row[cf.col])
		if value == "" {
			continue
		}
		switch cf.field {
		case "title":
			c.Title = value
		case "authors":
			for _, name := range strings.Split(value, ";") {
				if a := bibtext.ParseAuthorName(name); a.Family != "" || a.Given != "" {
					c.Authors = append(c.Authors, a)
				}
			}
		case "journal":
			c.Journal.Name = value
		case "journal_abbrev":
			c.Journal.Abbrev = value
		case "year":
			if y := bibtext.ParseYear(value); y != 0 {
				c.Date = citation.Date{Year: y}
			}
		case "volume":
			c.Volume = value
		case "issue":
			c.Issue = value
		case "pages":
			c.Pages = bibtext.CompletePageRange(value)
		case "doi":
			c.DOI = bibtext.NormalizeDOI(value)
		case "pmid":
			c.PMID = value
		case "pmcid":
			c.PMCID = value
		case "abstract":
			c.Abstract = value
		case "keywords":
			for _, kw := range strings.Split(value, ";") {
				if kw = strings.TrimSpace(kw); kw != "" {
					c.Keywords = append(c.Keywords, kw)
				}
			}
		case "issn":
			c.Journal.ISSN = append(c.Journal.ISSN, bibtext.SplitISSNs(value)...)
		case "language":
			c.Language = value
		case "publisher":
			c.Publisher = value
		case "url":
			c.URLs = append(c.URLs, value)
		case "type":
			c.Type = append(c.Type, value)
		}
	}
	return c
}
