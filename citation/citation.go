// Package citation defines the normalized record model shared by every
// format parser and consumed by the deduplication engine.
package citation

// Citation represents one bibliographic work in normalized form.
//
// Every field is optional: source records are routinely incomplete and no
// field's presence implies another's. Parsers return citations by value and
// never touch them again; callers own their copies.
type Citation struct {
	// Classification
	Type []string `json:"type,omitempty"` // Publication/record type tags, in source order

	// Core metadata
	Title    string   `json:"title,omitempty"`
	Authors  []Author `json:"authors,omitempty"` // Order of appearance in the source record
	Journal  Journal  `json:"journal"`
	Date     Date     `json:"date"`
	Volume   string   `json:"volume,omitempty"`
	Issue    string   `json:"issue,omitempty"`
	Pages    string   `json:"pages,omitempty"`
	Abstract string   `json:"abstract,omitempty"`
	Keywords []string `json:"keywords,omitempty"`

	// Identifiers
	DOI   string `json:"doi,omitempty"` // Stored normalized (lowercase, no URL prefix)
	PMID  string `json:"pmid,omitempty"`
	PMCID string `json:"pmcid,omitempty"`

	// Additional metadata
	Language  string   `json:"language,omitempty"`
	Publisher string   `json:"publisher,omitempty"`
	URLs      []string `json:"urls,omitempty"`
	MeshTerms []string `json:"mesh_terms,omitempty"` // Populated only by the MEDLINE-style parser
}

// HasIdentifier reports whether the citation carries at least one
// persistent identifier (DOI, PMID, or PMCID).
func (c *Citation) HasIdentifier() bool {
	return c.DOI != "" || c.PMID != "" || c.PMCID != ""
}

// Author represents one contributor to a cited work.
type Author struct {
	Family      string `json:"family_name"`
	Given       string `json:"given_name,omitempty"`
	Affiliation string `json:"affiliation,omitempty"`
}

// Journal identifies the venue a citation appeared in. Name, abbreviation,
// and ISSNs are independently optional; sources rarely supply all three.
type Journal struct {
	Name   string   `json:"name,omitempty"`
	Abbrev string   `json:"abbrev,omitempty"`
	ISSN   []string `json:"issn,omitempty"` // Print and electronic ISSNs, hyphenated form
}

// IsZero reports whether no journal information is present.
func (j Journal) IsZero() bool {
	return j.Name == "" && j.Abbrev == "" && len(j.ISSN) == 0
}

// DuplicateGroup is one cluster of citations believed to describe the same
// work. Unique is the canonical member chosen by the deduplication engine;
// Duplicates holds the remaining members in original input order.
type DuplicateGroup struct {
	Unique     Citation   `json:"unique"`
	Duplicates []Citation `json:"duplicates"`
}
