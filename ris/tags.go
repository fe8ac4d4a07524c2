package ris

// field identifies the citation field a tag feeds.
type field int

const (
	fieldNone field = iota
	fieldType
	fieldTitle
	fieldAuthor
	fieldJournal
	fieldJournalAbbrev
	fieldDate
	fieldVolume
	fieldIssue
	fieldStartPage
	fieldEndPage
	fieldDOI
	fieldPMID
	fieldPMCID
	fieldAbstract
	fieldKeyword
	fieldISSN
	fieldURL
	fieldLanguage
	fieldPublisher
)

// fieldKind distinguishes scalar fields, where a recurring tag overwrites
// the previous value, from sequence fields, where each occurrence appends.
type fieldKind int

const (
	kindScalar fieldKind = iota
	kindAppend
)

func (f field) kind() fieldKind {
	switch f {
	case fieldType, fieldAuthor, fieldKeyword, fieldISSN, fieldURL:
		return kindAppend
	}
	return kindScalar
}

const (
	tagStart = "TY" // opens a record, value is the reference type
	tagEnd   = "ER" // closes a record
)

// tagFields maps RIS tags, including exporter variant spellings, to
// citation fields. Tags absent from the table are ignored.
var tagFields = map[string]field{
	"TY": fieldType,
	"TI": fieldTitle,
	"T1": fieldTitle,
	"AU": fieldAuthor,
	"A1": fieldAuthor,
	"A2": fieldAuthor,
	"A3": fieldAuthor,
	"A4": fieldAuthor,
	"JF": fieldJournal,
	"JO": fieldJournal,
	"T2": fieldJournal,
	"JA": fieldJournalAbbrev,
	"J2": fieldJournalAbbrev,
	"PY": fieldDate,
	"Y1": fieldDate,
	"Y2": fieldDate,
	"VL": fieldVolume,
	"IS": fieldIssue,
	"SP": fieldStartPage,
	"EP": fieldEndPage,
	"DO": fieldDOI,
	"ID": fieldPMID,
	"C2": fieldPMCID,
	"AB": fieldAbstract,
	"N2": fieldAbstract,
	"KW": fieldKeyword,
	"SN": fieldISSN,
	"UR": fieldURL,
	"LK": fieldURL,
	"L1": fieldURL,
	"L2": fieldURL,
	"L3": fieldURL,
	"L4": fieldURL,
	"LA": fieldLanguage,
	"PB": fieldPublisher,
}
