package citation

import (
	"errors"
	"fmt"
)

// ErrUnknownFormat is returned by the format detector when content matches
// none of the supported citation encodings. Match with errors.Is.
var ErrUnknownFormat = errors.New("unknown citation format")

// ParseError reports malformed input to one of the format parsers. A parse
// error aborts the whole call; no partial citation list accompanies it.
type ParseError struct {
	Format  string // Short format name: "ris", "pubmed", "endnote-xml", "csv"
	Line    int    // 1-based line or row number, 0 when not applicable
	Message string
}

func (e ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: line %d: %s", e.Format, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Format, e.Message)
}

// ConfigError reports structural misuse of the library, such as a source
// list whose length does not match the citation list.
type ConfigError struct {
	Message string
}

func (e ConfigError) Error() string {
	return "invalid configuration: " + e.Message
}
