package citation

// Parser is the contract every format parser implements: raw text in,
// ordered citations out, or an error describing why the input is not valid
// in that format.
//
// Implementations are pure functions over their input. They keep no state
// between calls and are safe for concurrent use on independent inputs.
type Parser interface {
	Parse(input string) ([]Citation, error)
}
