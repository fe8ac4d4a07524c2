package dedupe

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// replacements strips the HTML markup and entities publishers leave in
// titles and folds Greek letters, and their spelled-out names, to Latin
// equivalents so "α-synuclein" and "alpha-synuclein" compare equal.
// Entity patterns precede the bare ampersand so they are consumed whole.
var replacements = strings.NewReplacer(
	"&lt;", " ", "&gt;", " ", "&quot;", " ", "&apos;", " ", "&nbsp;", " ",
	"&amp;", " and ", "&", " and ",
	"<sup>", "", "</sup>", "",
	"<sub>", "", "</sub>", "",
	"<inf>", "", "</inf>", "",
	"α", "a", "β", "b", "γ", "g", "ß", "b",
	"alpha", "a", "beta", "b", "gamma", "g",
)

// unicodeEscape matches the <U+XXXX> notation some databases substitute
// for non-ASCII characters (matched after lowercasing).
var unicodeEscape = regexp.MustCompile(`<u\+([0-9a-f]{4})>`)

// marksRemover drops combining marks left by canonical decomposition,
// folding accented characters onto their base letters.
var marksRemover = runes.Remove(runes.In(unicode.Mn))

// normalizeTitle reduces a title to bare comparable form: lower case,
// markup and escapes resolved, Greek folded, diacritics removed, and
// everything but letters and digits dropped.
func normalizeTitle(s string) string {
	s = strings.ToLower(s)
	s = decodeUnicodeEscapes(s)
	s = replacements.Replace(s)
	s = foldMarks(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// normalizeJournal is normalizeTitle plus removal of the ". Conference"
// style suffixes some databases append to venue names.
func normalizeJournal(s string) string {
	s = strings.ToLower(s)
	if i := strings.Index(s, ". conference"); i >= 0 {
		s = s[:i]
	}
	return normalizeTitle(s)
}

func decodeUnicodeEscapes(s string) string {
	if !strings.Contains(s, "<u+") {
		return s
	}
	return unicodeEscape.ReplaceAllStringFunc(s, func(m string) string {
		hex := m[3 : len(m)-1]
		n, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return m
		}
		return string(rune(n))
	})
}

// foldMarks decomposes compatibility equivalents and strips combining
// marks. The chain transformer keeps internal buffers, so one is built
// per call; engine invocations must stay independent under concurrent
// use.
func foldMarks(s string) string {
	out, _, err := transform.String(transform.Chain(norm.NFKD, marksRemover, norm.NFC), s)
	if err != nil {
		return s
	}
	return out
}
