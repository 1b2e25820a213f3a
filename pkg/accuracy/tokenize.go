package accuracy

import (
	"strings"
	"unicode"
)

// Tokenize normalizes raw text into comparable word tokens: the input is
// lower-cased, every rune that is not a letter, digit, or whitespace is
// dropped, and the remainder is split on runs of whitespace.
//
// Stripping punctuation includes contraction apostrophes and hyphens, so
// "don't" becomes "dont" and "well-known" becomes "wellknown". That is
// intentional lossy normalization: speech transcripts rarely agree with
// caption text on punctuation, and scoring should not punish that.
//
// The result preserves the left-to-right order of surviving words. It is
// never nil-observable: empty or whitespace-only input yields an empty slice.
func Tokenize(text string) []string {
	var b strings.Builder
	b.Grow(len(text))

	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}

	// Fields discards empty tokens from leading/trailing/repeated spaces.
	return strings.Fields(b.String())
}
