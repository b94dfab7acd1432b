// Package slug normalizes arbitrary text into filesystem- and URL-safe tokens.
// Tokens are lowercase and contain only alphanumerics, underscores, and hyphens;
// runs of whitespace and dashes collapse to a single hyphen.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	asciiInvalid   = regexp.MustCompile(`[^a-z0-9_\s-]`)
	unicodeInvalid = regexp.MustCompile(`[^\p{L}\p{N}_\s-]`)
	separatorRuns  = regexp.MustCompile(`[-\s]+`)

	// NFKD decomposition followed by removal of combining marks folds
	// accented letters to their ASCII base.
	asciiFold = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// Make converts value to an ASCII slug, folding accented characters to their
// base letters and discarding anything that cannot be represented. Empty input
// yields an empty slug. Make is pure and idempotent.
func Make(value string) string {
	if folded, _, err := transform.String(asciiFold, value); err == nil {
		value = folded
	}
	return collapse(asciiInvalid.ReplaceAllString(strings.ToLower(value), ""))
}

// MakeUnicode converts value to a slug while preserving unicode letters and
// digits. The value is NFKC-normalized before cleaning.
func MakeUnicode(value string) string {
	value = norm.NFKC.String(value)
	return collapse(unicodeInvalid.ReplaceAllString(strings.ToLower(value), ""))
}

func collapse(value string) string {
	value = separatorRuns.ReplaceAllString(value, "-")
	return strings.Trim(value, "-_")
}
