package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldDiacritics decomposes characters and drops combining marks, so
// "Über" and "Uber" compare equal.
var foldDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Title canonicalizes a title for comparison: diacritics folded, lowercased,
// punctuation stripped, whitespace collapsed. The result is suitable for
// fuzzy matching only, never for display or write-back.
func Title(title string) string {
	if folded, _, err := transform.String(foldDiacritics, title); err == nil {
		title = folded
	}

	title = strings.ToLower(title)

	var b strings.Builder
	b.Grow(len(title))
	for _, r := range title {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}
