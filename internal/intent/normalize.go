// internal/intent/normalize.go
package intent

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// turkishFold maps Turkish letters onto their ASCII base. Both dotted and
// dotless capital I fold to a plain i before lowercasing so the generic
// lowercaser never emits a combining dot.
var turkishFold = map[rune]rune{
	'İ': 'i', 'I': 'i', 'ı': 'i',
	'Ğ': 'g', 'ğ': 'g',
	'Ü': 'u', 'ü': 'u',
	'Ş': 's', 'ş': 's',
	'Ç': 'c', 'ç': 'c',
	'Ö': 'o', 'ö': 'o',
}

func foldRune(r rune) rune {
	if f, ok := turkishFold[r]; ok {
		return f
	}
	return r
}

// Normalize trims, lowercases, folds Turkish letters to ASCII and collapses
// whitespace runs to one space. It is total and idempotent.
//
// Besides ğ ü ş ç ö, every form of i (İ, I, ı) folds to a plain i, so
// "haftalık" normalizes to "haftalik".
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	// Casers are stateful; build the chain per call.
	t := transform.Chain(runes.Map(foldRune), cases.Lower(language.Und))
	folded, _, err := transform.String(t, text)
	if err != nil {
		folded = strings.ToLower(strings.Map(foldRune, text))
	}
	return strings.Join(strings.Fields(folded), " ")
}
