package coder

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize canonicalizes free-form country name text into the form all
// matching runs against. Apostrophes are removed outright, diacritics are
// stripped via NFKD decomposition, and every other rune that is neither a
// letter nor '&' becomes a space. '&' survives so that patterns written
// with "and" can match it after sugar expansion.
//
// Normalize is pure and total: any input, including the empty string,
// normalizes without error, and Normalize(Normalize(s)) == Normalize(s).
func Normalize(raw string) string {
	decomposed := norm.NFKD.String(raw)

	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		switch {
		case isApostrophe(r):
			// dropped, not replaced: "Côte d'Ivoire" -> "cote divoire"
		case unicode.Is(unicode.Mn, r):
			// combining marks left over from NFKD
		case unicode.IsLetter(r):
			b.WriteRune(unicode.ToLower(r))
		case r == '&':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

func isApostrophe(r rune) bool {
	switch r {
	case '\'', '’', '‘', 'ʼ':
		return true
	}
	return false
}

// cleanName prepares a registry display name for compilation as a pattern.
// Registry names are prose, not regexes, so they get the full character
// cleanup. Parenthetical text is dropped, except that "(US)" and "(U.K.)"
// style qualifiers keep their inner token since they are the only thing
// distinguishing the two Virgin Islands entries.
func cleanName(name string) string {
	name = parenQualifier.ReplaceAllStringFunc(name, func(m string) string {
		inner := strings.Trim(m, "()")
		return strings.ReplaceAll(inner, ".", "")
	})
	name = parenthetical.ReplaceAllString(name, "")
	return Normalize(name)
}
