package coder

import (
	"regexp"
	"strings"
)

// Rule string prefixes understood by the compiler. A leading ':' marks a
// literal that must equal the whole normalized input; a leading '~' marks
// an exclusion that vetoes its entry without ever producing a match.
// Anything else is a regex-capable pattern.
const (
	literalPrefix   = ":"
	exclusionPrefix = "~"
)

var (
	sugarAnd      = regexp.MustCompile(`\band\b`)
	sugarSaint    = regexp.MustCompile(`\b(?:st|saint)\b`)
	whitespaceRun = regexp.MustCompile(`\s+`)

	// (US) / (U.K.) style qualifiers keep their inner token; every other
	// parenthetical in a display name is noise and is dropped whole.
	parenQualifier = regexp.MustCompile(`(?i)\((u\.?s\.?|u\.?k\.?)\)`)
	parenthetical  = regexp.MustCompile(`\s*\([^)]*\)`)
)

// compilePattern turns one declared pattern string into a case-insensitive,
// word-bounded regexp over normalized input. Sugar equivalences are baked
// in here, on the pattern side only: "and" also matches "&", and "st" and
// "saint" match each other. Whitespace in the source becomes \s+ so rule
// authors never have to think about run lengths.
func compilePattern(code, expr string) (*regexp.Regexp, error) {
	expanded := strings.ToLower(strings.TrimSpace(expr))
	expanded = sugarAnd.ReplaceAllString(expanded, `(and|&)`)
	expanded = sugarSaint.ReplaceAllString(expanded, `(st|saint)`)
	expanded = whitespaceRun.ReplaceAllString(expanded, `\s+`)

	re, err := regexp.Compile(`(?i)\b(?:` + expanded + `)\b`)
	if err != nil {
		return nil, &InvalidRuleError{Code: code, Rule: expr, Err: err}
	}
	return re, nil
}

// CheckRule compiles a single declared rule string, surfacing the same
// error Build would report for it. Used by the lint command to collect
// every problem in a rule file instead of stopping at the first.
func CheckRule(code, raw string) error {
	e := &entry{code: code}
	return e.addRule(raw)
}

// entry is one code's compiled slot in the rule table.
type entry struct {
	code  string
	order int
	index int // declaration position, the tie-breaker within an order

	literals   []string
	patterns   []*regexp.Regexp
	exclusions []*regexp.Regexp
}

// addRule compiles a declared rule string into the right bucket.
func (e *entry) addRule(raw string) error {
	switch {
	case strings.HasPrefix(raw, literalPrefix):
		e.literals = append(e.literals, Normalize(raw[len(literalPrefix):]))
		return nil
	case strings.HasPrefix(raw, exclusionPrefix):
		re, err := compilePattern(e.code, raw[len(exclusionPrefix):])
		if err != nil {
			return err
		}
		e.exclusions = append(e.exclusions, re)
		return nil
	default:
		re, err := compilePattern(e.code, raw)
		if err != nil {
			return err
		}
		e.patterns = append(e.patterns, re)
		return nil
	}
}

// addName compiles a registry display name as an ordinary pattern. Names
// are prose rather than regexes, so they are cleaned first; a name that
// cleans down to nothing is skipped rather than compiled into a pattern
// that would match everything.
func (e *entry) addName(name string) error {
	cleaned := cleanName(name)
	if cleaned == "" {
		return nil
	}
	re, err := compilePattern(e.code, cleaned)
	if err != nil {
		return err
	}
	e.patterns = append(e.patterns, re)
	return nil
}

// excluded reports whether any exclusion vetoes this entry for the input.
// Exclusions are checked before patterns and literals are ever consulted.
func (e *entry) excluded(normalized string) bool {
	for _, re := range e.exclusions {
		if re.MatchString(normalized) {
			return true
		}
	}
	return false
}

// matches reports whether the entry claims the normalized input, assuming
// excluded() already returned false.
func (e *entry) matches(normalized string) bool {
	for _, lit := range e.literals {
		if lit == normalized {
			return true
		}
	}
	for _, re := range e.patterns {
		if re.MatchString(normalized) {
			return true
		}
	}
	return false
}
