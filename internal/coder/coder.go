// Package coder resolves free-form country name strings to canonical
// ISO 3166-1 alpha-3 codes. Resolution is driven by a declarative rule
// table: per code, optional extra match patterns, exact literals,
// exclusions that veto the code for a given input, and a priority order
// that decides which code gets first claim on ambiguous text ("Sudan"
// vs "South Sudan", "China" vs "Hong Kong SAR, China").
package coder

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/econcoder/ccr/internal/logging"
)

// Registry supplies the authoritative code set and each code's canonical
// display name. Codes() fixes the evaluation order of codes the rule
// source never mentions; declared codes are ordered by the rule source
// itself.
type Registry interface {
	Codes() []string
	Name(code string) (string, bool)
}

// Declaration is one code's parsed rule-source entry. Order zero is the
// default priority; higher values are deliberately deferred so that more
// specific codes get first chance to claim an ambiguous input. Rules keep
// their declared prefixes (':' literal, '~' exclusion).
type Declaration struct {
	Code  string
	Order int
	Rules []string
}

// Coder is the compiled, immutable rule table. Once Build returns, a
// Coder is read-only and safe for concurrent Resolve calls.
type Coder struct {
	entries []*entry
	debug   map[string]bool
	logger  zerolog.Logger
}

// Build compiles the rule source against the registry. Every registry
// code gets an entry whose canonical name participates as an ordinary
// pattern; declarations attach extra rules and priorities to their code.
// Build fails with UnknownCodeError for a declaration whose code the
// registry does not know, and with InvalidRuleError for a rule string
// that does not compile. A failed Build returns no usable Coder.
func Build(decls []Declaration, reg Registry) (*Coder, error) {
	codes := reg.Codes()
	byCode := make(map[string]*entry, len(codes))
	entries := make([]*entry, 0, len(codes))

	// Codes the rule source never mentions sort after declared ones on
	// registry position; declarations below overwrite index with their
	// own position, so ties between equal orders go to whichever code the
	// rule source declared first.
	for i, code := range codes {
		e := &entry{code: code, index: len(decls) + i}
		if name, ok := reg.Name(code); ok {
			if err := e.addName(name); err != nil {
				return nil, err
			}
		}
		byCode[code] = e
		entries = append(entries, e)
	}

	for i, d := range decls {
		e, ok := byCode[d.Code]
		if !ok {
			return nil, &UnknownCodeError{Code: d.Code}
		}
		e.order = d.Order
		e.index = i
		for _, r := range d.Rules {
			if err := e.addRule(r); err != nil {
				return nil, err
			}
		}
	}

	// Fixed evaluation order: ascending priority, declaration order as
	// the stable tie-breaker. Computed once, never again.
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].order != entries[j].order {
			return entries[i].order < entries[j].order
		}
		return entries[i].index < entries[j].index
	})

	return &Coder{
		entries: entries,
		logger:  logging.GetLogger("coder"),
	}, nil
}

// SetDebug enables per-code match tracing through the debug log for the
// given codes. Call before handing the Coder to concurrent users; it is
// not synchronized against in-flight Resolve calls.
func (c *Coder) SetDebug(codes ...string) {
	if len(codes) == 0 {
		c.debug = nil
		return
	}
	c.debug = make(map[string]bool, len(codes))
	for _, code := range codes {
		c.debug[code] = true
	}
}

// Resolve maps raw input text to an ISO3 code. The boolean result is
// false when no entry claims the input; that is a normal outcome, not an
// error. For a fixed table Resolve is a pure function of its input: the
// first non-excluded entry in evaluation order whose literal or pattern
// matches wins, and nothing after it is consulted.
func (c *Coder) Resolve(raw string) (string, bool) {
	normalized := Normalize(raw)
	if normalized == "" {
		return "", false
	}

	for _, e := range c.entries {
		if e.excluded(normalized) {
			if c.debug[e.code] {
				c.logger.Debug().
					Str("code", e.code).
					Str("input", normalized).
					Msg("entry vetoed by exclusion")
			}
			continue
		}
		if e.matches(normalized) {
			if c.debug[e.code] {
				c.logger.Debug().
					Str("code", e.code).
					Str("input", normalized).
					Int("order", e.order).
					Msg("entry matched")
			}
			return e.code, true
		}
		if c.debug[e.code] {
			c.logger.Debug().
				Str("code", e.code).
				Str("input", normalized).
				Msg("entry did not match")
		}
	}
	return "", false
}

// Resolution pairs one input with its outcome. Code is empty when the
// input did not resolve.
type Resolution struct {
	Input string `json:"input"`
	Code  string `json:"code,omitempty"`
}

// ResolveAll resolves a batch of inputs, preserving input order.
func (c *Coder) ResolveAll(inputs []string) []Resolution {
	out := make([]Resolution, len(inputs))
	for i, in := range inputs {
		code, _ := c.Resolve(in)
		out[i] = Resolution{Input: in, Code: code}
	}
	return out
}

// Len reports the number of entries in the table.
func (c *Coder) Len() int {
	return len(c.entries)
}
