// Package registry holds the authoritative set of economy codes and their
// canonical display names. The coder consumes it both to validate rule
// sources and to inject each code's display name as an implicit match
// pattern.
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/econcoder/ccr/internal/wbapi"
)

// Entry is one code with its canonical display name.
type Entry struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Registry is an immutable code -> name table. Codes() order is fixed at
// construction; the coder evaluates codes the rule source never mentions
// in this order.
type Registry struct {
	codes []string
	names map[string]string
}

// New builds a registry from entries, preserving their order. Duplicate
// codes are rejected since the coder requires codes to be unique.
func New(entries []Entry) (*Registry, error) {
	r := &Registry{
		codes: make([]string, 0, len(entries)),
		names: make(map[string]string, len(entries)),
	}
	for _, e := range entries {
		code := strings.ToUpper(strings.TrimSpace(e.Code))
		if code == "" {
			return nil, fmt.Errorf("registry entry with empty code (name %q)", e.Name)
		}
		if _, dup := r.names[code]; dup {
			return nil, fmt.Errorf("duplicate registry code %s", code)
		}
		r.codes = append(r.codes, code)
		r.names[code] = e.Name
	}
	return r, nil
}

// Default returns the registry embedded with the module: the World Bank
// economy list, keyed by ISO3 (plus the Bank's own CHI and XKX codes),
// in code order.
func Default() *Registry {
	codes := make([]string, 0, len(economyNames))
	for code := range economyNames {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return &Registry{codes: codes, names: economyNames}
}

// FromEconomies builds a registry from a fetched economy list, dropping
// aggregate rows (regions, income groups) since those are not economies
// a name should ever resolve to.
func FromEconomies(economies []wbapi.Economy) (*Registry, error) {
	entries := make([]Entry, 0, len(economies))
	for _, e := range economies {
		if e.Aggregate {
			continue
		}
		entries = append(entries, Entry{Code: e.ID, Name: e.Name})
	}
	return New(entries)
}

// LoadJSON reads a registry written by the fetch command: a JSON array
// of {"code", "name"} objects.
func LoadJSON(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read registry: %w", err)
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse registry: %w", err)
	}
	return New(entries)
}

// Entries returns the registry as code/name pairs in declaration order,
// the shape LoadJSON reads back.
func (r *Registry) Entries() []Entry {
	entries := make([]Entry, len(r.codes))
	for i, code := range r.codes {
		entries[i] = Entry{Code: code, Name: r.names[code]}
	}
	return entries
}

// Codes returns all codes in declaration order.
func (r *Registry) Codes() []string {
	return r.codes
}

// Name returns the canonical display name for a code.
func (r *Registry) Name(code string) (string, bool) {
	name, ok := r.names[strings.ToUpper(code)]
	return name, ok
}

// Has reports whether the code is known.
func (r *Registry) Has(code string) bool {
	_, ok := r.names[strings.ToUpper(code)]
	return ok
}

// Len reports the number of codes.
func (r *Registry) Len() int {
	return len(r.codes)
}
