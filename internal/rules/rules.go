// Package rules loads the declarative rule source that drives the coder.
//
// The rule file is a YAML mapping from ISO3 code to either a bare integer
// (an explicit priority order) or a list mixing rule strings and at most
// one integer order:
//
//	SDN:
//	  - 20
//	HKG:
//	  - ~china.+hong kong
//	  - hong kong
//	USA:
//	  - ":us"
//
// Mapping order in the file is preserved; it is the tie-breaker between
// codes with equal priority.
package rules

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/econcoder/ccr/internal/coder"
)

//go:embed lookup-data.yaml
var defaultRules []byte

// Parse decodes rule source bytes into declarations, preserving the
// order in which codes appear in the document.
func Parse(data []byte) ([]coder.Declaration, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse rule source: %w", err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("rule source must be a mapping of code to rules, got %s", kindName(root.Kind))
	}

	decls := make([]coder.Declaration, 0, len(root.Content)/2)
	seen := make(map[string]bool)

	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]
		code := strings.ToUpper(strings.TrimSpace(key.Value))
		if seen[code] {
			return nil, fmt.Errorf("duplicate code %s at line %d", code, key.Line)
		}
		seen[code] = true

		d := coder.Declaration{Code: code}
		if err := decodeEntry(&d, val); err != nil {
			return nil, err
		}
		decls = append(decls, d)
	}
	return decls, nil
}

func decodeEntry(d *coder.Declaration, val *yaml.Node) error {
	switch val.Kind {
	case yaml.ScalarNode:
		if val.Tag == "!!null" {
			return nil
		}
		order, err := strconv.Atoi(val.Value)
		if err != nil {
			return fmt.Errorf("entry for %s at line %d must be an integer order or a list of rules", d.Code, val.Line)
		}
		d.Order = order
		return nil

	case yaml.SequenceNode:
		for _, item := range val.Content {
			if item.Kind != yaml.ScalarNode {
				return fmt.Errorf("rule for %s at line %d must be a string or integer", d.Code, item.Line)
			}
			if item.Tag == "!!int" {
				order, err := strconv.Atoi(item.Value)
				if err != nil {
					return fmt.Errorf("bad order for %s at line %d: %w", d.Code, item.Line, err)
				}
				d.Order = order
				continue
			}
			d.Rules = append(d.Rules, item.Value)
		}
		return nil

	default:
		return fmt.Errorf("entry for %s at line %d must be an integer order or a list of rules", d.Code, val.Line)
	}
}

// Load reads and parses a rule source file.
func Load(path string) ([]coder.Declaration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule source: %w", err)
	}
	return Parse(data)
}

// Default returns the rule declarations embedded with the module. These
// cover the known ambiguity families (Sudan/South Sudan, the Guinea and
// Congo groups, China and its SARs) plus common historical aliases.
func Default() []coder.Declaration {
	decls, err := Parse(defaultRules)
	if err != nil {
		// The embedded file is part of the build; a parse failure here
		// is a broken release, not a runtime condition.
		panic(fmt.Sprintf("embedded lookup-data.yaml: %v", err))
	}
	return decls
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	}
	return "unknown"
}
