// Command lint validates a rule file against a registry: every rule must
// compile and every code must exist. Unlike building a table, lint
// reports all findings before exiting.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/econcoder/ccr/internal/coder"
	"github.com/econcoder/ccr/internal/logging"
	"github.com/econcoder/ccr/internal/registry"
	"github.com/econcoder/ccr/internal/rules"
)

func main() {
	// Command line flags
	rulesPath := flag.String("rules", "", "Rule file to check (empty = embedded rules)")
	registryPath := flag.String("registry", "", "Registry JSON file (empty = embedded snapshot)")
	verbose := flag.Int("verbose", 0, "Verbosity (0=warn, 1=info, 2=debug)")

	flag.Parse()
	logging.Setup(*verbose)

	reg := registry.Default()
	if *registryPath != "" {
		loaded, err := registry.LoadJSON(*registryPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading registry: %v\n", err)
			os.Exit(1)
		}
		reg = loaded
	}

	decls := rules.Default()
	if *rulesPath != "" {
		loaded, err := rules.Load(*rulesPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading rules: %v\n", err)
			os.Exit(1)
		}
		decls = loaded
	}

	findings := 0
	for _, d := range decls {
		if !reg.Has(d.Code) {
			fmt.Printf("  [UNKNOWN] %s: code not in registry\n", d.Code)
			findings++
		}
		for _, r := range d.Rules {
			if err := coder.CheckRule(d.Code, r); err != nil {
				fmt.Printf("  [INVALID] %v\n", err)
				findings++
			}
		}
	}

	// A clean per-rule pass should always yield a buildable table; this
	// catches anything the rule-level checks cannot see.
	if findings == 0 {
		if _, err := coder.Build(decls, reg); err != nil {
			fmt.Printf("  [BUILD] %v\n", err)
			findings++
		}
	}

	if findings > 0 {
		fmt.Printf("%d problem(s) found\n", findings)
		os.Exit(1)
	}
	fmt.Printf("OK: %d declarations, %d registry codes\n", len(decls), reg.Len())
}
