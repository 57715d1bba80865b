// Command resolve maps free-form country names to ISO 3166-1 alpha-3
// codes using the declarative rule table, and prints a report of the
// results.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/econcoder/ccr/internal/coder"
	"github.com/econcoder/ccr/internal/config"
	"github.com/econcoder/ccr/internal/logging"
	"github.com/econcoder/ccr/internal/registry"
	"github.com/econcoder/ccr/internal/report"
	"github.com/econcoder/ccr/internal/rules"
)

func main() {
	// Command line flags
	configPath := flag.String("config", "", "Optional YAML config file")
	rulesPath := flag.String("rules", "", "Rule file (empty = embedded rules)")
	registryPath := flag.String("registry", "", "Registry JSON file (empty = embedded snapshot)")
	inputFile := flag.String("file", "", "Read names from this file, one per line")
	summary := flag.Bool("summary", false, "Only report anomalies (unmatched or non-canonical names)")
	jsonOut := flag.Bool("json", false, "Emit JSON instead of a text table")
	debug := flag.String("debug", "", "Comma-separated codes to trace during matching")
	verbose := flag.Int("verbose", 0, "Verbosity (0=warn, 1=info, 2=debug)")

	flag.Parse()
	logging.Setup(*verbose)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *rulesPath == "" {
		*rulesPath = cfg.Coder.RulesPath
	}
	if *registryPath == "" {
		*registryPath = cfg.Coder.RegistryPath
	}

	names, err := gatherInputs(flag.Args(), *inputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		os.Exit(1)
	}
	if len(names) == 0 {
		fmt.Fprintln(os.Stderr, "No names to resolve. Pass names as arguments, via -file, or on stdin.")
		os.Exit(1)
	}

	c, reg, err := buildCoder(*rulesPath, *registryPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building rule table: %v\n", err)
		os.Exit(1)
	}
	if *debug != "" {
		codes := strings.Split(*debug, ",")
		for i := range codes {
			codes[i] = strings.ToUpper(strings.TrimSpace(codes[i]))
		}
		c.SetDebug(codes...)
	}

	rep := report.Build(c.ResolveAll(names), reg)
	if *summary {
		rep = rep.Summary()
	}

	if *jsonOut {
		err = rep.WriteJSON(os.Stdout)
	} else {
		err = rep.WriteText(os.Stdout)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error writing report: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.LoadFromEnv()
}

// gatherInputs collects names from arguments, a file, or stdin, in that
// order of preference. Blank lines and #-comments are skipped.
func gatherInputs(args []string, path string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}

	in := os.Stdin
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open input file: %w", err)
		}
		defer f.Close()
		in = f
	}

	var names []string
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read names: %w", err)
	}
	return names, nil
}

func buildCoder(rulesPath, registryPath string) (*coder.Coder, *registry.Registry, error) {
	reg := registry.Default()
	if registryPath != "" {
		loaded, err := registry.LoadJSON(registryPath)
		if err != nil {
			return nil, nil, err
		}
		reg = loaded
	}

	decls := rules.Default()
	if rulesPath != "" {
		loaded, err := rules.Load(rulesPath)
		if err != nil {
			return nil, nil, err
		}
		decls = loaded
	}

	c, err := coder.Build(decls, reg)
	if err != nil {
		return nil, nil, err
	}
	return c, reg, nil
}
