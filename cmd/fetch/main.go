// Command fetch pulls the economy list from the World Bank API and
// writes it as a registry JSON file for use with resolve and lint.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/econcoder/ccr/internal/config"
	"github.com/econcoder/ccr/internal/logging"
	"github.com/econcoder/ccr/internal/registry"
	"github.com/econcoder/ccr/internal/wbapi"
)

func main() {
	// Command line flags
	configPath := flag.String("config", "", "Optional YAML config file")
	output := flag.String("output", "data/registry.json", "Output registry JSON file")
	endpoint := flag.String("endpoint", "", "API base URL (empty = config or default)")
	lang := flag.String("lang", "", "API language (empty = config or 'en')")
	perPage := flag.Int("per-page", 0, "Page size for API requests")
	timeout := flag.Duration("timeout", 0, "HTTP request timeout")
	includeAggregates := flag.Bool("include-aggregates", false, "Keep aggregate rows (regions, income groups)")
	verbose := flag.Int("verbose", 0, "Verbosity (0=warn, 1=info, 2=debug)")

	flag.Parse()
	logging.Setup(*verbose)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *endpoint == "" {
		*endpoint = cfg.API.Endpoint
	}
	if *lang == "" {
		*lang = cfg.API.Lang
	}
	if *perPage == 0 {
		*perPage = cfg.API.PerPage
	}
	if *timeout == 0 {
		*timeout = time.Duration(cfg.API.Timeout)
	}

	client := wbapi.NewClient(wbapi.ClientConfig{
		Endpoint: *endpoint,
		Lang:     *lang,
		PerPage:  *perPage,
		Timeout:  *timeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	fmt.Printf("Fetching economies from %s...\n", *endpoint)
	economies, err := client.Economies(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error fetching economies: %v\n", err)
		os.Exit(1)
	}

	var entries []registry.Entry
	if *includeAggregates {
		entries = make([]registry.Entry, 0, len(economies))
		for _, e := range economies {
			entries = append(entries, registry.Entry{Code: e.ID, Name: e.Name})
		}
	} else {
		reg, err := registry.FromEconomies(economies)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error building registry: %v\n", err)
			os.Exit(1)
		}
		entries = reg.Entries()
	}
	skipped := len(economies) - len(entries)

	if err := writeRegistry(*output, entries); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing registry: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Wrote %d economies to %s (%d aggregates skipped)\n", len(entries), *output, skipped)
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.LoadFromEnv()
}

func writeRegistry(path string, entries []registry.Entry) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("failed to encode registry: %w", err)
	}
	return nil
}
