// Package config provides configuration management for the ccr commands.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Coder CoderConfig `yaml:"coder"`
	API   APIConfig   `yaml:"api"`
}

// CoderConfig holds the rule table inputs. Empty paths mean the embedded
// rule file and registry snapshot.
type CoderConfig struct {
	RulesPath    string `yaml:"rules_path"`
	RegistryPath string `yaml:"registry_path"`
}

// APIConfig holds World Bank API settings used when refreshing the
// registry.
type APIConfig struct {
	Endpoint string   `yaml:"endpoint"`
	Lang     string   `yaml:"lang"`
	PerPage  int      `yaml:"per_page"`
	Timeout  Duration `yaml:"timeout"`
}

// Duration is a time.Duration that unmarshals from YAML strings like "30s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Load reads configuration from a YAML file and expands environment
// variables.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the config
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// LoadFromEnv creates a configuration from environment variables only.
func LoadFromEnv() (*Config, error) {
	timeout, err := getEnvDuration("CCR_API_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	perPage, err := getEnvInt("CCR_API_PER_PAGE", 1000)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Coder: CoderConfig{
			RulesPath:    getEnv("CCR_RULES_PATH", ""),
			RegistryPath: getEnv("CCR_REGISTRY_PATH", ""),
		},
		API: APIConfig{
			Endpoint: getEnv("CCR_API_ENDPOINT", ""),
			Lang:     getEnv("CCR_API_LANG", "en"),
			PerPage:  perPage,
			Timeout:  Duration(timeout),
		},
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.API.Endpoint == "" {
		c.API.Endpoint = "https://api.worldbank.org/v2"
	}
	if c.API.Lang == "" {
		c.API.Lang = "en"
	}
	if c.API.PerPage == 0 {
		c.API.PerPage = 1000
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = Duration(30 * time.Second)
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	return d, nil
}
