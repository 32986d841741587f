// Package config loads server settings from defaults, an optional YAML file
// named by REPOTEXT_CONFIG, and environment overrides, in that order.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/tilsley/repotext/pkg/ingest"
	"github.com/tilsley/repotext/pkg/ingest/adapters"
)

// Archive sources.
const (
	SourceWeb = "web"
	SourceAPI = "api"
)

// Config is the resolved server configuration.
type Config struct {
	Port           string `yaml:"port"`
	ArchiveSource  string `yaml:"archive_source"`
	ArchiveBaseURL string `yaml:"archive_base_url"`
	GitHubAPIURL   string `yaml:"github_api_url"`
	DefaultBranch  string `yaml:"default_branch"`
	OTelEnabled    bool   `yaml:"otel_enabled"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Port:           "8080",
		ArchiveSource:  SourceWeb,
		ArchiveBaseURL: adapters.DefaultArchiveURL,
		DefaultBranch:  ingest.DefaultBranch,
	}
}

// Load resolves the configuration from the process environment.
func Load() (Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (Config, error) {
	cfg := Default()

	if path := getenv("REPOTEXT_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	override(&cfg.Port, getenv("PORT"))
	override(&cfg.ArchiveSource, getenv("ARCHIVE_SOURCE"))
	override(&cfg.ArchiveBaseURL, getenv("ARCHIVE_BASE_URL"))
	override(&cfg.GitHubAPIURL, getenv("GITHUB_API_URL"))
	override(&cfg.DefaultBranch, getenv("DEFAULT_BRANCH"))
	if v := getenv("OTEL_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("OTEL_ENABLED: %w", err)
		}
		cfg.OTelEnabled = enabled
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports settings the server cannot start with.
func (c Config) Validate() error {
	switch c.ArchiveSource {
	case SourceWeb, SourceAPI:
	default:
		return fmt.Errorf("archive source must be %q or %q, got %q", SourceWeb, SourceAPI, c.ArchiveSource)
	}
	if c.Port == "" {
		return fmt.Errorf("port must not be empty")
	}
	if c.DefaultBranch == "" {
		return fmt.Errorf("default branch must not be empty")
	}
	return nil
}

func override(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
