// Package config holds the CLI configuration: which registry mirrors to
// query, how to display results, and how loudly to log.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	regtap "github.com/openvo/go-regtap"
)

// Config holds all regtap CLI configuration.
type Config struct {
	// Registry configures which endpoints to query and how.
	Registry RegistryConfig `yaml:"registry"`

	// Output configures how results are displayed.
	Output OutputConfig `yaml:"output"`

	// Log configures diagnostic output.
	Log LogConfig `yaml:"log"`
}

// RegistryConfig configures the registry client.
type RegistryConfig struct {
	// Endpoints are the registry mirrors, tried in order. Empty means
	// the public defaults.
	Endpoints []string `yaml:"endpoints,omitempty"`

	// MaxRec is the row limit sent with queries. Zero leaves truncation
	// to the service.
	MaxRec int `yaml:"maxrec"`

	// TimeoutSeconds bounds each HTTP request.
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// OutputConfig configures result display.
type OutputConfig struct {
	// Format is "text", "csv", or "json".
	Format string `yaml:"format"`

	// MaxRows limits text output; zero shows everything.
	MaxRows int `yaml:"max_rows"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is "debug", "info", "warn", or "error".
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Registry: RegistryConfig{
			MaxRec:         regtap.DefaultMaxRec,
			TimeoutSeconds: 30,
		},
		Output: OutputConfig{
			Format:  "text",
			MaxRows: 25,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// DefaultPath returns the conventional config location,
// ~/.config/regtap/config.yaml, or a relative fallback when the home
// directory is unknown.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".regtap", "config.yaml")
	}
	return filepath.Join(home, ".config", "regtap", "config.yaml")
}

// Load reads configuration from a YAML file. A missing file is not an
// error: defaults apply, adjusted by any environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to a YAML file, creating parent
// directories as needed.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies REGTAP_* environment variables over the
// loaded values. Unparsable numbers are ignored rather than fatal; the
// CLI should still start with a half-set environment.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("REGTAP_ENDPOINT"); v != "" {
		c.Registry.Endpoints = splitList(v)
	}
	if v := os.Getenv("REGTAP_MAXREC"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Registry.MaxRec = n
		}
	}
	if v := os.Getenv("REGTAP_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Registry.TimeoutSeconds = n
		}
	}
	if v := os.Getenv("REGTAP_LOG_LEVEL"); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
}

// Validate checks the configuration, naming the offending field.
func (c *Config) Validate() error {
	if c.Registry.MaxRec < 0 {
		return fmt.Errorf("registry.maxrec: must not be negative, got %d", c.Registry.MaxRec)
	}
	if c.Registry.TimeoutSeconds < 0 {
		return fmt.Errorf("registry.timeout_seconds: must not be negative, got %d", c.Registry.TimeoutSeconds)
	}
	switch c.Output.Format {
	case "text", "csv", "json":
	default:
		return fmt.Errorf("output.format: must be text, csv, or json, got %q", c.Output.Format)
	}
	if c.Output.MaxRows < 0 {
		return fmt.Errorf("output.max_rows: must not be negative, got %d", c.Output.MaxRows)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level: must be debug, info, warn, or error, got %q", c.Log.Level)
	}
	return nil
}

// Timeout returns the request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Registry.TimeoutSeconds) * time.Second
}

// ClientOptions renders the configuration into registry client options.
func (c *Config) ClientOptions() []regtap.Option {
	var opts []regtap.Option
	if len(c.Registry.Endpoints) > 0 {
		opts = append(opts, regtap.WithEndpoints(c.Registry.Endpoints...))
	}
	if c.Registry.MaxRec > 0 {
		opts = append(opts, regtap.WithMaxRec(c.Registry.MaxRec))
	}
	if c.Registry.TimeoutSeconds > 0 {
		opts = append(opts, regtap.WithTimeout(c.Timeout()))
	}
	return opts
}

// splitList splits a comma-separated environment value, trimming
// whitespace and dropping empties.
func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
