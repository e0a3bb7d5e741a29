package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/fileenv"
)

const (
	defaultFormat      = FormatYAML
	defaultMinInterval = time.Second
)

// Output formats accepted by the tool.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// Config aggregates the tool's settings resolved from multiple sources.
// Precedence: CLI flags > YAML config > Environment variables > Defaults
type Config struct {
	Prefix       string
	Suffix       string
	Profile      string
	Only         []string
	Ignore       []string
	Format       string
	AllowMissing bool
	Watch        bool
	MinInterval  time.Duration
	Verbose      bool
}

// yamlConfig represents the YAML configuration file structure.
type yamlConfig struct {
	Prefix       string   `yaml:"prefix"`
	Suffix       string   `yaml:"suffix"`
	Profile      string   `yaml:"profile"`
	Only         []string `yaml:"only"`
	Ignore       []string `yaml:"ignore"`
	Format       string   `yaml:"format"`
	AllowMissing bool     `yaml:"allow_missing"`
	Watch        bool     `yaml:"watch"`
	MinInterval  string   `yaml:"min_interval"`
}

// CLIOverrides holds command-line flag overrides.
type CLIOverrides struct {
	ConfigFile   string
	Prefix       *string
	Suffix       *string
	Profile      *string
	OnlyStr      *string
	IgnoreStr    *string
	Format       *string
	AllowMissing *bool
	Watch        *bool
	MinInterval  *time.Duration
	Verbose      *bool
}

// Load extracts configuration from multiple sources with precedence:
// CLI flags > YAML config > Environment variables > Defaults
func Load(overrides *CLIOverrides) (Config, error) {
	cfg := defaultConfig()

	// Load from YAML file if specified
	if overrides != nil && overrides.ConfigFile != "" {
		yamlCfg, err := loadFromFile(overrides.ConfigFile)
		if err != nil {
			return Config{}, fmt.Errorf("load YAML config: %w", err)
		}
		applyYAMLConfig(&cfg, yamlCfg)
	}

	// Apply environment variables (override YAML)
	applyEnvConfig(&cfg)

	// Apply CLI overrides (highest precedence)
	if overrides != nil {
		applyCLIOverrides(&cfg, overrides)
	}

	// Validate final configuration
	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// defaultConfig returns a Config with default values.
func defaultConfig() Config {
	return Config{
		Suffix:      fileenv.DefaultSuffix,
		Format:      defaultFormat,
		MinInterval: defaultMinInterval,
	}
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(path string) (*yamlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	return &yamlCfg, nil
}

// applyYAMLConfig applies YAML configuration to the Config struct.
func applyYAMLConfig(cfg *Config, yamlCfg *yamlConfig) {
	if yamlCfg.Prefix != "" {
		cfg.Prefix = yamlCfg.Prefix
	}

	if yamlCfg.Suffix != "" {
		cfg.Suffix = yamlCfg.Suffix
	}

	if yamlCfg.Profile != "" {
		cfg.Profile = yamlCfg.Profile
	}

	if len(yamlCfg.Only) > 0 {
		cfg.Only = normalizeKeys(yamlCfg.Only)
	}

	if len(yamlCfg.Ignore) > 0 {
		cfg.Ignore = normalizeKeys(yamlCfg.Ignore)
	}

	if yamlCfg.Format != "" {
		cfg.Format = strings.ToLower(yamlCfg.Format)
	}

	cfg.AllowMissing = yamlCfg.AllowMissing
	cfg.Watch = yamlCfg.Watch

	if yamlCfg.MinInterval != "" {
		if d, err := time.ParseDuration(yamlCfg.MinInterval); err == nil {
			cfg.MinInterval = d
		}
	}
}

// applyEnvConfig applies environment variable configuration. The tool's own
// settings live under the FILEENV_ namespace so they never collide with the
// application variables being resolved.
func applyEnvConfig(cfg *Config) {
	if prefix := strings.TrimSpace(os.Getenv("FILEENV_PREFIX")); prefix != "" {
		cfg.Prefix = prefix
	}

	if suffix := strings.TrimSpace(os.Getenv("FILEENV_SUFFIX")); suffix != "" {
		cfg.Suffix = suffix
	}

	if profile := strings.TrimSpace(os.Getenv("FILEENV_PROFILE")); profile != "" {
		cfg.Profile = profile
	}

	if format := strings.TrimSpace(os.Getenv("FILEENV_FORMAT")); format != "" {
		cfg.Format = strings.ToLower(format)
	}

	if raw := strings.TrimSpace(os.Getenv("FILEENV_ALLOW_MISSING")); raw != "" {
		if value, err := strconv.ParseBool(raw); err == nil {
			cfg.AllowMissing = value
		}
	}
}

// applyCLIOverrides applies command-line flag overrides.
func applyCLIOverrides(cfg *Config, overrides *CLIOverrides) {
	if overrides.Prefix != nil && *overrides.Prefix != "" {
		cfg.Prefix = *overrides.Prefix
	}

	if overrides.Suffix != nil && *overrides.Suffix != "" {
		cfg.Suffix = *overrides.Suffix
	}

	if overrides.Profile != nil && *overrides.Profile != "" {
		cfg.Profile = *overrides.Profile
	}

	if overrides.OnlyStr != nil && *overrides.OnlyStr != "" {
		cfg.Only = parseKeyList(*overrides.OnlyStr)
	}

	if overrides.IgnoreStr != nil && *overrides.IgnoreStr != "" {
		cfg.Ignore = parseKeyList(*overrides.IgnoreStr)
	}

	if overrides.Format != nil && *overrides.Format != "" {
		cfg.Format = strings.ToLower(*overrides.Format)
	}

	if overrides.AllowMissing != nil && *overrides.AllowMissing {
		cfg.AllowMissing = true
	}

	if overrides.Watch != nil && *overrides.Watch {
		cfg.Watch = true
	}

	if overrides.MinInterval != nil && *overrides.MinInterval > 0 {
		cfg.MinInterval = *overrides.MinInterval
	}

	if overrides.Verbose != nil && *overrides.Verbose {
		cfg.Verbose = true
	}
}

// validateConfig validates the final configuration.
func validateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.Prefix) == "" {
		return fmt.Errorf("prefix is required: set --prefix, FILEENV_PREFIX, or the config file")
	}
	if cfg.Format != FormatYAML && cfg.Format != FormatJSON {
		return fmt.Errorf("format must be %q or %q, got %q", FormatYAML, FormatJSON, cfg.Format)
	}
	if cfg.MinInterval <= 0 {
		return fmt.Errorf("min interval must be positive")
	}
	return nil
}

// parseKeyList parses a comma-separated list of logical keys, trimming and
// lowercasing each entry and dropping empties.
func parseKeyList(raw string) []string {
	parts := strings.Split(raw, ",")
	keys := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		keys = append(keys, part)
	}
	return keys
}

func normalizeKeys(raw []string) []string {
	keys := make([]string, 0, len(raw))
	for _, key := range raw {
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" {
			continue
		}
		keys = append(keys, key)
	}
	return keys
}
