/*
PURPOSE:
  Defines the configuration structure and loading logic for the load tester.
  Adheres to "Config IS Code" philosophy: the defaults ARE the benchmark.

REQUIREMENTS:
  User-specified:
  - Running with no config at all executes the built-in benchmark
    (fixed prompt list, llama3.2:1b base, my-custom-model custom).

  Implementation-discovered:
  - Needs to support YAML parsing (and TOML for people who prefer it).
  - Needs to support Environment variables overrides (LOADTEST_...), see env.go.
  - Files are validated against an embedded JSON schema before decoding, see schema.go.

ARCHITECTURE INTEGRATION:
  - Used by: internal/cli, internal/engine, internal/provision
  - Dependencies: gopkg.in/yaml.v3, github.com/BurntSushi/toml

ERROR HANDLING:
  - Returns explicit error if config file is invalid.
  - Missing default config file is not an error (falls back to defaults).

IMPLEMENTATION RULES:
  - Config struct tags support yaml and toml.
  - Defaults are the benchmark: no timeout, one worker per prompt.

USAGE:
  cfg, err := config.Load("loadtest.yaml")

SELF-HEALING INSTRUCTIONS:
  - If new fields are needed, add to Config struct, schema.json and DefaultConfig().

RELATED FILES:
  - internal/config/schema.json
  - internal/config/env.go
  - internal/cli/root.go

MAINTENANCE:
  - Update when adding new tuning parameters.
*/

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Match policies for model availability checks.
const (
	// MatchSubstring reports a model present if its name appears anywhere in
	// the `ollama list` output. Can false-positive on name collisions.
	MatchSubstring = "substring"
	// MatchExact compares against the NAME column only.
	MatchExact = "exact"
)

// Config represents the full configuration for a load test run.
type Config struct {
	// Host is the Ollama HTTP endpoint used for generation.
	Host string `yaml:"host" toml:"host"`
	// OllamaBin is the control CLI used for list/pull/create.
	OllamaBin   string `yaml:"ollama_bin" toml:"ollama_bin"`
	BaseModel   string `yaml:"base_model" toml:"base_model"`
	CustomModel string `yaml:"custom_model" toml:"custom_model"`
	// RecipeFile is the Modelfile used to derive CustomModel from BaseModel.
	RecipeFile  string `yaml:"recipe_file" toml:"recipe_file"`
	MatchPolicy string `yaml:"match_policy" toml:"match_policy"`

	// Workers caps concurrent generation calls. 0 = one per prompt.
	Workers int `yaml:"workers" toml:"workers"`
	// QueueSize bounds the dispatch queue. 0 = same as the worker count.
	QueueSize int `yaml:"queue_size" toml:"queue_size"`
	// RequestTimeout bounds a single generation call. 0 = no timeout.
	RequestTimeout time.Duration `yaml:"request_timeout" toml:"request_timeout"`
	KeepAlive      string        `yaml:"keep_alive" toml:"keep_alive"`

	// OutputDir enables CSV/JSONL result files when non-empty.
	OutputDir string `yaml:"output_dir" toml:"output_dir"`
	LogLevel  string `yaml:"log_level" toml:"log_level"`
	LogFile   string `yaml:"log_file" toml:"log_file"`

	Prompts []string `yaml:"prompts" toml:"prompts"`
}

// DefaultPrompts is the fixed question list the benchmark runs.
var DefaultPrompts = []string{
	"What is Python?",
	"How do I learn to code?",
	"What is the meaning of life?",
	"How can I improve my productivity?",
	"What are some tips for managing stress?",
	"What are the benefits of exercise?",
	"How do I build healthy habits?",
	"What is the best way to learn a new language?",
	"How can I improve my communication skills?",
	"What are some methods for dealing with anxiety?",
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	prompts := make([]string, len(DefaultPrompts))
	copy(prompts, DefaultPrompts)

	return &Config{
		Host:        "http://localhost:11434",
		OllamaBin:   "ollama",
		BaseModel:   "llama3.2:1b",
		CustomModel: "my-custom-model",
		RecipeFile:  "Modelfile",
		MatchPolicy: MatchSubstring,
		LogLevel:    "info",
		Prompts:     prompts,
	}
}

// DefaultFiles are searched in order when no config path is given.
var DefaultFiles = []string{"loadtest.yaml", "loadtest.yml", "loadtest.toml"}

// Load reads configuration from a file.
// If path is specified, it attempts to load that file.
// If path is empty, it searches for default files in order.
// If no file found, returns default config.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	var data []byte
	var err error

	if path != "" {
		data, err = os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
	} else {
		found := false
		for _, name := range DefaultFiles {
			data, err = os.ReadFile(name)
			if err == nil {
				path = name
				found = true
				break
			}
		}
		if !found {
			return cfg, nil
		}
	}

	if err := Decode(path, data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return cfg, nil
}

// Decode validates data against the schema and decodes it over cfg.
// The format is picked from the file extension; anything but .toml is YAML.
func Decode(path string, data []byte, cfg *Config) error {
	isTOML := strings.EqualFold(filepath.Ext(path), ".toml")

	var raw any
	if isTOML {
		var doc map[string]any
		if _, err := toml.Decode(string(data), &doc); err != nil {
			return fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
		raw = doc
	} else if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	// An empty YAML document decodes to nil; nothing to apply.
	if raw == nil {
		return nil
	}

	if err := validateSchema(raw); err != nil {
		return fmt.Errorf("config file %s does not match schema: %w", path, err)
	}

	if isTOML {
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return fmt.Errorf("failed to decode config file %s: %w", path, err)
		}
		return nil
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode config file %s: %w", path, err)
	}
	return nil
}

// Validate checks semantic constraints the schema cannot express,
// and re-checks values that may have come from the environment.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Host) == "" {
		return fmt.Errorf("host must not be empty")
	}
	if strings.TrimSpace(c.OllamaBin) == "" {
		return fmt.Errorf("ollama_bin must not be empty")
	}
	if strings.TrimSpace(c.BaseModel) == "" {
		return fmt.Errorf("base_model must not be empty")
	}
	if strings.TrimSpace(c.CustomModel) == "" {
		return fmt.Errorf("custom_model must not be empty")
	}
	switch c.MatchPolicy {
	case MatchSubstring, MatchExact:
	default:
		return fmt.Errorf("match_policy must be %q or %q, got %q", MatchSubstring, MatchExact, c.MatchPolicy)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	}
	if c.QueueSize < 0 {
		return fmt.Errorf("queue_size must be >= 0, got %d", c.QueueSize)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request_timeout must be >= 0, got %s", c.RequestTimeout)
	}
	if c.KeepAlive != "" {
		if _, err := ParseKeepAlive(c.KeepAlive); err != nil {
			return err
		}
	}
	return nil
}

// ParseKeepAlive accepts what Ollama's keep_alive accepts: a Go duration
// ("5m", "1h30m") or a bare number of seconds ("300", "-1" keeps the model loaded).
func ParseKeepAlive(s string) (time.Duration, error) {
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("keep_alive must be a duration or a number of seconds, got %q", s)
	}
	return time.Duration(n) * time.Second, nil
}
