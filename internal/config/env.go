/*
PURPOSE:
  Environment overrides for the config: an optional .env file and LOADTEST_* variables.

REQUIREMENTS:
  Implementation-discovered:
  - CI boxes set the Ollama host and worker count without editing files.
  - Precedence: defaults < config file < environment < CLI flags.

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli (loadConfig)
  - Uses: github.com/joho/godotenv

ERROR HANDLING:
  - Missing .env file is not an error.
  - Unparseable numbers or durations are returned with the variable name.

IMPLEMENTATION RULES:
  - ApplyEnv takes a lookup func so tests never touch the process environment.

USAGE:
  config.LoadDotEnv(".env")
  err := config.ApplyEnv(cfg, os.LookupEnv)

SELF-HEALING INSTRUCTIONS:
  - None.

RELATED FILES:
  - internal/config/config.go

MAINTENANCE:
  - Add a constant and a table entry when adding a Config field.
*/

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables that override file/default values.
const (
	EnvHost           = "LOADTEST_HOST"
	EnvOllamaBin      = "LOADTEST_OLLAMA_BIN"
	EnvBaseModel      = "LOADTEST_BASE_MODEL"
	EnvCustomModel    = "LOADTEST_CUSTOM_MODEL"
	EnvRecipeFile     = "LOADTEST_RECIPE_FILE"
	EnvMatchPolicy    = "LOADTEST_MATCH_POLICY"
	EnvWorkers        = "LOADTEST_WORKERS"
	EnvQueueSize      = "LOADTEST_QUEUE_SIZE"
	EnvRequestTimeout = "LOADTEST_REQUEST_TIMEOUT"
	EnvOutputDir      = "LOADTEST_OUTPUT_DIR"
	EnvLogLevel       = "LOADTEST_LOG_LEVEL"
	EnvLogFile        = "LOADTEST_LOG_FILE"
)

// LoadDotEnv loads variables from a .env file into the process environment.
// A missing file is fine; variables already set are not overwritten.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides cfg with LOADTEST_* variables found via lookup.
// Pass os.LookupEnv in production.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	strs := []struct {
		key string
		dst *string
	}{
		{EnvHost, &cfg.Host},
		{EnvOllamaBin, &cfg.OllamaBin},
		{EnvBaseModel, &cfg.BaseModel},
		{EnvCustomModel, &cfg.CustomModel},
		{EnvRecipeFile, &cfg.RecipeFile},
		{EnvMatchPolicy, &cfg.MatchPolicy},
		{EnvOutputDir, &cfg.OutputDir},
		{EnvLogLevel, &cfg.LogLevel},
		{EnvLogFile, &cfg.LogFile},
	}
	for _, s := range strs {
		if v, ok := lookup(s.key); ok {
			*s.dst = v
		}
	}

	ints := []struct {
		key string
		dst *int
	}{
		{EnvWorkers, &cfg.Workers},
		{EnvQueueSize, &cfg.QueueSize},
	}
	for _, i := range ints {
		v, ok := lookup(i.key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", i.key, err)
		}
		*i.dst = n
	}

	if v, ok := lookup(EnvRequestTimeout); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRequestTimeout, err)
		}
		cfg.RequestTimeout = d
	}

	return cfg.Validate()
}
