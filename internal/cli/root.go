/*
PURPOSE:
  Defines the root Cobra command for the load tester.
  With no subcommand it runs the full benchmark, exactly like `loadtest run`.

REQUIREMENTS:
  User-specified:
  - Running the binary with no flags executes the whole benchmark.
  - Exit code 0 on completion, even when individual prompts failed.

  Implementation-discovered:
  - Needs to expose an Execute() function for main.go.
  - Config resolution order: defaults < config file < .env / environment < flags.

ARCHITECTURE INTEGRATION:
  - Called by: cmd/loadtest/main.go
  - Calls: Child commands (run, list-models, provision, device)

ERROR HANDLING:
  - Returns error to main.go for exit code handling (config/setup errors only).

IMPLEMENTATION RULES:
  - Use `PersistentFlags()` for flags available to all subcommands.

USAGE:
  Called by main.go.

SELF-HEALING INSTRUCTIONS:
  - If adding new global flags, add them to init().

RELATED FILES:
  - cmd/loadtest/main.go
  - internal/cli/run.go

MAINTENANCE:
  - Update when adding global configuration options.
*/

package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/daryltucker/ollama-loadtest/internal/config"
	"github.com/daryltucker/ollama-loadtest/internal/output"
)

var (
	// cfgFile stores the path to the config file (if specified via flag)
	cfgFile string
	envFile string

	rootCmd = &cobra.Command{
		Use:           "loadtest",
		Short:         "Latency load test for a local Ollama server",
		Long:          `Ensures the base and custom models exist, fires every prompt at the custom model concurrently, and reports per-request and average latency.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runBenchmark,
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./loadtest.yaml, ./loadtest.yml or ./loadtest.toml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file with LOADTEST_* overrides (ignored if missing)")
}

// loadConfig resolves the effective configuration and sets up logging.
// The returned closer must be closed once the command finishes.
func loadConfig() (*config.Config, io.Closer, error) {
	if err := config.LoadDotEnv(envFile); err != nil {
		return nil, nil, err
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, err
	}

	if err := config.ApplyEnv(cfg, os.LookupEnv); err != nil {
		return nil, nil, err
	}

	closer, err := output.Configure(output.LogOptions{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return nil, nil, err
	}
	return cfg, closer, nil
}
