/*
PURPOSE:
  Defines the 'run' subcommand (also the root command's default action).
  Executes the full load test.

REQUIREMENTS:
  User-specified:
  - Provision base, provision custom, dispatch every prompt, report.

  Implementation-discovered:
  - Need to load config first.
  - Apply flag overrides to config.

ARCHITECTURE INTEGRATION:
  - Calls: internal/engine.Run()
  - Uses: internal/config, internal/output

ERROR HANDLING:
  - Returns error if config load or result-file setup fails.
  - Prompt failures are reported in the summary, never as an error.

IMPLEMENTATION RULES:
  - Setup flags in init().
  - Logic: Load Config -> Override -> Engine.Run -> Summary.

USAGE:
  loadtest run --workers 4 -o ./results

SELF-HEALING INSTRUCTIONS:
  - Check flag names match Config struct fields generally.

RELATED FILES:
  - internal/cli/root.go

MAINTENANCE:
  - Update when adding new CLI overrides.
*/

package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/daryltucker/ollama-loadtest/internal/config"
	"github.com/daryltucker/ollama-loadtest/internal/engine"
	"github.com/daryltucker/ollama-loadtest/internal/output"
)

var (
	hostOverride        string
	outputOverride      string
	promptFile          string
	workersOverride     int
	matchPolicyOverride string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the load test",
	Long: `Executes the load test against the local Ollama server.
The process follows a strict protocol:
1. Provision base: pulls the base model if it is not listed by 'ollama list'.
2. Provision custom: creates the custom model from the recipe file if missing.
3. Dispatch: sends every prompt to the custom model concurrently.
4. Aggregate: reports total time and average latency of successful prompts.

Provisioning failures are logged and the run continues.`,
	Example: `  # Run with defaults (uses loadtest.yaml if present)
  loadtest

  # Cap concurrency and keep CSV/JSONL results
  loadtest run --workers 4 -o ./results

  # Use exact model-name matching instead of substring matching
  loadtest run --match-policy exact

  # One prompt per line from a file
  loadtest run -p ./prompts.txt`,
	RunE: runBenchmark,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&hostOverride, "host", "", "Ollama URL (overrides config)")
	runCmd.Flags().StringVarP(&outputOverride, "output-dir", "o", "", "Output directory for results (CSV/JSONL)")
	runCmd.Flags().StringVarP(&promptFile, "prompt-file", "p", "", "File with one prompt per line (overrides config)")
	runCmd.Flags().IntVarP(&workersOverride, "workers", "w", -1, "Concurrent generation calls (0 = one per prompt)")
	runCmd.Flags().StringVar(&matchPolicyOverride, "match-policy", "", "Model availability match: substring or exact")
}

func applyRunFlags(cfg *config.Config) error {
	if hostOverride != "" {
		cfg.Host = hostOverride
	}
	if outputOverride != "" {
		cfg.OutputDir = outputOverride
	}
	if promptFile != "" {
		data, err := os.ReadFile(promptFile)
		if err != nil {
			return fmt.Errorf("failed to read prompt file: %w", err)
		}
		cfg.Prompts = parsePrompts(string(data))
	}
	if workersOverride >= 0 {
		cfg.Workers = workersOverride
	}
	if matchPolicyOverride != "" {
		cfg.MatchPolicy = matchPolicyOverride
	}
	return cfg.Validate()
}

// parsePrompts splits text into one prompt per non-blank line.
func parsePrompts(text string) []string {
	var prompts []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			prompts = append(prompts, line)
		}
	}
	return prompts
}

func runBenchmark(cmd *cobra.Command, args []string) error {
	cfg, closer, err := loadConfig()
	if err != nil {
		return err
	}
	defer closer.Close()

	if err := applyRunFlags(cfg); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	summary, err := engine.Run(cmd.Context(), cfg, out)
	if err != nil {
		return err
	}

	output.PrintSummary(out, summary)
	return nil
}
