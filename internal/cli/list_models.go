/*
PURPOSE:
  Defines the 'list-models' subcommand.
  Helps debug connectivity and model discovery.

REQUIREMENTS:
  User-specified:
  - List available models.

  Implementation-discovered:
  - Useful validation step before a full run: shows whether the custom model
    would pass an exact match, not just the substring check.

ARCHITECTURE INTEGRATION:
  - Calls: internal/engine.Client.ListModels() (api.Client.List, /api/tags)

ERROR HANDLING:
  - Returns error if the host is unreachable.

IMPLEMENTATION RULES:
  - Simple output to stdout.

USAGE:
  loadtest list-models --host http://localhost:11434

SELF-HEALING INSTRUCTIONS:
  - None.

RELATED FILES:
  - internal/engine/client.go

MAINTENANCE:
  - None.
*/

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daryltucker/ollama-loadtest/internal/engine"
)

var listModelsHost string

var listModelsCmd = &cobra.Command{
	Use:   "list-models",
	Short: "List models available on the Ollama host",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, closer, err := loadConfig()
		if err != nil {
			return err
		}
		defer closer.Close()

		if listModelsHost != "" {
			cfg.Host = listModelsHost
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Querying %s...\n", cfg.Host)
		client, err := engine.NewClient(cfg)
		if err != nil {
			return err
		}
		models, err := client.ListModels(cmd.Context())
		if err != nil {
			return err
		}
		for _, m := range models {
			marker := ""
			switch m {
			case cfg.BaseModel, cfg.BaseModel + ":latest":
				marker = " (base)"
			case cfg.CustomModel, cfg.CustomModel + ":latest":
				marker = " (custom)"
			}
			fmt.Fprintf(out, "- %s%s\n", m, marker)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(listModelsCmd)
	listModelsCmd.Flags().StringVar(&listModelsHost, "host", "", "Ollama URL (overrides config)")
}
