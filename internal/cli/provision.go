/*
PURPOSE:
  Defines the 'provision' subcommand.
  Only makes sure the base and custom models exist; sends no prompts.

REQUIREMENTS:
  Implementation-discovered:
  - Lets a slow first pull happen before the timed run.

ARCHITECTURE INTEGRATION:
  - Calls: internal/provision.Provisioner.Ensure()

ERROR HANDLING:
  - Outcomes are printed; a failed pull or create does not change the exit code.

IMPLEMENTATION RULES:
  - Base first: the custom recipe builds FROM it.

USAGE:
  loadtest provision --config loadtest.yaml

SELF-HEALING INSTRUCTIONS:
  - None.

RELATED FILES:
  - internal/provision/provision.go

MAINTENANCE:
  - None.
*/

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daryltucker/ollama-loadtest/internal/engine"
	"github.com/daryltucker/ollama-loadtest/internal/model"
	"github.com/daryltucker/ollama-loadtest/internal/provision"
)

var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Only make sure the base and custom models exist",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, closer, err := loadConfig()
		if err != nil {
			return err
		}
		defer closer.Close()

		p := provision.New(provision.ExecCommandRunner{}, cfg.OllamaBin, cfg.MatchPolicy)
		out := cmd.OutOrStdout()

		// Base first: the custom recipe builds FROM it.
		for _, spec := range []model.ModelSpec{engine.BaseSpec(cfg), engine.CustomSpec(cfg)} {
			o := p.Ensure(cmd.Context(), spec)
			status := "ok"
			if !o.OK() {
				status = "failed: " + o.Err.Error()
			}
			fmt.Fprintf(out, "%s model %s: %s (%s)\n", spec.Role, spec.Name, o.Action, status)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(provisionCmd)
}
