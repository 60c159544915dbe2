/*
PURPOSE:
  Defines the 'device' subcommand.
  Shows which device the run will report and basic host facts.

REQUIREMENTS:
  Implementation-discovered:
  - Quick check of a benchmark box without running the load test.

ARCHITECTURE INTEGRATION:
  - Calls: internal/host.Detect()

ERROR HANDLING:
  - None. Detection degrades to zero values.

IMPLEMENTATION RULES:
  - Simple output to stdout.

USAGE:
  loadtest device

SELF-HEALING INSTRUCTIONS:
  - None.

RELATED FILES:
  - internal/host/host.go

MAINTENANCE:
  - None.
*/

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daryltucker/ollama-loadtest/internal/host"
)

var deviceCmd = &cobra.Command{
	Use:   "device",
	Short: "Show the acceleration device and host facts",
	RunE: func(cmd *cobra.Command, args []string) error {
		info := host.Detect()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Using device: %s\n", info.Device)
		fmt.Fprintf(out, "Host: %s (%s/%s)\n", info.Hostname, info.Platform, info.Arch)
		fmt.Fprintf(out, "CPUs: %d\n", info.CPUCount)
		fmt.Fprintf(out, "RAM: %.1f GiB\n", info.RAMGiB)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deviceCmd)
}
