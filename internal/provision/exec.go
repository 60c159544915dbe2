/*
PURPOSE:
  Runs external commands (the ollama CLI) and captures their output.

REQUIREMENTS:
  Implementation-discovered:
  - Provisioning logic must be testable without an ollama install.

ARCHITECTURE INTEGRATION:
  - Used by: internal/provision (Provisioner); built in internal/engine (Run) and internal/cli (provision)

ERROR HANDLING:
  - Returns the process error; stderr is returned separately for diagnostics.

IMPLEMENTATION RULES:
  - No shell; arguments are passed as-is.

USAGE:
  stdout, stderr, err := provision.ExecCommandRunner{}.Run(ctx, "ollama", "list")

SELF-HEALING INSTRUCTIONS:
  - None.

RELATED FILES:
  - internal/provision/provision.go

MAINTENANCE:
  - None.
*/

package provision

import (
	"bytes"
	"context"
	"os/exec"
)

// CommandRunner runs an external command to completion.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// ExecCommandRunner uses os/exec.
type ExecCommandRunner struct{}

// Run runs a command and captures both output streams.
// A non-zero exit is reported as an *exec.ExitError.
func (ExecCommandRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	err := cmd.Run()
	return outBuf.Bytes(), errBuf.Bytes(), err
}
