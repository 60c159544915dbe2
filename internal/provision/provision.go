/*
PURPOSE:
  Makes sure the base and custom models exist on the local Ollama install
  before any generation request is sent.

REQUIREMENTS:
  User-specified:
  - Check availability via `ollama list`.
  - Missing base model: `ollama pull <name>`.
  - Missing custom model: `ollama create <name> -f <recipe>`.
  - Failures are logged and the run continues. No retries.

  Implementation-discovered:
  - The availability check is a plain substring search over the listing text,
    which reports "my-custom-model" present when only "my-custom-model-v2" exists.
    Kept as the default policy; "exact" compares the NAME column instead.
  - A failing `ollama list` counts as "not available" so acquisition is still tried.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine (Runner), internal/cli (provision command)
  - Uses: internal/model, internal/config (match policy names), internal/output

ERROR HANDLING:
  - Ensure never returns an error; it returns a model.Outcome carrying one.
  - IsAvailable returns an error for an empty name or a failed listing.

IMPLEMENTATION RULES:
  - All process execution goes through CommandRunner (mockable).

USAGE:
  p := provision.New(provision.ExecCommandRunner{}, "ollama", config.MatchSubstring)
  outcome := p.Ensure(ctx, spec)

SELF-HEALING INSTRUCTIONS:
  - If `ollama list` output format changes, update listedNames.

RELATED FILES:
  - internal/provision/exec.go
  - internal/engine/runner.go

MAINTENANCE:
  - None.
*/

package provision

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/daryltucker/ollama-loadtest/internal/config"
	"github.com/daryltucker/ollama-loadtest/internal/model"
	"github.com/daryltucker/ollama-loadtest/internal/output"
)

// ErrEmptyName is returned when a model name is blank.
var ErrEmptyName = errors.New("model name must not be empty")

// Provisioner checks for and acquires models through the ollama CLI.
type Provisioner struct {
	runner CommandRunner
	bin    string
	policy string
}

// New creates a Provisioner. An unknown policy falls back to substring matching.
func New(runner CommandRunner, bin, policy string) *Provisioner {
	if policy != config.MatchExact {
		policy = config.MatchSubstring
	}
	return &Provisioner{runner: runner, bin: bin, policy: policy}
}

// Policy returns the match policy in effect.
func (p *Provisioner) Policy() string {
	return p.policy
}

// IsAvailable reports whether name shows up in `ollama list`.
func (p *Provisioner) IsAvailable(ctx context.Context, name string) (bool, error) {
	if strings.TrimSpace(name) == "" {
		return false, ErrEmptyName
	}

	stdout, stderr, err := p.runner.Run(ctx, p.bin, "list")
	if err != nil {
		return false, commandError("list", err, stderr)
	}

	return Match(string(stdout), name, p.policy), nil
}

// Ensure acquires spec's model if IsAvailable says it is missing.
func (p *Provisioner) Ensure(ctx context.Context, spec model.ModelSpec) model.Outcome {
	outcome := model.Outcome{Model: spec.ModelIdentity, Action: model.ActionNone}

	available, err := p.IsAvailable(ctx, spec.Name)
	if errors.Is(err, ErrEmptyName) {
		outcome.Err = err
		output.Logger.Error("Cannot provision model", "role", spec.Role, "error", err)
		return outcome
	}
	if err != nil {
		output.Logger.Warn("Model listing failed, assuming model is missing", "model", spec.Name, "error", err)
	}
	if available {
		output.Logger.Info("Model is available", "model", spec.Name, "role", spec.Role, "match", p.policy)
		return outcome
	}

	output.Logger.Info("Model not found locally", "model", spec.Name, "role", spec.Role)

	var args []string
	switch spec.Strategy {
	case model.StrategyCreate:
		outcome.Action = model.ActionCreate
		args = []string{"create", spec.Name, "-f", spec.Recipe}
		output.Logger.Info("Creating model from recipe...", "model", spec.Name, "recipe", spec.Recipe)
	default:
		outcome.Action = model.ActionPull
		args = []string{"pull", spec.Name}
		output.Logger.Info("Pulling model...", "model", spec.Name)
	}

	_, stderr, err := p.runner.Run(ctx, p.bin, args...)
	if err != nil {
		outcome.Err = commandError(args[0], err, stderr)
		outcome.Detail = strings.TrimSpace(string(stderr))
		output.Logger.Error("Provisioning failed", "model", spec.Name, "action", outcome.Action, "error", outcome.Err)
		return outcome
	}

	output.Logger.Info("Provisioning succeeded", "model", spec.Name, "action", outcome.Action)
	return outcome
}

func commandError(sub string, err error, stderr []byte) error {
	msg := strings.TrimSpace(string(stderr))
	if msg == "" {
		return fmt.Errorf("ollama %s: %w", sub, err)
	}
	return fmt.Errorf("ollama %s: %w: %s", sub, err, msg)
}

// Match applies policy to an `ollama list` listing.
func Match(listing, name, policy string) bool {
	if policy != config.MatchExact {
		return strings.Contains(listing, name)
	}

	want := name
	if !strings.Contains(name, ":") {
		want = name + ":latest"
	}
	for _, listed := range listedNames(listing) {
		if listed == name || listed == want {
			return true
		}
	}
	return false
}

// listedNames extracts the NAME column, skipping the header row.
func listedNames(listing string) []string {
	var names []string
	sc := bufio.NewScanner(strings.NewReader(listing))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || fields[0] == "NAME" {
			continue
		}
		names = append(names, fields[0])
	}
	return names
}
