/*
PURPOSE:
  Defines the core data structures used throughout the load tester.
  These models represent prompts, model identities, per-request results,
  provisioning outcomes and the final run summary.

REQUIREMENTS:
  User-specified:
  - Record latency and success for every dispatched prompt.
  - Distinguish the base model from the derived custom model.
  - Summarise total elapsed time and average latency of successful requests.

  Implementation-discovered:
  - Provisioning steps need a result type so the runner can "continue regardless"
    explicitly instead of swallowing errors.
  - Need JSON tags for the JSONL writer.

ARCHITECTURE INTEGRATION:
  - Used by: internal/engine, internal/provision, internal/output
  - Shared across boundaries.

ERROR HANDLING:
  - None (pure data structs). Errors are carried as values, never thrown.

IMPLEMENTATION RULES:
  - Keep structs simple and public.
  - Use time.Time and time.Duration for high precision.
  - Results are produced once and never mutated afterwards.

USAGE:
  res := model.GenerationResult{...}
  sum := model.Summarize(results, elapsed)

SELF-HEALING INSTRUCTIONS:
  - If new metrics are needed, add field and update CSV/JSON writers.

RELATED FILES:
  - internal/model/summary.go
  - internal/output/csv.go
  - internal/output/json.go

MAINTENANCE:
  - Update when adding new metrics to capture.
*/

package model

import (
	"time"
)

// Prompt is a single benchmark question.
type Prompt string

// Role distinguishes the two models a run depends on.
type Role string

const (
	RoleBase   Role = "base"
	RoleCustom Role = "custom"
)

// ModelIdentity names a model and the role it plays in a run.
type ModelIdentity struct {
	Name string `json:"name"`
	Role Role   `json:"role"`
}

// Strategy is how a missing model gets acquired.
type Strategy string

const (
	// StrategyPull fetches the model from the remote registry.
	StrategyPull Strategy = "pull"
	// StrategyCreate builds the model from a local recipe file.
	StrategyCreate Strategy = "create"
)

// ModelSpec describes a model that must be present before dispatch.
type ModelSpec struct {
	ModelIdentity
	Strategy Strategy `json:"strategy"`
	// Recipe is the recipe file path, only used by StrategyCreate.
	Recipe string `json:"recipe,omitempty"`
}

// Action records what provisioning actually did.
type Action string

const (
	ActionNone   Action = "none"
	ActionPull   Action = "pull"
	ActionCreate Action = "create"
)

// Outcome is the result of one provisioning step.
// A failed Outcome is logged and the run continues.
type Outcome struct {
	Model  ModelIdentity `json:"model"`
	Action Action        `json:"action"`
	Err    error         `json:"-"`
	// Detail holds diagnostic text (stderr of the failed command).
	Detail string `json:"detail,omitempty"`
}

// OK reports whether the step succeeded.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// GenerationResult represents the outcome of a single generation request.
type GenerationResult struct {
	Index     int           `json:"index"`
	Prompt    Prompt        `json:"prompt"`
	Model     string        `json:"model"`
	Timestamp time.Time     `json:"timestamp"`
	Latency   time.Duration `json:"latency"`
	Success   bool          `json:"success"`
	EvalCount int           `json:"eval_count"`
	Response  string        `json:"response,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// RunSummary is computed once at the end of a run.
type RunSummary struct {
	RunID          string             `json:"run_id"`
	Device         string             `json:"device"`
	Provisioning   []Outcome          `json:"provisioning"`
	Results        []GenerationResult `json:"results"`
	Dispatched     int                `json:"dispatched"`
	Successful     int                `json:"successful"`
	Failed         int                `json:"failed"`
	TotalLatency   time.Duration      `json:"total_latency"`
	AverageLatency time.Duration      `json:"average_latency"`
	TotalElapsed   time.Duration      `json:"total_elapsed"`
}
