/*
PURPOSE:
  High-level runner that orchestrates one load test:
  ProvisionBase -> ProvisionCustom -> Dispatch -> Aggregate.

REQUIREMENTS:
  User-specified:
  - Base model provisioned before the custom model; both before dispatch.
  - Every provisioning outcome is logged and the run continues regardless.
  - One generation per prompt, all waited for; failures excluded from the average.
  - Total time covers the whole run, provisioning included.
  - The device in use is reported once both models are provisioned, right before dispatch.

  Implementation-discovered:
  - Dispatch goes through a bounded worker pool (workers / queue_size config);
    the default of one worker per prompt is a full fan-out.
  - Results optionally stream to CSV/JSONL sinks as they complete.

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli
  - Uses: internal/engine (Client, Dispatch), internal/provision, internal/host,
    internal/output, internal/model

ERROR HANDLING:
  - Logs errors but continues (resilience). Runner.Run never fails.
  - Run() only fails on setup problems (output directory, result files).

IMPLEMENTATION RULES:
  - No cancellation or early exit once dispatch starts.
  - The client is passed in explicitly; no package-level client.

USAGE:
  sum, err := engine.Run(ctx, cfg, os.Stdout)

SELF-HEALING INSTRUCTIONS:
  - None.

RELATED FILES:
  - internal/engine/client.go
  - internal/engine/pool.go
  - internal/provision/provision.go

MAINTENANCE:
  - Add new states to the State enum and Runner.Run's switch together.
*/

package engine

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/daryltucker/ollama-loadtest/internal/config"
	"github.com/daryltucker/ollama-loadtest/internal/host"
	"github.com/daryltucker/ollama-loadtest/internal/model"
	"github.com/daryltucker/ollama-loadtest/internal/output"
	"github.com/daryltucker/ollama-loadtest/internal/provision"
)

// State is a step of the run.
type State int

const (
	StateProvisionBase State = iota
	StateProvisionCustom
	StateDispatch
	StateAggregate
	StateDone
)

func (s State) String() string {
	switch s {
	case StateProvisionBase:
		return "provision_base"
	case StateProvisionCustom:
		return "provision_custom"
	case StateDispatch:
		return "dispatch"
	case StateAggregate:
		return "aggregate"
	case StateDone:
		return "done"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Provisioner ensures a model exists locally.
type Provisioner interface {
	Ensure(ctx context.Context, spec model.ModelSpec) model.Outcome
}

// Sink receives every result as soon as it completes.
type Sink interface {
	Write(r model.GenerationResult) error
}

// Runner executes a single load test.
type Runner struct {
	Config      *config.Config
	Provisioner Provisioner
	Generator   Generator
	Sinks       []Sink

	RunID string
	// Host is reported when dispatch starts and its Device lands in the summary.
	Host host.Info
	// Out receives the per-prompt question/answer blocks. Nil discards them.
	Out io.Writer
	// Now defaults to time.Now.
	Now func() time.Time

	// OnState, if set, is called on entry to each state.
	OnState func(State)

	outMu sync.Mutex
}

// BaseSpec is the base model, pulled from the registry when missing.
func BaseSpec(cfg *config.Config) model.ModelSpec {
	return model.ModelSpec{
		ModelIdentity: model.ModelIdentity{Name: cfg.BaseModel, Role: model.RoleBase},
		Strategy:      model.StrategyPull,
	}
}

// CustomSpec is the custom model, built from the recipe file when missing.
func CustomSpec(cfg *config.Config) model.ModelSpec {
	return model.ModelSpec{
		ModelIdentity: model.ModelIdentity{Name: cfg.CustomModel, Role: model.RoleCustom},
		Strategy:      model.StrategyCreate,
		Recipe:        cfg.RecipeFile,
	}
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// Run walks the state machine to completion and returns the summary.
func (r *Runner) Run(ctx context.Context) model.RunSummary {
	start := r.now()

	var (
		outcomes []model.Outcome
		results  []model.GenerationResult
		summary  model.RunSummary
	)

	for state := StateProvisionBase; state != StateDone; state++ {
		if r.OnState != nil {
			r.OnState(state)
		}
		output.Logger.Debug("Entering state", "state", state)

		switch state {
		case StateProvisionBase:
			outcomes = append(outcomes, r.Provisioner.Ensure(ctx, BaseSpec(r.Config)))
		case StateProvisionCustom:
			outcomes = append(outcomes, r.Provisioner.Ensure(ctx, CustomSpec(r.Config)))
		case StateDispatch:
			r.reportDevice()
			results = r.dispatch(ctx)
		case StateAggregate:
			summary = model.Summarize(results, r.now().Sub(start))
		}
	}

	summary.RunID = r.RunID
	summary.Device = r.Host.Device
	summary.Provisioning = outcomes

	output.Logger.Info("Run complete",
		"dispatched", summary.Dispatched,
		"successful", summary.Successful,
		"failed", summary.Failed,
		"total", summary.TotalElapsed,
		"average", summary.AverageLatency,
	)
	return summary
}

func (r *Runner) reportDevice() {
	if r.Host.Device == "" {
		return
	}
	output.Logger.Info("Using device", "host", r.Host.String())
	if r.Out != nil {
		r.outMu.Lock()
		fmt.Fprintf(r.Out, "Using device: %s\n\n", r.Host.Device)
		r.outMu.Unlock()
	}
}

func (r *Runner) dispatch(ctx context.Context) []model.GenerationResult {
	prompts := make([]model.Prompt, len(r.Config.Prompts))
	for i, p := range r.Config.Prompts {
		prompts[i] = model.Prompt(p)
	}

	output.Logger.Info("Dispatching prompts",
		"model", r.Config.CustomModel,
		"prompts", len(prompts),
		"workers", r.Config.Workers,
		"queue_size", r.Config.QueueSize,
	)

	return Dispatch(ctx, prompts, r.Config.Workers, r.Config.QueueSize, r.generate)
}

func (r *Runner) generate(ctx context.Context, i int, prompt model.Prompt) model.GenerationResult {
	modelName := r.Config.CustomModel
	res := model.GenerationResult{
		Index:     i,
		Prompt:    prompt,
		Model:     modelName,
		Timestamp: r.now(),
	}

	start := r.now()
	resp, err := r.Generator.Generate(ctx, modelName, string(prompt))
	res.Latency = r.now().Sub(start)

	switch {
	case IsEmptyResponse(err):
		res.Error = err.Error()
		output.Logger.Warn("Model returned no text",
			"index", i,
			"prompt", string(prompt),
			"latency", res.Latency,
		)
	case err != nil:
		res.Error = err.Error()
		output.Logger.Error("Error generating response",
			"index", i,
			"prompt", string(prompt),
			"kind", ErrorTypeOf(err),
			"error", err,
		)
	default:
		res.Success = true
		res.Response = resp.Response
		res.EvalCount = resp.EvalCount
		output.Logger.Info("Response received",
			"index", i,
			"latency", res.Latency,
			"tokens", resp.EvalCount,
			"tok_per_s", fmt.Sprintf("%.1f", resp.EvalRate()),
		)
	}

	for _, s := range r.Sinks {
		if err := s.Write(res); err != nil {
			output.Logger.Error("Failed to write result", "index", i, "error", err)
		}
	}

	if r.Out != nil {
		r.outMu.Lock()
		output.PrintResult(r.Out, res)
		r.outMu.Unlock()
	}

	return res
}

// Run builds the client, provisioner and result files from cfg and executes
// the full load test. Only setup failures are returned as errors.
func Run(ctx context.Context, cfg *config.Config, out io.Writer) (model.RunSummary, error) {
	runID := uuid.NewString()

	var sinks []Sink
	if cfg.OutputDir != "" {
		if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
			return model.RunSummary{}, fmt.Errorf("failed to create output directory %s: %w", cfg.OutputDir, err)
		}

		csvPath := filepath.Join(cfg.OutputDir, "results.csv")
		csvWriter, err := output.NewCSVWriter(csvPath, runID)
		if err != nil {
			return model.RunSummary{}, fmt.Errorf("failed to init CSV writer at %s: %w", csvPath, err)
		}
		defer csvWriter.Close()

		jsonPath := filepath.Join(cfg.OutputDir, "results.jsonl")
		jsonWriter, err := output.NewJSONWriter(jsonPath, runID)
		if err != nil {
			return model.RunSummary{}, fmt.Errorf("failed to init JSON writer at %s: %w", jsonPath, err)
		}
		defer jsonWriter.Close()

		sinks = append(sinks, csvWriter, jsonWriter)
	}

	client, err := NewClient(cfg)
	if err != nil {
		return model.RunSummary{}, err
	}

	prov := provision.New(provision.ExecCommandRunner{}, cfg.OllamaBin, cfg.MatchPolicy)
	output.Logger.Info("Starting load test", "run_id", runID, "host", cfg.Host, "match_policy", prov.Policy())

	r := &Runner{
		Config:      cfg,
		Provisioner: prov,
		Generator:   client,
		Sinks:       sinks,
		RunID:       runID,
		Host:        host.Detect(),
		Out:         out,
	}
	return r.Run(ctx), nil
}
