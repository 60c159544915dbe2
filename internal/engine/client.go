/*
PURPOSE:
  HTTP client for the Ollama generation and discovery APIs.

REQUIREMENTS:
  User-specified:
  - Synchronous generate(model, prompt) -> text.
  - Empty response text counts as a failure.
  - No retries.

  Implementation-discovered:
  - One Client value is built at startup and shared read-only by every worker.
  - Requests go through the official github.com/ollama/ollama/api client; this
    file only adds connection tuning and error classification on top.
  - Errors are classified so the log line says *why* a prompt failed
    (connection, timeout, server error, unreadable reply, empty body).

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine (Runner), internal/cli (list-models)
  - Uses: internal/config

ERROR HANDLING:
  - Every failure is a *ClientError wrapping the cause; use IsEmptyResponse etc.

IMPLEMENTATION RULES:
  - Use api.Client for every call; never build Ollama URLs by hand.
  - Default: no client timeout. request_timeout opts in.

USAGE:
  c, err := engine.NewClient(cfg)
  resp, err := c.Generate(ctx, "my-custom-model", "What is Python?")
  models, err := c.ListModels(ctx)

SELF-HEALING INSTRUCTIONS:
  - If the Ollama API changes, bump github.com/ollama/ollama and re-check classify.

RELATED FILES:
  - internal/config/config.go
  - internal/engine/runner.go

MAINTENANCE:
  - Update for new Ollama API features.
*/

package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/daryltucker/ollama-loadtest/internal/config"
)

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeConnection
	ErrTypeTimeout
	ErrTypeServer
	ErrTypeInvalidResponse
	ErrTypeEmptyResponse
)

func (t ErrorType) String() string {
	switch t {
	case ErrTypeConnection:
		return "connection"
	case ErrTypeTimeout:
		return "timeout"
	case ErrTypeServer:
		return "server"
	case ErrTypeInvalidResponse:
		return "invalid_response"
	case ErrTypeEmptyResponse:
		return "empty_response"
	}
	return "unknown"
}

// ClientError represents an error from the Ollama client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorTypeOf returns the classification of err, or ErrTypeUnknown.
func ErrorTypeOf(err error) ErrorType {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type
	}
	return ErrTypeUnknown
}

// IsEmptyResponse checks if the server answered without any text.
func IsEmptyResponse(err error) bool {
	return ErrorTypeOf(err) == ErrTypeEmptyResponse
}

// GenerateResponse is the part of a generation reply the runner records.
type GenerateResponse struct {
	Model        string
	Response     string
	EvalCount    int
	EvalDuration time.Duration
}

// EvalRate returns generated tokens per second, or 0 if unknown.
func (r GenerateResponse) EvalRate() float64 {
	if r.EvalDuration <= 0 {
		return 0
	}
	return float64(r.EvalCount) / r.EvalDuration.Seconds()
}

// Generator is the generation capability the Runner depends on.
type Generator interface {
	Generate(ctx context.Context, modelName, prompt string) (GenerateResponse, error)
}

// Client handles Ollama interactions. Safe for concurrent use.
type Client struct {
	api       *api.Client
	keepAlive *api.Duration
}

// NewClient creates a Client for cfg.Host.
func NewClient(cfg *config.Config) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.Host, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid host %q: %w", cfg.Host, err)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	// Every worker talks to the same host; keep one idle conn per worker.
	transport.MaxIdleConnsPerHost = max(cfg.Workers, len(cfg.Prompts), 2)

	c := &Client{
		api: api.NewClient(base, &http.Client{
			Transport: transport,
			Timeout:   cfg.RequestTimeout,
		}),
	}

	if cfg.KeepAlive != "" {
		d, err := config.ParseKeepAlive(cfg.KeepAlive)
		if err != nil {
			return nil, err
		}
		c.keepAlive = &api.Duration{Duration: d}
	}
	return c, nil
}

// ListModels returns the model names known to the host (/api/tags).
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	resp, err := c.api.List(ctx)
	if err != nil {
		return nil, classify("failed to list models", err)
	}

	names := make([]string, 0, len(resp.Models))
	for _, m := range resp.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

// Generate runs one non-streaming generation request.
func (c *Client) Generate(ctx context.Context, modelName, prompt string) (GenerateResponse, error) {
	stream := false
	req := &api.GenerateRequest{
		Model:     modelName,
		Prompt:    prompt,
		Stream:    &stream,
		KeepAlive: c.keepAlive,
	}

	var data GenerateResponse
	err := c.api.Generate(ctx, req, func(resp api.GenerateResponse) error {
		data.Model = resp.Model
		data.Response += resp.Response
		data.EvalCount = resp.EvalCount
		data.EvalDuration = resp.EvalDuration
		return nil
	})
	if err != nil {
		return GenerateResponse{}, classify("generate failed", err)
	}

	if data.Response == "" {
		return data, &ClientError{Type: ErrTypeEmptyResponse, Message: "response was not successful: empty text"}
	}
	return data, nil
}

// classify maps an error from api.Client onto an ErrorType.
// Timeouts are checked before anything else: a fired http.Client.Timeout
// is also a *url.Error and mentions "awaiting headers".
func classify(msg string, err error) error {
	var (
		netErr    net.Error
		urlErr    *url.Error
		statusErr api.StatusError
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)

	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return &ClientError{Type: ErrTypeTimeout, Message: msg + " (timed out)", Cause: err}
	case errors.As(err, &urlErr):
		return &ClientError{Type: ErrTypeConnection, Message: msg + " (network/connection error)", Cause: err}
	case errors.As(err, &statusErr):
		return &ClientError{Type: ErrTypeServer, Message: fmt.Sprintf("%s (Ollama server error %d)", msg, statusErr.StatusCode), Cause: err}
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr):
		return &ClientError{Type: ErrTypeInvalidResponse, Message: msg + " (invalid JSON from Ollama)", Cause: err}
	}
	// Anything else is an error message reported by the server itself.
	return &ClientError{Type: ErrTypeServer, Message: msg + " (Ollama API error)", Cause: err}
}
