package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daryltucker/ollama-loadtest/internal/config"
	"github.com/daryltucker/ollama-loadtest/internal/output"
)

// writeConfig points the CLI at srv and at an ollama binary that does not exist.
func writeConfig(t *testing.T, srvURL string, prompts ...string) string {
	t.Helper()
	dir := t.TempDir()

	var b strings.Builder
	fmt.Fprintf(&b, "host: %s\n", srvURL)
	fmt.Fprintf(&b, "ollama_bin: %s\n", filepath.Join(dir, "missing-ollama"))
	b.WriteString("log_level: error\n")
	b.WriteString("prompts:\n")
	for _, p := range prompts {
		fmt.Fprintf(&b, "  - %q\n", p)
	}

	path := filepath.Join(dir, "loadtest.yaml")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	orig := output.Logger
	t.Cleanup(func() {
		output.SetLogger(orig)
		cfgFile = ""
		hostOverride, outputOverride, promptFile, matchPolicyOverride = "", "", "", ""
		workersOverride = -1
		listModelsHost = ""
	})

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRootRunsBenchmarkAndSucceedsDespiteFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Prompt string `json:"prompt"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Prompt == "b" {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = io.WriteString(w, `{"error":"model crashed"}`)
			return
		}
		_, _ = io.WriteString(w, `{"response":"hello"}`)
	}))
	t.Cleanup(srv.Close)

	out, err := execute(t, "--config", writeConfig(t, srv.URL, "a", "b"))
	require.NoError(t, err)

	assert.Contains(t, out, "Question: a")
	assert.Contains(t, out, "Total time for 2 questions")
	assert.Contains(t, out, "Succeeded: 1  Failed: 1")
	assert.Contains(t, out, "model crashed")
	require.Contains(t, out, "Using device: ")
	assert.Less(t, strings.Index(out, "Using device: "), strings.Index(out, "Question: a"))
}

func TestRunWithPromptFileAndWorkers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"response":"ok"}`)
	}))
	t.Cleanup(srv.Close)

	promptPath := filepath.Join(t.TempDir(), "prompts.txt")
	require.NoError(t, os.WriteFile(promptPath, []byte("one\n\n two \nthree\n"), 0644))

	out, err := execute(t, "run", "--config", writeConfig(t, srv.URL, "ignored"), "-p", promptPath, "-w", "2")
	require.NoError(t, err)

	assert.Contains(t, out, "Total time for 3 questions")
	assert.Contains(t, out, "Question: two")
	assert.NotContains(t, out, "Question: ignored")
}

func TestRunRejectsBadMatchPolicy(t *testing.T) {
	_, err := execute(t, "run", "--config", writeConfig(t, "http://127.0.0.1:1", "a"), "--match-policy", "fuzzy")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "match_policy")
}

func TestRootFailsOnInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loadtest.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: lots\n"), 0644))

	_, err := execute(t, "--config", path)
	assert.Error(t, err)
}

func TestListModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"models":[{"name":"llama3.2:1b"},{"name":"my-custom-model:latest"},{"name":"phi3:mini"}]}`)
	}))
	t.Cleanup(srv.Close)

	out, err := execute(t, "list-models", "--config", writeConfig(t, "http://127.0.0.1:1", "a"), "--host", srv.URL)
	require.NoError(t, err)

	assert.Contains(t, out, "- llama3.2:1b (base)")
	assert.Contains(t, out, "- my-custom-model:latest (custom)")
	assert.Contains(t, out, "- phi3:mini\n")
}

func TestProvisionReportsFailuresWithoutErroring(t *testing.T) {
	out, err := execute(t, "provision", "--config", writeConfig(t, "http://127.0.0.1:1", "a"))
	require.NoError(t, err)

	assert.Contains(t, out, "base model llama3.2:1b: pull (failed:")
	assert.Contains(t, out, "custom model my-custom-model: create (failed:")
}

func TestDevice(t *testing.T) {
	out, err := execute(t, "device")
	require.NoError(t, err)
	assert.Contains(t, out, "Using device: ")
}

func TestParsePrompts(t *testing.T) {
	assert.Equal(t, []string{"a", "b c"}, parsePrompts("a\n\n  b c  \r\n"))
	assert.Nil(t, parsePrompts("\n \n"))
}

func TestApplyRunFlags(t *testing.T) {
	t.Cleanup(func() {
		hostOverride, outputOverride, matchPolicyOverride = "", "", ""
		workersOverride = -1
	})

	hostOverride = "http://other:11434"
	outputOverride = "out"
	workersOverride = 0
	matchPolicyOverride = config.MatchExact

	cfg := config.DefaultConfig()
	cfg.Workers = 5
	require.NoError(t, applyRunFlags(cfg))

	assert.Equal(t, "http://other:11434", cfg.Host)
	assert.Equal(t, "out", cfg.OutputDir)
	assert.Equal(t, 0, cfg.Workers, "explicit 0 restores full fan-out")
	assert.Equal(t, config.MatchExact, cfg.MatchPolicy)
}
