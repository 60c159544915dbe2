package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "llama3.2:1b", cfg.BaseModel)
	assert.Equal(t, "my-custom-model", cfg.CustomModel)
	assert.Equal(t, "Modelfile", cfg.RecipeFile)
	assert.Equal(t, MatchSubstring, cfg.MatchPolicy)
	assert.Len(t, cfg.Prompts, 10)
	assert.Zero(t, cfg.Workers)
	assert.Zero(t, cfg.RequestTimeout)
	assert.NoError(t, cfg.Validate())

	// Prompts must be a copy, not the package-level slice.
	cfg.Prompts[0] = "changed"
	assert.Equal(t, "What is Python?", DefaultPrompts[0])
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "loadtest.yaml", `
host: http://gpu-box:11434
custom_model: bench-model
match_policy: exact
workers: 4
queue_size: 8
request_timeout: 90s
prompts:
  - "a"
  - "b"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://gpu-box:11434", cfg.Host)
	assert.Equal(t, "bench-model", cfg.CustomModel)
	assert.Equal(t, "llama3.2:1b", cfg.BaseModel, "unset fields keep defaults")
	assert.Equal(t, MatchExact, cfg.MatchPolicy)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 8, cfg.QueueSize)
	assert.Equal(t, 90*time.Second, cfg.RequestTimeout)
	assert.Equal(t, []string{"a", "b"}, cfg.Prompts)
}

func TestLoad_TOML(t *testing.T) {
	path := writeFile(t, "loadtest.toml", `
base_model = "qwen2.5:0.5b"
workers = 2
request_timeout = "15s"
prompts = ["x"]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "qwen2.5:0.5b", cfg.BaseModel)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.Equal(t, []string{"x"}, cfg.Prompts)
}

func TestLoad_SchemaRejectsUnknownPolicy(t *testing.T) {
	path := writeFile(t, "loadtest.yaml", "match_policy: fuzzy\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match schema")
}

func TestLoad_SchemaRejectsUnknownKey(t *testing.T) {
	path := writeFile(t, "loadtest.yaml", "urls: [http://a]\n")

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_SchemaRejectsNegativeWorkers(t *testing.T) {
	path := writeFile(t, "loadtest.yaml", "workers: -1\n")

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_ExampleConfigLoads(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "loadtest.example.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_BareIntegerTimeoutRejectedInBothFormats(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"loadtest.yaml", "request_timeout: 0\n"},
		{"loadtest.toml", "request_timeout = 0\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tc.name, tc.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "does not match schema")
		})
	}
}

func TestLoad_ZeroTimeoutString(t *testing.T) {
	cfg, err := Load(writeFile(t, "loadtest.yaml", "request_timeout: \"0s\"\n"))
	require.NoError(t, err)
	assert.Zero(t, cfg.RequestTimeout)
}

func TestParseKeepAlive(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"5m", 5 * time.Minute, false},
		{"300", 300 * time.Second, false},
		{"-1", -time.Second, false},
		{"forever", 0, true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseKeepAlive(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestValidate_RejectsBadKeepAlive(t *testing.T) {
	cfg := DefaultConfig()
	cfg.KeepAlive = "soon"
	assert.ErrorContains(t, cfg.Validate(), "keep_alive")
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeFile(t, "loadtest.yaml", "host: [unterminated\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse")
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_NoDefaultFileFallsBackToDefaults(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_EmptyFileKeepsDefaults(t *testing.T) {
	path := writeFile(t, "loadtest.yaml", "")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvHost:           "http://10.0.0.5:11434",
		EnvCustomModel:    "other-model",
		EnvWorkers:        "3",
		EnvRequestTimeout: "2m",
		EnvMatchPolicy:    MatchExact,
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := DefaultConfig()
	require.NoError(t, ApplyEnv(cfg, lookup))

	assert.Equal(t, "http://10.0.0.5:11434", cfg.Host)
	assert.Equal(t, "other-model", cfg.CustomModel)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, 2*time.Minute, cfg.RequestTimeout)
	assert.Equal(t, MatchExact, cfg.MatchPolicy)
	assert.Equal(t, "llama3.2:1b", cfg.BaseModel)
}

func TestApplyEnv_BadValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"workers not a number", EnvWorkers, "many"},
		{"timeout not a duration", EnvRequestTimeout, "soon"},
		{"bad policy", EnvMatchPolicy, "regex"},
		{"empty model", EnvBaseModel, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			lookup := func(k string) (string, bool) {
				if k == tc.key {
					return tc.val, true
				}
				return "", false
			}
			assert.Error(t, ApplyEnv(DefaultConfig(), lookup))
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), ".env")), "missing file is ignored")

	path := writeFile(t, ".env", "LOADTEST_TEST_DOTENV=from-file\n")
	t.Cleanup(func() { _ = os.Unsetenv("LOADTEST_TEST_DOTENV") })

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-file", os.Getenv("LOADTEST_TEST_DOTENV"))
}
