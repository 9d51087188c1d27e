package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Valid(t *testing.T) {
	yaml := `
registry:
  base_url: "https://registry.example.com"
  downloads_url: "https://downloads.example.com"
  search_size: 10
evaluate:
  concurrency: 4
  recommend_threshold: 6.5
manager:
  name: pnpm
  dir: /srv/app
  workspace: packages/web
client:
  timeout: 10s
  max_retries: 2
  user_agent: my-tool
`
	cfg := loadFromString(t, yaml)

	if cfg.Registry.BaseURL != "https://registry.example.com" {
		t.Errorf("base_url: got %q", cfg.Registry.BaseURL)
	}
	if cfg.Registry.SearchSize != 10 {
		t.Errorf("search_size: got %d", cfg.Registry.SearchSize)
	}
	if cfg.Evaluate.Concurrency != 4 {
		t.Errorf("concurrency: got %d", cfg.Evaluate.Concurrency)
	}
	if cfg.Evaluate.RecommendThreshold != 6.5 {
		t.Errorf("recommend_threshold: got %v", cfg.Evaluate.RecommendThreshold)
	}
	if cfg.Manager.Name != "pnpm" {
		t.Errorf("manager name: got %q", cfg.Manager.Name)
	}
	if cfg.Manager.Workspace != "packages/web" {
		t.Errorf("workspace: got %q", cfg.Manager.Workspace)
	}
	if cfg.Client.Timeout != 10*time.Second {
		t.Errorf("timeout: got %v", cfg.Client.Timeout)
	}
	if cfg.Client.MaxRetries != 2 {
		t.Errorf("max_retries: got %d", cfg.Client.MaxRetries)
	}
	if cfg.Client.UserAgent != "my-tool" {
		t.Errorf("user_agent: got %q", cfg.Client.UserAgent)
	}
}

func TestLoad_Defaults(t *testing.T) {
	yaml := `
manager:
  name: npm
`
	cfg := loadFromString(t, yaml)

	if cfg.Registry.SearchSize != DefaultSearchSize {
		t.Errorf("default search_size: got %d, want %d", cfg.Registry.SearchSize, DefaultSearchSize)
	}
	if cfg.Registry.BaseURL != "" {
		t.Errorf("default base_url: got %q, want empty", cfg.Registry.BaseURL)
	}
	if cfg.Evaluate.Concurrency != DefaultConcurrency {
		t.Errorf("default concurrency: got %d, want %d", cfg.Evaluate.Concurrency, DefaultConcurrency)
	}
	if cfg.Evaluate.RecommendThreshold != DefaultRecommendThreshold {
		t.Errorf("default recommend_threshold: got %v, want %v", cfg.Evaluate.RecommendThreshold, DefaultRecommendThreshold)
	}
	if cfg.Client.Timeout != DefaultTimeout {
		t.Errorf("default timeout: got %v, want %v", cfg.Client.Timeout, DefaultTimeout)
	}
	if cfg.Client.MaxRetries != DefaultMaxRetries {
		t.Errorf("default max_retries: got %d, want %d", cfg.Client.MaxRetries, DefaultMaxRetries)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Manager.Name != "npm" {
		t.Errorf("default manager: got %q, want npm", cfg.Manager.Name)
	}
	if err := validate(cfg); err != nil {
		t.Errorf("Default() should validate, got %v", err)
	}
}

func TestLoad_UnknownManager(t *testing.T) {
	yaml := `
manager:
  name: yarn
`
	_, err := loadStringErr(t, yaml)
	if err == nil {
		t.Fatal("expected error for unknown manager, got nil")
	}
}

func TestLoad_BadBounds(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"zero search size", "registry:\n  search_size: 0\n"},
		{"negative concurrency", "evaluate:\n  concurrency: -1\n"},
		{"negative threshold", "evaluate:\n  recommend_threshold: -1\n"},
		{"zero timeout", "client:\n  timeout: 0s\n"},
		{"negative retries", "client:\n  max_retries: -1\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := loadStringErr(t, tc.yaml)
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := loadStringErr(t, "registry: [not a map")
	if err == nil {
		t.Fatal("expected error for invalid yaml, got nil")
	}
}

// loadFromString writes yaml to a temp file and calls Load, failing on error.
func loadFromString(t *testing.T, content string) *Config {
	t.Helper()
	cfg, err := loadStringErr(t, content)
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	return cfg
}

// loadStringErr writes yaml to a temp file and calls Load, returning any error.
func loadStringErr(t *testing.T, content string) (*Config, error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return Load(path)
}
