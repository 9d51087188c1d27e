// Package config loads the assistant's YAML configuration file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultSearchSize         = 20
	DefaultConcurrency        = 15
	DefaultRecommendThreshold = 5.0
	DefaultManager            = "npm"
	DefaultTimeout            = 30 * time.Second
	DefaultMaxRetries         = 5
)

// Config is the top-level configuration for the discovery assistant.
type Config struct {
	Registry RegistryConfig `yaml:"registry"`
	Evaluate EvaluateConfig `yaml:"evaluate"`
	Manager  ManagerConfig  `yaml:"manager"`
	Client   ClientConfig   `yaml:"client"`
}

// RegistryConfig holds registry endpoint settings.
type RegistryConfig struct {
	// BaseURL is the registry API root. Empty means the public npm registry.
	BaseURL string `yaml:"base_url"`

	// DownloadsURL is the download-counts API root. Empty means the public
	// npm downloads API.
	DownloadsURL string `yaml:"downloads_url"`

	// SearchSize is the number of results requested per search.
	SearchSize int `yaml:"search_size"`
}

// EvaluateConfig holds evaluator settings.
type EvaluateConfig struct {
	// Concurrency caps how many packages are evaluated at once.
	Concurrency int `yaml:"concurrency"`

	// RecommendThreshold is the minimum composite score a package needs
	// to be recommended.
	RecommendThreshold float64 `yaml:"recommend_threshold"`
}

// ManagerConfig selects the package manager the install workflow drives.
// The manager is always an explicit choice; nothing is inferred from
// lockfiles or manifest fields.
type ManagerConfig struct {
	// Name is the package manager: npm | pnpm.
	Name string `yaml:"name"`

	// Dir is the project directory commands run in. Empty means the
	// current directory.
	Dir string `yaml:"dir"`

	// Workspace optionally targets a workspace within the project.
	Workspace string `yaml:"workspace"`
}

// ClientConfig holds HTTP client settings.
type ClientConfig struct {
	// Timeout bounds each registry request.
	Timeout time.Duration `yaml:"timeout"`

	// MaxRetries caps retry attempts for transient failures.
	MaxRetries int `yaml:"max_retries"`

	// UserAgent overrides the User-Agent header sent to the registry.
	UserAgent string `yaml:"user_agent"`
}

// Load reads and parses the YAML config file at path.
// Missing optional fields are filled with sensible defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// Default returns a Config pre-populated with default values, usable
// without any config file.
func Default() *Config {
	return &Config{
		Registry: RegistryConfig{
			SearchSize: DefaultSearchSize,
		},
		Evaluate: EvaluateConfig{
			Concurrency:        DefaultConcurrency,
			RecommendThreshold: DefaultRecommendThreshold,
		},
		Manager: ManagerConfig{
			Name: DefaultManager,
		},
		Client: ClientConfig{
			Timeout:    DefaultTimeout,
			MaxRetries: DefaultMaxRetries,
		},
	}
}

// validate checks required fields and structural constraints.
func validate(cfg *Config) error {
	if cfg.Registry.SearchSize <= 0 {
		return fmt.Errorf("registry.search_size must be positive")
	}
	if cfg.Evaluate.Concurrency <= 0 {
		return fmt.Errorf("evaluate.concurrency must be positive")
	}
	if cfg.Evaluate.RecommendThreshold < 0 {
		return fmt.Errorf("evaluate.recommend_threshold must not be negative")
	}
	switch cfg.Manager.Name {
	case "npm", "pnpm":
	default:
		return fmt.Errorf("manager.name must be one of npm, pnpm, got %q", cfg.Manager.Name)
	}
	if cfg.Client.Timeout <= 0 {
		return fmt.Errorf("client.timeout must be positive")
	}
	if cfg.Client.MaxRetries < 0 {
		return fmt.Errorf("client.max_retries must not be negative")
	}
	return nil
}
