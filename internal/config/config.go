// Package config manages the user-level configuration file at
// ~/.promptforge/config.yaml: provider selection, credentials, model list,
// and default call parameters.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Defaults holds the user-level default call parameters. Workspace and
// chain settings may override them (narrowest scope wins).
type Defaults struct {
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// Preset describes a known provider endpoint.
type Preset struct {
	BaseURL        string   `yaml:"base_url"`
	APIKeyRequired bool     `yaml:"api_key_required"`
	DefaultModels  []string `yaml:"default_models"`
}

// Config is the user-level configuration.
type Config struct {
	Provider string            `yaml:"provider"`
	APIKey   string            `yaml:"api_key"`
	BaseURL  string            `yaml:"base_url"`
	Models   []string          `yaml:"models"`
	Defaults Defaults          `yaml:"defaults"`
	Presets  map[string]Preset `yaml:"presets,omitempty"`
}

// Dir returns the user config directory (~/.promptforge).
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".promptforge"), nil
}

// Path returns the user config file path.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the user config, falling back to defaults when the file does
// not exist yet.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath reads a config file from an explicit location.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Save writes the config to the default location, creating the directory if
// needed.
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to an explicit location.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// DefaultConfig returns the built-in configuration with the known provider
// presets.
func DefaultConfig() *Config {
	return &Config{
		Provider: "openai",
		Models:   []string{"gpt-4o", "gpt-4o-mini", "gpt-3.5-turbo"},
		Defaults: Defaults{
			Model:       "gpt-4o",
			Temperature: 0.7,
			MaxTokens:   2000,
		},
		Presets: map[string]Preset{
			"openai": {
				APIKeyRequired: true,
				DefaultModels:  []string{"gpt-4o", "gpt-4o-mini", "gpt-3.5-turbo"},
			},
			"anthropic": {
				APIKeyRequired: true,
				DefaultModels:  []string{"claude-sonnet-4-20250514", "claude-3-5-haiku-20241022"},
			},
			"ollama": {
				BaseURL:       "http://localhost:11434/v1",
				DefaultModels: []string{"llama3.2", "mistral", "codellama"},
			},
			"lm-studio": {
				BaseURL: "http://localhost:1234/v1",
			},
			"openrouter": {
				BaseURL:        "https://openrouter.ai/api/v1",
				APIKeyRequired: true,
				DefaultModels:  []string{"anthropic/claude-3.5-sonnet", "openai/gpt-4o"},
			},
		},
	}
}

// EffectiveBaseURL returns the explicit base URL if set, otherwise the
// preset's URL for the configured provider.
func (c *Config) EffectiveBaseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	if preset, ok := c.Presets[c.Provider]; ok {
		return preset.BaseURL
	}
	return ""
}

// Validate returns a list of problems with the configuration. An empty list
// means the config is usable.
func (c *Config) Validate() []string {
	var problems []string

	if c.Provider == "" {
		problems = append(problems, "missing provider")
	}

	if preset, ok := c.Presets[c.Provider]; ok {
		if preset.APIKeyRequired && c.APIKey == "" && c.BaseURL == "" {
			problems = append(problems, fmt.Sprintf("provider %q requires an API key or a custom base URL", c.Provider))
		}
	}

	if len(c.Models) == 0 {
		problems = append(problems, "no models configured")
	}

	return problems
}
