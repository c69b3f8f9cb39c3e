package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromPathMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Provider != "openai" {
		t.Fatalf("expected openai default provider, got %q", cfg.Provider)
	}
	if cfg.Defaults.MaxTokens != 2000 {
		t.Fatalf("unexpected default max_tokens: %d", cfg.Defaults.MaxTokens)
	}
}

func TestLoadFromPathReadsFields(t *testing.T) {
	tmp := t.TempDir()
	cfgPath := filepath.Join(tmp, "config.yaml")
	content := `provider: ollama
base_url: http://localhost:11434/v1
models:
  - llama3.2
defaults:
  model: llama3.2
  temperature: 0.2
  max_tokens: 512
`
	if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFromPath(cfgPath)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Provider != "ollama" {
		t.Fatalf("unexpected provider: %q", cfg.Provider)
	}
	if cfg.Defaults.Temperature != 0.2 {
		t.Fatalf("unexpected temperature: %v", cfg.Defaults.Temperature)
	}
	if len(cfg.Models) != 1 || cfg.Models[0] != "llama3.2" {
		t.Fatalf("unexpected models: %#v", cfg.Models)
	}
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Provider = "openrouter"
	cfg.APIKey = "sk-test"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("save config: %v", err)
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("reload config: %v", err)
	}
	if loaded.Provider != "openrouter" || loaded.APIKey != "sk-test" {
		t.Fatalf("round trip lost fields: %#v", loaded)
	}
}

func TestEffectiveBaseURL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = "ollama"
	if got := cfg.EffectiveBaseURL(); got != "http://localhost:11434/v1" {
		t.Fatalf("expected preset URL, got %q", got)
	}

	cfg.BaseURL = "http://somewhere:9999/v1"
	if got := cfg.EffectiveBaseURL(); got != "http://somewhere:9999/v1" {
		t.Fatalf("explicit URL must win, got %q", got)
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	if problems := cfg.Validate(); len(problems) == 0 {
		t.Fatalf("openai preset without key should be invalid")
	}

	cfg.APIKey = "sk-test"
	if problems := cfg.Validate(); len(problems) != 0 {
		t.Fatalf("expected valid config, got %v", problems)
	}

	cfg.Models = nil
	if problems := cfg.Validate(); len(problems) == 0 {
		t.Fatalf("expected missing models problem")
	}
}
