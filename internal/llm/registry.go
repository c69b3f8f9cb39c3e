package llm

import (
	"github.com/kayz/promptforge/internal/config"
)

// NewProvider builds the provider selected by the user config. Everything
// except "anthropic" is treated as OpenAI-compatible, with the preset base
// URL applied when no explicit one is set.
func NewProvider(cfg *config.Config) (Provider, error) {
	if cfg.Provider == "anthropic" {
		models := cfg.Models
		if len(models) == 0 {
			if preset, ok := cfg.Presets["anthropic"]; ok {
				models = preset.DefaultModels
			}
		}
		return NewAnthropicProvider(cfg.APIKey, models)
	}

	return NewOpenAIProvider(OpenAIConfig{
		Name:    cfg.Provider,
		APIKey:  cfg.APIKey,
		BaseURL: cfg.EffectiveBaseURL(),
	}), nil
}
