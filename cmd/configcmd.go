package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kayz/promptforge/internal/config"
)

var (
	configProvider    string
	configAPIKey      string
	configBaseURL     string
	configModel       string
	configTemperature float64
	configMaxTokens   int
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show and update the user configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective user configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		fmt.Printf("provider: %s\n", cfg.Provider)
		fmt.Printf("base_url: %s\n", orDefault(cfg.EffectiveBaseURL(), "(provider default)"))
		fmt.Printf("api_key:  %s\n", maskKey(cfg.APIKey))
		fmt.Printf("defaults: model=%s temperature=%.2f max_tokens=%d\n",
			cfg.Defaults.Model, cfg.Defaults.Temperature, cfg.Defaults.MaxTokens)

		presets := make([]string, 0, len(cfg.Presets))
		for name := range cfg.Presets {
			presets = append(presets, name)
		}
		sort.Strings(presets)
		fmt.Printf("presets:  %s\n", strings.Join(presets, ", "))

		for _, p := range cfg.Validate() {
			fmt.Printf("warning: %s\n", p)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update user configuration fields",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		changed := false
		if configProvider != "" {
			if _, ok := cfg.Presets[configProvider]; !ok {
				fmt.Printf("note: %q is not a known preset, treating it as OpenAI-compatible\n", configProvider)
			}
			cfg.Provider = configProvider
			changed = true
		}
		if configAPIKey != "" {
			cfg.APIKey = configAPIKey
			changed = true
		}
		if cmd.Flags().Changed("base-url") {
			cfg.BaseURL = configBaseURL
			changed = true
		}
		if configModel != "" {
			cfg.Defaults.Model = configModel
			changed = true
		}
		if cmd.Flags().Changed("temperature") {
			cfg.Defaults.Temperature = configTemperature
			changed = true
		}
		if configMaxTokens > 0 {
			cfg.Defaults.MaxTokens = configMaxTokens
			changed = true
		}

		if !changed {
			return fmt.Errorf("nothing to set (see --help for flags)")
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println("Configuration saved")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)

	configSetCmd.Flags().StringVar(&configProvider, "provider", "", "Provider name: openai, anthropic, ollama, lm-studio, openrouter, or custom")
	configSetCmd.Flags().StringVar(&configAPIKey, "api-key", "", "API key for the provider")
	configSetCmd.Flags().StringVar(&configBaseURL, "base-url", "", "Custom base URL (empty restores the preset URL)")
	configSetCmd.Flags().StringVar(&configModel, "model", "", "Default model")
	configSetCmd.Flags().Float64Var(&configTemperature, "temperature", 0, "Default temperature")
	configSetCmd.Flags().IntVar(&configMaxTokens, "max-tokens", 0, "Default max tokens")
}

func maskKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
