package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kayz/promptforge/internal/config"
	"github.com/kayz/promptforge/internal/llm"
)

var modelsRemote bool

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List models for the configured provider",
	RunE:  runModels,
}

func init() {
	rootCmd.AddCommand(modelsCmd)
	modelsCmd.Flags().BoolVar(&modelsRemote, "remote", false, "Query the provider endpoint instead of the configured list")
}

func runModels(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if !modelsRemote {
		models := cfg.Models
		if len(models) == 0 {
			if preset, ok := cfg.Presets[cfg.Provider]; ok {
				models = preset.DefaultModels
			}
		}
		if len(models) == 0 {
			return fmt.Errorf("no models configured for provider %q (try --remote)", cfg.Provider)
		}
		fmt.Printf("Configured models (%s):\n", cfg.Provider)
		for _, m := range models {
			marker := ""
			if m == cfg.Defaults.Model {
				marker = " (default)"
			}
			fmt.Printf("- %s%s\n", m, marker)
		}
		return nil
	}

	provider, err := llm.NewProvider(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
	defer cancel()

	models, err := provider.ListModels(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Models reported by %s:\n", provider.Name())
	for _, m := range models {
		fmt.Printf("- %s\n", m)
	}
	return nil
}
