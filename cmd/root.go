package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kayz/promptforge/internal/chain"
	"github.com/kayz/promptforge/internal/config"
	"github.com/kayz/promptforge/internal/llm"
	"github.com/kayz/promptforge/internal/logger"
	"github.com/kayz/promptforge/internal/workspace"
)

var (
	logLevel      string
	workspaceFlag string
)

var rootCmd = &cobra.Command{
	Use:   "promptforge",
	Short: "Prompt template workbench",
	Long: `promptforge iterates on prompt templates against real project files:

  promptforge init       Set up a workspace in the current project
  promptforge discover   List prompt sets found in the workspace
  promptforge render     Interpolate a prompt set or template file
  promptforge chain      List and run multi-step prompt chains
  promptforge serve      Run the browser workbench
  promptforge mcp        Expose the workspace over MCP (stdio)`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logger.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		logger.SetLevel(level)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "info",
		"Log level: trace, debug, info, warn, error, fatal, panic")
	rootCmd.PersistentFlags().StringVarP(&workspaceFlag, "workspace", "w", ".",
		"Workspace root directory")
}

// workspaceRoot resolves the --workspace flag to an absolute path.
func workspaceRoot() (string, error) {
	root, err := filepath.Abs(workspaceFlag)
	if err != nil {
		return "", fmt.Errorf("resolve workspace path: %w", err)
	}
	return root, nil
}

// loadWorkspace resolves the root and loads its config in one step, the
// common opening move of most commands.
func loadWorkspace() (string, *workspace.Config, error) {
	root, err := workspaceRoot()
	if err != nil {
		return "", nil, err
	}
	cfg, err := workspace.Load(root)
	if err != nil {
		return "", nil, err
	}
	return root, cfg, nil
}

// buildRunner assembles a chain runner from the user config and the
// workspace defaults. Workspace settings override user defaults.
func buildRunner(root string, wcfg *workspace.Config) (chain.Runner, error) {
	ucfg, err := config.Load()
	if err != nil {
		return chain.Runner{}, err
	}

	params := chain.Params{
		Provider:    ucfg.Provider,
		Model:       ucfg.Defaults.Model,
		Temperature: float32(ucfg.Defaults.Temperature),
		MaxTokens:   ucfg.Defaults.MaxTokens,
	}
	if wcfg.Defaults.Provider != "" {
		params.Provider = wcfg.Defaults.Provider
	}
	if wcfg.Defaults.Model != "" {
		params.Model = wcfg.Defaults.Model
	}
	if wcfg.Defaults.Temperature != nil {
		params.Temperature = float32(*wcfg.Defaults.Temperature)
	}
	if wcfg.Defaults.MaxTokens > 0 {
		params.MaxTokens = wcfg.Defaults.MaxTokens
	}

	providerCfg := *ucfg
	if wcfg.Defaults.Provider != "" {
		providerCfg.Provider = wcfg.Defaults.Provider
	}
	provider, err := llm.NewProvider(&providerCfg)
	if err != nil {
		return chain.Runner{}, err
	}

	return chain.Runner{
		Provider:   provider,
		Root:       root,
		Delimiters: wcfg.Template.Delimiters,
		Defaults:   params,
	}, nil
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
