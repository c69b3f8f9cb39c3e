package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kayz/promptforge/internal/workspace"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Set up a promptforge workspace in the current project",
	Long: `Detects the project type (Maven, Gradle, Python, Node.js) and writes a
workspace config with a layout matching the project's conventions, creating
the prompt and vars directories.`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing workspace config")
}

func runInit(cmd *cobra.Command, args []string) error {
	root, err := workspaceRoot()
	if err != nil {
		return err
	}

	cfgPath := workspace.ConfigPath(root)
	if _, err := os.Stat(cfgPath); err == nil && !initForce {
		return fmt.Errorf("workspace already initialized at %s (use --force to overwrite)", cfgPath)
	}

	pt := workspace.DetectProjectType(root)
	cfg := workspace.DefaultConfig()
	cfg.Name = filepath.Base(root)
	cfg.Layout = workspace.SuggestLayout(pt)

	if err := workspace.Save(root, cfg); err != nil {
		return err
	}
	for _, dir := range []string{cfg.PromptDir(root), cfg.VarsDir(root)} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}

	fmt.Printf("Initialized workspace (%s project detected)\n", pt)
	fmt.Printf("  config:  %s\n", cfgPath)
	fmt.Printf("  prompts: %s (%s)\n", cfg.Layout.PromptDir, cfg.Layout.PromptExtension)
	fmt.Printf("  vars:    %s (%s)\n", cfg.Layout.VarsDir, cfg.Layout.VarsExtension)
	return nil
}
