package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kayz/promptforge/internal/config"
	"github.com/kayz/promptforge/internal/workspace"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the workspace layout, templates, and user config",
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	root, cfg, err := loadWorkspace()
	if err != nil {
		return err
	}

	total := 0

	problems := workspace.Validate(root, cfg)
	for _, p := range problems {
		fmt.Printf("workspace: %s\n", p)
	}
	total += len(problems)

	// Every prompt file gets a syntax pass with the workspace delimiters.
	files, err := workspace.ListPromptFiles(root, cfg)
	if err != nil {
		return err
	}
	for _, rel := range files {
		text, err := workspace.LoadPromptFile(root, cfg, rel)
		if err != nil {
			fmt.Printf("template %s: %v\n", rel, err)
			total++
			continue
		}
		for _, p := range cfg.Template.Delimiters.Validate(text) {
			fmt.Printf("template %s: %s\n", rel, p)
			total++
		}
	}

	ucfg, err := config.Load()
	if err != nil {
		return err
	}
	configProblems := ucfg.Validate()
	for _, p := range configProblems {
		fmt.Printf("config: %s\n", p)
	}
	total += len(configProblems)

	if total > 0 {
		return fmt.Errorf("%d problem(s) found", total)
	}
	fmt.Printf("Workspace OK: %d template(s) checked\n", len(files))
	return nil
}
