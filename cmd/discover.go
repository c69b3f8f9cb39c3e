package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kayz/promptforge/internal/discovery"
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "List prompt sets found in the workspace",
	RunE:  runDiscover,
}

func init() {
	rootCmd.AddCommand(discoverCmd)
}

func runDiscover(cmd *cobra.Command, args []string) error {
	root, cfg, err := loadWorkspace()
	if err != nil {
		return err
	}

	sets, warnings, err := discovery.Discover(root, cfg)
	if err != nil {
		return err
	}
	if len(sets) == 0 {
		fmt.Printf("No prompt sets found under %s\n", cfg.Layout.PromptDir)
		return nil
	}

	fmt.Printf("Prompt sets (%d):\n", len(sets))
	for _, set := range sets {
		roles := make([]string, 0, len(set.Prompts))
		for role := range set.Prompts {
			roles = append(roles, role)
		}
		sort.Strings(roles)

		marker := ""
		if set.Orphan {
			marker = " [orphan]"
		}
		vars := "-"
		if set.VarFile != nil {
			vars = set.VarFile.Path
		}
		fmt.Printf("- %s%s roles=%s vars=%s\n", set.Name, marker, strings.Join(roles, ","), vars)
	}

	for _, w := range warnings {
		fmt.Printf("warning: %s\n", w)
	}
	return nil
}
