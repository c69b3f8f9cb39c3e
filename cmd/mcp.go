package cmd

import (
	"github.com/spf13/cobra"

	"github.com/kayz/promptforge/internal/mcpserver"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Expose the workspace as an MCP server on stdio",
	Long: `Serves the Model Context Protocol over stdio so editor agents can list
prompt sets, render templates, validate template syntax, and run chains.`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	root, cfg, err := loadWorkspace()
	if err != nil {
		return err
	}
	runner, err := buildRunner(root, cfg)
	if err != nil {
		return err
	}
	return mcpserver.New(root, runner).Serve(build)
}
