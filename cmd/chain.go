package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kayz/promptforge/internal/chain"
	"github.com/kayz/promptforge/internal/llm"
)

var chainShowSteps bool

var chainCmd = &cobra.Command{
	Use:   "chain",
	Short: "List and run multi-step prompt chains",
}

var chainListCmd = &cobra.Command{
	Use:   "list",
	Short: "List chains in the workspace chains directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		root, cfg, err := loadWorkspace()
		if err != nil {
			return err
		}
		dir := cfg.ChainsDir(root)
		if dir == "" {
			return fmt.Errorf("no chains directory configured (set layout.chains_dir)")
		}
		chains, err := chain.LoadChains(dir)
		if err != nil {
			return err
		}
		if len(chains) == 0 {
			fmt.Printf("No chains found in %s\n", cfg.Layout.ChainsDir)
			return nil
		}
		for _, c := range chains {
			fmt.Printf("- %s (%d steps)", c.Name, len(c.Steps))
			if c.Description != "" {
				fmt.Printf(": %s", c.Description)
			}
			fmt.Println()
		}
		return nil
	},
}

var chainRunCmd = &cobra.Command{
	Use:   "run <name>",
	Short: "Execute a chain step by step",
	Args:  cobra.ExactArgs(1),
	RunE:  runChainRun,
}

func init() {
	rootCmd.AddCommand(chainCmd)
	chainCmd.AddCommand(chainListCmd)
	chainCmd.AddCommand(chainRunCmd)

	chainRunCmd.Flags().BoolVar(&chainShowSteps, "show-steps", false, "Print every step's output, not just the final one")
}

func runChainRun(cmd *cobra.Command, args []string) error {
	root, cfg, err := loadWorkspace()
	if err != nil {
		return err
	}
	dir := cfg.ChainsDir(root)
	if dir == "" {
		return fmt.Errorf("no chains directory configured (set layout.chains_dir)")
	}
	c, err := chain.FindChain(dir, args[0])
	if err != nil {
		return err
	}

	runner, err := buildRunner(root, cfg)
	if err != nil {
		return err
	}
	runner.Observer = func(ev chain.Event) {
		switch ev.Type {
		case chain.EventStepStarted:
			fmt.Printf("[%d/%d] %s...\n", ev.StepIndex+1, len(c.Steps), ev.StepName)
		case chain.EventStepCompleted:
			if chainShowSteps {
				fmt.Printf("%s\n\n", ev.Output)
			}
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := runner.Run(ctx, c)
	if err != nil {
		return err
	}

	final := res.Steps[len(res.Steps)-1]
	if !chainShowSteps {
		fmt.Println(final.Response.Text)
	}
	if len(final.Response.Thinking) > 0 {
		fmt.Printf("(%d thinking section(s) omitted)\n", len(final.Response.Thinking))
	}
	if cost, ok := llm.EstimateCost(final.Response.Model,
		final.Response.Usage.PromptTokens, final.Response.Usage.CompletionTokens); ok {
		fmt.Printf("estimated cost: $%.4f (last step)\n", cost)
	}
	return nil
}
