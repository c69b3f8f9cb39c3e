package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kayz/promptforge/internal/chain"
	"github.com/kayz/promptforge/internal/sched"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the schedules declared in the workspace config",
	Long: `Runs chains on the cron schedules listed under "schedules" in
workspace.yaml until interrupted. Five-field cron expressions are accepted
alongside six-field (with seconds) ones.`,
	RunE: runSchedule,
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
}

type workspaceChainRunner struct {
	runner chain.Runner
	dir    string
}

func (r *workspaceChainRunner) RunChain(ctx context.Context, name string) (*chain.Result, error) {
	c, err := chain.FindChain(r.dir, name)
	if err != nil {
		return nil, err
	}
	return r.runner.Run(ctx, c)
}

func runSchedule(cmd *cobra.Command, args []string) error {
	root, cfg, err := loadWorkspace()
	if err != nil {
		return err
	}
	if len(cfg.Schedules) == 0 {
		return fmt.Errorf("no schedules declared in workspace config")
	}
	dir := cfg.ChainsDir(root)
	if dir == "" {
		return fmt.Errorf("no chains directory configured (set layout.chains_dir)")
	}
	runner, err := buildRunner(root, cfg)
	if err != nil {
		return err
	}

	scheduler := sched.NewScheduler(&workspaceChainRunner{runner: runner, dir: dir})
	if err := scheduler.Start(cfg.Schedules); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	scheduler.Stop()
	return nil
}
