// Package sched runs workspace-declared chain schedules on cron
// expressions.
package sched

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/kayz/promptforge/internal/chain"
	"github.com/kayz/promptforge/internal/logger"
	"github.com/kayz/promptforge/internal/workspace"
)

// ChainRunner executes one named chain from the workspace.
type ChainRunner interface {
	RunChain(ctx context.Context, name string) (*chain.Result, error)
}

// Scheduler manages the cron entries declared in the workspace config.
type Scheduler struct {
	cron    *cron.Cron
	runner  ChainRunner
	entries map[string]cron.EntryID
	mu      sync.Mutex
}

func NewScheduler(runner ChainRunner) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds()), // second-level precision
		runner:  runner,
		entries: make(map[string]cron.EntryID),
	}
}

// normalizeCron prepends "0 " to standard 5-field cron expressions
// so they work with the 6-field (with seconds) parser.
func normalizeCron(schedule string) string {
	if len(strings.Fields(schedule)) == 5 {
		return "0 " + schedule
	}
	return schedule
}

// Start registers every enabled schedule and starts the cron loop.
func (s *Scheduler) Start(schedules []workspace.Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	enabled := 0
	for _, sc := range schedules {
		if sc.Disabled {
			continue
		}
		if err := s.add(sc); err != nil {
			return err
		}
		enabled++
	}

	s.cron.Start()
	logger.Info("scheduler started with %d schedule(s) (%d enabled)", len(schedules), enabled)
	return nil
}

func (s *Scheduler) add(sc workspace.Schedule) error {
	name := sc.Name
	if name == "" {
		name = sc.Chain
	}
	chainName := sc.Chain

	id, err := s.cron.AddFunc(normalizeCron(sc.Cron), func() {
		logger.Info("schedule %s: running chain %s", name, chainName)
		res, err := s.runner.RunChain(context.Background(), chainName)
		if err != nil {
			logger.Warn("schedule %s: chain %s failed: %v", name, chainName, err)
			return
		}
		logger.Info("schedule %s: chain %s completed, run %s", name, chainName, res.RunID)
	})
	if err != nil {
		return fmt.Errorf("schedule %q: bad cron expression %q: %w", name, sc.Cron, err)
	}

	s.entries[name] = id
	return nil
}

// Stop halts the cron loop and waits for any running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("scheduler stopped")
}

// Entries returns the names of registered schedules, for status output.
func (s *Scheduler) Entries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	return names
}
