// Package tasks holds the scheduled jobs the runner executes
package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/shopcheck-io/shopcheck/internal/config"
	"github.com/shopcheck-io/shopcheck/internal/runner"
	"github.com/shopcheck-io/shopcheck/internal/scenario"
)

// DefaultTimeout bounds a scheduled suite run without an explicit timeout
const DefaultTimeout = 30 * time.Minute

// SuiteRunner runs a manifest suite by name
type SuiteRunner interface {
	RunSuite(ctx context.Context, name string) (*scenario.Result, error)
}

// SuiteTask runs one suite on a cron schedule
type SuiteTask struct {
	entry  config.ScheduleEntry
	suites SuiteRunner
	logger *log.Logger
}

// NewSuiteTask creates a task for a schedule entry
func NewSuiteTask(entry config.ScheduleEntry, suites SuiteRunner) runner.Task {
	return &SuiteTask{
		entry:  entry,
		suites: suites,
		logger: log.New(log.Writer(), "[SUITE-TASK] ", log.LstdFlags),
	}
}

// Register adds a SuiteTask for every schedule entry
func Register(reg *runner.TaskRegistry, entries []config.ScheduleEntry, suites SuiteRunner) {
	for _, e := range entries {
		reg.Register(NewSuiteTask(e, suites))
	}
}

// Name returns the entry name, or "suite-<suite>" when unnamed
func (t *SuiteTask) Name() string {
	if t.entry.Name != "" {
		return t.entry.Name
	}
	return "suite-" + t.entry.Suite
}

func (t *SuiteTask) Schedule() string {
	return t.entry.Cron
}

func (t *SuiteTask) Timeout() time.Duration {
	if t.entry.Timeout > 0 {
		return t.entry.Timeout
	}
	return DefaultTimeout
}

// Run executes the suite. Failing rows make the task fail so the runner
// logs it.
func (t *SuiteTask) Run(ctx context.Context) error {
	result, err := t.suites.RunSuite(ctx, t.entry.Suite)
	if err != nil {
		return fmt.Errorf("suite %s: %w", t.entry.Suite, err)
	}

	t.logger.Printf("Suite %s: %d passed, %d failed (report %s)",
		t.entry.Suite, result.Passed(), result.Failed(), result.Report)
	if result.Canceled {
		return fmt.Errorf("suite %s: canceled after %d rows: %w", t.entry.Suite, len(result.Rows), ctx.Err())
	}
	if !result.OK() {
		return fmt.Errorf("suite %s: %d of %d rows failed", t.entry.Suite, result.Failed(), len(result.Rows))
	}
	return nil
}
