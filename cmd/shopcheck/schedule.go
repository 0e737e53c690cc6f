package main

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/shopcheck-io/shopcheck/internal/runner"
	"github.com/shopcheck-io/shopcheck/internal/runner/tasks"
)

var (
	scheduleListFlag bool
	scheduleOnceFlag string
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run suites on the cron schedule from the config",
	Long: `Schedule runs every entry of the "schedule" config section on its cron
expression (seconds first, e.g. "0 0 2 * * *" for 02:00 daily) until
interrupted. A suite still running when its next slot arrives skips that slot.`,
	RunE: runSchedule,
}

func init() {
	scheduleCmd.Flags().BoolVar(&scheduleListFlag, "list", false, "List scheduled tasks and their next run, then exit")
	scheduleCmd.Flags().StringVar(&scheduleOnceFlag, "once", "", "Run the named task once now, then exit")
	rootCmd.AddCommand(scheduleCmd)
}

// newScheduler registers a SuiteTask per schedule entry
func newScheduler(a *app) (*runner.Runner, error) {
	if len(a.cfg.Schedule) == 0 {
		return nil, fmt.Errorf("no schedule entries configured")
	}
	reg := runner.NewTaskRegistry()
	tasks.Register(reg, a.cfg.Schedule, a.suites)
	return runner.NewRunner(reg), nil
}

func runSchedule(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, stop := signalContext()
	defer stop()

	a, err := newApp(ctx, cfg, nil, true)
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := newScheduler(a)
	if err != nil {
		return err
	}

	switch {
	case scheduleOnceFlag != "":
		return sched.RunNow(ctx, scheduleOnceFlag)
	case scheduleListFlag:
		return listSchedule(ctx, cmd, sched)
	}

	if err := sched.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func listSchedule(ctx context.Context, cmd *cobra.Command, sched *runner.Runner) error {
	if err := sched.Schedule(ctx); err != nil {
		return err
	}
	parser := runner.ScheduleParser()
	now := time.Now()

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TASK\tSCHEDULE\tNEXT RUN")
	for _, e := range sched.Entries() {
		next := "-"
		if s, err := parser.Parse(e.Schedule); err == nil {
			next = s.Next(now).Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Name, e.Schedule, next)
	}
	return tw.Flush()
}
