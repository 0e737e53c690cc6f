package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/xeonx/timeago"

	"github.com/shopcheck-io/shopcheck/internal/history"
	"github.com/shopcheck-io/shopcheck/internal/listener"
)

var historyLimitFlag int

var historyCmd = &cobra.Command{
	Use:   "history [suite]",
	Short: "Show recent runs",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show the rows of one run",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimitFlag, "limit", "n", 20, "Number of runs to show")
	historyCmd.AddCommand(historyShowCmd)
	rootCmd.AddCommand(historyCmd)
}

func openHistory(cmd *cobra.Command) (*history.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.History.Enabled {
		return nil, fmt.Errorf("history is disabled (history.enabled: false)")
	}
	return history.Open(cmd.Context(), cfg.History.Path)
}

func statusLabel(status string) string {
	switch status {
	case history.StatusPassed, string(listener.Passed):
		return color.GreenString(status)
	case history.StatusFailed, string(listener.Failed):
		return color.RedString(status)
	case history.StatusCanceled, string(listener.Skipped):
		return color.YellowString(status)
	default:
		return status
	}
}

func runHistory(cmd *cobra.Command, args []string) error {
	store, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	suiteName := ""
	if len(args) == 1 {
		suiteName = args[0]
	}
	runs, err := store.Recent(cmd.Context(), suiteName, historyLimitFlag)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet.")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tSUITE\tSTATUS\tPASSED\tFAILED\tSKIPPED\tSTARTED\tDURATION")
	for _, r := range runs {
		duration := "-"
		if d := r.Duration(); d > 0 {
			duration = d.Round(time.Second).String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%s\t%s\n",
			r.ID, r.Suite, statusLabel(r.Status), r.Passed, r.Failed, r.Skipped,
			timeago.English.Format(r.StartedAt), duration)
	}
	return tw.Flush()
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	store, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	run, err := store.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	tests, err := store.Tests(cmd.Context(), run.ID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s, %s (%s)\n", run.Suite, statusLabel(run.Status), timeago.English.Format(run.StartedAt), run.ID)
	if run.ReportPath != "" {
		fmt.Fprintf(out, "report: %s\n", run.ReportPath)
	}
	fmt.Fprintln(out)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, t := range tests {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", statusLabel(t.Outcome), t.Name, time.Duration(t.DurationMS)*time.Millisecond, t.Message)
		if t.Screenshot != "" {
			fmt.Fprintf(tw, "\t\t\tscreenshot: %s\n", t.Screenshot)
		}
	}
	return tw.Flush()
}
