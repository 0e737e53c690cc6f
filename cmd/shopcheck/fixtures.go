package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/shopcheck-io/shopcheck/internal/fixtures"
)

var (
	fixturesDirFlag    string
	fixturesFormatFlag string
	fixturesForceFlag  bool
	inspectSheetFlag   string
)

var fixturesCmd = &cobra.Command{
	Use:   "fixtures",
	Short: "Create and inspect fixture spreadsheets",
}

var fixturesInitCmd = &cobra.Command{
	Use:   "init [sample...]",
	Short: "Write the built-in sample fixtures",
	Long: `Init writes sample fixtures (one per scenario) to the fixtures directory.
Without arguments every sample is written. Available samples: ` + strings.Join(fixtures.Samples(), ", "),
	RunE: runFixturesInit,
}

var fixturesInspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Show how a fixture is read: columns, rows and expected outcomes",
	Args:  cobra.ExactArgs(1),
	RunE:  runFixturesInspect,
}

func init() {
	fixturesInitCmd.Flags().StringVar(&fixturesDirFlag, "dir", "", "Output directory (default: fixtures.dir from config)")
	fixturesInitCmd.Flags().StringVar(&fixturesFormatFlag, "format", "xlsx", "File format: xlsx or csv")
	fixturesInitCmd.Flags().BoolVar(&fixturesForceFlag, "force", false, "Overwrite existing files")
	fixturesInspectCmd.Flags().StringVar(&inspectSheetFlag, "sheet", "", "Worksheet to read (default: first sheet)")

	fixturesCmd.AddCommand(fixturesInitCmd, fixturesInspectCmd)
	rootCmd.AddCommand(fixturesCmd)
}

func runFixturesInit(cmd *cobra.Command, args []string) error {
	format := strings.ToLower(fixturesFormatFlag)
	if format != "xlsx" && format != "csv" {
		return fmt.Errorf("unknown format %q (want xlsx or csv)", fixturesFormatFlag)
	}

	dir := fixturesDirFlag
	if dir == "" {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		dir = cfg.Fixtures.Dir
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	names := args
	if len(names) == 0 {
		names = fixtures.Samples()
	}
	out := cmd.OutOrStdout()
	for _, name := range names {
		sample, err := fixtures.SampleFor(name)
		if err != nil {
			return err
		}
		path := filepath.Join(dir, name+"."+format)
		if _, err := os.Stat(path); err == nil && !fixturesForceFlag {
			fmt.Fprintf(out, "%s %s (exists, use --force)\n", color.YellowString("skip"), path)
			continue
		}
		if err := writeSample(path, format, name, sample); err != nil {
			return err
		}
		fmt.Fprintf(out, "%s %s (%d rows)\n", color.GreenString("wrote"), path, len(sample.Rows))
	}
	return nil
}

func writeSample(path, format, name string, s fixtures.Sample) error {
	if format == "xlsx" {
		sheet := strings.ToUpper(name[:1]) + name[1:]
		return fixtures.Write(path, sheet, s.Header, s.Rows)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.Write(s.Header); err != nil {
		return err
	}
	if err := w.WriteAll(s.Rows); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func runFixturesInspect(cmd *cobra.Command, args []string) error {
	var opts []fixtures.Option
	if cfg, err := loadConfig(); err == nil && len(cfg.Fixtures.Sentinels) > 0 {
		opts = append(opts, fixtures.WithSentinels(cfg.Fixtures.Sentinels...))
	}

	table, err := fixtures.Open(args[0], inspectSheetFlag, opts...)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	source := table.Path
	if table.Sheet != "" {
		source += " [" + table.Sheet + "]"
	}
	fmt.Fprintf(out, "%s: %d rows, columns: %s\n\n", source, table.Len(), strings.Join(table.Columns, ", "))

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ROW\tLINE\tEXPECTED\tKNOWN ISSUE\tVALUES")
	for _, row := range table.Rows {
		var expected string
		if ok, err := row.Expected(); err != nil {
			expected = color.RedString("invalid")
		} else if ok {
			expected = "pass"
		} else {
			expected = "fail"
		}
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\n", row.Index, row.Line, expected, row.KnownIssue(), rowValues(table, row))
	}
	return tw.Flush()
}

// rowValues shows the data columns as name=value, blanks marked
func rowValues(table *fixtures.Table, row fixtures.Row) string {
	skip := map[string]bool{"": true, "known_issue": true}
	for _, c := range fixtures.ExpectedColumns {
		skip[c] = true
	}

	var parts []string
	for _, c := range table.Columns {
		if skip[strings.ReplaceAll(strings.ToLower(c), " ", "_")] {
			continue
		}
		v := row.Get(c)
		if v == "" {
			v = "(blank)"
		} else if len(v) > 40 {
			v = fmt.Sprintf("%s... (%d chars)", v[:37], len(v))
		}
		parts = append(parts, c+"="+v)
	}
	return strings.Join(parts, " ")
}
