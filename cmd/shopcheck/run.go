package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shopcheck-io/shopcheck/internal/suite"
)

var (
	runScenarioFlag  string
	runFixtureFlag   string
	runSheetFlag     string
	runOnPassFlag    bool
	runNoHistoryFlag bool
	runVarFlags      []string
)

var runCmd = &cobra.Command{
	Use:   "run [suite...]",
	Short: "Run suites from the manifest, or one scenario against a fixture",
	Long: `Run executes suites listed in suites.yaml:

  shopcheck run subscription login

or a scenario directly against a fixture file:

  shopcheck run --scenario subscription --fixture fixtures/subscription.xlsx

The command fails when any row fails. Rows with a known_issue note pass
while the documented defect is still present.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runScenarioFlag, "scenario", "", "Scenario to run ad hoc (see: shopcheck suites list)")
	runCmd.Flags().StringVar(&runFixtureFlag, "fixture", "", "Fixture file (.xlsx or .csv) for --scenario")
	runCmd.Flags().StringVar(&runSheetFlag, "sheet", "", "Worksheet of the fixture (default: first sheet)")
	runCmd.Flags().BoolVar(&runOnPassFlag, "screenshots-on-pass", false, "Capture screenshots of passing rows too")
	runCmd.Flags().BoolVar(&runNoHistoryFlag, "no-history", false, "Do not record this run in the history database")
	runCmd.Flags().StringArrayVar(&runVarFlags, "var", nil, "Placeholder value as name=value (repeatable)")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	adHoc := runScenarioFlag != "" || runFixtureFlag != ""
	switch {
	case adHoc && len(args) > 0:
		return fmt.Errorf("pass either suite names or --scenario/--fixture, not both")
	case adHoc && (runScenarioFlag == "" || runFixtureFlag == ""):
		return fmt.Errorf("--scenario and --fixture go together")
	case !adHoc && len(args) == 0:
		return fmt.Errorf("name at least one suite, or use --scenario and --fixture")
	}

	vars, err := parseVars(runVarFlags)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, stop := signalContext()
	defer stop()

	a, err := newApp(ctx, cfg, cmd.OutOrStdout(), !runNoHistoryFlag)
	if err != nil {
		return err
	}
	defer a.Close()

	var targets []suite.Suite
	if adHoc {
		targets = append(targets, suite.Suite{
			Name:     adHocName(runScenarioFlag, runFixtureFlag),
			Scenario: runScenarioFlag,
			Fixture:  runFixtureFlag,
			Sheet:    runSheetFlag,
		})
	} else {
		m, err := a.suites.Manifest()
		if err != nil {
			return err
		}
		for _, name := range args {
			st, err := m.Find(name)
			if err != nil {
				return err
			}
			targets = append(targets, st)
		}
	}

	var failed []string
	for _, st := range targets {
		st.ScreenshotsOnPass = st.ScreenshotsOnPass || runOnPassFlag
		st.Vars = mergeVars(st.Vars, vars)

		result, err := a.suites.Run(ctx, st)
		if err != nil {
			return err
		}
		if !result.OK() {
			failed = append(failed, fmt.Sprintf("%s (%d of %d rows)", st.Name, result.Failed(), len(result.Rows)))
		}
		if result.Canceled {
			return fmt.Errorf("run interrupted during %s", st.Name)
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("failing suites: %s", strings.Join(failed, ", "))
	}
	return nil
}

// adHocName names a run "<scenario>-<fixture base name>"
func adHocName(scenarioName, fixture string) string {
	base := strings.TrimSuffix(filepath.Base(fixture), filepath.Ext(fixture))
	if strings.EqualFold(base, scenarioName) {
		return scenarioName
	}
	return scenarioName + "-" + base
}

func parseVars(flags []string) (map[string]string, error) {
	vars := map[string]string{}
	for _, f := range flags {
		name, value, ok := strings.Cut(f, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("--var %q: want name=value", f)
		}
		vars[name] = value
	}
	return vars, nil
}

func mergeVars(base, override map[string]string) map[string]string {
	if len(override) == 0 {
		return base
	}
	out := make(map[string]string, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		out[k] = v
	}
	return out
}
