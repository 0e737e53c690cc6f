package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shopcheck-io/shopcheck/internal/scenarios"
	"github.com/shopcheck-io/shopcheck/internal/suite"
)

var suitesCmd = &cobra.Command{
	Use:   "suites",
	Short: "Inspect the suite manifest",
}

var suitesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List manifest suites and the available scenarios",
	RunE:  runSuitesList,
}

func init() {
	suitesCmd.AddCommand(suitesListCmd)
	rootCmd.AddCommand(suitesCmd)
}

func runSuitesList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	reg := scenarios.Default()

	m, err := suite.Load(cfg.Suites.Manifest)
	if err != nil {
		return err
	}
	checkErr := m.Check(reg)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SUITE\tSCENARIO\tFIXTURE\tDESCRIPTION")
	for _, name := range m.Names() {
		s, _ := m.Find(name)
		fixture := s.Fixture
		if s.Sheet != "" {
			fixture += " [" + s.Sheet + "]"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.Name, s.Scenario, fixture, s.Description)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(out, "\nScenarios:")
	tw = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, name := range reg.Names() {
		fmt.Fprintf(tw, "  %s\t%s\n", name, reg.Description(name))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	return checkErr
}
