package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/shopcheck-io/shopcheck/internal/config"
)

var (
	synthOutputFlag string
	synthForceFlag  bool
	synthRotateFlag bool
)

var synthesizeCmd = &cobra.Command{
	Use:   "synthesize",
	Short: "Write a .env file for the live-site tests",
	Long: `Write a .env file with the settings read by tests/e2e: site URL,
browser options, output directories and a generated password for the
throwaway accounts the account cases create.`,
	Args: cobra.NoArgs,
	RunE: runSynthesize,
}

func init() {
	synthesizeCmd.Flags().StringVarP(&synthOutputFlag, "output", "o", ".env", "File to write")
	synthesizeCmd.Flags().BoolVar(&synthForceFlag, "force", false, "Overwrite an existing file, keeping its values")
	synthesizeCmd.Flags().BoolVar(&synthRotateFlag, "rotate-secrets", false, "Replace generated secrets in an existing file")
	rootCmd.AddCommand(synthesizeCmd)
}

func runSynthesize(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if _, err := os.Stat(synthOutputFlag); err == nil && !synthForceFlag && !synthRotateFlag {
		fmt.Fprintf(out, "%s %s already exists, use --force to rewrite it or --rotate-secrets to replace secrets\n",
			color.YellowString("skip"), synthOutputFlag)
		return nil
	}

	synth := config.NewSynthesizer(synthOutputFlag)
	if err := synth.Synthesize(synthRotateFlag); err != nil {
		return fmt.Errorf("failed to synthesize environment: %w", err)
	}

	if synthRotateFlag {
		fmt.Fprintf(out, "%s %d secret values in %s (backup saved to %s.backup.*)\n",
			color.GreenString("rotated"), synth.GetGeneratedCount(), synthOutputFlag, synthOutputFlag)
		return nil
	}
	fmt.Fprintf(out, "%s %s (%d generated secrets)\n", color.GreenString("wrote"), synthOutputFlag, synth.GetGeneratedCount())
	return nil
}
