package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/shopcheck-io/shopcheck/internal/config"
	"github.com/shopcheck-io/shopcheck/internal/version"
)

var (
	configDirFlag string
	verboseFlag   bool
	noColorFlag   bool
)

var rootCmd = &cobra.Command{
	Use:   "shopcheck",
	Short: "Data-driven browser checks for automationexercise.com",
	Long: `shopcheck drives a real browser through automationexercise.com.

Suites pair a scenario (subscription, signup, login, ...) with a spreadsheet
of input rows and expected outcomes. Every run writes an HTML report with
screenshots of failing rows.`,
	Version:       version.String(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColorFlag {
			color.NoColor = true
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDirFlag, "config", "config", "Directory holding default.yaml and config.yaml")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Print every row, not only failures")
	rootCmd.PersistentFlags().BoolVar(&noColorFlag, "no-color", false, "Disable colored output")
}

// loadConfig reads the layered configuration from --config
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configDirFlag)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// signalContext is canceled on SIGINT/SIGTERM so a run stops before its
// next row and still writes its report
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error:"), err)
		os.Exit(1)
	}
}
