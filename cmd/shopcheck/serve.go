package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/shopcheck-io/shopcheck/internal/config"
	"github.com/shopcheck-io/shopcheck/internal/server"
	"github.com/shopcheck-io/shopcheck/internal/service"
	"github.com/shopcheck-io/shopcheck/internal/storage"
)

var (
	serveScheduleFlag bool
	serveWatchFlag    bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve reports, screenshots, run history and metrics over HTTP",
	Long: `Serve starts the report server on server.host:server.port:

  /healthz          storage and history health
  /metrics          Prometheus metrics
  /api/runs         recent runs (?suite=, ?limit=); POST {"suite": ...} starts one
  /api/runs/:id     one run with its rows
  /reports/...      HTML and JUnit reports
  /screenshots/...  captured screenshots

With --schedule the cron scheduler runs in the same process.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveScheduleFlag, "schedule", false, "Also run the configured schedule")
	serveCmd.Flags().BoolVar(&serveWatchFlag, "watch", false, "Reload the configuration when its files change")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, stop := signalContext()
	defer stop()

	var extra []service.Option
	if serveWatchFlag {
		if err := config.Watch(ctx, configDirFlag); err != nil {
			return err
		}
		extra = append(extra, service.WithLiveConfig())
	}

	a, err := newApp(ctx, cfg, nil, true, extra...)
	if err != nil {
		return err
	}
	defer a.Close()

	shots, err := storage.NewFilesystemBackend(cfg.Screenshots.Dir)
	if err != nil {
		return err
	}
	deps := server.Deps{
		Screenshots:    shots,
		Metrics:        a.metrics,
		Suites:         a.suites,
		ReportsDir:     cfg.Reports.Dir,
		ScreenshotsDir: cfg.Screenshots.Dir,
	}
	if a.history != nil {
		deps.History = a.history
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.New(cfg.Server.Addr(), deps).Run(gctx)
	})
	if serveScheduleFlag {
		sched, err := newScheduler(a)
		if err != nil {
			return err
		}
		g.Go(func() error {
			if err := sched.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}
	return g.Wait()
}
