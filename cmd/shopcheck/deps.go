package main

import (
	"context"
	"io"

	"github.com/shopcheck-io/shopcheck/internal/config"
	"github.com/shopcheck-io/shopcheck/internal/history"
	"github.com/shopcheck-io/shopcheck/internal/metrics"
	"github.com/shopcheck-io/shopcheck/internal/scenarios"
	"github.com/shopcheck-io/shopcheck/internal/service"
)

// app bundles what the run, schedule and serve commands share
type app struct {
	cfg     *config.Config
	history *history.Store
	metrics *metrics.Metrics
	suites  *service.SuiteService
}

// newApp opens history (when enabled) and builds the suite service.
// Close must be called.
func newApp(ctx context.Context, cfg *config.Config, console io.Writer, useHistory bool, extra ...service.Option) (*app, error) {
	a := &app{cfg: cfg, metrics: metrics.New()}
	opts := []service.Option{service.WithMetrics(a.metrics)}

	if useHistory && cfg.History.Enabled {
		store, err := history.Open(ctx, cfg.History.Path)
		if err != nil {
			return nil, err
		}
		a.history = store
		opts = append(opts, service.WithHistory(store))
	}
	if console != nil {
		opts = append(opts, service.WithConsole(console, verboseFlag))
	}

	a.suites = service.NewSuiteService(cfg, scenarios.Default(), append(opts, extra...)...)
	return a, nil
}

func (a *app) Close() {
	if a.history != nil {
		_ = a.history.Close()
	}
}
