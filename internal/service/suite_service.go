// Package service wires the harness pieces into runnable suites: browser
// session, listener chain, history and metrics.
package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"github.com/shopcheck-io/shopcheck/internal/browser"
	"github.com/shopcheck-io/shopcheck/internal/config"
	"github.com/shopcheck-io/shopcheck/internal/fixtures"
	"github.com/shopcheck-io/shopcheck/internal/listener"
	"github.com/shopcheck-io/shopcheck/internal/metrics"
	"github.com/shopcheck-io/shopcheck/internal/report"
	"github.com/shopcheck-io/shopcheck/internal/scenario"
	"github.com/shopcheck-io/shopcheck/internal/screenshot"
	"github.com/shopcheck-io/shopcheck/internal/suite"
)

// Browser is an open browser session
type Browser interface {
	browser.DriverProvider
	Close()
}

// Opener starts a browser session for a run
type Opener func(cfg *config.Config) (Browser, error)

// PlaywrightOpener launches the configured Playwright engine
func PlaywrightOpener(cfg *config.Config) (Browser, error) {
	return browser.Open(cfg.Browser, cfg.Site)
}

// SuiteService runs suites one at a time against a fresh browser session
type SuiteService struct {
	cfg       *config.Config
	scenarios *scenario.Registry
	open      Opener
	metrics   *metrics.Metrics
	history   listener.Recorder
	console   io.Writer
	verbose   bool
	logger    *log.Logger
	live      bool

	mu sync.Mutex
}

// Option configures a SuiteService
type Option func(*SuiteService)

func WithOpener(o Opener) Option { return func(s *SuiteService) { s.open = o } }

func WithMetrics(m *metrics.Metrics) Option { return func(s *SuiteService) { s.metrics = m } }

// WithHistory persists every run through rec
func WithHistory(rec listener.Recorder) Option { return func(s *SuiteService) { s.history = rec } }

// WithConsole prints per-row progress to out
func WithConsole(out io.Writer, verbose bool) Option {
	return func(s *SuiteService) {
		s.console = out
		s.verbose = verbose
	}
}

func WithLogger(l *log.Logger) Option { return func(s *SuiteService) { s.logger = l } }

// WithLiveConfig reads config.Get() at the start of every run so hot
// reloads apply to the next run
func WithLiveConfig() Option { return func(s *SuiteService) { s.live = true } }

// NewSuiteService creates a service over cfg and the scenario registry
func NewSuiteService(cfg *config.Config, scenarios *scenario.Registry, opts ...Option) *SuiteService {
	s := &SuiteService{
		cfg:       cfg,
		scenarios: scenarios,
		open:      PlaywrightOpener,
		logger:    log.New(os.Stdout, "[suites] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SuiteService) config() *config.Config {
	if s.live {
		return config.Get()
	}
	return s.cfg
}

// Manifest loads the configured suites.yaml
func (s *SuiteService) Manifest() (*suite.Manifest, error) {
	m, err := suite.Load(s.config().Suites.Manifest)
	if err != nil {
		return nil, err
	}
	if err := m.Check(s.scenarios); err != nil {
		return nil, err
	}
	return m, nil
}

// RunSuite runs a manifest suite by name
func (s *SuiteService) RunSuite(ctx context.Context, name string) (*scenario.Result, error) {
	m, err := s.Manifest()
	if err != nil {
		return nil, err
	}
	st, err := m.Find(name)
	if err != nil {
		return nil, err
	}
	return s.Run(ctx, st)
}

// Run executes one suite. The fixture is read before the browser starts so
// a broken sheet fails fast.
func (s *SuiteService) Run(ctx context.Context, st suite.Suite) (*scenario.Result, error) {
	cfg := s.config()
	env := scenario.Env{Site: cfg.Site, Wait: cfg.Browser.Timeout}
	job, err := st.Job(s.scenarios, env, fixtureOptions(cfg)...)
	if err != nil {
		return nil, err
	}
	job.CaptureOnPass = job.CaptureOnPass || cfg.Screenshots.OnPass

	capturer, err := screenshot.NewFilesystem(cfg.Screenshots.Dir)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Printf("Opening %s for suite %s", cfg.Browser.Engine, st.Name)
	b, err := s.open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open browser: %w", err)
	}
	defer b.Close()

	runner := scenario.NewRunner(b, s.listeners(cfg.Reports, capturer, job.CaptureOnPass), scenario.WithLogger(s.logger))
	return runner.Run(ctx, job)
}

func fixtureOptions(cfg *config.Config) []fixtures.Option {
	if len(cfg.Fixtures.Sentinels) == 0 {
		return nil
	}
	return []fixtures.Option{fixtures.WithSentinels(cfg.Fixtures.Sentinels...)}
}

// listeners builds the chain. The report listener goes first: it captures
// screenshots, which the metrics and console listeners read afterwards.
func (s *SuiteService) listeners(reports config.ReportsConfig, capturer *screenshot.Capturer, onPass bool) listener.Listener {
	chain := listener.Multi{
		listener.NewReportListener(report.Options{
			Title:       reports.Title,
			Dir:         reports.Dir,
			Timestamped: reports.Timestamped,
			JUnit:       reports.JUnit,
		}, capturer, onPass),
	}
	if s.metrics != nil {
		chain = append(chain, listener.NewMetricsListener(s.metrics))
	}
	if s.history != nil {
		chain = append(chain, listener.NewHistoryListener(s.history))
	}
	if s.console != nil {
		chain = append(chain, listener.NewConsoleListener(s.console, s.verbose))
	}
	return chain
}
