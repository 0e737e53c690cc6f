// Package server exposes reports, screenshots, run history and metrics
// over HTTP.
package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shopcheck-io/shopcheck/internal/history"
	"github.com/shopcheck-io/shopcheck/internal/metrics"
	"github.com/shopcheck-io/shopcheck/internal/scenario"
	"github.com/shopcheck-io/shopcheck/internal/storage"
	"github.com/shopcheck-io/shopcheck/internal/suite"
)

// HistoryReader is the read side of history.Store
type HistoryReader interface {
	Ping(ctx context.Context) error
	Recent(ctx context.Context, suite string, limit int) ([]history.Run, error)
	Get(ctx context.Context, id string) (*history.Run, error)
	Tests(ctx context.Context, runID string) ([]history.TestResult, error)
}

// SuiteRunner starts suite runs on request
type SuiteRunner interface {
	Manifest() (*suite.Manifest, error)
	RunSuite(ctx context.Context, name string) (*scenario.Result, error)
}

// Deps are the services the routes read from. Nil members disable their
// routes or health checks.
type Deps struct {
	History        HistoryReader
	Screenshots    storage.Backend
	Metrics        *metrics.Metrics
	Suites         SuiteRunner
	ReportsDir     string
	ScreenshotsDir string
}

// Server is the HTTP front of the harness
type Server struct {
	addr   string
	deps   Deps
	engine *gin.Engine
	logger *log.Logger

	// runCtx bounds runs started over HTTP; it is canceled on shutdown
	runCtx    context.Context
	cancelRun context.CancelFunc
}

// New builds the router
func New(addr string, deps Deps) *Server {
	runCtx, cancel := context.WithCancel(context.Background())
	s := &Server{
		addr:      addr,
		deps:      deps,
		logger:    log.New(os.Stdout, "[server] ", log.LstdFlags),
		runCtx:    runCtx,
		cancelRun: cancel,
	}
	s.engine = s.routes()
	return s
}

// Handler returns the router, for tests and embedding
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/healthz", s.handleHealth)
	if s.deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(s.deps.Metrics.Handler()))
	}
	if s.deps.ReportsDir != "" {
		r.Static("/reports", s.deps.ReportsDir)
	}
	if s.deps.ScreenshotsDir != "" {
		r.Static("/screenshots", s.deps.ScreenshotsDir)
	}

	api := r.Group("/api")
	{
		api.GET("/runs", s.handleListRuns)
		api.GET("/runs/:id", s.handleGetRun)
		api.POST("/runs", s.handleStartRun)
	}
	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Printf("%s %s %d %s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start).Round(time.Microsecond))
	}
}

// Run serves until ctx is done, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Printf("Listening on %s", s.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		s.cancelRun()
		return err
	case <-ctx.Done():
	}

	s.logger.Println("Shutting down server...")
	s.cancelRun()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
