package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xeonx/timeago"

	"github.com/shopcheck-io/shopcheck/internal/history"
	"github.com/shopcheck-io/shopcheck/internal/suite"
)

const (
	defaultRunLimit = 20
	maxRunLimit     = 200
)

// runView is a run plus the human-friendly fields the dashboard shows
type runView struct {
	history.Run
	StartedAgo string  `json:"started_ago"`
	Seconds    float64 `json:"duration_seconds"`
}

func viewOf(run history.Run) runView {
	return runView{
		Run:        run,
		StartedAgo: timeago.English.Format(run.StartedAt),
		Seconds:    run.Duration().Seconds(),
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	checks := gin.H{}
	healthy := true
	if s.deps.Screenshots != nil {
		if err := s.deps.Screenshots.HealthCheck(ctx); err != nil {
			checks["screenshots"] = err.Error()
			healthy = false
		} else {
			checks["screenshots"] = "ok"
		}
	}
	if s.deps.History != nil {
		if err := s.deps.History.Ping(ctx); err != nil {
			checks["history"] = err.Error()
			healthy = false
		} else {
			checks["history"] = "ok"
		}
	}

	status, code := "ok", http.StatusOK
	if !healthy {
		status, code = "degraded", http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{"status": status, "checks": checks})
}

func (s *Server) handleListRuns(c *gin.Context) {
	if s.deps.History == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "run history is disabled"})
		return
	}

	limit := defaultRunLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxRunLimit)
	}

	runs, err := s.deps.History.Recent(c.Request.Context(), c.Query("suite"), limit)
	if err != nil {
		s.logger.Printf("list runs: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to load runs"})
		return
	}

	views := make([]runView, 0, len(runs))
	for _, r := range runs {
		views = append(views, viewOf(r))
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": views})
}

func (s *Server) handleGetRun(c *gin.Context) {
	if s.deps.History == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "run history is disabled"})
		return
	}

	id := c.Param("id")
	run, err := s.deps.History.Get(c.Request.Context(), id)
	if errors.Is(err, history.ErrRunNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Run not found"})
		return
	}
	if err != nil {
		s.logger.Printf("get run %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to load run"})
		return
	}

	tests, err := s.deps.History.Tests(c.Request.Context(), id)
	if err != nil {
		s.logger.Printf("tests of run %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to load results"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"run":   viewOf(*run),
			"tests": tests,
		},
	})
}

// handleStartRun checks the suite exists, starts it in the background and answers 202
func (s *Server) handleStartRun(c *gin.Context) {
	if s.deps.Suites == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "suite runs are disabled"})
		return
	}

	var input struct {
		Suite string `json:"suite" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Suite is required"})
		return
	}

	m, err := s.deps.Suites.Manifest()
	if err != nil {
		s.logger.Printf("load manifest: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to load suite manifest"})
		return
	}
	if _, err := m.Find(input.Suite); err != nil {
		if errors.Is(err, suite.ErrSuiteNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Suite not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	go func(name string) {
		result, err := s.deps.Suites.RunSuite(s.runCtx, name)
		if err != nil {
			s.logger.Printf("run %s: %v", name, err)
			return
		}
		s.logger.Printf("run %s finished: %d passed, %d failed", name, result.Passed(), result.Failed())
	}(input.Suite)

	c.JSON(http.StatusAccepted, gin.H{"success": true, "data": gin.H{"suite": input.Suite}})
}
