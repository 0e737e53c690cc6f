package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopcheck-io/shopcheck/internal/history"
	"github.com/shopcheck-io/shopcheck/internal/metrics"
	"github.com/shopcheck-io/shopcheck/internal/scenario"
	"github.com/shopcheck-io/shopcheck/internal/storage"
	"github.com/shopcheck-io/shopcheck/internal/suite"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeSuites struct {
	mu          sync.Mutex
	names       []string
	done        chan struct{}
	manifestErr error
}

func (f *fakeSuites) Manifest() (*suite.Manifest, error) {
	if f.manifestErr != nil {
		return nil, f.manifestErr
	}
	return &suite.Manifest{Suites: []suite.Suite{
		{Name: "subscription", Scenario: "subscription", Fixture: "fixtures/subscription.csv"},
	}}, nil
}

func (f *fakeSuites) RunSuite(ctx context.Context, name string) (*scenario.Result, error) {
	f.mu.Lock()
	f.names = append(f.names, name)
	f.mu.Unlock()
	close(f.done)
	return &scenario.Result{Suite: name}, nil
}

type brokenHistory struct{ HistoryReader }

func (brokenHistory) Ping(context.Context) error { return errors.New("database is locked") }

func newTestServer(t *testing.T, deps Deps) *Server {
	t.Helper()
	s := New("127.0.0.1:0", deps)
	s.logger = log.New(io.Discard, "", 0)
	return s
}

func do(t *testing.T, s *Server, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	var decoded map[string]any
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded))
	}
	return w, decoded
}

func seed(t *testing.T) *history.Store {
	t.Helper()
	ctx := context.Background()
	store, err := history.Open(ctx, filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	started := time.Now().Add(-2 * time.Hour).UTC()
	run := &history.Run{ID: "run-1", Suite: "subscription", StartedAt: started}
	require.NoError(t, store.RecordRun(ctx, run))
	require.NoError(t, store.RecordTest(ctx, &history.TestResult{RunID: "run-1", Name: "row 1", Outcome: "passed"}))
	require.NoError(t, store.RecordTest(ctx, &history.TestResult{RunID: "run-1", Name: "row 2", Outcome: "failed", Message: "expected Pass, observed Fail"}))
	run.Passed, run.Failed = 1, 1
	run.FinishedAt.Time, run.FinishedAt.Valid = started.Add(90*time.Second), true
	require.NoError(t, store.FinishRun(ctx, run))

	require.NoError(t, store.RecordRun(ctx, &history.Run{ID: "run-2", Suite: "login", StartedAt: time.Now().UTC()}))
	return store
}

func TestHealth(t *testing.T) {
	backend, err := storage.NewFilesystemBackend(t.TempDir())
	require.NoError(t, err)
	store := seed(t)

	w, body := do(t, newTestServer(t, Deps{History: store, Screenshots: backend}), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, map[string]any{"history": "ok", "screenshots": "ok"}, body["checks"])

	w, body = do(t, newTestServer(t, Deps{History: brokenHistory{store}}), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, "database is locked", body["checks"].(map[string]any)["history"])
}

func TestListRuns(t *testing.T) {
	s := newTestServer(t, Deps{History: seed(t)})

	w, body := do(t, s, http.MethodGet, "/api/runs", "")
	require.Equal(t, http.StatusOK, w.Code)
	runs := body["data"].([]any)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-2", runs[0].(map[string]any)["id"])

	w, body = do(t, s, http.MethodGet, "/api/runs?suite=subscription&limit=5", "")
	require.Equal(t, http.StatusOK, w.Code)
	runs = body["data"].([]any)
	require.Len(t, runs, 1)
	first := runs[0].(map[string]any)
	assert.Equal(t, "failed", first["status"])
	assert.Contains(t, first["started_ago"], "hours ago")
	assert.InDelta(t, 90, first["duration_seconds"], 0.001)

	w, _ = do(t, s, http.MethodGet, "/api/runs?limit=zero", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetRun(t *testing.T) {
	s := newTestServer(t, Deps{History: seed(t)})

	w, body := do(t, s, http.MethodGet, "/api/runs/run-1", "")
	require.Equal(t, http.StatusOK, w.Code)
	data := body["data"].(map[string]any)
	assert.Equal(t, "subscription", data["run"].(map[string]any)["suite"])
	tests := data["tests"].([]any)
	require.Len(t, tests, 2)
	assert.Equal(t, "expected Pass, observed Fail", tests[1].(map[string]any)["message"])

	w, body = do(t, s, http.MethodGet, "/api/runs/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, false, body["success"])
}

func TestHistoryDisabled(t *testing.T) {
	s := newTestServer(t, Deps{})
	w, _ := do(t, s, http.MethodGet, "/api/runs", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = do(t, s, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStartRun(t *testing.T) {
	suites := &fakeSuites{done: make(chan struct{})}
	s := newTestServer(t, Deps{Suites: suites})

	w, _ := do(t, s, http.MethodPost, "/api/runs", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body := do(t, s, http.MethodPost, "/api/runs", `{"suite":"subscription"}`)
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "subscription", body["data"].(map[string]any)["suite"])

	select {
	case <-suites.done:
	case <-time.After(2 * time.Second):
		t.Fatal("suite run was not started")
	}
	suites.mu.Lock()
	defer suites.mu.Unlock()
	assert.Equal(t, []string{"subscription"}, suites.names)
}

func TestStartRunUnknownSuite(t *testing.T) {
	suites := &fakeSuites{done: make(chan struct{})}
	s := newTestServer(t, Deps{Suites: suites})

	w, body := do(t, s, http.MethodPost, "/api/runs", `{"suite":"checkout"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Suite not found", body["error"])

	suites.manifestErr = errors.New("read manifest: no such file")
	w, body = do(t, s, http.MethodPost, "/api/runs", `{"suite":"subscription"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, false, body["success"])

	time.Sleep(50 * time.Millisecond)
	suites.mu.Lock()
	defer suites.mu.Unlock()
	assert.Empty(t, suites.names)
}

func TestMetricsAndStatic(t *testing.T) {
	reports := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(reports, "subscription.html"), []byte("<html>report</html>"), 0644))
	m := metrics.New()
	m.ObserveTest("subscription", "passed", time.Second)

	s := newTestServer(t, Deps{Metrics: m, ReportsDir: reports})

	w, _ := do(t, s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `shopcheck_tests_total{status="passed",suite="subscription"} 1`)

	w, _ = do(t, s, http.MethodGet, "/reports/subscription.html", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "report")
}

func TestRunShutsDown(t *testing.T) {
	s := newTestServer(t, Deps{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.Error(t, s.runCtx.Err())
}
