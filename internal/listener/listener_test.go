package listener

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopcheck-io/shopcheck/internal/browser"
	"github.com/shopcheck-io/shopcheck/internal/browser/browsertest"
	"github.com/shopcheck-io/shopcheck/internal/history"
	"github.com/shopcheck-io/shopcheck/internal/metrics"
	"github.com/shopcheck-io/shopcheck/internal/report"
	"github.com/shopcheck-io/shopcheck/internal/screenshot"
)

func init() {
	color.NoColor = true
}

func newReportListener(t *testing.T, onPass bool) (*ReportListener, string) {
	t.Helper()
	dir := t.TempDir()
	capturer, err := screenshot.NewFilesystem(filepath.Join(dir, "shots"))
	require.NoError(t, err)
	l := NewReportListener(report.Options{
		Dir:    filepath.Join(dir, "reports"),
		Logger: log.New(io.Discard, "", 0),
	}, capturer, onPass)
	return l, dir
}

func TestReportListenerEntries(t *testing.T) {
	l, _ := newReportListener(t, false)
	d := browsertest.New()
	suite := NewSuite("subscription", "home footer")

	l.OnSuiteStart(suite)
	r := l.Report(suite)
	require.NotNil(t, r)
	assert.Equal(t, r.Path, suite.ReportPath)

	pass := &Test{Name: "row 1", Folder: "row-1", Provider: browser.Static(d)}
	Start(l, suite, pass)
	pass.Info("email qa@example.com")
	Finish(l, pass, Passed, "subscribed")
	assert.Nil(t, pass.Shot, "no screenshot for passing tests by default")

	fail := &Test{Name: "row 2", Folder: "row-2", Provider: browser.Static(d)}
	Start(l, suite, fail)
	Finish(l, fail, Failed, "expected Fail, got Pass")
	require.NotNil(t, fail.Shot)
	assert.FileExists(t, fail.Shot.Path)

	skip := &Test{Name: "row 3"}
	Start(l, suite, skip)
	Finish(l, skip, Skipped, "canceled")

	entries := r.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, report.StatusPass, entries[0].Status())
	assert.Equal(t, report.StatusFail, entries[1].Status())
	assert.Equal(t, report.StatusSkip, entries[2].Status())

	lines := entries[1].Lines()
	require.NotEmpty(t, lines)
	last := lines[len(lines)-1]
	require.NotNil(t, last.Image)
	assert.Equal(t, fail.Shot.Path, last.Image.Path)

	l.OnSuiteFinish(suite)
	assert.Nil(t, l.Report(suite))
	assert.True(t, r.Closed())
	assert.FileExists(t, r.Path)
}

func TestCaptureFailureBecomesWarning(t *testing.T) {
	l, _ := newReportListener(t, true)
	d := browsertest.New()
	d.ScreenshotErr = errors.New("target closed")
	suite := NewSuite("login", "")
	l.OnSuiteStart(suite)

	pass := &Test{Name: "valid", Provider: browser.Static(d)}
	Start(l, suite, pass)
	Finish(l, pass, Passed, "logged in")

	fail := &Test{Name: "invalid"}
	Start(l, suite, fail)
	Finish(l, fail, Failed, "no error shown")

	assert.Equal(t, Passed, pass.Outcome)
	require.Error(t, pass.ShotErr)
	require.Error(t, fail.ShotErr)

	entries := l.Report(suite).Entries()
	assert.Equal(t, report.StatusWarning, entries[0].Status(), "pass plus capture warning")
	var sawWarning bool
	for _, line := range entries[0].Lines() {
		if line.Status == report.StatusWarning {
			sawWarning = true
			assert.Contains(t, line.Message, "target closed")
		}
	}
	assert.True(t, sawWarning)
	assert.Equal(t, report.StatusFail, entries[1].Status())
}

func TestConsoleListener(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleListener(&buf, false)
	suite := NewSuite("search", "")
	c.OnSuiteStart(suite)

	ok := &Test{Name: "tops"}
	Start(c, suite, ok)
	ok.Warn("known issue: flaky result count")
	ok.Info("hidden unless verbose")
	Finish(c, ok, Passed, "")

	bad := &Test{Name: "jeans"}
	Start(c, suite, bad)
	Finish(c, bad, Failed, "no results")
	c.OnSuiteFinish(suite)

	out := buf.String()
	assert.Contains(t, out, "=== search")
	assert.Contains(t, out, "PASS tops")
	assert.Contains(t, out, "! known issue: flaky result count")
	assert.NotContains(t, out, "hidden unless verbose")
	assert.Contains(t, out, "FAIL jeans")
	assert.Contains(t, out, "no results")
	assert.Contains(t, out, "FAILED search: 1 passed, 1 failed, 0 skipped")
}

func TestMultiOrderAndMetrics(t *testing.T) {
	l, _ := newReportListener(t, false)
	m := metrics.New()
	d := browsertest.New()
	d.ScreenshotErr = errors.New("boom")
	multi := Multi{l, NewMetricsListener(m)}

	suite := NewSuite("contact", "")
	multi.OnSuiteStart(suite)
	test := &Test{Name: "blank email", Provider: browser.Static(d)}
	Start(multi, suite, test)
	Finish(multi, test, Failed, "accepted")
	multi.OnSuiteFinish(suite)

	body := metricsBody(t, m)
	assert.Contains(t, body, `shopcheck_tests_total{status="fail",suite="contact"} 1`)
	assert.Contains(t, body, `shopcheck_suite_runs_total{suite="contact"} 1`)
	assert.Contains(t, body, `shopcheck_screenshot_failures_total 1`)
}

func metricsBody(t *testing.T, m *metrics.Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestHistoryListener(t *testing.T) {
	ctx := context.Background()
	store, err := history.Open(ctx, filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer store.Close()

	h := NewHistoryListener(store)
	h.logger = log.New(io.Discard, "", 0)
	suite := NewSuite("signup", "")
	suite.ReportPath = "reports/signup.html"
	h.OnSuiteStart(suite)

	for _, o := range []Outcome{Passed, Failed, Skipped} {
		test := &Test{Name: "row " + string(o)}
		Start(h, suite, test)
		Finish(h, test, o, string(o)+" message")
	}
	suite.Canceled = true
	h.OnSuiteFinish(suite)

	run, err := store.Get(ctx, suite.RunID)
	require.NoError(t, err)
	assert.Equal(t, history.StatusCanceled, run.Status)
	assert.Equal(t, 1, run.Passed)
	assert.Equal(t, 1, run.Failed)
	assert.Equal(t, 1, run.Skipped)
	assert.Equal(t, "reports/signup.html", run.ReportPath)

	results, err := store.Tests(ctx, suite.RunID)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "fail message", results[1].Message)
}

func TestSuiteCounts(t *testing.T) {
	s := NewSuite("x", "")
	assert.NotEmpty(t, s.RunID)
	for _, o := range []Outcome{Passed, Passed, Failed, Skipped} {
		test := &Test{}
		Start(Base{}, s, test)
		Finish(Base{}, test, o, "")
	}
	assert.Equal(t, Counts{Passed: 2, Failed: 1, Skipped: 1}, s.Counts())
	assert.Equal(t, 4, s.Counts().Total())
	assert.Len(t, s.Tests(), 4)
}
