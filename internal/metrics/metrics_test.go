package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()
	m.SuiteRun("login")
	m.ObserveTest("login", "pass", 2*time.Second)
	m.ObserveTest("login", "pass", time.Second)
	m.ObserveTest("login", "fail", time.Second)
	m.ScreenshotFailed()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.tests.WithLabelValues("login", "pass")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.tests.WithLabelValues("login", "fail")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.suiteRuns.WithLabelValues("login")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.screenshotFailures))
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveTest("subscription", "pass", time.Second)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `shopcheck_tests_total{status="pass",suite="subscription"} 1`), body)
	assert.Contains(t, body, "shopcheck_test_duration_seconds_bucket")
}
