package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDefaults(t *testing.T) {
	for _, k := range []string{"BASE_URL", "HEADLESS", "SLOW_MO", "E2E_TIMEOUT", "E2E_RESULTS_DIR", "SKIP_BROWSER", "E2E_PASSWORD"} {
		t.Setenv(k, "")
	}

	cfg, err := resolve()
	require.NoError(t, err)
	assert.Equal(t, "https://automationexercise.com", cfg.Harness.Site.BaseURL)
	assert.True(t, cfg.Harness.Browser.Headless)
	assert.Equal(t, filepath.Join("test-results", "reports"), cfg.Harness.Reports.Dir)
	assert.Equal(t, filepath.Join("test-results", "screenshots"), cfg.Harness.Screenshots.Dir)
	assert.True(t, cfg.Harness.Reports.JUnit)
	assert.False(t, cfg.SkipBrowser)
	assert.NotEmpty(t, cfg.Password)
}

func TestResolveOverrides(t *testing.T) {
	t.Setenv("BASE_URL", "http://localhost:9999/")
	t.Setenv("HEADLESS", "false")
	t.Setenv("SLOW_MO", "250")
	t.Setenv("E2E_TIMEOUT", "3s")
	t.Setenv("E2E_RESULTS_DIR", "out")
	t.Setenv("SKIP_BROWSER", "yes")

	cfg, err := resolve()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9999", cfg.Harness.Site.BaseURL)
	assert.False(t, cfg.Harness.Browser.Headless)
	assert.Equal(t, 250, cfg.Harness.Browser.SlowMo)
	assert.Equal(t, 3*time.Second, cfg.Harness.Browser.Timeout)
	assert.Equal(t, filepath.Join("out", "reports"), cfg.Harness.Reports.Dir)
	assert.True(t, cfg.SkipBrowser)
}

func TestResolveRejectsBadValues(t *testing.T) {
	t.Setenv("SLOW_MO", "fast")
	_, err := resolve()
	assert.ErrorContains(t, err, "SLOW_MO")

	t.Setenv("SLOW_MO", "")
	t.Setenv("E2E_TIMEOUT", "soon")
	_, err = resolve()
	assert.ErrorContains(t, err, "E2E_TIMEOUT")
}

func TestDotEnvDoesNotOverrideEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("E2E_PASSWORD=from-file\nE2E_RESULTS_DIR=file-results\n"), 0o644))
	t.Setenv("E2E_PASSWORD", "from-env")
	t.Setenv("E2E_RESULTS_DIR", "")
	require.NoError(t, os.Unsetenv("E2E_RESULTS_DIR"))

	require.NoError(t, godotenv.Load(path))
	cfg, err := resolve()
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Password)
	assert.Equal(t, "file-results", cfg.ResultsDir)
}

func TestTruthy(t *testing.T) {
	for _, v := range []string{"1", "true", "YES", " on "} {
		assert.True(t, truthy(v), v)
	}
	for _, v := range []string{"", "0", "false", "maybe"} {
		assert.False(t, truthy(v), v)
	}
}
