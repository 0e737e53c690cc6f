// Package config resolves the environment of the live-site tests. Values
// come from the process environment, then from a .env file, then from the
// harness defaults.
package config

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"

	"github.com/shopcheck-io/shopcheck/internal/config"
)

// TestConfig holds all configuration for E2E tests
type TestConfig struct {
	Harness     *config.Config
	ResultsDir  string
	Password    string
	SkipBrowser bool
	// SkipProbe disables the reachability check before each browser start
	SkipProbe bool
}

var (
	loadOnce sync.Once
	loaded   *TestConfig
	loadErr  error
)

// loadDotEnv reads .env from the package directory or the repository root.
// Variables already in the environment win.
func loadDotEnv() {
	for _, p := range []string{".env", filepath.Join("..", "..", ".env")} {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			log.Printf("[e2e-config] ignoring %s: %v", p, err)
			continue
		}
		log.Printf("[e2e-config] loaded %s", p)
	}
}

// GetConfig returns the test configuration, resolving it once per process
func GetConfig() (*TestConfig, error) {
	loadOnce.Do(func() {
		loadDotEnv()
		loaded, loadErr = resolve()
		if loadErr == nil {
			log.Printf("[e2e-config] BaseURL=%s headless=%t results=%s",
				loaded.Harness.Site.BaseURL, loaded.Harness.Browser.Headless, loaded.ResultsDir)
		}
	})
	return loaded, loadErr
}

func resolve() (*TestConfig, error) {
	cfg, err := config.Default()
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("BASE_URL"); v != "" {
		cfg.Site.BaseURL = strings.TrimRight(v, "/")
	}
	cfg.Browser.Headless = os.Getenv("HEADLESS") != "false"
	if v := os.Getenv("SLOW_MO"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("SLOW_MO: %w", err)
		}
		cfg.Browser.SlowMo = ms
	}
	if v := os.Getenv("E2E_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("E2E_TIMEOUT: %w", err)
		}
		cfg.Browser.Timeout = d
	}
	if os.Getenv("BLOCK_ADS") == "false" {
		cfg.Site.BlockAds = false
	}

	results := envOr("E2E_RESULTS_DIR", "test-results")
	cfg.Reports.Dir = filepath.Join(results, "reports")
	cfg.Reports.JUnit = true
	cfg.Screenshots.Dir = filepath.Join(results, "screenshots")
	cfg.Screenshots.OnPass = os.Getenv("SCREENSHOTS_ON_PASS") == "true"
	if os.Getenv("VIDEOS") == "true" {
		cfg.Browser.VideoDir = filepath.Join(results, "videos")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &TestConfig{
		Harness:     cfg,
		ResultsDir:  results,
		Password:    envOr("E2E_PASSWORD", "Shopcheck-2024!"),
		SkipBrowser: truthy(os.Getenv("SKIP_BROWSER")),
		SkipProbe:   os.Getenv("E2E_PROBE") == "false",
	}, nil
}

// Screenshots reports whether failed cases get a screenshot
func (c *TestConfig) Screenshots() bool {
	return os.Getenv("SCREENSHOTS") != "false"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// Reachable probes base with a short GET. Any HTTP response counts.
func Reachable(base string) bool {
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(base)
	if err != nil {
		log.Printf("[e2e-config] %s unreachable: %v", base, err)
		return false
	}
	_ = resp.Body.Close()
	return true
}
