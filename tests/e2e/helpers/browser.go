package helpers

import (
	"errors"
	"fmt"
	"sync"

	"github.com/shopcheck-io/shopcheck/internal/browser"
	"github.com/shopcheck-io/shopcheck/internal/pages"
	"github.com/shopcheck-io/shopcheck/tests/e2e/config"
)

// ErrBrowserDisabled is returned by Setup when SKIP_BROWSER is set
var ErrBrowserDisabled = errors.New("browser tests disabled by SKIP_BROWSER")

// BrowserHelper provides browser setup and teardown for tests. It is the
// DriverProvider the harness captures screenshots through.
type BrowserHelper struct {
	Session *browser.Session
	Site    *pages.Site
	Config  *config.TestConfig

	mu sync.Mutex
}

// NewBrowserHelper creates a helper without starting a browser
func NewBrowserHelper() *BrowserHelper {
	return &BrowserHelper{}
}

// Setup starts a browser session. Callers skip the test on error: the
// error says why no browser is available.
func (b *BrowserHelper) Setup() error {
	cfg, err := config.GetConfig()
	if err != nil {
		return fmt.Errorf("e2e config: %w", err)
	}
	b.Config = cfg
	if cfg.SkipBrowser {
		return ErrBrowserDisabled
	}
	if !cfg.SkipProbe && !config.Reachable(cfg.Harness.Site.BaseURL) {
		return fmt.Errorf("%s is not reachable", cfg.Harness.Site.BaseURL)
	}

	s, err := browser.Open(cfg.Harness.Browser, cfg.Harness.Site)
	if err != nil {
		return err
	}
	b.mu.Lock()
	b.Session = s
	b.mu.Unlock()
	b.Site = pages.New(s.Driver(), cfg.Harness.Site, cfg.Harness.Browser.Timeout)
	return nil
}

// Driver returns the active driver, nil before Setup or after TearDown
func (b *BrowserHelper) Driver() browser.Driver {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.Session == nil {
		return nil
	}
	return b.Session.Driver()
}

// TearDown closes the browser
func (b *BrowserHelper) TearDown() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.Session != nil {
		b.Session.Close()
		b.Session = nil
	}
}

// NavigateTo navigates to a path relative to the base URL
func (b *BrowserHelper) NavigateTo(path string) error {
	if b.Session == nil {
		return errors.New("browser not started")
	}
	return b.Session.NavigateTo(path)
}
