package browser

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/playwright-community/playwright-go"

	"github.com/shopcheck-io/shopcheck/internal/config"
)

// adHosts are aborted at the context level when site.block_ads is set.
// The demo site serves full-page vignette ads that intercept clicks.
var adHosts = []string{
	"googlesyndication.com",
	"doubleclick.net",
	"googleadservices.com",
	"google-analytics.com",
	"googletagmanager.com",
	"adservice.google.com",
	"fundingchoicesmessages.google.com",
}

// Session owns one Playwright browser, context and page
type Session struct {
	Playwright *playwright.Playwright
	Browser    playwright.Browser
	Context    playwright.BrowserContext
	Page       playwright.Page

	driver Driver
	cfg    config.BrowserConfig
	site   config.SiteConfig
	logger *log.Logger
	closed bool
}

// Open starts Playwright and returns a ready session
func Open(browserCfg config.BrowserConfig, siteCfg config.SiteConfig) (*Session, error) {
	s := &Session{
		cfg:    browserCfg,
		site:   siteCfg,
		logger: log.New(os.Stdout, "[browser] ", log.LstdFlags),
	}
	if err := s.setup(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Session) setup() error {
	engine := strings.ToLower(s.cfg.Engine)
	if engine == "" {
		engine = "chromium"
	}

	if s.cfg.Install && os.Getenv("PLAYWRIGHT_PREINSTALLED") != "1" {
		if err := playwright.Install(&playwright.RunOptions{Browsers: []string{engine}}); err != nil {
			return fmt.Errorf("could not install playwright browsers: %w", err)
		}
	}

	pw, err := playwright.Run()
	if err != nil {
		// Fallback: install driver explicitly then retry
		_ = playwright.Install(&playwright.RunOptions{Browsers: []string{engine}})
		pw, err = playwright.Run()
		if err != nil {
			return fmt.Errorf("could not start playwright after retry: %w", err)
		}
	}
	s.Playwright = pw

	var browserType playwright.BrowserType
	switch engine {
	case "firefox":
		browserType = pw.Firefox
	case "webkit":
		browserType = pw.WebKit
	default:
		browserType = pw.Chromium
	}

	browser, err := browserType.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(s.cfg.Headless),
		SlowMo:   playwright.Float(float64(s.cfg.SlowMo)),
	})
	if err != nil {
		return fmt.Errorf("could not launch %s: %w", engine, err)
	}
	s.Browser = browser

	contextOpts := playwright.BrowserNewContextOptions{}
	if s.cfg.ViewportWidth > 0 && s.cfg.ViewportHeight > 0 {
		contextOpts.Viewport = &playwright.Size{
			Width:  s.cfg.ViewportWidth,
			Height: s.cfg.ViewportHeight,
		}
	}
	if s.cfg.VideoDir != "" {
		contextOpts.RecordVideo = &playwright.RecordVideo{Dir: s.cfg.VideoDir}
	}
	context, err := browser.NewContext(contextOpts)
	if err != nil {
		return fmt.Errorf("could not create context: %w", err)
	}
	s.Context = context

	if s.site.BlockAds {
		if err := s.blockAds(); err != nil {
			return err
		}
	}

	page, err := context.NewPage()
	if err != nil {
		return fmt.Errorf("could not create page: %w", err)
	}
	s.Page = page
	page.SetDefaultTimeout(float64(s.cfg.Timeout.Milliseconds()))

	s.driver = NewPageDriver(page)
	s.logger.Printf("%s session ready (headless=%t)", engine, s.cfg.Headless)
	return nil
}

func (s *Session) blockAds() error {
	return s.Context.Route("**/*", func(route playwright.Route) {
		if isAdRequest(route.Request().URL()) {
			_ = route.Abort()
			return
		}
		_ = route.Continue()
	})
}

func isAdRequest(rawURL string) bool {
	for _, host := range adHosts {
		if strings.Contains(rawURL, host) {
			return true
		}
	}
	return false
}

// Driver returns the element-level driver for the session page
func (s *Session) Driver() Driver {
	return s.driver
}

// NavigateTo navigates to a path relative to the site base URL
func (s *Session) NavigateTo(path string) error {
	return s.driver.Navigate(s.site.URL(path))
}

// Close releases resources in reverse order. Calling it twice is safe.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true

	if s.Page != nil {
		_ = s.Page.Close()
	}
	if s.Context != nil {
		_ = s.Context.Close()
	}
	if s.Browser != nil {
		_ = s.Browser.Close()
	}
	if s.Playwright != nil {
		_ = s.Playwright.Stop()
	}
}
