package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/robfig/cron/v3"
)

var knownEngines = map[string]bool{
	"chromium": true,
	"firefox":  true,
	"webkit":   true,
}

var scheduleParser = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Validator collects configuration problems before a run starts
type Validator struct {
	config   *Config
	errors   []string
	warnings []string
}

func NewValidator(cfg *Config) *Validator {
	return &Validator{
		config:   cfg,
		errors:   []string{},
		warnings: []string{},
	}
}

// Validate checks the configuration and returns all errors at once
func (c *Config) Validate() error {
	return NewValidator(c).Validate()
}

func (v *Validator) Validate() error {
	v.validateSite()
	v.validateBrowser()
	v.validateOutputs()
	v.validateSchedule()

	if len(v.errors) > 0 {
		return fmt.Errorf("config validation failed:\n%s", strings.Join(v.errors, "\n"))
	}
	return nil
}

// Warnings returns non-fatal findings from the last Validate call
func (v *Validator) Warnings() []string {
	return v.warnings
}

func (v *Validator) validateSite() {
	raw := strings.TrimSpace(v.config.Site.BaseURL)
	if raw == "" {
		v.errors = append(v.errors, "site.base_url is not set")
		return
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		v.errors = append(v.errors, fmt.Sprintf("site.base_url %q is not an absolute URL", raw))
		return
	}
	if u.Scheme != "https" {
		v.warnings = append(v.warnings, fmt.Sprintf("site.base_url uses %s", u.Scheme))
	}
}

func (v *Validator) validateBrowser() {
	b := v.config.Browser
	if !knownEngines[strings.ToLower(b.Engine)] {
		v.errors = append(v.errors, fmt.Sprintf("browser.engine %q is not one of chromium, firefox, webkit", b.Engine))
	}
	if b.Timeout <= 0 {
		v.errors = append(v.errors, "browser.timeout must be positive")
	}
	if b.ViewportWidth < 0 || b.ViewportHeight < 0 {
		v.errors = append(v.errors, "browser viewport must not be negative")
	}
	if b.SlowMo < 0 {
		v.errors = append(v.errors, "browser.slow_mo must not be negative")
	}
}

func (v *Validator) validateOutputs() {
	if v.config.Reports.Dir == "" {
		v.errors = append(v.errors, "reports.dir is not set")
	}
	if v.config.Screenshots.Dir == "" {
		v.errors = append(v.errors, "screenshots.dir is not set")
	}
	if v.config.History.Enabled && v.config.History.Path == "" {
		v.errors = append(v.errors, "history.path is required when history is enabled")
	}
}

func (v *Validator) validateSchedule() {
	seen := map[string]bool{}
	for i, entry := range v.config.Schedule {
		if entry.Name == "" {
			v.errors = append(v.errors, fmt.Sprintf("schedule[%d]: name is required", i))
		} else if seen[entry.Name] {
			v.errors = append(v.errors, fmt.Sprintf("schedule[%d]: duplicate name %q", i, entry.Name))
		}
		seen[entry.Name] = true

		if entry.Suite == "" {
			v.errors = append(v.errors, fmt.Sprintf("schedule[%d]: suite is required", i))
		}
		if _, err := scheduleParser.Parse(entry.Cron); err != nil {
			v.errors = append(v.errors, fmt.Sprintf("schedule[%d]: invalid cron %q: %v", i, entry.Cron, err))
		}
	}
}
