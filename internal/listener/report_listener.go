package listener

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/shopcheck-io/shopcheck/internal/report"
	"github.com/shopcheck-io/shopcheck/internal/screenshot"
)

const captureTimeout = 15 * time.Second

// ReportListener keeps one report per suite and one entry per test
type ReportListener struct {
	opts     report.Options
	capturer *screenshot.Capturer
	onPass   bool
	logger   *log.Logger

	mu      sync.Mutex
	reports map[*Suite]*report.Report
	entries map[*Test]*report.Entry
}

// NewReportListener writes reports with opts (Name is taken from the suite).
// capturer may be nil to disable screenshots.
func NewReportListener(opts report.Options, capturer *screenshot.Capturer, onPass bool) *ReportListener {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(os.Stdout, "[report] ", log.LstdFlags)
		opts.Logger = logger
	}
	return &ReportListener{
		opts:     opts,
		capturer: capturer,
		onPass:   onPass,
		logger:   logger,
		reports:  map[*Suite]*report.Report{},
		entries:  map[*Test]*report.Entry{},
	}
}

// Report returns the report of a suite that has started and not finished
func (l *ReportListener) Report(s *Suite) *report.Report {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.reports[s]
}

func (l *ReportListener) OnSuiteStart(s *Suite) {
	opts := l.opts
	opts.Name = s.Name
	if s.Description != "" && opts.Title == "" {
		opts.Title = fmt.Sprintf("%s: %s", s.Name, s.Description)
	}
	r, err := report.New(opts)
	if err != nil {
		l.logger.Printf("Cannot create report for %s: %v", s.Name, err)
		return
	}

	l.mu.Lock()
	l.reports[s] = r
	l.mu.Unlock()
	s.ReportPath = r.Path
}

func (l *ReportListener) entry(t *Test) *report.Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	if e, ok := l.entries[t]; ok {
		return e
	}
	r, ok := l.reports[t.Suite]
	if !ok {
		return nil
	}
	e := r.CreateEntry(t.Name, t.Description)
	l.entries[t] = e
	return e
}

func (l *ReportListener) OnTestStart(t *Test) {
	l.entry(t)
}

func (l *ReportListener) OnTestSuccess(t *Test) {
	e := l.finishEntry(t)
	if e == nil {
		return
	}
	var img *report.Image
	if l.onPass || t.CaptureOnPass {
		img = l.capture(t, e, true)
	}
	e.Log(report.StatusPass, messageOr(t.Message, "passed"), img)
}

func (l *ReportListener) OnTestFailure(t *Test) {
	e := l.finishEntry(t)
	if e == nil {
		return
	}
	msg := messageOr(t.Message, "failed")
	if t.Err != nil && t.Message == "" {
		msg = t.Err.Error()
	}
	img := l.capture(t, e, false)
	e.Log(report.StatusFail, msg, img)
}

func (l *ReportListener) OnTestSkip(t *Test) {
	if e := l.finishEntry(t); e != nil {
		e.Skip(messageOr(t.Message, "skipped"))
	}
}

func (l *ReportListener) OnSuiteFinish(s *Suite) {
	l.mu.Lock()
	r := l.reports[s]
	delete(l.reports, s)
	for t := range l.entries {
		if t.Suite == s {
			delete(l.entries, t)
		}
	}
	l.mu.Unlock()

	if r == nil {
		return
	}
	if err := r.Close(); err != nil {
		l.logger.Printf("Cannot write report for %s: %v", s.Name, err)
	}
}

// finishEntry copies the test notes onto its entry
func (l *ReportListener) finishEntry(t *Test) *report.Entry {
	e := l.entry(t)
	if e == nil {
		return nil
	}
	for _, n := range t.NotesSnapshot() {
		if n.Warning {
			e.Warning(n.Text)
		} else {
			e.Info(n.Text)
		}
	}
	return e
}

// capture takes a screenshot through the test's provider. A failed capture
// becomes a warning on the entry and never changes the test outcome.
func (l *ReportListener) capture(t *Test, e *report.Entry, passed bool) *report.Image {
	if l.capturer == nil {
		return nil
	}
	d := t.Driver()
	if d == nil {
		t.ShotErr = fmt.Errorf("no active browser")
		e.Warning("screenshot unavailable: no active browser")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), captureTimeout)
	defer cancel()
	shot, err := l.capturer.Capture(ctx, d, screenshot.Target{
		Suite:  t.Suite.Name,
		Folder: t.Folder,
		Name:   t.Name,
		Passed: passed,
	})
	if err != nil {
		t.ShotErr = err
		e.Warning(fmt.Sprintf("screenshot unavailable: %v", err))
		return nil
	}
	t.Shot = shot
	return &report.Image{Title: t.Name, Path: shot.Path, Base64: shot.Base64}
}

func messageOr(msg, fallback string) string {
	if msg == "" {
		return fallback
	}
	return msg
}
