// Package listener binds suite and test lifecycle events to the report,
// console, metrics and history sinks.
package listener

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shopcheck-io/shopcheck/internal/browser"
	"github.com/shopcheck-io/shopcheck/internal/screenshot"
)

// Outcome of a finished test
type Outcome string

const (
	Passed  Outcome = "pass"
	Failed  Outcome = "fail"
	Skipped Outcome = "skip"
)

// Listener receives lifecycle events. Implementations must tolerate being
// called from several goroutines for different tests.
type Listener interface {
	OnSuiteStart(s *Suite)
	OnTestStart(t *Test)
	OnTestSuccess(t *Test)
	OnTestFailure(t *Test)
	OnTestSkip(t *Test)
	OnSuiteFinish(s *Suite)
}

// Base implements Listener with no-ops for embedding
type Base struct{}

func (Base) OnSuiteStart(*Suite) {}

func (Base) OnTestStart(*Test) {}

func (Base) OnTestSuccess(*Test) {}

func (Base) OnTestFailure(*Test) {}

func (Base) OnTestSkip(*Test) {}

func (Base) OnSuiteFinish(*Suite) {}

// Suite is one run of a named suite
type Suite struct {
	Name        string
	Description string
	RunID       string
	Started     time.Time
	Finished    time.Time

	// ReportPath is filled in by ReportListener once the report is created
	ReportPath string
	// Canceled marks a run stopped before all tests ran
	Canceled bool

	mu    sync.Mutex
	tests []*Test
}

// Counts tallies finished tests
type Counts struct {
	Passed  int
	Failed  int
	Skipped int
}

// Total is the number of finished tests
func (c Counts) Total() int { return c.Passed + c.Failed + c.Skipped }

// Note is an extra line attached to a test result
type Note struct {
	Warning bool
	Text    string
}

// Test is one test case or one data row
type Test struct {
	Suite       *Suite
	Name        string
	Description string
	// Folder groups screenshots, e.g. the data row label
	Folder string
	// Provider exposes the browser the test drove; may be nil
	Provider browser.DriverProvider
	// CaptureOnPass requests a screenshot for a passing test
	CaptureOnPass bool

	Started  time.Time
	Duration time.Duration
	Outcome  Outcome
	Message  string
	Err      error
	Notes    []Note

	// Shot and ShotErr are set by ReportListener
	Shot    *screenshot.Shot
	ShotErr error

	mu sync.Mutex
}

// Info attaches an informational line
func (t *Test) Info(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Notes = append(t.Notes, Note{Text: text})
}

// Warn attaches a warning line
func (t *Test) Warn(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Notes = append(t.Notes, Note{Warning: true, Text: text})
}

// NotesSnapshot returns a copy of the notes
func (t *Test) NotesSnapshot() []Note {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Note(nil), t.Notes...)
}

// Driver returns the active driver or nil
func (t *Test) Driver() browser.Driver {
	if t.Provider == nil {
		return nil
	}
	return t.Provider.Driver()
}

// NewSuite creates a suite with a fresh run id
func NewSuite(name, description string) *Suite {
	return &Suite{
		Name:        name,
		Description: description,
		RunID:       uuid.NewString(),
		Started:     time.Now(),
	}
}

// Tests returns the tests started so far
func (s *Suite) Tests() []*Test {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Test(nil), s.tests...)
}

// Counts tallies the finished tests
func (s *Suite) Counts() Counts {
	s.mu.Lock()
	defer s.mu.Unlock()
	var c Counts
	for _, t := range s.tests {
		switch t.Outcome {
		case Passed:
			c.Passed++
		case Failed:
			c.Failed++
		case Skipped:
			c.Skipped++
		}
	}
	return c
}

// Start registers t with s and emits OnTestStart
func Start(l Listener, s *Suite, t *Test) {
	t.Suite = s
	if t.Started.IsZero() {
		t.Started = time.Now()
	}
	s.mu.Lock()
	s.tests = append(s.tests, t)
	s.mu.Unlock()
	l.OnTestStart(t)
}

// Finish records the outcome of t and emits the matching event
func Finish(l Listener, t *Test, outcome Outcome, message string) {
	t.Outcome = outcome
	t.Message = message
	if t.Duration == 0 {
		t.Duration = time.Since(t.Started)
	}
	switch outcome {
	case Passed:
		l.OnTestSuccess(t)
	case Skipped:
		l.OnTestSkip(t)
	default:
		l.OnTestFailure(t)
	}
}

// Multi fans events out in order. Listeners later in the list see what
// earlier ones recorded on the test (e.g. the screenshot).
type Multi []Listener

func (m Multi) OnSuiteStart(s *Suite) {
	for _, l := range m {
		l.OnSuiteStart(s)
	}
}

func (m Multi) OnTestStart(t *Test) {
	for _, l := range m {
		l.OnTestStart(t)
	}
}

func (m Multi) OnTestSuccess(t *Test) {
	for _, l := range m {
		l.OnTestSuccess(t)
	}
}

func (m Multi) OnTestFailure(t *Test) {
	for _, l := range m {
		l.OnTestFailure(t)
	}
}

func (m Multi) OnTestSkip(t *Test) {
	for _, l := range m {
		l.OnTestSkip(t)
	}
}

func (m Multi) OnSuiteFinish(s *Suite) {
	for _, l := range m {
		l.OnSuiteFinish(s)
	}
}
