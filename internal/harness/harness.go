// Package harness connects go test cases to the listener lifecycle so
// scripted browser tests land in the same reports as data-driven runs.
package harness

import (
	"fmt"
	"runtime/debug"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopcheck-io/shopcheck/internal/browser"
	"github.com/shopcheck-io/shopcheck/internal/listener"
)

// Harness is one suite of go tests
type Harness struct {
	suite    *listener.Suite
	l        listener.Listener
	start    sync.Once
	finish   sync.Once
	captures bool
}

// New creates a harness for a suite reported through l
func New(name string, l listener.Listener) *Harness {
	return &Harness{suite: listener.NewSuite(name, ""), l: l}
}

// CaptureOnPass asks for screenshots of passing cases too
func (h *Harness) CaptureOnPass(on bool) *Harness {
	h.captures = on
	return h
}

// Suite returns the underlying suite
func (h *Harness) Suite() *listener.Suite { return h.suite }

// Start emits the suite start event once
func (h *Harness) Start() {
	h.start.Do(func() {
		h.suite.Started = time.Now()
		h.l.OnSuiteStart(h.suite)
	})
}

// Finish emits the suite finish event once
func (h *Harness) Finish() {
	h.Start()
	h.finish.Do(func() {
		h.suite.Finished = time.Now()
		h.l.OnSuiteFinish(h.suite)
	})
}

// Case runs fn as a subtest of t. The outcome is read from the subtest in a
// cleanup so t.Fatal, t.Skip and panics are all reported.
func (h *Harness) Case(t *testing.T, name string, provider browser.DriverProvider, fn func(c *Case)) bool {
	h.Start()
	return t.Run(name, func(t *testing.T) {
		c := &Case{
			T: t,
			test: &listener.Test{
				Name:          name,
				Folder:        name,
				Provider:      provider,
				CaptureOnPass: h.captures,
			},
		}
		listener.Start(h.l, h.suite, c.test)

		t.Cleanup(func() {
			outcome, msg := classify(t.Failed(), t.Skipped(), c.messages(), c.skipMessage())
			listener.Finish(h.l, c.test, outcome, msg)
		})

		defer func() {
			if r := recover(); r != nil {
				c.record(fmt.Sprintf("panic: %v", r))
				t.Errorf("panic: %v\n%s", r, debug.Stack())
			}
		}()
		fn(c)
	})
}

func classify(failed, skipped bool, messages []string, skipMsg string) (listener.Outcome, string) {
	switch {
	case failed:
		if len(messages) == 0 {
			return listener.Failed, "test failed"
		}
		return listener.Failed, strings.Join(messages, "\n")
	case skipped:
		return listener.Skipped, skipMsg
	default:
		return listener.Passed, "passed"
	}
}

// Case wraps the subtest's *testing.T and records failure messages for the
// report. Pass it to testify in place of t.
type Case struct {
	*testing.T
	test *listener.Test

	mu   sync.Mutex
	msgs []string
	skip string
}

func (c *Case) record(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, strings.TrimSpace(msg))
}

func (c *Case) messages() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.msgs...)
}

func (c *Case) skipMessage() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.skip
}

func (c *Case) Errorf(format string, args ...any) {
	c.T.Helper()
	c.record(fmt.Sprintf(format, args...))
	c.T.Errorf(format, args...)
}

func (c *Case) Error(args ...any) {
	c.T.Helper()
	c.record(fmt.Sprint(args...))
	c.T.Error(args...)
}

func (c *Case) Fatalf(format string, args ...any) {
	c.T.Helper()
	c.record(fmt.Sprintf(format, args...))
	c.T.Fatalf(format, args...)
}

func (c *Case) Fatal(args ...any) {
	c.T.Helper()
	c.record(fmt.Sprint(args...))
	c.T.Fatal(args...)
}

func (c *Case) Skipf(format string, args ...any) {
	c.T.Helper()
	c.mu.Lock()
	c.skip = fmt.Sprintf(format, args...)
	c.mu.Unlock()
	c.T.Skipf(format, args...)
}

func (c *Case) Skip(args ...any) {
	c.T.Helper()
	c.mu.Lock()
	c.skip = fmt.Sprint(args...)
	c.mu.Unlock()
	c.T.Skip(args...)
}

// Step adds an informational line to the case's report entry
func (c *Case) Step(format string, args ...any) {
	c.test.Info(fmt.Sprintf(format, args...))
}

// Warn adds a warning line to the case's report entry
func (c *Case) Warn(format string, args ...any) {
	c.test.Warn(fmt.Sprintf(format, args...))
}

// Driver returns the case's browser driver, nil without a provider
func (c *Case) Driver() browser.Driver { return c.test.Driver() }

// Test exposes the listener record of the case
func (c *Case) Test() *listener.Test { return c.test }
