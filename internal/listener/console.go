package listener

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fatih/color"
)

var (
	passLabel = color.New(color.FgGreen, color.Bold).SprintFunc()
	failLabel = color.New(color.FgRed, color.Bold).SprintFunc()
	skipLabel = color.New(color.FgYellow).SprintFunc()
	warnLabel = color.New(color.FgYellow).SprintFunc()
	bold      = color.New(color.Bold).SprintFunc()
	faint     = color.New(color.Faint).SprintFunc()
)

// ConsoleListener prints one line per test
type ConsoleListener struct {
	Base
	out     io.Writer
	verbose bool
	mu      sync.Mutex
}

// NewConsoleListener writes to out; verbose also prints test notes
func NewConsoleListener(out io.Writer, verbose bool) *ConsoleListener {
	return &ConsoleListener{out: out, verbose: verbose}
}

func (c *ConsoleListener) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}

func (c *ConsoleListener) OnSuiteStart(s *Suite) {
	c.printf("=== %s %s\n", bold(s.Name), faint(s.RunID))
}

func (c *ConsoleListener) notes(t *Test) {
	for _, n := range t.NotesSnapshot() {
		if n.Warning {
			c.printf("      %s %s\n", warnLabel("!"), n.Text)
		} else if c.verbose {
			c.printf("      %s\n", faint(n.Text))
		}
	}
}

func (c *ConsoleListener) OnTestSuccess(t *Test) {
	c.printf("  %s %s %s\n", passLabel("PASS"), t.Name, faint(t.Duration.Round(time.Millisecond)))
	c.notes(t)
}

func (c *ConsoleListener) OnTestFailure(t *Test) {
	msg := t.Message
	if msg == "" && t.Err != nil {
		msg = t.Err.Error()
	}
	c.printf("  %s %s %s\n", failLabel("FAIL"), t.Name, faint(t.Duration.Round(time.Millisecond)))
	if msg != "" {
		c.printf("      %s\n", msg)
	}
	if t.Shot != nil {
		c.printf("      screenshot: %s\n", t.Shot.Path)
	}
	c.notes(t)
}

func (c *ConsoleListener) OnTestSkip(t *Test) {
	c.printf("  %s %s %s\n", skipLabel("SKIP"), t.Name, faint(t.Message))
}

func (c *ConsoleListener) OnSuiteFinish(s *Suite) {
	counts := s.Counts()
	elapsed := time.Since(s.Started)
	if !s.Finished.IsZero() {
		elapsed = s.Finished.Sub(s.Started)
	}
	status := passLabel("ok")
	if counts.Failed > 0 {
		status = failLabel("FAILED")
	}
	c.printf("--- %s %s: %d passed, %d failed, %d skipped in %s\n",
		status, s.Name, counts.Passed, counts.Failed, counts.Skipped, elapsed.Round(time.Millisecond))
	if s.ReportPath != "" {
		c.printf("    report: %s\n", s.ReportPath)
	}
}
