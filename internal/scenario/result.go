package scenario

import (
	"time"

	"github.com/shopcheck-io/shopcheck/internal/fixtures"
)

// Outcome classifies one row
type Outcome string

const (
	// Pass: observation matched the expected outcome
	Pass Outcome = "pass"
	// Fail: mismatch, execution error or unreadable row
	Fail Outcome = "fail"
	// ExpectedFailure: a known-issue row still shows the documented site
	// defect. Counted as passing.
	ExpectedFailure Outcome = "expected-failure"
	// UnexpectedPass: a known-issue row now behaves as expected, so the
	// known_issue note is stale. Counted as failing.
	UnexpectedPass Outcome = "unexpected-pass"
	// Skipped: not run because the context was canceled
	Skipped Outcome = "skipped"
)

// OK reports whether the outcome counts as passing
func (o Outcome) OK() bool { return o == Pass || o == ExpectedFailure }

// RowResult is the record of one row
type RowResult struct {
	Index      int
	Label      string
	Expected   bool
	KnownIssue string
	Observed   Observation
	Outcome    Outcome
	Message    string
	Err        error
	Screenshot string
	Duration   time.Duration

	row fixtures.Row
}

// Row returns the fixture row
func (r RowResult) Row() fixtures.Row { return r.row }

// Result is the record of one run
type Result struct {
	Suite    string
	Scenario string
	RunID    string
	Report   string
	Rows     []RowResult
	Canceled bool
	Started  time.Time
	Finished time.Time
}

// Counts tallies outcomes
func (r *Result) Counts() map[Outcome]int {
	c := map[Outcome]int{}
	for _, row := range r.Rows {
		c[row.Outcome]++
	}
	return c
}

// Passed counts rows whose outcome is OK
func (r *Result) Passed() int {
	n := 0
	for _, row := range r.Rows {
		if row.Outcome.OK() {
			n++
		}
	}
	return n
}

// Failed counts failing rows
func (r *Result) Failed() int {
	n := 0
	for _, row := range r.Rows {
		if row.Outcome == Fail || row.Outcome == UnexpectedPass {
			n++
		}
	}
	return n
}

// OK is true when nothing failed
func (r *Result) OK() bool { return r.Failed() == 0 }
