package scenario

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/shopcheck-io/shopcheck/internal/browser"
	"github.com/shopcheck-io/shopcheck/internal/fixtures"
	"github.com/shopcheck-io/shopcheck/internal/listener"
)

// ErrNoBrowser is recorded on rows that run without an active driver
var ErrNoBrowser = errors.New("no active browser")

// Job is one data-driven suite run
type Job struct {
	Suite         string
	Description   string
	Scenario      Scenario
	Table         *fixtures.Table
	CaptureOnPass bool
	// Vars expand {{name}} placeholders in cells; "unique" defaults to a
	// per-run timestamp
	Vars map[string]string
}

// Runner executes jobs against the browser behind a provider
type Runner struct {
	provider   browser.DriverProvider
	listener   listener.Listener
	logger     *log.Logger
	rowTimeout time.Duration
	now        func() time.Time
}

// Option tunes a Runner
type Option func(*Runner)

// WithLogger replaces the default "[scenario] " logger
func WithLogger(l *log.Logger) Option { return func(r *Runner) { r.logger = l } }

// WithRowTimeout bounds each row; zero means no bound
func WithRowTimeout(d time.Duration) Option { return func(r *Runner) { r.rowTimeout = d } }

// NewRunner creates a runner. l receives one suite per Run and one test per
// row.
func NewRunner(provider browser.DriverProvider, l listener.Listener, opts ...Option) *Runner {
	if l == nil {
		l = listener.Base{}
	}
	r := &Runner{
		provider: provider,
		listener: l,
		logger:   log.New(os.Stdout, "[scenario] ", log.LstdFlags),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes every row of the job's table. Row failures never abort the
// run; a canceled context stops before the next row and the remaining rows
// are recorded as skipped. The error is only for jobs that cannot start.
func (r *Runner) Run(ctx context.Context, job Job) (*Result, error) {
	if job.Scenario == nil {
		return nil, fmt.Errorf("job %s: no scenario", job.Suite)
	}
	if job.Table == nil {
		return nil, fmt.Errorf("job %s: no fixture table", job.Suite)
	}
	if err := job.Table.Require(job.Scenario.Columns()...); err != nil {
		return nil, fmt.Errorf("job %s: %w", job.Suite, err)
	}
	if !hasExpectedColumn(job.Table) {
		return nil, fmt.Errorf("job %s: %w: expected", job.Suite, fixtures.ErrMissingColumns)
	}
	if job.Suite == "" {
		job.Suite = job.Scenario.Name()
	}

	vars := map[string]string{"unique": r.now().Format("20060102150405")}
	for k, v := range job.Vars {
		vars[k] = v
	}
	job.Table.SetVars(vars)

	suite := listener.NewSuite(job.Suite, job.Description)
	suite.Started = r.now()
	result := &Result{
		Suite:    job.Suite,
		Scenario: job.Scenario.Name(),
		RunID:    suite.RunID,
		Started:  suite.Started,
	}

	r.logger.Printf("Running %s (%s) with %d rows", job.Suite, job.Scenario.Name(), job.Table.Len())
	r.listener.OnSuiteStart(suite)

	for _, row := range job.Table.Rows {
		test := &listener.Test{
			Name:          row.Label(),
			Description:   job.Scenario.Name(),
			Folder:        fmt.Sprintf("row-%d", row.Index),
			Provider:      r.provider,
			CaptureOnPass: job.CaptureOnPass,
			Started:       r.now(),
		}
		listener.Start(r.listener, suite, test)

		var res RowResult
		if ctx.Err() != nil {
			suite.Canceled = true
			res = RowResult{Outcome: Skipped, Message: "run canceled before this row"}
		} else {
			res = r.runRow(ctx, job.Scenario, row, test)
		}
		res.Index = row.Index
		res.Label = row.Label()
		res.KnownIssue = row.KnownIssue()
		res.row = row
		res.Duration = r.now().Sub(test.Started)
		test.Duration = res.Duration

		listener.Finish(r.listener, test, listenerOutcome(res.Outcome), res.Message)
		if test.Shot != nil {
			res.Screenshot = test.Shot.Path
		}
		result.Rows = append(result.Rows, res)
	}

	suite.Finished = r.now()
	result.Canceled = suite.Canceled
	result.Finished = suite.Finished
	r.listener.OnSuiteFinish(suite)
	result.Report = suite.ReportPath

	r.logger.Printf("Finished %s: %d passed, %d failed", job.Suite, result.Passed(), result.Failed())
	return result, nil
}

func hasExpectedColumn(t *fixtures.Table) bool {
	for _, c := range fixtures.ExpectedColumns {
		if t.Has(c) {
			return true
		}
	}
	return false
}

// runRow resets, executes and classifies one row. Errors and panics become
// Fail results.
func (r *Runner) runRow(ctx context.Context, sc Scenario, row fixtures.Row, test *listener.Test) (res RowResult) {
	expected, err := row.Expected()
	if err != nil {
		return RowResult{Outcome: Fail, Err: err, Message: fmt.Sprintf("unreadable row: %v", err)}
	}
	res.Expected = expected

	if r.rowTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.rowTimeout)
		defer cancel()
	}

	obs, err := r.execute(ctx, sc, row)
	if err != nil {
		res.Outcome = Fail
		res.Err = err
		res.Message = fmt.Sprintf("error: %v", err)
		r.logger.Printf("%s %s: %v", sc.Name(), row.Label(), err)
		return res
	}
	res.Observed = obs
	if obs.Detail != "" {
		test.Info(obs.Detail)
	}

	res.Outcome, res.Message = classify(expected, obs.Succeeded, row.KnownIssue())
	if res.Outcome == ExpectedFailure {
		test.Warn("known issue: " + row.KnownIssue())
	}
	return res
}

func (r *Runner) execute(ctx context.Context, sc Scenario, row fixtures.Row) (obs Observation, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()

	var d browser.Driver
	if r.provider != nil {
		d = r.provider.Driver()
	}
	if d == nil {
		return obs, ErrNoBrowser
	}
	if err := sc.Reset(ctx, d); err != nil {
		return obs, fmt.Errorf("reset: %w", err)
	}
	return sc.Execute(ctx, d, row)
}

func outcomeWord(ok bool) string {
	if ok {
		return "Pass"
	}
	return "Fail"
}

// classify compares the observation with the expectation. Rows with a
// known_issue note are inverted: they pass while the documented defect is
// still visible and fail once it disappears.
func classify(expected, observed bool, knownIssue string) (Outcome, string) {
	match := expected == observed
	detail := fmt.Sprintf("expected %s, observed %s", outcomeWord(expected), outcomeWord(observed))
	switch {
	case knownIssue == "" && match:
		return Pass, detail
	case knownIssue == "":
		return Fail, detail
	case match:
		return UnexpectedPass, "known issue appears fixed (" + knownIssue + "): " + detail
	default:
		return ExpectedFailure, "expected failure persists: " + detail
	}
}

func listenerOutcome(o Outcome) listener.Outcome {
	switch o {
	case Pass, ExpectedFailure:
		return listener.Passed
	case Skipped:
		return listener.Skipped
	default:
		return listener.Failed
	}
}
