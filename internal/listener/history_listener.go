package listener

import (
	"context"
	"database/sql"
	"log"
	"os"
	"sync"
	"time"

	"github.com/shopcheck-io/shopcheck/internal/history"
)

// Recorder is the part of history.Store the listener needs
type Recorder interface {
	RecordRun(ctx context.Context, run *history.Run) error
	RecordTest(ctx context.Context, res *history.TestResult) error
	FinishRun(ctx context.Context, run *history.Run) error
}

// HistoryListener persists runs and results. Storage errors are logged and
// never fail the suite.
type HistoryListener struct {
	Base
	rec    Recorder
	logger *log.Logger

	mu   sync.Mutex
	runs map[*Suite]*history.Run
}

// NewHistoryListener writes through rec
func NewHistoryListener(rec Recorder) *HistoryListener {
	return &HistoryListener{
		rec:    rec,
		logger: log.New(os.Stdout, "[history] ", log.LstdFlags),
		runs:   map[*Suite]*history.Run{},
	}
}

func (l *HistoryListener) OnSuiteStart(s *Suite) {
	run := &history.Run{
		ID:         s.RunID,
		Suite:      s.Name,
		StartedAt:  s.Started.UTC(),
		ReportPath: s.ReportPath,
	}
	if err := l.rec.RecordRun(context.Background(), run); err != nil {
		l.logger.Printf("Cannot record run %s: %v", s.RunID, err)
		return
	}
	l.mu.Lock()
	l.runs[s] = run
	l.mu.Unlock()
}

func (l *HistoryListener) record(t *Test) {
	l.mu.Lock()
	_, ok := l.runs[t.Suite]
	l.mu.Unlock()
	if !ok {
		return
	}

	res := &history.TestResult{
		RunID:      t.Suite.RunID,
		Name:       t.Name,
		Outcome:    string(t.Outcome),
		Message:    t.Message,
		DurationMS: t.Duration.Milliseconds(),
	}
	if res.Message == "" && t.Err != nil {
		res.Message = t.Err.Error()
	}
	if t.Shot != nil {
		res.Screenshot = t.Shot.Path
	}
	if err := l.rec.RecordTest(context.Background(), res); err != nil {
		l.logger.Printf("Cannot record %s: %v", t.Name, err)
	}
}

func (l *HistoryListener) OnTestSuccess(t *Test) { l.record(t) }

func (l *HistoryListener) OnTestFailure(t *Test) { l.record(t) }

func (l *HistoryListener) OnTestSkip(t *Test) { l.record(t) }

func (l *HistoryListener) OnSuiteFinish(s *Suite) {
	l.mu.Lock()
	run, ok := l.runs[s]
	delete(l.runs, s)
	l.mu.Unlock()
	if !ok {
		return
	}

	counts := s.Counts()
	run.Passed, run.Failed, run.Skipped = counts.Passed, counts.Failed, counts.Skipped
	run.ReportPath = s.ReportPath
	if s.Canceled {
		run.Status = history.StatusCanceled
	}
	finished := s.Finished
	if finished.IsZero() {
		finished = time.Now()
	}
	run.FinishedAt = sql.NullTime{Time: finished.UTC(), Valid: true}
	if err := l.rec.FinishRun(context.Background(), run); err != nil {
		l.logger.Printf("Cannot finish run %s: %v", s.RunID, err)
	}
}
