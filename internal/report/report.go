// Package report collects per-test log lines for a suite run and renders
// them to a self-contained HTML file (plus optional JUnit XML).
package report

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const fileTimestamp = "2006-01-02_15-04-05"

// Options configures a report
type Options struct {
	Name        string
	Title       string
	Dir         string
	Timestamped bool
	JUnit       bool
	Logger      *log.Logger
	Now         func() time.Time
}

// Image is attached to at most one log line. Base64 content is embedded in
// the HTML; otherwise Path is linked.
type Image struct {
	Title  string
	Path   string
	Base64 string
}

// Line is one status-tagged message
type Line struct {
	Status  Status
	Message string
	Image   *Image
	Time    time.Time
}

// Entry is the record of one test inside a report
type Entry struct {
	ID          string
	Name        string
	Description string
	Started     time.Time

	report *Report
	lines  []Line
}

// Report is one suite run
type Report struct {
	ID        string
	Name      string
	Title     string
	Started   time.Time
	Path      string
	JUnitPath string

	opts    Options
	logger  *log.Logger
	mu      sync.Mutex
	entries []*Entry
	dirty   bool
	flushed bool
	closed  bool
}

// Summary counts entries by their worst status
type Summary struct {
	Total    int
	Passed   int
	Failed   int
	Skipped  int
	Warnings int
	Info     int
}

// New creates a report. The output path is fixed at creation time so later
// flushes overwrite the same file.
func New(opts Options) (*Report, error) {
	if strings.TrimSpace(opts.Name) == "" {
		return nil, fmt.Errorf("report name is required")
	}
	if opts.Dir == "" {
		opts.Dir = "reports"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Title == "" {
		opts.Title = opts.Name
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(os.Stdout, "[report] ", log.LstdFlags)
	}

	started := opts.Now()
	base := fileName(opts.Name)
	if opts.Timestamped {
		base += "_" + started.Format(fileTimestamp)
	}

	r := &Report{
		ID:      uuid.NewString(),
		Name:    opts.Name,
		Title:   opts.Title,
		Started: started,
		Path:    filepath.Join(opts.Dir, base+".html"),
		opts:    opts,
		logger:  logger,
		dirty:   true,
	}
	if opts.JUnit {
		r.JUnitPath = filepath.Join(opts.Dir, base+".xml")
	}
	return r, nil
}

func fileName(name string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

// CreateEntry adds a named entry
func (r *Report) CreateEntry(name, description string) *Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := &Entry{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		Started:     r.opts.Now(),
		report:      r,
	}
	r.entries = append(r.entries, e)
	r.dirty = true
	return e
}

// Entries returns the entries in creation order
func (r *Report) Entries() []*Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*Entry(nil), r.entries...)
}

// Summary counts entries by status
func (r *Report) Summary() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.summaryLocked()
}

func (r *Report) summaryLocked() Summary {
	var s Summary
	for _, e := range r.entries {
		s.Total++
		switch e.statusLocked() {
		case StatusPass:
			s.Passed++
		case StatusFail:
			s.Failed++
		case StatusSkip:
			s.Skipped++
		case StatusWarning:
			s.Warnings++
		default:
			s.Info++
		}
	}
	return s
}

// Log appends a line. img may be nil.
func (e *Entry) Log(status Status, message string, img *Image) {
	r := e.report
	r.mu.Lock()
	defer r.mu.Unlock()
	e.lines = append(e.lines, Line{Status: status, Message: message, Image: img, Time: r.opts.Now()})
	r.dirty = true
}

func (e *Entry) Pass(message string) { e.Log(StatusPass, message, nil) }

func (e *Entry) Fail(message string) { e.Log(StatusFail, message, nil) }

func (e *Entry) Skip(message string) { e.Log(StatusSkip, message, nil) }

func (e *Entry) Warning(message string) { e.Log(StatusWarning, message, nil) }

func (e *Entry) Info(message string) { e.Log(StatusInfo, message, nil) }

// Lines returns a copy of the entry's lines
func (e *Entry) Lines() []Line {
	e.report.mu.Lock()
	defer e.report.mu.Unlock()
	return append([]Line(nil), e.lines...)
}

// Status is the worst status logged; an entry with no lines is info
func (e *Entry) Status() Status {
	e.report.mu.Lock()
	defer e.report.mu.Unlock()
	return e.statusLocked()
}

func (e *Entry) statusLocked() Status {
	s := StatusInfo
	for _, l := range e.lines {
		s = s.Worse(l.Status)
	}
	return s
}

func (e *Entry) durationLocked() time.Duration {
	if len(e.lines) == 0 {
		return 0
	}
	return e.lines[len(e.lines)-1].Time.Sub(e.Started)
}

// Flush writes the report to disk. Flushing an unchanged report does nothing,
// and flushing after Close is a no-op.
func (r *Report) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.flushLocked()
}

func (r *Report) flushLocked() error {
	if r.closed {
		return nil
	}
	if !r.dirty {
		if _, err := os.Stat(r.Path); err == nil {
			return nil
		}
	}

	if err := os.MkdirAll(filepath.Dir(r.Path), 0755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}

	html, err := r.renderHTML()
	if err != nil {
		return err
	}
	if err := writeFile(r.Path, []byte(html)); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if r.JUnitPath != "" {
		xml, err := r.renderJUnit()
		if err != nil {
			return err
		}
		if err := writeFile(r.JUnitPath, xml); err != nil {
			return fmt.Errorf("write junit: %w", err)
		}
	}

	if !r.flushed {
		r.logger.Printf("Report %s written to %s", r.Name, r.Path)
	}
	r.flushed = true
	r.dirty = false
	return nil
}

// writeFile replaces path atomically so readers never see half a report
func writeFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".report-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Close flushes one last time. Later Flush calls do nothing.
func (r *Report) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	err := r.flushLocked()
	r.closed = true
	return err
}

// Closed reports whether Close has been called
func (r *Report) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}
