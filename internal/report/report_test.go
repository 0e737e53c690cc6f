package report

import (
	"encoding/xml"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clock() func() time.Time {
	t := time.Date(2026, 2, 3, 9, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(250 * time.Millisecond)
		return t
	}
}

func newReport(t *testing.T, opts Options) *Report {
	t.Helper()
	if opts.Name == "" {
		opts.Name = "Subscription Suite"
	}
	if opts.Dir == "" {
		opts.Dir = t.TempDir()
	}
	opts.Now = clock()
	opts.Logger = log.New(io.Discard, "", 0)
	r, err := New(opts)
	require.NoError(t, err)
	return r
}

func TestNewPaths(t *testing.T) {
	r := newReport(t, Options{Name: "Login Suite", Dir: "out"})
	assert.Equal(t, filepath.Join("out", "Login_Suite.html"), r.Path)
	assert.Empty(t, r.JUnitPath)
	assert.NotEmpty(t, r.ID)

	ts := newReport(t, Options{Name: "login", Dir: "out", Timestamped: true, JUnit: true})
	assert.Equal(t, filepath.Join("out", "login_2026-02-03_09-00-00.html"), ts.Path)
	assert.Equal(t, filepath.Join("out", "login_2026-02-03_09-00-00.xml"), ts.JUnitPath)

	_, err := New(Options{Name: "  "})
	assert.Error(t, err)
}

func TestEntryStatusIsWorst(t *testing.T) {
	r := newReport(t, Options{})

	e := r.CreateEntry("row 1", "")
	assert.Equal(t, StatusInfo, e.Status())
	e.Info("navigated home")
	e.Pass("subscribed")
	assert.Equal(t, StatusPass, e.Status())
	e.Warning("screenshot failed")
	assert.Equal(t, StatusWarning, e.Status())
	e.Fail("mismatch")
	e.Pass("late pass")
	assert.Equal(t, StatusFail, e.Status())
	assert.Len(t, e.Lines(), 5)

	r.CreateEntry("row 2", "").Skip("cancelled")
	r.CreateEntry("row 3", "").Pass("ok")

	assert.Equal(t, Summary{Total: 3, Passed: 1, Failed: 1, Skipped: 1}, r.Summary())
}

func TestFlushIsIdempotent(t *testing.T) {
	r := newReport(t, Options{})
	e := r.CreateEntry("unique-entry-name", "home page subscription")
	e.Pass("subscribed **qa@example.com**")
	e.Log(StatusFail, "mismatch", &Image{Title: "failure", Base64: "iVBORw0KGgo="})

	require.NoError(t, r.Flush())
	first, err := os.ReadFile(r.Path)
	require.NoError(t, err)
	info, err := os.Stat(r.Path)
	require.NoError(t, err)

	require.NoError(t, r.Flush())
	second, err := os.ReadFile(r.Path)
	require.NoError(t, err)
	again, err := os.Stat(r.Path)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, info.ModTime(), again.ModTime(), "unchanged report is not rewritten")
	assert.Equal(t, 1, strings.Count(string(second), "unique-entry-name"))
	assert.Equal(t, 1, strings.Count(string(second), "<img "))
	assert.Contains(t, string(second), "<strong>qa@example.com</strong>")
	assert.Contains(t, string(second), "data:image/png;base64,iVBORw0KGgo=")

	t.Run("rewritten after change", func(t *testing.T) {
		r.CreateEntry("second-entry", "").Pass("ok")
		require.NoError(t, r.Flush())
		third, err := os.ReadFile(r.Path)
		require.NoError(t, err)
		assert.Contains(t, string(third), "second-entry")
		assert.Equal(t, 1, strings.Count(string(third), "unique-entry-name"))
	})

	t.Run("file removed externally is restored", func(t *testing.T) {
		require.NoError(t, os.Remove(r.Path))
		require.NoError(t, r.Flush())
		assert.FileExists(t, r.Path)
	})
}

func TestCloseMakesFlushNoop(t *testing.T) {
	r := newReport(t, Options{})
	r.CreateEntry("before close", "").Pass("ok")
	require.NoError(t, r.Close())
	assert.True(t, r.Closed())
	require.NoError(t, r.Close())

	r.CreateEntry("after close", "").Pass("ok")
	require.NoError(t, r.Flush())

	content, err := os.ReadFile(r.Path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "before close")
	assert.NotContains(t, string(content), "after close")
}

func TestMessagesAreSanitized(t *testing.T) {
	r := newReport(t, Options{})
	r.CreateEntry("xss", "").Fail(`<script>alert(1)</script> see [site](https://automationexercise.com)`)
	require.NoError(t, r.Flush())

	content, err := os.ReadFile(r.Path)
	require.NoError(t, err)
	assert.NotContains(t, string(content), "<script>alert(1)</script>")
	assert.Contains(t, string(content), `href="https://automationexercise.com"`)
}

func TestRenderMessageKeepsMarkup(t *testing.T) {
	out := renderMessage(`click #subscribe: <div id="aswift_1_host"> intercepts pointer events`)
	assert.Contains(t, out, "&lt;div id=")
	assert.Contains(t, out, "aswift_1_host")
	assert.Contains(t, out, "intercepts pointer events")
	assert.NotContains(t, out, "<div")

	out = renderMessage(`<script>alert(1)</script> see [site](https://automationexercise.com)`)
	assert.Contains(t, out, "&lt;script&gt;alert(1)&lt;/script&gt;")
	assert.Contains(t, out, `href="https://automationexercise.com"`)

	out = renderMessage("expected **Subscribed** & got nothing")
	assert.Contains(t, out, "<strong>Subscribed</strong>")
	assert.Contains(t, out, "&amp; got nothing")
}

func TestJUnit(t *testing.T) {
	r := newReport(t, Options{Name: "login", JUnit: true})
	r.CreateEntry("row 1", "").Pass("logged in")
	r.CreateEntry("row 2", "").Fail("error shown")
	r.CreateEntry("row 3", "").Skip("cancelled")
	require.NoError(t, r.Flush())

	raw, err := os.ReadFile(r.JUnitPath)
	require.NoError(t, err)

	var suite junitSuite
	require.NoError(t, xml.Unmarshal(raw, &suite))
	assert.Equal(t, "login", suite.Name)
	assert.Equal(t, 3, suite.Tests)
	assert.Equal(t, 1, suite.Failures)
	assert.Equal(t, 1, suite.Skipped)
	require.Len(t, suite.Cases, 3)
	require.NotNil(t, suite.Cases[1].Failure)
	assert.Equal(t, "error shown", suite.Cases[1].Failure.Message)
	assert.Nil(t, suite.Cases[0].Failure)
}

func TestConcurrentEntries(t *testing.T) {
	r := newReport(t, Options{})
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			e := r.CreateEntry(fmt.Sprintf("entry-%02d", i), "")
			e.Info("start")
			e.Pass("done")
			_ = r.Flush()
		}(i)
	}
	wg.Wait()
	require.NoError(t, r.Close())

	assert.Equal(t, 20, r.Summary().Passed)
	content, err := os.ReadFile(r.Path)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		assert.Equal(t, 1, strings.Count(string(content), fmt.Sprintf("entry-%02d<", i)))
	}
}

func TestStatusLabelConcurrent(t *testing.T) {
	want := map[Status]string{
		StatusInfo:    "Info",
		StatusPass:    "Pass",
		StatusSkip:    "Skip",
		StatusWarning: "Warning",
		StatusFail:    "Fail",
	}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				for s, label := range want {
					assert.Equal(t, label, s.Label())
				}
			}
		}()
	}
	wg.Wait()
}

func TestStatus(t *testing.T) {
	assert.Equal(t, "Warning", StatusWarning.Label())
	assert.Equal(t, StatusFail, StatusPass.Worse(StatusFail))
	s, ok := ParseStatus(" SKIP ")
	assert.True(t, ok)
	assert.Equal(t, StatusSkip, s)
	_, ok = ParseStatus("bogus")
	assert.False(t, ok)
}
