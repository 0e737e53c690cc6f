// Package screenshot captures browser images into the artifact store.
package screenshot

import (
	"context"
	"encoding/base64"
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/shopcheck-io/shopcheck/internal/browser"
	"github.com/shopcheck-io/shopcheck/internal/storage"
)

// TimestampLayout is appended to every file name
const TimestampLayout = "2006-01-02_15-04-05.000"

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Target names where a capture lands:
// <suite>/<folder>/<pass|fail>/<name>_<timestamp>.png
type Target struct {
	Suite  string
	Folder string
	Name   string
	Passed bool
}

// Shot is a stored capture
type Shot struct {
	Key      string
	Path     string
	Base64   string
	Checksum string
	Taken    time.Time
}

// Capturer takes screenshots and stores them
type Capturer struct {
	backend storage.Backend
	now     func() time.Time
}

// New creates a capturer writing through backend
func New(backend storage.Backend) *Capturer {
	return &Capturer{backend: backend, now: time.Now}
}

// NewFilesystem creates a capturer rooted at dir
func NewFilesystem(dir string) (*Capturer, error) {
	b, err := storage.NewFilesystemBackend(dir)
	if err != nil {
		return nil, fmt.Errorf("screenshot store: %w", err)
	}
	return New(b), nil
}

// Backend returns the underlying artifact store
func (c *Capturer) Backend() storage.Backend { return c.backend }

// Key builds the storage key for a target at time ts
func Key(t Target, ts time.Time) string {
	outcome := "fail"
	if t.Passed {
		outcome = "pass"
	}
	name := sanitize(t.Name, "screenshot")
	return path.Join(
		sanitize(t.Suite, "default"),
		sanitize(t.Folder, "general"),
		outcome,
		fmt.Sprintf("%s_%s.png", name, ts.Format(TimestampLayout)),
	)
}

func sanitize(s, fallback string) string {
	s = strings.Trim(unsafeChars.ReplaceAllString(strings.TrimSpace(s), "_"), "._")
	if s == "" {
		return fallback
	}
	return s
}

// Capture grabs the current page from d and stores it. Errors are returned
// to the caller; report code records them as warnings.
func (c *Capturer) Capture(ctx context.Context, d browser.Driver, t Target) (*Shot, error) {
	if d == nil {
		return nil, fmt.Errorf("capture %s: no active browser", t.Name)
	}
	data, err := d.Screenshot()
	if err != nil {
		return nil, fmt.Errorf("capture %s: %w", t.Name, err)
	}

	taken := c.now()
	ref, err := c.backend.Store(ctx, &storage.Artifact{
		Key:         Key(t, taken),
		ContentType: "image/png",
		Content:     data,
		CreatedTime: taken,
		Metadata: map[string]string{
			"suite":  t.Suite,
			"folder": t.Folder,
			"name":   t.Name,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("store screenshot %s: %w", t.Name, err)
	}

	return &Shot{
		Key:      ref.Key,
		Path:     ref.Location,
		Base64:   base64.StdEncoding.EncodeToString(data),
		Checksum: ref.Checksum,
		Taken:    taken,
	}, nil
}
