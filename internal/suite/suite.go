// Package suite loads suites.yaml, the manifest binding suite names to a
// scenario and a fixture file.
package suite

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/shopcheck-io/shopcheck/internal/fixtures"
	"github.com/shopcheck-io/shopcheck/internal/scenario"
)

var (
	ErrInvalidManifest = errors.New("invalid suite manifest")
	ErrSuiteNotFound   = errors.New("suite not found")
)

// Suite is one manifest entry
type Suite struct {
	Name              string            `yaml:"name"`
	Description       string            `yaml:"description"`
	Scenario          string            `yaml:"scenario"`
	Fixture           string            `yaml:"fixture"`
	Sheet             string            `yaml:"sheet"`
	Required          []string          `yaml:"required"`
	ScreenshotsOnPass bool              `yaml:"screenshots_on_pass"`
	Vars              map[string]string `yaml:"vars"`
}

// Manifest is a parsed suites.yaml
type Manifest struct {
	Path   string
	Suites []Suite
}

type manifestFile struct {
	Suites []Suite `yaml:"suites"`
}

// Load reads and validates path. Relative fixture paths are resolved against
// the manifest's directory.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m.Path = path

	dir := filepath.Dir(path)
	for i := range m.Suites {
		if !filepath.IsAbs(m.Suites[i].Fixture) {
			m.Suites[i].Fixture = filepath.Join(dir, m.Suites[i].Fixture)
		}
	}
	return m, nil
}

// Parse validates and decodes manifest content
func Parse(data []byte) (*Manifest, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidManifest)
	}
	if err := validate(doc); err != nil {
		return nil, err
	}

	var file manifestFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}

	seen := map[string]bool{}
	for _, s := range file.Suites {
		if seen[s.Name] {
			return nil, fmt.Errorf("%w: duplicate suite %q", ErrInvalidManifest, s.Name)
		}
		seen[s.Name] = true
	}
	return &Manifest{Suites: file.Suites}, nil
}

// Find returns the suite called name
func (m *Manifest) Find(name string) (Suite, error) {
	for _, s := range m.Suites {
		if s.Name == name {
			return s, nil
		}
	}
	return Suite{}, fmt.Errorf("%q: %w", name, ErrSuiteNotFound)
}

// Names lists suite names alphabetically
func (m *Manifest) Names() []string {
	names := make([]string, 0, len(m.Suites))
	for _, s := range m.Suites {
		names = append(names, s.Name)
	}
	sort.Strings(names)
	return names
}

// Check verifies every suite names a registered scenario
func (m *Manifest) Check(reg *scenario.Registry) error {
	known := map[string]bool{}
	for _, n := range reg.Names() {
		known[n] = true
	}
	var errs []error
	for _, s := range m.Suites {
		if !known[s.Scenario] {
			errs = append(errs, fmt.Errorf("suite %s: unknown scenario %q", s.Name, s.Scenario))
		}
	}
	return errors.Join(errs...)
}

// Table opens the suite's fixture and checks its required columns
func (s Suite) Table(opts ...fixtures.Option) (*fixtures.Table, error) {
	t, err := fixtures.Open(s.Fixture, s.Sheet, opts...)
	if err != nil {
		return nil, err
	}
	if err := t.Require(s.Required...); err != nil {
		return nil, fmt.Errorf("suite %s: %w", s.Name, err)
	}
	return t, nil
}

// Job builds a runnable job from the suite
func (s Suite) Job(reg *scenario.Registry, env scenario.Env, opts ...fixtures.Option) (scenario.Job, error) {
	sc, err := reg.New(s.Scenario, env)
	if err != nil {
		return scenario.Job{}, fmt.Errorf("suite %s: %w", s.Name, err)
	}
	table, err := s.Table(opts...)
	if err != nil {
		return scenario.Job{}, err
	}
	return scenario.Job{
		Suite:         s.Name,
		Description:   s.Description,
		Scenario:      sc,
		Table:         table,
		CaptureOnPass: s.ScreenshotsOnPass,
		Vars:          s.Vars,
	}, nil
}
