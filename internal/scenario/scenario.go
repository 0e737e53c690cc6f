// Package scenario runs one scripted browser interaction per fixture row and
// classifies each row against its expected outcome.
package scenario

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopcheck-io/shopcheck/internal/browser"
	"github.com/shopcheck-io/shopcheck/internal/config"
	"github.com/shopcheck-io/shopcheck/internal/fixtures"
)

// Observation is what the page showed after a row's interaction
type Observation struct {
	// Succeeded is true when the success indicator appeared
	Succeeded bool
	// Detail is free text for the report, e.g. the error message shown
	Detail string
}

// Scenario is a row template: reset to a known page, then apply the row
type Scenario interface {
	Name() string
	// Columns lists the fixture columns the scenario reads
	Columns() []string
	Reset(ctx context.Context, d browser.Driver) error
	Execute(ctx context.Context, d browser.Driver, row fixtures.Row) (Observation, error)
}

// Env is what scenario factories are built from
type Env struct {
	Site config.SiteConfig
	Wait time.Duration
}

// Factory builds a scenario
type Factory func(env Env) Scenario

// Registry maps scenario names to factories
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	help      map[string]string
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{factories: map[string]Factory{}, help: map[string]string{}}
}

// Register adds a factory. Registering a name twice replaces it.
func (r *Registry) Register(name, description string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := strings.ToLower(name)
	r.factories[key] = f
	r.help[key] = description
}

// New builds the named scenario
func (r *Registry) New(name string, env Env) (Scenario, error) {
	r.mu.RLock()
	f, ok := r.factories[strings.ToLower(name)]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown scenario %q (have %s)", name, strings.Join(r.Names(), ", "))
	}
	return f(env), nil
}

// Names lists registered scenarios alphabetically
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for n := range r.factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Description returns the help text of a scenario
func (r *Registry) Description(name string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.help[strings.ToLower(name)]
}
