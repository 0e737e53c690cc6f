// Package browsertest provides an in-memory browser.Driver for tests that
// must not start a real browser.
package browsertest

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopcheck-io/shopcheck/internal/browser"
)

// Element is the state of one fake DOM node keyed by selector
type Element struct {
	Visible bool
	Text    string
	Value   string
	Checked bool
	Attrs   map[string]string
	// Texts backs Texts()/Count() for selectors matching several nodes
	Texts []string
}

// Handler reacts to an interaction on a selector
type Handler func(f *FakeDriver, selector string) error

// FakeDriver is a scripted browser.Driver. Elements are keyed by the exact
// selector string page objects use.
type FakeDriver struct {
	mu       sync.Mutex
	url      string
	title    string
	elements map[string]*Element
	onClick  map[string]Handler
	onNav    map[string]Handler
	actions  []string

	Dialogs        bool
	ScreenshotErr  error
	ScreenshotData []byte
	EvaluateResult any
}

func New() *FakeDriver {
	return &FakeDriver{
		url:            "about:blank",
		elements:       map[string]*Element{},
		onClick:        map[string]Handler{},
		onNav:          map[string]Handler{},
		ScreenshotData: []byte("\x89PNG fake"),
	}
}

var _ browser.Driver = (*FakeDriver)(nil)

// Set registers or replaces an element
func (f *FakeDriver) Set(selector string, el Element) *FakeDriver {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := el
	f.elements[selector] = &copied
	return f
}

// Show makes an element visible with the given text
func (f *FakeDriver) Show(selector, text string) *FakeDriver {
	return f.Set(selector, Element{Visible: true, Text: text})
}

// Hide removes an element from the fake DOM
func (f *FakeDriver) Hide(selector string) *FakeDriver {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.elements, selector)
	return f
}

// OnClick installs a handler for clicks on selector
func (f *FakeDriver) OnClick(selector string, h Handler) *FakeDriver {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onClick[selector] = h
	return f
}

// OnNavigate installs a handler run when url is navigated to
func (f *FakeDriver) OnNavigate(url string, h Handler) *FakeDriver {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onNav[url] = h
	return f
}

// Value returns what was last filled into selector
func (f *FakeDriver) Value(selector string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if el, ok := f.elements[selector]; ok {
		return el.Value
	}
	return ""
}

// Actions returns the interaction log ("click #x", "fill #y=v", ...)
func (f *FakeDriver) Actions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.actions...)
}

// Did reports whether an action with the given prefix was recorded
func (f *FakeDriver) Did(prefix string) bool {
	for _, a := range f.Actions() {
		if strings.HasPrefix(a, prefix) {
			return true
		}
	}
	return false
}

func (f *FakeDriver) record(format string, args ...any) {
	f.actions = append(f.actions, fmt.Sprintf(format, args...))
}

func (f *FakeDriver) element(selector string) (*Element, error) {
	el, ok := f.elements[selector]
	if !ok || !el.Visible {
		return nil, fmt.Errorf("%s: %w", selector, browser.ErrElementNotFound)
	}
	return el, nil
}

func (f *FakeDriver) Navigate(url string) error {
	f.mu.Lock()
	f.url = url
	f.record("navigate %s", url)
	h := f.onNav[url]
	f.mu.Unlock()

	if h != nil {
		return h(f, url)
	}
	return nil
}

func (f *FakeDriver) URL() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.url
}

// SetURL changes the current URL without recording a navigation
func (f *FakeDriver) SetURL(url string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.url = url
}

// SetTitle sets the document title
func (f *FakeDriver) SetTitle(title string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.title = title
}

func (f *FakeDriver) Title() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.title, nil
}

func (f *FakeDriver) Click(selector string) error {
	f.mu.Lock()
	if _, err := f.element(selector); err != nil {
		f.mu.Unlock()
		return err
	}
	f.record("click %s", selector)
	h := f.onClick[selector]
	f.mu.Unlock()

	if h != nil {
		return h(f, selector)
	}
	return nil
}

func (f *FakeDriver) Fill(selector, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	el, err := f.element(selector)
	if err != nil {
		return err
	}
	el.Value = value
	f.record("fill %s=%s", selector, value)
	return nil
}

func (f *FakeDriver) Select(selector, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	el, err := f.element(selector)
	if err != nil {
		return err
	}
	el.Value = value
	f.record("select %s=%s", selector, value)
	return nil
}

func (f *FakeDriver) Check(selector string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	el, err := f.element(selector)
	if err != nil {
		return err
	}
	el.Checked = true
	f.record("check %s", selector)
	return nil
}

func (f *FakeDriver) Hover(selector string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := f.element(selector); err != nil {
		return err
	}
	f.record("hover %s", selector)
	return nil
}

func (f *FakeDriver) SetInputFile(selector, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	el, err := f.element(selector)
	if err != nil {
		return err
	}
	el.Value = path
	f.record("upload %s=%s", selector, path)
	return nil
}

func (f *FakeDriver) Text(selector string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	el, err := f.element(selector)
	if err != nil {
		return "", err
	}
	if el.Text == "" && len(el.Texts) > 0 {
		return el.Texts[0], nil
	}
	return el.Text, nil
}

func (f *FakeDriver) Texts(selector string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	el, ok := f.elements[selector]
	if !ok || !el.Visible {
		return nil, nil
	}
	if len(el.Texts) > 0 {
		return append([]string(nil), el.Texts...), nil
	}
	return []string{el.Text}, nil
}

func (f *FakeDriver) Attribute(selector, name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	el, err := f.element(selector)
	if err != nil {
		return "", err
	}
	return el.Attrs[name], nil
}

func (f *FakeDriver) Count(selector string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	el, ok := f.elements[selector]
	if !ok || !el.Visible {
		return 0, nil
	}
	if len(el.Texts) > 0 {
		return len(el.Texts), nil
	}
	return 1, nil
}

// IsVisible never sleeps: the fake DOM is already settled
func (f *FakeDriver) IsVisible(selector string, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	el, ok := f.elements[selector]
	return ok && el.Visible, nil
}

func (f *FakeDriver) WaitVisible(selector string, timeout time.Duration) error {
	visible, _ := f.IsVisible(selector, timeout)
	if !visible {
		return fmt.Errorf("%s after %s: %w", selector, timeout, browser.ErrElementNotFound)
	}
	return nil
}

func (f *FakeDriver) Evaluate(script string) (any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("eval %s", script)
	return f.EvaluateResult, nil
}

func (f *FakeDriver) AcceptDialogs() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Dialogs = true
}

func (f *FakeDriver) Screenshot() ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ScreenshotErr != nil {
		return nil, f.ScreenshotErr
	}
	return append([]byte(nil), f.ScreenshotData...), nil
}

// ErrPanic is a convenience error for handlers simulating a crashed page
var ErrPanic = errors.New("page crashed")
