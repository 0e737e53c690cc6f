// Package browser owns the browser session and exposes the narrow Driver
// contract page objects and listeners work against.
package browser

import (
	"errors"
	"time"
)

// ErrElementNotFound is returned when a required element does not become
// visible within the wait window.
var ErrElementNotFound = errors.New("element not found")

// Driver is the set of element-level interactions page objects use.
// Selectors are Playwright selectors (CSS, text=, :has-text()).
type Driver interface {
	Navigate(url string) error
	URL() string
	Title() (string, error)

	Click(selector string) error
	Fill(selector, value string) error
	Select(selector, value string) error
	Check(selector string) error
	Hover(selector string) error
	SetInputFile(selector, path string) error

	Text(selector string) (string, error)
	Texts(selector string) ([]string, error)
	Attribute(selector, name string) (string, error)
	Count(selector string) (int, error)

	// IsVisible waits up to timeout and reports whether the element showed up.
	// A timeout is not an error.
	IsVisible(selector string, timeout time.Duration) (bool, error)
	// WaitVisible is IsVisible for required elements: absence is ErrElementNotFound.
	WaitVisible(selector string, timeout time.Duration) error

	Evaluate(script string) (any, error)
	// AcceptDialogs makes the page accept alert/confirm/prompt dialogs.
	AcceptDialogs()
	Screenshot() ([]byte, error)
}

// DriverProvider is implemented by anything holding an active browser
// session. Listeners use it to reach the driver of the test that just ran.
type DriverProvider interface {
	Driver() Driver
}

// ProviderFunc adapts a function to DriverProvider
type ProviderFunc func() Driver

func (f ProviderFunc) Driver() Driver { return f() }

// Static wraps a fixed driver as a DriverProvider
func Static(d Driver) DriverProvider {
	return ProviderFunc(func() Driver { return d })
}
