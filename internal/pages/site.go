// Package pages holds page objects for automationexercise.com. Each page
// groups its locators and the thin actions a test performs on it.
package pages

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopcheck-io/shopcheck/internal/browser"
	"github.com/shopcheck-io/shopcheck/internal/config"
)

// DefaultWait bounds every explicit wait a page object performs
const DefaultWait = 10 * time.Second

// Site is the entry point to all page objects of one browser session
type Site struct {
	d    browser.Driver
	site config.SiteConfig
	wait time.Duration
}

// New binds page objects to a driver. A zero wait uses DefaultWait.
func New(d browser.Driver, site config.SiteConfig, wait time.Duration) *Site {
	if wait <= 0 {
		wait = DefaultWait
	}
	return &Site{d: d, site: site, wait: wait}
}

func (s *Site) Driver() browser.Driver { return s.d }
func (s *Site) Wait() time.Duration     { return s.wait }

func (s *Site) base() base { return base{d: s.d, site: s.site, wait: s.wait} }

func (s *Site) Header() *Header                   { return &Header{base: s.base()} }
func (s *Site) Home() *HomePage                   { return &HomePage{base: s.base()} }
func (s *Site) Login() *LoginPage                 { return &LoginPage{base: s.base()} }
func (s *Site) Signup() *SignupPage               { return &SignupPage{base: s.base()} }
func (s *Site) AccountStatus() *AccountStatusPage { return &AccountStatusPage{base: s.base()} }
func (s *Site) Contact() *ContactPage             { return &ContactPage{base: s.base()} }
func (s *Site) Products() *ProductsPage           { return &ProductsPage{base: s.base()} }
func (s *Site) ProductDetail() *ProductDetailPage { return &ProductDetailPage{base: s.base()} }
func (s *Site) Cart() *CartPage                   { return &CartPage{base: s.base()} }
func (s *Site) Checkout() *CheckoutPage           { return &CheckoutPage{base: s.base()} }
func (s *Site) Payment() *PaymentPage             { return &PaymentPage{base: s.base()} }
func (s *Site) TestCases() *TestCasesPage         { return &TestCasesPage{base: s.base()} }

// base carries what every page object needs
type base struct {
	d    browser.Driver
	site config.SiteConfig
	wait time.Duration
}

func (b base) open(path string) error {
	return b.d.Navigate(b.site.URL(path))
}

func (b base) visible(selector string) bool {
	ok, err := b.d.IsVisible(selector, b.wait)
	return err == nil && ok
}

// text waits for selector and returns its trimmed text
func (b base) text(selector string) (string, error) {
	if err := b.d.WaitVisible(selector, b.wait); err != nil {
		return "", err
	}
	t, err := b.d.Text(selector)
	return strings.TrimSpace(t), err
}

func (b base) clickWhenVisible(selector string) error {
	if err := b.d.WaitVisible(selector, b.wait); err != nil {
		return err
	}
	return b.d.Click(selector)
}

// fillAll fills selector/value pairs in order, skipping nothing: an empty
// value clears the field.
func (b base) fillAll(pairs ...string) error {
	if len(pairs)%2 != 0 {
		return fmt.Errorf("fillAll: odd number of arguments")
	}
	for i := 0; i < len(pairs); i += 2 {
		if err := b.d.Fill(pairs[i], pairs[i+1]); err != nil {
			return err
		}
	}
	return nil
}

func (b base) onPath(path string) bool {
	return strings.HasSuffix(strings.TrimRight(b.d.URL(), "/"), strings.TrimRight(path, "/"))
}
