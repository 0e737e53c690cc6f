// Package scenarios holds the row templates for automationexercise.com.
// Each one resets to a known page, applies a fixture row and reports whether
// the page showed its success indicator.
package scenarios

import (
	"github.com/shopcheck-io/shopcheck/internal/browser"
	"github.com/shopcheck-io/shopcheck/internal/pages"
	"github.com/shopcheck-io/shopcheck/internal/scenario"
)

// Register adds every scenario of this package to reg
func Register(reg *scenario.Registry) {
	reg.Register("subscription", "footer subscription form on the home page",
		func(env scenario.Env) scenario.Scenario { return NewSubscription(env, false) })
	reg.Register("cart-subscription", "footer subscription form on the cart page",
		func(env scenario.Env) scenario.Scenario { return NewSubscription(env, true) })
	reg.Register("signup", "new user signup (name and email step)",
		func(env scenario.Env) scenario.Scenario { return NewSignup(env) })
	reg.Register("login", "login with email and password",
		func(env scenario.Env) scenario.Scenario { return NewLogin(env) })
	reg.Register("contact", "contact us form submission",
		func(env scenario.Env) scenario.Scenario { return NewContact(env) })
	reg.Register("search", "product search returns results",
		func(env scenario.Env) scenario.Scenario { return NewSearch(env) })
	reg.Register("review", "product review submission",
		func(env scenario.Env) scenario.Scenario { return NewReview(env) })
}

// Default returns a registry with every scenario registered
func Default() *scenario.Registry {
	reg := scenario.NewRegistry()
	Register(reg)
	return reg
}

type base struct {
	env scenario.Env
}

func (b base) site(d browser.Driver) *pages.Site {
	return pages.New(d, b.env.Site, b.env.Wait)
}
