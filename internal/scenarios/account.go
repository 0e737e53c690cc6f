package scenarios

import (
	"context"
	"strings"

	"github.com/shopcheck-io/shopcheck/internal/browser"
	"github.com/shopcheck-io/shopcheck/internal/fixtures"
	"github.com/shopcheck-io/shopcheck/internal/pages"
	"github.com/shopcheck-io/shopcheck/internal/scenario"
)

// loggedOut opens /login with nobody logged in
func loggedOut(site *pages.Site) error {
	login := site.Login()
	if err := login.Open(); err != nil {
		return err
	}
	header := site.Header()
	if !header.IsLoggedIn() {
		return nil
	}
	if err := header.Logout(); err != nil {
		return err
	}
	return login.Open()
}

// Signup submits the "New User Signup!" form. Success means the account
// information form opened; the duplicate-address error is reported as such.
type Signup struct{ base }

func NewSignup(env scenario.Env) *Signup { return &Signup{base{env: env}} }

func (s *Signup) Name() string { return "signup" }

func (s *Signup) Columns() []string { return []string{"name", "email"} }

func (s *Signup) Reset(ctx context.Context, d browser.Driver) error {
	return loggedOut(s.site(d))
}

func (s *Signup) Execute(ctx context.Context, d browser.Driver, row fixtures.Row) (scenario.Observation, error) {
	site := s.site(d)
	login := site.Login()
	if err := login.Signup(row.Get("name"), row.Get("email")); err != nil {
		return scenario.Observation{}, err
	}

	if site.Signup().IsLoaded() {
		return scenario.Observation{Succeeded: true, Detail: "account information form shown"}, nil
	}
	if !login.HasSignupError() {
		return scenario.Observation{Detail: "form was not submitted"}, nil
	}
	msg := login.SignupError()
	if strings.Contains(msg, pages.DuplicateEmailText) {
		return scenario.Observation{Detail: "duplicate address rejected: " + msg}, nil
	}
	return scenario.Observation{Detail: "site reported: " + msg}, nil
}

// Login signs in with the row's credentials. Success means the header shows
// "Logged in as".
type Login struct{ base }

func NewLogin(env scenario.Env) *Login { return &Login{base{env: env}} }

func (l *Login) Name() string { return "login" }

func (l *Login) Columns() []string { return []string{"email", "password"} }

func (l *Login) Reset(ctx context.Context, d browser.Driver) error {
	return loggedOut(l.site(d))
}

func (l *Login) Execute(ctx context.Context, d browser.Driver, row fixtures.Row) (scenario.Observation, error) {
	site := l.site(d)
	login := site.Login()
	if err := login.Login(row.Get("email"), row.Get("password")); err != nil {
		return scenario.Observation{}, err
	}
	if name := site.Header().LoggedInAs(); name != "" {
		return scenario.Observation{Succeeded: true, Detail: "logged in as " + name}, nil
	}
	if msg := login.LoginError(); msg != "" {
		return scenario.Observation{Detail: "site reported: " + msg}, nil
	}
	return scenario.Observation{Detail: "form was not submitted"}, nil
}
