package helpers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/shopcheck-io/shopcheck/internal/pages"
)

// AuthHelper provides account utilities for tests
type AuthHelper struct {
	site *pages.Site
}

// NewAuthHelper creates a new authentication helper
func NewAuthHelper(site *pages.Site) *AuthHelper {
	return &AuthHelper{site: site}
}

// NewAccount returns a throwaway account with a unique address
func NewAccount(password string) pages.Account {
	id := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return pages.Account{
		Name:       "QA " + id,
		Email:      fmt.Sprintf("shopcheck.%s@example.com", id),
		Title:      "Mr",
		Password:   password,
		BirthDay:   15,
		BirthMonth: 6,
		BirthYear:  1990,
		Newsletter: true,
		Offers:     true,
		FirstName:  "QA",
		LastName:   "Tester",
		Company:    "Shopcheck",
		Address1:   "1 Test Street",
		Address2:   "Unit 2",
		Country:    "Canada",
		State:      "Ontario",
		City:       "Toronto",
		Zipcode:    "M5V 2T6",
		Mobile:     "4165550100",
	}
}

// Register creates acct through the signup flow. The new account is left
// logged in.
func (a *AuthHelper) Register(acct pages.Account) error {
	login := a.site.Login()
	if err := login.Open(); err != nil {
		return fmt.Errorf("failed to navigate to login: %w", err)
	}
	if err := login.Signup(acct.Name, acct.Email); err != nil {
		return fmt.Errorf("signup %s: %w", acct.Email, err)
	}

	form := a.site.Signup()
	if !form.IsLoaded() {
		if msg := login.SignupError(); msg != "" {
			return fmt.Errorf("signup %s: %s", acct.Email, msg)
		}
		return fmt.Errorf("signup %s: account form not shown", acct.Email)
	}
	if err := form.FillAccount(acct); err != nil {
		return fmt.Errorf("account form: %w", err)
	}
	if err := form.CreateAccount(); err != nil {
		return err
	}

	status := a.site.AccountStatus()
	if !status.Created() {
		return fmt.Errorf("account %s was not created", acct.Email)
	}
	return status.Continue()
}

// Login performs login with the given credentials
func (a *AuthHelper) Login(email, password string) error {
	login := a.site.Login()
	if err := login.Open(); err != nil {
		return fmt.Errorf("failed to navigate to login: %w", err)
	}
	if err := login.Login(email, password); err != nil {
		return err
	}
	if a.site.Header().LoggedInAs() == "" {
		if msg := login.LoginError(); msg != "" {
			return fmt.Errorf("login %s: %s", email, msg)
		}
		return fmt.Errorf("login %s: not logged in", email)
	}
	return nil
}

// Logout logs out the current user
func (a *AuthHelper) Logout() error {
	return a.site.Header().Logout()
}

// DeleteAccount removes the logged-in account
func (a *AuthHelper) DeleteAccount() error {
	if err := a.site.Header().DeleteAccount(); err != nil {
		return err
	}
	status := a.site.AccountStatus()
	if !status.Deleted() {
		return errors.New("account was not deleted")
	}
	return status.Continue()
}
