package scenarios

import (
	"strconv"
	"strings"

	"github.com/shopcheck-io/shopcheck/internal/browser/browsertest"
	"github.com/shopcheck-io/shopcheck/internal/config"
	"github.com/shopcheck-io/shopcheck/internal/pages"
)

// Selectors the simulated shop renders. They match the page objects.
const (
	subEmail   = "#susbscribe_email"
	subButton  = "#subscribe"
	subSuccess = "#success-subscribe"

	loginEmail     = "input[data-qa='login-email']"
	loginPassword  = "input[data-qa='login-password']"
	loginButton    = "button[data-qa='login-button']"
	loginError     = "form[action='/login'] p"
	signupName     = "input[data-qa='signup-name']"
	signupEmail    = "input[data-qa='signup-email']"
	signupButton   = "button[data-qa='signup-button']"
	signupError    = "form[action='/signup'] p"
	accountHeading = "div.login-form h2:has-text('Enter Account Information')"
	navLogout      = "#header a[href='/logout']"
	navLoggedInAs  = "#header a:has-text('Logged in as')"

	contactName    = "input[data-qa='name']"
	contactEmail   = "input[data-qa='email']"
	contactSubject = "input[data-qa='subject']"
	contactMessage = "textarea[data-qa='message']"
	contactUpload  = "input[name='upload_file']"
	contactSubmit  = "input[data-qa='submit-button']"
	contactSuccess = "#contact-page .status.alert-success"

	searchInput     = "#search_product"
	searchButton    = "#submit_search"
	productsHeading = ".features_items h2.title"
	productCards    = ".features_items .productinfo p"

	reviewName    = "#name"
	reviewEmail   = "#email"
	reviewText    = "#review"
	reviewButton  = "#button-review"
	reviewSuccess = "#review-section .alert-success"
)

var catalog = []string{"Blue Top", "Men Tshirt", "Sleeveless Dress", "Stylish Dress", "Soft Stretch Jeans", "Winter Top"}

type account struct {
	name     string
	password string
}

// shop simulates automationexercise.com on a FakeDriver. Forms apply
// browser-style email validation: a rejected value never reaches the
// server and leaves a validation message behind.
type shop struct {
	cfg config.SiteConfig
	d   *browsertest.FakeDriver

	// fixedDuplicates makes a repeated subscription show a notice instead
	// of the success alert
	fixedDuplicates bool
	subscribers     map[string]bool
	accounts        map[string]account
	loggedIn        string
	shown           []string
}

func newShop() *shop {
	s := &shop{
		cfg:         config.SiteConfig{BaseURL: "https://shop.test"},
		d:           browsertest.New(),
		subscribers: map[string]bool{},
		accounts: map[string]account{
			"user@example.com": {name: "Existing User", password: "secret"},
		},
	}

	s.d.OnNavigate(s.cfg.URL("/"), func(f *browsertest.FakeDriver, _ string) error {
		s.render(s.footer)
		return nil
	})
	s.d.OnNavigate(s.cfg.URL("/view_cart"), func(f *browsertest.FakeDriver, _ string) error {
		s.render(s.footer)
		return nil
	})
	s.d.OnNavigate(s.cfg.URL("/login"), func(f *browsertest.FakeDriver, _ string) error {
		s.render(s.footer, s.loginForms)
		return nil
	})
	s.d.OnNavigate(s.cfg.URL("/contact_us"), func(f *browsertest.FakeDriver, _ string) error {
		s.render(s.footer, s.contactForm)
		return nil
	})
	s.d.OnNavigate(s.cfg.URL("/products"), func(f *browsertest.FakeDriver, _ string) error {
		s.render(s.footer, s.listing)
		return nil
	})
	for id := 1; id <= 3; id++ {
		s.d.OnNavigate(s.cfg.URL("/product_details/"+strconv.Itoa(id)), func(f *browsertest.FakeDriver, _ string) error {
			s.render(s.footer, s.reviewForm)
			return nil
		})
	}

	s.d.OnClick(subButton, s.subscribe)
	s.d.OnClick(loginButton, s.login)
	s.d.OnClick(signupButton, s.signup)
	s.d.OnClick(navLogout, s.logout)
	s.d.OnClick(contactSubmit, s.contact)
	s.d.OnClick(searchButton, s.search)
	s.d.OnClick(reviewButton, s.review)
	return s
}

func (s *shop) show(selector, text string) {
	s.d.Show(selector, text)
	s.shown = append(s.shown, selector)
}

func (s *shop) showAll(selector string, texts []string) {
	s.d.Set(selector, browsertest.Element{Visible: true, Texts: texts})
	s.shown = append(s.shown, selector)
}

// render replaces the page with the given sections plus the header
func (s *shop) render(sections ...func()) {
	for _, sel := range s.shown {
		s.d.Hide(sel)
	}
	s.shown = nil
	s.d.EvaluateResult = ""
	if s.loggedIn != "" {
		s.show(navLogout, "Logout")
		s.show(navLoggedInAs, "Logged in as "+s.accounts[s.loggedIn].name)
	}
	for _, section := range sections {
		section()
	}
}

func (s *shop) footer() {
	s.show(subEmail, "")
	s.show(subButton, "")
}

func (s *shop) loginForms() {
	for _, sel := range []string{loginEmail, loginPassword, loginButton, signupName, signupEmail, signupButton} {
		s.show(sel, "")
	}
}

func (s *shop) contactForm() {
	for _, sel := range []string{contactName, contactEmail, contactSubject, contactMessage, contactUpload, contactSubmit} {
		s.show(sel, "")
	}
}

func (s *shop) listing() {
	s.show(searchInput, "")
	s.show(searchButton, "")
	s.show(productsHeading, "ALL PRODUCTS")
	s.showAll(productCards, catalog)
}

func (s *shop) reviewForm() {
	for _, sel := range []string{reviewName, reviewEmail, reviewText, reviewButton} {
		s.show(sel, "")
	}
}

// validate mimics <input type="email" required>; "" means valid
func validate(v string) string {
	switch {
	case v == "":
		return "Please fill out this field."
	case !strings.Contains(v, "@"):
		return "Please include an '@' in the email address. '" + v + "' is missing an '@'."
	}
	local, domain, _ := strings.Cut(v, "@")
	switch {
	case local == "":
		return "Please enter a part followed by '@'."
	case domain == "":
		return "Please enter a part following '@'. '" + v + "' is incomplete."
	case strings.Contains(domain, "@"):
		return "A part following '@' should not contain the symbol '@'."
	case len(v) > 100:
		return "Please shorten this text to 100 characters or less."
	}
	return ""
}

func (s *shop) reject(msg string) bool {
	if msg == "" {
		return false
	}
	s.d.EvaluateResult = msg
	return true
}

func (s *shop) subscribe(f *browsertest.FakeDriver, _ string) error {
	email := f.Value(subEmail)
	if s.reject(validate(email)) {
		return nil
	}
	if s.subscribers[email] && s.fixedDuplicates {
		s.show(subSuccess, "Email already subscribed!")
		return nil
	}
	s.subscribers[email] = true
	s.show(subSuccess, pages.SubscriptionSuccessText)
	return nil
}

func (s *shop) login(f *browsertest.FakeDriver, _ string) error {
	email, password := f.Value(loginEmail), f.Value(loginPassword)
	if s.reject(validate(email)) {
		return nil
	}
	if password == "" {
		s.reject("Please fill out this field.")
		return nil
	}
	acc, ok := s.accounts[email]
	if !ok || acc.password != password {
		s.show(loginError, pages.LoginErrorText)
		return nil
	}
	s.loggedIn = email
	s.render(s.footer)
	return nil
}

func (s *shop) signup(f *browsertest.FakeDriver, _ string) error {
	name, email := f.Value(signupName), f.Value(signupEmail)
	if name == "" {
		s.reject("Please fill out this field.")
		return nil
	}
	if s.reject(validate(email)) {
		return nil
	}
	if _, exists := s.accounts[email]; exists {
		s.show(signupError, pages.DuplicateEmailText)
		return nil
	}
	s.render(s.footer)
	s.show(accountHeading, "ENTER ACCOUNT INFORMATION")
	return nil
}

func (s *shop) logout(f *browsertest.FakeDriver, _ string) error {
	s.loggedIn = ""
	return f.Navigate(s.cfg.URL("/login"))
}

func (s *shop) contact(f *browsertest.FakeDriver, _ string) error {
	if f.Value(contactName) == "" || s.reject(validate(f.Value(contactEmail))) {
		return nil
	}
	s.show(contactSuccess, pages.ContactSuccessText)
	return nil
}

func (s *shop) search(f *browsertest.FakeDriver, _ string) error {
	term := strings.ToLower(f.Value(searchInput))
	var found []string
	for _, name := range catalog {
		if strings.Contains(strings.ToLower(name), term) {
			found = append(found, name)
		}
	}
	s.d.Hide(productCards)
	s.show(productsHeading, "SEARCHED PRODUCTS")
	if len(found) > 0 {
		s.showAll(productCards, found)
	}
	return nil
}

func (s *shop) review(f *browsertest.FakeDriver, _ string) error {
	if f.Value(reviewName) == "" || f.Value(reviewText) == "" || s.reject(validate(f.Value(reviewEmail))) {
		return nil
	}
	s.show(reviewSuccess, pages.ReviewSuccessText)
	return nil
}
