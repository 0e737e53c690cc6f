package pages

import "strings"

const (
	navHome       = "#header a[href='/']"
	navProducts   = "#header a[href='/products']"
	navCart       = "#header a[href='/view_cart']"
	navLogin      = "#header a[href='/login']"
	navLogout     = "#header a[href='/logout']"
	navDelete     = "#header a[href='/delete_account']"
	navTestCases  = "#header a[href='/test_cases']"
	navContact    = "#header a[href='/contact_us']"
	navLoggedInAs = "#header a:has-text('Logged in as')"
)

// Header is the top navigation bar shared by every page
type Header struct{ base }

func (h *Header) GoHome() error        { return h.clickWhenVisible(navHome) }
func (h *Header) GoProducts() error    { return h.clickWhenVisible(navProducts) }
func (h *Header) GoCart() error        { return h.clickWhenVisible(navCart) }
func (h *Header) GoLogin() error       { return h.clickWhenVisible(navLogin) }
func (h *Header) GoTestCases() error   { return h.clickWhenVisible(navTestCases) }
func (h *Header) GoContact() error     { return h.clickWhenVisible(navContact) }
func (h *Header) Logout() error        { return h.clickWhenVisible(navLogout) }
func (h *Header) DeleteAccount() error { return h.clickWhenVisible(navDelete) }

// LoggedInAs returns the user name shown in "Logged in as <name>", or ""
// when nobody is logged in.
func (h *Header) LoggedInAs() string {
	if !h.visible(navLoggedInAs) {
		return ""
	}
	text, err := h.d.Text(navLoggedInAs)
	if err != nil {
		return ""
	}
	_, name, found := strings.Cut(text, "Logged in as")
	if !found {
		return ""
	}
	return strings.TrimSpace(name)
}

// IsLoggedIn reports whether the logout link is present
func (h *Header) IsLoggedIn() bool {
	n, err := h.d.Count(navLogout)
	return err == nil && n > 0
}
