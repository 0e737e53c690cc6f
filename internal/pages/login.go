package pages

const (
	loginHeading  = ".login-form h2"
	loginEmail    = "input[data-qa='login-email']"
	loginPassword = "input[data-qa='login-password']"
	loginButton   = "button[data-qa='login-button']"
	loginError    = "form[action='/login'] p"

	signupHeading = ".signup-form h2"
	signupName    = "input[data-qa='signup-name']"
	signupEmail   = "input[data-qa='signup-email']"
	signupButton  = "button[data-qa='signup-button']"
	signupError   = "form[action='/signup'] p"
)

const (
	LoginErrorText     = "Your email or password is incorrect!"
	DuplicateEmailText = "Email Address already exist!"
)

// LoginPage is /login, which carries both the login and the new-user
// signup forms.
type LoginPage struct{ base }

func (p *LoginPage) Open() error {
	return p.open("/login")
}

func (p *LoginPage) IsLoaded() bool {
	return p.visible(loginHeading) && p.visible(signupHeading)
}

// LoginHeading returns "Login to your account"
func (p *LoginPage) LoginHeading() (string, error) {
	return p.text(loginHeading)
}

// SignupHeading returns "New User Signup!"
func (p *LoginPage) SignupHeading() (string, error) {
	return p.text(signupHeading)
}

func (p *LoginPage) Login(email, password string) error {
	if err := p.d.WaitVisible(loginEmail, p.wait); err != nil {
		return err
	}
	if err := p.fillAll(loginEmail, email, loginPassword, password); err != nil {
		return err
	}
	return p.d.Click(loginButton)
}

// LoginError returns the inline error under the login form, or ""
func (p *LoginPage) LoginError() string {
	if !p.visible(loginError) {
		return ""
	}
	text, _ := p.text(loginError)
	return text
}

// Signup submits the name/email pair that opens the account form
func (p *LoginPage) Signup(name, email string) error {
	if err := p.d.WaitVisible(signupName, p.wait); err != nil {
		return err
	}
	if err := p.fillAll(signupName, name, signupEmail, email); err != nil {
		return err
	}
	return p.d.Click(signupButton)
}

// SignupError returns the inline error under the signup form, or ""
func (p *LoginPage) SignupError() string {
	if !p.visible(signupError) {
		return ""
	}
	text, _ := p.text(signupError)
	return text
}

// HasSignupError checks for the error without waiting the full window
func (p *LoginPage) HasSignupError() bool {
	n, err := p.d.Count(signupError)
	return err == nil && n > 0
}
