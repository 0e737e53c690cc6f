package pages

import (
	"fmt"
	"strconv"
)

const (
	accountInfoHeading = "div.login-form h2:has-text('Enter Account Information')"
	accountTitleMr     = "#id_gender1"
	accountTitleMrs    = "#id_gender2"
	accountPassword    = "input[data-qa='password']"
	accountDays        = "select[data-qa='days']"
	accountMonths      = "select[data-qa='months']"
	accountYears       = "select[data-qa='years']"
	accountNewsletter  = "#newsletter"
	accountOptin       = "#optin"
	accountFirstName   = "input[data-qa='first_name']"
	accountLastName    = "input[data-qa='last_name']"
	accountCompany     = "input[data-qa='company']"
	accountAddress1    = "input[data-qa='address']"
	accountAddress2    = "input[data-qa='address2']"
	accountCountry     = "select[data-qa='country']"
	accountState       = "input[data-qa='state']"
	accountCity        = "input[data-qa='city']"
	accountZipcode     = "input[data-qa='zipcode']"
	accountMobile      = "input[data-qa='mobile_number']"
	accountCreate      = "button[data-qa='create-account']"

	accountCreated  = "h2[data-qa='account-created']"
	accountDeleted  = "h2[data-qa='account-deleted']"
	accountContinue = "a[data-qa='continue-button']"
)

// Account is everything the "Enter Account Information" form asks for
type Account struct {
	Name       string `fixture:"name"`
	Email      string `fixture:"email"`
	Title      string `fixture:"title"`
	Password   string `fixture:"password"`
	BirthDay   int    `fixture:"birth_day"`
	BirthMonth int    `fixture:"birth_month"`
	BirthYear  int    `fixture:"birth_year"`
	Newsletter bool   `fixture:"newsletter"`
	Offers     bool   `fixture:"offers"`
	FirstName  string `fixture:"first_name"`
	LastName   string `fixture:"last_name"`
	Company    string `fixture:"company"`
	Address1   string `fixture:"address1"`
	Address2   string `fixture:"address2"`
	Country    string `fixture:"country"`
	State      string `fixture:"state"`
	City       string `fixture:"city"`
	Zipcode    string `fixture:"zipcode"`
	Mobile     string `fixture:"mobile"`
}

// SignupPage is the account information form reached after LoginPage.Signup
type SignupPage struct{ base }

func (p *SignupPage) IsLoaded() bool {
	return p.visible(accountInfoHeading)
}

// Name returns the name carried over from the signup step
func (p *SignupPage) Name() (string, error) {
	return p.d.Attribute("input[data-qa='name']", "value")
}

// FillAccount completes the form without submitting it
func (p *SignupPage) FillAccount(a Account) error {
	if err := p.d.WaitVisible(accountPassword, p.wait); err != nil {
		return err
	}

	title := accountTitleMr
	if a.Title == "Mrs" || a.Title == "Mrs." {
		title = accountTitleMrs
	}
	if err := p.d.Check(title); err != nil {
		return err
	}
	if err := p.d.Fill(accountPassword, a.Password); err != nil {
		return err
	}

	if a.BirthDay > 0 {
		if err := p.d.Select(accountDays, strconv.Itoa(a.BirthDay)); err != nil {
			return err
		}
	}
	if a.BirthMonth > 0 {
		if err := p.d.Select(accountMonths, strconv.Itoa(a.BirthMonth)); err != nil {
			return err
		}
	}
	if a.BirthYear > 0 {
		if err := p.d.Select(accountYears, strconv.Itoa(a.BirthYear)); err != nil {
			return err
		}
	}

	if a.Newsletter {
		if err := p.d.Check(accountNewsletter); err != nil {
			return err
		}
	}
	if a.Offers {
		if err := p.d.Check(accountOptin); err != nil {
			return err
		}
	}

	if err := p.fillAll(
		accountFirstName, a.FirstName,
		accountLastName, a.LastName,
		accountCompany, a.Company,
		accountAddress1, a.Address1,
		accountAddress2, a.Address2,
	); err != nil {
		return err
	}

	if a.Country != "" {
		if err := p.d.Select(accountCountry, a.Country); err != nil {
			return fmt.Errorf("country %q: %w", a.Country, err)
		}
	}

	return p.fillAll(
		accountState, a.State,
		accountCity, a.City,
		accountZipcode, a.Zipcode,
		accountMobile, a.Mobile,
	)
}

func (p *SignupPage) CreateAccount() error {
	return p.d.Click(accountCreate)
}

// AccountStatusPage covers the "Account Created!" / "Account Deleted!" pages
type AccountStatusPage struct{ base }

func (p *AccountStatusPage) Created() bool {
	return p.visible(accountCreated)
}

func (p *AccountStatusPage) Deleted() bool {
	return p.visible(accountDeleted)
}

func (p *AccountStatusPage) Heading() (string, error) {
	if p.visible(accountCreated) {
		return p.text(accountCreated)
	}
	return p.text(accountDeleted)
}

func (p *AccountStatusPage) Continue() error {
	return p.clickWhenVisible(accountContinue)
}
