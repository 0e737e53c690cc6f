package pages

const (
	contactHeading = "div.contact-form h2"
	contactName    = "input[data-qa='name']"
	contactEmail   = "input[data-qa='email']"
	contactSubject = "input[data-qa='subject']"
	contactMessage = "textarea[data-qa='message']"
	contactUpload  = "input[name='upload_file']"
	contactSubmit  = "input[data-qa='submit-button']"
	contactSuccess = "#contact-page .status.alert-success"
	contactHome    = "#form-section a.btn-success"
)

const ContactSuccessText = "Success! Your details have been submitted successfully."

// ContactMessage is one submission of the "Get In Touch" form
type ContactMessage struct {
	Name       string `fixture:"name"`
	Email      string `fixture:"email"`
	Subject    string `fixture:"subject"`
	Message    string `fixture:"message"`
	Attachment string `fixture:"attachment"`
}

// ContactPage is /contact_us
type ContactPage struct{ base }

func (p *ContactPage) Open() error {
	return p.open("/contact_us")
}

// Heading returns "GET IN TOUCH"
func (p *ContactPage) Heading() (string, error) {
	return p.text(contactHeading)
}

// Submit fills the form and presses Submit. The site asks for confirmation
// through a JS confirm dialog, which is accepted.
func (p *ContactPage) Submit(m ContactMessage) error {
	if err := p.d.WaitVisible(contactName, p.wait); err != nil {
		return err
	}
	if err := p.fillAll(
		contactName, m.Name,
		contactEmail, m.Email,
		contactSubject, m.Subject,
		contactMessage, m.Message,
	); err != nil {
		return err
	}
	if m.Attachment != "" {
		if err := p.d.SetInputFile(contactUpload, m.Attachment); err != nil {
			return err
		}
	}
	p.d.AcceptDialogs()
	return p.d.Click(contactSubmit)
}

func (p *ContactPage) Succeeded() bool {
	return p.visible(contactSuccess)
}

func (p *ContactPage) SuccessMessage() (string, error) {
	return p.text(contactSuccess)
}

// BackHome clicks the "Home" button under the success message
func (p *ContactPage) BackHome() error {
	return p.clickWhenVisible(contactHome)
}
