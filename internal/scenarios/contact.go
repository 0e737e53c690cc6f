package scenarios

import (
	"context"
	"fmt"

	"github.com/shopcheck-io/shopcheck/internal/browser"
	"github.com/shopcheck-io/shopcheck/internal/fixtures"
	"github.com/shopcheck-io/shopcheck/internal/pages"
	"github.com/shopcheck-io/shopcheck/internal/scenario"
)

// Contact submits the "Get In Touch" form; an optional attachment column
// names a file to upload
type Contact struct{ base }

func NewContact(env scenario.Env) *Contact { return &Contact{base{env: env}} }

func (c *Contact) Name() string { return "contact" }

func (c *Contact) Columns() []string { return []string{"name", "email", "subject", "message"} }

func (c *Contact) Reset(ctx context.Context, d browser.Driver) error {
	return c.site(d).Contact().Open()
}

func (c *Contact) Execute(ctx context.Context, d browser.Driver, row fixtures.Row) (scenario.Observation, error) {
	var msg pages.ContactMessage
	if err := fixtures.Decode(row, &msg); err != nil {
		return scenario.Observation{}, fmt.Errorf("contact row: %w", err)
	}

	page := c.site(d).Contact()
	if err := page.Submit(msg); err != nil {
		return scenario.Observation{}, err
	}
	if page.Succeeded() {
		text, _ := page.SuccessMessage()
		return scenario.Observation{Succeeded: true, Detail: "site confirmed: " + text}, nil
	}
	return scenario.Observation{Detail: "no confirmation shown"}, nil
}
