package scenarios

import (
	"context"
	"strings"

	"github.com/shopcheck-io/shopcheck/internal/browser"
	"github.com/shopcheck-io/shopcheck/internal/fixtures"
	"github.com/shopcheck-io/shopcheck/internal/pages"
	"github.com/shopcheck-io/shopcheck/internal/scenario"
)

// Subscription submits the footer newsletter form. Success means the
// "successfully subscribed" alert appeared; any other alert text (such as a
// duplicate notice) or a browser validation block counts as rejected.
type Subscription struct {
	base
	fromCart bool
}

func NewSubscription(env scenario.Env, fromCart bool) *Subscription {
	return &Subscription{base: base{env: env}, fromCart: fromCart}
}

func (s *Subscription) Name() string {
	if s.fromCart {
		return "cart-subscription"
	}
	return "subscription"
}

func (s *Subscription) Columns() []string { return []string{"email"} }

func (s *Subscription) Reset(ctx context.Context, d browser.Driver) error {
	site := s.site(d)
	if s.fromCart {
		return site.Cart().Open()
	}
	return site.Home().Open()
}

func (s *Subscription) Execute(ctx context.Context, d browser.Driver, row fixtures.Row) (scenario.Observation, error) {
	site := s.site(d)
	home := site.Home()
	email := row.Get("email")

	var err error
	if s.fromCart {
		err = site.Cart().Subscribe(email)
	} else {
		err = home.Subscribe(email)
	}
	if err != nil {
		return scenario.Observation{}, err
	}

	if !home.SubscriptionSucceeded(site.Wait()) {
		if msg := home.ValidationMessage(); msg != "" {
			return scenario.Observation{Detail: "browser rejected the address: " + msg}, nil
		}
		return scenario.Observation{Detail: "no confirmation shown"}, nil
	}

	msg := home.SubscriptionMessage()
	if !strings.Contains(strings.ToLower(msg), strings.ToLower(pages.SubscriptionSuccessText)) {
		return scenario.Observation{Detail: "site replied: " + msg}, nil
	}
	return scenario.Observation{Succeeded: true, Detail: "site confirmed: " + msg}, nil
}
