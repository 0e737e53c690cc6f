package pages

import (
	"fmt"
	"time"
)

const (
	homeSlider         = "#slider-carousel"
	homeFeaturesItems  = ".features_items"
	homeRecommended    = ".recommended_items"
	homeRecommendedAdd = ".recommended_items .item.active a.add-to-cart"
	homeCategories     = "#accordian"
	homeBrands         = ".brands_products"
	homeScrollUp       = "#scrollUp"
	homeHeroText       = "#slider-carousel .item.active h2"

	subscriptionHeading = "#footer .single-widget h2"
	subscriptionEmail   = "#susbscribe_email"
	subscriptionButton  = "#subscribe"
	subscriptionSuccess = "#success-subscribe"
)

// SubscriptionSuccessText is the alert the footer shows after subscribing
const SubscriptionSuccessText = "You have been successfully subscribed!"

// HomePage is the landing page, including the subscription footer that
// appears on every page.
type HomePage struct{ base }

func (p *HomePage) Open() error {
	return p.open("/")
}

func (p *HomePage) IsLoaded() bool {
	return p.visible(homeFeaturesItems)
}

func (p *HomePage) HeroText() (string, error) {
	return p.text(homeHeroText)
}

// SubscriptionHeading returns the footer heading ("SUBSCRIPTION")
func (p *HomePage) SubscriptionHeading() (string, error) {
	return p.text(subscriptionHeading)
}

// Subscribe types email into the footer form and submits it
func (p *HomePage) Subscribe(email string) error {
	if err := p.d.WaitVisible(subscriptionEmail, p.wait); err != nil {
		return fmt.Errorf("subscription form: %w", err)
	}
	if err := p.d.Fill(subscriptionEmail, email); err != nil {
		return err
	}
	return p.d.Click(subscriptionButton)
}

// SubscriptionSucceeded waits up to timeout for the success alert.
// Browser-side validation of the email field blocks submission, in which
// case no alert ever appears and the result is false.
func (p *HomePage) SubscriptionSucceeded(timeout time.Duration) bool {
	ok, err := p.d.IsVisible(subscriptionSuccess, timeout)
	return err == nil && ok
}

// SubscriptionMessage returns the alert text, or "" when absent
func (p *HomePage) SubscriptionMessage() string {
	text, err := p.d.Text(subscriptionSuccess)
	if err != nil {
		return ""
	}
	return text
}

// ValidationMessage returns the browser's constraint-validation message for
// the subscription field, e.g. "Please include an '@' in the email address".
func (p *HomePage) ValidationMessage() string {
	v, err := p.d.Evaluate(`document.querySelector('#susbscribe_email') ? document.querySelector('#susbscribe_email').validationMessage : ''`)
	if err != nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

func (p *HomePage) HasCategories() bool  { return p.visible(homeCategories) }
func (p *HomePage) HasBrands() bool      { return p.visible(homeBrands) }
func (p *HomePage) HasRecommended() bool { return p.visible(homeRecommended) }

// AddRecommendedToCart adds the first visible recommended item
func (p *HomePage) AddRecommendedToCart() error {
	return p.clickWhenVisible(homeRecommendedAdd)
}

func (p *HomePage) ScrollToBottom() error {
	_, err := p.d.Evaluate("window.scrollTo(0, document.body.scrollHeight)")
	return err
}

func (p *HomePage) ScrollToTop() error {
	_, err := p.d.Evaluate("window.scrollTo(0, 0)")
	return err
}

// ScrollUpWithArrow clicks the floating arrow in the bottom right corner
func (p *HomePage) ScrollUpWithArrow() error {
	return p.clickWhenVisible(homeScrollUp)
}

// ScrollOffset returns window.pageYOffset
func (p *HomePage) ScrollOffset() (float64, error) {
	v, err := p.d.Evaluate("window.pageYOffset")
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("unexpected scroll offset type %T", v)
	}
}

func (p *HomePage) HasSlider() bool { return p.visible(homeSlider) }
