package pages

import "strings"

const (
	checkoutDelivery = "#address_delivery"
	checkoutInvoice  = "#address_invoice"
	checkoutComment  = "textarea[name='message']"
	checkoutPlace    = "a[href='/payment']"

	paymentName   = "input[data-qa='name-on-card']"
	paymentNumber = "input[data-qa='card-number']"
	paymentCVC    = "input[data-qa='cvc']"
	paymentMonth  = "input[data-qa='expiry-month']"
	paymentYear   = "input[data-qa='expiry-year']"
	paymentPay    = "button[data-qa='pay-button']"
	orderPlaced   = "h2[data-qa='order-placed']"
	orderInvoice  = "a[href^='/download_invoice/']"
	orderContinue = "a[data-qa='continue-button']"
)

// Card is test payment data
type Card struct {
	Name   string `fixture:"card_name"`
	Number string `fixture:"card_number"`
	CVC    string `fixture:"cvc"`
	Month  string `fixture:"expiry_month"`
	Year   string `fixture:"expiry_year"`
}

// CheckoutPage is /checkout
type CheckoutPage struct{ base }

// DeliveryAddress returns the address block lines
func (p *CheckoutPage) DeliveryAddress() ([]string, error) {
	return p.lines(checkoutDelivery)
}

func (p *CheckoutPage) InvoiceAddress() ([]string, error) {
	return p.lines(checkoutInvoice)
}

func (p *CheckoutPage) lines(selector string) ([]string, error) {
	text, err := p.text(selector)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out, nil
}

// PlaceOrder writes the order comment and moves to payment
func (p *CheckoutPage) PlaceOrder(comment string) error {
	if err := p.d.WaitVisible(checkoutComment, p.wait); err != nil {
		return err
	}
	if err := p.d.Fill(checkoutComment, comment); err != nil {
		return err
	}
	return p.d.Click(checkoutPlace)
}

// PaymentPage is /payment
type PaymentPage struct{ base }

func (p *PaymentPage) Pay(c Card) error {
	if err := p.d.WaitVisible(paymentName, p.wait); err != nil {
		return err
	}
	if err := p.fillAll(
		paymentName, c.Name,
		paymentNumber, c.Number,
		paymentCVC, c.CVC,
		paymentMonth, c.Month,
		paymentYear, c.Year,
	); err != nil {
		return err
	}
	return p.d.Click(paymentPay)
}

func (p *PaymentPage) OrderPlaced() bool {
	return p.visible(orderPlaced)
}

func (p *PaymentPage) DownloadInvoice() error {
	return p.clickWhenVisible(orderInvoice)
}

func (p *PaymentPage) Continue() error {
	return p.clickWhenVisible(orderContinue)
}

// TestCasesPage is /test_cases
type TestCasesPage struct{ base }

const testCasesHeading = "h2.title b"

func (p *TestCasesPage) Open() error {
	return p.open("/test_cases")
}

func (p *TestCasesPage) IsLoaded() bool {
	return p.onPath("/test_cases") && p.visible(testCasesHeading)
}
