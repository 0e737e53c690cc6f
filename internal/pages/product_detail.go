package pages

import (
	"strconv"
	"strings"
)

const (
	detailInfo      = ".product-information"
	detailName      = ".product-information h2"
	detailCategory  = ".product-information p:has-text('Category')"
	detailPrice     = ".product-information span span"
	detailAvail     = ".product-information p:has-text('Availability')"
	detailCondition = ".product-information p:has-text('Condition')"
	detailBrand     = ".product-information p:has-text('Brand')"
	detailQuantity  = "#quantity"
	detailAddToCart = ".product-information button.cart"

	reviewHeading = "a[href='#reviews']"
	reviewName    = "#name"
	reviewEmail   = "#email"
	reviewText    = "#review"
	reviewSubmit  = "#button-review"
	reviewSuccess = "#review-section .alert-success"
)

const ReviewSuccessText = "Thank you for your review."

// ProductInfo is what the detail page shows about one product
type ProductInfo struct {
	Name         string
	Category     string
	Price        string
	Availability string
	Condition    string
	Brand        string
}

// Review is one "Write Your Review" submission
type Review struct {
	Name   string `fixture:"name"`
	Email  string `fixture:"email"`
	Review string `fixture:"review"`
}

// ProductDetailPage is /product_details/<id>
type ProductDetailPage struct{ base }

func (p *ProductDetailPage) Open(id int) error {
	return p.open("/product_details/" + strconv.Itoa(id))
}

func (p *ProductDetailPage) IsLoaded() bool {
	return p.visible(detailInfo)
}

// Info reads every labelled field; "Category: Women > Tops" becomes
// "Women > Tops".
func (p *ProductDetailPage) Info() (ProductInfo, error) {
	var info ProductInfo
	var err error
	if info.Name, err = p.text(detailName); err != nil {
		return info, err
	}
	fields := []struct {
		sel string
		dst *string
	}{
		{detailCategory, &info.Category},
		{detailPrice, &info.Price},
		{detailAvail, &info.Availability},
		{detailCondition, &info.Condition},
		{detailBrand, &info.Brand},
	}
	for _, f := range fields {
		text, err := p.text(f.sel)
		if err != nil {
			return info, err
		}
		*f.dst = labelValue(text)
	}
	return info, nil
}

func labelValue(text string) string {
	if _, v, ok := strings.Cut(text, ":"); ok {
		return strings.TrimSpace(v)
	}
	return strings.TrimSpace(text)
}

func (p *ProductDetailPage) SetQuantity(n int) error {
	return p.d.Fill(detailQuantity, strconv.Itoa(n))
}

// AddToCart adds the product and waits for the confirmation modal
func (p *ProductDetailPage) AddToCart() error {
	if err := p.clickWhenVisible(detailAddToCart); err != nil {
		return err
	}
	return p.d.WaitVisible(cartModal, p.wait)
}

func (p *ProductDetailPage) ViewCart() error {
	return p.clickWhenVisible(cartModalViewCart)
}

func (p *ProductDetailPage) HasReviewForm() bool {
	return p.visible(reviewHeading)
}

func (p *ProductDetailPage) WriteReview(r Review) error {
	if err := p.d.WaitVisible(reviewName, p.wait); err != nil {
		return err
	}
	if err := p.fillAll(reviewName, r.Name, reviewEmail, r.Email, reviewText, r.Review); err != nil {
		return err
	}
	return p.d.Click(reviewSubmit)
}

func (p *ProductDetailPage) ReviewSucceeded() bool {
	return p.visible(reviewSuccess)
}
