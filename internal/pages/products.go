package pages

import (
	"fmt"
	"strings"
)

const (
	productsHeading     = ".features_items h2.title"
	productsSearchInput = "#search_product"
	productsSearchBtn   = "#submit_search"
	productsCards       = ".features_items .productinfo p"
	productsAddToCart   = ".features_items .productinfo a.add-to-cart"
	productsViewLinks   = ".features_items .choose a[href^='/product_details/']"
	productsCategory    = "#accordian a[href='#%s']"
	productsSubCategory = "#%s a:has-text('%s')"
	productsBrand       = ".brands-name a[href='/brand_products/%s']"

	cartModal            = "#cartModal"
	cartModalContinue    = "#cartModal button.close-modal"
	cartModalViewCart    = "#cartModal a[href='/view_cart']"
	productDetailsLinkFm = "a[href='/product_details/%d']"
)

// ProductsPage is /products plus the category and brand listings that
// share its layout.
type ProductsPage struct{ base }

func (p *ProductsPage) Open() error {
	return p.open("/products")
}

// Heading returns the listing title, e.g. "ALL PRODUCTS" or "SEARCHED PRODUCTS"
func (p *ProductsPage) Heading() (string, error) {
	return p.text(productsHeading)
}

func (p *ProductsPage) Search(term string) error {
	if err := p.d.WaitVisible(productsSearchInput, p.wait); err != nil {
		return err
	}
	if err := p.d.Fill(productsSearchInput, term); err != nil {
		return err
	}
	return p.d.Click(productsSearchBtn)
}

// Names returns the product names currently listed
func (p *ProductsPage) Names() ([]string, error) {
	names, err := p.d.Texts(productsCards)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out, nil
}

// Count returns how many product cards are listed
func (p *ProductsPage) Count() (int, error) {
	return p.d.Count(productsCards)
}

// OpenProduct opens the detail page of the product with the given id
func (p *ProductsPage) OpenProduct(id int) error {
	return p.clickWhenVisible(fmt.Sprintf(productDetailsLinkFm, id))
}

// OpenFirstProduct follows the first "View Product" link
func (p *ProductsPage) OpenFirstProduct() error {
	return p.clickWhenVisible(productsViewLinks)
}

// AddToCart adds the product with the given id from the listing
func (p *ProductsPage) AddToCart(id int) error {
	sel := fmt.Sprintf("%s[data-product-id='%d']", productsAddToCart, id)
	if err := p.d.Hover(sel); err != nil {
		return err
	}
	if err := p.d.Click(sel); err != nil {
		return err
	}
	return p.d.WaitVisible(cartModal, p.wait)
}

func (p *ProductsPage) ContinueShopping() error {
	return p.clickWhenVisible(cartModalContinue)
}

func (p *ProductsPage) ViewCart() error {
	return p.clickWhenVisible(cartModalViewCart)
}

// OpenCategory expands a top-level category (Women, Men, Kids) and opens
// one of its sub categories.
func (p *ProductsPage) OpenCategory(category, sub string) error {
	if err := p.clickWhenVisible(fmt.Sprintf(productsCategory, category)); err != nil {
		return err
	}
	return p.clickWhenVisible(fmt.Sprintf(productsSubCategory, category, sub))
}

// OpenBrand opens the listing of a brand, e.g. "Polo" or "Madame"
func (p *ProductsPage) OpenBrand(brand string) error {
	return p.clickWhenVisible(fmt.Sprintf(productsBrand, brand))
}
