package pages

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	cartRows        = "#cart_info_table tbody tr"
	cartEmpty       = "#empty_cart"
	cartCheckout    = "a.check_out"
	cartRegisterFm  = "#checkoutModal a[href='/login']"
	cartRowSel      = "#cart_info_table tbody tr#product-%d"
	cartRowName     = " .cart_description h4 a"
	cartRowPrice    = " .cart_price p"
	cartRowQuantity = " .cart_quantity button"
	cartRowTotal    = " .cart_total_price"
	cartRowDelete   = " a.cart_quantity_delete"
)

// CartItem is one row of the cart table
type CartItem struct {
	ID       int
	Name     string
	Price    string
	Quantity int
	Total    string
}

// CartPage is /view_cart
type CartPage struct{ base }

func (p *CartPage) Open() error {
	return p.open("/view_cart")
}

func (p *CartPage) IsEmpty() bool {
	n, err := p.d.Count(cartRows)
	if err == nil && n == 0 {
		return true
	}
	ok, err := p.d.IsVisible(cartEmpty, 0)
	return err == nil && ok
}

// Item reads the row of product id
func (p *CartPage) Item(id int) (CartItem, error) {
	row := fmt.Sprintf(cartRowSel, id)
	item := CartItem{ID: id}
	if err := p.d.WaitVisible(row, p.wait); err != nil {
		return item, err
	}

	var err error
	if item.Name, err = p.text(row + cartRowName); err != nil {
		return item, err
	}
	if item.Price, err = p.text(row + cartRowPrice); err != nil {
		return item, err
	}
	if item.Total, err = p.text(row + cartRowTotal); err != nil {
		return item, err
	}
	qty, err := p.text(row + cartRowQuantity)
	if err != nil {
		return item, err
	}
	if item.Quantity, err = strconv.Atoi(strings.TrimSpace(qty)); err != nil {
		return item, fmt.Errorf("quantity %q: %w", qty, err)
	}
	return item, nil
}

// HasItem reports whether product id is in the cart
func (p *CartPage) HasItem(id int) bool {
	n, err := p.d.Count(fmt.Sprintf(cartRowSel, id))
	return err == nil && n > 0
}

// Remove deletes product id from the cart and waits for the row to go away
func (p *CartPage) Remove(id int) error {
	row := fmt.Sprintf(cartRowSel, id)
	if err := p.clickWhenVisible(row + cartRowDelete); err != nil {
		return err
	}
	for i := 0; i < 10; i++ {
		if !p.HasItem(id) {
			return nil
		}
		if _, err := p.d.IsVisible(cartEmpty, p.wait/10); err != nil {
			return err
		}
	}
	return fmt.Errorf("product %d still in cart after removal", id)
}

func (p *CartPage) ProceedToCheckout() error {
	return p.clickWhenVisible(cartCheckout)
}

// RegisterFromCheckout follows "Register / Login" in the guest checkout modal
func (p *CartPage) RegisterFromCheckout() error {
	return p.clickWhenVisible(cartRegisterFm)
}

// Subscribe uses the footer subscription form, which the cart page shares
// with the home page.
func (p *CartPage) Subscribe(email string) error {
	return (&HomePage{base: p.base}).Subscribe(email)
}
