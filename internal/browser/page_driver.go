package browser

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
)

// pageDriver implements Driver on top of a Playwright page
type pageDriver struct {
	page          playwright.Page
	dialogsOnce   sync.Once
	navigateUntil *playwright.WaitUntilState
}

// NewPageDriver wraps an open Playwright page
func NewPageDriver(page playwright.Page) Driver {
	return &pageDriver{
		page:          page,
		navigateUntil: playwright.WaitUntilStateDomcontentloaded,
	}
}

func (d *pageDriver) first(selector string) playwright.Locator {
	return d.page.Locator(selector).First()
}

func (d *pageDriver) Navigate(url string) error {
	if _, err := d.page.Goto(url, playwright.PageGotoOptions{WaitUntil: d.navigateUntil}); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	return nil
}

func (d *pageDriver) URL() string {
	return d.page.URL()
}

func (d *pageDriver) Title() (string, error) {
	return d.page.Title()
}

func (d *pageDriver) Click(selector string) error {
	if err := d.first(selector).Click(); err != nil {
		return fmt.Errorf("click %s: %w", selector, wrapTimeout(err))
	}
	return nil
}

func (d *pageDriver) Fill(selector, value string) error {
	if err := d.first(selector).Fill(value); err != nil {
		return fmt.Errorf("fill %s: %w", selector, wrapTimeout(err))
	}
	return nil
}

func (d *pageDriver) Select(selector, value string) error {
	_, err := d.first(selector).SelectOption(playwright.SelectOptionValues{
		Values: playwright.StringSlice(value),
	})
	if err != nil {
		return fmt.Errorf("select %q in %s: %w", value, selector, wrapTimeout(err))
	}
	return nil
}

func (d *pageDriver) Check(selector string) error {
	if err := d.first(selector).Check(); err != nil {
		return fmt.Errorf("check %s: %w", selector, wrapTimeout(err))
	}
	return nil
}

func (d *pageDriver) Hover(selector string) error {
	if err := d.first(selector).Hover(); err != nil {
		return fmt.Errorf("hover %s: %w", selector, wrapTimeout(err))
	}
	return nil
}

func (d *pageDriver) SetInputFile(selector, path string) error {
	if err := d.first(selector).SetInputFiles(path); err != nil {
		return fmt.Errorf("upload %s into %s: %w", path, selector, wrapTimeout(err))
	}
	return nil
}

func (d *pageDriver) Text(selector string) (string, error) {
	text, err := d.first(selector).InnerText()
	if err != nil {
		return "", fmt.Errorf("read text of %s: %w", selector, wrapTimeout(err))
	}
	return text, nil
}

func (d *pageDriver) Texts(selector string) ([]string, error) {
	texts, err := d.page.Locator(selector).AllInnerTexts()
	if err != nil {
		return nil, fmt.Errorf("read texts of %s: %w", selector, err)
	}
	return texts, nil
}

func (d *pageDriver) Attribute(selector, name string) (string, error) {
	value, err := d.first(selector).GetAttribute(name)
	if err != nil {
		return "", fmt.Errorf("read %s of %s: %w", name, selector, wrapTimeout(err))
	}
	return value, nil
}

func (d *pageDriver) Count(selector string) (int, error) {
	return d.page.Locator(selector).Count()
}

func (d *pageDriver) IsVisible(selector string, timeout time.Duration) (bool, error) {
	err := d.first(selector).WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	if err == nil {
		return true, nil
	}
	if errors.Is(err, playwright.ErrTimeout) {
		return false, nil
	}
	return false, fmt.Errorf("wait for %s: %w", selector, err)
}

func (d *pageDriver) WaitVisible(selector string, timeout time.Duration) error {
	visible, err := d.IsVisible(selector, timeout)
	if err != nil {
		return err
	}
	if !visible {
		return fmt.Errorf("%s after %s: %w", selector, timeout, ErrElementNotFound)
	}
	return nil
}

func (d *pageDriver) Evaluate(script string) (any, error) {
	return d.page.Evaluate(script)
}

func (d *pageDriver) AcceptDialogs() {
	d.dialogsOnce.Do(func() {
		d.page.OnDialog(func(dialog playwright.Dialog) {
			_ = dialog.Accept()
		})
	})
}

func (d *pageDriver) Screenshot() ([]byte, error) {
	return d.page.Screenshot(playwright.PageScreenshotOptions{
		FullPage: playwright.Bool(false),
	})
}

// wrapTimeout maps Playwright timeouts onto ErrElementNotFound so callers can
// branch on absence without importing playwright.
func wrapTimeout(err error) error {
	if errors.Is(err, playwright.ErrTimeout) {
		return errors.Join(ErrElementNotFound, err)
	}
	return err
}
