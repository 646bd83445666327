package uidriver

import (
	"fmt"
	"time"
)

// Page bundles the locators of one screen under semantic field names and
// composes session calls into named actions, keeping raw locators out of
// test logic. The field table is built explicitly in the constructor; there
// is no annotation or reflection-based binding.
//
// A Page holds no state beyond the reference to its owning Session. It
// delegates all waiting and resolution to the Session and asserts no
// post-conditions of its own.
type Page struct {
	session Session
	name    string
	fields  map[string]Locator
	timeout time.Duration
}

// NewPage builds a page over the session with the given field table. The
// name is used in error messages only.
func NewPage(s Session, name string, fields map[string]Locator) *Page {
	copied := make(map[string]Locator, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	return &Page{
		session: s,
		name:    name,
		fields:  copied,
		timeout: DefaultWaitTimeout,
	}
}

// WithTimeout sets the wait timeout used by the page's actions and returns
// the page.
func (p *Page) WithTimeout(timeout time.Duration) *Page {
	p.timeout = timeout
	return p
}

// Locator returns the locator bound to the field name.
func (p *Page) Locator(field string) (Locator, error) {
	loc, ok := p.fields[field]
	if !ok {
		return Locator{}, fmt.Errorf("page %s: no field %q", p.name, field)
	}
	return loc, nil
}

// Element waits for the field's locator to resolve and returns the handle.
func (p *Page) Element(field string) (Element, error) {
	loc, err := p.Locator(field)
	if err != nil {
		return nil, err
	}
	elem, err := p.session.WaitForElement(loc, p.timeout)
	if err != nil {
		return nil, fmt.Errorf("page %s, field %q (%s): %w", p.name, field, loc, err)
	}
	return elem, nil
}

// Click waits for the field and clicks it.
func (p *Page) Click(field string) error {
	elem, err := p.Element(field)
	if err != nil {
		return err
	}
	return elem.Click()
}

// Type waits for the field, clears it and types the text.
func (p *Page) Type(field, text string) error {
	elem, err := p.Element(field)
	if err != nil {
		return err
	}
	if err := elem.Clear(); err != nil {
		return err
	}
	return elem.SendKeys(text)
}

// Text waits for the field and returns its visible text.
func (p *Page) Text(field string) (string, error) {
	elem, err := p.Element(field)
	if err != nil {
		return "", err
	}
	return elem.Text()
}

// Fill types each value into its field, then clicks the submit field if
// one is given. Fields are filled in unspecified order; use separate Type
// calls when order matters.
func (p *Page) Fill(values map[string]string, submit string) error {
	for field, text := range values {
		if err := p.Type(field, text); err != nil {
			return err
		}
	}
	if submit == "" {
		return nil
	}
	return p.Click(submit)
}
