package uidriver

import (
	"fmt"
	"strings"
)

// SelectElement wraps an element handle on an HTML <select>, for use in
// webview contexts.
type SelectElement struct {
	element Element
	isMulti bool
}

// Select wraps the element, which must be a <select>.
func Select(el Element) (SelectElement, error) {
	tagName, err := el.TagName()
	if err != nil {
		return SelectElement{}, err
	}
	if strings.ToLower(tagName) != "select" {
		return SelectElement{}, fmt.Errorf(`element should have been "select" but was %q`, tagName)
	}

	mult, ok, err := el.Attribute("multiple")
	if err != nil {
		return SelectElement{}, err
	}
	isMulti := ok && strings.ToLower(mult) != "false"
	return SelectElement{element: el, isMulti: isMulti}, nil
}

// Element returns the wrapped handle.
func (s SelectElement) Element() Element {
	return s.element
}

// IsMultiple reports whether the select allows multiple selections.
func (s SelectElement) IsMultiple() bool {
	return s.isMulti
}

// Options returns all options of the select.
func (s SelectElement) Options() ([]Element, error) {
	return s.element.FindElements(XPath(".//option"))
}

// SelectByVisibleText selects the options whose normalized display text
// matches exactly.
func (s SelectElement) SelectByVisibleText(text string) error {
	options, err := s.element.FindElements(
		XPath(`.//option[normalize-space(.) = "` + escapeQuotes(text) + `"]`))
	if err != nil {
		return err
	}
	if len(options) == 0 {
		return newError(CodeNoSuchElement, fmt.Sprintf("no option with text %q", text))
	}

	for _, option := range options {
		if err := s.setSelected(option, true); err != nil {
			return err
		}
		if !s.isMulti {
			return nil
		}
	}
	return nil
}

// SelectByValue selects the options whose value attribute matches exactly.
func (s SelectElement) SelectByValue(value string) error {
	options, err := s.element.FindElements(
		XPath(`.//option[@value = "` + escapeQuotes(value) + `"]`))
	if err != nil {
		return err
	}
	if len(options) == 0 {
		return newError(CodeNoSuchElement, fmt.Sprintf("no option with value %q", value))
	}

	for _, option := range options {
		if err := s.setSelected(option, true); err != nil {
			return err
		}
		if !s.isMulti {
			return nil
		}
	}
	return nil
}

// DeselectAll clears every selected option. Only valid on a multi-select.
func (s SelectElement) DeselectAll() error {
	if !s.isMulti {
		return fmt.Errorf("may only deselect options of a multi-select")
	}

	options, err := s.Options()
	if err != nil {
		return err
	}
	for _, option := range options {
		if err := s.setSelected(option, false); err != nil {
			return err
		}
	}
	return nil
}

func (s SelectElement) setSelected(option Element, selected bool) error {
	current, err := option.IsSelected()
	if err != nil {
		return err
	}
	if current != selected {
		return option.Click()
	}
	return nil
}

func escapeQuotes(str string) string {
	return strings.Replace(str, `"`, `\"`, -1)
}
