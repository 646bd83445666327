package uidriver

import (
	"errors"
	"testing"

	"github.com/appgrid/uidriver/internal/mockdriver"
)

func TestSelectRejectsNonSelect(t *testing.T) {
	srv, s, teardown := newTestSession(t)
	defer teardown()
	srv.AddElement(mockdriver.NativeContext, "id", "button", &mockdriver.Element{
		TagName: "button", Displayed: true, Enabled: true,
	})

	elem, err := s.FindElement(ID("button"))
	if err != nil {
		t.Fatalf("FindElement returned error: %v", err)
	}
	if _, err := Select(elem); err == nil {
		t.Error("Select on a <button> succeeded, want error")
	}
}

func TestSelectByVisibleText(t *testing.T) {
	srv, s, teardown := newTestSession(t)
	defer teardown()
	srv.AddElement(mockdriver.NativeContext, "id", "country", &mockdriver.Element{
		TagName: "select", Displayed: true, Enabled: true,
	})
	option := srv.AddElement(mockdriver.NativeContext, "xpath",
		`.//option[normalize-space(.) = "Norway"]`, &mockdriver.Element{
			TagName: "option", Text: "Norway", Displayed: true, Enabled: true,
		})

	elem, err := s.FindElement(ID("country"))
	if err != nil {
		t.Fatalf("FindElement returned error: %v", err)
	}
	sel, err := Select(elem)
	if err != nil {
		t.Fatalf("Select returned error: %v", err)
	}
	if sel.IsMultiple() {
		t.Error("IsMultiple() = true for a plain select, want false")
	}

	if err := sel.SelectByVisibleText("Norway"); err != nil {
		t.Fatalf("SelectByVisibleText(Norway) returned error: %v", err)
	}
	if got := option.Clicks(); got != 1 {
		t.Errorf("option clicked %d times, want 1", got)
	}
}

func TestSelectByValueNoMatch(t *testing.T) {
	srv, s, teardown := newTestSession(t)
	defer teardown()
	srv.AddElement(mockdriver.NativeContext, "id", "country", &mockdriver.Element{
		TagName: "select", Displayed: true, Enabled: true,
	})

	elem, err := s.FindElement(ID("country"))
	if err != nil {
		t.Fatalf("FindElement returned error: %v", err)
	}
	sel, err := Select(elem)
	if err != nil {
		t.Fatalf("Select returned error: %v", err)
	}

	if err := sel.SelectByValue("xx"); !errors.Is(err, ErrNoSuchElement) {
		t.Errorf("SelectByValue(xx) = %v, want ErrNoSuchElement", err)
	}
}

func TestSelectDeselectAll(t *testing.T) {
	srv, s, teardown := newTestSession(t)
	defer teardown()
	srv.AddElement(mockdriver.NativeContext, "id", "tags", &mockdriver.Element{
		TagName:    "select",
		Attributes: map[string]string{"multiple": "multiple"},
		Displayed:  true, Enabled: true,
	})
	selected := srv.AddElement(mockdriver.NativeContext, "xpath", ".//option", &mockdriver.Element{
		TagName: "option", Selected: true, Displayed: true, Enabled: true,
	})

	elem, err := s.FindElement(ID("tags"))
	if err != nil {
		t.Fatalf("FindElement returned error: %v", err)
	}
	sel, err := Select(elem)
	if err != nil {
		t.Fatalf("Select returned error: %v", err)
	}
	if !sel.IsMultiple() {
		t.Fatal("IsMultiple() = false for a multi-select, want true")
	}

	if err := sel.DeselectAll(); err != nil {
		t.Fatalf("DeselectAll returned error: %v", err)
	}
	if got := selected.Clicks(); got != 1 {
		t.Errorf("selected option clicked %d times, want 1", got)
	}
}

func TestDeselectAllOnSingleSelect(t *testing.T) {
	srv, s, teardown := newTestSession(t)
	defer teardown()
	srv.AddElement(mockdriver.NativeContext, "id", "country", &mockdriver.Element{
		TagName: "select", Displayed: true, Enabled: true,
	})

	elem, err := s.FindElement(ID("country"))
	if err != nil {
		t.Fatalf("FindElement returned error: %v", err)
	}
	sel, err := Select(elem)
	if err != nil {
		t.Fatalf("Select returned error: %v", err)
	}
	if err := sel.DeselectAll(); err == nil {
		t.Error("DeselectAll on a single select succeeded, want error")
	}
}
