package uidriver

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/appgrid/uidriver/internal/mockdriver"
)

func newLoginPage(s Session) *Page {
	return NewPage(s, "login", map[string]Locator{
		"username": ID("com.example.app:id/username"),
		"password": ID("com.example.app:id/password"),
		"submit":   AccessibilityID("log in"),
		"error":    ID("com.example.app:id/error"),
	})
}

func seedLoginScreen(srv *mockdriver.Server) (username, password, submit *mockdriver.Element) {
	username = srv.AddElement(mockdriver.NativeContext, "id", "com.example.app:id/username", &mockdriver.Element{
		TagName: "android.widget.EditText", Displayed: true, Enabled: true,
	})
	password = srv.AddElement(mockdriver.NativeContext, "id", "com.example.app:id/password", &mockdriver.Element{
		TagName: "android.widget.EditText", Displayed: true, Enabled: true,
	})
	submit = srv.AddElement(mockdriver.NativeContext, "accessibility id", "log in", &mockdriver.Element{
		TagName: "android.widget.Button", Displayed: true, Enabled: true,
	})
	return username, password, submit
}

func TestPageLogin(t *testing.T) {
	srv, s, teardown := newTestSession(t)
	defer teardown()
	username, password, submit := seedLoginScreen(srv)

	page := newLoginPage(s).WithTimeout(2 * time.Second)
	if err := page.Type("username", "gopher"); err != nil {
		t.Fatalf("Type(username) returned error: %v", err)
	}
	if err := page.Type("password", "hunter2"); err != nil {
		t.Fatalf("Type(password) returned error: %v", err)
	}
	if err := page.Click("submit"); err != nil {
		t.Fatalf("Click(submit) returned error: %v", err)
	}

	if diff := cmp.Diff([]string{"gopher"}, username.Typed()); diff != "" {
		t.Errorf("username input mismatch (-want +got):\n%s", diff)
	}
	if got := username.Cleared(); got != 1 {
		t.Errorf("username cleared %d times, want 1", got)
	}
	if diff := cmp.Diff([]string{"hunter2"}, password.Typed()); diff != "" {
		t.Errorf("password input mismatch (-want +got):\n%s", diff)
	}
	if got := submit.Clicks(); got != 1 {
		t.Errorf("submit clicked %d times, want 1", got)
	}
}

func TestPageFill(t *testing.T) {
	srv, s, teardown := newTestSession(t)
	defer teardown()
	username, password, submit := seedLoginScreen(srv)

	page := newLoginPage(s).WithTimeout(2 * time.Second)
	err := page.Fill(map[string]string{
		"username": "gopher",
		"password": "hunter2",
	}, "submit")
	if err != nil {
		t.Fatalf("Fill returned error: %v", err)
	}

	if diff := cmp.Diff([]string{"gopher"}, username.Typed()); diff != "" {
		t.Errorf("username input mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"hunter2"}, password.Typed()); diff != "" {
		t.Errorf("password input mismatch (-want +got):\n%s", diff)
	}
	if got := submit.Clicks(); got != 1 {
		t.Errorf("submit clicked %d times, want 1", got)
	}
}

func TestPageText(t *testing.T) {
	srv, s, teardown := newTestSession(t)
	defer teardown()
	srv.AddElement(mockdriver.NativeContext, "id", "com.example.app:id/error", &mockdriver.Element{
		Text: "Invalid credentials", Displayed: true, Enabled: true,
	})

	page := newLoginPage(s).WithTimeout(2 * time.Second)
	text, err := page.Text("error")
	if err != nil {
		t.Fatalf("Text(error) returned error: %v", err)
	}
	if text != "Invalid credentials" {
		t.Errorf("Text(error) = %q, want Invalid credentials", text)
	}
}

func TestPageUnknownField(t *testing.T) {
	_, s, teardown := newTestSession(t)
	defer teardown()

	page := newLoginPage(s)
	if _, err := page.Locator("nope"); err == nil {
		t.Error("Locator(nope) succeeded, want error")
	}
	if err := page.Click("nope"); err == nil {
		t.Error("Click(nope) succeeded, want error")
	}
}

func TestPageElementTimeout(t *testing.T) {
	_, s, teardown := newTestSession(t)
	defer teardown()

	page := newLoginPage(s).WithTimeout(150 * time.Millisecond)
	_, err := page.Element("submit")
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("Element(submit) on an empty screen = %v, want ErrTimeout", err)
	}
	// The failure names the page and field, so logs from deep call stacks
	// stay attributable.
	for _, want := range []string{"login", "submit", "accessibility id"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
}

func TestPageFieldTableIsCopied(t *testing.T) {
	_, s, teardown := newTestSession(t)
	defer teardown()

	fields := map[string]Locator{"submit": ID("submit")}
	page := NewPage(s, "checkout", fields)
	delete(fields, "submit")

	if _, err := page.Locator("submit"); err != nil {
		t.Errorf("Locator(submit) after mutating the source map returned error: %v", err)
	}
}
