package uidriver

import (
	"time"

	"github.com/appgrid/uidriver/android"
	"github.com/appgrid/uidriver/chrome"
	"github.com/appgrid/uidriver/ios"
	"github.com/appgrid/uidriver/log"
)

// Strategy is a method by which the remote endpoint locates elements.
type Strategy string

// The locator strategies understood by W3C WebDriver endpoints and the
// Appium extensions.
const (
	ByID              Strategy = "id"
	ByName            Strategy = "name"
	ByClassName       Strategy = "class name"
	ByCSSSelector     Strategy = "css selector"
	ByXPath           Strategy = "xpath"
	ByAccessibilityID Strategy = "accessibility id"
	ByLinkText        Strategy = "link text"
	ByPartialLinkText Strategy = "partial link text"
)

// Locator describes how to find a single UI element. It is a value object:
// two Locators are equal when their strategy and value are equal. Many
// element handles may be resolved from one Locator over time; handles are
// short-lived, the Locator is not.
type Locator struct {
	Strategy Strategy
	Value    string
}

func (l Locator) String() string {
	return string(l.Strategy) + "=" + l.Value
}

// ID locates by the element's id (resource-id on Android, name on iOS).
func ID(value string) Locator { return Locator{ByID, value} }

// Name locates by the element's name attribute.
func Name(value string) Locator { return Locator{ByName, value} }

// ClassName locates by class name (UI widget class in native contexts).
func ClassName(value string) Locator { return Locator{ByClassName, value} }

// CSS locates by CSS selector. Only valid in webview contexts.
func CSS(value string) Locator { return Locator{ByCSSSelector, value} }

// XPath locates by XPath over the current context's source tree.
func XPath(value string) Locator { return Locator{ByXPath, value} }

// AccessibilityID locates by accessibility identifier
// (content-description on Android, accessibility-id on iOS).
func AccessibilityID(value string) Locator { return Locator{ByAccessibilityID, value} }

// LinkText locates an anchor by its exact text. Only valid in webview
// contexts.
func LinkText(value string) Locator { return Locator{ByLinkText, value} }

// PartialLinkText locates an anchor by a substring of its text. Only valid
// in webview contexts.
func PartialLinkText(value string) Locator { return Locator{ByPartialLinkText, value} }

// NativeContext is the context identifier of the native surface of a hybrid
// application. Webview contexts are reported as "WEBVIEW_<id>".
const NativeContext = "NATIVE_APP"

// Capabilities configures the remote endpoint and the target application,
// with standard and platform-specific options.
type Capabilities map[string]interface{}

// AddAndroid adds UiAutomator2-specific capabilities.
func (c Capabilities) AddAndroid(a android.Capabilities) {
	for k, v := range a.Entries() {
		c[k] = v
	}
}

// AddIOS adds XCUITest-specific capabilities.
func (c Capabilities) AddIOS(i ios.Capabilities) {
	for k, v := range i.Entries() {
		c[k] = v
	}
}

// AddChrome adds options for the chromedriver process that backs webview
// contexts.
func (c Capabilities) AddChrome(ch chrome.Capabilities) {
	c[chrome.CapabilitiesKey] = ch
}

// AddLogging adds log collection configuration to the capabilities.
func (c Capabilities) AddLogging(l log.Capabilities) {
	c[log.CapabilitiesKey] = l
}

// Status describes the remote endpoint, as returned by the /status command.
type Status struct {
	Ready   bool
	Message string
	Build   struct {
		Version string
	}
}

// Point is a 2D point in screen coordinates.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Size is the size of an element or window.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Rect is the position and size of an element or window.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Orientation of the device screen.
type Orientation string

// The valid orientations.
const (
	Portrait  Orientation = "PORTRAIT"
	Landscape Orientation = "LANDSCAPE"
)

// Special keyboard keys for SendKeys in webview contexts.
const (
	NullKey      = string('\ue000')
	BackspaceKey = string('\ue003')
	TabKey       = string('\ue004')
	ClearKey     = string('\ue005')
	ReturnKey    = string('\ue006')
	EnterKey     = string('\ue007')
	ShiftKey     = string('\ue008')
	ControlKey   = string('\ue009')
	AltKey       = string('\ue00a')
	EscapeKey    = string('\ue00c')
	SpaceKey     = string('\ue00d')
	EndKey       = string('\ue010')
	HomeKey      = string('\ue011')
	DeleteKey    = string('\ue017')
	MetaKey      = string('\ue03d')
)

// Condition is a predicate over session state, evaluated repeatedly by the
// Wait methods. Returning a non-nil error aborts the wait unless the error
// is transient (see IsTransient), in which case it is treated as "not yet
// true" and retried.
type Condition func(s Session) (bool, error)

// Session owns one connection to a remote automation endpoint. A Session
// drives one endpoint at a time; run independent Sessions for parallelism.
type Session interface {
	// ID returns the remote session identifier.
	ID() string

	// Status returns information about the remote endpoint. It is valid
	// before a session is started.
	Status() (*Status, error)

	// Capabilities returns the capabilities the endpoint matched for this
	// session.
	Capabilities() (Capabilities, error)

	// FindElement resolves the locator to exactly one element in the current
	// context. Zero matches fail with ErrNoSuchElement; on multiple matches
	// the first element in source order is returned.
	FindElement(loc Locator) (Element, error)
	// FindElements resolves the locator to all matching elements. Zero
	// matches yield an empty slice, not an error.
	FindElements(loc Locator) ([]Element, error)
	// ActiveElement returns the element that currently has input focus.
	ActiveElement() (Element, error)

	// WaitForElement polls for the locator until it resolves or the timeout
	// elapses. This is the preferred entry point for element lookup;
	// FindElement alone races against asynchronous UI changes.
	WaitForElement(loc Locator, timeout time.Duration) (Element, error)

	// Wait blocks until the condition holds, using the default timeout and
	// poll interval.
	Wait(cond Condition) error
	// WaitWithTimeout blocks until the condition holds, using the default
	// poll interval.
	WaitWithTimeout(cond Condition, timeout time.Duration) error
	// WaitWithTimeoutAndInterval blocks until the condition holds or the
	// timeout elapses, evaluating it at the given cadence. Transient lookup
	// failures are retried; other errors abort the wait immediately.
	WaitWithTimeoutAndInterval(cond Condition, timeout, interval time.Duration) error

	// Contexts enumerates the surfaces currently attached: NativeContext
	// plus any webviews.
	Contexts() ([]string, error)
	// Context returns the identifier of the context element lookups
	// currently target.
	Context() string
	// SwitchContext switches element lookups to the named context. The id
	// must be present in Contexts, otherwise the switch fails with
	// ErrNoSuchContext and the active context is unchanged. Switching
	// invalidates every previously resolved element handle.
	SwitchContext(id string) error

	// Get navigates the current webview to the URL.
	Get(url string) error
	// CurrentURL returns the current webview's URL.
	CurrentURL() (string, error)
	// Title returns the current webview's title.
	Title() (string, error)
	// PageSource returns the source of the current context: HTML in a
	// webview, an XML hierarchy dump in the native context.
	PageSource() (string, error)

	// Screenshot takes a PNG screenshot of the device screen.
	Screenshot() ([]byte, error)

	// Orientation returns the device orientation. Endpoints that cannot
	// report orientation fail with ErrUnsupported.
	Orientation() (Orientation, error)
	// SetOrientation rotates the device. Endpoints that cannot simulate
	// rotation fail with ErrUnsupported.
	SetOrientation(o Orientation) error

	// WindowRect returns the bounds of the current window or screen.
	WindowRect() (*Rect, error)
	// ResizeWindow resizes the current window. Endpoints that cannot resize
	// fail with ErrUnsupported.
	ResizeWindow(width, height int) error

	// SetImplicitWaitTimeout sets the endpoint-side wait applied to element
	// lookups. Prefer WaitForElement; implicit waits compose badly with
	// explicit ones.
	SetImplicitWaitTimeout(timeout time.Duration) error

	// ExecuteScript executes a script in the current webview context.
	ExecuteScript(script string, args []interface{}) (interface{}, error)

	// Log fetches remote logs of the given type. Log types must have been
	// configured in the capabilities.
	Log(typ log.Type) ([]log.Message, error)

	// Tap taps the screen at the given coordinates using a W3C pointer
	// action sequence.
	Tap(x, y int) error

	// Quit ends the session and releases the remote connection. It is
	// idempotent: quitting an already-released session is a no-op. Callers
	// must arrange for Quit to run on every exit path, typically via defer.
	Quit() error
}

// Element is a handle on a resolved UI element. A handle is a lease: it is
// valid only until the underlying UI mutates (navigation, context switch,
// DOM re-render). Do not cache handles across waits; re-resolve instead.
type Element interface {
	// Click clicks or taps the element. The element must be displayed and
	// enabled; wrap the resolution in WaitForElement to synchronize.
	Click() error
	// SendKeys types the text into the element.
	SendKeys(text string) error
	// Clear clears the element's text content.
	Clear() error
	// Submit submits the form the element belongs to. Webview contexts only.
	Submit() error

	// Text returns the element's visible text.
	Text() (string, error)
	// TagName returns the element's tag (widget class in native contexts).
	TagName() (string, error)
	// Attribute returns the named attribute. ok is false when the attribute
	// is absent, which is distinct from an empty value.
	Attribute(name string) (value string, ok bool, err error)
	// CSSProperty returns a computed CSS property. Webview contexts only.
	CSSProperty(name string) (string, error)

	// IsDisplayed reports whether the element is visible.
	IsDisplayed() (bool, error)
	// IsEnabled reports whether the element accepts interaction.
	IsEnabled() (bool, error)
	// IsSelected reports whether the option or checkbox is selected.
	IsSelected() (bool, error)

	// Rect returns the element's bounds in screen coordinates.
	Rect() (*Rect, error)

	// FindElement resolves the locator scoped to this element's subtree.
	FindElement(loc Locator) (Element, error)
	// FindElements resolves the locator to all matches within this
	// element's subtree.
	FindElements(loc Locator) ([]Element, error)

	// Tap taps the element's center via a W3C pointer action sequence,
	// which exercises the native input pipeline rather than a synthesized
	// click event.
	Tap() error
}
