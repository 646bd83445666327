package uidriver

import "fmt"

// Error codes, matching the W3C WebDriver error strings sent on the wire.
const (
	CodeNoSuchElement      = "no such element"
	CodeStaleElement       = "stale element reference"
	CodeTimeout            = "timeout"
	CodeNoSuchContext      = "no such context"
	CodeNoSuchWindow       = "no such window"
	CodeInvalidSelector    = "invalid selector"
	CodeUnsupported        = "unsupported operation"
	CodeInvalidState       = "invalid element state"
	CodeNotInteractable    = "element not interactable"
	CodeJavaScriptError    = "javascript error"
	CodeSessionNotCreated  = "session not created"
	CodeInvalidSessionID   = "invalid session id"
	CodeUnexpectedAlert    = "unexpected alert open"
	CodeUnknownError       = "unknown error"
	CodeUnknownCommand     = "unknown command"
)

// Error is a failure reported by the remote endpoint or raised by the
// client itself. Code identifies the failure class; errors.Is against the
// sentinel values below matches on Code only.
type Error struct {
	Code    string
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return e.Code + ": " + e.Message
}

// Unwrap returns the underlying error, if any.
func (e *Error) Unwrap() error { return e.cause }

// Is matches any *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// Sentinel errors for the failure classes callers branch on.
var (
	// ErrNoSuchElement: the locator matched zero elements.
	ErrNoSuchElement = &Error{Code: CodeNoSuchElement}
	// ErrStaleElement: the handle was invalidated by a context switch,
	// navigation or UI re-render. Indicates a sequencing bug in the caller;
	// never retried by the wait machinery.
	ErrStaleElement = &Error{Code: CodeStaleElement}
	// ErrTimeout: a wait deadline elapsed before its condition held.
	ErrTimeout = &Error{Code: CodeTimeout}
	// ErrNoSuchContext: the context switch target is not attached.
	ErrNoSuchContext = &Error{Code: CodeNoSuchContext}
	// ErrUnsupported: the endpoint cannot perform the operation (for
	// example orientation simulation on a desktop browser).
	ErrUnsupported = &Error{Code: CodeUnsupported}
	// ErrInvalidSelector: the locator value is not a valid expression for
	// its strategy.
	ErrInvalidSelector = &Error{Code: CodeInvalidSelector}
	// ErrNoSuchWindow: the targeted window or webview page is gone.
	ErrNoSuchWindow = &Error{Code: CodeNoSuchWindow}
)

func newError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func wrapError(code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// IsTransient reports whether err is a lookup failure that a wait loop
// should swallow and retry: the element is not there *yet*. Staleness and
// context errors are deliberately excluded; they are caller bugs and
// propagate immediately.
func IsTransient(err error) bool {
	e, ok := err.(*Error)
	if !ok {
		return false
	}
	switch e.Code {
	case CodeNoSuchElement, CodeNotInteractable, CodeInvalidState:
		return true
	}
	return false
}

// legacyStatus maps pre-W3C numeric status codes, still emitted by older
// endpoints, onto the W3C error strings.
var legacyStatus = map[int]string{
	7:  CodeNoSuchElement,
	8:  "no such frame",
	9:  CodeUnknownCommand,
	10: CodeStaleElement,
	11: CodeNotInteractable,
	12: CodeInvalidState,
	13: CodeUnknownError,
	17: CodeJavaScriptError,
	21: CodeTimeout,
	23: CodeNoSuchWindow,
	26: CodeUnexpectedAlert,
	28: "script timeout",
	32: CodeInvalidSelector,
	33: CodeSessionNotCreated,
	35: CodeNoSuchContext,
}

// errorFromStatus converts a legacy numeric status into an *Error.
func errorFromStatus(status int, message string) *Error {
	code, ok := legacyStatus[status]
	if !ok {
		code = CodeUnknownError
		if message == "" {
			message = fmt.Sprintf("status %d", status)
		}
	}
	return newError(normalizeCode(code), message)
}

// normalizeCode folds endpoint-specific spellings into the taxonomy. Appium
// servers have reported context misses under several names over the years.
func normalizeCode(code string) string {
	switch code {
	case "no such context", "NoSuchContextError":
		return CodeNoSuchContext
	case "unknown method", "unsupported operation", "unknown command":
		return CodeUnsupported
	}
	return code
}
