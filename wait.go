package uidriver

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff"
)

const (
	// DefaultWaitTimeout is the timeout used by Wait.
	DefaultWaitTimeout = 60 * time.Second

	// DefaultWaitInterval is the poll cadence used by Wait and
	// WaitWithTimeout.
	DefaultWaitInterval = 100 * time.Millisecond
)

// errNotSatisfied marks a poll where the condition evaluated false without
// error; it never escapes the wait loop.
var errNotSatisfied = newError(CodeTimeout, "condition not satisfied")

func (s *remoteSession) Wait(cond Condition) error {
	return s.WaitWithTimeoutAndInterval(cond, DefaultWaitTimeout, DefaultWaitInterval)
}

func (s *remoteSession) WaitWithTimeout(cond Condition, timeout time.Duration) error {
	return s.WaitWithTimeoutAndInterval(cond, timeout, DefaultWaitInterval)
}

func (s *remoteSession) WaitWithTimeoutAndInterval(cond Condition, timeout, interval time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	eval := func() error {
		ok, err := cond(s)
		if err != nil {
			return err
		}
		if !ok {
			return errNotSatisfied
		}
		return nil
	}
	op := func() error {
		err := eval()
		if err != nil && err != errNotSatisfied && !IsTransient(err) {
			return backoff.Permanent(err)
		}
		// Not there yet; keep polling until the deadline.
		return err
	}

	policy := backoff.WithContext(backoff.NewConstantBackOff(interval), ctx)
	err := backoff.Retry(op, policy)
	if retryable(err) && ctx.Err() == nil {
		// The retry policy gives up as soon as less than one interval
		// remains before the deadline. Run out the clock and evaluate
		// once more, so the wait never reports a timeout before it.
		<-ctx.Done()
		err = eval()
	}
	switch {
	case err == nil:
		return nil
	case err == errNotSatisfied:
		// The deadline elapsed with the condition still false. The poll
		// loop has already stopped; no further remote calls are made.
		return newError(CodeTimeout, fmt.Sprintf("condition not satisfied after %v", timeout))
	case IsTransient(err):
		// The deadline elapsed with the lookup still failing; keep the
		// last failure for diagnosis.
		return wrapError(CodeTimeout, fmt.Sprintf("condition not satisfied after %v", timeout), err)
	default:
		return err
	}
}

// retryable reports whether the wait loop would keep polling on err: the
// condition was false or failed a transient lookup, rather than erring out.
func retryable(err error) bool {
	return err == errNotSatisfied || IsTransient(err)
}

// WaitForElement polls for the locator until it resolves, then returns the
// handle. Zero matches are retried up to the timeout; any other failure
// aborts the wait immediately.
func (s *remoteSession) WaitForElement(loc Locator, timeout time.Duration) (Element, error) {
	var elem Element
	cond := func(Session) (bool, error) {
		var err error
		elem, err = s.FindElement(loc)
		if err != nil {
			return false, err
		}
		return true, nil
	}
	if err := s.WaitWithTimeout(cond, timeout); err != nil {
		return nil, err
	}
	return elem, nil
}

// Displayed is a Condition that holds once the locator resolves to a
// visible element.
func Displayed(loc Locator) Condition {
	return func(s Session) (bool, error) {
		elem, err := s.FindElement(loc)
		if err != nil {
			return false, err
		}
		return elem.IsDisplayed()
	}
}

// ContextAttached is a Condition that holds once the named context is
// attached, typically used to synchronize with a webview starting up.
func ContextAttached(id string) Condition {
	return func(s Session) (bool, error) {
		contexts, err := s.Contexts()
		if err != nil {
			return false, err
		}
		for _, c := range contexts {
			if c == id {
				return true, nil
			}
		}
		return false, nil
	}
}

// TitleIs is a Condition that holds once the current webview's title
// matches exactly.
func TitleIs(title string) Condition {
	return func(s Session) (bool, error) {
		t, err := s.Title()
		if err != nil {
			return false, err
		}
		return t == title, nil
	}
}
