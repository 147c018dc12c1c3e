package page

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrTimeout is returned by WaitFor when no element matched in time.
var ErrTimeout = errors.New("timed out waiting for element")

// NavigationError reports a failed page load.
type NavigationError struct {
	URL string
	Err error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigate to %s: %v", e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error {
	return e.Err
}

// Selector addresses elements on a page. Elements matching CSS are kept only
// when their text contains every string in Contains. When Within is set, only
// descendants of the elements Within matches are considered. Visible further
// restricts matches to elements that are rendered and so can be clicked.
type Selector struct {
	CSS      string    `json:"css"`
	Contains []string  `json:"contains,omitempty"`
	Within   *Selector `json:"within,omitempty"`
	Visible  bool      `json:"visible,omitempty"`
}

func (s Selector) String() string {
	var b strings.Builder
	if s.Within != nil {
		b.WriteString(s.Within.String())
		b.WriteString(" >> ")
	}
	b.WriteString(s.CSS)
	for _, c := range s.Contains {
		fmt.Fprintf(&b, ":contains(%q)", c)
	}
	if s.Visible {
		b.WriteString(":visible")
	}
	return b.String()
}

// Element is a matched element.
type Element interface {
	// Text is the rendered text of the element at the time it was found.
	Text() string
	Click(ctx context.Context) error
}

// Driver is a single page session. Drivers are not safe for concurrent use.
type Driver interface {
	Navigate(ctx context.Context, url string) error
	// WaitFor returns the first element matching sel, or an error wrapping
	// ErrTimeout once timeout elapses.
	WaitFor(ctx context.Context, sel Selector, timeout time.Duration) (Element, error)
	FindAll(ctx context.Context, sel Selector) ([]Element, error)
	// SubmitText types text into the input matched by sel and submits its
	// form.
	SubmitText(ctx context.Context, sel Selector, text string) error
}

// Session is a Driver that owns resources.
type Session interface {
	Driver
	Close() error
}

// Opener starts a new independent Session.
type Opener func(ctx context.Context) (Session, error)
