package tideschart

import (
	"errors"
	"fmt"
)

// ErrParse matches every error returned for a row that cannot be read.
var ErrParse = errors.New("tide row not parsed")

var errGrammar = errors.New("does not match the tide table grammar")

// ParseError carries the raw row text that failed to parse.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("tide row %q: %v", e.Raw, e.Err)
}

func (e *ParseError) Unwrap() []error {
	return []error{ErrParse, e.Err}
}
