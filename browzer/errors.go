package browzer

import (
	"errors"
	"fmt"
)

var (
	ErrBadRequest     = errors.New("browzer: bad request")
	ErrHeaderTooLarge = errors.New("browzer: header too large")
	ErrPathFormat     = errors.New("browzer: path formatting invariant violated")
	ErrInvalidPattern = errors.New("browzer: invalid route pattern")
	ErrNilHandler     = errors.New("browzer: nil handler")
	ErrRouterFrozen   = errors.New("browzer: routes cannot change once the server is listening")
	ErrRouterNotReady = errors.New("browzer: router not initialized")
	ErrServerClosed   = errors.New("browzer: server closed")
)

// ParseError reports a malformed request line or header line.
// Line is 1-based; 0 means the request had no lines at all.
type ParseError struct {
	Line   int
	Text   string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("browzer: parse request: %s", e.Reason)
	}
	return fmt.Sprintf("browzer: parse request: line %d %q: %s", e.Line, e.Text, e.Reason)
}

func (e *ParseError) Unwrap() error { return ErrBadRequest }
