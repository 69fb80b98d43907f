package fetcher

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport matches every failure returned by Fetch.
	ErrTransport = errors.New("transport failure")

	// ErrBodyTooLarge is returned when a response exceeds the body limit.
	ErrBodyTooLarge = errors.New("response body exceeds size limit")
)

// Error is a transport failure for one URL.
type Error struct {
	// URL is the requested URL.
	URL string

	// Op is the phase that failed: "request", "do" or "read".
	Op string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Op, e.Err)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is makes every *Error match ErrTransport.
func (e *Error) Is(target error) bool {
	return target == ErrTransport
}
