package pagination

import (
	"errors"
	"fmt"
)

// ErrViewClosed is returned by operations on a closed View.
var ErrViewClosed = errors.New("view closed")

// ErrPageOutOfRange is returned for a page outside 1..MaxPage or whose
// offset does not fit in an int.
var ErrPageOutOfRange = errors.New("page out of range")

// FetchError is a failed load of one page. It is surfaced to the
// presentation layer as a retryable state, never as a fatal error.
type FetchError struct {
	Resource string
	Page     int
	Err      error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s page %d: %v", e.Resource, e.Page, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *FetchError) Unwrap() error {
	return e.Err
}
