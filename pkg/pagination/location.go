package pagination

import (
	"fmt"
	"net/url"
	"sync"
)

// Location is the shareable navigation state of a view, e.g. the query
// string of the page URL.
type Location interface {
	// Query returns a copy of the current query values.
	Query() url.Values

	// Navigate replaces the query with the result of update applied to the
	// current values.
	Navigate(update func(prev url.Values) url.Values)
}

// URLLocation is a Location backed by a URL.
type URLLocation struct {
	mu sync.RWMutex
	u  *url.URL
}

// NewURLLocation parses raw (e.g. "/categories?page=2") into a location.
func NewURLLocation(raw string) (*URLLocation, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse location: %w", err)
	}
	return &URLLocation{u: u}, nil
}

// Query returns a copy of the current query values.
func (l *URLLocation) Query() url.Values {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.u.Query()
}

// Navigate applies update to the query values and stores the result.
func (l *URLLocation) Navigate(update func(prev url.Values) url.Values) {
	l.mu.Lock()
	defer l.mu.Unlock()
	next := update(l.u.Query())
	l.u.RawQuery = next.Encode()
}

// String returns the shareable URL.
func (l *URLLocation) String() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.u.String()
}
