package cache

import (
	"time"

	"github.com/Sternrassler/category-pager/pkg/categories"
)

// Entry is the last-known result set for one page.
type Entry struct {
	// Items is the page contents in server order
	Items []categories.Category `json:"items"`

	// FetchedAt is when the page was received from the data source
	FetchedAt time.Time `json:"fetched_at"`

	// Expires is when the entry should stop being served.
	// The zero time means the entry never expires on its own.
	Expires time.Time `json:"expires,omitempty"`
}

// NewEntry creates an entry fetched now that expires after ttl.
// A ttl <= 0 produces an entry without expiry.
func NewEntry(items []categories.Category, ttl time.Duration) *Entry {
	now := time.Now()
	entry := &Entry{
		Items:     items,
		FetchedAt: now,
	}
	if ttl > 0 {
		entry.Expires = now.Add(ttl)
	}
	return entry
}

// IsExpired returns true if the cache entry has expired.
func (e *Entry) IsExpired() bool {
	return !e.Expires.IsZero() && time.Now().After(e.Expires)
}

// TTL returns the time until expiration.
// Returns 0 if already expired or if the entry has no expiry.
func (e *Entry) TTL() time.Duration {
	if e.Expires.IsZero() {
		return 0
	}
	ttl := time.Until(e.Expires)
	if ttl < 0 {
		return 0
	}
	return ttl
}

// Age returns how long ago the entry was fetched.
func (e *Entry) Age() time.Duration {
	return time.Since(e.FetchedAt)
}
