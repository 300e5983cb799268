package cache

import (
	"context"
	"errors"

	"github.com/jellydator/ttlcache/v3"
)

var (
	// ErrCacheMiss indicates the requested key was not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidEntry indicates the cache entry is invalid or corrupted
	ErrInvalidEntry = errors.New("invalid cache entry")
)

// Store is the page cache shared by every view of a process.
// Writes are keyed and replace the previous value of that key.
type Store interface {
	// Get returns the entry for key or ErrCacheMiss.
	Get(ctx context.Context, key Key) (*Entry, error)

	// Set stores entry under key.
	Set(ctx context.Context, key Key, entry *Entry) error

	// Has reports whether a live entry exists for key.
	Has(ctx context.Context, key Key) (bool, error)

	// Delete removes the entry for key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key Key) error
}

// MemoryStore is an in-process Store backed by ttlcache. Entries are only
// dropped when they expire or are deleted; reads never extend their life.
type MemoryStore struct {
	items *ttlcache.Cache[string, *Entry]
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: ttlcache.New[string, *Entry](
			ttlcache.WithDisableTouchOnHit[string, *Entry](),
		),
	}
}

// Get retrieves a cache entry by key.
// Returns ErrCacheMiss if the key doesn't exist or entry is expired.
func (s *MemoryStore) Get(_ context.Context, key Key) (*Entry, error) {
	item := s.items.Get(key.String())
	if item == nil {
		// expired entries are kept by ttlcache until removed
		s.items.DeleteExpired()
		s.recordLen()
		CacheMisses.WithLabelValues(layerMemory).Inc()
		return nil, ErrCacheMiss
	}

	CacheHits.WithLabelValues(layerMemory).Inc()

	copied := *item.Value()
	return &copied, nil
}

// Set stores a cache entry. Expired entries are not stored.
func (s *MemoryStore) Set(_ context.Context, key Key, entry *Entry) error {
	if entry == nil {
		return errors.New("cache entry cannot be nil")
	}

	ttl := ttlcache.NoTTL
	if !entry.Expires.IsZero() {
		ttl = entry.TTL()
		if ttl <= 0 {
			return nil
		}
	}

	copied := *entry
	s.items.Set(key.String(), &copied, ttl)
	s.recordLen()

	return nil
}

// Has reports whether a live entry exists for key.
func (s *MemoryStore) Has(_ context.Context, key Key) (bool, error) {
	return s.items.Has(key.String()), nil
}

// Delete removes a cache entry.
func (s *MemoryStore) Delete(_ context.Context, key Key) error {
	s.items.Delete(key.String())
	s.recordLen()
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (s *MemoryStore) Len() int {
	return s.items.Len()
}

func (s *MemoryStore) recordLen() {
	CacheEntries.WithLabelValues(layerMemory).Set(float64(s.items.Len()))
}
