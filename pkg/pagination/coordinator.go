package pagination

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/Sternrassler/category-pager/pkg/cache"
	"github.com/Sternrassler/category-pager/pkg/categories"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// DataSource lists a window of categories. categories.Client implements it.
type DataSource interface {
	ListCategories(ctx context.Context, offset, limit int) ([]categories.Category, error)
}

// EntryState is the lifecycle state of one page key.
type EntryState int

const (
	// StateEmpty means nothing is cached or in flight for the key.
	StateEmpty EntryState = iota
	// StatePending means a fetch for the key is in flight.
	StatePending
	// StateFresh means the key holds a fetched result set.
	StateFresh
	// StateError means the last fetch for the key failed.
	StateError
)

// String returns the state name.
func (s EntryState) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StatePending:
		return "pending"
	case StateFresh:
		return "fresh"
	case StateError:
		return "error"
	default:
		return fmt.Sprintf("EntryState(%d)", int(s))
	}
}

// CoordinatorConfig holds fetch coordinator configuration.
type CoordinatorConfig struct {
	// Resource names the listed collection in cache keys
	Resource string
	// PageSize is the limit of every request
	PageSize int
	// TTL is attached to stored entries (0 for no expiry)
	TTL time.Duration
}

// DefaultCoordinatorConfig returns the categories listing configuration.
func DefaultCoordinatorConfig() CoordinatorConfig {
	return CoordinatorConfig{
		Resource: DefaultResource,
		PageSize: DefaultPageSize,
		TTL:      cache.DefaultTTL,
	}
}

// Coordinator fetches pages through a DataSource into a shared cache.Store.
// At most one fetch per page key is in flight at any time; concurrent
// callers for the same key join it.
type Coordinator struct {
	source DataSource
	store  cache.Store
	config CoordinatorConfig
	logger zerolog.Logger

	group singleflight.Group

	mu       sync.Mutex
	inflight map[int]struct{}
	failed   map[int]error
}

// NewCoordinator creates a fetch coordinator.
func NewCoordinator(source DataSource, store cache.Store, config CoordinatorConfig, logger zerolog.Logger) *Coordinator {
	if source == nil {
		panic("data source cannot be nil")
	}
	if store == nil {
		panic("cache store cannot be nil")
	}
	if config.Resource == "" {
		config.Resource = DefaultResource
	}
	if config.PageSize <= 0 {
		config.PageSize = DefaultPageSize
	}

	return &Coordinator{
		source:   source,
		store:    store,
		config:   config,
		logger:   logger.With().Str("resource", config.Resource).Logger(),
		inflight: make(map[int]struct{}),
		failed:   make(map[int]error),
	}
}

// PageSize returns the number of rows per page.
func (c *Coordinator) PageSize() int {
	return c.config.PageSize
}

// Resource returns the listed collection name.
func (c *Coordinator) Resource() string {
	return c.config.Resource
}

// Key returns the cache key of page. The page size is part of the key so
// pagers with different sizes can share one store.
func (c *Coordinator) Key(page int) cache.Key {
	return cache.Key{
		Resource: c.config.Resource,
		Page:     page,
		Params:   url.Values{"size": []string{strconv.Itoa(c.config.PageSize)}},
	}
}

// Request returns the offset/limit window of page.
func (c *Coordinator) Request(page int) Request {
	return RequestFor(page, c.config.PageSize)
}

// Cached returns the stored result set of page without fetching.
// Store errors other than a miss are logged and reported as a miss.
func (c *Coordinator) Cached(ctx context.Context, page int) ([]categories.Category, bool) {
	entry, ok := c.cachedEntry(ctx, page)
	if !ok {
		return nil, false
	}
	return entry.Items, true
}

func (c *Coordinator) cachedEntry(ctx context.Context, page int) (*cache.Entry, bool) {
	entry, err := c.store.Get(ctx, c.Key(page))
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			c.logger.Warn().Err(err).Int("page", page).Msg("Cache get error")
		}
		return nil, false
	}
	return entry, true
}

// Fetch returns the result set of page, from the cache when present,
// otherwise from the data source.
func (c *Coordinator) Fetch(ctx context.Context, page int) ([]categories.Category, error) {
	if entry, ok := c.cachedEntry(ctx, page); ok {
		c.logger.Debug().
			Int("page", page).
			Dur("age", entry.Age()).
			Msg("Page served from cache")
		return entry.Items, nil
	}
	return c.load(ctx, page, false)
}

// Refresh fetches page from the data source even when it is cached and
// replaces the cached entry. It still joins a fetch already in flight.
func (c *Coordinator) Refresh(ctx context.Context, page int) ([]categories.Category, error) {
	return c.load(ctx, page, true)
}

// Warm makes sure page is cached. It is a no-op returning false when the
// page is already fresh or in flight; otherwise it fetches and returns true.
func (c *Coordinator) Warm(ctx context.Context, page int) (bool, error) {
	switch c.State(ctx, page) {
	case StateFresh, StatePending:
		return false, nil
	}
	if _, err := c.load(ctx, page, false); err != nil {
		return true, err
	}
	return true, nil
}

// State reports the lifecycle state of page.
func (c *Coordinator) State(ctx context.Context, page int) EntryState {
	c.mu.Lock()
	_, pending := c.inflight[page]
	_, failed := c.failed[page]
	c.mu.Unlock()

	if pending {
		return StatePending
	}
	if ok, err := c.store.Has(ctx, c.Key(page)); err == nil && ok {
		return StateFresh
	}
	if failed {
		return StateError
	}
	return StateEmpty
}

// LastError returns the error of the last failed fetch of page, if any.
func (c *Coordinator) LastError(page int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.failed[page]
}

// Invalidate drops the cached entry of page so the next Fetch goes to the
// data source.
func (c *Coordinator) Invalidate(ctx context.Context, page int) error {
	if err := c.store.Delete(ctx, c.Key(page)); err != nil {
		return fmt.Errorf("invalidate page %d: %w", page, err)
	}
	c.logger.Debug().Int("page", page).Msg("Page invalidated")
	return nil
}

// load runs the single flight for page and waits for it or for ctx.
// The flight itself is detached from ctx: other callers may have joined
// it, and a result that arrives late still populates the cache.
func (c *Coordinator) load(ctx context.Context, page int, force bool) ([]categories.Category, error) {
	if !ValidPage(page, c.config.PageSize) {
		return nil, &FetchError{Resource: c.config.Resource, Page: page, Err: ErrPageOutOfRange}
	}

	key := c.Key(page).String()
	flightCtx := context.WithoutCancel(ctx)

	ch := c.group.DoChan(key, func() (interface{}, error) {
		return c.fetchPage(flightCtx, page, force)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]categories.Category), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// fetchPage is the body of a flight. It must only run inside the group.
func (c *Coordinator) fetchPage(ctx context.Context, page int, force bool) ([]categories.Category, error) {
	c.mu.Lock()
	c.inflight[page] = struct{}{}
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.inflight, page)
		c.mu.Unlock()
	}()

	// a flight that finished just before this one started may have filled the key
	if !force {
		if items, ok := c.Cached(ctx, page); ok {
			return items, nil
		}
	}

	req := c.Request(page)
	start := time.Now()

	c.logger.Debug().
		Int("page", page).
		Int("offset", req.Offset).
		Int("limit", req.Limit).
		Msg("Fetching page")

	items, err := c.source.ListCategories(ctx, req.Offset, req.Limit)
	pageFetchDuration.WithLabelValues(c.config.Resource).Observe(time.Since(start).Seconds())

	if err != nil {
		pageFetchesTotal.WithLabelValues(c.config.Resource, "error").Inc()
		fetchErr := &FetchError{Resource: c.config.Resource, Page: page, Err: err}

		c.mu.Lock()
		c.failed[page] = fetchErr
		c.mu.Unlock()

		c.logger.Warn().Err(err).Int("page", page).Msg("Page fetch failed")
		return nil, fetchErr
	}

	pageFetchesTotal.WithLabelValues(c.config.Resource, "ok").Inc()
	if items == nil {
		items = []categories.Category{}
	}

	if err := c.store.Set(ctx, c.Key(page), cache.NewEntry(items, c.config.TTL)); err != nil {
		// the caller still gets the page; only reuse is lost
		c.logger.Warn().Err(err).Int("page", page).Msg("Failed to cache page")
	}

	c.mu.Lock()
	delete(c.failed, page)
	c.mu.Unlock()

	c.logger.Debug().
		Int("page", page).
		Int("items", len(items)).
		Dur("duration", time.Since(start)).
		Msg("Page fetched")

	return items, nil
}
