package pagination

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

// ShouldPrefetch reports whether the page after snap should be warmed.
func ShouldPrefetch(snap Snapshot) bool {
	return snap.HasNextPage()
}

// Prefetcher warms the page after the current one once it settles full.
type Prefetcher struct {
	coord  *Coordinator
	logger zerolog.Logger

	mu       sync.Mutex
	lastPage int
	lastVer  uint64
	seen     bool

	wg sync.WaitGroup
}

// NewPrefetcher creates a prefetcher that warms pages through coord.
func NewPrefetcher(coord *Coordinator, logger zerolog.Logger) *Prefetcher {
	return &Prefetcher{
		coord:  coord,
		logger: logger,
	}
}

// Schedule evaluates snap and, if the next page should be warmed, starts a
// background warm of snap.Page+1 bound to ctx. A snapshot with the same page
// and version as the last evaluated one is ignored. It returns whether a
// warm task was started.
func (p *Prefetcher) Schedule(ctx context.Context, snap Snapshot) bool {
	p.mu.Lock()
	if p.seen && p.lastPage == snap.Page && p.lastVer == snap.Version {
		p.mu.Unlock()
		return false
	}
	p.seen = true
	p.lastPage = snap.Page
	p.lastVer = snap.Version
	p.mu.Unlock()

	if !ShouldPrefetch(snap) {
		return false
	}

	next := snap.Page + 1
	resource := p.coord.Resource()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		issued, err := p.coord.Warm(ctx, next)
		switch {
		case err != nil:
			if !errors.Is(err, context.Canceled) {
				prefetchesTotal.WithLabelValues(resource, "failed").Inc()
				p.logger.Debug().Err(err).Int("page", next).Msg("Prefetch failed")
			}
		case issued:
			prefetchesTotal.WithLabelValues(resource, "issued").Inc()
			p.logger.Debug().Int("page", next).Msg("Prefetched next page")
		default:
			prefetchesTotal.WithLabelValues(resource, "cached").Inc()
		}
	}()

	return true
}

// Wait blocks until every started warm task has finished.
func (p *Prefetcher) Wait() {
	p.wg.Wait()
}
