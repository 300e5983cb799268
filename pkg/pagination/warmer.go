package pagination

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// WarmConfig holds batch warmer configuration
type WarmConfig struct {
	// MaxConcurrency is the maximum number of parallel page fetches
	MaxConcurrency int
	// Timeout per page fetch
	Timeout time.Duration
}

// DefaultWarmConfig returns a conservative default configuration
func DefaultWarmConfig() WarmConfig {
	return WarmConfig{
		MaxConcurrency: 4,
		Timeout:        15 * time.Second,
	}
}

// WarmResult is the outcome of warming a single page
type WarmResult struct {
	Page  int
	Items int
	Error error
}

// Warmer fills the cache for a range of pages ahead of any view, e.g. to
// prime a shared Redis store.
type Warmer struct {
	coord  *Coordinator
	config WarmConfig
	logger zerolog.Logger
}

// NewWarmer creates a new batch warmer
func NewWarmer(coord *Coordinator, config WarmConfig, logger zerolog.Logger) *Warmer {
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 4
	}
	if config.Timeout <= 0 {
		config.Timeout = 15 * time.Second
	}

	return &Warmer{
		coord:  coord,
		config: config,
		logger: logger,
	}
}

// WarmRange caches pages first..last using a worker pool. Pages after the
// first short page are skipped since they cannot hold data. Returns the
// number of rows per warmed page and the first error encountered.
func (w *Warmer) WarmRange(ctx context.Context, first, last int) (map[int]int, error) {
	if first < 1 {
		first = 1
	}
	if last > MaxPage {
		last = MaxPage
	}
	if last < first {
		return map[int]int{}, nil
	}

	start := time.Now()
	total := last - first + 1

	w.logger.Info().
		Int("first", first).
		Int("last", last).
		Int("workers", w.config.MaxConcurrency).
		Msg("Starting page warm")

	// lowest page known to be past the end of the data
	var endPage atomic.Int64
	endPage.Store(int64(last + 1))

	// pages are produced on demand so a wide range costs nothing up front
	pageQueue := make(chan int, w.config.MaxConcurrency)
	go func() {
		defer close(pageQueue)
		for page := first; page <= last; page++ {
			if int64(page) > endPage.Load() {
				return
			}
			select {
			case pageQueue <- page:
			case <-ctx.Done():
				return
			}
		}
	}()

	results := make(chan WarmResult, w.config.MaxConcurrency)

	var wg sync.WaitGroup
	for i := 0; i < w.config.MaxConcurrency; i++ {
		wg.Add(1)
		go w.worker(ctx, i, pageQueue, results, &endPage, &wg)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	counts := make(map[int]int)
	var firstErr error
	for result := range results {
		if result.Error != nil {
			if firstErr == nil {
				firstErr = result.Error
			}
			continue
		}
		counts[result.Page] = result.Items
	}

	// a worker may have warmed a page before a lower page was found short
	end := int(endPage.Load())
	for page := range counts {
		if page > end {
			delete(counts, page)
		}
	}

	w.logger.Info().
		Int("warmed", len(counts)).
		Int("requested", total).
		Int("end_page", end).
		Dur("duration", time.Since(start)).
		Msg("Page warm complete")

	if firstErr != nil {
		return counts, fmt.Errorf("warm pages %d-%d (partial: %d pages): %w", first, last, len(counts), firstErr)
	}
	return counts, nil
}

// worker processes pages from the queue
func (w *Warmer) worker(ctx context.Context, workerID int, pageQueue <-chan int, results chan<- WarmResult, endPage *atomic.Int64, wg *sync.WaitGroup) {
	defer wg.Done()
	pagesProcessed := 0

	for page := range pageQueue {
		select {
		case <-ctx.Done():
			w.logger.Debug().
				Int("worker_id", workerID).
				Int("pages_processed", pagesProcessed).
				Msg("Worker stopping (context cancelled)")
			return
		default:
		}

		if int64(page) > endPage.Load() {
			continue
		}

		pageCtx, cancel := context.WithTimeout(ctx, w.config.Timeout)
		items, err := w.coord.Fetch(pageCtx, page)
		cancel()

		if err != nil {
			w.logger.Warn().
				Err(err).
				Int("worker_id", workerID).
				Int("page", page).
				Msg("Page warm failed")
			results <- WarmResult{Page: page, Error: err}
			continue
		}

		if len(items) < w.coord.PageSize() {
			lowerEnd(endPage, int64(page))
		}

		results <- WarmResult{Page: page, Items: len(items)}
		pagesProcessed++
	}

	if pagesProcessed > 0 {
		w.logger.Debug().
			Int("worker_id", workerID).
			Int("pages_processed", pagesProcessed).
			Msg("Worker completed")
	}
}

// lowerEnd sets end to page if page is lower.
func lowerEnd(end *atomic.Int64, page int64) {
	for {
		current := end.Load()
		if page >= current || end.CompareAndSwap(current, page) {
			return
		}
	}
}
