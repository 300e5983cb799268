package pagination

import (
	"context"
	"sync"

	"github.com/Sternrassler/category-pager/pkg/categories"
	"github.com/rs/zerolog"
)

// View is the paginated list of one screen: it follows the page in its
// PageState, loads it through the Coordinator and warms the next page.
//
// Results of a fetch that completes after the view moved to another page
// are not shown; they still land in the shared cache.
type View struct {
	state    *PageState
	coord    *Coordinator
	prefetch *Prefetcher
	logger   zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu          sync.Mutex
	snap        Snapshot
	gen         uint64
	loaded      bool
	closed      bool
	settled     chan struct{}
	settledDone bool
	updates     chan Snapshot
}

// NewView creates a view and starts loading the page found in state.
func NewView(state *PageState, coord *Coordinator, logger zerolog.Logger) *View {
	ctx, cancel := context.WithCancel(context.Background())

	v := &View{
		state:    state,
		coord:    coord,
		prefetch: NewPrefetcher(coord, logger),
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
		snap:     Snapshot{Page: DefaultPage, PageSize: coord.PageSize()},
		settled:  make(chan struct{}),
		updates:  make(chan Snapshot, 1),
	}

	v.sync(false)
	return v
}

// CurrentPage returns the page in the view's location.
func (v *View) CurrentPage() int {
	return v.state.CurrentPage()
}

// SetPage moves the view to page n and loads it.
func (v *View) SetPage(n int) error {
	if v.isClosed() {
		return ErrViewClosed
	}
	v.state.SetPage(n)
	v.sync(false)
	return nil
}

// Sync reloads the view after its location was changed from outside,
// e.g. by history navigation. Nothing happens if the page is unchanged.
func (v *View) Sync() error {
	if v.isClosed() {
		return ErrViewClosed
	}
	v.sync(false)
	return nil
}

// Refetch reloads the current page from the data source, replacing its
// cached entry.
func (v *View) Refetch() error {
	if v.isClosed() {
		return ErrViewClosed
	}
	v.sync(true)
	return nil
}

// Snapshot returns the current render state.
func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snap
}

// Items returns the rows to display (possibly placeholder rows).
func (v *View) Items() []categories.Category {
	return v.Snapshot().Items
}

// IsPending reports that there is nothing to display yet.
func (v *View) IsPending() bool {
	return v.Snapshot().IsPending()
}

// HasNextPage reports whether the Next control should be enabled.
func (v *View) HasNextPage() bool {
	return v.Snapshot().HasNextPage()
}

// HasPreviousPage reports whether the Previous control should be enabled.
func (v *View) HasPreviousPage() bool {
	return v.Snapshot().HasPreviousPage()
}

// Updates delivers the latest snapshot after every change. Only the most
// recent undelivered snapshot is kept. The channel is closed by Close.
func (v *View) Updates() <-chan Snapshot {
	return v.updates
}

// Wait blocks until the current page has settled or ctx is done and
// returns the snapshot at that point.
func (v *View) Wait(ctx context.Context) (Snapshot, error) {
	for {
		v.mu.Lock()
		snap := v.snap
		settled := v.settled
		closed := v.closed
		v.mu.Unlock()

		if snap.IsSettled() {
			return snap, nil
		}
		if closed {
			return snap, ErrViewClosed
		}

		select {
		case <-settled:
		case <-ctx.Done():
			return snap, ctx.Err()
		}
	}
}

// WaitPrefetch blocks until background warms started so far have finished.
func (v *View) WaitPrefetch() {
	v.prefetch.Wait()
}

// Close stops the view. In-flight loads are abandoned and pending warms
// are cancelled.
func (v *View) Close() {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.closed = true
	v.cancel()
	v.closeSettledLocked()
	close(v.updates)
	v.mu.Unlock()

	v.wg.Wait()
	v.prefetch.Wait()
}

func (v *View) isClosed() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.closed
}

// sync derives the page from the location and loads it. Without force, a
// page that is already current and not failed is left alone.
func (v *View) sync(force bool) {
	page := v.state.CurrentPage()

	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	if !force && v.loaded && page == v.snap.Page && v.snap.Phase != PhaseError {
		v.mu.Unlock()
		return
	}
	v.loaded = true
	v.gen++
	gen := v.gen
	v.resetSettledLocked()
	v.mu.Unlock()

	var (
		cached []categories.Category
		hit    bool
	)
	if !force {
		cached, hit = v.coord.Cached(v.ctx, page)
	}

	v.mu.Lock()
	if v.closed || gen != v.gen {
		v.mu.Unlock()
		return
	}

	if hit {
		v.settleLocked(page, cached, nil)
		v.mu.Unlock()
		return
	}

	prev := v.snap
	next := Snapshot{
		Page:     page,
		PageSize: v.coord.PageSize(),
		Version:  prev.Version,
	}
	if prev.Items != nil {
		next.Items = prev.Items
		next.Phase = PhasePlaceholder
		placeholderRendersTotal.WithLabelValues(v.coord.Resource()).Inc()
	} else {
		next.Phase = PhasePending
	}
	v.snap = next
	v.publishLocked()

	v.wg.Add(1)
	v.mu.Unlock()

	go v.load(gen, page, force)
}

// load fetches page for generation gen and applies the result if gen is
// still current.
func (v *View) load(gen uint64, page int, force bool) {
	defer v.wg.Done()

	var (
		items []categories.Category
		err   error
	)
	if force {
		items, err = v.coord.Refresh(v.ctx, page)
	} else {
		items, err = v.coord.Fetch(v.ctx, page)
	}

	v.mu.Lock()
	if v.closed || gen != v.gen {
		v.mu.Unlock()
		discardedResultsTotal.WithLabelValues(v.coord.Resource()).Inc()
		v.logger.Debug().Int("page", page).Msg("Discarding result of abandoned page")
		return
	}

	v.settleLocked(page, items, err)
	v.mu.Unlock()
}

// settleLocked records the outcome of loading page and hands it to the
// prefetcher before waiters are released. v.mu must be held.
func (v *View) settleLocked(page int, items []categories.Category, err error) {
	next := Snapshot{
		Page:     page,
		PageSize: v.coord.PageSize(),
		Version:  v.snap.Version + 1,
	}
	if err != nil {
		next.Items = v.snap.Items
		next.Phase = PhaseError
		next.Err = err
		v.logger.Warn().Err(err).Int("page", page).Msg("Page load failed")
	} else {
		next.Items = items
		next.Phase = PhaseSettled
	}

	v.snap = next
	v.prefetch.Schedule(v.ctx, next)
	v.closeSettledLocked()
	v.publishLocked()
}

// publishLocked replaces any undelivered update with the current snapshot.
func (v *View) publishLocked() {
	select {
	case <-v.updates:
	default:
	}
	select {
	case v.updates <- v.snap:
	default:
	}
}

func (v *View) resetSettledLocked() {
	v.closeSettledLocked()
	v.settled = make(chan struct{})
	v.settledDone = false
}

func (v *View) closeSettledLocked() {
	if !v.settledDone {
		close(v.settled)
		v.settledDone = true
	}
}
