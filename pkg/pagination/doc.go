// Package pagination coordinates a paged list view with its page cache.
//
// A View ties together three parts:
//
//   - PageState keeps the page number in a shareable Location (a URL query),
//     defaulting to page 1 for missing or invalid values
//   - Coordinator maps a page to the cache key ("categories", page) and the
//     request {offset: (page-1)*size, limit: size}, serving cached pages and
//     running at most one fetch per key
//   - Prefetcher warms page+1 in the background whenever the current page
//     settles with a full page of rows
//
// Example usage:
//
//	loc, _ := pagination.NewURLLocation("/categories?page=1")
//	coord := pagination.NewCoordinator(client, cache.NewMemoryStore(),
//		pagination.DefaultCoordinatorConfig(), logger)
//	view := pagination.NewView(pagination.NewPageState(loc, logger), coord, logger)
//	defer view.Close()
//
//	snap, err := view.Wait(ctx)
//	if snap.HasNextPage() {
//		view.SetPage(snap.Page + 1) // shows page 1 as placeholder, then page 2
//	}
//
// Moving to a page that is not cached keeps the previous rows on screen
// tagged PhasePlaceholder until the fetch settles. HasNextPage is false for
// placeholders, so stale rows never trigger a prefetch.
//
// Warmer fills a range of pages with a worker pool, e.g. to prime a shared
// Redis store before views open.
package pagination
