package pagination

import (
	"fmt"

	"github.com/Sternrassler/category-pager/pkg/categories"
)

// Phase tags what a Snapshot's items represent.
type Phase int

const (
	// PhasePending means the page is loading and there is nothing to show.
	PhasePending Phase = iota
	// PhasePlaceholder means the page is loading and the items are the
	// previously displayed page.
	PhasePlaceholder
	// PhaseSettled means the items are the fetched contents of the page.
	PhaseSettled
	// PhaseError means the last fetch of the page failed. Items keep
	// whatever was displayed before.
	PhaseError
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhasePending:
		return "pending"
	case PhasePlaceholder:
		return "placeholder"
	case PhaseSettled:
		return "settled"
	case PhaseError:
		return "error"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Snapshot is what the presentation layer renders for the current page.
type Snapshot struct {
	// Page is the current page number
	Page int

	// PageSize is the fixed number of rows per page
	PageSize int

	// Items are the rows to display; nil while nothing was ever loaded
	Items []categories.Category

	// Phase tags the items
	Phase Phase

	// Err is the fetch failure when Phase is PhaseError
	Err error

	// Version increases on every settle of the view
	Version uint64
}

// IsPending reports that there is no data at all to show yet.
func (s Snapshot) IsPending() bool {
	return s.Phase == PhasePending
}

// IsPlaceholder reports that Items belong to the previously displayed page.
func (s Snapshot) IsPlaceholder() bool {
	return s.Phase == PhasePlaceholder
}

// IsSettled reports that the current page's fetch completed, successfully or not.
func (s Snapshot) IsSettled() bool {
	return s.Phase == PhaseSettled || s.Phase == PhaseError
}

// HasNextPage reports whether a page after this one plausibly exists: the
// current page is settled, came back full and is below MaxPage.
func (s Snapshot) HasNextPage() bool {
	return s.Phase == PhaseSettled && s.PageSize > 0 && len(s.Items) == s.PageSize &&
		ValidPage(s.Page+1, s.PageSize)
}

// HasPreviousPage reports whether the page is past the first.
func (s Snapshot) HasPreviousPage() bool {
	return s.Page > 1
}
