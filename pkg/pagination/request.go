package pagination

import "math"

const (
	// DefaultPage is the page shown when the location carries no usable page.
	DefaultPage = 1

	// DefaultPageSize is the number of rows per page.
	DefaultPageSize = 5

	// DefaultResource is the listed collection.
	DefaultResource = "categories"

	// MaxPage is the highest page number a location may select.
	MaxPage = math.MaxInt32
)

// Request is the offset/limit window fetched for one page.
type Request struct {
	Offset int
	Limit  int
}

// RequestFor derives the window of a 1-indexed page.
func RequestFor(page, pageSize int) Request {
	return Request{
		Offset: (page - 1) * pageSize,
		Limit:  pageSize,
	}
}

// ValidPage reports whether page is in 1..MaxPage and its offset fits in an int.
func ValidPage(page, pageSize int) bool {
	if page < 1 || page > MaxPage {
		return false
	}
	return pageSize <= 0 || page-1 <= math.MaxInt/pageSize
}
