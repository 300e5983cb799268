package pagination

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// PageParam is the location query field holding the page number.
const PageParam = "page"

// PageState holds the current page number in a Location.
type PageState struct {
	location Location
	logger   zerolog.Logger
}

// NewPageState creates a page state holder over location.
func NewPageState(location Location, logger zerolog.Logger) *PageState {
	return &PageState{
		location: location,
		logger:   logger,
	}
}

// CurrentPage returns the page stored in the location, or DefaultPage when
// it is missing or not a positive integer.
func (s *PageState) CurrentPage() int {
	raw := s.location.Query().Get(PageParam)
	page, ok := ParsePage(raw)
	if !ok {
		invalidPagesTotal.Inc()
		s.logger.Debug().
			Str("value", raw).
			Int("page", page).
			Msg("Invalid page value, using default page")
	}
	return page
}

// SetPage stores n as the page, keeping every other query field.
// The value is written unchanged; CurrentPage normalises it on read.
func (s *PageState) SetPage(n int) {
	s.location.Navigate(func(prev url.Values) url.Values {
		next := make(url.Values, len(prev)+1)
		for key, values := range prev {
			next[key] = append([]string(nil), values...)
		}
		next.Set(PageParam, strconv.Itoa(n))
		return next
	})
}

// ParsePage converts a raw page value. A missing value yields DefaultPage
// and ok; anything that is not an integer in 1..MaxPage yields DefaultPage
// and !ok. Integral floats such as "2.0" are accepted.
func ParsePage(raw string) (page int, ok bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultPage, true
	}

	if n, err := strconv.Atoi(raw); err == nil {
		if n < 1 || n > MaxPage {
			return DefaultPage, false
		}
		return n, true
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f != math.Trunc(f) || f < 1 || f > MaxPage {
		return DefaultPage, false
	}
	return int(f), true
}
