package cache

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// KeyPrefix namespaces every page key in shared stores.
const KeyPrefix = "pager"

// Key identifies one cached page of a listed resource.
type Key struct {
	// Resource is the listed collection (e.g., "categories")
	Resource string

	// Page is the 1-indexed page number
	Page int

	// Params are extra list discriminators (filters, page size) that change
	// the page contents. Empty for the plain paged listing.
	Params url.Values
}

// String generates a deterministic cache key string.
// Format: pager:resource:page=N:param1=val1:param2=val2
//
// Example:
//
//	pager:categories:page=2:size=5
func (k Key) String() string {
	parts := []string{KeyPrefix}

	resource := strings.Trim(k.Resource, "/:")
	if resource != "" {
		parts = append(parts, resource)
	}

	parts = append(parts, fmt.Sprintf("page=%d", k.Page))

	// Add params (sorted for determinism)
	if len(k.Params) > 0 {
		keys := make([]string, 0, len(k.Params))
		for key := range k.Params {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			parts = append(parts, fmt.Sprintf("%s=%s", key, k.Params.Get(key)))
		}
	}

	return strings.Join(parts, ":")
}
