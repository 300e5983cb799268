// Package categories is the data-source client for the catalog API's
// categories collection.
package categories

import (
	"github.com/google/uuid"
)

// ListPath is the collection endpoint of the categories resource.
const ListPath = "/api/v1/categories/"

// Category is a single product category as returned by the catalog API.
type Category struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
}

// ListParams are the offset/limit query parameters of the list endpoint.
type ListParams struct {
	Skip  int `url:"skip"`
	Limit int `url:"limit"`
}
