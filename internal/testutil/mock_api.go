// Package testutil provides testing utilities for the category pager.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"time"

	"github.com/Sternrassler/category-pager/pkg/categories"
	"github.com/google/uuid"
)

// MockAPIResponse overrides the response for a given skip offset.
type MockAPIResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
	// Times is how many requests the override applies to (0 means forever).
	Times int
}

// MockAPI is a configurable mock catalog API serving the categories list endpoint.
type MockAPI struct {
	server *httptest.Server

	mu        sync.RWMutex
	items     []categories.Category
	overrides map[int]*MockAPIResponse
	delay     time.Duration
	gate      chan struct{}

	// Tracking
	requestCount int
	byOffset     map[int]int
	lastQuery    string
}

// GenerateCategories returns n deterministic categories named "Category 1".."Category n".
func GenerateCategories(n int) []categories.Category {
	items := make([]categories.Category, 0, n)
	for i := 1; i <= n; i++ {
		name := fmt.Sprintf("Category %d", i)
		items = append(items, categories.Category{
			ID:          uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)),
			Name:        name,
			Description: fmt.Sprintf("Description of category %d", i),
		})
	}
	return items
}

// NewMockAPI creates a mock catalog API holding total generated categories.
func NewMockAPI(total int) *MockAPI {
	mock := &MockAPI{
		items:     GenerateCategories(total),
		overrides: make(map[int]*MockAPIResponse),
		byOffset:  make(map[int]int),
	}

	mux := http.NewServeMux()
	mux.HandleFunc(categories.ListPath, mock.listHandler)
	mock.server = httptest.NewServer(mux)

	return mock
}

// URL returns the mock server URL.
func (m *MockAPI) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockAPI) Close() {
	m.Release()
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount = 0
	m.byOffset = make(map[int]int)
	m.lastQuery = ""
}

// SetDelay delays every response by d.
func (m *MockAPI) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
}

// SetResponse overrides responses for requests with the given skip offset.
func (m *MockAPI) SetResponse(skip int, resp MockAPIResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.overrides[skip] = &resp
}

// Hold makes requests block until Release is called.
func (m *MockAPI) Hold() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gate == nil {
		m.gate = make(chan struct{})
	}
}

// Release unblocks requests held by Hold.
func (m *MockAPI) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gate != nil {
		close(m.gate)
		m.gate = nil
	}
}

// RequestCount returns the number of requests made to the server.
func (m *MockAPI) RequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requestCount
}

// RequestsFor returns the number of requests made with the given skip offset.
func (m *MockAPI) RequestsFor(skip int) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.byOffset[skip]
}

// LastQuery returns the raw query string of the last request.
func (m *MockAPI) LastQuery() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastQuery
}

func (m *MockAPI) listHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	skip, err := queryInt(r, "skip", 0)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": err.Error()})
		return
	}
	limit, err := queryInt(r, "limit", 100)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": err.Error()})
		return
	}

	m.mu.Lock()
	m.requestCount++
	m.byOffset[skip]++
	m.lastQuery = r.URL.RawQuery
	delay := m.delay
	gate := m.gate
	override := m.overrides[skip]
	if override != nil && override.Times > 0 {
		override.Times--
		if override.Times == 0 {
			delete(m.overrides, skip)
		}
	}
	m.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-r.Context().Done():
			return
		}
	}
	if delay > 0 {
		time.Sleep(delay)
	}

	if override != nil {
		if override.Delay > 0 {
			time.Sleep(override.Delay)
		}
		for key, value := range override.Headers {
			w.Header().Set(key, value)
		}
		w.WriteHeader(override.StatusCode)
		if override.Body != "" {
			w.Write([]byte(override.Body))
		}
		return
	}

	m.mu.RLock()
	page := window(m.items, skip, limit)
	m.mu.RUnlock()

	writeJSON(w, http.StatusOK, page)
}

func window(items []categories.Category, skip, limit int) []categories.Category {
	if skip >= len(items) {
		return []categories.Category{}
	}
	end := skip + limit
	if end > len(items) {
		end = len(items)
	}
	return items[skip:end]
}

func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", name)
	}
	return v, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse(times int) MockAPIResponse {
	return MockAPIResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"detail": "Internal server error"}`,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Times:      times,
	}
}

// NewNotFoundResponse creates a 404 Not Found response.
func NewNotFoundResponse(times int) MockAPIResponse {
	return MockAPIResponse{
		StatusCode: http.StatusNotFound,
		Body:       `{"detail": "Not Found"}`,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Times:      times,
	}
}

// NewRateLimitResponse creates a 429 Too Many Requests response.
func NewRateLimitResponse(times int) MockAPIResponse {
	return MockAPIResponse{
		StatusCode: http.StatusTooManyRequests,
		Body:       `{"detail": "Rate limit exceeded"}`,
		Headers:    map[string]string{"Content-Type": "application/json", "Retry-After": "1"},
		Times:      times,
	}
}
