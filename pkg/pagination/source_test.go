package pagination

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Sternrassler/category-pager/internal/testutil"
	"github.com/Sternrassler/category-pager/pkg/cache"
	"github.com/Sternrassler/category-pager/pkg/categories"
	"github.com/rs/zerolog"
)

// fakeSource serves a fixed list of categories and records calls per offset.
// Offsets can be made to fail or to block until released.
type fakeSource struct {
	mu    sync.Mutex
	items []categories.Category
	calls map[int]int
	fail  map[int]error
	gates map[int]chan struct{}
}

func newFakeSource(total int) *fakeSource {
	return &fakeSource{
		items: testutil.GenerateCategories(total),
		calls: make(map[int]int),
		fail:  make(map[int]error),
		gates: make(map[int]chan struct{}),
	}
}

func (f *fakeSource) ListCategories(ctx context.Context, offset, limit int) ([]categories.Category, error) {
	f.mu.Lock()
	f.calls[offset]++
	gate := f.gates[offset]
	err := f.fail[offset]
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}

	if offset >= len(f.items) {
		return []categories.Category{}, nil
	}
	end := offset + limit
	if end > len(f.items) {
		end = len(f.items)
	}
	out := make([]categories.Category, end-offset)
	copy(out, f.items[offset:end])
	return out, nil
}

// hold blocks requests for offset until the returned release is called.
func (f *fakeSource) hold(offset int) (release func()) {
	gate := make(chan struct{})
	f.mu.Lock()
	f.gates[offset] = gate
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.gates, offset)
			f.mu.Unlock()
			close(gate)
		})
	}
}

func (f *fakeSource) failOffset(offset int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[offset] = err
}

func (f *fakeSource) clearFailure(offset int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.fail, offset)
}

func (f *fakeSource) callsFor(offset int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[offset]
}

func (f *fakeSource) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func newTestCoordinator(source DataSource) (*Coordinator, *cache.MemoryStore) {
	store := cache.NewMemoryStore()
	return NewCoordinator(source, store, DefaultCoordinatorConfig(), zerolog.Nop()), store
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}
