package pagination

import (
	"bytes"
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/Sternrassler/category-pager/pkg/cache"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoordinator_Key(t *testing.T) {
	coord, _ := newTestCoordinator(newFakeSource(0))

	assert.Equal(t, "pager:categories:page=2:size=5", coord.Key(2).String())
	assert.NotEqual(t, coord.Key(1).String(), coord.Key(2).String())

	wide := NewCoordinator(newFakeSource(0), cache.NewMemoryStore(), CoordinatorConfig{PageSize: 10}, zerolog.Nop())
	assert.NotEqual(t, coord.Key(2).String(), wide.Key(2).String())
	assert.Equal(t, Request{Offset: 5, Limit: 5}, coord.Request(2))
}

func TestCoordinator_Fetch_CachesResult(t *testing.T) {
	source := newFakeSource(12)
	coord, store := newTestCoordinator(source)
	ctx := testContext(t)

	items, err := coord.Fetch(ctx, 1)
	require.NoError(t, err)
	require.Len(t, items, 5)
	assert.Equal(t, "Category 1", items[0].Name)

	again, err := coord.Fetch(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, items, again)
	assert.Equal(t, 1, source.callsFor(0))
	assert.Equal(t, 1, store.Len())
}

func TestCoordinator_Fetch_LogsCacheAge(t *testing.T) {
	source := newFakeSource(12)
	var buf bytes.Buffer
	coord := NewCoordinator(source, cache.NewMemoryStore(), DefaultCoordinatorConfig(),
		zerolog.New(&buf).Level(zerolog.DebugLevel))
	ctx := testContext(t)

	_, err := coord.Fetch(ctx, 1)
	require.NoError(t, err)
	buf.Reset()

	_, err = coord.Fetch(ctx, 1)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"message":"Page served from cache"`)
	assert.Contains(t, buf.String(), `"age":`)
}

func TestCoordinator_Fetch_RejectsOutOfRangePages(t *testing.T) {
	source := newFakeSource(12)
	coord, _ := newTestCoordinator(source)
	ctx := testContext(t)

	for _, page := range []int{0, -3, MaxPage + 1, math.MaxInt} {
		_, err := coord.Fetch(ctx, page)
		require.Error(t, err, "page %d", page)
		assert.ErrorIs(t, err, ErrPageOutOfRange)

		var fetchErr *FetchError
		require.ErrorAs(t, err, &fetchErr)
		assert.Equal(t, page, fetchErr.Page)
	}

	issued, err := coord.Warm(ctx, math.MaxInt)
	assert.True(t, issued)
	assert.ErrorIs(t, err, ErrPageOutOfRange)
	assert.Equal(t, 0, source.totalCalls())

	// the highest page still maps to a non-negative window
	assert.Equal(t, Request{Offset: (MaxPage - 1) * 5, Limit: 5}, coord.Request(MaxPage))
	assert.True(t, ValidPage(MaxPage, DefaultPageSize))
}

func TestCoordinator_Fetch_ShortAndEmptyPages(t *testing.T) {
	source := newFakeSource(8)
	coord, _ := newTestCoordinator(source)
	ctx := testContext(t)

	page2, err := coord.Fetch(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, page2, 3)
	assert.Equal(t, "Category 6", page2[0].Name)

	page3, err := coord.Fetch(ctx, 3)
	require.NoError(t, err)
	assert.NotNil(t, page3)
	assert.Empty(t, page3)
	assert.Equal(t, StateFresh, coord.State(ctx, 3))
}

func TestCoordinator_Fetch_SingleFlight(t *testing.T) {
	source := newFakeSource(20)
	coord, _ := newTestCoordinator(source)
	ctx := testContext(t)

	release := source.hold(0)

	const callers = 10
	var wg sync.WaitGroup
	results := make([]int, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			items, err := coord.Fetch(ctx, 1)
			results[i] = len(items)
			errs[i] = err
		}(i)
	}

	require.Eventually(t, func() bool {
		return coord.State(ctx, 1) == StatePending
	}, time.Second, 5*time.Millisecond)

	release()
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, 5, results[i])
	}
	assert.Equal(t, 1, source.callsFor(0))
}

func TestCoordinator_StateTransitions(t *testing.T) {
	source := newFakeSource(20)
	coord, _ := newTestCoordinator(source)
	ctx := testContext(t)

	assert.Equal(t, StateEmpty, coord.State(ctx, 1))

	release := source.hold(0)
	done := make(chan error, 1)
	go func() {
		_, err := coord.Fetch(ctx, 1)
		done <- err
	}()

	require.Eventually(t, func() bool {
		return coord.State(ctx, 1) == StatePending
	}, time.Second, 5*time.Millisecond)

	release()
	require.NoError(t, <-done)
	assert.Equal(t, StateFresh, coord.State(ctx, 1))
}

func TestCoordinator_ErrorStateAndRecovery(t *testing.T) {
	source := newFakeSource(20)
	coord, _ := newTestCoordinator(source)
	ctx := testContext(t)

	boom := errors.New("connection refused")
	source.failOffset(10, boom)

	_, err := coord.Fetch(ctx, 3)
	require.Error(t, err)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, 3, fetchErr.Page)
	assert.Equal(t, "categories", fetchErr.Resource)
	assert.ErrorIs(t, err, boom)

	assert.Equal(t, StateError, coord.State(ctx, 3))
	assert.ErrorIs(t, coord.LastError(3), boom)

	// a later request re-enters pending and can succeed
	source.clearFailure(10)
	release := source.hold(10)
	done := make(chan error, 1)
	go func() {
		_, err := coord.Fetch(ctx, 3)
		done <- err
	}()
	require.Eventually(t, func() bool {
		return coord.State(ctx, 3) == StatePending
	}, time.Second, 5*time.Millisecond)
	release()

	require.NoError(t, <-done)
	assert.Equal(t, StateFresh, coord.State(ctx, 3))
	assert.NoError(t, coord.LastError(3))
	assert.Equal(t, 2, source.callsFor(10))
}

func TestCoordinator_Warm(t *testing.T) {
	source := newFakeSource(20)
	coord, _ := newTestCoordinator(source)
	ctx := testContext(t)

	issued, err := coord.Warm(ctx, 2)
	require.NoError(t, err)
	assert.True(t, issued)

	issued, err = coord.Warm(ctx, 2)
	require.NoError(t, err)
	assert.False(t, issued, "fresh page must not be warmed again")
	assert.Equal(t, 1, source.callsFor(5))
}

func TestCoordinator_Warm_JoinsInFlight(t *testing.T) {
	source := newFakeSource(20)
	coord, _ := newTestCoordinator(source)
	ctx := testContext(t)

	release := source.hold(5)
	done := make(chan error, 1)
	go func() {
		_, err := coord.Fetch(ctx, 2)
		done <- err
	}()
	require.Eventually(t, func() bool {
		return coord.State(ctx, 2) == StatePending
	}, time.Second, 5*time.Millisecond)

	issued, err := coord.Warm(ctx, 2)
	require.NoError(t, err)
	assert.False(t, issued)

	release()
	require.NoError(t, <-done)
	assert.Equal(t, 1, source.callsFor(5))
}

func TestCoordinator_Refresh(t *testing.T) {
	source := newFakeSource(20)
	coord, _ := newTestCoordinator(source)
	ctx := testContext(t)

	_, err := coord.Fetch(ctx, 1)
	require.NoError(t, err)

	items, err := coord.Refresh(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, items, 5)
	assert.Equal(t, 2, source.callsFor(0))
}

func TestCoordinator_Invalidate(t *testing.T) {
	source := newFakeSource(20)
	coord, _ := newTestCoordinator(source)
	ctx := testContext(t)

	_, err := coord.Fetch(ctx, 1)
	require.NoError(t, err)

	require.NoError(t, coord.Invalidate(ctx, 1))
	assert.Equal(t, StateEmpty, coord.State(ctx, 1))

	_, ok := coord.Cached(ctx, 1)
	assert.False(t, ok)

	_, err = coord.Fetch(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, source.callsFor(0))
}

func TestCoordinator_Fetch_CallerCancelKeepsFlight(t *testing.T) {
	source := newFakeSource(20)
	coord, _ := newTestCoordinator(source)

	release := source.hold(0)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := coord.Fetch(ctx, 1)
		done <- err
	}()
	require.Eventually(t, func() bool {
		return coord.State(context.Background(), 1) == StatePending
	}, time.Second, 5*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	// the abandoned flight still fills the cache
	release()
	require.Eventually(t, func() bool {
		return coord.State(context.Background(), 1) == StateFresh
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, source.callsFor(0))
}

func TestNewCoordinator_Defaults(t *testing.T) {
	coord := NewCoordinator(newFakeSource(0), cache.NewMemoryStore(), CoordinatorConfig{}, zerolog.Nop())
	assert.Equal(t, DefaultPageSize, coord.PageSize())
	assert.Equal(t, DefaultResource, coord.Resource())

	assert.Panics(t, func() {
		NewCoordinator(nil, cache.NewMemoryStore(), CoordinatorConfig{}, zerolog.Nop())
	})
	assert.Panics(t, func() {
		NewCoordinator(newFakeSource(0), nil, CoordinatorConfig{}, zerolog.Nop())
	})
}

func TestEntryState_String(t *testing.T) {
	assert.Equal(t, "empty", StateEmpty.String())
	assert.Equal(t, "pending", StatePending.String())
	assert.Equal(t, "fresh", StateFresh.String())
	assert.Equal(t, "error", StateError.String())
	assert.Equal(t, "EntryState(9)", EntryState(9).String())
}
