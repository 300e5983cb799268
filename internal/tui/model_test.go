package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Sternrassler/category-pager/internal/testutil"
	"github.com/Sternrassler/category-pager/pkg/cache"
	"github.com/Sternrassler/category-pager/pkg/categories"
	"github.com/Sternrassler/category-pager/pkg/pagination"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSource struct {
	items []categories.Category
}

func (s staticSource) ListCategories(ctx context.Context, offset, limit int) ([]categories.Category, error) {
	if offset >= len(s.items) {
		return []categories.Category{}, nil
	}
	end := min(offset+limit, len(s.items))
	return s.items[offset:end], nil
}

func newTestModel(t *testing.T, total int, location string) (Model, *pagination.View) {
	t.Helper()

	loc, err := pagination.NewURLLocation(location)
	require.NoError(t, err)

	coord := pagination.NewCoordinator(
		staticSource{items: testutil.GenerateCategories(total)},
		cache.NewMemoryStore(),
		pagination.DefaultCoordinatorConfig(),
		zerolog.Nop(),
	)
	view := pagination.NewView(pagination.NewPageState(loc, zerolog.Nop()), coord, zerolog.Nop())
	t.Cleanup(view.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err = view.Wait(ctx)
	require.NoError(t, err)

	return New(view, "Categories", zerolog.Nop()), view
}

func press(m Model, key string) (Model, tea.Cmd) {
	var msg tea.KeyMsg
	switch key {
	case "left":
		msg = tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		msg = tea.KeyMsg{Type: tea.KeyRight}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func settle(t *testing.T, m Model, view *pagination.View) Model {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	snap, err := view.Wait(ctx)
	require.NoError(t, err)
	next, _ := m.Update(snapshotMsg(snap))
	return next.(Model)
}

func TestModel_NextAndPrevious(t *testing.T) {
	m, view := newTestModel(t, 8, "/categories")

	assert.Equal(t, 1, m.Snapshot().Page)
	assert.True(t, m.Snapshot().HasNextPage())

	// previous is disabled on the first page
	m, _ = press(m, "left")
	assert.Equal(t, 1, view.CurrentPage())

	m, _ = press(m, "right")
	assert.Equal(t, 2, view.CurrentPage())
	m = settle(t, m, view)
	assert.Len(t, m.Snapshot().Items, 3)

	// next is disabled on a short page
	m, _ = press(m, "l")
	assert.Equal(t, 2, view.CurrentPage())

	m, _ = press(m, "h")
	assert.Equal(t, 1, view.CurrentPage())
}

func TestModel_Quit(t *testing.T) {
	m, _ := newTestModel(t, 8, "/categories")

	for _, key := range []string{"q", "esc"} {
		_, cmd := press(m, key)
		require.NotNil(t, cmd, key)
		assert.IsType(t, tea.QuitMsg{}, cmd(), key)
	}
}

func TestModel_SnapshotMsgSchedulesNextWait(t *testing.T) {
	m, view := newTestModel(t, 8, "/categories")

	next, cmd := m.Update(snapshotMsg(view.Snapshot()))
	assert.NotNil(t, cmd)
	assert.Equal(t, 1, next.(Model).Snapshot().Page)
}

func TestModel_ClosedViewQuits(t *testing.T) {
	m, view := newTestModel(t, 8, "/categories")
	view.Close()

	msg := waitForUpdate(view.Updates())()
	for {
		if _, ok := msg.(closedMsg); ok {
			break
		}
		msg = waitForUpdate(view.Updates())()
	}

	_, cmd := m.Update(msg)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestRenderPage(t *testing.T) {
	items := testutil.GenerateCategories(5)

	tests := []struct {
		name     string
		snap     pagination.Snapshot
		contains []string
		excludes []string
	}{
		{
			name:     "pending shows skeleton",
			snap:     pagination.Snapshot{Page: 1, PageSize: 5, Phase: pagination.PhasePending},
			contains: []string{skeletonCell, "Page 1", "Previous", "Next"},
			excludes: []string{"Category 1"},
		},
		{
			name:     "settled page",
			snap:     pagination.Snapshot{Page: 2, PageSize: 5, Items: items, Phase: pagination.PhaseSettled},
			contains: []string{"Category 1", "Description of category 5", "Page 2"},
			excludes: []string{skeletonCell, "Loading"},
		},
		{
			name:     "placeholder shows previous rows",
			snap:     pagination.Snapshot{Page: 3, PageSize: 5, Items: items, Phase: pagination.PhasePlaceholder},
			contains: []string{"Category 1", "Loading page 3"},
		},
		{
			name: "error offers retry",
			snap: pagination.Snapshot{
				Page:     4,
				PageSize: 5,
				Items:    items,
				Phase:    pagination.PhaseError,
				Err:      errors.New("connection refused"),
			},
			contains: []string{"Failed to load page 4", "connection refused", "press r to retry", "Category 1"},
		},
		{
			name:     "empty page",
			snap:     pagination.Snapshot{Page: 9, PageSize: 5, Items: []categories.Category{}, Phase: pagination.PhaseSettled},
			contains: []string{"No categories on this page", "Page 9"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := RenderPage("Categories", tt.snap)
			for _, want := range tt.contains {
				assert.True(t, strings.Contains(out, want), "output should contain %q:\n%s", want, out)
			}
			for _, unwanted := range tt.excludes {
				assert.False(t, strings.Contains(out, unwanted), "output should not contain %q:\n%s", unwanted, out)
			}
		})
	}
}
