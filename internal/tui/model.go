// Package tui is the terminal presentation of a paginated category list.
package tui

import (
	"github.com/Sternrassler/category-pager/pkg/pagination"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
)

// snapshotMsg carries a new render state from the view.
type snapshotMsg pagination.Snapshot

// closedMsg reports that the view stopped publishing updates.
type closedMsg struct{}

// Model is the bubbletea model of the category browser.
type Model struct {
	view   *pagination.View
	title  string
	logger zerolog.Logger

	snap pagination.Snapshot
}

// New creates a browser model over view.
func New(view *pagination.View, title string, logger zerolog.Logger) Model {
	return Model{
		view:   view,
		title:  title,
		logger: logger,
		snap:   view.Snapshot(),
	}
}

// Init starts listening for view updates.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		waitForUpdate(m.view.Updates()),
		tea.HideCursor,
	)
}

// Update handles key presses and view updates.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			return m, tea.Quit
		case "left", "h", "p":
			if m.snap.HasPreviousPage() {
				m.navigate(m.snap.Page - 1)
			}
		case "right", "l", "n":
			if m.snap.HasNextPage() {
				m.navigate(m.snap.Page + 1)
			}
		case "r":
			if err := m.view.Refetch(); err != nil {
				m.logger.Debug().Err(err).Msg("Reload ignored")
			}
			m.snap = m.view.Snapshot()
		}

	case snapshotMsg:
		m.snap = pagination.Snapshot(msg)
		return m, waitForUpdate(m.view.Updates())

	case closedMsg:
		return m, tea.Quit
	}

	return m, nil
}

// View renders the current page.
func (m Model) View() string {
	return RenderPage(m.title, m.snap)
}

// Snapshot returns the render state the model currently shows.
func (m Model) Snapshot() pagination.Snapshot {
	return m.snap
}

func (m *Model) navigate(page int) {
	if err := m.view.SetPage(page); err != nil {
		m.logger.Debug().Err(err).Int("page", page).Msg("Navigation ignored")
		return
	}
	m.snap = m.view.Snapshot()
}

func waitForUpdate(updates <-chan pagination.Snapshot) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-updates
		if !ok {
			return closedMsg{}
		}
		return snapshotMsg(snap)
	}
}

// Run shows the browser on the terminal until the user quits.
func Run(view *pagination.View, title string, logger zerolog.Logger) error {
	p := tea.NewProgram(New(view, title, logger), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
