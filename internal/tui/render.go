package tui

import (
	"fmt"
	"strings"

	"github.com/Sternrassler/category-pager/pkg/pagination"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

const skeletonCell = "░░░░░░░░░░░░"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#D7D8A2"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)

	staleStyle = cellStyle.Foreground(lipgloss.Color("#6C6C6C"))

	buttonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#DDC074")).
			Bold(true)

	disabledStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4E4E4E"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E06C75"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8A8A8A"))
)

// RenderPage draws the table, pager controls and status line of snap.
func RenderPage(title string, snap pagination.Snapshot) string {
	sections := []string{titleStyle.Render(title), "", renderTable(snap), renderControls(snap)}

	if status := renderStatus(snap); status != "" {
		sections = append(sections, "", status)
	}

	sections = append(sections, "", helpStyle.Render("←/h previous  →/l next  r reload  q quit"))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func renderTable(snap pagination.Snapshot) string {
	rows := make([][]string, 0, snap.PageSize)
	if snap.IsPending() {
		rows = append(rows, []string{skeletonCell, skeletonCell})
	} else {
		for _, item := range snap.Items {
			rows = append(rows, []string{item.Name, item.Description})
		}
	}

	stale := snap.IsPlaceholder()

	return table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("Name", "Description").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case stale:
				return staleStyle
			default:
				return cellStyle
			}
		}).
		Render()
}

func renderControls(snap pagination.Snapshot) string {
	button := func(label string, enabled bool) string {
		if enabled {
			return buttonStyle.Render("[ " + label + " ]")
		}
		return disabledStyle.Render("[ " + label + " ]")
	}

	return strings.Join([]string{
		button("Previous", snap.HasPreviousPage()),
		fmt.Sprintf("Page %d", snap.Page),
		button("Next", snap.HasNextPage()),
	}, "  ")
}

func renderStatus(snap pagination.Snapshot) string {
	switch snap.Phase {
	case pagination.PhaseError:
		return errorStyle.Render(fmt.Sprintf("Failed to load page %d: %v (press r to retry)", snap.Page, snap.Err))
	case pagination.PhasePlaceholder:
		return helpStyle.Render(fmt.Sprintf("Loading page %d...", snap.Page))
	case pagination.PhaseSettled:
		if len(snap.Items) == 0 {
			return helpStyle.Render("No categories on this page")
		}
	}
	return ""
}
