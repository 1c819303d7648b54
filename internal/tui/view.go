package tui

import (
	"fmt"
	"strings"

	table "github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	lo := m.layout()

	// Update list size with accurate content height when sidebar visible
	if m.showSidebar {
		m.l.SetSize(sidebarWidth-2, lo.contentH-2)
	}

	// Header
	header := titleStyle.Render(" geomeasure ─ terminal map measuring ")
	if s := m.session(); s != nil {
		header += " " + panelStyle.Render(s.Tool().Name)
	}
	header = lipgloss.NewStyle().Width(lo.contentW).Padding(0).Render(header)

	// Sidebar
	var sidebar string
	if m.showSidebar {
		sidebar = lipgloss.NewStyle().Width(lo.sidebarW).Render(m.l.View())
	}

	var mapView string
	switch {
	case m.showAttrs:
		mapView = tableBox(&m.tbl, lo)
	case m.showShapes:
		mapView = tableBox(&m.shapesTbl, lo)
	case m.pasteMode:
		// size textarea to map area
		m.ta.SetWidth(lo.mapW)
		m.ta.SetHeight(min(lo.mapH, 12))
		mapView = lipgloss.NewStyle().Width(lo.mapW).Height(lo.mapH).Render(m.ta.View())
	case m.inspectPopup != "":
		box := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1).MaxWidth(max(20, min(48, lo.mapW/2))).Render(m.inspectPopup)
		mapView = lipgloss.Place(lo.mapW, lo.mapH, lipgloss.Left, lipgloss.Center, box)
	default:
		// plain map canvas: no border, no background highlight
		mapView = lipgloss.NewStyle().Width(lo.mapW).Height(lo.mapH).Render(m.renderMap(lo.mapW, lo.mapH))
	}

	// Body row
	body := mapView
	if m.showSidebar {
		body = lipgloss.JoinHorizontal(lipgloss.Top, sidebar, " ", mapView)
	}

	// Footer / help
	help := m.renderHelp()
	status := dimStyle.Render(" " + m.status + " ")
	// mouse coords at bottom-right
	coords := ""
	if m.hoverHasGeo {
		coords = dimStyle.Render(fmt.Sprintf("  lon=%.5f lat=%.5f h=%.1fm  ", m.hoverLon, m.hoverLat, m.hoverHeight))
	}
	statusLine := lipgloss.JoinHorizontal(lipgloss.Bottom, status,
		lipgloss.PlaceHorizontal(max(0, lo.contentW-lipgloss.Width(status)), lipgloss.Right, coords))
	footer := lipgloss.NewStyle().Width(lo.contentW).Render(lipgloss.JoinVertical(lipgloss.Left, statusLine, help))

	ui := lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
	return appStyle.Width(lo.contentW).Height(m.height).Render(ui)
}

// tableBox renders a table centered in the map area.
func tableBox(tbl *table.Model, lo layout) string {
	// infer a reasonable width from columns
	colW := 0
	for _, c := range tbl.Columns() {
		colW += c.Width + 3
	}
	if colW == 0 {
		colW = min(60, lo.contentW-6)
	}
	maxW := min(lo.mapW, max(32, colW))
	tbl.SetWidth(maxW - 4)
	tbl.SetHeight(min(lo.mapH-2, 20))
	box := boxStyle.Width(maxW).Render(tbl.View())
	return lipgloss.Place(lo.mapW, lo.mapH, lipgloss.Center, lipgloss.Center, box)
}

func (m Model) renderHelp() string {
	if !m.helpVisible {
		return ""
	}
	keys := []string{
		"d dist",
		"m area",
		"g polygon",
		"e height",
		"Esc undo",
		"Enter finish",
		"c clear",
		"s shapes",
		"x export",
		"y copy",
		"↑↓←→ pan",
		"+/- zoom",
		"Tab files",
		"p paste",
		"a attrs",
		"i inspect",
		"l layers",
		"h help",
		"q quit",
	}
	return dimStyle.Render(" " + strings.Join(keys, "  "))
}
