package tui

import (
	"github.com/charmbracelet/lipgloss"

	"geomeasure/internal/draw"
)

// Styles
var (
	baseFg    = lipgloss.Color("#E6E6E6")
	baseDimFg = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#6B7280"}
	accentFg  = lipgloss.Color("#7C3AED")
	panelBg   = lipgloss.Color("#0F141A")
	borderCol = lipgloss.Color("#243141")
	hoverFg   = lipgloss.Color("#FFA500")

	appStyle    = lipgloss.NewStyle().Foreground(baseFg)
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(borderCol).Padding(0, 1)
	titleStyle  = lipgloss.NewStyle().Foreground(accentFg).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(baseDimFg)
	hoverStyle  = lipgloss.NewStyle().Foreground(hoverFg)
	panelStyle  = lipgloss.NewStyle().Foreground(baseFg).Background(accentFg).Bold(true).Padding(0, 1)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	datasetFg   = lipgloss.NewStyle().Foreground(baseDimFg)
	labelBgBase = lipgloss.NewStyle().Background(panelBg).Bold(true)
)

// per-tool colors for shapes, markers and labels
var toolColors = map[draw.ToolKind]lipgloss.Color{
	draw.ToolDistance: lipgloss.Color("#FACC15"),
	draw.ToolArea:     lipgloss.Color("#22D3EE"),
	draw.ToolPolygon:  lipgloss.Color("#34D399"),
	draw.ToolHeight:   lipgloss.Color("#F472B6"),
}

func shapeStyle(k draw.ToolKind) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(toolColors[k])
}

func labelStyle(k draw.ToolKind) lipgloss.Style {
	return labelBgBase.Foreground(toolColors[k])
}
