package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	list "github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"geomeasure/internal/draw"
	"geomeasure/internal/geom"
)

const (
	sidebarWidth = 28
	headerHeight = 1
	footerHeight = 2
)

type layout struct {
	contentW, contentH int
	sidebarW           int
	mapX, mapY         int
	mapW, mapH         int
}

// layout computes the screen regions; View and mouse handling share it.
func (m Model) layout() layout {
	var lo layout
	if m.showSidebar {
		lo.sidebarW = sidebarWidth
	}
	lo.contentH = max(4, m.height-headerHeight-footerHeight)
	lo.contentW = max(10, m.width)
	lo.mapW = max(10, lo.contentW-lo.sidebarW-1)
	lo.mapH = lo.contentH
	lo.mapX = lo.sidebarW
	if m.showSidebar {
		lo.mapX++
	}
	lo.mapY = headerHeight
	return lo
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		lo := m.layout()
		m.canvas.w, m.canvas.h = lo.mapW, lo.mapH
		if m.showSidebar {
			m.l.SetSize(sidebarWidth-2, lo.contentH-2)
		}
	case sampleDoneMsg:
		m.applySample(msg)
		return m, nil
	case fileChangedMsg:
		m.fileChanged(msg)
		if m.watcher == nil {
			return m, nil
		}
		return m, waitForChange(m.watcher)
	case tea.KeyMsg:
		// If list is visible and filtering, send keys to list and ignore global commands
		if m.showSidebar && m.l.FilterState() == list.Filtering {
			m.l, cmd = m.l.Update(msg)
			return m, cmd
		}
		if m.pasteMode {
			return m.updatePaste(msg)
		}
		if k, ok := panelKeys[msg.String()]; ok {
			m.togglePanel(k)
			return m, nil
		}
		switch msg.String() {
		case "ctrl+c", "q":
			if s := m.session(); s != nil {
				s.OnHidden()
			}
			return m, tea.Quit
		case "esc":
			switch {
			case m.showAttrs:
				m.showAttrs = false
			case m.showShapes:
				m.showShapes = false
			case m.inspectPopup != "":
				m.inspectPopup = ""
			default:
				m.undo()
			}
		case "enter":
			if m.showSidebar {
				if it, ok := m.l.SelectedItem().(fileItem); ok {
					m.loadPath(it.path)
				}
				return m, nil
			}
			cmd = m.finalize()
		case "c":
			m.clearShapes()
		case "x":
			m.exportShapes()
		case "y":
			m.copyLatest()
		case "s":
			m.showShapes = !m.showShapes
			if m.showShapes {
				m.showAttrs = false
				m.refreshShapes()
			}
		case "1":
			m.showPoints = !m.showPoints
			m.status = fmt.Sprintf("points: %v", m.showPoints)
		case "2":
			m.showLines = !m.showLines
			m.status = fmt.Sprintf("lines: %v", m.showLines)
		case "3":
			m.showPolys = !m.showPolys
			m.status = fmt.Sprintf("polys: %v", m.showPolys)
		case "+", "=":
			if m.canvas.zoom < 64 {
				m.canvas.zoom *= 1.2
				m.status = fmt.Sprintf("zoom: %.2fx", m.canvas.zoom)
			}
		case "-", "_":
			if m.canvas.zoom > 0.05 {
				m.canvas.zoom /= 1.2
				m.status = fmt.Sprintf("zoom: %.2fx", m.canvas.zoom)
			}
		case "tab":
			m.showSidebar = !m.showSidebar
			lo := m.layout()
			m.canvas.w, m.canvas.h = lo.mapW, lo.mapH
			if m.showSidebar {
				m.refreshDir()
				m.l.SetSize(sidebarWidth-2, lo.contentH-2)
			}
		case "p":
			m.pasteMode = true
			m.ta.SetValue("")
			m.status = "paste mode"
			m.ta.Focus()
		case "h":
			m.helpVisible = !m.helpVisible
		case "a":
			m.showAttrs = !m.showAttrs
			if m.showAttrs {
				m.showShapes = false
				m.refreshAttrsFromCurrent()
			}
		case "i":
			m.inspect()
		case "l":
			// toggle all layers
			all := m.showPoints && m.showLines && m.showPolys
			m.showPoints = !all
			m.showLines = !all
			m.showPolys = !all
			m.status = fmt.Sprintf("layers: pts=%v ls=%v poly=%v", m.showPoints, m.showLines, m.showPolys)
		case "up":
			m.canvas.offsetY -= 1
		case "down":
			m.canvas.offsetY += 1
		case "left":
			m.canvas.offsetX -= 2
		case "right":
			m.canvas.offsetX += 2
		}
		if m.showSidebar {
			var lcmd tea.Cmd
			m.l, lcmd = m.l.Update(msg)
			cmd = tea.Batch(cmd, lcmd)
		}
		return m, cmd
	case tea.MouseMsg:
		cmd = m.updateMouse(msg)
	}
	// Pass messages to list when visible
	if m.showSidebar {
		var lcmd tea.Cmd
		m.l, lcmd = m.l.Update(msg)
		return m, tea.Batch(cmd, lcmd)
	}
	return m, cmd
}

func (m *Model) updatePaste(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.pasteMode = false
		m.ta.Blur()
		return *m, nil
	case "enter":
		w := strings.TrimSpace(m.ta.Value())
		if w == "" {
			m.status = "paste: empty"
			return *m, nil
		}
		d, err := geom.ParseWKT(w)
		if err != nil {
			m.status = "wkt error: " + err.Error()
			return *m, nil
		}
		if m.watcher != nil && m.selPath != "" {
			_ = m.watcher.Unwatch(m.selPath)
		}
		m.selPath = ""
		m.setData(d)
		// reset viewport for immediate visibility
		m.canvas.reset(d.View())
		m.status = "rendered WKT  counts: " + d.Counts()
		m.pasteMode = false
		m.ta.Blur()
		return *m, nil
	}
	var cmd tea.Cmd
	m.ta, cmd = m.ta.Update(msg)
	return *m, cmd
}

func (m *Model) updateMouse(msg tea.MouseMsg) tea.Cmd {
	lo := m.layout()
	m.canvas.w, m.canvas.h = lo.mapW, lo.mapH
	cx, cy := msg.X, msg.Y
	if cx < lo.mapX || cx >= lo.mapX+lo.mapW || cy < lo.mapY || cy >= lo.mapY+lo.mapH {
		m.hovering = false
		m.hoverHasGeo = false
		return nil
	}
	m.hovering = true
	m.hoverCellX = cx - lo.mapX
	m.hoverCellY = cy - lo.mapY
	if pos, ok := m.canvas.surface(m.hoverCellX, m.hoverCellY); ok {
		m.hoverHasGeo = true
		m.hoverLon, m.hoverLat = pos.Degrees()
		m.hoverHeight = pos.Height
	} else {
		m.hoverHasGeo = false
	}
	// find nearest vertex (points + line vertices + polygon vertices) using micro coords
	bx, by, _ := m.nearestVertex(m.hoverCellX*2, m.hoverCellY*4)
	m.hoverMicX, m.hoverMicY = bx, by

	if m.pasteMode || m.showAttrs || m.showShapes {
		return nil
	}
	s := m.session()
	if s == nil {
		return nil
	}
	p := draw.ScreenPoint{X: m.hoverCellX, Y: m.hoverCellY}
	switch {
	case msg.Action == tea.MouseActionMotion:
		s.Move(p)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		return m.press(p)
	}
	return nil
}

func (m *Model) inspect() {
	lon, lat, ok := m.inspectNearest()
	if !ok {
		m.inspectPopup = "no feature nearby"
		m.status = m.inspectPopup
		return
	}
	name := filepath.Base(m.selPath)
	if m.selPath == "" {
		name = "<unsaved>"
	}
	b := m.data.Bound
	meta := []string{
		fmt.Sprintf("name: %s", name),
		fmt.Sprintf("path: %s", m.selPath),
		fmt.Sprintf("bbox: [%.5f, %.5f, %.5f, %.5f]", b.Min[0], b.Min[1], b.Max[0], b.Max[1]),
		fmt.Sprintf("counts: %s", m.data.Counts()),
		fmt.Sprintf("nearest: lon=%.6f lat=%.6f", lon, lat),
		"crs: EPSG:4326",
	}
	m.inspectPopup = strings.Join(meta, "\n")
	m.status = "inspect popup"
}
