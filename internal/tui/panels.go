package tui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"geomeasure/internal/draw"
	"geomeasure/internal/elevation"
	"geomeasure/internal/geom"
	"geomeasure/internal/watch"
)

// panelKeys maps a key to the drawing panel it toggles.
var panelKeys = map[string]draw.ToolKind{
	"d": draw.ToolDistance,
	"m": draw.ToolArea,
	"g": draw.ToolPolygon,
	"e": draw.ToolHeight,
}

type sampleDoneMsg struct {
	req     *draw.SampleRequest
	heights []float64
	err     error
}

type fileChangedMsg struct {
	path string
}

func (m *Model) session() *draw.Session {
	if !m.panelOpen {
		return nil
	}
	return m.sessions[m.active]
}

// togglePanel opens the panel for k, hiding the open one. Pressing the key of
// the open panel hides it.
func (m *Model) togglePanel(k draw.ToolKind) {
	if s := m.session(); s != nil {
		s.OnHidden()
		m.panelOpen = false
		if m.active == k {
			m.status = "panel closed"
			return
		}
	}
	m.active = k
	m.panelOpen = true
	m.lastPress = time.Time{}
	s := m.sessions[k]
	s.Start()
	m.status = s.Tool().Name + ": click to add points, double-click or Enter to finish, Esc to undo"
}

// press handles a left button press on a map cell. A second press on the
// same cell within the double-click window finalizes instead.
func (m *Model) press(p draw.ScreenPoint) tea.Cmd {
	s := m.session()
	if s == nil {
		return nil
	}
	if !s.Drawing() {
		m.status = s.Tool().Name + ": done, " + restartHint(s.Tool().Kind)
		return nil
	}
	now := m.now()
	if !m.lastPress.IsZero() && p == m.lastPressCell && now.Sub(m.lastPress) <= m.cfg.DoubleClick() {
		m.lastPress = time.Time{}
		if s.DropRepeat() {
			m.log.Debug("double press dropped repeated vertex", zap.Int("vertices", s.Committed()))
		}
		return m.finalize()
	}
	m.lastPress, m.lastPressCell = now, p
	shape, req := s.Click(p)
	if shape == nil {
		if n := s.Committed(); n > 0 {
			m.status = fmt.Sprintf("%s: %d point(s)", s.Tool().Name, n)
		}
		return nil
	}
	return m.finalized(shape, req)
}

// restartHint tells how to measure again with a single-shape tool.
func restartHint(k draw.ToolKind) string {
	for key, kind := range panelKeys {
		if kind == k {
			return "press " + key + " twice to measure again"
		}
	}
	return "reopen the panel to measure again"
}

func (m *Model) finalize() tea.Cmd {
	s := m.session()
	if s == nil {
		return nil
	}
	shape, req, err := s.Finalize()
	if err != nil {
		m.status = err.Error()
		return nil
	}
	return m.finalized(shape, req)
}

func (m *Model) finalized(shape *draw.Shape, req *draw.SampleRequest) tea.Cmd {
	m.status = shape.String()
	if s := m.session(); s != nil && !s.Drawing() {
		m.status += "  " + restartHint(s.Tool().Kind)
	}
	if m.showShapes {
		m.refreshShapes()
	}
	if req == nil {
		return nil
	}
	return sampleCmd(m.sampler, m.cfg.SampleTimeout(), req)
}

func (m *Model) undo() {
	s := m.session()
	if s == nil {
		return
	}
	if s.Undo() {
		m.status = fmt.Sprintf("%s: %d point(s)", s.Tool().Name, s.Committed())
	}
}

func (m *Model) applySample(msg sampleDoneMsg) {
	s := m.sessions[msg.req.Tool]
	shape, err := s.ApplySample(msg.req, msg.heights, msg.err)
	switch {
	case errors.Is(err, draw.ErrStaleSample):
		m.log.Debug("dropped stale ground sample", zap.Int("shape", msg.req.ShapeID))
		if shape == nil {
			return
		}
	case err != nil:
		m.status = errorStyle.Render(err.Error())
	default:
		m.status = shape.String()
	}
	if m.showShapes {
		m.refreshShapes()
	}
}

// clearShapes removes the active panel's finalized shapes.
func (m *Model) clearShapes() {
	s := m.session()
	if s == nil {
		m.status = "open a panel to clear its shapes"
		return
	}
	n := s.Clear()
	m.status = fmt.Sprintf("%s: cleared %d shape(s)", s.Tool().Name, n)
	if m.showShapes {
		m.refreshShapes()
	}
}

func (m *Model) exportShapes() {
	if m.shapes.Len() == 0 {
		m.status = "no shapes to export"
		return
	}
	path := m.cfg.Export.Path
	if err := geom.WriteGeoJSON(path, m.shapes.FeatureCollection()); err != nil {
		m.log.Error("export", zap.String("path", path), zap.Error(err))
		m.status = "export error: " + err.Error()
		return
	}
	m.log.Info("exported shapes", zap.String("path", path), zap.Int("count", m.shapes.Len()))
	m.status = fmt.Sprintf("exported %d shape(s) to %s", m.shapes.Len(), path)
}

// copyLatest puts the most recent shape's label and WKT on the clipboard.
func (m *Model) copyLatest() {
	shape, ok := m.shapes.Latest()
	if !ok {
		m.status = "no shape to copy"
		return
	}
	text := shape.Label + "\n" + geom.WKT(shape.Geometry())
	if err := m.copyText(text); err != nil {
		m.status = "clipboard error: " + err.Error()
		return
	}
	m.status = fmt.Sprintf("copied shape #%d", shape.ID)
}

func sampleCmd(s elevation.Sampler, timeout time.Duration, req *draw.SampleRequest) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		heights, err := s.Sample(ctx, req.Positions)
		return sampleDoneMsg{req: req, heights: heights, err: err}
	}
}

func waitForChange(w *watch.Watcher) tea.Cmd {
	return func() tea.Msg {
		p, ok := <-w.Changes()
		if !ok {
			return nil
		}
		return fileChangedMsg{path: p}
	}
}

// fileChanged reloads the dataset when the changed file is the open one.
func (m *Model) fileChanged(msg fileChangedMsg) {
	if m.selPath == "" {
		return
	}
	abs, err := filepath.Abs(m.selPath)
	if err != nil || abs != msg.path {
		return
	}
	m.reload()
}
