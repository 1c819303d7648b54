package tui

import (
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/paulmach/orb"

	"geomeasure/internal/draw"
)

const (
	previewDash  = 3
	markerGlyph  = '◆'
	pendingGlyph = '◇'
)

type cell struct {
	r     rune
	style *lipgloss.Style
}

// renderMap draws the dataset, then the drawn shapes, markers and labels on
// top of it.
func (m Model) renderMap(w, h int) string {
	grid := make([][]cell, h)
	for y := range grid {
		grid[y] = make([]cell, w)
		for x := range grid[y] {
			grid[y][x] = cell{r: ' '}
		}
	}

	ds := m.renderDataset(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if r := ds.at(x, y); r != ' ' {
				grid[y][x] = cell{r: r, style: &datasetFg}
			}
		}
	}

	ids := make([]draw.VisualID, 0, len(m.canvas.visuals))
	for id, v := range m.canvas.visuals {
		if !v.Hidden {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	// shapes, one layer per tool so each keeps its color
	layers := map[draw.ToolKind]*brailleBuf{}
	var order []draw.ToolKind
	for _, id := range ids {
		v := m.canvas.visuals[id]
		if v.Kind != draw.Polyline && v.Kind != draw.Polygon {
			continue
		}
		buf, ok := layers[v.Tool]
		if !ok {
			buf = newBrailleBuf(w, h)
			layers[v.Tool] = buf
			order = append(order, v.Tool)
		}
		var pts [][2]int
		for _, p := range v.Positions {
			if mx, my, ok := m.canvas.micro(p); ok {
				pts = append(pts, [2]int{mx, my})
			}
		}
		dash := previewDash
		if v.Final {
			dash = 0
		}
		buf.drawPath(pts, v.Kind == draw.Polygon, dash)
	}
	for _, k := range order {
		st := shapeStyle(k)
		buf := layers[k]
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				if r := buf.at(x, y); r != ' ' {
					grid[y][x] = cell{r: r, style: &st}
				}
			}
		}
	}

	put := func(x, y int, r rune, st *lipgloss.Style) {
		if y >= 0 && y < h && x >= 0 && x < w {
			grid[y][x] = cell{r: r, style: st}
		}
	}
	for _, id := range ids {
		v := m.canvas.visuals[id]
		if v.Kind != draw.Marker || len(v.Positions) == 0 {
			continue
		}
		st := shapeStyle(v.Tool)
		if cx, cy, ok := m.canvas.cell(v.Positions[0]); ok {
			g := markerGlyph
			if !v.Final {
				g = pendingGlyph
			}
			put(cx, cy, g, &st)
		}
	}
	for _, id := range ids {
		v := m.canvas.visuals[id]
		if v.Kind != draw.Label || v.Text == "" || len(v.Positions) == 0 {
			continue
		}
		st := labelStyle(v.Tool)
		cx, cy, ok := m.canvas.cell(v.Positions[0])
		if !ok {
			continue
		}
		text := []rune(" " + v.Text + " ")
		x0 := cx - len(text)/2
		if x0+len(text) > w {
			x0 = w - len(text)
		}
		x0 = max(0, x0)
		// labels sit one row above their anchor
		if cy > 0 {
			cy--
		}
		for i, r := range text {
			put(x0+i, cy, r, &st)
		}
	}

	// Hover highlight: draw an orange circle at the hovered vertex cell
	if m.hovering && !m.panelOpen {
		put(m.hoverMicX/2, m.hoverMicY/4, '◯', &hoverStyle)
	}

	lines := make([]string, h)
	for y := range grid {
		lines[y] = renderRow(grid[y])
	}
	return strings.Join(lines, "\n")
}

// renderRow styles runs of cells sharing a style in one call.
func renderRow(row []cell) string {
	var sb strings.Builder
	for i := 0; i < len(row); {
		j := i
		var run []rune
		for j < len(row) && row[j].style == row[i].style {
			run = append(run, row[j].r)
			j++
		}
		if row[i].style == nil {
			sb.WriteString(string(run))
		} else {
			sb.WriteString(row[i].style.Render(string(run)))
		}
		i = j
	}
	return sb.String()
}

func (m Model) renderDataset(w, h int) *brailleBuf {
	br := newBrailleBuf(w, h)
	c := m.canvas
	project := func(pts []orb.Point) [][2]int {
		out := make([][2]int, 0, len(pts))
		for _, p := range pts {
			if mx, my, ok := c.screenXYMicro(p[0], p[1]); ok {
				out = append(out, [2]int{mx, my})
			}
		}
		return out
	}

	// Draw polygons (fill outer ring, then edges of every ring)
	if m.showPolys {
		for _, poly := range m.data.Polygons {
			var rings [][][2]int
			for _, ring := range poly {
				if r := project(ring); len(r) >= 3 {
					rings = append(rings, r)
				}
			}
			if len(rings) == 0 {
				continue
			}
			br.fillRing(rings[0])
			for _, r := range rings {
				br.drawPath(r, true, 0)
			}
		}
	}

	// Draw points only when dataset has no lines or polygons
	if m.showPoints && len(m.data.Lines) == 0 && len(m.data.Polygons) == 0 {
		for _, p := range project(m.data.Points) {
			br.setPixel(p[0], p[1])
		}
	}

	if m.showLines {
		for _, ls := range m.data.Lines {
			br.drawPath(project(ls), false, 0)
		}
	}
	return br
}

// nearestVertex returns the dataset vertex closest to a microgrid position.
func (m Model) nearestVertex(hxMic, hyMic int) (int, int, bool) {
	best := 1<<31 - 1
	bx, by := hxMic, hyMic
	consider := func(p orb.Point) {
		mx, my, ok := m.canvas.screenXYMicro(p[0], p[1])
		if !ok {
			return
		}
		dx := mx - hxMic
		dy := my - hyMic
		if d := dx*dx + dy*dy; d < best {
			best = d
			bx, by = mx, my
		}
	}
	for _, p := range m.data.Points {
		consider(p)
	}
	for _, ls := range m.data.Lines {
		for _, p := range ls {
			consider(p)
		}
	}
	for _, poly := range m.data.Polygons {
		for _, ring := range poly {
			for _, p := range ring {
				consider(p)
			}
		}
	}
	return bx, by, best != 1<<31-1
}

// inspectNearest finds the point closest to the viewport center and returns lon/lat.
func (m Model) inspectNearest() (lon, lat float64, ok bool) {
	if len(m.data.Points) == 0 {
		return 0, 0, false
	}
	cx, cy := m.canvas.w/2, m.canvas.h/2
	bestD := 1<<31 - 1
	var best orb.Point
	for _, p := range m.data.Points {
		sx, sy, ok2 := m.canvas.screenXY(p[0], p[1])
		if !ok2 {
			continue
		}
		dx := sx - cx
		dy := sy - cy
		if d := dx*dx + dy*dy; d < bestD {
			bestD = d
			best = p
		}
	}
	if bestD == 1<<31-1 {
		return 0, 0, false
	}
	return best[0], best[1], true
}
