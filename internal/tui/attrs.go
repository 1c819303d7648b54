package tui

import (
	"fmt"
	"path/filepath"

	table "github.com/charmbracelet/bubbles/table"

	"geomeasure/internal/geom"
)

// refreshAttrsFromCurrent rebuilds the table columns/rows from the current dataset
func (m *Model) refreshAttrsFromCurrent() {
	t := m.buildAttributes()
	// If there are no columns or rows, disable attributes view to avoid rendering panics
	if t.Empty() {
		m.showAttrs = false
		m.status = "no attributes for current dataset"
		return
	}
	setTable(&m.tbl, t)
}

// buildAttributes returns the dataset's attribute table, or a one-row
// summary when the format carries none.
func (m *Model) buildAttributes() geom.Table {
	if m.data.Empty() {
		return geom.Table{}
	}
	if !m.data.Attrs.Empty() {
		return m.data.Attrs
	}
	name := "<pasted>"
	if m.selPath != "" {
		name = filepath.Base(m.selPath)
	}
	b := m.data.Bound
	return geom.Table{
		Columns: []string{"name", "path", "bbox", "points", "lines", "polygons"},
		Rows: [][]string{{
			name,
			m.selPath,
			fmt.Sprintf("[%.5f,%.5f,%.5f,%.5f]", b.Min[0], b.Min[1], b.Max[0], b.Max[1]),
			fmt.Sprintf("%d", len(m.data.Points)),
			fmt.Sprintf("%d", len(m.data.Lines)),
			fmt.Sprintf("%d", len(m.data.Polygons)),
		}},
	}
}

// refreshShapes lists the finalized shapes.
func (m *Model) refreshShapes() {
	t := geom.Table{Columns: []string{"id", "tool", "vertices", "measurement"}}
	for _, s := range m.shapes.Shapes() {
		t.Rows = append(t.Rows, []string{
			fmt.Sprintf("%d", s.ID),
			s.Tool.String(),
			fmt.Sprintf("%d", len(s.Vertices)),
			s.Label,
		})
	}
	if len(t.Rows) == 0 {
		m.showShapes = false
		m.status = "no finalized shapes"
		return
	}
	setTable(&m.shapesTbl, t)
}

// setTable maps t onto a bubbles table with a leading row number column.
func setTable(tbl *table.Model, t geom.Table) {
	tcols := make([]table.Column, 0, len(t.Columns)+1)
	tcols = append(tcols, table.Column{Title: "#", Width: 4})
	maxColW := 24
	for ci, c := range t.Columns {
		w := len(c) + 2
		for _, r := range t.Rows {
			if ci < len(r) {
				w = max(w, len([]rune(r[ci]))+2)
			}
		}
		tcols = append(tcols, table.Column{Title: c, Width: min(w, maxColW)})
	}
	colCount := len(tcols)
	trows := make([]table.Row, 0, len(t.Rows))
	for i, r := range t.Rows {
		cells := make([]string, 0, colCount)
		cells = append(cells, fmt.Sprintf("%d", i+1))
		cells = append(cells, r...)
		// Normalize each row to match the number of table columns
		if len(cells) < colCount {
			cells = append(cells, make([]string, colCount-len(cells))...)
		} else if len(cells) > colCount {
			cells = cells[:colCount]
		}
		trows = append(trows, table.Row(cells))
	}
	// Avoid transient mismatch: clear rows, set columns, then set rows
	tbl.SetRows(nil)
	tbl.SetColumns(tcols)
	tbl.SetRows(trows)
}
