// Package geom loads the datasets shown under the drawn shapes and exports
// finalized shapes.
package geom

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
)

var (
	ErrNoGeometry  = errors.New("geom: no geometries found")
	ErrUnsupported = errors.New("geom: unsupported format")
)

// Data is a minimal geometry container for rendering
type Data struct {
	Points   orb.MultiPoint
	Lines    []orb.LineString
	Polygons []orb.Polygon // first ring outer, following rings holes
	Bound    orb.Bound

	// Attrs holds per-feature attributes when the source carries any.
	Attrs Table

	bounded bool
}

// Table is a rectangular attribute table.
type Table struct {
	Columns []string
	Rows    [][]string
}

func (t Table) Empty() bool { return len(t.Columns) == 0 || len(t.Rows) == 0 }

// Add appends g, flattening multi geometries and collections.
func (d *Data) Add(g orb.Geometry) {
	switch g := g.(type) {
	case orb.Point:
		d.Points = append(d.Points, g)
	case orb.MultiPoint:
		d.Points = append(d.Points, g...)
	case orb.LineString:
		d.Lines = append(d.Lines, g)
	case orb.MultiLineString:
		d.Lines = append(d.Lines, g...)
	case orb.Ring:
		d.Polygons = append(d.Polygons, orb.Polygon{g})
	case orb.Polygon:
		d.Polygons = append(d.Polygons, g)
	case orb.MultiPolygon:
		d.Polygons = append(d.Polygons, g...)
	case orb.Bound:
		d.Polygons = append(d.Polygons, g.ToPolygon())
	case orb.Collection:
		for _, c := range g {
			d.Add(c)
		}
		return
	default:
		return
	}
	d.extend(g.Bound())
}

func (d *Data) extend(b orb.Bound) {
	if !d.bounded {
		d.Bound, d.bounded = b, true
		return
	}
	d.Bound = d.Bound.Union(b)
}

func (d Data) Empty() bool {
	return len(d.Points) == 0 && len(d.Lines) == 0 && len(d.Polygons) == 0
}

// Counts summarizes the dataset for the status line.
func (d Data) Counts() string {
	return fmt.Sprintf("pts=%d ls=%d poly=%d", len(d.Points), len(d.Lines), len(d.Polygons))
}

// View returns the bound padded by 5% on each side, with a small minimum so a
// single point still yields a usable extent. Latitudes are clamped to ±90.
func (d Data) View() orb.Bound {
	b := d.Bound
	w, h := b.Max[0]-b.Min[0], b.Max[1]-b.Min[1]
	pad := 0.05 * max(w, h)
	if pad < 0.001 {
		pad = 0.001
	}
	b = b.Pad(pad)
	b.Min[1] = max(b.Min[1], -90)
	b.Max[1] = min(b.Max[1], 90)
	return b
}
