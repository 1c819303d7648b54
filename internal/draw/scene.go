// Package draw implements the click-to-draw session shared by the measuring
// and drawing panels: click adds a vertex, the preview follows the pointer,
// double-click finalizes and Escape undoes the last vertex.
package draw

import "geomeasure/internal/globe"

// ScreenPoint is a pointer position in canvas cells.
type ScreenPoint struct {
	X, Y int
}

// VisualID identifies a visual owned by a Scene. Zero means "none".
type VisualID int

// VisualKind is what a Visual draws.
type VisualKind int

const (
	Marker VisualKind = iota
	Polyline
	Polygon
	Label
)

func (k VisualKind) String() string {
	switch k {
	case Marker:
		return "marker"
	case Polyline:
		return "polyline"
	case Polygon:
		return "polygon"
	case Label:
		return "label"
	}
	return "unknown"
}

// Visual is a scene object anchored to world positions.
type Visual struct {
	Kind      VisualKind
	Tool      ToolKind
	Positions []globe.Cartesian
	Text      string
	Hidden    bool
	// Final marks visuals that belong to a finalized shape.
	Final bool
}

// Scene is everything a Session needs from the map it draws on.
type Scene interface {
	// Pick resolves a screen point to a world position. ok is false when the
	// point misses every surface.
	Pick(p ScreenPoint) (globe.Cartesian, bool)
	Add(v Visual) VisualID
	Update(id VisualID, v Visual)
	Remove(id VisualID)
}
