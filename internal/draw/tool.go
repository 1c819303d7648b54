package draw

import (
	"fmt"

	"geomeasure/internal/globe"
)

// ToolKind names one of the drawing panels.
type ToolKind int

const (
	ToolDistance ToolKind = iota
	ToolArea
	ToolPolygon
	ToolHeight
)

func (k ToolKind) String() string {
	switch k {
	case ToolDistance:
		return "distance"
	case ToolArea:
		return "area"
	case ToolPolygon:
		return "polygon"
	case ToolHeight:
		return "height"
	}
	return "unknown"
}

// Geometry holds the constants the measure functions depend on.
type Geometry struct {
	// Radius of the reference sphere used for area, metres.
	Radius float64
	// LabelOffset lifts polygon labels above the centroid, metres.
	LabelOffset float64
}

// DefaultGeometry uses the WGS84 semi-major axis and a 10 m label lift.
func DefaultGeometry() Geometry {
	return Geometry{Radius: globe.SemiMajorAxis, LabelOffset: 10}
}

// Tool describes one instantiation of the draw session.
type Tool struct {
	Kind  ToolKind
	Name  string
	Shape VisualKind
	// MinVertices is required to finalize and to show the preview.
	MinVertices int
	// MaxVertices finalizes automatically once reached; zero means unbounded.
	MaxVertices int
	// MultiShape tools keep drawing after a finalize.
	MultiShape bool
	// SampleGround tools ask for ground heights after finalizing.
	SampleGround bool

	Measure func(pts []globe.Cartesian) string
	Anchor  func(pts []globe.Cartesian) globe.Cartesian
}

// FormatLength renders metres with two decimals.
func FormatLength(m float64) string { return fmt.Sprintf("%.2f m", m) }

// FormatArea renders square metres with two decimals.
func FormatArea(m2 float64) string { return fmt.Sprintf("%.2f m²", m2) }

// DistanceTool measures polyline length.
func DistanceTool() Tool {
	return Tool{
		Kind:        ToolDistance,
		Name:        "Measure distance",
		Shape:       Polyline,
		MinVertices: 2,
		MultiShape:  true,
		Measure: func(pts []globe.Cartesian) string {
			return FormatLength(globe.PolylineLength(pts))
		},
		Anchor: globe.MidpointAlong,
	}
}

// AreaTool measures polygon area.
func AreaTool(g Geometry) Tool {
	return Tool{
		Kind:        ToolArea,
		Name:        "Measure area",
		Shape:       Polygon,
		MinVertices: 3,
		MultiShape:  true,
		Measure: func(pts []globe.Cartesian) string {
			return FormatArea(globe.PolygonArea(pts, g.Radius))
		},
		Anchor: centroidAnchor(g),
	}
}

// PolygonTool draws polygons and drapes them on the ground once sampled.
func PolygonTool(g Geometry) Tool {
	t := AreaTool(g)
	t.Kind = ToolPolygon
	t.Name = "Draw polygon"
	t.SampleGround = true
	return t
}

// HeightTool measures vertical, horizontal and diagonal distance between two
// points and stops after one measurement.
func HeightTool() Tool {
	return Tool{
		Kind:        ToolHeight,
		Name:        "Measure height",
		Shape:       Polyline,
		MinVertices: 2,
		MaxVertices: 2,
		Measure: func(pts []globe.Cartesian) string {
			if len(pts) < 2 {
				return ""
			}
			m := globe.MeasureHeight(pts[0], pts[len(pts)-1])
			return fmt.Sprintf("v %s  h %s  d %s",
				FormatLength(m.Vertical), FormatLength(m.Horizontal), FormatLength(m.Diagonal))
		},
		Anchor: globe.MidpointAlong,
	}
}

func centroidAnchor(g Geometry) func([]globe.Cartesian) globe.Cartesian {
	return func(pts []globe.Cartesian) globe.Cartesian {
		return globe.ToCartesian(globe.PolygonCentroid(pts, g.LabelOffset))
	}
}
