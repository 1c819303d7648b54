package draw

import (
	"fmt"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"geomeasure/internal/globe"
)

// Sequence hands out shape identifiers. It belongs to whoever owns the
// collection of finalized shapes and is not safe for concurrent use.
type Sequence struct {
	next int
}

// NewSequence returns a sequence whose first value is start.
func NewSequence(start int) *Sequence {
	return &Sequence{next: start}
}

// Next returns the next identifier.
func (s *Sequence) Next() int {
	id := s.next
	s.next++
	return id
}

// Shape is a finalized drawing.
type Shape struct {
	ID       int
	Tool     ToolKind
	Kind     VisualKind
	Vertices []globe.Cartesian
	// Measurement is the value computed at finalize time.
	Measurement string
	// Label is what the shape's label shows, Measurement plus any sample note.
	Label string
	// Ground holds sampled ground heights per vertex once a sample resolved.
	Ground  []float64
	Pending bool

	visual  VisualID
	label   VisualID
	markers []VisualID
}

// Geometry returns the shape in lon/lat degrees.
func (s *Shape) Geometry() orb.Geometry {
	if s.Kind == Polygon {
		return orb.Polygon{globe.Ring(s.Vertices)}
	}
	return globe.LineString(s.Vertices)
}

// Collection stores finalized shapes keyed by id.
type Collection struct {
	shapes map[int]*Shape
	latest int
}

func NewCollection() *Collection {
	return &Collection{shapes: make(map[int]*Shape)}
}

func (c *Collection) Add(s *Shape) {
	c.shapes[s.ID] = s
	c.latest = s.ID
}

func (c *Collection) Get(id int) (*Shape, bool) {
	s, ok := c.shapes[id]
	return s, ok
}

// Remove drops a shape from the collection. The caller removes its visuals.
func (c *Collection) Remove(id int) (*Shape, bool) {
	s, ok := c.shapes[id]
	if ok {
		delete(c.shapes, id)
	}
	return s, ok
}

func (c *Collection) Len() int { return len(c.shapes) }

// Latest returns the most recently added shape still present.
func (c *Collection) Latest() (*Shape, bool) {
	s, ok := c.shapes[c.latest]
	return s, ok
}

// Shapes returns all shapes ordered by id.
func (c *Collection) Shapes() []*Shape {
	out := make([]*Shape, 0, len(c.shapes))
	for _, s := range c.shapes {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// FeatureCollection exports every shape as a GeoJSON feature.
func (c *Collection) FeatureCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, s := range c.Shapes() {
		f := geojson.NewFeature(s.Geometry())
		f.ID = s.ID
		f.Properties["tool"] = s.Tool.String()
		f.Properties["measurement"] = s.Measurement
		f.Properties["vertices"] = len(s.Vertices)
		if len(s.Ground) > 0 {
			f.Properties["ground"] = s.Ground
		}
		heights := make([]float64, len(s.Vertices))
		for i, v := range globe.Cartographics(s.Vertices) {
			heights[i] = v.Height
		}
		f.Properties["heights"] = heights
		fc.Append(f)
	}
	return fc
}

func (s *Shape) String() string {
	return fmt.Sprintf("#%d %s (%d vertices) %s", s.ID, s.Tool, len(s.Vertices), s.Label)
}
