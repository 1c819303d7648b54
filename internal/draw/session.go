package draw

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"geomeasure/internal/globe"
)

var (
	// ErrPickMiss marks a pointer event that resolved to no surface point.
	// Such events are dropped and only logged.
	ErrPickMiss = errors.New("draw: pick missed")
	// ErrInsufficientVertices is returned when finalizing a shape that has
	// fewer committed vertices than its tool requires.
	ErrInsufficientVertices = errors.New("draw: not enough vertices")
	// ErrNotDrawing is returned by Finalize while the session is idle.
	ErrNotDrawing = errors.New("draw: session is not drawing")
	// ErrStaleSample is returned when a ground sample resolves after its
	// session was stopped or cleared, or after its shape was removed.
	ErrStaleSample = errors.New("draw: stale ground sample")
)

// SampleRequest asks for ground heights below a finalized shape.
type SampleRequest struct {
	Tool       ToolKind
	ShapeID    int
	Generation uint64
	Positions  []globe.Cartographic
}

// Session is one panel's drawing state machine. It is driven from a single
// goroutine; the host serializes pointer and key events.
type Session struct {
	tool   Tool
	scene  Scene
	shapes *Collection
	seq    *Sequence
	log    *zap.Logger

	drawing bool
	// buf is the vertex buffer. While drawing and non-empty, its last
	// element is the floating point that follows the pointer.
	buf     []globe.Cartesian
	markers []VisualID
	preview VisualID
	label   VisualID

	generation uint64
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) { s.log = l }
}

// NewSession wires a tool to a scene. Shapes from every session sharing seq
// and shapes get distinct ids.
func NewSession(tool Tool, scene Scene, shapes *Collection, seq *Sequence, opts ...Option) *Session {
	s := &Session{
		tool:   tool,
		scene:  scene,
		shapes: shapes,
		seq:    seq,
		log:    zap.NewNop(),
	}
	for _, o := range opts {
		o(s)
	}
	s.log = s.log.With(zap.String("tool", tool.Kind.String()))
	return s
}

func (s *Session) Tool() Tool         { return s.tool }
func (s *Session) Drawing() bool      { return s.drawing }
func (s *Session) Generation() uint64 { return s.generation }

// Committed returns the number of clicked vertices.
func (s *Session) Committed() int {
	if len(s.buf) == 0 {
		return 0
	}
	return len(s.buf) - 1
}

// Buffer returns a copy of the vertex buffer including the floating point.
func (s *Session) Buffer() []globe.Cartesian {
	return append([]globe.Cartesian(nil), s.buf...)
}

// Start enters drawing mode with an empty buffer.
func (s *Session) Start() {
	if s.drawing {
		return
	}
	s.drawing = true
	s.buf = nil
	s.log.Debug("start")
}

// Stop leaves drawing mode and discards the shape under construction.
// Finalized shapes are kept.
func (s *Session) Stop() {
	if !s.drawing {
		return
	}
	s.discard()
	s.drawing = false
	s.generation++
	s.log.Debug("stop", zap.Uint64("generation", s.generation))
}

// OnHidden is called by the host when the panel owning the session is hidden.
func (s *Session) OnHidden() {
	s.Stop()
}

// Move drags the floating point to p.
func (s *Session) Move(p ScreenPoint) {
	if !s.drawing || len(s.buf) == 0 {
		return
	}
	pos, ok := s.scene.Pick(p)
	if !ok {
		return
	}
	s.buf[len(s.buf)-1] = pos
	s.refresh()
}

// Click commits a vertex at p. When the tool's vertex limit is reached the
// shape is finalized and returned along with any sample request.
func (s *Session) Click(p ScreenPoint) (*Shape, *SampleRequest) {
	if !s.drawing {
		return nil, nil
	}
	pos, ok := s.scene.Pick(p)
	if !ok {
		s.log.Debug("click ignored", zap.Int("x", p.X), zap.Int("y", p.Y), zap.Error(ErrPickMiss))
		return nil, nil
	}
	if len(s.buf) == 0 {
		if s.preview == 0 {
			s.preview = s.scene.Add(Visual{Kind: s.tool.Shape, Tool: s.tool.Kind, Hidden: true})
			s.label = s.scene.Add(Visual{Kind: Label, Tool: s.tool.Kind, Hidden: true})
		}
		s.buf = append(s.buf, pos)
	} else {
		s.buf[len(s.buf)-1] = pos
	}
	s.markers = append(s.markers, s.scene.Add(Visual{
		Kind:      Marker,
		Tool:      s.tool.Kind,
		Positions: []globe.Cartesian{pos},
	}))
	s.buf = append(s.buf, pos)
	s.refresh()

	if s.tool.MaxVertices > 0 && s.Committed() >= s.tool.MaxVertices {
		shape, req, err := s.Finalize()
		if err != nil {
			s.log.Error("auto finalize", zap.Error(err))
			return nil, nil
		}
		return shape, req
	}
	return nil, nil
}

// Undo removes the most recently committed vertex.
func (s *Session) Undo() bool {
	if !s.drawing || s.Committed() == 0 {
		return false
	}
	last := len(s.buf) - 2
	s.buf = append(s.buf[:last], s.buf[last+1:]...)
	s.scene.Remove(s.markers[len(s.markers)-1])
	s.markers = s.markers[:len(s.markers)-1]
	if s.Committed() == 0 {
		s.buf = nil
		s.hidePreview()
		return true
	}
	s.refresh()
	return true
}

// DropRepeat removes the last committed vertex when it repeats the one
// before it. Hosts that build a double-click out of two presses call it
// before Finalize, since the first press already committed a vertex.
func (s *Session) DropRepeat() bool {
	n := s.Committed()
	if !s.drawing || n < 2 || s.buf[n-1] != s.buf[n-2] {
		return false
	}
	return s.Undo()
}

// Finalize freezes the committed vertices into a permanent shape.
func (s *Session) Finalize() (*Shape, *SampleRequest, error) {
	if !s.drawing {
		return nil, nil, ErrNotDrawing
	}
	n := s.Committed()
	if n < s.tool.MinVertices {
		return nil, nil, fmt.Errorf("%w: have %d, need %d", ErrInsufficientVertices, n, s.tool.MinVertices)
	}
	pts := append([]globe.Cartesian(nil), s.buf[:n]...)
	text := s.tool.Measure(pts)
	shape := &Shape{
		ID:          s.seq.Next(),
		Tool:        s.tool.Kind,
		Kind:        s.tool.Shape,
		Vertices:    pts,
		Measurement: text,
		Label:       text,
		visual:      s.preview,
		label:       s.label,
		markers:     s.markers,
	}
	s.preview, s.label, s.markers, s.buf = 0, 0, nil, nil

	var req *SampleRequest
	if s.tool.SampleGround {
		shape.Pending = true
		shape.Label = text + " (sampling ground)"
		req = &SampleRequest{
			Tool:       s.tool.Kind,
			ShapeID:    shape.ID,
			Generation: s.generation,
			Positions:  globe.Cartographics(pts),
		}
	}
	s.shapes.Add(shape)
	s.showShape(shape)
	if !s.tool.MultiShape {
		s.drawing = false
	}
	s.log.Info("finalized",
		zap.Int("shape", shape.ID),
		zap.Int("vertices", len(pts)),
		zap.String("measurement", text))
	return shape, req, nil
}

// ApplySample attaches ground heights to the shape named by req. Results for
// a stopped or cleared session, or for a removed shape, are discarded with
// ErrStaleSample; a shape that still exists is then returned without ground
// data. A failed sample leaves the shape without ground data.
func (s *Session) ApplySample(req *SampleRequest, heights []float64, sampleErr error) (*Shape, error) {
	if req == nil {
		return nil, ErrStaleSample
	}
	shape, ok := s.shapes.Get(req.ShapeID)
	if !ok || shape.Tool != s.tool.Kind {
		return nil, ErrStaleSample
	}
	if req.Generation != s.generation {
		// The shape outlived the session run that asked for its heights.
		if shape.Pending {
			shape.Pending = false
			shape.Label = shape.Measurement + " (elevation unavailable)"
			s.showShape(shape)
		}
		return shape, ErrStaleSample
	}
	shape.Pending = false
	if sampleErr == nil && len(heights) != len(shape.Vertices) {
		sampleErr = fmt.Errorf("got %d heights for %d vertices", len(heights), len(shape.Vertices))
	}
	if sampleErr != nil {
		s.log.Warn("ground sample failed", zap.Int("shape", shape.ID), zap.Error(sampleErr))
		shape.Label = shape.Measurement + " (elevation unavailable)"
		s.showShape(shape)
		return shape, fmt.Errorf("sample ground for shape %d: %w", shape.ID, sampleErr)
	}

	shape.Ground = append([]float64(nil), heights...)
	draped := make([]globe.Cartesian, len(shape.Vertices))
	lo, hi := math.Inf(1), math.Inf(-1)
	for i, c := range globe.Cartographics(shape.Vertices) {
		c.Height = heights[i]
		draped[i] = globe.ToCartesian(c)
		lo = math.Min(lo, heights[i])
		hi = math.Max(hi, heights[i])
	}
	shape.Vertices = draped
	shape.Label = fmt.Sprintf("%s  ground %.2f..%.2f m", shape.Measurement, lo, hi)
	s.showShape(shape)
	s.log.Info("ground sampled", zap.Int("shape", shape.ID), zap.Float64("min", lo), zap.Float64("max", hi))
	return shape, nil
}

// Clear removes every finalized shape drawn with this session's tool.
// Pending samples for those shapes become stale.
func (s *Session) Clear() int {
	n := 0
	for _, shape := range s.shapes.Shapes() {
		if shape.Tool != s.tool.Kind {
			continue
		}
		s.shapes.Remove(shape.ID)
		s.removeVisuals(shape.visual, shape.label)
		s.removeVisuals(shape.markers...)
		n++
	}
	s.generation++
	return n
}

func (s *Session) refresh() {
	pts := s.Buffer()
	hidden := len(pts) < s.tool.MinVertices
	s.scene.Update(s.preview, Visual{
		Kind:      s.tool.Shape,
		Tool:      s.tool.Kind,
		Positions: pts,
		Hidden:    hidden,
	})
	lv := Visual{Kind: Label, Tool: s.tool.Kind, Hidden: hidden}
	if !hidden {
		lv.Text = s.tool.Measure(pts)
		lv.Positions = []globe.Cartesian{s.tool.Anchor(pts)}
	}
	s.scene.Update(s.label, lv)
}

func (s *Session) hidePreview() {
	s.scene.Update(s.preview, Visual{Kind: s.tool.Shape, Tool: s.tool.Kind, Hidden: true})
	s.scene.Update(s.label, Visual{Kind: Label, Tool: s.tool.Kind, Hidden: true})
}

func (s *Session) showShape(shape *Shape) {
	s.scene.Update(shape.visual, Visual{
		Kind:      shape.Kind,
		Tool:      shape.Tool,
		Positions: shape.Vertices,
		Final:     true,
	})
	s.scene.Update(shape.label, Visual{
		Kind:      Label,
		Tool:      shape.Tool,
		Positions: []globe.Cartesian{s.tool.Anchor(shape.Vertices)},
		Text:      shape.Label,
		Final:     true,
	})
	for i, id := range shape.markers {
		if i >= len(shape.Vertices) {
			break
		}
		s.scene.Update(id, Visual{
			Kind:      Marker,
			Tool:      shape.Tool,
			Positions: []globe.Cartesian{shape.Vertices[i]},
			Final:     true,
		})
	}
}

// discard removes the in-progress visuals.
func (s *Session) discard() {
	s.removeVisuals(s.preview, s.label)
	s.removeVisuals(s.markers...)
	s.preview, s.label, s.markers, s.buf = 0, 0, nil, nil
}

func (s *Session) removeVisuals(ids ...VisualID) {
	for _, id := range ids {
		if id != 0 {
			s.scene.Remove(id)
		}
	}
}
