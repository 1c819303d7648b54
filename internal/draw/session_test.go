package draw

import (
	"errors"
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"geomeasure/internal/globe"
)

func deg(lon, lat float64) globe.Cartesian {
	return globe.ToCartesian(globe.FromDegrees(lon, lat, 0))
}

func newTestSession(t *testing.T, tool Tool) (*Session, *fakeScene, *Collection) {
	t.Helper()
	scene := newFakeScene()
	shapes := NewCollection()
	return NewSession(tool, scene, shapes, NewSequence(1)), scene, shapes
}

func TestDistanceScenario(t *testing.T) {
	s, scene, shapes := newTestSession(t, DistanceTool())
	a := scene.at(1, 1, deg(0, 0))
	b := scene.at(5, 1, deg(0.001, 0))
	c := scene.at(9, 9, deg(0.002, 0.001))

	s.Start()
	s.Click(a)
	s.Move(b)

	live := scene.labels(false)
	require.Len(t, live, 1)
	want := FormatLength(deg(0.001, 0).Sub(deg(0, 0)).Len())
	assert.Equal(t, want, live[0].Text)
	assert.False(t, live[0].Hidden)

	s.Click(b)
	s.Move(c)
	assert.Equal(t, 2, s.Committed())

	shape, req, err := s.Finalize()
	require.NoError(t, err)
	assert.Nil(t, req)
	require.Equal(t, []globe.Cartesian{deg(0, 0), deg(0.001, 0)}, shape.Vertices)
	assert.Equal(t, want, shape.Measurement)
	assert.Regexp(t, `^\d+\.\d{2} m$`, shape.Measurement)

	final := scene.labels(true)
	require.Len(t, final, 1)
	assert.Equal(t, want, final[0].Text)
	assert.Equal(t, 1, scene.count(Polyline, true))
	assert.Equal(t, 2, scene.count(Marker, true))
	assert.Zero(t, scene.count(Marker, false))

	assert.True(t, s.Drawing(), "multi-shape tools keep drawing")
	assert.Empty(t, s.Buffer())
	assert.Equal(t, 1, shapes.Len())
}

func TestFinalizeExcludesFloatingPoint(t *testing.T) {
	for n := 2; n <= 6; n++ {
		s, scene, _ := newTestSession(t, DistanceTool())
		s.Start()
		for i := 0; i < n; i++ {
			s.Click(scene.at(i, 0, deg(float64(i)*0.001, 0)))
			s.Move(scene.at(i, 7, deg(float64(i)*0.001, 0.5)))
		}
		shape, _, err := s.Finalize()
		require.NoError(t, err)
		require.Len(t, shape.Vertices, n)
		for _, v := range shape.Vertices {
			assert.InDelta(t, 0, globe.ToCartographic(v).Lat, 1e-12, "floating point leaked into shape")
		}
	}
}

func TestMoveBeforeFirstClickIsIgnored(t *testing.T) {
	s, scene, _ := newTestSession(t, DistanceTool())
	s.Start()
	s.Move(scene.at(3, 3, deg(1, 1)))
	assert.Empty(t, s.Buffer())
	assert.Empty(t, scene.visuals)
}

func TestPickMissIsIgnored(t *testing.T) {
	s, scene, _ := newTestSession(t, DistanceTool())
	s.Start()
	s.Click(scene.at(1, 1, deg(0, 0)))
	before := scene.snapshot()
	buf := s.Buffer()

	miss := ScreenPoint{X: 40, Y: 40}
	s.Move(miss)
	s.Click(miss)

	assert.Equal(t, buf, s.Buffer())
	assert.Equal(t, before, scene.snapshot())
}

func TestEventsIgnoredWhileIdle(t *testing.T) {
	s, scene, _ := newTestSession(t, DistanceTool())
	p := scene.at(1, 1, deg(0, 0))
	s.Click(p)
	s.Move(p)
	assert.False(t, s.Undo())
	_, _, err := s.Finalize()
	assert.ErrorIs(t, err, ErrNotDrawing)
	assert.Empty(t, scene.visuals)
}

func TestUndoOnEmptyBufferIsNoop(t *testing.T) {
	s, scene, _ := newTestSession(t, AreaTool(DefaultGeometry()))
	s.Start()
	assert.False(t, s.Undo())
	assert.Empty(t, scene.visuals)
	assert.True(t, s.Drawing())

	s.Click(scene.at(0, 0, deg(0, 0)))
	require.True(t, s.Undo())
	before := scene.snapshot()
	assert.False(t, s.Undo())
	assert.Equal(t, before, scene.snapshot())
}

func TestUndoRemovesLastVertexAndHidesPreview(t *testing.T) {
	s, scene, _ := newTestSession(t, AreaTool(DefaultGeometry()))
	s.Start()
	s.Click(scene.at(0, 0, deg(0, 0)))
	s.Click(scene.at(1, 0, deg(0.001, 0)))
	s.Click(scene.at(1, 1, deg(0.001, 0.001)))
	require.Equal(t, 3, s.Committed())
	require.Equal(t, 3, scene.count(Marker, false))

	polygon := func() Visual {
		for _, v := range scene.visuals {
			if v.Kind == Polygon {
				return v
			}
		}
		t.Fatal("no preview polygon")
		return Visual{}
	}
	assert.False(t, polygon().Hidden)

	require.True(t, s.Undo())
	assert.Equal(t, 2, s.Committed())
	assert.Equal(t, 2, scene.count(Marker, false))
	assert.False(t, polygon().Hidden, "two vertices plus the floating point still form a polygon")

	require.True(t, s.Undo())
	assert.Equal(t, 1, s.Committed())
	assert.True(t, polygon().Hidden)
	for _, l := range scene.labels(false) {
		assert.True(t, l.Hidden)
	}

	require.True(t, s.Undo())
	assert.Zero(t, s.Committed())
	assert.Empty(t, s.Buffer())
	assert.True(t, polygon().Hidden, "preview is hidden, not destroyed")

	s.Click(scene.at(0, 0, deg(0, 0)))
	assert.Equal(t, 1, scene.count(Polygon, false), "preview is reused")
}

func TestFinalizeNeedsMinimumVertices(t *testing.T) {
	s, scene, shapes := newTestSession(t, AreaTool(DefaultGeometry()))
	s.Start()
	s.Click(scene.at(0, 0, deg(0, 0)))
	s.Click(scene.at(1, 0, deg(0.001, 0)))
	before := scene.snapshot()

	_, _, err := s.Finalize()
	require.ErrorIs(t, err, ErrInsufficientVertices)
	assert.Equal(t, 2, s.Committed())
	assert.Equal(t, before, scene.snapshot())
	assert.Zero(t, shapes.Len())
}

func TestStopDiscardsInProgressOnly(t *testing.T) {
	s, scene, shapes := newTestSession(t, DistanceTool())
	s.Start()
	s.Click(scene.at(0, 0, deg(0, 0)))
	s.Click(scene.at(1, 0, deg(0.001, 0)))
	_, _, err := s.Finalize()
	require.NoError(t, err)
	finalized := scene.snapshot()

	s.Click(scene.at(2, 0, deg(0.002, 0)))
	s.Move(scene.at(3, 0, deg(0.003, 0)))
	require.Greater(t, len(scene.visuals), len(finalized))

	gen := s.Generation()
	s.Stop()
	assert.False(t, s.Drawing())
	assert.Empty(t, s.Buffer())
	assert.Equal(t, finalized, scene.snapshot())
	assert.Equal(t, 1, shapes.Len())
	assert.Equal(t, gen+1, s.Generation())

	s.Stop()
	assert.Equal(t, gen+1, s.Generation(), "stop while idle is a no-op")
	assert.Equal(t, finalized, scene.snapshot())
}

func TestOnHiddenStops(t *testing.T) {
	s, scene, _ := newTestSession(t, DistanceTool())
	s.Start()
	s.Click(scene.at(0, 0, deg(0, 0)))
	s.OnHidden()
	assert.False(t, s.Drawing())
	assert.Empty(t, scene.visuals)
}

func TestAreaScenario(t *testing.T) {
	s, scene, _ := newTestSession(t, AreaTool(DefaultGeometry()))
	d := 100 / globe.SemiMajorAxis * 180 / math.Pi
	s.Start()
	s.Click(scene.at(0, 0, deg(0, 0)))
	s.Click(scene.at(1, 0, deg(d, 0)))
	s.Click(scene.at(0, 1, deg(0, d)))
	shape, _, err := s.Finalize()
	require.NoError(t, err)
	require.Len(t, shape.Vertices, 3)

	area := globe.PolygonArea(shape.Vertices, globe.SemiMajorAxis)
	assert.InEpsilon(t, 5000, area, 1e-3)
	assert.Equal(t, FormatArea(area), shape.Measurement)
	assert.Contains(t, shape.Measurement, "m²")
	assert.IsType(t, orb.Polygon{}, shape.Geometry())
}

func TestHeightToolFinalizesOnSecondClick(t *testing.T) {
	s, scene, shapes := newTestSession(t, HeightTool())
	s.Start()
	shape, req := s.Click(scene.at(0, 0, globe.ToCartesian(globe.FromDegrees(8, 47, 400))))
	assert.Nil(t, shape)
	assert.Nil(t, req)

	shape, req = s.Click(scene.at(0, 1, globe.ToCartesian(globe.FromDegrees(8, 47, 500))))
	require.NotNil(t, shape)
	assert.Nil(t, req)
	assert.Len(t, shape.Vertices, 2)
	assert.Contains(t, shape.Measurement, "v 100.00 m")
	assert.False(t, s.Drawing(), "single-shape tools stop after finalizing")
	assert.Equal(t, 1, shapes.Len())
}

func TestSequenceSharedAcrossSessions(t *testing.T) {
	scene := newFakeScene()
	shapes := NewCollection()
	seq := NewSequence(10)
	dist := NewSession(DistanceTool(), scene, shapes, seq)
	height := NewSession(HeightTool(), scene, shapes, seq)

	dist.Start()
	dist.Click(scene.at(0, 0, deg(0, 0)))
	dist.Click(scene.at(1, 0, deg(0.001, 0)))
	first, _, err := dist.Finalize()
	require.NoError(t, err)

	height.Start()
	height.Click(scene.at(0, 0, deg(0, 0)))
	second, _ := height.Click(scene.at(1, 0, deg(0.001, 0)))
	require.NotNil(t, second)

	assert.Equal(t, 10, first.ID)
	assert.Equal(t, 11, second.ID)
	latest, ok := shapes.Latest()
	require.True(t, ok)
	assert.Equal(t, second, latest)

	assert.Equal(t, 1, dist.Clear())
	assert.Equal(t, 1, shapes.Len())
	_, ok = shapes.Get(first.ID)
	assert.False(t, ok)
}

func drawTriangle(t *testing.T, s *Session, scene *fakeScene) (*Shape, *SampleRequest) {
	t.Helper()
	s.Start()
	s.Click(scene.at(0, 0, deg(7, 46)))
	s.Click(scene.at(1, 0, deg(7.001, 46)))
	s.Click(scene.at(1, 1, deg(7.001, 46.001)))
	shape, req, err := s.Finalize()
	require.NoError(t, err)
	return shape, req
}

func TestPolygonGroundSample(t *testing.T) {
	s, scene, _ := newTestSession(t, PolygonTool(DefaultGeometry()))
	shape, req := drawTriangle(t, s, scene)
	require.NotNil(t, req)
	assert.True(t, shape.Pending)
	assert.Equal(t, shape.ID, req.ShapeID)
	assert.Len(t, req.Positions, 3)

	got, err := s.ApplySample(req, []float64{410, 420, 430}, nil)
	require.NoError(t, err)
	assert.Same(t, shape, got)
	assert.False(t, shape.Pending)
	assert.Equal(t, []float64{410, 420, 430}, shape.Ground)
	assert.InDelta(t, 420, globe.ToCartographic(shape.Vertices[1]).Height, 1e-4)
	assert.Contains(t, shape.Label, "ground 410.00..430.00 m")

	final := scene.labels(true)
	require.Len(t, final, 1)
	assert.Equal(t, shape.Label, final[0].Text)
}

func TestStaleSampleAfterStopIsDiscarded(t *testing.T) {
	s, scene, _ := newTestSession(t, PolygonTool(DefaultGeometry()))
	shape, req := drawTriangle(t, s, scene)
	s.Stop()

	got, err := s.ApplySample(req, []float64{1, 2, 3}, nil)
	assert.ErrorIs(t, err, ErrStaleSample)
	assert.Same(t, shape, got)
	assert.Nil(t, shape.Ground)
	assert.False(t, shape.Pending)
	assert.Equal(t, shape.Measurement+" (elevation unavailable)", shape.Label)

	final := scene.labels(true)
	require.Len(t, final, 1)
	assert.Equal(t, shape.Label, final[0].Text)
}

func TestDropRepeat(t *testing.T) {
	s, scene, _ := newTestSession(t, DistanceTool())
	a := scene.at(1, 1, deg(0, 0))
	b := scene.at(5, 1, deg(0.001, 0))

	s.Start()
	s.Click(a)
	assert.False(t, s.DropRepeat(), "single vertex")
	s.Click(b)
	assert.False(t, s.DropRepeat(), "distinct vertices")
	s.Click(b)
	require.Equal(t, 3, s.Committed())
	markers := scene.count(Marker, false)

	assert.True(t, s.DropRepeat())
	assert.Equal(t, 2, s.Committed())
	assert.Equal(t, markers-1, scene.count(Marker, false))

	shape, _, err := s.Finalize()
	require.NoError(t, err)
	assert.Equal(t, []globe.Cartesian{deg(0, 0), deg(0.001, 0)}, shape.Vertices)
}

func TestStaleSampleAfterClearIsDiscarded(t *testing.T) {
	s, scene, _ := newTestSession(t, PolygonTool(DefaultGeometry()))
	_, req := drawTriangle(t, s, scene)
	s.Clear()

	_, err := s.ApplySample(req, []float64{1, 2, 3}, nil)
	assert.ErrorIs(t, err, ErrStaleSample)
	assert.Empty(t, scene.visuals)
}

func TestFailedSampleIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	scene := newFakeScene()
	s := NewSession(PolygonTool(DefaultGeometry()), scene, NewCollection(), NewSequence(1), WithLogger(zap.New(core)))
	shape, req := drawTriangle(t, s, scene)

	boom := errors.New("grid: out of bounds")
	got, err := s.ApplySample(req, nil, boom)
	require.ErrorIs(t, err, boom)
	assert.Same(t, shape, got)
	assert.Nil(t, shape.Ground)
	assert.False(t, shape.Pending)
	assert.Contains(t, shape.Label, "(elevation unavailable)")
	assert.Equal(t, 1, logs.FilterMessage("ground sample failed").Len())
}

func TestSampleHeightCountMismatch(t *testing.T) {
	s, scene, _ := newTestSession(t, PolygonTool(DefaultGeometry()))
	_, req := drawTriangle(t, s, scene)
	_, err := s.ApplySample(req, []float64{1}, nil)
	assert.Error(t, err)
}

func TestFeatureCollectionExport(t *testing.T) {
	s, scene, shapes := newTestSession(t, DistanceTool())
	s.Start()
	s.Click(scene.at(0, 0, deg(1, 2)))
	s.Click(scene.at(1, 0, deg(1.5, 2)))
	_, _, err := s.Finalize()
	require.NoError(t, err)

	fc := shapes.FeatureCollection()
	require.Len(t, fc.Features, 1)
	f := fc.Features[0]
	assert.Equal(t, "distance", f.Properties["tool"])
	ls, ok := f.Geometry.(orb.LineString)
	require.True(t, ok)
	assert.InDelta(t, 1.5, ls[1][0], 1e-9)
	assert.InDelta(t, 2, ls[1][1], 1e-9)
}
