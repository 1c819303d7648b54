package globe

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartographicRoundTrip(t *testing.T) {
	cases := []Cartographic{
		FromDegrees(0, 0, 0),
		FromDegrees(13.4, 52.5, 34),
		FromDegrees(-122.42, 37.77, 1200),
		FromDegrees(151.2, -33.86, -20),
		FromDegrees(45, 89.9, 10),
	}
	for _, c := range cases {
		got := ToCartographic(ToCartesian(c))
		assert.InDelta(t, c.Lon, got.Lon, 1e-9)
		assert.InDelta(t, c.Lat, got.Lat, 1e-9)
		assert.InDelta(t, c.Height, got.Height, 1e-4)
	}
}

func TestToCartographicPole(t *testing.T) {
	north := ToCartographic(Cartesian{0, 0, SemiMinorAxis + 5})
	assert.InDelta(t, math.Pi/2, north.Lat, 1e-12)
	assert.InDelta(t, 5, north.Height, 1e-6)

	south := ToCartographic(Cartesian{0, 0, -SemiMinorAxis})
	assert.InDelta(t, -math.Pi/2, south.Lat, 1e-12)
}

func TestToCartesianEquator(t *testing.T) {
	p := ToCartesian(FromDegrees(0, 0, 0))
	assert.InDelta(t, SemiMajorAxis, p.X(), 1e-6)
	assert.InDelta(t, 0, p.Y(), 1e-6)
	assert.InDelta(t, 0, p.Z(), 1e-6)
}

func TestPolylineLength(t *testing.T) {
	pts := []Cartesian{{0, 0, 0}, {3, 0, 0}, {3, 4, 0}}
	assert.InDelta(t, 7, PolylineLength(pts), 1e-12)
	assert.Zero(t, PolylineLength(pts[:1]))
	assert.Zero(t, PolylineLength(nil))
}

func TestMidpointAlong(t *testing.T) {
	pts := []Cartesian{{0, 0, 0}, {3, 0, 0}, {3, 4, 0}}
	mid := MidpointAlong(pts)
	assert.True(t, mid.ApproxEqualThreshold(Cartesian{3, 0.5, 0}, 1e-12), "got %v", mid)

	assert.Equal(t, Cartesian{1, 2, 3}, MidpointAlong([]Cartesian{{1, 2, 3}}))
	assert.Equal(t, Cartesian{1, 2, 3}, MidpointAlong([]Cartesian{{1, 2, 3}, {1, 2, 3}}))
}

func TestPolygonAreaRightTriangle(t *testing.T) {
	d := mathDegrees(100 / SemiMajorAxis)
	pts := []Cartesian{
		ToCartesian(FromDegrees(0, 0, 0)),
		ToCartesian(FromDegrees(d, 0, 0)),
		ToCartesian(FromDegrees(0, d, 0)),
	}
	area := PolygonArea(pts, SemiMajorAxis)
	assert.InEpsilon(t, 5000, area, 1e-3)
}

func TestPolygonAreaMatchesOrb(t *testing.T) {
	ring := orb.Ring{{13.40, 52.50}, {13.41, 52.50}, {13.41, 52.51}, {13.40, 52.51}, {13.40, 52.50}}
	var pts []Cartesian
	for _, p := range ring[:4] {
		pts = append(pts, ToCartesian(FromPoint(p, 0)))
	}
	want := geo.Area(orb.Polygon{ring})
	assert.InEpsilon(t, want, PolygonArea(pts, orb.EarthRadius), 1e-6)
}

func TestPolygonAreaOrientationIndependent(t *testing.T) {
	a := ToCartesian(FromDegrees(10, 10, 0))
	b := ToCartesian(FromDegrees(10.01, 10, 0))
	c := ToCartesian(FromDegrees(10.01, 10.01, 0))
	ccw := PolygonArea([]Cartesian{a, b, c}, SemiMajorAxis)
	cw := PolygonArea([]Cartesian{c, b, a}, SemiMajorAxis)
	assert.InDelta(t, ccw, cw, 1e-6)
	assert.Zero(t, PolygonArea([]Cartesian{a, b}, SemiMajorAxis))
}

func TestPolygonCentroidSquare(t *testing.T) {
	corners := []Cartographic{
		FromDegrees(10, 20, 0),
		FromDegrees(11, 20, 0),
		FromDegrees(11, 21, 0),
		FromDegrees(10, 21, 0),
	}
	var pts []Cartesian
	for _, c := range corners {
		pts = append(pts, ToCartesian(c))
	}
	got := PolygonCentroid(pts, 0)
	lon, lat := got.Degrees()
	assert.InDelta(t, 10.5, lon, 1e-9)
	assert.InDelta(t, 20.5, lat, 1e-9)
	assert.InDelta(t, 0, got.Height, 1e-4)
}

func TestPolygonCentroidHeightClamp(t *testing.T) {
	pts := []Cartesian{
		ToCartesian(FromDegrees(0, 0, -50)),
		ToCartesian(FromDegrees(0.001, 0, -50)),
		ToCartesian(FromDegrees(0, 0.001, -50)),
	}
	got := PolygonCentroid(pts, 10)
	assert.InDelta(t, 10, got.Height, 1e-6)

	raised := []Cartesian{
		ToCartesian(FromDegrees(0, 0, 100)),
		ToCartesian(FromDegrees(0.001, 0, 200)),
	}
	assert.InDelta(t, 160, PolygonCentroid(raised, 10).Height, 1e-4)
}

func TestMeasureHeight(t *testing.T) {
	a := ToCartesian(FromDegrees(8, 47, 400))
	b := ToCartesian(FromDegrees(8, 47, 500))
	m := MeasureHeight(a, b)
	assert.InDelta(t, 100, m.Vertical, 1e-4)
	assert.InDelta(t, 0, m.Horizontal, 1e-4)
	assert.InDelta(t, 100, m.Diagonal, 1e-4)

	c := ToCartesian(FromDegrees(8.01, 47, 550))
	m = MeasureHeight(a, c)
	assert.InDelta(t, 150, m.Vertical, 1e-4)
	require.Greater(t, m.Horizontal, 700.0)
	assert.InDelta(t, math.Hypot(m.Horizontal, m.Vertical), m.Diagonal, 1.0)
}

func TestRingCloses(t *testing.T) {
	pts := []Cartesian{
		ToCartesian(FromDegrees(1, 1, 0)),
		ToCartesian(FromDegrees(2, 1, 0)),
		ToCartesian(FromDegrees(2, 2, 0)),
	}
	ring := Ring(pts)
	require.Len(t, ring, 4)
	assert.Equal(t, ring[0], ring[3])
	assert.Len(t, LineString(pts), 3)
}

func mathDegrees(rad float64) float64 { return rad * 180 / math.Pi }
