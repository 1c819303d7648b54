package globe

import (
	"math"

	"github.com/paulmach/orb"
)

// PolylineLength sums the straight-line distances between consecutive points.
func PolylineLength(pts []Cartesian) float64 {
	var total float64
	for i := 1; i < len(pts); i++ {
		total += pts[i].Sub(pts[i-1]).Len()
	}
	return total
}

// PolygonArea estimates the surface area enclosed by pts with the spherical
// excess formula on a sphere of the given radius. The ring is closed
// implicitly. The estimate is only good for small to moderate extents; large
// polygons and polygons crossing the antimeridian are not handled.
func PolygonArea(pts []Cartesian, radius float64) float64 {
	if len(pts) < 3 {
		return 0
	}
	carto := Cartographics(pts)
	var sum float64
	for i := range carto {
		a := carto[i]
		b := carto[(i+1)%len(carto)]
		sum += (b.Lon - a.Lon) * (2 + math.Sin(a.Lat) + math.Sin(b.Lat))
	}
	return math.Abs(sum) * radius * radius / 2
}

// PolygonCentroid averages longitude, latitude and height independently.
// The height is clamped to zero and raised by offset so a label placed there
// stays above the surface.
func PolygonCentroid(pts []Cartesian, offset float64) Cartographic {
	if len(pts) == 0 {
		return Cartographic{Height: offset}
	}
	var c Cartographic
	for _, p := range Cartographics(pts) {
		c.Lon += p.Lon
		c.Lat += p.Lat
		c.Height += p.Height
	}
	n := float64(len(pts))
	c.Lon /= n
	c.Lat /= n
	c.Height = math.Max(0, c.Height/n) + offset
	return c
}

// MidpointAlong returns the point halfway along the polyline.
func MidpointAlong(pts []Cartesian) Cartesian {
	switch len(pts) {
	case 0:
		return Cartesian{}
	case 1:
		return pts[0]
	}
	half := PolylineLength(pts) / 2
	for i := 1; i < len(pts); i++ {
		seg := pts[i].Sub(pts[i-1])
		l := seg.Len()
		if l >= half && l > 0 {
			return pts[i-1].Add(seg.Mul(half / l))
		}
		half -= l
	}
	return pts[len(pts)-1]
}

// HeightMeasure is the result of a two-point height measurement.
type HeightMeasure struct {
	Vertical   float64
	Horizontal float64
	Diagonal   float64
}

// MeasureHeight measures from a to b. Horizontal is taken at a's height.
func MeasureHeight(a, b Cartesian) HeightMeasure {
	ca := ToCartographic(a)
	cb := ToCartographic(b)
	level := ToCartesian(Cartographic{Lon: cb.Lon, Lat: cb.Lat, Height: ca.Height})
	return HeightMeasure{
		Vertical:   math.Abs(ca.Height - cb.Height),
		Horizontal: level.Sub(a).Len(),
		Diagonal:   b.Sub(a).Len(),
	}
}

// Ring returns pts as a closed lon/lat ring.
func Ring(pts []Cartesian) orb.Ring {
	ring := make(orb.Ring, 0, len(pts)+1)
	for _, c := range Cartographics(pts) {
		ring = append(ring, c.Point())
	}
	if len(ring) > 0 && !ring.Closed() {
		ring = append(ring, ring[0])
	}
	return ring
}

// LineString returns pts as a lon/lat line string.
func LineString(pts []Cartesian) orb.LineString {
	ls := make(orb.LineString, 0, len(pts))
	for _, c := range Cartographics(pts) {
		ls = append(ls, c.Point())
	}
	return ls
}
