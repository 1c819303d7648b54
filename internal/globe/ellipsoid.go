// Package globe converts between geodetic and Earth-fixed coordinates and
// computes the measurements shown by the drawing tools.
package globe

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/paulmach/orb"
)

// Cartesian is an Earth-centred Earth-fixed position in metres.
type Cartesian = mgl64.Vec3

// Cartographic is a geodetic position: longitude and latitude in radians,
// height in metres above the WGS84 ellipsoid.
type Cartographic struct {
	Lon    float64
	Lat    float64
	Height float64
}

// WGS84 ellipsoid.
const (
	SemiMajorAxis = 6378137.0
	SemiMinorAxis = 6356752.3142451793
)

var eccSq = 1 - (SemiMinorAxis*SemiMinorAxis)/(SemiMajorAxis*SemiMajorAxis)

// FromDegrees builds a Cartographic from degrees.
func FromDegrees(lon, lat, height float64) Cartographic {
	return Cartographic{Lon: mgl64.DegToRad(lon), Lat: mgl64.DegToRad(lat), Height: height}
}

// Degrees returns longitude and latitude in degrees.
func (c Cartographic) Degrees() (lon, lat float64) {
	return mgl64.RadToDeg(c.Lon), mgl64.RadToDeg(c.Lat)
}

// Point returns the lon/lat degrees of c as an orb point. Height is dropped.
func (c Cartographic) Point() orb.Point {
	lon, lat := c.Degrees()
	return orb.Point{lon, lat}
}

// FromPoint lifts an orb lon/lat point to the given height.
func FromPoint(p orb.Point, height float64) Cartographic {
	return FromDegrees(p[0], p[1], height)
}

// ToCartesian converts a geodetic position to Earth-fixed coordinates.
func ToCartesian(c Cartographic) Cartesian {
	sinLat, cosLat := math.Sincos(c.Lat)
	sinLon, cosLon := math.Sincos(c.Lon)
	n := SemiMajorAxis / math.Sqrt(1-eccSq*sinLat*sinLat)
	return Cartesian{
		(n + c.Height) * cosLat * cosLon,
		(n + c.Height) * cosLat * sinLon,
		(n*(1-eccSq) + c.Height) * sinLat,
	}
}

// ToCartographic converts Earth-fixed coordinates back to a geodetic position.
// Latitude is solved iteratively; five rounds are well below millimetre error
// for anything near the surface.
func ToCartographic(p Cartesian) Cartographic {
	x, y, z := p.Elem()
	r := math.Hypot(x, y)
	if r < 1e-9 {
		if z == 0 {
			return Cartographic{}
		}
		lat := math.Pi / 2
		if z < 0 {
			lat = -lat
		}
		return Cartographic{Lat: lat, Height: math.Abs(z) - SemiMinorAxis}
	}
	lon := math.Atan2(y, x)
	lat := math.Atan2(z, r*(1-eccSq))
	var h float64
	for i := 0; i < 5; i++ {
		sinLat := math.Sin(lat)
		n := SemiMajorAxis / math.Sqrt(1-eccSq*sinLat*sinLat)
		h = r/math.Cos(lat) - n
		lat = math.Atan2(z, r*(1-eccSq*n/(n+h)))
	}
	return Cartographic{Lon: lon, Lat: lat, Height: h}
}

// Cartographics converts a slice of positions.
func Cartographics(pts []Cartesian) []Cartographic {
	out := make([]Cartographic, len(pts))
	for i, p := range pts {
		out[i] = ToCartographic(p)
	}
	return out
}
