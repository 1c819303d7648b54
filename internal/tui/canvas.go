package tui

import (
	"github.com/paulmach/orb"

	"geomeasure/internal/draw"
	"geomeasure/internal/elevation"
	"geomeasure/internal/globe"
)

// canvas is the map viewport. It projects lon/lat into map cells and holds
// the visuals pushed by the draw sessions.
type canvas struct {
	bound   orb.Bound
	zoom    float64
	offsetX int
	offsetY int
	// last rendered map size in cells
	w, h int

	terrain elevation.Terrain

	visuals map[draw.VisualID]draw.Visual
	next    draw.VisualID
}

func newCanvas(bound orb.Bound, terrain elevation.Terrain) *canvas {
	return &canvas{
		bound:   bound,
		zoom:    1.0,
		terrain: terrain,
		visuals: make(map[draw.VisualID]draw.Visual),
	}
}

func (c *canvas) valid() bool {
	return c.bound.Max[0] > c.bound.Min[0] && c.bound.Max[1] > c.bound.Min[1] && c.w > 1 && c.h > 1
}

// reset fits the viewport to b.
func (c *canvas) reset(b orb.Bound) {
	c.bound = b
	c.zoom = 1.0
	c.offsetX, c.offsetY = 0, 0
}

// cellToLonLat converts a map cell coordinate back to lon/lat using bound, zoom, and pan.
func (c *canvas) cellToLonLat(cx, cy int) (float64, float64, bool) {
	if !c.valid() {
		return 0, 0, false
	}
	zx := float64(cx-c.offsetX) / float64(c.w-1)
	zy := 1.0 - float64(cy-c.offsetY)/float64(c.h-1)
	nx := 0.5 + (zx-0.5)/c.zoom
	ny := 0.5 + (zy-0.5)/c.zoom
	lon := c.bound.Min[0] + nx*(c.bound.Max[0]-c.bound.Min[0])
	lat := c.bound.Min[1] + ny*(c.bound.Max[1]-c.bound.Min[1])
	return lon, lat, true
}

// screenXYMicro maps lon/lat into a 2x4 microgrid per cell for braille rendering.
func (c *canvas) screenXYMicro(lon, lat float64) (int, int, bool) {
	if !c.valid() {
		return 0, 0, false
	}
	nx := (lon - c.bound.Min[0]) / (c.bound.Max[0] - c.bound.Min[0])
	ny := (lat - c.bound.Min[1]) / (c.bound.Max[1] - c.bound.Min[1])
	zx := 0.5 + (nx-0.5)*c.zoom
	zy := 0.5 + (ny-0.5)*c.zoom
	wMic := c.w * 2
	hMic := c.h * 4
	sx := int(zx*float64(wMic-1)) + c.offsetX*2
	sy := int((1.0-zy)*float64(hMic-1)) + c.offsetY*4
	return sx, sy, true
}

// screenXY maps lon/lat to current screen integer coordinates considering zoom and pan.
func (c *canvas) screenXY(lon, lat float64) (int, int, bool) {
	if !c.valid() {
		return 0, 0, false
	}
	nx := (lon - c.bound.Min[0]) / (c.bound.Max[0] - c.bound.Min[0])
	ny := (lat - c.bound.Min[1]) / (c.bound.Max[1] - c.bound.Min[1])
	// Apply zoom around center (0.5, 0.5)
	zx := 0.5 + (nx-0.5)*c.zoom
	zy := 0.5 + (ny-0.5)*c.zoom
	sx := int(zx*float64(c.w-1)) + c.offsetX
	sy := int((1.0-zy)*float64(c.h-1)) + c.offsetY
	return sx, sy, true
}

// micro projects an Earth-fixed position onto the microgrid.
func (c *canvas) micro(p globe.Cartesian) (int, int, bool) {
	lon, lat := globe.ToCartographic(p).Degrees()
	return c.screenXYMicro(lon, lat)
}

// cell projects an Earth-fixed position onto a map cell.
func (c *canvas) cell(p globe.Cartesian) (int, int, bool) {
	lon, lat := globe.ToCartographic(p).Degrees()
	return c.screenXY(lon, lat)
}

// surface returns the ground position under a map cell.
func (c *canvas) surface(cx, cy int) (globe.Cartographic, bool) {
	if cx < 0 || cy < 0 || cx >= c.w || cy >= c.h {
		return globe.Cartographic{}, false
	}
	lon, lat, ok := c.cellToLonLat(cx, cy)
	if !ok || lat < -90 || lat > 90 {
		return globe.Cartographic{}, false
	}
	pos := globe.FromDegrees(lon, lat, 0)
	if c.terrain != nil {
		if h, ok := c.terrain.HeightAt(pos); ok {
			pos.Height = h
		}
	}
	return pos, true
}

// Pick resolves a map cell to the ground position below it.
func (c *canvas) Pick(p draw.ScreenPoint) (globe.Cartesian, bool) {
	pos, ok := c.surface(p.X, p.Y)
	if !ok {
		return globe.Cartesian{}, false
	}
	return globe.ToCartesian(pos), true
}

func (c *canvas) Add(v draw.Visual) draw.VisualID {
	c.next++
	c.visuals[c.next] = v
	return c.next
}

func (c *canvas) Update(id draw.VisualID, v draw.Visual) {
	if _, ok := c.visuals[id]; ok {
		c.visuals[id] = v
	}
}

func (c *canvas) Remove(id draw.VisualID) {
	delete(c.visuals, id)
}
