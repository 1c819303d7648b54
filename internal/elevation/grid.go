package elevation

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/paulmach/orb"

	"geomeasure/internal/globe"
)

// Grid is a regular lon/lat height raster read from an ESRI ASCII grid.
// Heights are looked up at the nearest cell.
type Grid struct {
	cols, rows int
	// west and south edges of the raster, degrees
	west, south float64
	cell        float64
	noData      float64
	hasNoData   bool
	// values are stored row by row from the northern edge.
	values []float64
}

// LoadGrid reads an .asc file.
func LoadGrid(path string) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	g, err := ReadGrid(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// ReadGrid parses the ESRI ASCII grid format: a header of key/value lines
// followed by nrows rows of ncols heights.
func ReadGrid(r io.Reader) (*Grid, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	sc.Split(bufio.ScanWords)

	header := map[string]float64{}
	var first string
	for sc.Scan() {
		key := strings.ToLower(sc.Text())
		if _, err := strconv.ParseFloat(key, 64); err == nil {
			first = key
			break
		}
		if !sc.Scan() {
			return nil, fmt.Errorf("header %s: missing value", key)
		}
		v, err := strconv.ParseFloat(sc.Text(), 64)
		if err != nil {
			return nil, fmt.Errorf("header %s: %w", key, err)
		}
		header[key] = v
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	g := &Grid{
		cols: int(header["ncols"]),
		rows: int(header["nrows"]),
		cell: header["cellsize"],
	}
	if g.cols <= 0 || g.rows <= 0 || g.cell <= 0 {
		return nil, fmt.Errorf("header: ncols, nrows and cellsize must be positive")
	}
	x, okx := header["xllcorner"]
	y, oky := header["yllcorner"]
	if !okx || !oky {
		cx, okcx := header["xllcenter"]
		cy, okcy := header["yllcenter"]
		if !okcx || !okcy {
			return nil, fmt.Errorf("header: missing lower-left corner")
		}
		x, y = cx-g.cell/2, cy-g.cell/2
	}
	g.west, g.south = x, y
	g.noData, g.hasNoData = header["nodata_value"]

	g.values = make([]float64, 0, g.cols*g.rows)
	if first != "" {
		v, _ := strconv.ParseFloat(first, 64)
		g.values = append(g.values, v)
	}
	for sc.Scan() {
		v, err := strconv.ParseFloat(sc.Text(), 64)
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", len(g.values), err)
		}
		g.values = append(g.values, v)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(g.values) != g.cols*g.rows {
		return nil, fmt.Errorf("expected %d values, got %d", g.cols*g.rows, len(g.values))
	}
	return g, nil
}

// Bound returns the raster extent in degrees.
func (g *Grid) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{g.west, g.south},
		Max: orb.Point{g.west + float64(g.cols)*g.cell, g.south + float64(g.rows)*g.cell},
	}
}

func (g *Grid) HeightAt(c globe.Cartographic) (float64, bool) {
	lon, lat := c.Degrees()
	col := int(math.Floor((lon - g.west) / g.cell))
	row := g.rows - 1 - int(math.Floor((lat-g.south)/g.cell))
	if col < 0 || col >= g.cols || row < 0 || row >= g.rows {
		return 0, false
	}
	v := g.values[row*g.cols+col]
	if g.hasNoData && v == g.noData {
		return 0, false
	}
	return v, true
}

func (g *Grid) Sample(ctx context.Context, positions []globe.Cartographic) ([]float64, error) {
	return sample(ctx, g, positions)
}

// Fallback answers from primary and uses the flat height where primary has no
// data. Picking uses it so that points off the raster can still be drawn.
type Fallback struct {
	Primary Terrain
	Flat    Flat
}

func (f Fallback) HeightAt(c globe.Cartographic) (float64, bool) {
	if h, ok := f.Primary.HeightAt(c); ok {
		return h, true
	}
	return f.Flat.HeightAt(c)
}
