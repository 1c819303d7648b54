// Package elevation supplies ground heights for picking and for the ground
// sample taken when a drawn polygon is finalized.
package elevation

import (
	"context"
	"errors"
	"fmt"

	"geomeasure/internal/globe"
)

// ErrOutOfBounds is returned when a position lies outside the terrain data.
var ErrOutOfBounds = errors.New("elevation: position outside terrain")

// Terrain answers height queries synchronously.
type Terrain interface {
	HeightAt(c globe.Cartographic) (float64, bool)
}

// Sampler resolves ground heights for a batch of positions. Implementations
// may block and must honour ctx.
type Sampler interface {
	Sample(ctx context.Context, positions []globe.Cartographic) ([]float64, error)
}

// Flat is a terrain at constant height.
type Flat struct {
	Height float64
}

func (f Flat) HeightAt(globe.Cartographic) (float64, bool) { return f.Height, true }

func (f Flat) Sample(ctx context.Context, positions []globe.Cartographic) ([]float64, error) {
	return sample(ctx, f, positions)
}

// sample queries t for every position, stopping early when ctx is done.
func sample(ctx context.Context, t Terrain, positions []globe.Cartographic) ([]float64, error) {
	out := make([]float64, len(positions))
	for i, p := range positions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		h, ok := t.HeightAt(p)
		if !ok {
			lon, lat := p.Degrees()
			return nil, &PositionError{Index: i, Lon: lon, Lat: lat}
		}
		out[i] = h
	}
	return out, nil
}

// PositionError names the position a sample failed on.
type PositionError struct {
	Index    int
	Lon, Lat float64
}

func (e *PositionError) Error() string {
	return fmt.Sprintf("elevation: no height at vertex %d (%.6f, %.6f)", e.Index, e.Lon, e.Lat)
}

func (e *PositionError) Unwrap() error { return ErrOutOfBounds }
