package draw

import (
	"geomeasure/internal/globe"
)

// fakeScene picks screen points through a fixed table and records visuals.
type fakeScene struct {
	picks   map[ScreenPoint]globe.Cartesian
	visuals map[VisualID]Visual
	next    VisualID
	removed []VisualID
}

func newFakeScene() *fakeScene {
	return &fakeScene{
		picks:   make(map[ScreenPoint]globe.Cartesian),
		visuals: make(map[VisualID]Visual),
	}
}

func (f *fakeScene) at(x, y int, p globe.Cartesian) ScreenPoint {
	sp := ScreenPoint{X: x, Y: y}
	f.picks[sp] = p
	return sp
}

func (f *fakeScene) Pick(p ScreenPoint) (globe.Cartesian, bool) {
	c, ok := f.picks[p]
	return c, ok
}

func (f *fakeScene) Add(v Visual) VisualID {
	f.next++
	f.visuals[f.next] = v
	return f.next
}

func (f *fakeScene) Update(id VisualID, v Visual) {
	if _, ok := f.visuals[id]; ok {
		f.visuals[id] = v
	}
}

func (f *fakeScene) Remove(id VisualID) {
	delete(f.visuals, id)
	f.removed = append(f.removed, id)
}

func (f *fakeScene) count(kind VisualKind, final bool) int {
	n := 0
	for _, v := range f.visuals {
		if v.Kind == kind && v.Final == final {
			n++
		}
	}
	return n
}

func (f *fakeScene) labels(final bool) []Visual {
	var out []Visual
	for _, v := range f.visuals {
		if v.Kind == Label && v.Final == final {
			out = append(out, v)
		}
	}
	return out
}

func (f *fakeScene) snapshot() map[VisualID]Visual {
	out := make(map[VisualID]Visual, len(f.visuals))
	for k, v := range f.visuals {
		out[k] = v
	}
	return out
}
