package tui

import "sort"

type brailleBuf struct {
	w, h int       // in cells
	m    [][]uint8 // per-cell 8-bit mask
}

func newBrailleBuf(w, h int) *brailleBuf {
	m := make([][]uint8, h)
	for i := range m {
		m[i] = make([]uint8, w)
	}
	return &brailleBuf{w: w, h: h, m: m}
}

// dot bits for the left and right column of a cell, top to bottom
var (
	leftDots  = [4]uint8{0x01, 0x02, 0x04, 0x40}
	rightDots = [4]uint8{0x08, 0x10, 0x20, 0x80}
)

// setPixel sets a micro-pixel at micro coords (2x4 per cell)
func (b *brailleBuf) setPixel(mx, my int) {
	if mx < 0 || my < 0 {
		return
	}
	cx, rx := mx/2, mx%2
	cy, ry := my/4, my%4
	if cy >= b.h || cx >= b.w {
		return
	}
	if rx == 0 {
		b.m[cy][cx] |= leftDots[ry]
	} else {
		b.m[cy][cx] |= rightDots[ry]
	}
}

// drawLineMicro draws a line on the microgrid using Bresenham. A positive
// dash alternates dash drawn and dash skipped pixels.
func (b *brailleBuf) drawLineMicro(x0, y0, x1, y1, dash int) {
	dx := abs(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -abs(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for i := 0; ; i++ {
		if dash <= 0 || (i/dash)%2 == 0 {
			b.setPixel(x0, y0)
		}
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// drawPath connects consecutive points, closing the path when closed is set.
func (b *brailleBuf) drawPath(pts [][2]int, closed bool, dash int) {
	for i := 1; i < len(pts); i++ {
		b.drawLineMicro(pts[i-1][0], pts[i-1][1], pts[i][0], pts[i][1], dash)
	}
	if closed && len(pts) > 2 {
		last := pts[len(pts)-1]
		b.drawLineMicro(last[0], last[1], pts[0][0], pts[0][1], dash)
	}
}

// fillRing fills a ring using the even-odd rule per microgrid scanline.
func (b *brailleBuf) fillRing(ring [][2]int) {
	hMic := b.h * 4
	for yMic := 0; yMic < hMic; yMic++ {
		var xs []int
		for i := 0; i < len(ring); i++ {
			a := ring[i]
			c := ring[(i+1)%len(ring)]
			if a[1] == c[1] { // horizontal edge: skip
				continue
			}
			y0, y1 := a[1], c[1]
			x0, x1 := a[0], c[0]
			if (yMic >= y0 && yMic < y1) || (yMic >= y1 && yMic < y0) {
				t := float64(yMic-y0) / float64(y1-y0)
				xs = append(xs, int(float64(x0)+t*float64(x1-x0)))
			}
		}
		if len(xs) < 2 {
			continue
		}
		sort.Ints(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			for xMic := max(0, xs[i]); xMic <= xs[i+1]; xMic++ {
				b.setPixel(xMic, yMic)
			}
		}
	}
}

// at returns the braille rune of a cell, or a space when the cell is empty.
func (b *brailleBuf) at(x, y int) rune {
	mask := b.m[y][x]
	if mask == 0 {
		return ' '
	}
	return rune(0x2800 + int(mask))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
