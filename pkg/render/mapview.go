package render

import (
	"image"
	"image/color"
	"math"
)

// Empty is the value of a depth cell no fragment has written.
const Empty = math.MaxFloat64

// MapView is a 2D grid of scalars addressed by pixel. It serves as the depth
// buffer of the main pass and as the depth map of each shadow-casting light.
// Depth values are normalized device Z; smaller is nearer.
type MapView struct {
	Width  int
	Height int
	Values []float64 // Row-major
}

// NewMapView creates a cleared map.
func NewMapView(width, height int) *MapView {
	m := &MapView{
		Width:  width,
		Height: height,
		Values: make([]float64, width*height),
	}
	m.Clear(Empty)
	return m
}

// Clear sets every cell to v.
func (m *MapView) Clear(v float64) {
	n := len(m.Values)
	if n == 0 {
		return
	}
	// copy-doubling
	m.Values[0] = v
	for i := 1; i < n; i *= 2 {
		copy(m.Values[i:], m.Values[:i])
	}
}

// InBounds reports whether (x, y) addresses a cell.
func (m *MapView) InBounds(x, y int) bool {
	return x >= 0 && x < m.Width && y >= 0 && y < m.Height
}

// At returns the value at (x, y), or Empty out of bounds.
func (m *MapView) At(x, y int) float64 {
	if !m.InBounds(x, y) {
		return Empty
	}
	return m.Values[y*m.Width+x]
}

// Set writes v at (x, y). Out-of-bounds writes are ignored.
func (m *MapView) Set(x, y int, v float64) {
	if !m.InBounds(x, y) {
		return
	}
	m.Values[y*m.Width+x] = v
}

// TestAndSet writes z if it is nearer than the stored value and reports
// whether it did.
func (m *MapView) TestAndSet(x, y int, z float64) bool {
	if !m.InBounds(x, y) {
		return false
	}
	idx := y*m.Width + x
	if z < m.Values[idx] {
		m.Values[idx] = z
		return true
	}
	return false
}

// Coverage counts the written cells.
func (m *MapView) Coverage() int {
	n := 0
	for _, v := range m.Values {
		if v != Empty {
			n++
		}
	}
	return n
}

// Range returns the smallest and largest written values. ok is false for an
// empty map.
func (m *MapView) Range() (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range m.Values {
		if v == Empty {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
		ok = true
	}
	return lo, hi, ok
}

// ToImage renders the map as grayscale: near is white, far is dark, unwritten
// cells are black.
func (m *MapView) ToImage() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	lo, hi, ok := m.Range()
	if !ok {
		return img
	}
	span := hi - lo
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			v := m.Values[y*m.Width+x]
			if v == Empty {
				continue
			}
			t := 1.0
			if span > 0 {
				t = 1 - (v-lo)/span
			}
			img.SetGray(x, y, color.Gray{Y: uint8(32 + t*223)})
		}
	}
	return img
}
