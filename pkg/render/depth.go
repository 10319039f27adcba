package render

import "math"

// DepthBuffer stores the nearest accepted view depth per pixel.
// A cell only ever decreases between resets.
type DepthBuffer struct {
	Width  int
	Height int
	Values []float64
}

// NewDepthBuffer creates a depth buffer reset to +Inf.
func NewDepthBuffer(width, height int) *DepthBuffer {
	d := &DepthBuffer{
		Width:  width,
		Height: height,
		Values: make([]float64, width*height),
	}
	d.Reset()
	return d
}

// Reset sets every cell to +Inf.
func (d *DepthBuffer) Reset() {
	for i := range d.Values {
		d.Values[i] = math.Inf(1)
	}
}

// ResetRows sets the cells of rows [y0, y1) to +Inf.
func (d *DepthBuffer) ResetRows(y0, y1 int) {
	y0, y1 = max(y0, 0), min(y1, d.Height)
	for i := y0 * d.Width; i < y1*d.Width; i++ {
		d.Values[i] = math.Inf(1)
	}
}

// Test stores depth at idx and reports true iff it is strictly closer than
// the stored value. NaN never passes.
func (d *DepthBuffer) Test(idx int, depth float64) bool {
	if depth < d.Values[idx] {
		d.Values[idx] = depth
		return true
	}
	return false
}

// At returns the stored depth at (x, y).
func (d *DepthBuffer) At(x, y int) float64 {
	return d.Values[y*d.Width+x]
}
