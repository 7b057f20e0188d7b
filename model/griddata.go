package model

import "fmt"

// GridData holds gridded visibilities ordered (channel, polarisation, v, u).
type GridData struct {
	Shape             [4]int
	PolarisationFrame PolarisationFrame
	Data              []complex128
}

// NewGridData allocates a zero-filled grid of the given shape.
func NewGridData(shape [4]int, pol PolarisationFrame) (*GridData, error) {
	n := 1
	for i, s := range shape {
		if s < 1 {
			return nil, fmt.Errorf("%w: grid axis %d has length %d", ErrImageShape, i, s)
		}
		n *= s
	}
	return &GridData{
		Shape:             shape,
		PolarisationFrame: pol,
		Data:              make([]complex128, n),
	}, nil
}

// Index converts (chan, pol, v, u) to a flat offset into Data.
func (g *GridData) Index(c, p, v, u int) int {
	return ((c*g.Shape[1]+p)*g.Shape[2]+v)*g.Shape[3] + u
}

// Plane returns the (v, u) plane for one channel and polarisation. The slice
// aliases Data.
func (g *GridData) Plane(c, p int) []complex128 {
	start := g.Index(c, p, 0, 0)
	return g.Data[start : start+g.Shape[2]*g.Shape[3]]
}
