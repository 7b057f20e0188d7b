package model

import (
	"errors"
	"fmt"

	"github.com/signalsfoundry/skyimage/wcs"
)

// ErrImageShape is returned when pixel data does not match the declared shape.
var ErrImageShape = errors.New("invalid image shape")

// Image is a 4-axis image cube ordered (channel, polarisation, y, x). Data is
// row-major with x varying fastest.
type Image struct {
	Shape             [4]int
	WCS               wcs.WCS
	PolarisationFrame PolarisationFrame
	Data              []float64

	// Chunks is an allocator hint carried through unchanged. nil means
	// unchunked.
	Chunks map[string]int
}

// NewImageFromArray bundles data with its coordinate system. data must hold
// exactly shape[0]*shape[1]*shape[2]*shape[3] values; it is not copied.
func NewImageFromArray(data []float64, shape [4]int, w wcs.WCS, pol PolarisationFrame, chunks map[string]int) (*Image, error) {
	n := 1
	for i, s := range shape {
		if s < 1 {
			return nil, fmt.Errorf("%w: axis %d has length %d", ErrImageShape, i, s)
		}
		n *= s
	}
	if len(data) != n {
		return nil, fmt.Errorf("%w: %d values for shape %v", ErrImageShape, len(data), shape)
	}
	if pol.Valid() && pol.NPol() != shape[1] {
		return nil, fmt.Errorf("%w: frame %s has %d components, shape declares %d",
			ErrImageShape, pol, pol.NPol(), shape[1])
	}
	return &Image{
		Shape:             shape,
		WCS:               w,
		PolarisationFrame: pol,
		Data:              data,
		Chunks:            chunks,
	}, nil
}

// NChan returns the number of frequency channels.
func (im *Image) NChan() int { return im.Shape[0] }

// NPol returns the number of polarisation planes.
func (im *Image) NPol() int { return im.Shape[1] }

// NPixel returns (ny, nx).
func (im *Image) NPixel() (int, int) { return im.Shape[2], im.Shape[3] }

// Len is the total number of pixels.
func (im *Image) Len() int { return len(im.Data) }

// Index converts (chan, pol, y, x) to a flat offset into Data.
func (im *Image) Index(c, p, y, x int) int {
	return ((c*im.Shape[1]+p)*im.Shape[2]+y)*im.Shape[3] + x
}

// At returns the pixel value at (chan, pol, y, x).
func (im *Image) At(c, p, y, x int) float64 { return im.Data[im.Index(c, p, y, x)] }

// Set stores v at (chan, pol, y, x).
func (im *Image) Set(c, p, y, x int, v float64) { im.Data[im.Index(c, p, y, x)] = v }

// Plane returns the (y, x) plane for one channel and polarisation. The slice
// aliases Data.
func (im *Image) Plane(c, p int) []float64 {
	start := im.Index(c, p, 0, 0)
	return im.Data[start : start+im.Shape[2]*im.Shape[3]]
}
