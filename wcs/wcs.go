// Package wcs describes the world coordinate system attached to an image cube
// and converts between pixel and world coordinates.
//
// Axis order follows FITS: axis 1 is the fastest-varying pixel index. For the
// image cubes in this module that is (RA, Dec, Stokes, Frequency), the reverse
// of the in-memory array order (channel, polarisation, y, x).
package wcs

import (
	"errors"
	"fmt"
)

// NAxis is the number of axes of every image WCS in this module.
const NAxis = 4

// Axis indices into the CType/CRPix/CDelt/CRVal arrays.
const (
	AxisLon = iota
	AxisLat
	AxisPol
	AxisFreq
)

// Axis types of an image cube.
const (
	CTypeRA     = "RA---SIN"
	CTypeDec    = "DEC--SIN"
	CTypeStokes = "STOKES"
	CTypeFreq   = "FREQ"
)

// Defaults for the celestial reference system.
const (
	DefaultFrame   = "ICRS"
	DefaultEquinox = 2000.0
)

var (
	// ErrInvalidWCS is returned by Validate.
	ErrInvalidWCS = errors.New("invalid wcs")
	// ErrOutsideProjection is returned for points that have no image on the
	// SIN projection plane (far hemisphere or |l,m| > 1).
	ErrOutsideProjection = errors.New("point outside projection")
)

// WCS is a linear 4-axis world coordinate system with a SIN projection on the
// two celestial axes. Reference pixels are 1-based.
type WCS struct {
	CType [NAxis]string
	CUnit [NAxis]string
	CRPix [NAxis]float64
	CDelt [NAxis]float64
	CRVal [NAxis]float64

	RADeSys string
	Equinox float64
}

// Clone returns a copy of w. WCS holds only arrays, so this is a value copy;
// it exists so call sites read as intentional copies.
func (w WCS) Clone() WCS { return w }

// Validate checks the celestial axes are usable for projection.
func (w WCS) Validate() error {
	if w.CType[AxisLon] != CTypeRA || w.CType[AxisLat] != CTypeDec {
		return fmt.Errorf("%w: celestial axes %q/%q, want %q/%q",
			ErrInvalidWCS, w.CType[AxisLon], w.CType[AxisLat], CTypeRA, CTypeDec)
	}
	if w.CDelt[AxisLon] == 0 || w.CDelt[AxisLat] == 0 {
		return fmt.Errorf("%w: zero celestial pixel scale", ErrInvalidWCS)
	}
	if w.CDelt[AxisPol] == 0 {
		return fmt.Errorf("%w: zero polarisation step", ErrInvalidWCS)
	}
	return nil
}
