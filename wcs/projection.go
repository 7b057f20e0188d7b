package wcs

import (
	"fmt"
	"math"
)

const (
	deg2rad = math.Pi / 180.0
	rad2deg = 180.0 / math.Pi
)

// PixelToWorld maps 1-based pixel coordinates (x, y, pol, freq) to world
// coordinates (RA deg, Dec deg, Stokes index, Hz).
func (w WCS) PixelToWorld(pix [NAxis]float64) ([NAxis]float64, error) {
	var out [NAxis]float64

	// Intermediate coordinates are direction cosines (l, m) on the SIN plane.
	l := w.CDelt[AxisLon] * (pix[AxisLon] - w.CRPix[AxisLon]) * deg2rad
	m := w.CDelt[AxisLat] * (pix[AxisLat] - w.CRPix[AxisLat]) * deg2rad
	r2 := l*l + m*m
	if r2 > 1 {
		return out, fmt.Errorf("%w: l=%g m=%g", ErrOutsideProjection, l, m)
	}
	n := math.Sqrt(1 - r2)

	ra0 := w.CRVal[AxisLon] * deg2rad
	dec0 := w.CRVal[AxisLat] * deg2rad
	sinDec0, cosDec0 := math.Sincos(dec0)

	dec := math.Asin(clampUnit(m*cosDec0 + n*sinDec0))
	ra := ra0 + math.Atan2(l, n*cosDec0-m*sinDec0)

	out[AxisLon] = normaliseDeg(ra * rad2deg)
	out[AxisLat] = dec * rad2deg
	out[AxisPol] = linearWorld(w, AxisPol, pix[AxisPol])
	out[AxisFreq] = linearWorld(w, AxisFreq, pix[AxisFreq])
	return out, nil
}

// WorldToPixel is the inverse of PixelToWorld.
func (w WCS) WorldToPixel(world [NAxis]float64) ([NAxis]float64, error) {
	var out [NAxis]float64

	ra := world[AxisLon] * deg2rad
	dec := world[AxisLat] * deg2rad
	ra0 := w.CRVal[AxisLon] * deg2rad
	dec0 := w.CRVal[AxisLat] * deg2rad

	sinDec, cosDec := math.Sincos(dec)
	sinDec0, cosDec0 := math.Sincos(dec0)
	sinDRA, cosDRA := math.Sincos(ra - ra0)

	n := sinDec*sinDec0 + cosDec*cosDec0*cosDRA
	if n < 0 {
		return out, fmt.Errorf("%w: ra=%g dec=%g is on the far hemisphere", ErrOutsideProjection, world[AxisLon], world[AxisLat])
	}
	l := cosDec * sinDRA
	m := sinDec*cosDec0 - cosDec*sinDec0*cosDRA

	out[AxisLon] = w.CRPix[AxisLon] + l*rad2deg/w.CDelt[AxisLon]
	out[AxisLat] = w.CRPix[AxisLat] + m*rad2deg/w.CDelt[AxisLat]
	out[AxisPol] = linearPixel(w, AxisPol, world[AxisPol])
	out[AxisFreq] = linearPixel(w, AxisFreq, world[AxisFreq])
	return out, nil
}

func linearWorld(w WCS, axis int, p float64) float64 {
	return w.CRVal[axis] + w.CDelt[axis]*(p-w.CRPix[axis])
}

// linearPixel returns the reference pixel when the axis has no step, since
// every pixel maps to the same world value.
func linearPixel(w WCS, axis int, v float64) float64 {
	if w.CDelt[axis] == 0 {
		return w.CRPix[axis]
	}
	return w.CRPix[axis] + (v-w.CRVal[axis])/w.CDelt[axis]
}

func clampUnit(x float64) float64 {
	if x > 1 {
		return 1
	}
	if x < -1 {
		return -1
	}
	return x
}

func normaliseDeg(d float64) float64 {
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	return d
}
