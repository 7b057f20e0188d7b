package core

import (
	"math"

	"github.com/signalsfoundry/skyimage/model"
	"github.com/signalsfoundry/skyimage/wcs"
)

// WCSParams are the resolved inputs to BuildImageWCS.
type WCSParams struct {
	NPixel             int
	PhaseCentre        model.SkyCoord
	Cellsize           float64 // radians
	ReferenceFrequency float64 // Hz
	ChannelBandwidth   float64 // Hz
	Frame              string  // defaults to ICRS
	Equinox            float64 // defaults to 2000.0
}

// BuildImageWCS returns the (RA, Dec, Stokes, Frequency) coordinate system for
// a square image centred on the phase centre.
func BuildImageWCS(p WCSParams) wcs.WCS {
	cellDeg := p.Cellsize * 180.0 / math.Pi
	// Centre pixel of a centred FFT is n//2 (0-rel), hence n//2+1 in FITS.
	crpix := float64(p.NPixel/2 + 1)

	frame := p.Frame
	if frame == "" {
		frame = wcs.DefaultFrame
	}
	equinox := p.Equinox
	if equinox == 0 {
		equinox = wcs.DefaultEquinox
	}

	// CDELT1 is negative: RA increases to the east, against the pixel index.
	return wcs.WCS{
		CType:   [wcs.NAxis]string{wcs.CTypeRA, wcs.CTypeDec, wcs.CTypeStokes, wcs.CTypeFreq},
		CUnit:   [wcs.NAxis]string{"deg", "deg", "", "Hz"},
		CDelt:   [wcs.NAxis]float64{-cellDeg, cellDeg, 1.0, p.ChannelBandwidth},
		CRPix:   [wcs.NAxis]float64{crpix, crpix, 1.0, 1.0},
		CRVal:   [wcs.NAxis]float64{p.PhaseCentre.RADeg, p.PhaseCentre.DecDeg, 1.0, p.ReferenceFrequency},
		RADeSys: frame,
		Equinox: equinox,
	}
}
