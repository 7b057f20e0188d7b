package core

import (
	"github.com/signalsfoundry/skyimage/model"
	"github.com/signalsfoundry/skyimage/wcs"
)

// DefaultNPixel is the image width and height used when none is requested.
const DefaultNPixel = 512

// TemplateOptions override parameters derived from the visibility dataset.
// Pointer fields distinguish "unset" from an explicit zero; nil means derive
// from the dataset.
type TemplateOptions struct {
	// ImageCentre is reported in logs only; the WCS is referenced to
	// PhaseCentre.
	ImageCentre *model.SkyCoord
	// PhaseCentre defaults to the dataset phase centre.
	PhaseCentre *model.SkyCoord

	// Frequency replaces the dataset frequencies when choosing the reference
	// frequency. The unique-channel count is always taken from the dataset.
	Frequency []float64
	// NChan defaults to the number of unique observed frequencies.
	NChan *int
	// ChannelBandwidth defaults to the first dataset channel width (Hz).
	ChannelBandwidth *float64

	// NPixel is the number of pixels on each spatial axis; 0 means 512.
	NPixel int
	// Cellsize in radians; nil means half the critical cellsize.
	Cellsize *float64
	// ClampCellsize resets cellsizes above critical; nil means true.
	ClampCellsize *bool

	// PolarisationFrame defaults to the dataset's native frame.
	PolarisationFrame *model.PolarisationFrame

	// Frame and Equinox of the celestial axes; "" and 0 mean ICRS and 2000.0.
	Frame   string
	Equinox float64

	// Chunks is passed through to the image unchanged.
	Chunks map[string]int
}

// DefaultTemplateOptions returns options with every default spelled out.
func DefaultTemplateOptions() TemplateOptions {
	return TemplateOptions{}.withDefaults()
}

func (o TemplateOptions) withDefaults() TemplateOptions {
	if o.NPixel == 0 {
		o.NPixel = DefaultNPixel
	}
	if o.ClampCellsize == nil {
		clamp := true
		o.ClampCellsize = &clamp
	}
	if o.Frame == "" {
		o.Frame = wcs.DefaultFrame
	}
	if o.Equinox == 0 {
		o.Equinox = wcs.DefaultEquinox
	}
	return o
}

// Float64 returns a pointer to v, for optional option fields.
func Float64(v float64) *float64 { return &v }

// Int returns a pointer to v, for optional option fields.
func Int(v int) *int { return &v }

// Bool returns a pointer to v, for optional option fields.
func Bool(v bool) *bool { return &v }
