package core

import (
	"fmt"

	"github.com/signalsfoundry/skyimage/model"
	"github.com/signalsfoundry/skyimage/wcs"
)

// Extract returns seq[index], failing instead of panicking when out of range.
func Extract[T any](seq []T, index int) (T, error) {
	var zero T
	if index < 0 || index >= len(seq) {
		return zero, fmt.Errorf("index %d out of range for sequence of length %d", index, len(seq))
	}
	return seq[index], nil
}

// PhaseCentreOf returns the phase centre of vis.
func PhaseCentreOf(vis model.Visibility) model.SkyCoord { return vis.PhaseCentre() }

// PolarisationTagOf returns the native polarisation tag of vis.
func PolarisationTagOf(vis model.Visibility) string { return vis.PolarisationTag() }

// WCSOf returns the coordinate system of im.
func WCSOf(im *model.Image) wcs.WCS { return im.WCS }
