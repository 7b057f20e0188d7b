package core

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
)

// CriticalCellsize is the Nyquist-limited pixel size in radians for the given
// maximum |u|,|v| extent in wavelengths.
func CriticalCellsize(maxUVLambda float64) (float64, error) {
	if !(maxUVLambda > 0) || math.IsInf(maxUVLambda, 1) {
		return 0, fmt.Errorf("%w: max |uv| = %g wavelengths", ErrDegenerateBaseline, maxUVLambda)
	}
	return 1.0 / (2.0 * maxUVLambda), nil
}

// ResolveCellsize reconciles a requested cellsize with the critical size.
//
// A nil request defaults to half the critical size. A zero request always
// resets to the critical size; a request above it does so only when clamp is
// set.
func ResolveCellsize(maxUVLambda float64, requested *float64, clamp bool) (float64, error) {
	critical, err := CriticalCellsize(maxUVLambda)
	if err != nil {
		return 0, err
	}
	if requested == nil {
		return 0.5 * critical, nil
	}

	cellsize := *requested
	switch {
	case math.IsNaN(cellsize) || cellsize < 0:
		return 0, fmt.Errorf("%w: %g radians", ErrInvalidCellsize, cellsize)
	case cellsize == 0:
		return critical, nil
	case clamp && cellsize > critical:
		return critical, nil
	}
	return cellsize, nil
}

// MaxUVLambda returns the largest |u| or |v| over all samples; w is ignored.
func MaxUVLambda(uvw [][3]float64) (float64, error) {
	if len(uvw) == 0 {
		return 0, fmt.Errorf("%w: no uvw samples", ErrDegenerateBaseline)
	}
	extent := make([]float64, 0, 2*len(uvw))
	for _, s := range uvw {
		extent = append(extent, math.Abs(s[0]), math.Abs(s[1]))
	}
	uvmax, err := stats.Max(extent)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDegenerateBaseline, err)
	}
	return uvmax, nil
}
