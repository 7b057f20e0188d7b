package core

import (
	"fmt"
	"math"
)

// SpectralMode describes how observed channels map onto image channels.
type SpectralMode int

const (
	SpectralModeUnknown SpectralMode = iota
	// MultiChannelNative keeps one image channel per observed channel.
	MultiChannelNative
	// SingleChannelMFS collapses all observed channels into one.
	SingleChannelMFS
	// MultiChannelMFS collapses observed channels into fewer image channels.
	MultiChannelMFS
	// SingleChannelNative images a single observed channel.
	SingleChannelNative
)

func (m SpectralMode) String() string {
	switch m {
	case MultiChannelNative:
		return "multi-channel-native"
	case SingleChannelMFS:
		return "single-channel-mfs"
	case MultiChannelMFS:
		return "multi-channel-mfs"
	case SingleChannelNative:
		return "single-channel-native"
	default:
		return "unknown"
	}
}

// RequiresBandwidth reports whether the mode needs a non-zero channel width.
func (m SpectralMode) RequiresBandwidth() bool {
	switch m {
	case SingleChannelMFS, MultiChannelMFS, SingleChannelNative:
		return true
	default:
		return false
	}
}

type spectralRule struct {
	mode  SpectralMode
	match func(requested, observed int) bool
}

// spectralRules is evaluated top to bottom; the first match wins.
var spectralRules = []spectralRule{
	{MultiChannelNative, func(req, obs int) bool { return req == obs && obs > 1 }},
	{SingleChannelMFS, func(req, obs int) bool { return req == 1 && obs > 1 }},
	{MultiChannelMFS, func(req, obs int) bool { return req > 1 && obs > 1 }},
	{SingleChannelNative, func(req, obs int) bool { return req == 1 && obs == 1 }},
}

// ResolveSpectralMode picks the spectral mode for requested image channels
// given the number of unique observed channels. Modes that collapse or image
// single channels require a non-zero bandwidth.
func ResolveSpectralMode(requested, observed int, bandwidth float64) (SpectralMode, error) {
	for _, rule := range spectralRules {
		if !rule.match(requested, observed) {
			continue
		}
		if rule.mode.RequiresBandwidth() && !(math.Abs(bandwidth) > 0) {
			return SpectralModeUnknown, fmt.Errorf("%w: mode %s, bandwidth %g Hz",
				ErrInvalidBandwidth, rule.mode, bandwidth)
		}
		return rule.mode, nil
	}
	return SpectralModeUnknown, fmt.Errorf("%w: nchan = %d, observed nchan = %d",
		ErrUnsupportedSpectralMode, requested, observed)
}
