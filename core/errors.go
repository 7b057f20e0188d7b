package core

import (
	"errors"

	"github.com/signalsfoundry/skyimage/model"
)

var (
	ErrUnsupportedPolarisation = model.ErrUnsupportedPolarisation
	ErrUnsupportedSpectralMode = errors.New("unsupported spectral mode")
	ErrInvalidBandwidth        = errors.New("channel width must be non-zero for mfs/native collapse mode")
	ErrDegenerateBaseline      = errors.New("maximum spatial frequency must be positive")
	ErrInvalidCellsize         = errors.New("invalid cellsize")
	ErrEmptyVisibility         = errors.New("visibility has no spectral samples")
	ErrInvalidShape            = errors.New("invalid image shape")
	ErrShapeMismatch           = errors.New("shape mismatch")
)
