// Package rpcerr maps template-derivation errors onto gRPC status codes for
// pipeline services that expose the builder over RPC.
package rpcerr

import (
	"errors"

	"github.com/signalsfoundry/skyimage/core"
	"github.com/signalsfoundry/skyimage/model"
	"github.com/signalsfoundry/skyimage/wcs"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Code returns the gRPC code for err; nil maps to codes.OK.
func Code(err error) codes.Code {
	if err == nil {
		return codes.OK
	}
	if s, ok := status.FromError(err); ok {
		return s.Code()
	}

	switch {
	case errors.Is(err, core.ErrUnsupportedPolarisation),
		errors.Is(err, core.ErrUnsupportedSpectralMode),
		errors.Is(err, core.ErrInvalidBandwidth),
		errors.Is(err, core.ErrDegenerateBaseline),
		errors.Is(err, core.ErrInvalidCellsize),
		errors.Is(err, core.ErrEmptyVisibility),
		errors.Is(err, core.ErrInvalidShape),
		errors.Is(err, wcs.ErrOutsideProjection):
		return codes.InvalidArgument

	case errors.Is(err, core.ErrShapeMismatch),
		errors.Is(err, model.ErrImageShape),
		errors.Is(err, wcs.ErrInvalidWCS):
		return codes.FailedPrecondition

	default:
		return codes.Internal
	}
}

// ToStatusError wraps err in a gRPC status error. Errors that already carry a
// status are returned unchanged.
func ToStatusError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	return status.Error(Code(err), err.Error())
}
