package core

import (
	"fmt"

	"github.com/signalsfoundry/skyimage/model"
	"github.com/signalsfoundry/skyimage/wcs"
	"gonum.org/v1/gonum/dsp/fourier"
)

// FFTGridDataToImage transforms gridded visibilities to an image plane by
// plane, applying the grid correction gcf when non-nil. The result is the
// centred inverse FFT scaled by nx*ny, so a unit delta at the grid centre
// becomes a flat image of ones.
//
// The image takes override as its WCS when non-nil, else the template's.
// gcf may have a single channel and/or polarisation, in which case it is
// applied to every plane.
func FFTGridDataToImage(grid *model.GridData, template *model.Image, gcf *model.Image, override *wcs.WCS) (*model.Image, error) {
	if grid == nil {
		return nil, fmt.Errorf("%w: nil grid", ErrShapeMismatch)
	}
	if template == nil && override == nil {
		return nil, fmt.Errorf("%w: neither template nor wcs given", ErrShapeMismatch)
	}
	nchan, npol, ny, nx := grid.Shape[0], grid.Shape[1], grid.Shape[2], grid.Shape[3]
	if len(grid.Data) != nchan*npol*ny*nx {
		return nil, fmt.Errorf("%w: grid holds %d values for shape %v", ErrShapeMismatch, len(grid.Data), grid.Shape)
	}
	if gcf != nil {
		if gcf.Shape[2] != ny || gcf.Shape[3] != nx {
			return nil, fmt.Errorf("%w: gcf plane %dx%d, grid plane %dx%d",
				ErrShapeMismatch, gcf.Shape[2], gcf.Shape[3], ny, nx)
		}
		if (gcf.Shape[0] != 1 && gcf.Shape[0] != nchan) || (gcf.Shape[1] != 1 && gcf.Shape[1] != npol) {
			return nil, fmt.Errorf("%w: gcf shape %v does not broadcast to grid shape %v",
				ErrShapeMismatch, gcf.Shape, grid.Shape)
		}
	}

	w := override
	if w == nil {
		w = &template.WCS
	}

	rowFFT := fourier.NewCmplxFFT(nx)
	colFFT := fourier.NewCmplxFFT(ny)
	plane := make([]complex128, ny*nx)
	shifted := make([]complex128, ny*nx)
	row := make([]complex128, nx)
	col := make([]complex128, 2*ny)

	out := make([]float64, len(grid.Data))
	for c := 0; c < nchan; c++ {
		for p := 0; p < npol; p++ {
			shift2D(plane, grid.Plane(c, p), ny, nx, ny/2, nx/2)
			inverse2D(plane, ny, nx, rowFFT, colFFT, row, col)

			dst := out[((c*npol)+p)*ny*nx : ((c*npol)+p+1)*ny*nx]
			shift2D(shifted, plane, ny, nx, ny-ny/2, nx-nx/2)
			for i, v := range shifted {
				dst[i] = real(v)
			}
			if gcf != nil {
				gc, gp := c, p
				if gcf.Shape[0] == 1 {
					gc = 0
				}
				if gcf.Shape[1] == 1 {
					gp = 0
				}
				corr := gcf.Plane(gc, gp)
				for i := range dst {
					dst[i] *= corr[i]
				}
			}
		}
	}

	im, err := model.NewImageFromArray(out, grid.Shape, w.Clone(), grid.PolarisationFrame, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrShapeMismatch, err)
	}
	return im, nil
}

// inverse2D applies an unnormalised inverse FFT along rows then columns. col
// must hold 2*ny values: the column and its transform.
func inverse2D(plane []complex128, ny, nx int, rowFFT, colFFT *fourier.CmplxFFT, row, col []complex128) {
	for y := 0; y < ny; y++ {
		copy(row, plane[y*nx:(y+1)*nx])
		rowFFT.Sequence(plane[y*nx:(y+1)*nx], row)
	}
	in, res := col[:ny], col[ny:]
	for x := 0; x < nx; x++ {
		for y := 0; y < ny; y++ {
			in[y] = plane[y*nx+x]
		}
		colFFT.Sequence(res, in)
		for y := 0; y < ny; y++ {
			plane[y*nx+x] = res[y]
		}
	}
}

// shift2D writes src rolled by (sy, sx) into dst: dst[y][x] = src[y+sy][x+sx]
// with wraparound.
func shift2D(dst, src []complex128, ny, nx, sy, sx int) {
	for y := 0; y < ny; y++ {
		srcY := (y + sy) % ny
		for x := 0; x < nx; x++ {
			dst[y*nx+x] = src[srcY*nx+(x+sx)%nx]
		}
	}
}
