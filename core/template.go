package core

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/signalsfoundry/skyimage/internal/logging"
	"github.com/signalsfoundry/skyimage/model"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/signalsfoundry/skyimage/core"

// TemplateMetrics receives one observation per template build. It is
// satisfied by observability.TemplateCollector.
type TemplateMetrics interface {
	ObserveTemplate(mode string, nchan, npixel int, cellsize float64, d time.Duration)
	IncTemplateFailure(reason string)
}

// TemplateBuilder derives empty image templates from visibility datasets. The
// zero value is usable and logs nothing.
type TemplateBuilder struct {
	Log     logging.Logger
	Metrics TemplateMetrics
	Tracer  trace.Tracer
}

// TemplateBuilderOption configures a TemplateBuilder.
type TemplateBuilderOption func(*TemplateBuilder)

// WithLogger sets the builder logger.
func WithLogger(l logging.Logger) TemplateBuilderOption {
	return func(b *TemplateBuilder) { b.Log = l }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m TemplateMetrics) TemplateBuilderOption {
	return func(b *TemplateBuilder) { b.Metrics = m }
}

// WithTracer overrides the global OpenTelemetry tracer.
func WithTracer(t trace.Tracer) TemplateBuilderOption {
	return func(b *TemplateBuilder) { b.Tracer = t }
}

// NewTemplateBuilder returns a builder with the given options applied.
func NewTemplateBuilder(opts ...TemplateBuilderOption) *TemplateBuilder {
	b := &TemplateBuilder{}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// CreateImageFromVisibility builds a template with a default builder.
func CreateImageFromVisibility(ctx context.Context, vis model.Visibility, opts TemplateOptions) (*model.Image, error) {
	return (&TemplateBuilder{}).Build(ctx, vis, opts)
}

// Build makes an empty image consistent with vis, overriding the derived
// parameters with any set in opts. Visibility samples are not transformed or
// copied into the image.
func (b *TemplateBuilder) Build(ctx context.Context, vis model.Visibility, opts TemplateOptions) (*model.Image, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, log := logging.WithBuildLogger(ctx, b.Log)

	tracer := b.Tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}
	ctx, span := tracer.Start(ctx, "CreateImageFromVisibility")
	defer span.End()

	start := time.Now()
	im, mode, cellsize, err := b.build(ctx, log, vis, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		if b.Metrics != nil {
			b.Metrics.IncTemplateFailure(FailureReason(err))
		}
		return nil, err
	}

	nchan := im.NChan()
	npixel := im.Shape[3]
	span.SetAttributes(
		attribute.String("spectral_mode", mode.String()),
		attribute.Int("nchan", nchan),
		attribute.Int("npol", im.NPol()),
		attribute.Int("npixel", npixel),
		attribute.Float64("cellsize_rad", cellsize),
	)
	if b.Metrics != nil {
		b.Metrics.ObserveTemplate(mode.String(), nchan, npixel, cellsize, time.Since(start))
	}
	return im, nil
}

func (b *TemplateBuilder) build(ctx context.Context, log logging.Logger, vis model.Visibility, opts TemplateOptions) (*model.Image, SpectralMode, float64, error) {
	if vis == nil {
		return nil, SpectralModeUnknown, 0, fmt.Errorf("%w: nil dataset", ErrEmptyVisibility)
	}
	opts = opts.withDefaults()
	log.Debug(ctx, "create_image_from_visibility: parsing parameters to get definition of WCS")

	if opts.NPixel < 1 {
		return nil, SpectralModeUnknown, 0, fmt.Errorf("%w: npixel = %d", ErrInvalidShape, opts.NPixel)
	}

	phaseCentre := vis.PhaseCentre()
	if opts.PhaseCentre != nil {
		phaseCentre = *opts.PhaseCentre
	}
	imageCentre := phaseCentre
	if opts.ImageCentre != nil {
		imageCentre = *opts.ImageCentre
	}

	// Spectral processing options.
	observed := uniqueFrequencies(vis.Frequency())
	if len(observed) == 0 {
		return nil, SpectralModeUnknown, 0, fmt.Errorf("%w: no frequencies", ErrEmptyVisibility)
	}
	frequency := vis.Frequency()
	if len(opts.Frequency) > 0 {
		frequency = opts.Frequency
	}
	refFrequency := frequency[0]

	nchan := len(observed)
	if opts.NChan != nil {
		nchan = *opts.NChan
	}

	var bandwidth float64
	if opts.ChannelBandwidth != nil {
		bandwidth = *opts.ChannelBandwidth
	} else {
		bw := vis.ChannelBandwidth()
		if len(bw) == 0 {
			return nil, SpectralModeUnknown, 0, fmt.Errorf("%w: no channel bandwidths", ErrEmptyVisibility)
		}
		bandwidth = bw[0]
	}

	mode, err := ResolveSpectralMode(nchan, len(observed), bandwidth)
	if err != nil {
		return nil, mode, 0, err
	}
	log.Debug(ctx, "create_image_from_visibility: defining image",
		logging.String("spectral_mode", mode.String()),
		logging.Int("nchan", nchan),
		logging.Any("image_centre", imageCentre),
		logging.Float("reference_frequency_hz", refFrequency),
		logging.Float("channel_bandwidth_hz", bandwidth),
	)

	// Image sampling options.
	uvmax, err := MaxUVLambda(vis.UVW())
	if err != nil {
		return nil, mode, 0, err
	}
	log.Debug(ctx, "create_image_from_visibility: uv extent", logging.Float("uvmax_wavelengths", uvmax))

	cellsize, err := ResolveCellsize(uvmax, opts.Cellsize, *opts.ClampCellsize)
	if err != nil {
		return nil, mode, 0, err
	}
	critical, _ := CriticalCellsize(uvmax)
	log.Debug(ctx, "create_image_from_visibility: cellsize",
		logging.Float("critical_cellsize_rad", critical),
		logging.Float("cellsize_rad", cellsize),
		logging.Float("cellsize_deg", cellsize*180.0/math.Pi),
	)

	var pol model.PolarisationFrame
	if opts.PolarisationFrame != nil {
		pol = *opts.PolarisationFrame
		if !pol.Valid() {
			return nil, mode, 0, fmt.Errorf("%w: override %q", ErrUnsupportedPolarisation, pol.String())
		}
	} else {
		pol, err = model.PolarisationFrameFromNames(vis.PolarisationTag())
		if err != nil {
			return nil, mode, 0, err
		}
	}

	// Array order is the reverse of WCS axis order.
	shape := [4]int{nchan, pol.NPol(), opts.NPixel, opts.NPixel}
	log.Debug(ctx, "create_image_from_visibility: image shape", logging.Any("shape", shape))

	w := BuildImageWCS(WCSParams{
		NPixel:             opts.NPixel,
		PhaseCentre:        phaseCentre,
		Cellsize:           cellsize,
		ReferenceFrequency: refFrequency,
		ChannelBandwidth:   bandwidth,
		Frame:              opts.Frame,
		Equinox:            opts.Equinox,
	})

	data := make([]float64, shape[0]*shape[1]*shape[2]*shape[3])
	im, err := model.NewImageFromArray(data, shape, w, pol, opts.Chunks)
	if err != nil {
		return nil, mode, 0, fmt.Errorf("%w: %v", ErrInvalidShape, err)
	}
	return im, mode, cellsize, nil
}

// FailureReason classifies err into a short metric/log label.
func FailureReason(err error) string {
	switch {
	case errors.Is(err, ErrUnsupportedPolarisation):
		return "unsupported_polarisation"
	case errors.Is(err, ErrUnsupportedSpectralMode):
		return "unsupported_spectral_mode"
	case errors.Is(err, ErrInvalidBandwidth):
		return "invalid_bandwidth"
	case errors.Is(err, ErrDegenerateBaseline):
		return "degenerate_baseline"
	case errors.Is(err, ErrInvalidCellsize):
		return "invalid_cellsize"
	case errors.Is(err, ErrEmptyVisibility):
		return "empty_visibility"
	case errors.Is(err, ErrInvalidShape):
		return "invalid_shape"
	case errors.Is(err, ErrShapeMismatch):
		return "shape_mismatch"
	default:
		return "other"
	}
}

func uniqueFrequencies(freq []float64) []float64 {
	u := slices.Clone(freq)
	slices.Sort(u)
	return slices.Compact(u)
}
