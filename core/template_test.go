package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/signalsfoundry/skyimage/model"
	"github.com/signalsfoundry/skyimage/wcs"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func threeChannelVis() *model.BlockVisibility {
	return &model.BlockVisibility{
		Centre: model.SkyCoord{RADeg: 15, DecDeg: -45},
		// Repeated per-sample values collapse to three unique channels.
		Frequencies: []float64{100, 101, 102, 100, 101, 102},
		Bandwidths:  []float64{1, 1, 1, 1, 1, 1},
		UVWLambda: [][3]float64{
			{120, -300, 50},
			{-1000, 20, 7000},
			{640, 999.5, -12},
		},
		Polarisation: "linear",
	}
}

type fakeMetrics struct {
	mu       sync.Mutex
	modes    []string
	failures []string
	cellsize float64
}

func (f *fakeMetrics) ObserveTemplate(mode string, nchan, npixel int, cellsize float64, d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.modes = append(f.modes, mode)
	f.cellsize = cellsize
}

func (f *fakeMetrics) IncTemplateFailure(reason string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures = append(f.failures, reason)
}

func TestCreateImageFromVisibilityMultiChannelNative(t *testing.T) {
	im, err := CreateImageFromVisibility(context.Background(), threeChannelVis(), TemplateOptions{NPixel: 256})
	if err != nil {
		t.Fatalf("CreateImageFromVisibility error: %v", err)
	}

	wantShape := [4]int{3, 4, 256, 256}
	if im.Shape != wantShape {
		t.Fatalf("shape = %v, want %v", im.Shape, wantShape)
	}
	if im.PolarisationFrame != model.Linear {
		t.Fatalf("polarisation frame = %s, want linear", im.PolarisationFrame)
	}
	if len(im.Data) != 3*4*256*256 {
		t.Fatalf("len(Data) = %d", len(im.Data))
	}
	for i, v := range im.Data {
		if v != 0 {
			t.Fatalf("Data[%d] = %g, want zero-filled template", i, v)
		}
	}

	want := BuildImageWCS(WCSParams{
		NPixel:             256,
		PhaseCentre:        model.SkyCoord{RADeg: 15, DecDeg: -45},
		Cellsize:           0.00025,
		ReferenceFrequency: 100,
		ChannelBandwidth:   1,
	})
	if im.WCS != want {
		t.Fatalf("WCS = %+v, want %+v", im.WCS, want)
	}
	if im.WCS.CRVal[wcs.AxisFreq] != 100 {
		t.Fatalf("reference frequency = %g, want 100", im.WCS.CRVal[wcs.AxisFreq])
	}
}

func TestCreateImageFromVisibilitySingleChannelMFS(t *testing.T) {
	metrics := &fakeMetrics{}
	b := NewTemplateBuilder(WithMetrics(metrics))

	im, err := b.Build(context.Background(), threeChannelVis(), TemplateOptions{NPixel: 256, NChan: Int(1)})
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if im.NChan() != 1 {
		t.Fatalf("nchan = %d, want 1", im.NChan())
	}
	if len(metrics.modes) != 1 || metrics.modes[0] != SingleChannelMFS.String() {
		t.Fatalf("observed modes = %v, want [%s]", metrics.modes, SingleChannelMFS)
	}
	if metrics.cellsize != 0.00025 {
		t.Fatalf("observed cellsize = %g, want 0.00025", metrics.cellsize)
	}
}

func TestCreateImageFromVisibilityNativeChannelsIgnoreBandwidth(t *testing.T) {
	for _, bw := range []float64{0, 1, -5, 1e9} {
		im, err := CreateImageFromVisibility(context.Background(), threeChannelVis(), TemplateOptions{
			NPixel:           32,
			NChan:            Int(3),
			ChannelBandwidth: Float64(bw),
		})
		if err != nil {
			t.Fatalf("bandwidth %g: unexpected error: %v", bw, err)
		}
		if im.NChan() != 3 {
			t.Fatalf("bandwidth %g: nchan = %d, want 3", bw, im.NChan())
		}
		if im.WCS.CDelt[wcs.AxisFreq] != bw {
			t.Fatalf("bandwidth %g: CDELT4 = %g", bw, im.WCS.CDelt[wcs.AxisFreq])
		}
	}
}

func TestCreateImageFromVisibilitySingleChannelZeroBandwidth(t *testing.T) {
	vis := &model.BlockVisibility{
		Frequencies:  []float64{1.4e9},
		Bandwidths:   []float64{0},
		UVWLambda:    [][3]float64{{100, 100, 0}},
		Polarisation: "stokesI",
	}
	metrics := &fakeMetrics{}
	b := NewTemplateBuilder(WithMetrics(metrics))

	_, err := b.Build(context.Background(), vis, TemplateOptions{NChan: Int(1)})
	if !errors.Is(err, ErrInvalidBandwidth) {
		t.Fatalf("error = %v, want ErrInvalidBandwidth", err)
	}
	if len(metrics.failures) != 1 || metrics.failures[0] != "invalid_bandwidth" {
		t.Fatalf("failures = %v, want [invalid_bandwidth]", metrics.failures)
	}
}

func TestCreateImageFromVisibilityDefaults(t *testing.T) {
	vis := &model.BlockVisibility{
		Centre:       model.SkyCoord{RADeg: 0, DecDeg: 90},
		Frequencies:  []float64{1e8},
		Bandwidths:   []float64{1e6},
		UVWLambda:    [][3]float64{{0, 250, 1}},
		Polarisation: "stokesIQUV",
	}
	im, err := CreateImageFromVisibility(context.Background(), vis, TemplateOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if im.Shape != [4]int{1, 4, DefaultNPixel, DefaultNPixel} {
		t.Fatalf("shape = %v", im.Shape)
	}
	if im.WCS.CRPix[wcs.AxisLon] != 257 {
		t.Fatalf("CRPIX1 = %g, want 257", im.WCS.CRPix[wcs.AxisLon])
	}
	if im.Chunks != nil {
		t.Fatalf("chunks = %v, want nil", im.Chunks)
	}
}

func TestCreateImageFromVisibilityOverrides(t *testing.T) {
	centre := model.SkyCoord{RADeg: 200, DecDeg: 10}
	pol := model.StokesI
	chunks := map[string]int{"frequency": 1, "polarisation": 1}

	im, err := CreateImageFromVisibility(context.Background(), threeChannelVis(), TemplateOptions{
		PhaseCentre:       &centre,
		Frequency:         []float64{150, 151, 152},
		NChan:             Int(2),
		ChannelBandwidth:  Float64(3),
		NPixel:            128,
		Cellsize:          Float64(0.01),
		ClampCellsize:     Bool(false),
		PolarisationFrame: &pol,
		Frame:             "FK5",
		Equinox:           1950,
		Chunks:            chunks,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if im.Shape != [4]int{2, 1, 128, 128} {
		t.Fatalf("shape = %v", im.Shape)
	}
	want := BuildImageWCS(WCSParams{
		NPixel:             128,
		PhaseCentre:        centre,
		Cellsize:           0.01,
		ReferenceFrequency: 150,
		ChannelBandwidth:   3,
		Frame:              "FK5",
		Equinox:            1950,
	})
	if im.WCS != want {
		t.Fatalf("WCS = %+v, want %+v", im.WCS, want)
	}
	if im.Chunks["polarisation"] != 1 {
		t.Fatalf("chunk hint not passed through: %v", im.Chunks)
	}
}

func TestCreateImageFromVisibilityClampsLargeCellsize(t *testing.T) {
	im, err := CreateImageFromVisibility(context.Background(), threeChannelVis(), TemplateOptions{
		NPixel:   64,
		Cellsize: Float64(0.01),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := BuildImageWCS(WCSParams{NPixel: 64, Cellsize: 0.0005})
	if im.WCS.CDelt[wcs.AxisLat] != want.CDelt[wcs.AxisLat] {
		t.Fatalf("CDELT2 = %g, want critical %g", im.WCS.CDelt[wcs.AxisLat], want.CDelt[wcs.AxisLat])
	}
}

func TestCreateImageFromVisibilityErrors(t *testing.T) {
	good := threeChannelVis()
	bogus := model.PolarisationFrame{}

	cases := []struct {
		name string
		vis  model.Visibility
		opts TemplateOptions
		want error
	}{
		{"nil dataset", nil, TemplateOptions{}, ErrEmptyVisibility},
		{"no frequencies", &model.BlockVisibility{Bandwidths: []float64{1}, Polarisation: "linear"}, TemplateOptions{}, ErrEmptyVisibility},
		{"no bandwidths", &model.BlockVisibility{Frequencies: []float64{1, 2}, UVWLambda: [][3]float64{{1, 1, 1}}, Polarisation: "linear"}, TemplateOptions{NChan: Int(1)}, ErrEmptyVisibility},
		{"unsupported mode", &model.BlockVisibility{Frequencies: []float64{1}, Bandwidths: []float64{1}, UVWLambda: [][3]float64{{1, 1, 1}}, Polarisation: "linear"}, TemplateOptions{NChan: Int(4)}, ErrUnsupportedSpectralMode},
		{"zero uv", &model.BlockVisibility{Frequencies: []float64{1}, Bandwidths: []float64{1}, UVWLambda: [][3]float64{{0, 0, 100}}, Polarisation: "linear"}, TemplateOptions{}, ErrDegenerateBaseline},
		{"unknown tag", &model.BlockVisibility{Frequencies: []float64{1}, Bandwidths: []float64{1}, UVWLambda: [][3]float64{{1, 1, 1}}, Polarisation: "elliptical"}, TemplateOptions{}, ErrUnsupportedPolarisation},
		{"invalid override frame", good, TemplateOptions{PolarisationFrame: &bogus}, ErrUnsupportedPolarisation},
		{"negative npixel", good, TemplateOptions{NPixel: -4}, ErrInvalidShape},
		{"negative cellsize", good, TemplateOptions{Cellsize: Float64(-1)}, ErrInvalidCellsize},
	}
	for _, tc := range cases {
		if _, err := CreateImageFromVisibility(context.Background(), tc.vis, tc.opts); !errors.Is(err, tc.want) {
			t.Fatalf("%s: error = %v, want %v", tc.name, err, tc.want)
		}
	}
}

func TestBuildDoesNotMutateDataset(t *testing.T) {
	vis := threeChannelVis()
	before := append([]float64(nil), vis.Frequencies...)
	if _, err := CreateImageFromVisibility(context.Background(), vis, TemplateOptions{NPixel: 16}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range before {
		if vis.Frequencies[i] != before[i] {
			t.Fatalf("frequency %d changed from %g to %g", i, before[i], vis.Frequencies[i])
		}
	}
}

func TestBuildRecordsSpan(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	b := NewTemplateBuilder(WithTracer(tp.Tracer("test")))

	if _, err := b.Build(context.Background(), threeChannelVis(), TemplateOptions{NPixel: 16}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	spans := sr.Ended()
	if len(spans) != 1 {
		t.Fatalf("ended spans = %d, want 1", len(spans))
	}
	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range spans[0].Attributes() {
		attrs[kv.Key] = kv.Value
	}
	if got := attrs["spectral_mode"].AsString(); got != MultiChannelNative.String() {
		t.Fatalf("spectral_mode attribute = %q", got)
	}
	if got := attrs["npixel"].AsInt64(); got != 16 {
		t.Fatalf("npixel attribute = %d, want 16", got)
	}
}

func TestFailureReason(t *testing.T) {
	if got := FailureReason(errors.New("boom")); got != "other" {
		t.Fatalf("FailureReason(other) = %q", got)
	}
	_, err := ResolveSpectralMode(2, 1, 1)
	if got := FailureReason(err); got != "unsupported_spectral_mode" {
		t.Fatalf("FailureReason = %q", got)
	}
}
