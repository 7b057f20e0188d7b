package observability

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/expfmt"
)

// TemplateCollector bundles Prometheus metrics for image template builds. It
// satisfies core.TemplateMetrics.
type TemplateCollector struct {
	gatherer prometheus.Gatherer

	TemplatesBuilt   *prometheus.CounterVec
	TemplateFailures *prometheus.CounterVec
	BuildDuration    prometheus.Histogram
	TemplatePixels   prometheus.Histogram
	LastCellsize     prometheus.Gauge
}

// NewTemplateCollector registers template metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewTemplateCollector(reg prometheus.Registerer) (*TemplateCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	built, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "skyimage_templates_built_total",
		Help: "Total number of image templates built, labeled by spectral mode.",
	}, []string{"spectral_mode"}), "skyimage_templates_built_total")
	if err != nil {
		return nil, err
	}

	failures, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "skyimage_template_failures_total",
		Help: "Total number of rejected template builds, labeled by reason.",
	}, []string{"reason"}), "skyimage_template_failures_total")
	if err != nil {
		return nil, err
	}

	duration, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "skyimage_template_build_duration_seconds",
		Help:    "Time spent deriving and allocating an image template.",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	}), "skyimage_template_build_duration_seconds")
	if err != nil {
		return nil, err
	}

	pixels, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "skyimage_template_pixels",
		Help:    "Pixel count of each spatial plane of built templates.",
		Buckets: prometheus.ExponentialBuckets(64*64, 4, 8),
	}), "skyimage_template_pixels")
	if err != nil {
		return nil, err
	}

	cellsize, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "skyimage_template_last_cellsize_radians",
		Help: "Cellsize of the most recently built template.",
	}), "skyimage_template_last_cellsize_radians")
	if err != nil {
		return nil, err
	}

	return &TemplateCollector{
		gatherer:         gatherer,
		TemplatesBuilt:   built,
		TemplateFailures: failures,
		BuildDuration:    duration,
		TemplatePixels:   pixels,
		LastCellsize:     cellsize,
	}, nil
}

// ObserveTemplate records one successful build.
func (c *TemplateCollector) ObserveTemplate(mode string, nchan, npixel int, cellsize float64, d time.Duration) {
	if c == nil {
		return
	}
	if c.TemplatesBuilt != nil {
		c.TemplatesBuilt.WithLabelValues(mode).Inc()
	}
	if c.BuildDuration != nil {
		c.BuildDuration.Observe(d.Seconds())
	}
	if c.TemplatePixels != nil {
		c.TemplatePixels.Observe(float64(npixel * npixel))
	}
	if c.LastCellsize != nil {
		c.LastCellsize.Set(cellsize)
	}
}

// IncTemplateFailure counts one rejected build.
func (c *TemplateCollector) IncTemplateFailure(reason string) {
	if c == nil || c.TemplateFailures == nil {
		return
	}
	c.TemplateFailures.WithLabelValues(reason).Inc()
}

// Gatherer returns the Prometheus gatherer associated with the collector.
func (c *TemplateCollector) Gatherer() prometheus.Gatherer {
	if c == nil {
		return nil
	}
	return c.gatherer
}

// Handler exposes a ready-to-use /metrics handler.
func (c *TemplateCollector) Handler() http.Handler {
	gatherer := c.Gatherer()
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// WriteText writes all gathered metrics to w in the Prometheus text format.
func (c *TemplateCollector) WriteText(w io.Writer) error {
	gatherer := c.Gatherer()
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	families, err := gatherer.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("encode %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
