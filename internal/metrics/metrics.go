// Package metrics records render outcomes as Prometheus metrics.
//
// The CLI is short-lived, so metrics are not served over HTTP. Instead a
// Recorder is written once per run in the text exposition format, suitable
// for the node exporter textfile collector:
//
//	rec := metrics.New()
//	rec.ObserveRender("osr", err, time.Since(start))
//	rec.WriteTextfile("/var/lib/node_exporter/sitesettings.prom")
package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	serrors "github.com/ksyq12/sitesettings/internal/errors"
)

const namespace = "sitesettings"

// ResultOK is the result label of a successful render.
const ResultOK = "ok"

// Recorder holds the collectors of one CLI run in a private registry.
type Recorder struct {
	registry *prometheus.Registry

	renders   *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	published prometheus.Counter
	lastRun   prometheus.Gauge
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		renders: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "renders_total",
			Help:      "Site renders by template generation and result",
		}, []string{"generation", "result"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Time to render and publish the settings files of one site",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"generation"}),
		published: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_published_total",
			Help:      "Settings files moved into place",
		}),
		lastRun: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished",
		}),
	}
}

// Result maps a render error to its result label.
func Result(err error) string {
	if err == nil {
		return ResultOK
	}
	return strings.ToLower(string(serrors.CodeOf(err)))
}

// ObserveRender records one site render.
func (r *Recorder) ObserveRender(generation string, err error, d time.Duration) {
	r.renders.WithLabelValues(generation, Result(err)).Inc()
	r.duration.WithLabelValues(generation).Observe(d.Seconds())
}

// AddPublished counts files moved into place.
func (r *Recorder) AddPublished(n int) {
	r.published.Add(float64(n))
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile stamps the run time and writes every metric to path.
// The file is replaced atomically.
func (r *Recorder) WriteTextfile(path string) error {
	r.lastRun.SetToCurrentTime()
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return serrors.WriteFailure(path, err)
	}
	return nil
}
