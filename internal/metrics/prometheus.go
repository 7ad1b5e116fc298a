// Package metrics exposes the service's Prometheus surface.
package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/phantoooomCam/sabanas-server/pkg/logger"
)

// PrometheusMetrics holds the named counter/histogram/gauge vectors this
// service exports, keyed by a short name so callers don't need direct
// references to the underlying prometheus types.
type PrometheusMetrics struct {
	counters   map[string]*prometheus.CounterVec
	histograms map[string]*prometheus.HistogramVec
	gauges     map[string]*prometheus.GaugeVec
}

func NewPrometheusMetrics() *PrometheusMetrics {
	pm := &PrometheusMetrics{
		counters:   make(map[string]*prometheus.CounterVec),
		histograms: make(map[string]*prometheus.HistogramVec),
		gauges:     make(map[string]*prometheus.GaugeVec),
	}
	pm.registerMetrics()
	return pm
}

func (pm *PrometheusMetrics) registerMetrics() {
	pm.counters["etl_rows"] = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "etl_rows_total",
			Help: "CDR rows observed per carrier and pipeline stage",
		},
		[]string{"carrier", "stage"},
	)

	pm.counters["etl_files_processed"] = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "etl_files_processed_total",
			Help: "Files reaching a terminal state",
		},
		[]string{"carrier", "state"},
	)

	pm.counters["ftp_downloads"] = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ftp_downloads_total",
			Help: "FTP download attempts by outcome",
		},
		[]string{"outcome"},
	)

	pm.histograms["etl_job_duration"] = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "etl_job_duration_seconds",
			Help:    "Wall-clock time of one job run, from worker pickup to return",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		},
		[]string{"carrier"},
	)

	pm.histograms["ftp_download_duration"] = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ftp_download_duration_seconds",
			Help:    "Time spent downloading a file from FTP",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60},
		},
		[]string{},
	)

	pm.gauges["jobs_active"] = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "jobs_active",
			Help: "Jobs currently being processed by the worker pool",
		},
		[]string{},
	)

	pm.gauges["jobs_queued"] = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "jobs_queued",
			Help: "Jobs buffered in the worker pool's job channel",
		},
		[]string{},
	)

	for _, c := range pm.counters {
		prometheus.MustRegister(c)
	}
	for _, h := range pm.histograms {
		prometheus.MustRegister(h)
	}
	for _, g := range pm.gauges {
		prometheus.MustRegister(g)
	}
}

func (pm *PrometheusMetrics) IncrementCounter(name string, labels map[string]string) {
	if counter, ok := pm.counters[name]; ok {
		counter.With(prometheus.Labels(labels)).Inc()
	}
}

func (pm *PrometheusMetrics) AddCounter(name string, value float64, labels map[string]string) {
	if counter, ok := pm.counters[name]; ok {
		counter.With(prometheus.Labels(labels)).Add(value)
	}
}

func (pm *PrometheusMetrics) ObserveHistogram(name string, value float64, labels map[string]string) {
	if histogram, ok := pm.histograms[name]; ok {
		histogram.With(prometheus.Labels(labels)).Observe(value)
	}
}

func (pm *PrometheusMetrics) SetGauge(name string, value float64, labels map[string]string) {
	if gauge, ok := pm.gauges[name]; ok {
		if labels == nil {
			labels = make(map[string]string)
		}
		gauge.With(prometheus.Labels(labels)).Set(value)
	}
}

// Handler returns the promhttp handler for mounting under a caller-owned
// mux (the HTTP API mounts this at GET /metrics).
func (pm *PrometheusMetrics) Handler() http.Handler {
	return promhttp.Handler()
}

// ServeHTTP runs a dedicated metrics listener, used only when the service
// is not already exposing /metrics through the main HTTP API.
func (pm *PrometheusMetrics) ServeHTTP(port int) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	addr := fmt.Sprintf(":%d", port)
	logger.WithField("addr", addr).Info("metrics server started")
	return http.ListenAndServe(addr, mux)
}
