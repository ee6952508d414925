package metrics

import (
	"net/http"
	"time"

	"s3batch/internal/progress"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector collects and exposes metrics
type Collector struct {
	registry        *prometheus.Registry
	objectsTotal    *prometheus.CounterVec
	bytesTotal      prometheus.Counter
	inflightWorkers prometheus.Gauge
	duration        prometheus.Histogram
	progressTracker *progress.Tracker
}

// New creates a new metrics collector
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		objectsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "s3batch_objects_total",
				Help: "Total number of objects processed",
			},
			[]string{"operation", "status"},
		),
		bytesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "s3batch_bytes_total",
				Help: "Total bytes transferred",
			},
		),
		inflightWorkers: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "s3batch_inflight_workers",
				Help: "Number of workers currently processing",
			},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "s3batch_object_duration_seconds",
				Help:    "Time taken to transfer an object",
				Buckets: prometheus.DefBuckets,
			},
		),
		progressTracker: progress.NewTracker(),
	}

	c.registry.MustRegister(c.objectsTotal)
	c.registry.MustRegister(c.bytesTotal)
	c.registry.MustRegister(c.inflightWorkers)
	c.registry.MustRegister(c.duration)

	return c
}

// IncSuccess increments the successful object counter for an operation
func (c *Collector) IncSuccess(operation string) {
	c.objectsTotal.WithLabelValues(operation, "success").Inc()
	c.progressTracker.AddSuccess()
}

// IncFailed increments the failed object counter for an operation
func (c *Collector) IncFailed(operation string) {
	c.objectsTotal.WithLabelValues(operation, "failed").Inc()
	c.progressTracker.AddFailed()
}

// AddBytes adds to total bytes transferred
func (c *Collector) AddBytes(bytes int64) {
	c.bytesTotal.Add(float64(bytes))
}

// SetInflightWorkers sets the number of inflight workers
func (c *Collector) SetInflightWorkers(count int) {
	c.inflightWorkers.Set(float64(count))
}

// ObserveDuration observes transfer duration
func (c *Collector) ObserveDuration(duration time.Duration) {
	c.duration.Observe(duration.Seconds())
}

// StartServer starts the metrics HTTP server
func (c *Collector) StartServer(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{}))
	return http.ListenAndServe(addr, mux)
}

// GetProgressTracker returns the progress tracker
func (c *Collector) GetProgressTracker() *progress.Tracker {
	return c.progressTracker
}

// SetTotalCounts sets the total counts for progress tracking
func (c *Collector) SetTotalCounts(objects, bytes int64) {
	c.progressTracker.SetTotal(objects, bytes)
}
