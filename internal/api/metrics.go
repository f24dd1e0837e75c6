package api

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	cinderAdmissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cinder_admissions_total",
		Help: "Total admission attempts by outcome status.",
	}, []string{"status"})

	cinderAdmissionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cinder_admission_duration_seconds",
		Help:    "Admission duration (signature check plus mining) in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"status"})

	cinderChainHeight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cinder_chain_height",
		Help: "Current number of chain entries, genesis included.",
	})

	cinderRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cinder_requests_total",
		Help: "Total HTTP requests by method, path, and response status.",
	}, []string{"method", "path", "status"})

	cinderRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cinder_request_duration_seconds",
		Help:    "Request duration in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})
)

// PrometheusMiddleware returns a Gin middleware that records per-request metrics.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		method := c.Request.Method
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		cinderRequestsTotal.WithLabelValues(method, path, status).Inc()
		cinderRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}

// MetricsHandler returns a Gin handler that serves Prometheus metrics.
func MetricsHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// RecordAdmission records one admission attempt and its duration.
func RecordAdmission(status string, d time.Duration) {
	cinderAdmissionsTotal.WithLabelValues(status).Inc()
	cinderAdmissionDuration.WithLabelValues(status).Observe(d.Seconds())
}

// SetChainHeight sets the chain height gauge.
func SetChainHeight(height float64) {
	cinderChainHeight.Set(height)
}
