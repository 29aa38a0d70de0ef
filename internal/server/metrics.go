package server

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lore_serve_http_requests_total",
		Help: "Total HTTP requests handled by the preview server",
	}, []string{"code", "method"})

	requestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "lore_serve_http_request_duration_seconds",
		Help:    "HTTP request latency of the preview server",
		Buckets: prometheus.DefBuckets,
	})
)

func requestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		timer := prometheus.NewTimer(requestDuration)
		c.Next()
		timer.ObserveDuration()
		requestsTotal.WithLabelValues(strconv.Itoa(c.Writer.Status()), c.Request.Method).Inc()
	}
}
