// Package metrics exposes Prometheus collectors for commands and HTTP.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	commands = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "skybooking",
			Subsystem: "commands",
			Name:      "total",
			Help:      "Commands handled, by command and outcome.",
		},
		[]string{"command", "outcome"},
	)

	guardRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "skybooking",
			Subsystem: "guards",
			Name:      "rejections_total",
			Help:      "Writes rejected by a guard, by rejected field.",
		},
		[]string{"field"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "skybooking",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "skybooking",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "path"},
	)
)

func init() {
	Registry.MustRegister(
		commands,
		guardRejections,
		httpRequests,
		httpDuration,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Outcome labels an error by its domain code.
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	var derr *domain.Error
	if errors.As(err, &derr) {
		return string(derr.Code)
	}
	return "fault"
}

// ObserveCommand counts one command and, for validation failures, every
// rejected field.
func ObserveCommand(command string, err error) {
	commands.WithLabelValues(command, Outcome(err)).Inc()
	var derr *domain.Error
	if errors.As(err, &derr) && derr.Code == domain.CodeValidationFailed {
		for field := range derr.Fields {
			guardRejections.WithLabelValues(field).Inc()
		}
	}
}

// Handler returns an HTTP handler exposing the registered metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency by route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
