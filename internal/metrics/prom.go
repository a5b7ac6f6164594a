// Package metrics declares the process-wide prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafkaforms_http_requests_total",
			Help: "Total number of HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kafkaforms_http_request_duration_seconds",
			Help:    "Duration of HTTP requests by method and route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	PublishedMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafkaforms_published_messages_total",
			Help: "Total number of publish attempts by topic and result",
		},
		[]string{"topic", "result"},
	)

	RenderErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafkaforms_render_errors_total",
			Help: "Total number of message template render errors by engine",
		},
		[]string{"engine"},
	)
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObservePublish counts one publish attempt.
func ObservePublish(topic string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	PublishedMessages.WithLabelValues(topic, result).Inc()
}
