package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	calculationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tco_calculations_total",
			Help: "Total number of TCO calculation requests",
		},
		[]string{"status"}, // ok or invalid
	)

	violationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tco_validation_violations_total",
			Help: "Total number of input violations by field",
		},
		[]string{"field"},
	)

	cacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tco_cache_lookups_total",
			Help: "Total number of result cache lookups",
		},
		[]string{"result"}, // hit, miss or error
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tco_http_request_duration_seconds",
			Help:    "Duration of HTTP requests by route",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"route", "method", "code"},
	)
)
