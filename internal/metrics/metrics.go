package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	FlowOutcome     *prometheus.CounterVec
	SearchRequests  *prometheus.CounterVec
	SearchSeconds   *prometheus.HistogramVec
	PositionSeconds prometheus.Histogram
	Restaurants     prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		FlowOutcome: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "nearby_flow_outcome_total",
			Help: "Outcomes of the permission, position and search flow.",
		}, []string{"outcome"}),
		SearchRequests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "nearby_search_requests_total",
			Help: "Total number of place search requests by status.",
		}, []string{"provider", "status"}),
		SearchSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "nearby_search_request_duration_seconds",
			Help:    "Duration of requests to the place search provider.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
		PositionSeconds: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "nearby_position_duration_seconds",
			Help:    "Duration of the permission check and position fix.",
			Buckets: prometheus.DefBuckets,
		}),
		Restaurants: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "nearby_restaurants",
			Help: "Number of restaurants currently shown.",
		}),
	}
}
