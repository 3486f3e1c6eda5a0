package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome label values
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Metrics holds the collectors of the admin service
type Metrics struct {
	StoreFetches   *prometheus.CounterVec
	StoreUpdates   *prometheus.CounterVec
	ActiveSessions prometheus.Gauge
	FilterResults  prometheus.Histogram
	HTTPRequests   *prometheus.CounterVec
}

// New creates the collectors and registers them with reg when reg is non-nil
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		StoreFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "events_admin",
			Name:      "store_fetches_total",
			Help:      "Full event list fetches by outcome",
		}, []string{"outcome"}),
		StoreUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "events_admin",
			Name:      "store_updates_total",
			Help:      "Event updates by outcome",
		}, []string{"outcome"}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "events_admin",
			Name:      "active_sessions",
			Help:      "Operator sessions currently held in memory",
		}),
		FilterResults: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "events_admin",
			Name:      "filter_result_size",
			Help:      "Number of events returned by a filtered listing",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 7),
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "events_admin",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status",
		}, []string{"route", "method", "status"}),
	}

	if reg != nil {
		reg.MustRegister(m.StoreFetches, m.StoreUpdates, m.ActiveSessions, m.FilterResults, m.HTTPRequests)
	}
	return m
}

// Outcome maps an error to an outcome label
func Outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeSuccess
}
