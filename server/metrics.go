package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	outcomeOK    = "ok"
	outcomeError = "error"
)

type metrics struct {
	registry      *prometheus.Registry
	requests      *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	itemsReturned prometheus.Histogram
}

func newMetrics(reg *prometheus.Registry) *metrics {
	m := &metrics{registry: reg}
	m.requests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "feedsearch",
		Name:      "requests_total",
		Help:      "Feed requests by response format and outcome",
	}, []string{"format", "outcome"})
	m.fetchDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "feedsearch",
		Name:      "fetch_duration_seconds",
		Help:      "Time spent fetching and parsing the upstream feed",
		Buckets:   prometheus.DefBuckets,
	}, []string{"outcome"})
	m.itemsReturned = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "feedsearch",
		Name:      "items_returned",
		Help:      "Items in a successful response after filtering and limiting",
		Buckets:   []float64{0, 1, 5, 10, 25, 50, 100},
	})
	reg.MustRegister(m.requests, m.fetchDuration, m.itemsReturned)
	return m
}

func (m *metrics) observeFetch(err error, elapsed time.Duration) {
	outcome := outcomeOK
	if err != nil {
		outcome = outcomeError
	}
	m.fetchDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

func (m *metrics) succeeded(format string, items int) {
	m.requests.WithLabelValues(format, outcomeOK).Inc()
	m.itemsReturned.Observe(float64(items))
}

func (m *metrics) failed(format string) {
	m.requests.WithLabelValues(format, outcomeError).Inc()
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
