package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bandroom",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	syncPushes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bandroom",
			Name:      "sync_pushes_total",
			Help:      "Full-snapshot pushes to the remote store by outcome.",
		},
		[]string{"outcome"},
	)

	syncFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bandroom",
			Name:      "sync_fetches_total",
			Help:      "Full-snapshot fetches from the remote store by outcome.",
		},
		[]string{"outcome"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, syncPushes, syncFetches)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncPush records a push attempt outcome ("ok" or "error").
func IncPush(outcome string) {
	syncPushes.WithLabelValues(outcome).Inc()
}

// IncFetch records a fetch attempt outcome ("ok" or "error").
func IncFetch(outcome string) {
	syncFetches.WithLabelValues(outcome).Inc()
}
