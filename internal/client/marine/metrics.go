package marine

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "marine_client"

const (
	refreshSucceeded = "success"
	refreshFailed    = "failure"
)

// Metrics counts client activity. A nil *Metrics records nothing.
type Metrics struct {
	refreshes *prometheus.CounterVec
	queued    prometheus.Counter
	requests  *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		refreshes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "session_refresh_total",
			Help:      "Session refresh attempts by result.",
		}, []string{"result"}),
		queued: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "queued_requests_total",
			Help:      "Requests that waited on an in-flight session refresh.",
		}),
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "requests_total",
			Help:      "Requests sent to the API by method and status code.",
		}, []string{"method", "code"}),
	}
}

func (m *Metrics) observeRefresh(err error) {
	if m == nil {
		return
	}
	result := refreshSucceeded
	if err != nil {
		result = refreshFailed
	}
	m.refreshes.WithLabelValues(result).Inc()
}

func (m *Metrics) observeQueued() {
	if m == nil {
		return
	}
	m.queued.Inc()
}

func (m *Metrics) observeRequest(method string, status int) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, strconv.Itoa(status)).Inc()
}
