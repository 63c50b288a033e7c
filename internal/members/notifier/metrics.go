package notifier

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts notification outcomes per backend.
type Metrics struct {
	Published *prometheus.CounterVec
	Failed    *prometheus.CounterVec
}

// NewMetrics registers the notifier metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Published: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "members_notifications_published_total",
			Help: "Total number of member change notifications acknowledged by the channel",
		}, []string{"backend"}),
		Failed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "members_notifications_failed_total",
			Help: "Total number of member change notifications that were not delivered",
		}, []string{"backend", "stage"}),
	}
}

func (m *Metrics) incPublished(backend string) {
	if m == nil {
		return
	}
	m.Published.WithLabelValues(backend).Inc()
}

func (m *Metrics) incFailed(backend, stage string) {
	if m == nil {
		return
	}
	m.Failed.WithLabelValues(backend, stage).Inc()
}
