package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the member directory.
// Tracks mutation counts, role changes, and repository latency.
type Metrics struct {
	MembersAdded  prometheus.Counter
	Mutations     *prometheus.CounterVec
	RoleChanges   prometheus.Counter
	PublishErrors prometheus.Counter
	StoreDuration *prometheus.HistogramVec
}

// New creates a Metrics instance registered with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		MembersAdded: factory.NewCounter(prometheus.CounterOpts{
			Name: "members_added_total",
			Help: "Total number of members added",
		}),
		Mutations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "members_mutations_total",
			Help: "Total number of committed member mutations by operation",
		}, []string{"operation"}),
		RoleChanges: factory.NewCounter(prometheus.CounterOpts{
			Name: "members_role_changes_total",
			Help: "Total number of updates that changed a member's role set",
		}),
		PublishErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "members_publish_errors_total",
			Help: "Total number of change events the notifier refused",
		}),
		StoreDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "members_store_duration_seconds",
			Help:    "Duration of member repository calls",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),
	}
}

// IncrementAdded records a successful member creation.
func (m *Metrics) IncrementAdded() {
	m.MembersAdded.Inc()
}

// IncrementMutation records a committed mutation.
func (m *Metrics) IncrementMutation(operation string) {
	m.Mutations.WithLabelValues(operation).Inc()
}

// IncrementRoleChange records an update whose role set differs from the stored one.
func (m *Metrics) IncrementRoleChange() {
	m.RoleChanges.Inc()
}

// IncrementPublishError records an event the notifier did not accept.
func (m *Metrics) IncrementPublishError() {
	m.PublishErrors.Inc()
}

// ObserveStore records the duration of a repository call.
// Call with time.Now() at the start of the call.
func (m *Metrics) ObserveStore(operation string, start time.Time) {
	m.StoreDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
