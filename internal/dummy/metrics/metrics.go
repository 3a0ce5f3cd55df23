package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Rejection reasons recorded on dummy_rejected_total.
const (
	ReasonNationalIDMissing   = "national_id_missing"
	ReasonNationalIDTooLong   = "national_id_too_long"
	ReasonDuplicateNationalID = "duplicate_national_id"
	ReasonDuplicateEmail      = "duplicate_email"
)

type Metrics struct {
	Created        prometheus.Counter
	Updated        prometheus.Counter
	Deleted        prometheus.Counter
	Rejected       *prometheus.CounterVec
	LookupDuration *prometheus.HistogramVec
}

// New registers the dummy metrics against reg (default registry when nil).
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		Created: f.NewCounter(prometheus.CounterOpts{
			Name: "dummy_created_total",
			Help: "Total number of dummy records created",
		}),
		Updated: f.NewCounter(prometheus.CounterOpts{
			Name: "dummy_updated_total",
			Help: "Total number of dummy records updated",
		}),
		Deleted: f.NewCounter(prometheus.CounterOpts{
			Name: "dummy_deleted_total",
			Help: "Total number of dummy records deleted",
		}),
		Rejected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dummy_rejected_total",
			Help: "Create requests rejected by validation or uniqueness rules",
		}, []string{"reason"}),
		LookupDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dummy_lookup_duration_seconds",
			Help:    "Duration of read operations against the record store",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),
	}
}

func (m *Metrics) IncrementCreated() { m.Created.Inc() }

func (m *Metrics) IncrementUpdated() { m.Updated.Inc() }

func (m *Metrics) IncrementDeleted() { m.Deleted.Inc() }

func (m *Metrics) IncrementRejected(reason string) {
	m.Rejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) ObserveLookup(operation string, start time.Time) {
	m.LookupDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
