package distribution

import (
	"github.com/iov-one/splitter/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Cascade skip reasons.
const (
	skipNotNode     = "not_node"
	skipAutoEnabled = "auto_distribution"
	skipNoRole      = "not_distributor"
	skipFailed      = "failed"
)

// Metrics counts payouts made by all engines of a host. A nil Metrics
// counts nothing.
type Metrics struct {
	distributions  *prometheus.CounterVec
	distributed    *prometheus.CounterVec
	cascadeSkipped *prometheus.CounterVec
}

// NewMetrics creates the engine collectors and registers them with reg.
// Use nil reg to create collectors without registering them.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		distributions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "splitter",
				Name:      "distributions_total",
				Help:      "Number of completed payouts by asset.",
			},
			[]string{"asset"},
		),
		distributed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "splitter",
				Name:      "distributed_amount_total",
				Help:      "Amount paid out by asset, including the platform fee.",
			},
			[]string{"asset"},
		),
		cascadeSkipped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "splitter",
				Name:      "cascade_skipped_total",
				Help:      "Number of cascade branches that were not followed.",
			},
			[]string{"reason"},
		),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.distributions, m.distributed, m.cascadeSkipped} {
		if err := reg.Register(c); err != nil {
			return nil, errors.Wrapf(errors.ErrDuplicate, "register collector: %s", err)
		}
	}
	return m, nil
}

func (m *Metrics) observeDistribution(asset string, amount uint64) {
	if m == nil {
		return
	}
	m.distributions.WithLabelValues(asset).Inc()
	m.distributed.WithLabelValues(asset).Add(float64(amount))
}

func (m *Metrics) observeCascadeSkipped(reason string) {
	if m == nil {
		return
	}
	m.cascadeSkipped.WithLabelValues(reason).Inc()
}
