package storefront

import "github.com/prometheus/client_golang/prometheus"

const (
	opAdd    = "add"
	opRemove = "remove"

	resultOK    = "ok"
	resultNoop  = "noop"
	resultError = "error"
)

type cartMetrics struct {
	transitions *prometheus.CounterVec
	items       prometheus.Histogram
}

func newCartMetrics(reg prometheus.Registerer) *cartMetrics {
	m := &cartMetrics{
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cart_transitions_total",
				Help: "Cart add/remove operations by outcome",
			},
			[]string{"op", "result"},
		),
		items: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cart_items",
			Help:    "Total item count of a cart after a transition",
			Buckets: prometheus.ExponentialBuckets(1, 2, 8),
		}),
	}

	reg.MustRegister(m.transitions, m.items)
	return m
}

func (m *cartMetrics) observe(op, result string, totalItems int) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(op, result).Inc()
	if result != resultError {
		m.items.Observe(float64(totalItems))
	}
}
