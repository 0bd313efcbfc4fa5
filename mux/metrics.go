package mux

import "github.com/prometheus/client_golang/prometheus"

// Dispatch results recorded by Metrics.
const (
	ResultMatched        = "matched"
	ResultNotFound       = "not_found"
	ResultMethodMismatch = "method_mismatch"
	ResultFallback       = "fallback"
)

// Metrics counts forward and reverse dispatch outcomes. A nil *Metrics
// records nothing.
type Metrics struct {
	forward *prometheus.CounterVec
	reverse *prometheus.CounterVec
}

// NewMetrics creates the dispatch counters and registers them with reg.
// A nil reg uses prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		forward: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reroute_forward_dispatch_total",
				Help: "Forward dispatch attempts by result",
			},
			[]string{"result"},
		),
		reverse: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reroute_reverse_dispatch_total",
				Help: "Reverse dispatch attempts by result",
			},
			[]string{"result"},
		),
	}

	for _, c := range []prometheus.Collector{m.forward, m.reverse} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *Metrics) forwardResult(result string) {
	if m == nil {
		return
	}
	m.forward.WithLabelValues(result).Inc()
}

func (m *Metrics) reverseResult(result string) {
	if m == nil {
		return
	}
	m.reverse.WithLabelValues(result).Inc()
}
