package offline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts lifecycle events. A nil registerer yields unregistered collectors.
type Metrics struct {
	fetches     *prometheus.CounterVec
	installs    *prometheus.CounterVec
	activations prometheus.Counter
	pushes      *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		fetches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stefano",
			Subsystem: "offline",
			Name:      "fetches_total",
			Help:      "Intercepted fetches by result (hit, miss, error).",
		}, []string{"result"}),
		installs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stefano",
			Subsystem: "offline",
			Name:      "installs_total",
			Help:      "Install attempts by result (ok, failed).",
		}, []string{"result"}),
		activations: f.NewCounter(prometheus.CounterOpts{
			Namespace: "stefano",
			Subsystem: "offline",
			Name:      "activations_total",
			Help:      "Completed activations.",
		}),
		pushes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stefano",
			Subsystem: "offline",
			Name:      "pushes_total",
			Help:      "Push messages by result (shown, failed).",
		}, []string{"result"}),
	}
}
