// Package promhooks counts cachepolicy signals with Prometheus.
//
//	h := promhooks.New(prometheus.DefaultRegisterer, "myapp")
//	client, _ := cachepolicy.NewClient(store, cachepolicy.ClientOptions{Hooks: h})
//
// Exposed series (namespace prefix omitted):
//
//	cachepolicy_gets_total{segment}
//	cachepolicy_hits_total{segment}
//	cachepolicy_misses_total{segment,reason}
package promhooks

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/unkn0wn-root/cachepolicy"
)

type Hooks struct {
	gets   *prometheus.CounterVec
	hits   *prometheus.CounterVec
	misses *prometheus.CounterVec
}

var _ cachepolicy.Hooks = (*Hooks)(nil)

// New registers the counters with reg (nil => not registered).
// It panics if the counters are already registered, like prometheus.MustRegister.
func New(reg prometheus.Registerer, namespace string) *Hooks {
	h := &Hooks{
		gets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cachepolicy",
			Name:      "gets_total",
			Help:      "Cache lookups, including invalid and disconnected ones.",
		}, []string{"segment"}),
		hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cachepolicy",
			Name:      "hits_total",
			Help:      "Lookups that returned an unexpired record.",
		}, []string{"segment"}),
		misses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cachepolicy",
			Name:      "misses_total",
			Help:      "Lookups that returned nothing, by reason.",
		}, []string{"segment", "reason"}),
	}
	if reg != nil {
		reg.MustRegister(h.gets, h.hits, h.misses)
	}
	return h
}

func (h *Hooks) Get(key cachepolicy.Key) {
	h.gets.WithLabelValues(key.Segment).Inc()
}

func (h *Hooks) Hit(key cachepolicy.Key, _ cachepolicy.CachedView[[]byte]) {
	h.hits.WithLabelValues(key.Segment).Inc()
}

func (h *Hooks) Miss(key cachepolicy.Key, reason cachepolicy.MissReason, _ *cachepolicy.StoredRecord) {
	h.misses.WithLabelValues(key.Segment, string(reason)).Inc()
}
