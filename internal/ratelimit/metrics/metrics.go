package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	RateLimitRejections *prometheus.CounterVec
	RateLimitErrors     prometheus.Counter
}

// New registers the rate limit metrics on reg (default registerer when nil).
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		RateLimitRejections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mandate_ratelimit_rejections_total",
			Help: "Requests refused with 429, by endpoint class",
		}, []string{"class"}),
		RateLimitErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "mandate_ratelimit_store_errors_total",
			Help: "Rate limit checks that failed open because the store errored",
		}),
	}
}

func (m *Metrics) IncRejected(class string) {
	m.RateLimitRejections.WithLabelValues(class).Inc()
}

func (m *Metrics) IncStoreErrors() {
	m.RateLimitErrors.Inc()
}
