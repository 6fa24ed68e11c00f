package document

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	RenderDuration prometheus.Histogram
	CacheLookups   *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		RenderDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "mandate_document_render_duration_seconds",
			Help:    "Time to render one mandate PDF",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mandate_document_cache_lookups_total",
			Help: "Document cache lookups by result",
		}, []string{"result"}),
	}
}

func (m *Metrics) ObserveRender(start time.Time) {
	m.RenderDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncCache(result string) {
	m.CacheLookups.WithLabelValues(result).Inc()
}
