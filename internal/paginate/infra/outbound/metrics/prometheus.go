// Package metrics expone las páginas servidas como métricas de Prometheus.
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/davicafu/hexapaginate/internal/paginate/domain"
)

// PromRecorder implementa domain.StatsRecorder con un contador, un histograma
// de duración y un histograma de documentos devueltos, por colección.
type PromRecorder struct {
	pages    *prometheus.CounterVec
	empty    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	returned *prometheus.HistogramVec
}

var _ domain.StatsRecorder = (*PromRecorder)(nil)

// NewPromRecorder registra las métricas en reg.
func NewPromRecorder(reg prometheus.Registerer) (*PromRecorder, error) {
	r := &PromRecorder{
		pages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hexapaginate",
			Name:      "pages_served_total",
			Help:      "Pages served per collection.",
		}, []string{"collection"}),
		empty: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hexapaginate",
			Name:      "empty_pages_total",
			Help:      "Queries that matched no document.",
		}, []string{"collection"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hexapaginate",
			Name:      "page_duration_seconds",
			Help:      "Time to resolve, count and find one page.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"collection"}),
		returned: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hexapaginate",
			Name:      "page_documents",
			Help:      "Documents returned per page.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 8),
		}, []string{"collection"}),
	}

	for _, c := range []prometheus.Collector{r.pages, r.empty, r.duration, r.returned} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *PromRecorder) Record(_ context.Context, s domain.PageStats) error {
	r.pages.WithLabelValues(s.Collection).Inc()
	if s.Total == 0 {
		r.empty.WithLabelValues(s.Collection).Inc()
	}
	r.duration.WithLabelValues(s.Collection).Observe(s.Duration.Seconds())
	r.returned.WithLabelValues(s.Collection).Observe(float64(s.Returned))
	return nil
}
