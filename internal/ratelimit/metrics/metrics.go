package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	RateLimitRejections *prometheus.CounterVec
	FallbackChecks      prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		RateLimitRejections: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "artemiz_ratelimit_rejections_total",
			Help: "Requests rejected by the per-IP rate limiter",
		}, []string{"class"}),
		FallbackChecks: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "artemiz_ratelimit_fallback_checks_total",
			Help: "Rate limit checks answered by the in-memory fallback while the primary store was unavailable",
		}),
	}
}

func (m *Metrics) IncrementRejections(class string) {
	m.RateLimitRejections.WithLabelValues(class).Inc()
}

func (m *Metrics) IncrementFallbackChecks() {
	m.FallbackChecks.Inc()
}
