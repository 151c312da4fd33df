package export

import (
	"errors"
	"time"

	"github.com/aisa-it/aiplan/docexport/internal/aiplan/apierrors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultOK            = "ok"
	resultMalformed     = "malformed"
	resultTimeout       = "timeout"
	resultEngineFailure = "engine_failure"
	resultCanceled      = "canceled"
)

// Metrics - счетчики экспортов. Нулевой указатель ничего не записывает.
type Metrics struct {
	exports  *prometheus.CounterVec
	duration prometheus.Histogram
	blocked  *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		exports: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aiplan",
			Name:      "exports_total",
			Help:      "Total count of document exports by result",
		}, []string{"result"}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "aiplan",
			Name:      "export_duration_seconds",
			Help:      "Document export duration",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
		}),
		blocked: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aiplan",
			Name:      "blocked_requests_total",
			Help:      "Total count of render engine requests blocked by the sandbox",
		}, []string{"resource_type"}),
	}
}

func (m *Metrics) observe(result string, elapsed time.Duration, blockedByType map[string]int) {
	if m == nil {
		return
	}
	m.exports.WithLabelValues(result).Inc()
	m.duration.Observe(elapsed.Seconds())
	for t, n := range blockedByType {
		m.blocked.WithLabelValues(t).Add(float64(n))
	}
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return resultOK
	case errors.Is(err, apierrors.ErrMalformedDocument):
		return resultMalformed
	case errors.Is(err, apierrors.ErrRenderTimeout):
		return resultTimeout
	case errors.Is(err, apierrors.ErrExportCanceled):
		return resultCanceled
	}
	return resultEngineFailure
}
