package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics instruments requests with a counter and a duration histogram.
// Collectors are registered on the given registry; expose them via
// promhttp on /metrics.
type Metrics struct {
	reqTotal *prometheus.CounterVec
	reqDur   *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		reqTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vibeconnect",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests by method and status.",
		}, []string{"method", "status"}),
		reqDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "vibeconnect",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration by method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}
	reg.MustRegister(m.reqTotal, m.reqDur)
	return m
}

func (m *Metrics) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		m.reqTotal.WithLabelValues(r.Method, strconv.Itoa(wrapped.status)).Inc()
		m.reqDur.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())
	})
}
