package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/fx"
)

// Metrics holds the service's prometheus instruments.
type Metrics struct {
	httpDuration   *prometheus.HistogramVec
	quotaDecisions *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		httpDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "quotad",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route, method and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
		quotaDecisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quotad",
			Name:      "quota_decisions_total",
			Help:      "Quota engine decisions by feature, engine and outcome.",
		}, []string{"feature", "engine", "outcome"}),
	}
}

// ObserveDecision counts a single engine decision. Nil-safe so services can
// run without metrics in tests.
func (m *Metrics) ObserveDecision(engine, feature, outcome string) {
	if m == nil {
		return
	}
	m.quotaDecisions.WithLabelValues(feature, engine, outcome).Inc()
}

// GinMiddleware records request latency per route.
func GinMiddleware(m *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpDuration.
			WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

var Module = fx.Module("metrics",
	fx.Provide(New),
)
