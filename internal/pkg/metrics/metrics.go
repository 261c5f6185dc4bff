package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 会员相关的 Prometheus 指标
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	UsageConsumedTotal *prometheus.CounterVec
	UsageRejectedTotal *prometheus.CounterVec
	PointsEarnedTotal  *prometheus.CounterVec
	PointsSpentTotal   *prometheus.CounterVec
	SubscriptionsTotal *prometheus.CounterVec
	UsageSweptTotal    prometheus.Counter
}

// New 创建并注册全部指标
func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: registry,
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dotori_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dotori_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		UsageConsumedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dotori_usage_consumed_total",
				Help: "Feature units consumed",
			},
			[]string{"feature"},
		),
		UsageRejectedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dotori_usage_rejected_total",
				Help: "Consumption attempts rejected by the daily limit",
			},
			[]string{"feature"},
		),
		PointsEarnedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dotori_points_earned_total",
				Help: "Points credited to wallets",
			},
			[]string{"reason"},
		),
		PointsSpentTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dotori_points_spent_total",
				Help: "Points debited from wallets",
			},
			[]string{"reason"},
		),
		SubscriptionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dotori_subscriptions_total",
				Help: "Completed plan subscriptions",
			},
			[]string{"plan"},
		),
		UsageSweptTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "dotori_usage_counters_swept_total",
				Help: "Usage counter rows removed by the retention sweep",
			},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.UsageConsumedTotal,
		m.UsageRejectedTotal,
		m.PointsEarnedTotal,
		m.PointsSpentTotal,
		m.SubscriptionsTotal,
		m.UsageSweptTotal,
	)

	return m
}

// Handler /metrics 端点
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// 以下方法允许 nil 接收者，未启用指标时直接忽略

func (m *Metrics) ObserveConsumed(feature string, count int) {
	if m == nil {
		return
	}
	m.UsageConsumedTotal.WithLabelValues(feature).Add(float64(count))
}

func (m *Metrics) ObserveRejected(feature string) {
	if m == nil {
		return
	}
	m.UsageRejectedTotal.WithLabelValues(feature).Inc()
}

func (m *Metrics) ObserveEarned(reason string, amount int) {
	if m == nil || amount <= 0 {
		return
	}
	m.PointsEarnedTotal.WithLabelValues(reason).Add(float64(amount))
}

func (m *Metrics) ObserveSpent(reason string, amount int) {
	if m == nil || amount <= 0 {
		return
	}
	m.PointsSpentTotal.WithLabelValues(reason).Add(float64(amount))
}

func (m *Metrics) ObserveSubscription(plan string) {
	if m == nil {
		return
	}
	m.SubscriptionsTotal.WithLabelValues(plan).Inc()
}

func (m *Metrics) ObserveSwept(rows int64) {
	if m == nil || rows <= 0 {
		return
	}
	m.UsageSweptTotal.Add(float64(rows))
}
