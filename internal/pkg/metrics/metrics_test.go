package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	m := New(prometheus.NewRegistry())
	require.NotNil(t, m)
	assert.NotNil(t, m.UsageConsumedTotal)
	assert.NotNil(t, m.PointsEarnedTotal)
}

func TestObserve(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveConsumed("SUMMARY", 2)
	m.ObserveConsumed("SUMMARY", 1)
	m.ObserveRejected("IMAGE")
	m.ObserveEarned("QUIZ_CORRECT", 5)
	m.ObserveEarned("QUIZ_CORRECT", 0)
	m.ObserveSpent("PURCHASE_DISCOUNT", 300)
	m.ObserveSubscription("PLUS")
	m.ObserveSwept(12)

	assert.Equal(t, float64(3), testutil.ToFloat64(m.UsageConsumedTotal.WithLabelValues("SUMMARY")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.UsageRejectedTotal.WithLabelValues("IMAGE")))
	assert.Equal(t, float64(5), testutil.ToFloat64(m.PointsEarnedTotal.WithLabelValues("QUIZ_CORRECT")))
	assert.Equal(t, float64(300), testutil.ToFloat64(m.PointsSpentTotal.WithLabelValues("PURCHASE_DISCOUNT")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.SubscriptionsTotal.WithLabelValues("PLUS")))
	assert.Equal(t, float64(12), testutil.ToFloat64(m.UsageSweptTotal))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveConsumed("SUMMARY", 1)
		m.ObserveRejected("SUMMARY")
		m.ObserveEarned("ROLEPLAY", 1)
		m.ObserveSpent("ADJUST", 1)
		m.ObserveSubscription("BASIC")
		m.ObserveSwept(1)
	})
}

func TestHandler(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveConsumed("DETECTOR", 1)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `dotori_usage_consumed_total{feature="DETECTOR"} 1`))
}
