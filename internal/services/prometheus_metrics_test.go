package services

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	recorder := NewPrometheusMetrics(reg)
	metrics := recorder.(*PrometheusMetrics)

	recorder.IncrementCounter(MetricRecurringBooked, map[string]string{"frequency": "monthly"})
	recorder.IncrementCounter(MetricRecurringBooked, map[string]string{"frequency": "monthly"})
	recorder.IncrementCounter(MetricRecurringFailed, map[string]string{"frequency": "weekly"})
	recorder.IncrementCounter(MetricInsightsRefreshed, nil)
	recorder.IncrementCounter("unknown.metric", nil)
	recorder.RecordGauge(MetricRecurringDue, 7, nil)
	recorder.RecordGauge(MetricCircuitBreakerState, 1, map[string]string{"service": "cloud_backup"})
	recorder.RecordProcessingTime(MetricRecurringRun, 25*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.recurringProcessed.WithLabelValues("booked", "monthly")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.recurringProcessed.WithLabelValues("failed", "weekly")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.insightsRefreshed))
	assert.Equal(t, 7.0, testutil.ToFloat64(metrics.recurringDue))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.circuitBreakerState.WithLabelValues("cloud_backup")))

	count, err := testutil.GatherAndCount(reg, "walletwhiz_recurring_run_duration_milliseconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestPrometheusMetrics_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		NewPrometheusMetrics(prometheus.NewRegistry())
		NewPrometheusMetrics(prometheus.NewRegistry())
	})
}
