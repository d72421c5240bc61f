package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metric names accepted by MetricsRecorderInterface.
const (
	MetricRecurringBooked     = "recurring.booked"
	MetricRecurringFailed     = "recurring.failed"
	MetricRecurringRun        = "recurring.run"
	MetricRecurringDue        = "recurring.due"
	MetricCircuitBreakerState = "circuit_breaker.state"
	MetricInsightsRefreshed   = "insights.refreshed"
	MetricEventsConsumed      = "events.consumed"
)

type PrometheusMetrics struct {
	recurringProcessed  *prometheus.CounterVec
	recurringDuration   prometheus.Histogram
	recurringDue        prometheus.Gauge
	circuitBreakerState *prometheus.GaugeVec
	insightsRefreshed   prometheus.Counter
	eventsConsumed      *prometheus.CounterVec
}

// NewPrometheusMetrics registers the collectors on reg. Tests pass a fresh
// prometheus.NewRegistry() so repeated construction does not panic.
func NewPrometheusMetrics(reg prometheus.Registerer) MetricsRecorderInterface {
	factory := promauto.With(reg)
	return &PrometheusMetrics{
		recurringProcessed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletwhiz_recurring_payments_processed_total",
				Help: "Recurring payment bookings by outcome",
			},
			[]string{"status", "frequency"},
		),
		recurringDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "walletwhiz_recurring_run_duration_milliseconds",
				Help:    "Duration of one recurring processor run in milliseconds",
				Buckets: prometheus.ExponentialBuckets(1, 2, 14),
			},
		),
		recurringDue: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "walletwhiz_recurring_payments_due",
				Help: "Recurring payments found due by the last run",
			},
		),
		circuitBreakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "walletwhiz_circuit_breaker_state",
				Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
			},
			[]string{"service"},
		),
		insightsRefreshed: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "walletwhiz_insights_refreshed_total",
				Help: "Users whose insights were regenerated by the worker",
			},
		),
		eventsConsumed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletwhiz_events_consumed_total",
				Help: "Domain events consumed by the worker",
			},
			[]string{"status"},
		),
	}
}

func (m *PrometheusMetrics) IncrementCounter(name string, tags map[string]string) {
	switch name {
	case MetricRecurringBooked:
		m.recurringProcessed.WithLabelValues("booked", tags["frequency"]).Inc()
	case MetricRecurringFailed:
		m.recurringProcessed.WithLabelValues("failed", tags["frequency"]).Inc()
	case MetricInsightsRefreshed:
		m.insightsRefreshed.Inc()
	case MetricEventsConsumed:
		m.eventsConsumed.WithLabelValues(tags["status"]).Inc()
	}
}

func (m *PrometheusMetrics) RecordProcessingTime(name string, duration time.Duration) {
	if name == MetricRecurringRun {
		m.recurringDuration.Observe(float64(duration.Milliseconds()))
	}
}

func (m *PrometheusMetrics) RecordGauge(name string, value float64, tags map[string]string) {
	switch name {
	case MetricRecurringDue:
		m.recurringDue.Set(value)
	case MetricCircuitBreakerState:
		if service := tags["service"]; service != "" {
			m.circuitBreakerState.WithLabelValues(service).Set(value)
		}
	}
}
