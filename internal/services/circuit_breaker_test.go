package services

import (
	"testing"
	"time"

	"walletwhiz/internal/models"

	"github.com/stretchr/testify/assert"
)

type transition struct {
	from, to models.CircuitBreakerState
}

func newTestBreaker(maxFailures int) (*CircuitBreaker, *time.Time, *[]transition) {
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	var seen []transition
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		Name:            "sheets",
		MaxFailures:     maxFailures,
		ResetTimeout:    time.Minute,
		HalfOpenMaxSucc: 1,
		OnStateChange: func(name string, from, to models.CircuitBreakerState) {
			seen = append(seen, transition{from, to})
		},
	}).(*CircuitBreaker)
	cb.now = func() time.Time { return clock }
	return cb, &clock, &seen
}

func TestCircuitBreaker_OpensAfterMaxFailures(t *testing.T) {
	cb, _, seen := newTestBreaker(3)

	cb.RecordFailure()
	cb.RecordFailure()
	assert.False(t, cb.IsOpen())
	assert.Equal(t, 2, cb.GetFailureCount())

	cb.RecordFailure()
	assert.True(t, cb.IsOpen())
	assert.Equal(t, models.CircuitOpen, cb.GetState())
	assert.Equal(t, []transition{{models.CircuitClosed, models.CircuitOpen}}, *seen)
}

func TestCircuitBreaker_SuccessResetsFailures(t *testing.T) {
	cb, _, _ := newTestBreaker(2)

	cb.RecordFailure()
	cb.RecordSuccess()
	cb.RecordFailure()
	assert.False(t, cb.IsOpen())
}

func TestCircuitBreaker_HalfOpenRecovery(t *testing.T) {
	cb, clock, seen := newTestBreaker(1)

	cb.RecordFailure()
	assert.True(t, cb.IsOpen())

	*clock = clock.Add(2 * time.Minute)
	assert.False(t, cb.IsOpen())
	assert.Equal(t, models.CircuitHalfOpen, cb.GetState())

	cb.RecordSuccess()
	assert.Equal(t, models.CircuitClosed, cb.GetState())
	assert.Equal(t, []transition{
		{models.CircuitClosed, models.CircuitOpen},
		{models.CircuitOpen, models.CircuitHalfOpen},
		{models.CircuitHalfOpen, models.CircuitClosed},
	}, *seen)
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	cb, clock, _ := newTestBreaker(1)

	cb.RecordFailure()
	*clock = clock.Add(2 * time.Minute)
	assert.False(t, cb.IsOpen())

	cb.RecordFailure()
	assert.True(t, cb.IsOpen())
}

func TestCircuitBreaker_Reset(t *testing.T) {
	cb, _, _ := newTestBreaker(1)
	cb.RecordFailure()

	cb.Reset()
	assert.False(t, cb.IsOpen())
	assert.Zero(t, cb.GetFailureCount())
	assert.Equal(t, "closed", cb.GetState().String())
}
