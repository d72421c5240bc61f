package services

import (
	"errors"
	"sync"
	"time"

	"walletwhiz/internal/models"
)

var (
	ErrCircuitBreakerOpen = errors.New("circuit breaker is open")
)

type CircuitBreakerConfig struct {
	Name            string
	MaxFailures     int
	ResetTimeout    time.Duration
	HalfOpenMaxSucc int
	// OnStateChange is called outside the lock after every transition.
	OnStateChange func(name string, from, to models.CircuitBreakerState)
}

func DefaultCircuitBreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:            name,
		MaxFailures:     3,
		ResetTimeout:    time.Minute,
		HalfOpenMaxSucc: 1,
	}
}

type CircuitBreaker struct {
	mu                sync.RWMutex
	config            CircuitBreakerConfig
	state             models.CircuitBreakerState
	failures          int
	halfOpenSuccesses int
	lastFailureTime   time.Time
	now               func() time.Time
}

func NewCircuitBreaker(config CircuitBreakerConfig) CircuitBreakerInterface {
	if config.MaxFailures <= 0 {
		config.MaxFailures = 1
	}
	if config.HalfOpenMaxSucc <= 0 {
		config.HalfOpenMaxSucc = 1
	}
	return &CircuitBreaker{
		config: config,
		state:  models.CircuitClosed,
		now:    time.Now,
	}
}

// IsOpen moves an open breaker to half-open once ResetTimeout has passed
// since the last failure, letting a trial call through.
func (cb *CircuitBreaker) IsOpen() bool {
	cb.mu.Lock()
	if cb.state == models.CircuitOpen && cb.now().Sub(cb.lastFailureTime) > cb.config.ResetTimeout {
		from := cb.setState(models.CircuitHalfOpen)
		cb.mu.Unlock()
		cb.notify(from, models.CircuitHalfOpen)
		return false
	}
	open := cb.state == models.CircuitOpen
	cb.mu.Unlock()
	return open
}

func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	switch cb.state {
	case models.CircuitHalfOpen:
		cb.halfOpenSuccesses++
		if cb.halfOpenSuccesses >= cb.config.HalfOpenMaxSucc {
			from := cb.setState(models.CircuitClosed)
			cb.mu.Unlock()
			cb.notify(from, models.CircuitClosed)
			return
		}
	case models.CircuitClosed:
		cb.failures = 0
	}
	cb.mu.Unlock()
}

func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	cb.lastFailureTime = cb.now()

	switch cb.state {
	case models.CircuitHalfOpen:
		from := cb.setState(models.CircuitOpen)
		cb.mu.Unlock()
		cb.notify(from, models.CircuitOpen)
		return
	case models.CircuitClosed:
		cb.failures++
		if cb.failures >= cb.config.MaxFailures {
			from := cb.setState(models.CircuitOpen)
			cb.mu.Unlock()
			cb.notify(from, models.CircuitOpen)
			return
		}
	}
	cb.mu.Unlock()
}

// setState must be called with the lock held.
func (cb *CircuitBreaker) setState(to models.CircuitBreakerState) models.CircuitBreakerState {
	from := cb.state
	cb.state = to
	cb.halfOpenSuccesses = 0
	if to == models.CircuitClosed {
		cb.failures = 0
	}
	return from
}

func (cb *CircuitBreaker) notify(from, to models.CircuitBreakerState) {
	if cb.config.OnStateChange != nil && from != to {
		cb.config.OnStateChange(cb.config.Name, from, to)
	}
}

func (cb *CircuitBreaker) GetState() models.CircuitBreakerState {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.state
}

func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	from := cb.setState(models.CircuitClosed)
	cb.mu.Unlock()
	cb.notify(from, models.CircuitClosed)
}

func (cb *CircuitBreaker) GetFailureCount() int {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.failures
}
