package collector

import (
	"context"
	"errors"
	"sync"
	"time"
)

// BreakerState represents the circuit breaker state.
type BreakerState int

const (
	StateClosed   BreakerState = iota // normal operation
	StateOpen                         // failing, reject calls
	StateHalfOpen                     // testing recovery
)

func (s BreakerState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrCircuitOpen is returned when a provider's breaker rejects a call.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitBreaker stops calling a market data provider after repeated
// failures and lets a single trial call through once resetTimeout has passed.
// Only errors matching IsFailure count towards opening it.
type CircuitBreaker struct {
	mu           sync.Mutex
	state        BreakerState
	failures     int
	maxFailures  int
	resetTimeout time.Duration
	lastFailure  time.Time
	trialing     bool // a half-open trial call is in flight
	now          func() time.Time

	// IsFailure classifies call errors; defaults to IsProviderFailure.
	IsFailure func(error) bool
	// OnStateChange is called on every transition, outside the lock.
	OnStateChange func(from, to BreakerState)
}

// NewCircuitBreaker creates a circuit breaker.
func NewCircuitBreaker(maxFailures int, resetTimeout time.Duration) *CircuitBreaker {
	if maxFailures <= 0 {
		maxFailures = 3
	}
	return &CircuitBreaker{
		state:        StateClosed,
		maxFailures:  maxFailures,
		resetTimeout: resetTimeout,
		now:          time.Now,
		IsFailure:    IsProviderFailure,
	}
}

// Execute runs fn through the circuit breaker. While half-open, calls other
// than the trial call are rejected with ErrCircuitOpen.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	cb.mu.Lock()
	from := cb.state
	if cb.state == StateOpen {
		if cb.now().Sub(cb.lastFailure) < cb.resetTimeout {
			cb.mu.Unlock()
			return ErrCircuitOpen
		}
		cb.state = StateHalfOpen
	}
	trial := cb.state == StateHalfOpen
	if trial {
		if cb.trialing {
			cb.mu.Unlock()
			return ErrCircuitOpen
		}
		cb.trialing = true
	}
	to := cb.state
	cb.mu.Unlock()
	cb.notify(from, to)

	err := fn()

	cb.mu.Lock()
	if trial {
		cb.trialing = false
	}
	from = cb.state
	switch {
	case cb.IsFailure(err):
		cb.failures++
		cb.lastFailure = cb.now()
		if cb.state == StateHalfOpen || cb.failures >= cb.maxFailures {
			cb.state = StateOpen
		}
	case errors.Is(err, context.Canceled):
		// The caller left before the provider answered; no verdict.
	default:
		// The provider answered, even if only to say the symbol is unknown.
		cb.failures = 0
		cb.state = StateClosed
	}
	to = cb.state
	cb.mu.Unlock()
	cb.notify(from, to)
	return err
}

// CurrentState returns the current breaker state.
func (cb *CircuitBreaker) CurrentState() BreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

func (cb *CircuitBreaker) notify(from, to BreakerState) {
	if from != to && cb.OnStateChange != nil {
		cb.OnStateChange(from, to)
	}
}
