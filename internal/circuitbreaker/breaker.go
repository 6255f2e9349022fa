package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

// ErrOpen is returned by Execute while the breaker rejects calls.
var ErrOpen = errors.New("circuit breaker is open")

type State int

const (
	StateClosed   State = iota // calls pass through
	StateOpen                  // calls rejected
	StateHalfOpen              // one trial call allowed
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF-OPEN"
	default:
		return "UNKNOWN"
	}
}

type CircuitBreaker struct {
	mutex            sync.Mutex
	state            State
	failures         int
	lastFailure      time.Time
	failureThreshold int
	resetTimeout     time.Duration
	now              func() time.Time
	onChange         func(from, to State)
}

func NewCircuitBreaker(threshold int, timeout time.Duration) *CircuitBreaker {
	if threshold < 1 {
		threshold = 1
	}
	return &CircuitBreaker{
		state:            StateClosed,
		failureThreshold: threshold,
		resetTimeout:     timeout,
		now:              time.Now,
	}
}

// OnStateChange registers fn to be called, with the lock released, after
// every state transition.
func (cb *CircuitBreaker) OnStateChange(fn func(from, to State)) {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()
	cb.onChange = fn
}

// Allow reports whether a call may proceed. An open breaker moves to
// half-open once the reset timeout has elapsed since the last failure.
func (cb *CircuitBreaker) Allow() bool {
	cb.mutex.Lock()
	allowed := true
	from := cb.state

	switch cb.state {
	case StateOpen:
		if cb.now().Sub(cb.lastFailure) >= cb.resetTimeout {
			cb.state = StateHalfOpen
		} else {
			allowed = false
		}
	}

	to, notify := cb.state, cb.onChange
	cb.mutex.Unlock()

	if from != to && notify != nil {
		notify(from, to)
	}
	return allowed
}

func (cb *CircuitBreaker) RecordFailure() {
	cb.mutex.Lock()
	from := cb.state

	cb.failures++
	cb.lastFailure = cb.now()
	if cb.state == StateHalfOpen || cb.failures >= cb.failureThreshold {
		cb.state = StateOpen
	}

	to, notify := cb.state, cb.onChange
	cb.mutex.Unlock()

	if from != to && notify != nil {
		notify(from, to)
	}
}

func (cb *CircuitBreaker) RecordSuccess() {
	cb.mutex.Lock()
	from := cb.state

	cb.failures = 0
	cb.state = StateClosed

	notify := cb.onChange
	cb.mutex.Unlock()

	if from != StateClosed && notify != nil {
		notify(from, StateClosed)
	}
}

// Execute runs fn when the breaker allows it and records the outcome.
// Errors for which ignore returns true count as successes.
func (cb *CircuitBreaker) Execute(fn func() error, ignore func(error) bool) error {
	if !cb.Allow() {
		return ErrOpen
	}

	err := fn()
	if err != nil && (ignore == nil || !ignore(err)) {
		cb.RecordFailure()
		return err
	}

	cb.RecordSuccess()
	return err
}

func (cb *CircuitBreaker) State() State {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()
	return cb.state
}
