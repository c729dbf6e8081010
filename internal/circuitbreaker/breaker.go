package circuitbreaker

import (
	"sync"
	"time"
)

type State int

const (
	StateClosed   State = iota // Normal operation
	StateOpen                  // Blocking requests
	StateHalfOpen              // Testing with a trial request
)

type CircuitBreaker struct {
	mutex            sync.Mutex
	state            State
	failureCount     int
	lastFailure      time.Time
	nextAttempt      time.Time
	failureThreshold int
	openTimeout      time.Duration
}

func NewCircuitBreaker(threshold int, timeout time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		state:            StateClosed,
		failureThreshold: threshold,
		openTimeout:      timeout,
	}
}

// Allow reports whether a call may be attempted right now. While open, the
// first call after nextAttempt flips the breaker to half-open and becomes the
// trial call; this lazy transition is the only way out of the open state.
// Half-open is not single-flight: concurrent callers inside the transition
// window may all be let through.
func (cb *CircuitBreaker) Allow() bool {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	switch cb.state {
	case StateClosed:
		return true
	case StateOpen:
		if time.Now().After(cb.nextAttempt) {
			cb.state = StateHalfOpen
			return true
		}

		return false
	case StateHalfOpen:
		return true
	default:
		return true
	}
}

// Blocked reports whether the breaker is open and still inside its backoff
// window. Unlike Allow it never mutates state, so the health monitor can use
// it to skip probes without consuming the half-open trial.
func (cb *CircuitBreaker) Blocked() bool {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	return cb.state == StateOpen && !time.Now().After(cb.nextAttempt)
}

// RecordFailure counts a failed call. A half-open trial failure reopens the
// circuit immediately; a closed breaker opens once the failure count reaches
// the threshold. The count is not reset when reopening, so it keeps
// accumulating from its pre-open value.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	now := time.Now()
	cb.failureCount++
	cb.lastFailure = now

	if cb.state == StateHalfOpen {
		cb.state = StateOpen
		cb.nextAttempt = now.Add(cb.openTimeout)
		return
	}

	// A failure recorded while already open (a straggling call that was let
	// through before the circuit tripped) re-arms the backoff window.
	if cb.failureCount >= cb.failureThreshold {
		cb.state = StateOpen
		cb.nextAttempt = now.Add(cb.openTimeout)
	}
}

// RecordSuccess resets the failure count and closes the circuit after a
// successful half-open trial.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	cb.failureCount = 0
	if cb.state == StateHalfOpen {
		cb.state = StateClosed
	}
}

func (cb *CircuitBreaker) State() State {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()
	return cb.state
}

// Snapshot is a point-in-time copy of the breaker's internals for the
// status reporter.
type Snapshot struct {
	State        State
	FailureCount int
	LastFailure  time.Time
	NextAttempt  time.Time
}

func (cb *CircuitBreaker) Snapshot() Snapshot {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	return Snapshot{
		State:        cb.state,
		FailureCount: cb.failureCount,
		LastFailure:  cb.lastFailure,
		NextAttempt:  cb.nextAttempt,
	}
}

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}
