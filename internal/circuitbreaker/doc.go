// Package circuitbreaker implements the circuit breaker pattern for calls to
// downstream services.
//
// A circuit breaker prevents cascading failures by temporarily blocking
// requests to failing services. It has three states:
//
//   - CLOSED: Normal operation, requests pass through
//   - OPEN: Service failing, requests blocked until the backoff window ends
//   - HALF_OPEN: Testing if the service recovered with a trial request
//
// Usage:
//
//	registry := circuitbreaker.NewRegistry(5, 60*time.Second)
//	cb := registry.GetBreaker("transaction")
//	if cb.Allow() {
//	    // Make request...
//	    if err != nil {
//	        cb.RecordFailure()
//	    } else {
//	        cb.RecordSuccess()
//	    }
//	}
package circuitbreaker
