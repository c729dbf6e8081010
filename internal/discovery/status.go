package discovery

import (
	"encoding/json"
	"net/http"
	"time"
)

// BreakerStatus mirrors the circuit breaker internals in the operator
// status contract.
type BreakerStatus struct {
	State        string    `json:"state"`
	FailureCount int       `json:"failureCount"`
	NextAttempt  time.Time `json:"nextAttempt"`
	LastFailure  time.Time `json:"lastFailure"`
}

// ServiceStatus is the per-service entry in the operator status snapshot.
type ServiceStatus struct {
	Healthy            bool          `json:"healthy"`
	URL                string        `json:"url"`
	LastCheck          time.Time     `json:"lastCheck"`
	ResponseTimeMillis int64         `json:"responseTimeMillis"`
	ErrorCount         int64         `json:"errorCount"`
	ConsecutiveErrors  int           `json:"consecutiveErrors"`
	CircuitBreaker     BreakerStatus `json:"circuitBreaker"`
}

// Summary is the healthy-count aggregate.
type Summary struct {
	Healthy int `json:"healthy"`
	Total   int `json:"total"`
}

// Snapshot returns the status of every registered service. Read-only; it
// never advances breaker state.
func (d *Discovery) Snapshot() map[string]ServiceStatus {
	statuses := make(map[string]ServiceStatus, d.endpoints.Len())

	for _, name := range d.endpoints.Names() {
		endpoint, ok := d.endpoints.Get(name)
		if !ok {
			continue
		}

		stats := endpoint.Stats()
		breaker := d.breakers.GetBreaker(name).Snapshot()

		statuses[name] = ServiceStatus{
			Healthy:            stats.Healthy,
			URL:                endpoint.URL().String(),
			LastCheck:          stats.LastCheck,
			ResponseTimeMillis: stats.ResponseTime.Milliseconds(),
			ErrorCount:         stats.ErrorCount,
			ConsecutiveErrors:  stats.ConsecutiveErrors,
			CircuitBreaker: BreakerStatus{
				State:        breaker.State.String(),
				FailureCount: breaker.FailureCount,
				NextAttempt:  breaker.NextAttempt,
				LastFailure:  breaker.LastFailure,
			},
		}
	}

	return statuses
}

// Summary returns how many registered services are currently healthy.
func (d *Discovery) Summary() Summary {
	summary := Summary{Total: d.endpoints.Len()}

	for _, name := range d.endpoints.Names() {
		if endpoint, ok := d.endpoints.Get(name); ok && endpoint.IsHealthy() {
			summary.Healthy++
		}
	}

	return summary
}

// StatusHandler serves the full per-service status snapshot as JSON.
func (d *Discovery) StatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(d.Snapshot()); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
}

// SummaryHandler serves the healthy-count summary as JSON.
func (d *Discovery) SummaryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(d.Summary()); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
}
