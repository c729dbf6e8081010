package registry

import (
	"net/url"
	"sync"
	"time"
)

// Endpoint represents a downstream service with health status, failure
// counters and response time tracking.
type Endpoint struct {
	name              string
	baseURL           *url.URL
	mutex             sync.Mutex
	healthy           bool
	lastCheck         time.Time
	responseTime      time.Duration
	errorCount        int64
	consecutiveErrors int
}

// New creates a new Endpoint for the given service name and base URL.
// The endpoint starts in a healthy state until the first probe says otherwise.
func New(name string, baseURL *url.URL) *Endpoint {
	return &Endpoint{
		name:    name,
		baseURL: baseURL,
		healthy: true,
	}
}

// Name returns the unique service name.
func (e *Endpoint) Name() string {
	return e.name
}

// URL returns the configured base URL. It never changes after startup.
func (e *Endpoint) URL() *url.URL {
	return e.baseURL
}

// IsHealthy returns the last known health verdict.
func (e *Endpoint) IsHealthy() bool {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	return e.healthy
}

// MarkSuccess records a successful probe or proxied call. A latency of zero
// means the caller did not measure one, and the previous value is kept.
// Returns true if the health status changed from unhealthy to healthy.
func (e *Endpoint) MarkSuccess(latency time.Duration) (changed bool) {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	changed = !e.healthy
	e.healthy = true
	e.consecutiveErrors = 0
	e.lastCheck = time.Now()
	if latency > 0 {
		e.responseTime = latency
	}

	return changed
}

// MarkFailure records a failed probe or proxied call.
// Returns true if the health status changed from healthy to unhealthy.
func (e *Endpoint) MarkFailure() (changed bool) {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	changed = e.healthy
	e.healthy = false
	e.consecutiveErrors++
	e.errorCount++
	e.lastCheck = time.Now()

	return changed
}

// Stats is a point-in-time copy of an endpoint's counters.
type Stats struct {
	Healthy           bool
	LastCheck         time.Time
	ResponseTime      time.Duration
	ErrorCount        int64
	ConsecutiveErrors int
}

// Stats returns a snapshot of the endpoint's current counters.
func (e *Endpoint) Stats() Stats {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	return Stats{
		Healthy:           e.healthy,
		LastCheck:         e.lastCheck,
		ResponseTime:      e.responseTime,
		ErrorCount:        e.errorCount,
		ConsecutiveErrors: e.consecutiveErrors,
	}
}
