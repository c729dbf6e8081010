package discovery

import (
	"log/slog"
	"sync"
	"time"

	"github.com/damirbriga107-creator/agrofin-gateway/internal/circuitbreaker"
	"github.com/damirbriga107-creator/agrofin-gateway/internal/registry"
)

// Discovery owns the endpoint registry and the per-service circuit breakers.
// One instance is built in main and shared by the health monitor and the
// proxy handler; there is no package-level state.
type Discovery struct {
	endpoints *registry.Registry
	breakers  *circuitbreaker.Registry
	locks     map[string]*sync.Mutex
	logger    *slog.Logger
}

// New registers every configured service and creates its circuit breaker.
// A duplicate name or invalid URL is a startup error; callers should treat
// it as fatal.
func New(services map[string]string, failureThreshold int, openTimeout time.Duration, logger *slog.Logger) (*Discovery, error) {
	d := &Discovery{
		endpoints: registry.NewRegistry(),
		breakers:  circuitbreaker.NewRegistry(failureThreshold, openTimeout),
		locks:     make(map[string]*sync.Mutex, len(services)),
		logger:    logger,
	}

	for name, serviceURL := range services {
		if err := d.endpoints.Register(name, serviceURL); err != nil {
			return nil, err
		}
		d.breakers.GetBreaker(name)
		d.locks[name] = &sync.Mutex{}

		logger.Info("Registered downstream service",
			slog.String("service", name),
			slog.String("url", serviceURL))
	}

	return d, nil
}

// IsAvailable reports whether a call to the named service should be
// attempted. An unknown name is simply unavailable. While the breaker is
// open this rejects outright, except that the first call past the backoff
// window lazily flips the breaker to half-open and becomes the trial call —
// this read-with-side-effect is the only path out of the open state.
func (d *Discovery) IsAvailable(name string) bool {
	endpoint, ok := d.endpoints.Get(name)
	if !ok {
		return false
	}

	if !d.breakers.GetBreaker(name).Allow() {
		return false
	}

	return endpoint.IsHealthy()
}

// URLOf returns the configured base URL for the named service.
func (d *Discovery) URLOf(name string) (string, bool) {
	return d.endpoints.URLOf(name)
}

// Names returns all registered service names.
func (d *Discovery) Names() []string {
	return d.endpoints.Names()
}

// ShouldProbe reports whether the health monitor should bother probing the
// named service. Probes are skipped while the breaker is open and inside its
// backoff window, so no I/O is wasted on a service we are backing off from.
func (d *Discovery) ShouldProbe(name string) bool {
	if _, ok := d.endpoints.Get(name); !ok {
		return false
	}
	return !d.breakers.GetBreaker(name).Blocked()
}

// RecordCall feeds the outcome of a probe or proxied call back into the
// endpoint counters and the circuit breaker. A latency of zero means the
// caller did not measure one. Both the health monitor and the request path
// call this concurrently; the per-service lock serializes the endpoint and
// breaker update pair so neither writer loses the other's update.
func (d *Discovery) RecordCall(name string, success bool, latency time.Duration) {
	endpoint, ok := d.endpoints.Get(name)
	if !ok {
		d.logger.Warn("Call recorded for unknown service", slog.String("service", name))
		return
	}

	lock := d.locks[name]
	lock.Lock()
	defer lock.Unlock()

	breaker := d.breakers.GetBreaker(name)
	stateBefore := breaker.State()

	if success {
		breaker.RecordSuccess()
		if endpoint.MarkSuccess(latency) {
			d.logger.Info("Service is back up", slog.String("service", name))
		}
	} else {
		breaker.RecordFailure()
		if endpoint.MarkFailure() {
			d.logger.Warn("Service is down", slog.String("service", name))
		}
	}

	if stateAfter := breaker.State(); stateAfter != stateBefore {
		d.logger.Warn("Circuit breaker state changed",
			slog.String("service", name),
			slog.String("from", stateBefore.String()),
			slog.String("to", stateAfter.String()))
	}
}
