package healthcheck

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/damirbriga107-creator/agrofin-gateway/internal/discovery"
	"github.com/damirbriga107-creator/agrofin-gateway/internal/metrics"
)

// Monitor keeps endpoint health current even for services that receive no
// organic traffic. A single recurring timer drives probe cycles; each cycle
// probes every registered service concurrently and completes when all probes
// have settled.
type Monitor struct {
	discovery    *discovery.Discovery
	collector    *metrics.Collector
	interval     time.Duration
	probeTimeout time.Duration
	client       *http.Client
	logger       *slog.Logger
}

// NewMonitor creates a health monitor. The collector may be nil when metrics
// are not wanted (e.g. in tests).
func NewMonitor(
	disc *discovery.Discovery,
	collector *metrics.Collector,
	interval time.Duration,
	probeTimeout time.Duration,
	logger *slog.Logger,
) *Monitor {
	return &Monitor{
		discovery:    disc,
		collector:    collector,
		interval:     interval,
		probeTimeout: probeTimeout,
		client: &http.Client{
			Timeout: probeTimeout,
		},
		logger: logger,
	}
}

// Start runs one probe cycle immediately, then arms the recurring timer.
// It returns once the loop goroutine is launched; cancel ctx to stop.
func (m *Monitor) Start(ctx context.Context) {
	go func() {
		m.logger.Info("Health monitor started",
			slog.Duration("interval", m.interval),
			slog.Duration("probe_timeout", m.probeTimeout))

		m.runCycle()

		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				m.logger.Info("Health monitor stopped")
				return
			case <-ticker.C:
				m.runCycle()
			}
		}
	}()
}

// runCycle probes every registered service concurrently and waits for all
// probes to settle. One slow or failing service never delays the others
// beyond the probe timeout.
func (m *Monitor) runCycle() {
	var wg sync.WaitGroup

	for _, name := range m.discovery.Names() {
		if !m.discovery.ShouldProbe(name) {
			m.logger.Debug("Skipping probe, circuit open", slog.String("service", name))
			continue
		}

		wg.Add(1)
		go func(service string) {
			defer wg.Done()
			m.probe(service)
		}(name)
	}

	wg.Wait()
}

// probe issues a bounded GET {baseURL}/health. Any 2xx response is a success;
// a non-success status, timeout or transport error is a failure. Probes are
// deliberately not tied to the monitor's lifetime context, so shutdown never
// aborts one mid-flight; they settle on their own within the probe timeout.
func (m *Monitor) probe(service string) {
	rawURL, ok := m.discovery.URLOf(service)
	if !ok {
		return
	}

	baseURL, err := url.Parse(rawURL)
	if err != nil {
		return
	}
	healthURL := baseURL.ResolveReference(&url.URL{Path: "/health"})

	ctx, cancel := context.WithTimeout(context.Background(), m.probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, healthURL.String(), nil)
	if err != nil {
		return
	}

	start := time.Now()
	res, err := m.client.Do(req)
	latency := time.Since(start)

	success := false
	if err == nil {
		res.Body.Close()
		success = res.StatusCode >= 200 && res.StatusCode < 300
	}

	m.discovery.RecordCall(service, success, latency)

	if m.collector != nil {
		m.collector.Emit(metrics.MetricEvent{
			Type:      metrics.EventProbeCompleted,
			Timestamp: time.Now(),
			Service:   service,
			Duration:  latency,
			Success:   success,
		})
		m.collector.Emit(metrics.MetricEvent{
			Type:      metrics.EventHealthChanged,
			Timestamp: time.Now(),
			Service:   service,
			Healthy:   success,
		})
	}
}
