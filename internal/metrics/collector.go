package metrics

import (
	"context"
	"log/slog"
	"time"
)

type EventType string

const (
	EventRequestProxied  EventType = "request_proxied"
	EventRequestRejected EventType = "request_rejected"
	EventProbeCompleted  EventType = "probe_completed"
	EventHealthChanged   EventType = "health_changed"
)

type MetricEvent struct {
	Type       EventType
	Timestamp  time.Time
	Service    string
	Duration   time.Duration
	StatusCode int
	Success    bool
	Healthy    bool
}

type Collector struct {
	eventCh chan MetricEvent
	metrics *Metrics
	logger  *slog.Logger
}

func NewCollector(bufferSize int, logger *slog.Logger) *Collector {
	return &Collector{
		eventCh: make(chan MetricEvent, bufferSize),
		metrics: NewMetrics(),
		logger:  logger,
	}
}

func (c *Collector) EventChannel() chan<- MetricEvent {
	return c.eventCh
}

// Emit sends an event without blocking; events are dropped when the buffer
// is full rather than stalling the request path or the health monitor.
func (c *Collector) Emit(event MetricEvent) {
	select {
	case c.eventCh <- event:
	default:
	}
}

func (c *Collector) Start(ctx context.Context) {
	go c.run(ctx)
}

func (c *Collector) run(ctx context.Context) {
	c.logger.Info("Metrics collector started")
	defer c.logger.Info("Metrics collector stopped")

	for {
		select {
		case event := <-c.eventCh:
			c.processEvent(event)
		case <-ctx.Done():
			// Drain remaining events before shutdown
			c.drain()
			return
		}
	}
}

func (c *Collector) processEvent(event MetricEvent) {
	switch event.Type {
	case EventRequestProxied:
		c.metrics.RecordRequest(event.Service, event.Duration, event.StatusCode, event.Success)

	case EventRequestRejected:
		c.metrics.RecordRejection(event.Service)

	case EventProbeCompleted:
		c.metrics.RecordProbe(event.Service, event.Duration, event.Success)

	case EventHealthChanged:
		c.metrics.UpdateHealthStatus(event.Service, event.Healthy)
	}
}

func (c *Collector) drain() {
	for {
		select {
		case event := <-c.eventCh:
			c.processEvent(event)
		default:
			return
		}
	}
}

func (c *Collector) Snapshot() Snapshot {
	return c.metrics.Snapshot()
}
