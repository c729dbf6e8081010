package metrics_test

import (
	"context"
	"io"
	"log/slog"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/damirbriga107-creator/agrofin-gateway/internal/metrics"
)

var _ = Describe("Collector", func() {
	var (
		collector *metrics.Collector
		ctx       context.Context
		cancel    context.CancelFunc
	)

	BeforeEach(func() {
		log := slog.New(slog.NewTextHandler(io.Discard, nil))
		collector = metrics.NewCollector(100, log)
		ctx, cancel = context.WithCancel(context.Background())
		collector.Start(ctx)
	})

	AfterEach(func() {
		cancel()
	})

	It("should process proxied request events", func() {
		collector.Emit(metrics.MetricEvent{
			Type:       metrics.EventRequestProxied,
			Timestamp:  time.Now(),
			Service:    "transaction",
			Duration:   25 * time.Millisecond,
			StatusCode: 200,
			Success:    true,
		})

		Eventually(func() int64 {
			return collector.Snapshot().Services["transaction"].Requests
		}, time.Second, 10*time.Millisecond).Should(Equal(int64(1)))
	})

	It("should process rejection events", func() {
		collector.Emit(metrics.MetricEvent{
			Type:      metrics.EventRequestRejected,
			Timestamp: time.Now(),
			Service:   "transaction",
		})

		Eventually(func() int64 {
			return collector.Snapshot().Services["transaction"].Rejections
		}, time.Second, 10*time.Millisecond).Should(Equal(int64(1)))
	})

	It("should process probe and health events", func() {
		collector.Emit(metrics.MetricEvent{
			Type:      metrics.EventProbeCompleted,
			Timestamp: time.Now(),
			Service:   "auth",
			Duration:  5 * time.Millisecond,
			Success:   true,
		})
		collector.Emit(metrics.MetricEvent{
			Type:      metrics.EventHealthChanged,
			Timestamp: time.Now(),
			Service:   "auth",
			Healthy:   true,
		})

		Eventually(func() int64 {
			return collector.Snapshot().Services["auth"].Probes
		}, time.Second, 10*time.Millisecond).Should(Equal(int64(1)))
		Eventually(func() bool {
			return collector.Snapshot().Services["auth"].Healthy
		}, time.Second, 10*time.Millisecond).Should(BeTrue())
	})

	It("should not block the caller when the buffer is full", func() {
		small := metrics.NewCollector(1, slog.New(slog.NewTextHandler(io.Discard, nil)))
		// Never started, so nothing drains the channel

		done := make(chan struct{})
		go func() {
			defer close(done)
			for i := 0; i < 100; i++ {
				small.Emit(metrics.MetricEvent{Type: metrics.EventRequestRejected, Service: "auth"})
			}
		}()

		Eventually(done, time.Second).Should(BeClosed())
	})
})
