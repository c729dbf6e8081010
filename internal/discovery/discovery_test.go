package discovery_test

import (
	"io"
	"log/slog"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/damirbriga107-creator/agrofin-gateway/internal/discovery"
)

func TestDiscovery(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Discovery Suite")
}

func newDiscovery(threshold int, timeout time.Duration, services map[string]string) *discovery.Discovery {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	d, err := discovery.New(services, threshold, timeout, log)
	Expect(err).NotTo(HaveOccurred())
	return d
}

var _ = Describe("Discovery", func() {
	var disc *discovery.Discovery

	BeforeEach(func() {
		disc = newDiscovery(5, 100*time.Millisecond, map[string]string{
			"auth":        "http://localhost:3001",
			"transaction": "http://localhost:3002",
		})
	})

	Describe("New", func() {
		It("should reject an invalid service URL", func() {
			log := slog.New(slog.NewTextHandler(io.Discard, nil))
			_, err := discovery.New(map[string]string{"auth": "://bad"}, 5, time.Minute, log)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("IsAvailable", func() {
		It("should report an unknown service as unavailable", func() {
			Expect(disc.IsAvailable("payments")).To(BeFalse())
		})

		It("should report a fresh service as available", func() {
			Expect(disc.IsAvailable("auth")).To(BeTrue())
		})

		It("should report a service with a failed last check as unavailable", func() {
			disc.RecordCall("auth", false, 0)
			Expect(disc.IsAvailable("auth")).To(BeFalse())
		})

		It("should become available again after a success", func() {
			disc.RecordCall("auth", false, 0)
			disc.RecordCall("auth", true, 10*time.Millisecond)
			Expect(disc.IsAvailable("auth")).To(BeTrue())
		})
	})

	Describe("breaker integration", func() {
		failN := func(service string, n int) {
			for i := 0; i < n; i++ {
				disc.RecordCall(service, false, 0)
			}
		}

		It("should reject outright while the circuit is open", func() {
			failN("auth", 5)

			Expect(disc.IsAvailable("auth")).To(BeFalse())
			Expect(disc.Snapshot()["auth"].CircuitBreaker.State).To(Equal("OPEN"))
		})

		It("should not change the failure count while rejecting", func() {
			failN("auth", 5)
			before := disc.Snapshot()["auth"].CircuitBreaker.FailureCount

			disc.IsAvailable("auth")
			disc.IsAvailable("auth")

			Expect(disc.Snapshot()["auth"].CircuitBreaker.FailureCount).To(Equal(before))
		})

		It("should run the half-open trial through the availability read", func() {
			failN("auth", 5)
			time.Sleep(150 * time.Millisecond)

			// The gate performs the lazy OPEN to HALF_OPEN transition, and the
			// verdict is the last known health flag, which is still false.
			Expect(disc.IsAvailable("auth")).To(BeFalse())
			Expect(disc.Snapshot()["auth"].CircuitBreaker.State).To(Equal("HALF_OPEN"))
		})

		It("should close after a successful half-open trial", func() {
			failN("auth", 5)
			time.Sleep(150 * time.Millisecond)
			disc.IsAvailable("auth")

			disc.RecordCall("auth", true, 10*time.Millisecond)

			snap := disc.Snapshot()["auth"]
			Expect(snap.CircuitBreaker.State).To(Equal("CLOSED"))
			Expect(snap.CircuitBreaker.FailureCount).To(BeZero())
			Expect(disc.IsAvailable("auth")).To(BeTrue())
		})

		It("should reopen after a failed half-open trial", func() {
			failN("auth", 5)
			time.Sleep(150 * time.Millisecond)
			disc.IsAvailable("auth")

			disc.RecordCall("auth", false, 0)

			Expect(disc.Snapshot()["auth"].CircuitBreaker.State).To(Equal("OPEN"))
			Expect(disc.IsAvailable("auth")).To(BeFalse())
		})

		It("should keep services independent", func() {
			failN("auth", 5)

			Expect(disc.IsAvailable("transaction")).To(BeTrue())

			snap := disc.Snapshot()["transaction"]
			Expect(snap.CircuitBreaker.State).To(Equal("CLOSED"))
			Expect(snap.ErrorCount).To(BeZero())
			Expect(snap.Healthy).To(BeTrue())
		})
	})

	Describe("ShouldProbe", func() {
		It("should skip probes while the breaker is backing off", func() {
			for i := 0; i < 5; i++ {
				disc.RecordCall("auth", false, 0)
			}
			Expect(disc.ShouldProbe("auth")).To(BeFalse())
		})

		It("should probe again once the backoff window passes", func() {
			for i := 0; i < 5; i++ {
				disc.RecordCall("auth", false, 0)
			}
			time.Sleep(150 * time.Millisecond)
			Expect(disc.ShouldProbe("auth")).To(BeTrue())
			// Checking must not consume the half-open trial
			Expect(disc.Snapshot()["auth"].CircuitBreaker.State).To(Equal("OPEN"))
		})

		It("should not probe unknown services", func() {
			Expect(disc.ShouldProbe("payments")).To(BeFalse())
		})
	})

	Describe("RecordCall", func() {
		It("should ignore unknown services", func() {
			Expect(func() {
				disc.RecordCall("payments", true, time.Millisecond)
			}).NotTo(Panic())
		})

		It("should store the measured latency on success", func() {
			disc.RecordCall("auth", true, 42*time.Millisecond)
			Expect(disc.Snapshot()["auth"].ResponseTimeMillis).To(Equal(int64(42)))
		})

		It("should not store a latency on failure", func() {
			disc.RecordCall("auth", true, 42*time.Millisecond)
			disc.RecordCall("auth", false, 0)
			Expect(disc.Snapshot()["auth"].ResponseTimeMillis).To(Equal(int64(42)))
		})
	})

	Describe("Snapshot", func() {
		It("should include every registered service", func() {
			snap := disc.Snapshot()
			Expect(snap).To(HaveLen(2))
			Expect(snap).To(HaveKey("auth"))
			Expect(snap).To(HaveKey("transaction"))
		})

		It("should reflect the configured URL and counters", func() {
			disc.RecordCall("auth", false, 0)
			disc.RecordCall("auth", false, 0)

			status := disc.Snapshot()["auth"]
			Expect(status.URL).To(Equal("http://localhost:3001"))
			Expect(status.Healthy).To(BeFalse())
			Expect(status.ErrorCount).To(Equal(int64(2)))
			Expect(status.ConsecutiveErrors).To(Equal(2))
			Expect(status.CircuitBreaker.FailureCount).To(Equal(2))
		})
	})

	Describe("Summary", func() {
		It("should count healthy services", func() {
			summary := disc.Summary()
			Expect(summary.Healthy).To(Equal(2))
			Expect(summary.Total).To(Equal(2))
		})

		It("should drop unhealthy services from the healthy count", func() {
			disc.RecordCall("auth", false, 0)

			summary := disc.Summary()
			Expect(summary.Healthy).To(Equal(1))
			Expect(summary.Total).To(Equal(2))
		})
	})
})
