package circuitbreaker_test

import (
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/damirbriga107-creator/agrofin-gateway/internal/circuitbreaker"
)

var _ = Describe("Registry", func() {
	var registry *circuitbreaker.Registry

	BeforeEach(func() {
		registry = circuitbreaker.NewRegistry(5, 60*time.Second)
	})

	Describe("GetBreaker", func() {
		It("should create a new breaker for an unknown service", func() {
			cb := registry.GetBreaker("auth")
			Expect(cb).NotTo(BeNil())
			Expect(cb.State()).To(Equal(circuitbreaker.StateClosed))
		})

		It("should return the same breaker for the same service", func() {
			cb1 := registry.GetBreaker("auth")
			cb2 := registry.GetBreaker("auth")
			Expect(cb1).To(BeIdenticalTo(cb2))
		})

		It("should return different breakers for different services", func() {
			cb1 := registry.GetBreaker("auth")
			cb2 := registry.GetBreaker("budget")
			Expect(cb1).NotTo(BeIdenticalTo(cb2))
		})

		It("should use the registry threshold for new breakers", func() {
			registry = circuitbreaker.NewRegistry(2, 100*time.Millisecond)
			cb := registry.GetBreaker("auth")

			cb.RecordFailure()
			cb.RecordFailure()
			Expect(cb.State()).To(Equal(circuitbreaker.StateOpen))
		})

		It("should be safe under concurrent access", func() {
			var wg sync.WaitGroup
			breakers := make([]*circuitbreaker.CircuitBreaker, 10)

			for i := 0; i < 10; i++ {
				wg.Add(1)
				go func(idx int) {
					defer wg.Done()
					breakers[idx] = registry.GetBreaker("auth")
				}(i)
			}
			wg.Wait()

			for _, cb := range breakers {
				Expect(cb).To(BeIdenticalTo(breakers[0]))
			}
		})
	})

	Describe("Stats", func() {
		It("should report the state of every breaker", func() {
			registry = circuitbreaker.NewRegistry(1, time.Minute)
			registry.GetBreaker("auth")
			registry.GetBreaker("budget").RecordFailure()

			stats := registry.Stats()
			Expect(stats).To(HaveLen(2))
			Expect(stats["auth"]).To(Equal(circuitbreaker.StateClosed))
			Expect(stats["budget"]).To(Equal(circuitbreaker.StateOpen))
		})
	})
})
