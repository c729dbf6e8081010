package discovery_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/damirbriga107-creator/agrofin-gateway/internal/discovery"
)

var _ = Describe("Status handlers", func() {
	var disc *discovery.Discovery

	BeforeEach(func() {
		disc = newDiscovery(5, time.Minute, map[string]string{
			"auth":   "http://localhost:3001",
			"report": "http://localhost:3004",
		})
	})

	Describe("StatusHandler", func() {
		It("should serve the per-service snapshot as JSON", func() {
			disc.RecordCall("auth", false, 0)

			req := httptest.NewRequest(http.MethodGet, "/status", nil)
			rec := httptest.NewRecorder()
			disc.StatusHandler()(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Header().Get("Content-Type")).To(Equal("application/json"))

			var body map[string]discovery.ServiceStatus
			Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
			Expect(body).To(HaveLen(2))
			Expect(body["auth"].Healthy).To(BeFalse())
			Expect(body["auth"].ErrorCount).To(Equal(int64(1)))
			Expect(body["auth"].CircuitBreaker.State).To(Equal("CLOSED"))
			Expect(body["report"].Healthy).To(BeTrue())
		})
	})

	Describe("SummaryHandler", func() {
		It("should serve the healthy count summary", func() {
			disc.RecordCall("auth", false, 0)

			req := httptest.NewRequest(http.MethodGet, "/status/summary", nil)
			rec := httptest.NewRecorder()
			disc.SummaryHandler()(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))

			var summary discovery.Summary
			Expect(json.Unmarshal(rec.Body.Bytes(), &summary)).To(Succeed())
			Expect(summary.Healthy).To(Equal(1))
			Expect(summary.Total).To(Equal(2))
		})
	})
})
