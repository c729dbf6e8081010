package metrics

import (
	"sort"
	"sync"
	"time"
)

const (
	latencyWindow = 1000
	outcomeWindow = 200
)

type Metrics struct {
	mutex         sync.RWMutex
	requests      map[string]int64
	rejections    map[string]int64
	probes        map[string]int64
	responseTimes map[string][]time.Duration
	statusCodes   map[string]map[int]int64
	outcomes      map[string][]bool
	healthStatus  map[string]bool
	startTime     time.Time
}

type Snapshot struct {
	TotalRequests int64                     `json:"total_requests"`
	Uptime        time.Duration             `json:"uptime"`
	Services      map[string]ServiceMetrics `json:"services"`
}

type ServiceMetrics struct {
	Requests     int64         `json:"requests"`
	Rejections   int64         `json:"rejections"`
	Probes       int64         `json:"probes"`
	Healthy      bool          `json:"healthy"`
	Availability float64       `json:"availability"`
	AvgResponse  time.Duration `json:"avg_response"`
	P50Response  time.Duration `json:"p50_response"`
	P95Response  time.Duration `json:"p95_response"`
	P99Response  time.Duration `json:"p99_response"`
	StatusCodes  map[int]int64 `json:"status_codes"`
}

func NewMetrics() *Metrics {
	return &Metrics{
		requests:      make(map[string]int64),
		rejections:    make(map[string]int64),
		probes:        make(map[string]int64),
		responseTimes: make(map[string][]time.Duration),
		statusCodes:   make(map[string]map[int]int64),
		outcomes:      make(map[string][]bool),
		healthStatus:  make(map[string]bool),
		startTime:     time.Now(),
	}
}

func (m *Metrics) RecordRequest(service string, duration time.Duration, statusCode int, success bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.requests[service]++
	m.recordLatency(service, duration)

	if m.statusCodes[service] == nil {
		m.statusCodes[service] = make(map[int]int64)
	}
	m.statusCodes[service][statusCode]++

	m.recordOutcome(service, success)
}

func (m *Metrics) RecordRejection(service string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.rejections[service]++
}

func (m *Metrics) RecordProbe(service string, duration time.Duration, success bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.probes[service]++
	if success {
		m.recordLatency(service, duration)
	}
	m.recordOutcome(service, success)
}

func (m *Metrics) UpdateHealthStatus(service string, healthy bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.healthStatus[service] = healthy
}

func (m *Metrics) recordLatency(service string, duration time.Duration) {
	m.responseTimes[service] = append(m.responseTimes[service], duration)

	if len(m.responseTimes[service]) > latencyWindow {
		m.responseTimes[service] = m.responseTimes[service][1:]
	}
}

func (m *Metrics) recordOutcome(service string, success bool) {
	m.outcomes[service] = append(m.outcomes[service], success)

	if len(m.outcomes[service]) > outcomeWindow {
		m.outcomes[service] = m.outcomes[service][1:]
	}
}

func (m *Metrics) Snapshot() Snapshot {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	snap := Snapshot{
		Uptime:   time.Since(m.startTime),
		Services: make(map[string]ServiceMetrics),
	}

	// Collect all service names seen by any event stream
	allServices := make(map[string]bool)
	for service := range m.requests {
		allServices[service] = true
	}
	for service := range m.rejections {
		allServices[service] = true
	}
	for service := range m.probes {
		allServices[service] = true
	}
	for service := range m.healthStatus {
		allServices[service] = true
	}

	for service := range allServices {
		snap.TotalRequests += m.requests[service]

		sm := ServiceMetrics{
			Requests:     m.requests[service],
			Rejections:   m.rejections[service],
			Probes:       m.probes[service],
			Healthy:      m.healthStatus[service],
			Availability: availability(m.outcomes[service]),
			StatusCodes:  m.statusCodes[service],
		}

		durations := m.responseTimes[service]
		if len(durations) > 0 {
			sorted := make([]time.Duration, len(durations))
			copy(sorted, durations)
			sort.Slice(sorted, func(i, j int) bool {
				return sorted[i] < sorted[j]
			})

			sm.AvgResponse = average(sorted)
			sm.P50Response = percentile(sorted, 0.50)
			sm.P95Response = percentile(sorted, 0.95)
			sm.P99Response = percentile(sorted, 0.99)
		}

		snap.Services[service] = sm
	}

	return snap
}

// availability is the success ratio over the rolling outcome window. It is a
// display metric only; the availability gate never consults it.
func availability(outcomes []bool) float64 {
	if len(outcomes) == 0 {
		return 1.0
	}

	var successes int
	for _, ok := range outcomes {
		if ok {
			successes++
		}
	}

	return float64(successes) / float64(len(outcomes))
}

func average(durations []time.Duration) time.Duration {
	if len(durations) == 0 {
		return 0
	}

	var sum time.Duration
	for _, d := range durations {
		sum += d
	}

	return sum / time.Duration(len(durations))
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}

	index := int(float64(len(sorted)) * p)
	if index >= len(sorted) {
		index = len(sorted) - 1
	}

	return sorted[index]
}
