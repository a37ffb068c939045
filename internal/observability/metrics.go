package observability

import (
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters.
type Metrics struct {
	mu           sync.Mutex
	requestCount map[string]int64
	errorCount   map[string]int64
	authFailures map[string]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount: make(map[string]int64),
		errorCount:   make(map[string]int64),
		authFailures: make(map[string]int64),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + strconv.Itoa(status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// RecordAuthFailure counts failed authentication attempts per channel and
// reason, for spotting abuse patterns.
func (m *Metrics) RecordAuthFailure(channel, reason string) {
	if m == nil {
		return
	}
	key := channel + "|" + reason
	m.mu.Lock()
	defer m.mu.Unlock()
	m.authFailures[key]++
}

// AuthFailures returns a snapshot of the auth-failure counters.
func (m *Metrics) AuthFailures() map[string]int64 {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	snapshot := make(map[string]int64, len(m.authFailures))
	for k, v := range m.authFailures {
		snapshot[k] = v
	}
	return snapshot
}
