package monitoring

import (
	"math"
	"runtime"
	"sync"
	"time"
)

// ewmaAlpha weights the newest sample of the moving averages
const ewmaAlpha = 0.1

// Snapshot is a point-in-time copy of the editing server's metrics
type Snapshot struct {
	StartedAt time.Time `json:"started_at"`
	Uptime    string    `json:"uptime"`

	Requests       int64 `json:"requests"`
	ServerErrors   int64 `json:"server_errors"`
	AvgRequestTime int64 `json:"avg_request_time_us"`

	Edits                int64            `json:"edits"`
	Exports              map[string]int64 `json:"exports"`
	AvgExportTime        int64            `json:"avg_export_time_us"`
	WebSocketConnections int64            `json:"websocket_connections"`

	Goroutines int    `json:"goroutines"`
	HeapMB     int64  `json:"heap_mb"`
	GCCycles   uint32 `json:"gc_cycles"`
}

// ServerMetrics collects counters for the editing server. Memory figures
// are read when a snapshot is taken.
type ServerMetrics struct {
	mu sync.Mutex

	startedAt      time.Time
	requests       int64
	serverErrors   int64
	avgRequestTime time.Duration
	edits          int64
	exports        map[string]int64
	avgExportTime  time.Duration
	wsConnections  int64
}

// NewServerMetrics creates an empty metrics collector
func NewServerMetrics() *ServerMetrics {
	return &ServerMetrics{
		startedAt: time.Now(),
		exports:   make(map[string]int64),
	}
}

// RecordRequest records one HTTP request; 5xx statuses count as errors
func (m *ServerMetrics) RecordRequest(status int, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests++
	if status >= 500 {
		m.serverErrors++
	}
	m.avgRequestTime = movingAverage(m.avgRequestTime, duration)
}

// RecordEdit records one applied session edit
func (m *ServerMetrics) RecordEdit() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edits++
}

// RecordExport records a successful export in format
func (m *ServerMetrics) RecordExport(format string, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.exports[format]++
	m.avgExportTime = movingAverage(m.avgExportTime, duration)
}

// RecordWebSocketConnection records an accepted websocket client
func (m *ServerMetrics) RecordWebSocketConnection() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wsConnections++
}

// Snapshot returns a copy of the current metrics
func (m *ServerMetrics) Snapshot() Snapshot {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	m.mu.Lock()
	defer m.mu.Unlock()

	exports := make(map[string]int64, len(m.exports))
	for format, n := range m.exports {
		exports[format] = n
	}

	return Snapshot{
		StartedAt:            m.startedAt,
		Uptime:               time.Since(m.startedAt).Round(time.Second).String(),
		Requests:             m.requests,
		ServerErrors:         m.serverErrors,
		AvgRequestTime:       m.avgRequestTime.Microseconds(),
		Edits:                m.edits,
		Exports:              exports,
		AvgExportTime:        m.avgExportTime.Microseconds(),
		WebSocketConnections: m.wsConnections,
		Goroutines:           runtime.NumGoroutine(),
		HeapMB:               safeUint64ToInt64(mem.HeapAlloc) / (1024 * 1024),
		GCCycles:             mem.NumGC,
	}
}

// movingAverage folds sample into an exponential moving average
func movingAverage(avg, sample time.Duration) time.Duration {
	if avg == 0 {
		return sample
	}
	return time.Duration(float64(avg)*(1-ewmaAlpha) + float64(sample)*ewmaAlpha)
}

// safeUint64ToInt64 converts val, capping at math.MaxInt64
func safeUint64ToInt64(val uint64) int64 {
	if val > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(val)
}
