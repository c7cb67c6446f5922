package monitoring

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestSize     *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Task metrics
	TasksActive prometheus.Gauge
	TasksTotal  prometheus.Counter

	// Pipe metrics
	PipesDefined *prometheus.CounterVec
	PipeBytes    *prometheus.CounterVec
	PipeErrors   *prometheus.CounterVec

	// Operation metrics
	OperationCalls    *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec

	startTime time.Time

	// Snapshot for JSON API - track current values
	snapshot MetricsSnapshot

	mu sync.RWMutex
}

// MetricsSnapshot holds current metric values for JSON API
type MetricsSnapshot struct {
	TotalRequests int64
	TotalErrors   int64
	ActiveTasks   int64
	PipesDefined  int64
	PipeBytes     int64
	PipeErrors    int64
	TotalDuration float64 // sum of all request durations
	RequestCount  int64   // count for averaging
}

// NewMetrics creates a metrics collector registered on reg. A nil reg
// selects the default Prometheus registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	m := &Metrics{
		startTime: time.Now(),

		// HTTP metrics
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pipecore_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pipecore_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		RequestSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pipecore_http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
			[]string{"method", "path"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pipecore_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
			[]string{"method", "path"},
		),

		// Task metrics
		TasksActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "pipecore_tasks_active",
				Help: "Number of tasks that have not been finalized",
			},
		),
		TasksTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "pipecore_tasks_total",
				Help: "Total number of tasks created",
			},
		),

		// Pipe metrics
		PipesDefined: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pipecore_pipes_defined_total",
				Help: "Total number of pipes defined",
			},
			[]string{"direction"},
		),
		PipeBytes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pipecore_pipe_bytes_total",
				Help: "Bytes moved through pipes",
			},
			[]string{"op"},
		),
		PipeErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pipecore_pipe_errors_total",
				Help: "Failed pipe operations",
			},
			[]string{"op", "kind"},
		),

		// Operation metrics
		OperationCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pipecore_operation_calls_total",
				Help: "Total number of timed operations",
			},
			[]string{"component", "op", "status"},
		),
		OperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pipecore_operation_duration_seconds",
				Help:    "Timed operation duration in seconds",
				Buckets: []float64{.00001, .0001, .001, .005, .01, .05, .1, .5, 1},
			},
			[]string{"component", "op"},
		),
	}

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "pipecore_uptime_seconds",
			Help: "Process uptime in seconds",
		},
		func() float64 { return m.Uptime().Seconds() },
	)

	return m
}

// Uptime returns the time since the collector was created
func (m *Metrics) Uptime() time.Duration {
	return time.Since(m.startTime)
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, reqSize, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.RequestSize.WithLabelValues(method, path).Observe(float64(reqSize))
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))

	// Update snapshot
	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.snapshot.TotalDuration += duration.Seconds()
	m.snapshot.RequestCount++
	if status != "" && (status[0] == '4' || status[0] == '5') {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordOperation records a timed operation
func (m *Metrics) RecordOperation(component, op, status string, duration time.Duration) {
	m.OperationCalls.WithLabelValues(component, op, status).Inc()
	m.OperationDuration.WithLabelValues(component, op).Observe(duration.Seconds())
}

// RecordPipeDefined counts a successful pipe definition
func (m *Metrics) RecordPipeDefined(direction string) {
	m.PipesDefined.WithLabelValues(direction).Inc()
	m.mu.Lock()
	m.snapshot.PipesDefined++
	m.mu.Unlock()
}

// RecordPipeBytes counts bytes moved by a pipe operation
func (m *Metrics) RecordPipeBytes(op string, n int) {
	if n <= 0 {
		return
	}
	m.PipeBytes.WithLabelValues(op).Add(float64(n))
	m.mu.Lock()
	m.snapshot.PipeBytes += int64(n)
	m.mu.Unlock()
}

// RecordPipeError counts a failed pipe operation by error kind
func (m *Metrics) RecordPipeError(op, kind string) {
	m.PipeErrors.WithLabelValues(op, kind).Inc()
	m.mu.Lock()
	m.snapshot.PipeErrors++
	m.mu.Unlock()
}

// SetTasksActive sets the number of live tasks
func (m *Metrics) SetTasksActive(count int) {
	m.TasksActive.Set(float64(count))
	m.mu.Lock()
	m.snapshot.ActiveTasks = int64(count)
	m.mu.Unlock()
}

// IncTasksTotal increments the created tasks counter
func (m *Metrics) IncTasksTotal() {
	m.TasksTotal.Inc()
}

// Snapshot returns the current values tracked for the JSON API
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}
