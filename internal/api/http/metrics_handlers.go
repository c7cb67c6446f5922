package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// MetricsSummary provides high-level metrics
type MetricsSummary struct {
	Timestamp        time.Time `json:"timestamp"`
	TotalRequests    int64     `json:"total_requests"`
	AverageLatencyMs float64   `json:"average_latency_ms"`
	ErrorRate        float64   `json:"error_rate"`
	ActiveTasks      int64     `json:"active_tasks"`
	PipesDefined     int64     `json:"pipes_defined"`
	PipeBytes        int64     `json:"pipe_bytes"`
	PipeErrors       int64     `json:"pipe_errors"`
	UptimeSeconds    float64   `json:"uptime_seconds"`
}

// MetricsJSON returns a summary of the collected metrics
func (h *Handlers) MetricsJSON(c *gin.Context) {
	if h.metrics == nil {
		c.JSON(http.StatusOK, MetricsSummary{Timestamp: time.Now()})
		return
	}

	snap := h.metrics.Snapshot()
	summary := MetricsSummary{
		Timestamp:     time.Now(),
		TotalRequests: snap.TotalRequests,
		ActiveTasks:   snap.ActiveTasks,
		PipesDefined:  snap.PipesDefined,
		PipeBytes:     snap.PipeBytes,
		PipeErrors:    snap.PipeErrors,
		UptimeSeconds: h.metrics.Uptime().Seconds(),
	}
	if snap.RequestCount > 0 {
		summary.AverageLatencyMs = snap.TotalDuration / float64(snap.RequestCount) * 1000
	}
	if snap.TotalRequests > 0 {
		summary.ErrorRate = float64(snap.TotalErrors) / float64(snap.TotalRequests)
	}
	c.JSON(http.StatusOK, summary)
}
