package monitoring

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipeMetrics(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordPipeDefined("output")
	m.RecordPipeDefined("output")
	m.RecordPipeDefined("input")
	m.RecordPipeBytes("write", 4)
	m.RecordPipeBytes("write", 6)
	m.RecordPipeBytes("read", 0)
	m.RecordPipeError("read", "InvalidPipeDirection")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.PipesDefined.WithLabelValues("output")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PipesDefined.WithLabelValues("input")))
	assert.Equal(t, 10.0, testutil.ToFloat64(m.PipeBytes.WithLabelValues("write")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PipeErrors.WithLabelValues("read", "InvalidPipeDirection")))

	snap := m.Snapshot()
	assert.Equal(t, int64(3), snap.PipesDefined)
	assert.Equal(t, int64(10), snap.PipeBytes)
	assert.Equal(t, int64(1), snap.PipeErrors)
}

func TestTaskMetrics(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.IncTasksTotal()
	m.IncTasksTotal()
	m.SetTasksActive(1)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.TasksTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TasksActive))
	assert.Equal(t, int64(1), m.Snapshot().ActiveTasks)
}

func TestIndependentRegistries(t *testing.T) {
	// two collectors on separate registries must not collide
	reg1 := prometheus.NewRegistry()
	reg2 := prometheus.NewRegistry()
	NewMetrics(reg1)
	NewMetrics(reg2)

	families, err := reg1.Gather()
	require.NoError(t, err)
	types := make(map[string]dto.MetricType)
	for _, f := range families {
		types[f.GetName()] = f.GetType()
	}
	assert.Equal(t, dto.MetricType_GAUGE, types["pipecore_uptime_seconds"])
	assert.Equal(t, dto.MetricType_GAUGE, types["pipecore_tasks_active"])
}

func TestTimer(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	timer := NewTimer(m, "registry", "define")
	time.Sleep(time.Millisecond)
	timer.Stop("success")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.OperationCalls.WithLabelValues("registry", "define", "success")))

	// nil collector is tolerated
	NewTimer(nil, "registry", "define").Stop("success")
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics(prometheus.NewRegistry())

	router := gin.New()
	router.Use(Middleware(m))
	router.GET("/tasks/:task", func(c *gin.Context) {
		c.Status(http.StatusNotFound)
	})

	for _, task := range []string{"a", "b"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tasks/"+task, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/tasks/:task", "404")))
	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.TotalRequests)
	assert.Equal(t, int64(2), snap.TotalErrors)
}
