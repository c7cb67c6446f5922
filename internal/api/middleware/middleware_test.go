package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/GriffinCanCode/AgentOS/pipecore/internal/infrastructure/logging"
)

// newRouter mounts mw in front of stub routes: a task listing, a pipe write
// answering 503 (a full pipe) and a task teardown answering 500.
func newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw...)
	r.GET("/tasks", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"tasks": []string{}, "request_id": GetRequestID(c)})
	})
	r.POST("/tasks/:task/pipes/:pipe/write", func(c *gin.Context) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "pipe full", "kind": "PipeFull"})
	})
	r.DELETE("/tasks/:task", func(c *gin.Context) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "boom", "kind": "Internal"})
	})
	return r
}

type request struct {
	method  string
	path    string
	addr    string
	headers map[string]string
}

func serve(r http.Handler, req request) *httptest.ResponseRecorder {
	if req.method == "" {
		req.method = http.MethodGet
	}
	if req.path == "" {
		req.path = "/tasks"
	}
	hr := httptest.NewRequest(req.method, req.path, nil)
	if req.addr != "" {
		hr.RemoteAddr = req.addr
	}
	for k, v := range req.headers {
		hr.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, hr)
	return w
}

func TestCORS(t *testing.T) {
	r := newRouter(RequestID(), CORS(DefaultCORSConfig()))

	tests := []struct {
		name       string
		req        request
		wantStatus int
		wantOrigin bool
	}{
		{
			name:       "browser request",
			req:        request{headers: map[string]string{"Origin": "http://dashboard.local"}},
			wantStatus: http.StatusOK,
			wantOrigin: true,
		},
		{
			name: "preflight for a pipe write",
			req: request{
				method: http.MethodOptions,
				path:   "/tasks/t/pipes/0/write",
				headers: map[string]string{
					"Origin":                        "http://dashboard.local",
					"Access-Control-Request-Method": http.MethodPost,
				},
			},
			wantStatus: http.StatusNoContent,
			wantOrigin: true,
		},
		{
			name:       "server to server call",
			req:        request{},
			wantStatus: http.StatusOK,
			wantOrigin: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(r, tt.req)
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantOrigin {
				assert.NotEmpty(t, w.Header().Get("Access-Control-Allow-Origin"))
			} else {
				assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
			}
		})
	}
}

func TestCORSRestrictedOrigins(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowOrigins = []string{"https://plumber.example"}
	r := newRouter(CORS(cfg))

	w := serve(r, request{headers: map[string]string{"Origin": "https://plumber.example"}})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://plumber.example", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, strings.ToLower(w.Header().Get("Access-Control-Expose-Headers")), "x-request-id")

	w = serve(r, request{headers: map[string]string{"Origin": "https://elsewhere.org"}})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRateLimitPerClient(t *testing.T) {
	r := newRouter(RateLimit(RateLimitConfig{RequestsPerSecond: 1, Burst: 2}))

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, serve(r, request{addr: "192.168.1.1:1234"}).Code, "request %d is within burst", i+1)
	}

	w := serve(r, request{addr: "192.168.1.1:1234"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"error":"rate limit exceeded","kind":"RateLimited"}`, w.Body.String())

	// another client has its own budget
	assert.Equal(t, http.StatusOK, serve(r, request{addr: "192.168.1.2:1234"}).Code)
}

func TestGlobalRateLimit(t *testing.T) {
	r := newRouter(GlobalRateLimit(RateLimitConfig{RequestsPerSecond: 1, Burst: 2}))

	for i := 0; i < 2; i++ {
		addr := fmt.Sprintf("192.168.1.%d:1234", i+10)
		assert.Equal(t, http.StatusOK, serve(r, request{addr: addr}).Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, serve(r, request{addr: "192.168.1.99:1234"}).Code)
}

func TestRateLimitForgetsClientsBeyondCapacity(t *testing.T) {
	r := newRouter(RateLimit(RateLimitConfig{RequestsPerSecond: 1, Burst: 1, MaxClients: 1, IdleTTL: time.Minute}))

	assert.Equal(t, http.StatusOK, serve(r, request{addr: "10.0.0.1:1"}).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(r, request{addr: "10.0.0.1:1"}).Code)

	// a second client pushes the first one out of the table
	assert.Equal(t, http.StatusOK, serve(r, request{addr: "10.0.0.2:1"}).Code)
	assert.Equal(t, http.StatusOK, serve(r, request{addr: "10.0.0.1:1"}).Code)
}

func TestDefaults(t *testing.T) {
	cors := DefaultCORSConfig()
	assert.Equal(t, []string{"*"}, cors.AllowOrigins)
	assert.Contains(t, cors.AllowMethods, http.MethodDelete)
	assert.Contains(t, cors.AllowHeaders, RequestIDHeader)
	assert.False(t, cors.AllowCredentials)

	rl := DefaultRateLimitConfig()
	assert.Equal(t, 100, rl.RequestsPerSecond)
	assert.Equal(t, 200, rl.Burst)
	assert.Equal(t, uint64(10000), rl.MaxClients)
	assert.Equal(t, 10*time.Minute, rl.IdleTTL)
}

func TestRequestID(t *testing.T) {
	r := newRouter(RequestID())

	w := serve(r, request{})
	rid := w.Header().Get(RequestIDHeader)
	assert.True(t, strings.HasPrefix(rid, "req_"), rid)
	assert.Contains(t, w.Body.String(), rid)

	w = serve(r, request{headers: map[string]string{RequestIDHeader: "trace-42"}})
	assert.Equal(t, "trace-42", w.Header().Get(RequestIDHeader))

	// oversized ids are replaced
	w = serve(r, request{headers: map[string]string{RequestIDHeader: strings.Repeat("x", 200)}})
	assert.True(t, strings.HasPrefix(w.Header().Get(RequestIDHeader), "req_"))
}

func TestAccessLog(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := &logging.Logger{Logger: zap.New(core)}
	r := newRouter(RequestID(), AccessLog(logger))

	serve(r, request{})
	serve(r, request{method: http.MethodPost, path: "/tasks/t/pipes/0/write"})
	serve(r, request{method: http.MethodDelete, path: "/tasks/t"})

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, "/tasks", entries[0].ContextMap()["path"])
	assert.Equal(t, zapcore.DebugLevel, entries[1].Level, "a full pipe is not a server fault")
	assert.Equal(t, int64(503), entries[1].ContextMap()["status"])
	assert.NotEmpty(t, entries[1].ContextMap()["request_id"])
	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
}

func BenchmarkRateLimit(b *testing.B) {
	r := newRouter(RateLimit(DefaultRateLimitConfig()))
	req := request{addr: "192.168.1.1:1234"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		serve(r, req)
	}
}
