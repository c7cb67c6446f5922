package http

import "github.com/gin-gonic/gin"

// Register mounts every API route on r
func (h *Handlers) Register(r gin.IRouter) {
	r.GET("/", h.Root)
	r.GET("/health", h.Health)
	r.GET("/version", h.Version)
	r.GET("/constants", h.Constants)
	r.GET("/metrics/json", h.MetricsJSON)

	// Task lifecycle
	r.POST("/tasks", h.CreateTask)
	r.GET("/tasks", h.ListTasks)
	r.GET("/tasks/:task", h.GetTask)
	r.DELETE("/tasks/:task", h.FinalizeTask)
	r.POST("/tasks/:task/log", h.WriteLog)

	// Pipe registry
	r.POST("/tasks/:task/pipes", h.DefinePipe)
	r.GET("/tasks/:task/pipes", h.ListPipes)

	// Task-side pipe I/O
	p := r.Group("/tasks/:task/pipes/:pipe")
	p.GET("/read", h.ReadPipe)
	p.POST("/write", h.WritePipe)
	p.POST("/token", h.WriteScopeToken)
	p.GET("/token", h.ReadScopeToken)
	p.GET("/eof", h.PipeEOF)
	p.POST("/close", h.ClosePipe)

	// Framework-side endpoint
	p.POST("/feed", h.FeedPipe)
	p.POST("/feed/token", h.FeedScopeToken)
	p.GET("/drain", h.DrainPipe)
	p.GET("/drain/token", h.DrainScopeToken)
}
