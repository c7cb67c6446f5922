// Package http exposes task and pipe operations over a JSON REST API.
//
// Endpoints:
//   - Service: /, /health, /version, /constants, /metrics/json
//   - Tasks: /tasks, /tasks/:task, /tasks/:task/log
//   - Pipes: /tasks/:task/pipes
//   - Task I/O: /tasks/:task/pipes/:pipe/{read,write,token,eof,close}
//   - Framework I/O: /tasks/:task/pipes/:pipe/{feed,feed/token,drain,drain/token}
//
// Payload bytes travel base64-encoded. Failures return {"error", "kind"}
// where kind is the stable error kind name; PipeFull maps to 503 so callers
// can retry it.
//
// Example Usage:
//
//	handlers := http.NewHandlers(tasks, metrics, logger)
//	handlers.Register(router)
package http
