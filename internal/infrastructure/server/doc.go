// Package server assembles pipecore: logger, metrics, type catalog, task
// manager, middleware and routes, behind one http.Server with graceful
// shutdown.
package server
