/*
Package monitoring provides metrics collection.

# Overview

This package implements Prometheus-based metrics for pipecore: HTTP
requests, task lifecycle, pipe traffic and failures by error kind, and
timed operations. Collectors are registered on an injected
prometheus.Registerer so tests and embedded uses can keep their own
registry.

# Usage

	// Create metrics collector
	metrics := monitoring.NewMetrics(prometheus.DefaultRegisterer)

	// Add middleware to Gin router
	router.Use(monitoring.Middleware(metrics))

	// Pipe I/O reports through the Recorder methods
	io := pipeio.New(reg, pipeio.WithRecorder(metrics))

	// Time operations
	timer := monitoring.NewTimer(metrics, "registry", "define")
	// ... perform operation ...
	timer.Stop("success")

# Metrics Endpoint

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
*/
package monitoring
