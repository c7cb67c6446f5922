// Package main is the entry point for the pipecore server.
//
// pipecore hosts data-flow tasks in process and exposes their typed pipes
// over HTTP: tasks define pipes, write and read bytes and scope tokens,
// and the surrounding framework feeds their inputs and drains their
// outputs.
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//   - Defaults for development
//
// Usage:
//
//	# Production mode
//	./server -port 8000 -types 'types/**/*.{yaml,toml}'
//
//	# Development mode (colored logs, debug level)
//	./server -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown, finalizing every live task
package main
