// Package config loads pipecore settings from the environment with
// envconfig. Load validates the result; cmd/server applies flag overrides
// on top and validates again.
//
//	PORT, HOST, HTTP_COMPRESSION      HTTP listener
//	LOG_LEVEL, LOG_DEV                zap level and console output
//	PIPE_CAPACITY                     bytes buffered per pipe
//	TYPE_CATALOG, TYPE_CACHE_SIZE     named types and parse cache
//	RATE_LIMIT_RPS, RATE_LIMIT_BURST,
//	RATE_LIMIT_ENABLED                per-client request budget
//	PIPECORE_VERSION                  reported by /version
package config
