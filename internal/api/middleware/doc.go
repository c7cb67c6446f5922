// Package middleware holds the gin middleware in front of the pipecore API:
// request ids, access logging, CORS and token-bucket rate limiting.
//
// RateLimit keeps one limiter per client IP in a ttlcache bounded by
// MaxClients, so idle or excess clients are forgotten instead of growing
// the table. Rejections answer 429 with kind RateLimited, in the same
// {"error", "kind"} shape as API errors.
//
//	router.Use(middleware.RequestID(), middleware.AccessLog(logger))
//	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
//	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
package middleware
