// Package middleware provides HTTP middleware for the Tarnished Tactics API.
//
// # Available Middleware
//
//   - Recovery: turns panics into a 500 {"error": ...} response
//   - RequestID: propagates or generates X-Request-ID
//   - Logger: one structured log line per request
//   - CORS: cross-origin headers and preflight answers
//   - RateLimit: token bucket limiting per client IP
//   - Compress: gzip responses when the client accepts it
//
// Compose them with Chain; the first middleware listed runs outermost:
//
//	h := middleware.Chain(mux,
//	    middleware.Recovery,
//	    middleware.RequestID,
//	    middleware.Logger,
//	    middleware.CORS(origins),
//	    middleware.RateLimit(limiter),
//	)
package middleware
