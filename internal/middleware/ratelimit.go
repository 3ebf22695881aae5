package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tarnished-tactics/api/internal/model"
)

// RateLimiter is a per-client token bucket limiter. Clients are keyed by IP.
type RateLimiter struct {
	mu         sync.Mutex
	clients    map[string]*bucket
	rate       int           // Requests per window
	window     time.Duration // Time window
	burst      int           // Extra requests allowed on top of rate
	idle       time.Duration // Buckets unused this long are dropped
	trustProxy bool
	now        func() time.Time
	stop       chan struct{}
	done       chan struct{}
}

type bucket struct {
	tokens   float64
	lastSeen time.Time
}

// RateLimitConfig holds rate limiter configuration
type RateLimitConfig struct {
	Rate    int           // Requests per window (default 100)
	Window  time.Duration // Time window (default 1 minute)
	Burst   int           // Extra burst capacity (default 20, negative for none)
	Cleanup time.Duration // Sweep interval for idle buckets (default 5 minutes)

	// TrustProxy keys clients by the first X-Forwarded-For address
	TrustProxy bool
}

// NewRateLimiter creates a limiter and starts its cleanup goroutine.
// Call Stop when done.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.Rate <= 0 {
		cfg.Rate = 100
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.Burst == 0 {
		cfg.Burst = 20
	}
	if cfg.Cleanup <= 0 {
		cfg.Cleanup = 5 * time.Minute
	}

	if cfg.Burst < 0 {
		cfg.Burst = 0
	}

	rl := &RateLimiter{
		clients:    make(map[string]*bucket),
		rate:       cfg.Rate,
		window:     cfg.Window,
		burst:      cfg.Burst,
		idle:       2 * cfg.Window,
		trustProxy: cfg.TrustProxy,
		now:        time.Now,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	go rl.sweepLoop(cfg.Cleanup)
	return rl
}

// Stop ends the cleanup goroutine and waits for it to exit
func (rl *RateLimiter) Stop() {
	close(rl.stop)
	<-rl.done
}

func (rl *RateLimiter) sweepLoop(every time.Duration) {
	defer close(rl.done)

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.sweep()
		case <-rl.stop:
			return
		}
	}
}

func (rl *RateLimiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-rl.idle)
	for key, b := range rl.clients {
		if b.lastSeen.Before(cutoff) {
			delete(rl.clients, key)
		}
	}
}

func (rl *RateLimiter) capacity() float64 {
	return float64(rl.rate + rl.burst)
}

// Allow takes one token from key's bucket. retryAfter is how long until the
// next token when the request is denied.
func (rl *RateLimiter) Allow(key string) (allowed bool, remaining int, retryAfter time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b, ok := rl.clients[key]
	if !ok {
		b = &bucket{tokens: rl.capacity(), lastSeen: now}
		rl.clients[key] = b
	} else {
		perToken := rl.window / time.Duration(rl.rate)
		b.tokens = math.Min(rl.capacity(), b.tokens+float64(now.Sub(b.lastSeen))/float64(perToken))
		b.lastSeen = now
	}

	if b.tokens >= 1 {
		b.tokens--
		return true, int(b.tokens), 0
	}

	perToken := rl.window / time.Duration(rl.rate)
	wait := time.Duration((1 - b.tokens) * float64(perToken))
	return false, 0, wait
}

// clientKey identifies the caller for rate limiting
func (rl *RateLimiter) clientKey(r *http.Request) string {
	if rl.trustProxy {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			first, _, _ := strings.Cut(fwd, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimit returns a middleware that applies rate limiting
func RateLimit(limiter *RateLimiter) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, remaining, retryAfter := limiter.Allow(limiter.clientKey(r))

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limiter.rate))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

			if !allowed {
				seconds := int(math.Ceil(retryAfter.Seconds()))
				if seconds < 1 {
					seconds = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(seconds))
				model.NewRateLimitError(seconds).WriteJSON(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
