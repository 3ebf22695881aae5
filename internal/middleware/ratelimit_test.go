package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestLimiter(t *testing.T, cfg RateLimitConfig) (*RateLimiter, *fakeClock) {
	t.Helper()
	rl := NewRateLimiter(cfg)
	t.Cleanup(rl.Stop)
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	rl.now = clock.Now
	return rl, clock
}

func TestNewRateLimiter_Defaults(t *testing.T) {
	t.Parallel()
	rl, _ := newTestLimiter(t, RateLimitConfig{})

	if rl.rate != 100 || rl.window != time.Minute || rl.burst != 20 {
		t.Errorf("unexpected defaults rate=%d window=%v burst=%d", rl.rate, rl.window, rl.burst)
	}

	rl, _ = newTestLimiter(t, RateLimitConfig{Rate: 5, Burst: -1})
	if rl.burst != 0 {
		t.Errorf("negative burst should disable burst, got %d", rl.burst)
	}
}

func TestAllow_ExhaustsCapacity(t *testing.T) {
	t.Parallel()
	rl, _ := newTestLimiter(t, RateLimitConfig{Rate: 3, Window: time.Minute, Burst: 2})

	for i := 0; i < 5; i++ {
		allowed, remaining, _ := rl.Allow("1.2.3.4")
		if !allowed {
			t.Fatalf("request %d denied", i+1)
		}
		if remaining != 4-i {
			t.Errorf("request %d: remaining = %d, want %d", i+1, remaining, 4-i)
		}
	}

	allowed, remaining, retryAfter := rl.Allow("1.2.3.4")
	if allowed || remaining != 0 {
		t.Fatalf("sixth request should be denied")
	}
	if retryAfter != 20*time.Second {
		t.Errorf("retryAfter = %v, want 20s", retryAfter)
	}

	if allowed, _, _ := rl.Allow("5.6.7.8"); !allowed {
		t.Error("other client should have its own bucket")
	}
}

func TestAllow_Refills(t *testing.T) {
	t.Parallel()
	rl, clock := newTestLimiter(t, RateLimitConfig{Rate: 2, Window: time.Minute, Burst: -1})

	rl.Allow("k")
	rl.Allow("k")
	if allowed, _, _ := rl.Allow("k"); allowed {
		t.Fatal("expected denial once empty")
	}

	clock.Advance(30 * time.Second)
	if allowed, _, _ := rl.Allow("k"); !allowed {
		t.Fatal("expected one token after half a window")
	}
	if allowed, _, _ := rl.Allow("k"); allowed {
		t.Fatal("expected denial after spending the refilled token")
	}

	clock.Advance(time.Hour)
	_, remaining, _ := rl.Allow("k")
	if remaining != 1 {
		t.Errorf("refill should cap at capacity, remaining = %d", remaining)
	}
}

func TestAllow_Concurrent(t *testing.T) {
	t.Parallel()
	rl, _ := newTestLimiter(t, RateLimitConfig{Rate: 50, Burst: -1})

	var wg sync.WaitGroup
	var mu sync.Mutex
	granted := 0
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _, _ := rl.Allow("shared"); ok {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if granted != 50 {
		t.Errorf("granted %d requests, want 50", granted)
	}
}

func TestSweep_DropsIdleBuckets(t *testing.T) {
	t.Parallel()
	rl, clock := newTestLimiter(t, RateLimitConfig{Rate: 10, Window: time.Minute})

	rl.Allow("old")
	clock.Advance(90 * time.Second)
	rl.Allow("fresh")
	clock.Advance(45 * time.Second)
	rl.sweep()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if _, ok := rl.clients["old"]; ok {
		t.Error("idle bucket was kept")
	}
	if _, ok := rl.clients["fresh"]; !ok {
		t.Error("fresh bucket was dropped")
	}
}

func TestClientKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		trustProxy bool
		remote     string
		forwarded  string
		want       string
	}{
		{"remote host", false, "10.0.0.1:5123", "", "10.0.0.1"},
		{"forwarded ignored", false, "10.0.0.1:5123", "203.0.113.9", "10.0.0.1"},
		{"forwarded trusted", true, "10.0.0.1:5123", "203.0.113.9, 10.0.0.1", "203.0.113.9"},
		{"no port", false, "10.0.0.2", "", "10.0.0.2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl := &RateLimiter{trustProxy: tt.trustProxy}
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if got := rl.clientKey(req); got != tt.want {
				t.Errorf("clientKey = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Parallel()
	rl, _ := newTestLimiter(t, RateLimitConfig{Rate: 1, Window: 10 * time.Second, Burst: -1})
	h := RateLimit(rl)(okHandler("ok"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/builds", nil)
	req.RemoteAddr = "198.51.100.7:4000"

	rr := serve(h, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("first request: status %d", rr.Code)
	}
	if rr.Header().Get("X-RateLimit-Limit") != "1" || rr.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Errorf("unexpected headers %v", rr.Header())
	}

	rr = serve(h, req)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: status %d, want 429", rr.Code)
	}
	retry, err := strconv.Atoi(rr.Header().Get("Retry-After"))
	if err != nil || retry != 10 {
		t.Errorf("Retry-After = %q, want 10", rr.Header().Get("Retry-After"))
	}
}
