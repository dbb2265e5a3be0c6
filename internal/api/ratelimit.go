// Rate limiter for the simulation endpoint — integration is cheap but
// not free, and a tight request loop shouldn't monopolize the process.
// Simple fixed-window counter per client IP.
package api

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RateLimiter tracks request counts per IP within a fixed window.
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	maxRate int
	length  time.Duration
}

type window struct {
	count   int
	started time.Time
}

// NewRateLimiter allows maxRate requests per window length per IP.
func NewRateLimiter(maxRate int, length time.Duration) *RateLimiter {
	return &RateLimiter{
		windows: make(map[string]*window),
		maxRate: maxRate,
		length:  length,
	}
}

// Allow records a request from ip and reports whether it is within the
// limit. Stale windows are pruned opportunistically.
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if len(rl.windows) > 1024 {
		for k, w := range rl.windows {
			if now.Sub(w.started) > 2*rl.length {
				delete(rl.windows, k)
			}
		}
	}

	w, ok := rl.windows[ip]
	if !ok || now.Sub(w.started) >= rl.length {
		rl.windows[ip] = &window{count: 1, started: now}
		return true
	}
	if w.count < rl.maxRate {
		w.count++
		return true
	}
	return false
}

// RetryAfter returns seconds until the window resets for this IP.
func (rl *RateLimiter) RetryAfter(ip string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.windows[ip]
	if !ok {
		return 0
	}
	remaining := rl.length - time.Since(w.started)
	if remaining < 0 {
		return 0
	}
	return int(remaining.Seconds()) + 1
}

// RateLimitMiddleware wraps a handler; over-limit requests get 429.
func RateLimitMiddleware(rl *RateLimiter, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !rl.Allow(ip) {
			w.Header().Set("Retry-After", strconv.Itoa(rl.RetryAfter(ip)))
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}

// clientIP prefers the first X-Forwarded-For hop, falling back to the
// connection's remote address.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if i := strings.IndexByte(xff, ','); i >= 0 {
			return strings.TrimSpace(xff[:i])
		}
		return strings.TrimSpace(xff)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
