package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// KeyFunc extracts the bucket key for a request: the authenticated user id
// for per-account limits, the client IP for anonymous ones.
type KeyFunc func(r *http.Request) string

// KeyByUserID buckets by the authenticated user. Falls back to IP when the
// limiter is mounted before Auth by mistake.
func KeyByUserID(r *http.Request) string {
	if userID, ok := GetUserID(r.Context()); ok {
		return userID.String()
	}
	return KeyByIP(r)
}

// KeyByIP buckets by remote address, honoring X-Forwarded-For from the
// reverse proxy.
func KeyByIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type rateLimiter struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry
	limit   rate.Limit
	burst   int
	keyFn   KeyFunc
}

// RateLimit allows up to limit requests per key per window. Buckets refill
// continuously, so a client that exhausts the window regains capacity
// gradually rather than all at once. A limit below 1 is treated as 1; a
// rate limiter that admits nothing would make its routes unreachable.
func RateLimit(limit int, window time.Duration, keyFn KeyFunc) func(http.Handler) http.Handler {
	if limit < 1 {
		limit = 1
	}
	rl := &rateLimiter{
		entries: make(map[string]*limiterEntry),
		limit:   rate.Every(window / time.Duration(limit)),
		burst:   limit,
		keyFn:   keyFn,
	}
	go rl.sweep(window)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.allow(rl.keyFn(r)) {
				writeAuthError(w, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (rl *rateLimiter) allow(key string) bool {
	rl.mu.Lock()
	entry, ok := rl.entries[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.entries[key] = entry
	}
	entry.lastSeen = time.Now()
	rl.mu.Unlock()

	return entry.limiter.Allow()
}

// sweep drops buckets idle for more than two windows so the map does not
// grow with every IP ever seen.
func (rl *rateLimiter) sweep(window time.Duration) {
	ticker := time.NewTicker(window)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-2 * window)
		rl.mu.Lock()
		for key, entry := range rl.entries {
			if entry.lastSeen.Before(cutoff) {
				delete(rl.entries, key)
			}
		}
		rl.mu.Unlock()
	}
}
