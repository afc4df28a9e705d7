package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter enforces a per-client token bucket on HTTP requests.
// It uses the IPExtractor interface to extract client IP addresses,
// allowing flexible IP extraction strategies (RemoteAddr or trusted proxy headers).
type RateLimiter struct {
	// limit is the sustained request rate allowed per client
	limit rate.Limit

	// burst is the maximum number of requests a client may send at once
	burst int

	// ipExtractor extracts the client IP from HTTP requests
	ipExtractor IPExtractor

	// mu protects the clients map from concurrent access
	mu sync.Mutex

	// clients holds one token bucket per client IP
	clients map[string]*rateLimitClient
}

// rateLimitClient pairs a token bucket with its last activity time so idle
// entries can be evicted.
type rateLimitClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a new RateLimiter with the specified parameters.
//
// Parameters:
//   - rps: Sustained requests per second allowed per client IP
//   - burst: Maximum burst size per client IP
//   - ipExtractor: IP extraction strategy (RemoteAddrExtractor or TrustedProxyExtractor)
//
// Example:
//
//	// Default secure configuration (no proxy trust)
//	limiter := NewRateLimiter(10, 20, &RemoteAddrExtractor{})
//
//	// With trusted proxy configuration
//	proxyConfig := TrustedProxyConfig{Enabled: true, AllowedCIDRs: [...]}
//	limiter := NewRateLimiter(10, 20, NewTrustedProxyExtractor(proxyConfig))
func NewRateLimiter(rps float64, burst int, ipExtractor IPExtractor) *RateLimiter {
	return &RateLimiter{
		limit:       rate.Limit(rps),
		burst:       burst,
		ipExtractor: ipExtractor,
		clients:     make(map[string]*rateLimitClient),
	}
}

// Middleware returns an HTTP middleware handler that enforces rate limiting.
// It extracts the client IP using the configured IPExtractor and takes one
// token from that client's bucket.
//
// Behavior:
//   - If the client has a token available, the request proceeds to the next handler
//   - If the bucket is empty, returns 429 Too Many Requests with a Retry-After hint
//   - If IP extraction fails, logs a warning and uses RemoteAddr as fallback
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, err := rl.ipExtractor.ExtractIP(r)
		if err != nil {
			slog.Warn("rate limiter: IP extraction failed, using RemoteAddr fallback",
				slog.String("error", err.Error()),
				slog.String("remote_addr", r.RemoteAddr),
			)
			ip, err = extractIPFromAddr(r.RemoteAddr)
			if err != nil {
				slog.Error("rate limiter: RemoteAddr extraction failed",
					slog.String("error", err.Error()),
					slog.String("remote_addr", r.RemoteAddr),
				)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
		}

		if !rl.limiterFor(ip).Allow() {
			slog.Warn("rate limit exceeded",
				slog.String("ip", ip),
				slog.String("path", r.URL.Path),
				slog.Float64("rps", float64(rl.limit)),
				slog.Int("burst", rl.burst),
			)
			w.Header().Set("Retry-After", "1")
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// limiterFor returns the token bucket for the given IP, creating it on first
// sight, and stamps the client's activity time.
func (rl *RateLimiter) limiterFor(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	c, ok := rl.clients[ip]
	if !ok {
		c = &rateLimitClient{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[ip] = c
	}
	c.lastSeen = time.Now()
	return c.limiter
}

// CleanupExpired removes buckets that have been idle longer than maxIdle.
// This method should be called periodically to prevent memory growth from
// one-off clients.
func (rl *RateLimiter) CleanupExpired(maxIdle time.Duration) {
	cutoff := time.Now().Add(-maxIdle)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for ip, c := range rl.clients {
		if c.lastSeen.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}

// ActiveClients returns the number of client buckets currently tracked.
func (rl *RateLimiter) ActiveClients() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

// StartCleanup runs CleanupExpired on the given interval until the context
// is cancelled. Intended to run as a background goroutine from main.
func (rl *RateLimiter) StartCleanup(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("rate limit cleanup started",
		slog.Duration("interval", interval),
		slog.Duration("max_idle", maxIdle))

	for {
		select {
		case <-ctx.Done():
			slog.Info("rate limit cleanup stopped")
			return
		case <-ticker.C:
			before := rl.ActiveClients()
			rl.CleanupExpired(maxIdle)
			after := rl.ActiveClients()
			if before != after {
				slog.Debug("rate limit cleanup removed idle clients",
					slog.Int("removed", before-after),
					slog.Int("remaining", after))
			}
		}
	}
}
