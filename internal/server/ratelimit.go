package server

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"careermatch/internal/errors"

	"golang.org/x/time/rate"
)

// minEvictionAge bounds how quickly idle client limiters may be evicted.
const minEvictionAge = 10 * time.Minute

// clientLimiter pairs a token bucket with the time it last served a request.
type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// LimiterManager hands out one token bucket per client key. Keys are either
// API keys or client IPs depending on server configuration.
type LimiterManager struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter

	rate     rate.Limit
	burst    int
	evictAge time.Duration

	done   chan struct{}
	logger *errors.Logger
}

// RateLimiter is the name the rest of the server package uses for the manager.
type RateLimiter = LimiterManager

// NewRateLimiter creates a manager allowing requestsPerMin sustained requests
// with bursts up to burstCapacity. Buckets idle for several windows are
// evicted by a background sweep; Close stops the sweep.
func NewRateLimiter(requestsPerMin int, window time.Duration, burstCapacity int, logger *errors.Logger) *LimiterManager {
	evictAge := 10 * window
	if evictAge < minEvictionAge {
		evictAge = minEvictionAge
	}

	m := &LimiterManager{
		clients:  make(map[string]*clientLimiter),
		rate:     rate.Limit(float64(requestsPerMin) / 60.0),
		burst:    burstCapacity,
		evictAge: evictAge,
		done:     make(chan struct{}),
		logger:   logger,
	}

	go m.sweepLoop()
	return m
}

// Allow reports whether a request for the given key fits its token bucket.
// It never blocks.
func (m *LimiterManager) Allow(key string) bool {
	m.mu.Lock()
	cl, ok := m.clients[key]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(m.rate, m.burst)}
		m.clients[key] = cl
	}
	cl.lastSeen = time.Now()
	m.mu.Unlock()

	return cl.limiter.Allow()
}

// GetStats returns current limiter statistics for the stats endpoint.
func (m *LimiterManager) GetStats() map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()

	return map[string]any{
		"active_limiters": len(m.clients),
		"rate_per_second": float64(m.rate),
		"rate_per_minute": float64(m.rate) * 60.0,
		"burst_capacity":  m.burst,
	}
}

func (m *LimiterManager) sweepLoop() {
	ticker := time.NewTicker(m.evictAge)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.evictIdle()
		case <-m.done:
			return
		}
	}
}

// evictIdle drops buckets that have not served a request within evictAge.
func (m *LimiterManager) evictIdle() {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-m.evictAge)
	for key, cl := range m.clients {
		if cl.lastSeen.Before(cutoff) {
			delete(m.clients, key)
		}
	}

	if m.logger != nil {
		m.logger.Debug("Rate limiter sweep completed",
			"remaining_limiters", len(m.clients))
	}
}

// Close stops the background sweep. Call during server shutdown.
func (m *LimiterManager) Close() {
	close(m.done)
}

// rateLimitMiddleware rejects requests whose client key has exhausted its
// token bucket. When limiting is disabled the middleware is a passthrough.
func (s *Server) rateLimitMiddleware() func(http.HandlerFunc) http.HandlerFunc {
	if s.RateLimit == nil || !s.RateLimit.Enabled {
		return func(next http.HandlerFunc) http.HandlerFunc { return next }
	}

	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			key := getRateLimitKey(r, s.RateLimit.ByAPIKey, s.RateLimit.ByIP)
			if key == "" {
				next(w, r)
				return
			}

			if !s.RateLimiter.Allow(key) {
				s.Logger.Info("Rate limit exceeded",
					"key", key,
					"endpoint", r.URL.Path,
					"client_ip", getClientIP(r))
				writeErrorResponse(w, "Rate limit exceeded", "Too many requests", http.StatusTooManyRequests)
				return
			}

			next(w, r)
		}
	}
}

// getRateLimitKey derives the bucket key for a request. API-key limiting
// takes precedence over IP limiting; an empty key means the request is not
// subject to limiting.
func getRateLimitKey(r *http.Request, byAPIKey, byIP bool) string {
	if byAPIKey {
		apiKey := r.Header.Get("X-API-Key")
		if apiKey == "" {
			if after, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
				apiKey = after
			}
		}
		if apiKey != "" {
			return "api:" + apiKey
		}
	}

	if byIP {
		return "ip:" + getClientIP(r)
	}

	return ""
}

// getClientIP resolves the client address, preferring proxy headers over the
// socket peer.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ip := parseFirstIP(xff); ip != "" {
			return ip
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		if net.ParseIP(xri) != nil {
			return xri
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// parseFirstIP returns the first valid address in a comma-separated list.
func parseFirstIP(ips string) string {
	for ip := range strings.SplitSeq(ips, ",") {
		ip = strings.TrimSpace(ip)
		if net.ParseIP(ip) != nil {
			return ip
		}
	}
	return ""
}
