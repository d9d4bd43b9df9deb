package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type clientLimiter struct {
	general  *rate.Limiter
	strict   *rate.Limiter
	lastSeen time.Time
}

// RateLimitMiddleware keeps one token bucket pair per client IP. Paths under
// a strict prefix draw from the strict bucket. A non-positive general rate
// disables the general bucket.
type RateLimitMiddleware struct {
	generalRPM     int
	strictRPM      int
	strictPrefixes []string
	mu             sync.Mutex
	clients        map[string]*clientLimiter
}

func NewRateLimitMiddleware(generalRPM int, strictRPM int, strictPrefixes ...string) *RateLimitMiddleware {
	if strictRPM <= 0 {
		strictRPM = 10
	}

	prefixes := make([]string, 0, len(strictPrefixes))
	for _, prefix := range strictPrefixes {
		prefixes = append(prefixes, strings.ToLower(prefix))
	}

	return &RateLimitMiddleware{
		generalRPM:     generalRPM,
		strictRPM:      strictRPM,
		strictPrefixes: prefixes,
		clients:        map[string]*clientLimiter{},
	}
}

func (m *RateLimitMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		limiter := m.getLimiter(extractClientIP(r))

		target := limiter.general
		if m.isStrict(r.URL.Path) {
			target = limiter.strict
		}

		if target != nil && !target.Allow() {
			w.Header().Set("Retry-After", "60")
			writeErrorJSON(w, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (m *RateLimitMiddleware) isStrict(path string) bool {
	path = strings.ToLower(path)
	for _, prefix := range m.strictPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func (m *RateLimitMiddleware) getLimiter(clientIP string) *clientLimiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	if limiter, exists := m.clients[clientIP]; exists {
		limiter.lastSeen = time.Now()
		m.gcLocked()
		return limiter
	}

	created := &clientLimiter{
		strict:   rate.NewLimiter(rate.Every(time.Minute/time.Duration(m.strictRPM)), m.strictRPM),
		lastSeen: time.Now(),
	}
	if m.generalRPM > 0 {
		created.general = rate.NewLimiter(rate.Every(time.Minute/time.Duration(m.generalRPM)), m.generalRPM)
	}
	m.clients[clientIP] = created
	m.gcLocked()

	return created
}

func (m *RateLimitMiddleware) gcLocked() {
	if len(m.clients) < 1000 {
		return
	}

	cutoff := time.Now().Add(-10 * time.Minute)
	for ip, limiter := range m.clients {
		if limiter.lastSeen.Before(cutoff) {
			delete(m.clients, ip)
		}
	}
}

func extractClientIP(r *http.Request) string {
	forwarded := strings.TrimSpace(r.Header.Get("X-Forwarded-For"))
	if forwarded != "" {
		parts := strings.Split(forwarded, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}

	realIP := strings.TrimSpace(r.Header.Get("X-Real-IP"))
	if realIP != "" {
		return realIP
	}

	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}

	if strings.TrimSpace(r.RemoteAddr) == "" {
		return "unknown"
	}

	return r.RemoteAddr
}

// ClientIP exposes the address used for rate limiting so handlers can record
// it in audit entries.
func ClientIP(r *http.Request) string {
	return extractClientIP(r)
}
