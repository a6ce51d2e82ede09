package httpserver

import (
	"net/http"
	"strings"
	"sync"
	"time"
)

// rateLimiter tracks request counts per client IP in fixed one-minute
// windows. Only mutating poll and vote endpoints are throttled.
type rateLimiter struct {
	mu        sync.Mutex
	perMinute int
	windows   map[string]*rateWindow
	now       func() time.Time
}

type rateWindow struct {
	start time.Time
	count int
}

func newRateLimiter(perMinute int) *rateLimiter {
	if perMinute <= 0 {
		perMinute = 10
	}
	return &rateLimiter{
		perMinute: perMinute,
		windows:   make(map[string]*rateWindow),
		now:       time.Now,
	}
}

func (l *rateLimiter) allow(clientIP string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.evictStale(now)
	window, ok := l.windows[clientIP]
	if !ok || now.Sub(window.start) >= time.Minute {
		l.windows[clientIP] = &rateWindow{start: now, count: 1}
		return true
	}
	if window.count >= l.perMinute {
		return false
	}
	window.count++
	return true
}

// evictStale drops windows whose minute has elapsed so the per-IP map does
// not grow for the lifetime of the process. Caller holds l.mu.
func (l *rateLimiter) evictStale(now time.Time) {
	for ip, window := range l.windows {
		if now.Sub(window.start) >= time.Minute {
			delete(l.windows, ip)
		}
	}
}

// isThrottledRoute marks the write paths subject to per-IP throttling.
// Reads and auth endpoints are exempt.
func isThrottledRoute(r *http.Request) bool {
	if r.Method == http.MethodGet {
		return false
	}
	return strings.HasPrefix(r.URL.Path, "/api/polls") || strings.HasPrefix(r.URL.Path, "/api/votes")
}

func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil && isThrottledRoute(r) {
			clientIP := resolveClientIP(r)
			if !s.limiter.allow(clientIP) {
				s.logger.Warn("request throttled",
					"event", "http_rate_limited",
					"module", "internal/platform/httpserver",
					"layer", "platform",
					"client_ip", clientIP,
					"path", r.URL.Path,
				)
				writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded, please try again later"})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// auditLogMiddleware records every mutating request with its outcome.
func (s *Server) auditLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			next.ServeHTTP(w, r)
			return
		}
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(recorder, r)
		s.logger.Info("request audited",
			"event", "http_request_audited",
			"module", "internal/platform/httpserver",
			"layer", "platform",
			"method", r.Method,
			"path", r.URL.Path,
			"status", recorder.status,
			"client_ip", resolveClientIP(r),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := w.Header()
		header.Set("X-Content-Type-Options", "nosniff")
		header.Set("X-Frame-Options", "DENY")
		header.Set("X-XSS-Protection", "1; mode=block")
		header.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			header.Set("Cache-Control", "no-cache, no-store, must-revalidate")
			header.Set("Pragma", "no-cache")
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
