package httpserver

import (
	"context"
	"crypto/rand"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/oklog/ulid/v2"
	"golang.org/x/time/rate"

	"github.com/yndnr/honeymesh/internal/telemetry/logger"
	"github.com/yndnr/honeymesh/internal/telemetry/metric"
)

type contextKey string

// ContextKeyStartTime is the context key for request start time.
const ContextKeyStartTime contextKey = "start_time"

// maxRequestIDLength bounds request ids accepted from clients.
const maxRequestIDLength = 64

// Middleware wraps an http.Handler with additional functionality.
type Middleware func(http.Handler) http.Handler

// Chain chains multiple middlewares together. The first runs outermost.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// RequestID tags each request with an id, taken from X-Request-ID when the
// client sent a usable one and generated as a ULID otherwise.
func RequestID() Middleware {
	entropy := ulid.Monotonic(rand.Reader, 0)
	var mu sync.Mutex

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" || len(requestID) > maxRequestIDLength {
				mu.Lock()
				requestID = ulid.MustNew(ulid.Now(), entropy).String()
				mu.Unlock()
			}
			w.Header().Set("X-Request-ID", requestID)

			ctx := logger.WithRequestID(r.Context(), requestID)
			ctx = context.WithValue(ctx, ContextKeyStartTime, time.Now())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Recover turns a panic into a 500 response.
func Recover(log *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}
					log.ErrorContext(r.Context(), "panic recovered",
						"error", err,
						"path", r.URL.Path,
					)
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// Audit logs one line per request.
func Audit(log *slog.Logger, clientIP func(*http.Request) string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped := wrapResponseWriter(w)
			next.ServeHTTP(wrapped, r)

			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", wrapped.statusCode,
				"duration_ms", time.Since(startTime(r)).Milliseconds(),
				"client_ip", clientIP(r),
				"user_agent", r.UserAgent(),
			}
			switch {
			case wrapped.statusCode >= 500:
				log.ErrorContext(r.Context(), "request completed with error", attrs...)
			default:
				log.InfoContext(r.Context(), "request completed", attrs...)
			}
		})
	}
}

// Instrument records request counts and latencies per route template. It is
// a router middleware so that the matched route is known.
func Instrument(m *metric.Registry) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := wrapResponseWriter(w)
			next.ServeHTTP(wrapped, r)

			route := "unmatched"
			if cur := mux.CurrentRoute(r); cur != nil {
				if tpl, err := cur.GetPathTemplate(); err == nil {
					route = tpl
				}
			}
			m.RecordRequest(r.Method, route, strconv.Itoa(wrapped.statusCode))
			m.ObserveRequestDuration(r.Method, route, time.Since(start).Seconds())
		})
	}
}

// RateLimitConfig configures RateLimit.
type RateLimitConfig struct {
	// Rate is the sustained requests per second allowed per client.
	Rate float64
	// Burst is the bucket size.
	Burst int
	// IdleTTL drops state for clients quiet this long. Default 10m.
	IdleTTL time.Duration

	ClientIP func(*http.Request) string
	Metrics  *metric.Registry

	// Exempt reports requests that bypass the limiter entirely.
	Exempt func(*http.Request) bool
}

// RateLimit applies a token bucket per client address.
func RateLimit(cfg RateLimitConfig) Middleware {
	limiter := newClientLimiter(rate.Limit(cfg.Rate), cfg.Burst, cfg.IdleTTL)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Exempt != nil && cfg.Exempt(r) {
				next.ServeHTTP(w, r)
				return
			}
			if !limiter.allow(cfg.ClientIP(r), time.Now()) {
				cfg.Metrics.IncRateLimited()
				w.Header().Set("Retry-After", "1")
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type clientLimiter struct {
	mu        sync.Mutex
	clients   map[string]*visitor
	limit     rate.Limit
	burst     int
	ttl       time.Duration
	lastSweep time.Time
}

func newClientLimiter(limit rate.Limit, burst int, ttl time.Duration) *clientLimiter {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &clientLimiter{
		clients:   make(map[string]*visitor),
		limit:     limit,
		burst:     burst,
		ttl:       ttl,
		lastSweep: time.Now(),
	}
}

func (l *clientLimiter) allow(key string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) > l.ttl {
		for k, v := range l.clients {
			if now.Sub(v.lastSeen) > l.ttl {
				delete(l.clients, k)
			}
		}
		l.lastSweep = now
	}

	v, ok := l.clients[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

func (l *clientLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// ClientIPResolver returns a function extracting the visitor address. With
// trustForwardedFor the left-most X-Forwarded-For entry wins.
func ClientIPResolver(trustForwardedFor bool) func(*http.Request) string {
	return func(r *http.Request) string {
		if trustForwardedFor {
			if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
				first, _, _ := strings.Cut(xff, ",")
				if ip := strings.TrimSpace(first); net.ParseIP(ip) != nil {
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
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func wrapResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (w *responseWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.statusCode = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *responseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func startTime(r *http.Request) time.Time {
	if t, ok := r.Context().Value(ContextKeyStartTime).(time.Time); ok {
		return t
	}
	return time.Now()
}
