package middleware

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	"enzo/internal/apperr"
	"enzo/internal/envelope"
	"enzo/internal/logging"
	"enzo/internal/ratelimit"
)

// RateLimit limits requests per authenticated user, or per client address
// when no user is attached. Limiter errors let the request through.
func RateLimit(limiter ratelimit.Limiter, limit int, window time.Duration) func(http.Handler) http.Handler {
	return limitBy(limiter, limit, window, rateLimitKey)
}

// ClientRateLimit limits requests per client address before any token is
// verified, so failed authentication attempts count too. Its budget is
// separate from RateLimit's.
func ClientRateLimit(limiter ratelimit.Limiter, limit int, window time.Duration) func(http.Handler) http.Handler {
	return limitBy(limiter, limit, window, func(r *http.Request) string {
		return "client:" + clientIP(r)
	})
}

func limitBy(limiter ratelimit.Limiter, limit int, window time.Duration, keyFor func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil || limit <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyFor(r)
			decision, err := limiter.Allow(r.Context(), key, limit, window)
			if err != nil {
				logging.FromContext(r.Context()).Warn("rate limiter failed", slog.Any("error", err))
				next.ServeHTTP(w, r)
				return
			}

			reset := resetSeconds(decision.ResetAt, time.Now())
			h := w.Header()
			h.Set("RateLimit-Limit", strconv.Itoa(decision.Limit))
			h.Set("RateLimit-Remaining", strconv.Itoa(decision.Remaining))
			h.Set("RateLimit-Reset", strconv.Itoa(reset))

			if !decision.Allowed {
				h.Set("Retry-After", strconv.Itoa(reset))
				envelope.WriteError(w, apperr.New(apperr.KindRateLimited, "Too many requests"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func rateLimitKey(r *http.Request) string {
	if u, ok := GetUser(r.Context()); ok {
		return "user:" + u.ID.String()
	}
	return "ip:" + clientIP(r)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func resetSeconds(resetAt, now time.Time) int {
	if resetAt.IsZero() || !resetAt.After(now) {
		return 0
	}
	return int(math.Ceil(resetAt.Sub(now).Seconds()))
}
