package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Nayuta9382/taskdeck/internal/database"
)

// RateLimitConfig defines rate limiting parameters for one fixed window.
type RateLimitConfig struct {
	Limit     int
	Window    time.Duration
	KeyPrefix string
}

// DefaultRateLimitConfig is the site-wide limit applied to every request.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Limit:     200,
		Window:    time.Minute,
		KeyPrefix: "ratelimit:general",
	}
}

// LoginRateLimitConfig is the stricter limit applied to credential checks.
func LoginRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Limit:     5,
		Window:    5 * time.Minute,
		KeyPrefix: "ratelimit:login",
	}
}

// RateLimit returns a fixed-window rate limiter backed by Redis. When the
// limit is exceeded the request is handed to onLimit instead of next.
// On Redis errors the request is allowed through.
func RateLimit(redis *database.Redis, cfg RateLimitConfig, onLimit http.HandlerFunc) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := fmt.Sprintf("%s:%s", cfg.KeyPrefix, getRealIP(r))

			count, err := redis.IncrWithExpire(r.Context(), key, cfg.Window)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			remaining := cfg.Limit - int(count)
			if remaining < 0 {
				remaining = 0
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

			if int(count) > cfg.Limit {
				w.Header().Set("Retry-After", strconv.Itoa(int(cfg.Window.Seconds())))
				onLimit(w, r)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// getRealIP extracts the real client IP, considering proxies.
func getRealIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}
	if xrip := r.Header.Get("X-Real-IP"); xrip != "" {
		return xrip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
