package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fieldcrew/marketplace-api/internal/domain"
	"github.com/fieldcrew/marketplace-api/internal/infrastructure/redis"
)

type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (redis.Decision, error)
}

// RouteLimit configures a fixed-window limit for one route.
type RouteLimit struct {
	Name   string
	Limit  int
	Window time.Duration
}

// RateLimit throttles a route per client. The key combines the route with
// the caller's account (when authenticated) or IP. A limiter failure fails
// open: credential endpoints must stay reachable when redis is not.
func RateLimit(limiter RateLimiter, rl RouteLimit, writeErr WriteErrFunc) func(http.Handler) http.Handler {
	if rl.Window <= 0 {
		rl.Window = time.Minute
	}
	if rl.Name == "" {
		rl.Name = "unknown"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil {
				next.ServeHTTP(w, r)
				return
			}

			key := redis.RouteKey(rl.Name, accountOrIP(r))
			dec, err := limiter.Allow(r.Context(), key, rl.Limit, rl.Window)
			if err != nil {
				log.Warn().Err(err).Str("route", rl.Name).Msg("rate limiter unavailable, failing open")
				next.ServeHTTP(w, r)
				return
			}

			if !dec.Allowed {
				if dec.RetryAfter > 0 {
					w.Header().Set("Retry-After", fmt.Sprintf("%d", int(dec.RetryAfter.Seconds())))
				}
				writeErr(w, r, domain.ErrRateLimited(rl.Name))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// accountOrIP prefers the authenticated account; otherwise the client IP.
func accountOrIP(r *http.Request) string {
	if id, ok := IdentityFromContext(r.Context()); ok {
		return "a:" + id.AccountID
	}
	return "ip:" + clientIP(r)
}

func clientIP(r *http.Request) string {
	// Trust X-Forwarded-For only when the proxy in front is ours.
	xff := strings.TrimSpace(r.Header.Get("X-Forwarded-For"))
	if xff != "" {
		parts := strings.Split(xff, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	return strings.TrimSpace(r.RemoteAddr)
}
