package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"projectgateway/internal/adapters/ratelimit"
	h "projectgateway/internal/delivery/http/helpers"
)

// RateLimit returns a wrapper that admits at most limit requests per window per client IP for purpose.
// The client IP comes from proxies; forwarded headers from untrusted peers are ignored.
// Store errors are logged and the request is let through.
func RateLimit(limiter *ratelimit.Limiter, proxies *ratelimit.TrustedProxies, purpose string, limit int, window time.Duration, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			key := ratelimit.Key(purpose, proxies.ClientIP(r))
			decision, err := limiter.Check(r.Context(), key, limit, window)
			if err != nil {
				logger.WarnContext(r.Context(), "rate limit check failed", "purpose", purpose, "err", err)
				next(w, r)
				return
			}
			if !decision.Allowed {
				h.WriteRateLimited(w, decision.RetryAfterSeconds)
				return
			}
			next(w, r)
		}
	}
}
