package handler

import (
	"net"
	"net/http"
	"time"

	"github.com/boddenberg/pix-gateway-proxy/internal/infra/cache"
	"github.com/boddenberg/pix-gateway-proxy/internal/infra/observability"
	"github.com/boddenberg/pix-gateway-proxy/internal/port"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RateLimitMiddleware limits each client IP to rps requests per second with
// the given burst. Idle clients are forgotten after idleTTL. rps <= 0
// disables limiting.
func RateLimitMiddleware(rps float64, burst int, idleTTL time.Duration, metrics *observability.Metrics, logger *zap.Logger) func(http.Handler) http.Handler {
	if rps <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if burst < 1 {
		burst = 1
	}

	var visitors port.Cache[*rate.Limiter] = cache.New[*rate.Limiter](idleTTL)
	limit := rate.Limit(rps)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			limiter := visitors.GetOrSet(ip, func() *rate.Limiter {
				return rate.NewLimiter(limit, burst)
			})

			if !limiter.Allow() {
				metrics.IncrRateLimited()
				logger.Warn("rate limit exceeded",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", ip),
				)
				w.Header().Set("Retry-After", "1")
				writeError(w, http.StatusTooManyRequests, "Too many requests, try again later")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP strips the port from RemoteAddr. middleware.RealIP has already
// replaced it with the forwarded address when one was sent.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
