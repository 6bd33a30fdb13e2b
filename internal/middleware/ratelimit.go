package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"time"

	"partsportal/internal/caching"
	"partsportal/internal/common"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

// RateLimit rejects callers exceeding limit requests per window with 429.
// Callers are identified by token subject, falling back to a hash of the
// token and then to the client IP. Limiter failures let the request through.
func RateLimit(limiter caching.RateLimiter, limit int, window time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if limiter == nil || limit <= 0 {
			return next
		}
		return func(c echo.Context) error {
			allowed, err := limiter.Allow(c.Request().Context(), callerKey(c), limit, window)
			if err != nil {
				log.Warnf("rate limiter unavailable: %v", err)
				return next(c)
			}
			if !allowed {
				return echo.NewHTTPError(http.StatusTooManyRequests, "Rate limit exceeded")
			}
			return next(c)
		}
	}
}

func callerKey(c echo.Context) string {
	ctx := c.Request().Context()
	if sub, ok := common.GetSubjectFromContext(ctx); ok {
		return "sub:" + sub
	}
	if token, ok := common.GetTokenFromContext(ctx); ok {
		sum := sha256.Sum256([]byte(token))
		return "tok:" + hex.EncodeToString(sum[:8])
	}
	return "ip:" + c.RealIP()
}
