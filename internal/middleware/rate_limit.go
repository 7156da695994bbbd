package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/orbtao/connectify/backend/internal/ratelimit"
	apperrors "github.com/orbtao/connectify/backend/pkg/errors"
)

// RateLimit throttles mutating requests per authenticated user. Reads pass
// through untouched. Anonymous requests are keyed by client IP.
func RateLimit(limiter ratelimit.Limiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			switch c.Request().Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}
			key := UserID(c)
			if key == "" {
				key = "ip:" + c.RealIP()
			}
			if !limiter.Allow(key) {
				return apperrors.RateLimited("Too many requests")
			}
			return next(c)
		}
	}
}
