package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Pinger reports whether a backing service is reachable.
type Pinger func(ctx context.Context) error

type HealthHandler struct {
	service string
	ping    Pinger
}

// NewHealthHandler builds the health check. A nil ping always reports healthy.
func NewHealthHandler(service string, ping Pinger) *HealthHandler {
	return &HealthHandler{service: service, ping: ping}
}

func (h *HealthHandler) HealthCheck(c echo.Context) error {
	if h.ping != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := h.ping(ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{
				"status":  "unhealthy",
				"service": h.service,
			})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":  "healthy",
		"service": h.service,
	})
}
