package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Pinger is any dependency the health check can probe.
type Pinger func(ctx context.Context) error

// HealthHandler reports liveness plus the state of the optional
// dependencies. The gateway stays up when one of them is down, so the
// endpoint answers 200 with "degraded" rather than failing.
type HealthHandler struct {
	Checks map[string]Pinger
}

// Health is the plain liveness probe used by load balancers.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// Ready probes every registered dependency with a short timeout.
func (h *HealthHandler) Ready(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	status := "ok"
	deps := make(map[string]string, len(h.Checks))
	for name, ping := range h.Checks {
		if err := ping(ctx); err != nil {
			deps[name] = "down: " + err.Error()
			status = "degraded"
			continue
		}
		deps[name] = "up"
	}
	return c.JSON(http.StatusOK, echo.Map{"status": status, "dependencies": deps})
}
