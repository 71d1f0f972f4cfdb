package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// HealthCheck reports whether one backend is reachable.
type HealthCheck struct {
	Name string
	Ping func(ctx context.Context) error
}

// StatusHandler serves liveness and backend connectivity.
type StatusHandler struct {
	checks  []HealthCheck
	info    fiber.Map
	timeout time.Duration
}

// NewStatusHandler creates a StatusHandler. info is merged into every
// response (auth strategy, storage mode, ...).
func NewStatusHandler(info fiber.Map, checks ...HealthCheck) *StatusHandler {
	return &StatusHandler{
		checks:  checks,
		info:    info,
		timeout: 3 * time.Second,
	}
}

// RegisterRoutes registers /health on app and /status on api.
func (h *StatusHandler) RegisterRoutes(app fiber.Router, api fiber.Router) {
	app.Get("/health", h.HandleStatus)
	api.Get("/status", h.HandleStatus)
}

// HandleStatus always answers 200 while the process is up; a failing
// backend turns status into "degraded".
func (h *StatusHandler) HandleStatus(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	status := "healthy"
	backends := make(fiber.Map, len(h.checks))
	for _, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			zap.L().Warn("health check failed", zap.String("backend", check.Name), zap.Error(err))
			backends[check.Name] = "error"
			status = "degraded"
			continue
		}
		backends[check.Name] = "ok"
	}

	resp := fiber.Map{}
	for k, v := range h.info {
		resp[k] = v
	}
	resp["status"] = status
	resp["time"] = time.Now().Format(time.RFC3339)
	resp["backends"] = backends
	return c.JSON(resp)
}
