package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"site_cms/internal/lib/logger/sl"

	"github.com/labstack/echo/v4"
)

const healthTimeout = 3 * time.Second

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Health godoc
// @Summary Проверка состояния
// @Description Пингует базу данных и Redis
// @Tags health
// @Produce json
// @Success 200 {object} healthResponse
// @Failure 503 {object} healthResponse
// @Router /health [get]
func (r *Routers) Health(c echo.Context) error {
	const op = "http.routers.Health"

	log := r.log.With(
		slog.String("op", op),
	)

	ctx, cancel := context.WithTimeout(c.Request().Context(), healthTimeout)
	defer cancel()

	resp := healthResponse{Status: "ok", Checks: make(map[string]string, len(r.checks))}
	status := http.StatusOK

	for name, check := range r.checks {
		if err := check.HealthCheck(ctx); err != nil {
			log.Error("health check failed", slog.String("component", name), sl.Err(err))
			resp.Checks[name] = err.Error()
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}

	return c.JSON(status, resp)
}
