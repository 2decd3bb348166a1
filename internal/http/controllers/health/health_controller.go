// Package health contiene el controller de readiness.
package health

import (
	"net/http"

	"github.com/dropDatabas3/audioserver/internal/http/helpers"
	svc "github.com/dropDatabas3/audioserver/internal/http/services/health"
	"github.com/dropDatabas3/audioserver/internal/observability/logger"
)

// HealthController maneja las rutas de health check.
type HealthController struct {
	service svc.Service
}

// NewHealthController crea un nuevo controller de health check.
func NewHealthController(service svc.Service) *HealthController {
	return &HealthController{service: service}
}

// Readyz maneja GET /readyz
func (c *HealthController) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	response := c.service.Check(ctx)

	if response.Version != "" {
		w.Header().Set("X-Service-Version", response.Version)
	}
	w.Header().Set("Cache-Control", "no-store")

	status := http.StatusOK
	if response.Status == "unavailable" {
		status = http.StatusServiceUnavailable
	}

	logger.From(ctx).Debug("health check completed",
		logger.Layer("controller"),
		logger.String("status", response.Status),
		logger.Int("components_count", len(response.Components)),
	)
	helpers.WriteJSON(w, status, response)
}

// Healthz liveness: responde 200 mientras el proceso esté vivo.
func (c *HealthController) Healthz(w http.ResponseWriter, _ *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
