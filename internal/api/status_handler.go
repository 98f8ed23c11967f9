package api

import (
	"net/http"

	"github.com/ethicbank/portal-api/internal/api/shared"
	"github.com/ethicbank/portal-api/internal/registry"
)

// StatusHandler exposes the service registry.
type StatusHandler struct {
	registry *registry.Registry
}

// NewStatusHandler creates a StatusHandler.
func NewStatusHandler(reg *registry.Registry) *StatusHandler {
	return &StatusHandler{registry: reg}
}

// ServiceNames handles GET /api/services.
func (h *StatusHandler) ServiceNames(w http.ResponseWriter, r *http.Request) {
	names := h.registry.ServiceNames()
	if names == nil {
		names = []string{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, names)
}

// ServicesStatus handles GET /api/services/status. It always answers 200;
// failing services are reported in their own rows.
func (h *StatusHandler) ServicesStatus(w http.ResponseWriter, r *http.Request) {
	statuses := h.registry.ServicesStatus(r.Context())
	if statuses == nil {
		statuses = []registry.ServiceStatus{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, statuses)
}

// Health handles GET /health, a liveness probe that does not touch any
// dependency.
func (h *StatusHandler) Health(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
