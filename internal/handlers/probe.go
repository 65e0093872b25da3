package handlers

import (
	"github.com/gofiber/fiber/v3"

	"recordlookup/internal/catalog"
)

// StatusReporter reports the last known state of each dataset endpoint.
type StatusReporter interface {
	Statuses() map[string]string
}

// ProbeHandler handles Kubernetes health probe endpoints.
type ProbeHandler struct {
	catalog *catalog.Catalog
	checks  StatusReporter
}

// NewProbeHandler creates a new probe handler. checks may be nil.
func NewProbeHandler(cat *catalog.Catalog, checks StatusReporter) *ProbeHandler {
	return &ProbeHandler{catalog: cat, checks: checks}
}

// Liveness handles the /healthz endpoint for Kubernetes liveness probes.
// Returns 200 OK if the application is running.
func (h *ProbeHandler) Liveness(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
	})
}

// Readiness handles the /readyz endpoint for Kubernetes readiness probes.
// Dataset check results are informational only; lookups degrade to a message
// when the open-data API is down, so readiness never depends on it.
func (h *ProbeHandler) Readiness(c fiber.Ctx) error {
	if h.catalog == nil || h.catalog.Len() == 0 {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "error",
			"error":  "dataset catalog not loaded",
		})
	}

	resp := fiber.Map{
		"status":   "ok",
		"datasets": h.catalog.Len(),
	}
	if h.checks != nil {
		resp["checks"] = h.checks.Statuses()
	}
	return c.JSON(resp)
}
