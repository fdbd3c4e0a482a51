package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/raagalabs/carnaticguru/internal/agent/telemetry"
)

// OpsHandler exposes in-process counters and LLM spend for debugging,
// in addition to the prometheus export at /metrics.
type OpsHandler struct {
	Telemetry *telemetry.Telemetry
}

func (h *OpsHandler) Register(g *echo.Group) {
	g.GET("/ops/telemetry", h.telemetry)
}

func (h *OpsHandler) telemetry(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"metrics":    h.Telemetry.Snapshot(),
		"total_cost": h.Telemetry.TotalCost(),
	})
}
