package controllers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"projectgateway/internal/delivery/http/helpers"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthResponse is the data of GET /healthz.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
}

type HealthController struct {
	Logger *slog.Logger
	DB     Pinger
}

func NewHealthController(logger *slog.Logger, db Pinger) *HealthController {
	return &HealthController{Logger: logger, DB: db}
}

// Health godoc
// @Summary Liveness probe
// @Description Reports ok, and the database reachability when one is configured. A database failure is reported with 503.
// @Tags health
// @Produce json
// @Success 200 {object} helpers.APIResponse
// @Failure 503 {object} helpers.APIResponse
// @Router /healthz [get]
func (c *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok"}
	if c.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := c.DB.PingContext(ctx); err != nil {
			c.Logger.WarnContext(r.Context(), "database ping failed", "err", err)
			resp.Status = "degraded"
			resp.Database = "unreachable"
			helpers.WriteJSONSuccess(w, http.StatusServiceUnavailable, resp)
			return
		}
		resp.Database = "ok"
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, resp)
}
