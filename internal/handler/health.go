package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"enzo/internal/envelope"
	"enzo/internal/logging"
)

// healthPingTimeout bounds the store ping so liveness stays fast.
const healthPingTimeout = 2 * time.Second

// Pinger reports whether the store is reachable.
type Pinger interface {
	Health(ctx context.Context) error
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Version  string `json:"version"`
}

// HealthHandler serves GET /api/v1/health. It always answers 200; the
// payload says whether the store is reachable.
func HealthHandler(db Pinger, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "healthy", Database: "connected", Version: version}

		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
			defer cancel()
			if err := db.Health(ctx); err != nil {
				logging.FromContext(r.Context()).Warn("health check: database unreachable", slog.Any("error", err))
				resp.Status = "unhealthy"
				resp.Database = "unreachable"
			}
		}

		envelope.WriteSuccess(w, "Service is running", resp)
	}
}
