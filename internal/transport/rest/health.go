package rest

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/frahmantamala/guard-deployment/internal/transport"
)

const storePingTimeout = 2 * time.Second

// StoreReadiness is the body of the readiness endpoint.
type StoreReadiness struct {
	Ready     bool      `json:"ready"`
	Driver    string    `json:"driver"`
	LatencyMs int64     `json:"latency_ms"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

type HealthHandler struct {
	*transport.BaseHandler
	db     *sql.DB
	driver string
}

func NewHealthHandler(db *sql.DB, driver string, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		BaseHandler: transport.NewBaseHandler(logger),
		db:          db,
		driver:      driver,
	}
}

func (h *HealthHandler) pingHandler(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

// healthCheckHandler is ready only while the ledger store answers a ping.
func (h *HealthHandler) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	report := h.checkStore(r.Context())
	if !report.Ready {
		h.Logger.Warn("ledger store not ready", "driver", report.Driver, "error", report.Error)
		h.WriteJSON(w, http.StatusServiceUnavailable, report)
		return
	}
	h.WriteJSON(w, http.StatusOK, report)
}

func (h *HealthHandler) checkStore(ctx context.Context) StoreReadiness {
	report := StoreReadiness{Driver: h.driver}
	if h.db == nil {
		report.Error = "store not configured"
		report.CheckedAt = time.Now().UTC()
		return report
	}

	ctx, cancel := context.WithTimeout(ctx, storePingTimeout)
	defer cancel()

	start := time.Now()
	err := h.db.PingContext(ctx)
	report.LatencyMs = time.Since(start).Milliseconds()
	report.CheckedAt = time.Now().UTC()
	if err != nil {
		report.Error = err.Error()
		return report
	}
	report.Ready = true
	return report
}
