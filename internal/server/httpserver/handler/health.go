package handler

import (
	"context"
	"net/http"
	"time"
)

const healthProbeTimeout = time.Second

// degradable is implemented by stores that can fall back to memory.
type degradable interface {
	Degraded() bool
	Backend() string
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Backend string `json:"backend,omitempty"`
	Store   string `json:"store"`
	Version string `json:"version,omitempty"`
	Time    string `json:"time"`
}

// handleHealth handles GET /health. The process is live whenever it answers,
// so the status code is always 200; a store outage shows as "degraded".
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:  "ok",
		Store:   "ok",
		Version: h.version,
		Time:    time.Now().UTC().Format(time.RFC3339),
	}

	if d, ok := h.store.(degradable); ok {
		resp.Backend = d.Backend()
		if d.Degraded() {
			resp.Status, resp.Store = "degraded", "memory"
		}
	}
	if h.store != nil && resp.Store == "ok" {
		ctx, cancel := context.WithTimeout(r.Context(), healthProbeTimeout)
		defer cancel()
		if err := h.store.Ping(ctx); err != nil {
			resp.Status, resp.Store = "degraded", "unavailable"
		}
	}

	h.writeJSON(w, http.StatusOK, resp)
}
