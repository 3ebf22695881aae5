package handler

import (
	"context"
	"net/http"
)

// Version is reported by the service descriptor
const Version = "1.0"

// Pinger checks that the store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Descriptor is the body of GET /
type Descriptor struct {
	Message   string            `json:"message"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// RootHandler serves the service descriptor and health check
type RootHandler struct {
	db     Pinger
	prefix string
}

// NewRootHandler creates a root handler. prefix is the API mount point,
// e.g. /api/v1.
func NewRootHandler(db Pinger, prefix string) *RootHandler {
	return &RootHandler{db: db, prefix: prefix}
}

// Descriptor handles GET /
func (h *RootHandler) Descriptor(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, Descriptor{
		Message: "Tarnished Tactics API is running!",
		Version: Version,
		Endpoints: map[string]string{
			"builds": h.prefix + "/builds",
			"guides": h.prefix + "/guides",
		},
	})
}

// Health handles GET /health
func (h *RootHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(r.Context()); err != nil {
		WriteJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable", Error: err.Error()})
		return
	}
	WriteJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}
