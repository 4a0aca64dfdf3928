// Package handler provides HTTP request handlers.
package handler

import (
	"math"
	"net/http"
	"time"

	"github.com/songbook/songbook/internal/handler/dto"
)

// Version is reported by the info endpoint.
const Version = "1.0.0"

// Handler serves the service-level endpoints.
type Handler struct {
	startedAt time.Time
	now       func() time.Time
}

// New creates a new Handler instance. Uptime is measured from this call.
func New() *Handler {
	return &Handler{
		startedAt: time.Now(),
		now:       time.Now,
	}
}

// InfoResponse describes the API.
type InfoResponse struct {
	Name      string            `json:"name"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}

// Info is the root endpoint.
// GET /
func (h *Handler) Info(w http.ResponseWriter, r *http.Request) {
	dto.WriteData(w, http.StatusOK, InfoResponse{
		Name:    "songbook",
		Version: Version,
		Endpoints: map[string]string{
			"songs":  "/songs",
			"login":  "/auth/login",
			"health": "/health",
		},
	})
}

// HealthStatus is the liveness payload of GET /health.
type HealthStatus struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// Health reports liveness and process uptime.
// GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	uptime := h.now().Sub(h.startedAt).Seconds()
	dto.WriteData(w, http.StatusOK, HealthStatus{
		Status:        "ok",
		UptimeSeconds: math.Round(uptime*1000) / 1000,
	})
}

// NotFound handles 404 responses.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	dto.WriteError(w, http.StatusNotFound, "resource not found", r.Method+" "+r.URL.Path, nil)
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	dto.WriteError(w, http.StatusMethodNotAllowed, "method not allowed", r.Method+" "+r.URL.Path, nil)
}
