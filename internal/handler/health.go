package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/songbook/songbook/internal/handler/dto"
)

// defaultProbeTimeout bounds each dependency ping in Readyz.
const defaultProbeTimeout = 2 * time.Second

// Probe results.
const (
	probeOK            = "ok"
	probeUnreachable   = "unreachable"
	probeNotConfigured = "not configured"
)

// HealthChecker defines an interface for checking service health.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves the orchestration probes.
type HealthHandler struct {
	db      HealthChecker
	cache   HealthChecker
	timeout time.Duration
}

// NewHealthHandler creates a new HealthHandler.
// Pass nil for db or cache if they are not configured.
func NewHealthHandler(db, cache HealthChecker) *HealthHandler {
	return &HealthHandler{
		db:      db,
		cache:   cache,
		timeout: defaultProbeTimeout,
	}
}

// HealthResponse is the probe payload.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Healthz is a liveness probe. It never touches dependencies.
//
// GET /healthz
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	dto.WriteData(w, http.StatusOK, HealthResponse{Status: probeOK})
}

// Readyz pings Postgres and Redis concurrently and answers 503 if either fails.
// Driver errors are not echoed since they may carry connection details.
//
// GET /readyz
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		checks = make(map[string]string, 2)
	)
	probe := func(name string, c HealthChecker) {
		defer wg.Done()
		result := probeNotConfigured
		if c != nil {
			result = probeOK
			if err := c.Ping(ctx); err != nil {
				result = probeUnreachable
			}
		}
		mu.Lock()
		checks[name] = result
		mu.Unlock()
	}

	wg.Add(2)
	go probe("postgres", h.db)
	go probe("redis", h.cache)
	wg.Wait()

	healthy := checks["postgres"] != probeUnreachable && checks["redis"] != probeUnreachable

	response := HealthResponse{Status: probeOK, Checks: checks}
	if !healthy {
		response.Status = "unhealthy"
		dto.Write(w, http.StatusServiceUnavailable, dto.Envelope{
			Success: false,
			Error:   "service unavailable",
			Data:    response,
		})
		return
	}

	dto.WriteData(w, http.StatusOK, response)
}
