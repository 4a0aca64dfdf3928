package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

// testEnvelope mirrors dto.Envelope with the payload left raw.
type testEnvelope struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	Error     string          `json:"error"`
	Message   string          `json:"message"`
	Details   json.RawMessage `json:"details"`
	Count     *int            `json:"count"`
	Timestamp time.Time       `json:"timestamp"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) testEnvelope {
	t.Helper()
	var env testEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("failed to decode envelope %q: %v", rec.Body.String(), err)
	}
	if env.Timestamp.IsZero() {
		t.Error("expected timestamp to be set")
	}
	return env
}

func TestHandler_Info(t *testing.T) {
	h := New()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	h.Info(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}

	contentType := rec.Header().Get("Content-Type")
	if contentType != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", contentType)
	}

	env := decodeEnvelope(t, rec)
	if !env.Success {
		t.Error("expected success")
	}

	var info InfoResponse
	if err := json.Unmarshal(env.Data, &info); err != nil {
		t.Fatalf("failed to decode info: %v", err)
	}
	if info.Version != Version {
		t.Errorf("unexpected version: %s", info.Version)
	}
	if info.Endpoints["songs"] != "/songs" {
		t.Errorf("unexpected endpoints: %v", info.Endpoints)
	}
}

func TestHandler_Health(t *testing.T) {
	h := New()
	h.now = func() time.Time { return h.startedAt.Add(90 * time.Second) }

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	h.Health(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}

	var status HealthStatus
	if err := json.Unmarshal(decodeEnvelope(t, rec).Data, &status); err != nil {
		t.Fatalf("failed to decode health: %v", err)
	}
	if status.Status != "ok" {
		t.Errorf("expected status 'ok', got %s", status.Status)
	}
	if status.UptimeSeconds != 90 {
		t.Errorf("expected uptime 90s, got %v", status.UptimeSeconds)
	}
}

func TestHandler_NotFound(t *testing.T) {
	h := New()

	req := httptest.NewRequest(http.MethodGet, "/nonexistent", nil)
	rec := httptest.NewRecorder()

	h.NotFound(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rec.Code)
	}

	env := decodeEnvelope(t, rec)
	if env.Success {
		t.Error("expected success=false")
	}
	if env.Error != "resource not found" {
		t.Errorf("unexpected error message: %s", env.Error)
	}
	if env.Message != "GET /nonexistent" {
		t.Errorf("unexpected message: %s", env.Message)
	}
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	h := New()

	req := httptest.NewRequest(http.MethodPatch, "/songs", nil)
	rec := httptest.NewRecorder()

	h.MethodNotAllowed(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", rec.Code)
	}

	if env := decodeEnvelope(t, rec); env.Error != "method not allowed" {
		t.Errorf("unexpected error message: %s", env.Error)
	}
}
