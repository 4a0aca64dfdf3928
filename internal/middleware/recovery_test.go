package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
)

func TestRecoverer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		exposeStack bool
	}{
		{"production hides stack", false},
		{"development exposes stack", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			logger := slog.New(slog.NewTextHandler(io.Discard, nil))
			h := Recoverer(logger, tt.exposeStack)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				panic("boom")
			}))

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/songs", nil))

			if rec.Code != http.StatusInternalServerError {
				t.Fatalf("expected 500, got %d", rec.Code)
			}

			var body map[string]any
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body["success"] != false || body["error"] != "internal server error" {
				t.Errorf("unexpected envelope: %v", body)
			}

			_, hasDetails := body["details"]
			if hasDetails != tt.exposeStack {
				t.Errorf("details present = %v, want %v", hasDetails, tt.exposeStack)
			}
		})
	}
}
