package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCORS_AllowOrigin(t *testing.T) {
	t.Parallel()

	spa := []string{"http://localhost:3000", "https://*.songbook.example"}

	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    string
	}{
		{"disabled without origins", nil, "http://localhost:3000", ""},
		{"exact match", spa, "http://localhost:3000", "http://localhost:3000"},
		{"subdomain wildcard", spa, "https://app.songbook.example", "https://app.songbook.example"},
		{"other port", spa, "http://localhost:3001", ""},
		{"foreign origin", spa, "https://evil.example", ""},
		{"same origin request", spa, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			reached := false
			h := CORS(DefaultCORSConfig(tt.allowed))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				reached = true
			}))

			req := httptest.NewRequest(http.MethodGet, "/songs/genres", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if !reached {
				t.Fatal("simple requests must reach the handler")
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.want {
				t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCORS_PreflightForAuthenticatedUpdate(t *testing.T) {
	t.Parallel()

	h := CORS(DefaultCORSConfig([]string{"http://localhost:3000"}))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("preflight must be answered by the middleware")
	}))

	req := httptest.NewRequest(http.MethodOptions, "/songs/42", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	req.Header.Set("Access-Control-Request-Headers", "Authorization, Content-Type")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	hdr := rec.Header()
	if got := hdr.Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
	if got := hdr.Get("Access-Control-Allow-Methods"); !strings.Contains(got, http.MethodPut) {
		t.Errorf("Access-Control-Allow-Methods = %q, want PUT", got)
	}
	if got := strings.ToLower(hdr.Get("Access-Control-Allow-Headers")); !strings.Contains(got, "authorization") {
		t.Errorf("Access-Control-Allow-Headers = %q, want authorization", got)
	}
	if got := hdr.Get("Access-Control-Max-Age"); got != "86400" {
		t.Errorf("Access-Control-Max-Age = %q, want 86400", got)
	}
}

func TestCORS_PreflightRejectsUnlistedMethod(t *testing.T) {
	t.Parallel()

	h := CORS(DefaultCORSConfig([]string{"http://localhost:3000"}))(http.NotFoundHandler())

	req := httptest.NewRequest(http.MethodOptions, "/songs/42", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("unlisted method must not be allowed, got origin %q", got)
	}
}
