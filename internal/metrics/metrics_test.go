package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInMemoryRecorder_Counts(t *testing.T) {
	t.Parallel()

	m := NewInMemory()
	m.IncSongCreated()
	m.IncSongCreated()
	m.IncSongUpdated()
	m.IncSongDeleted()
	m.IncCatalogCacheHit()
	m.IncCatalogCacheMiss()
	m.IncLogin(LoginSuccess)
	m.IncLogin(LoginFailure)
	m.IncLogin(LoginFailure)
	m.IncAuthRejected("token expired")
	m.ObserveRequest("GET", "/songs", 200, time.Millisecond)

	s := m.Snapshot()
	if s.SongsCreated != 2 || s.SongsUpdated != 1 || s.SongsDeleted != 1 {
		t.Errorf("unexpected write counters: %+v", s)
	}
	if s.CatalogCacheHits != 1 || s.CatalogCacheMisses != 1 {
		t.Errorf("unexpected cache counters: %+v", s)
	}
	if s.Logins[LoginFailure] != 2 || s.Logins[LoginSuccess] != 1 {
		t.Errorf("unexpected login counters: %v", s.Logins)
	}
	if s.AuthRejections["token expired"] != 1 {
		t.Errorf("unexpected rejection counters: %v", s.AuthRejections)
	}
	if s.Requests != 1 {
		t.Errorf("expected 1 request, got %d", s.Requests)
	}
}

func TestInMemoryRecorder_SnapshotIsCopy(t *testing.T) {
	t.Parallel()

	m := NewInMemory()
	m.IncLogin(LoginSuccess)

	s := m.Snapshot()
	s.Logins[LoginSuccess] = 100

	if got := m.Snapshot().Logins[LoginSuccess]; got != 1 {
		t.Errorf("snapshot mutation leaked into recorder: %d", got)
	}
}

func TestPrometheusRecorder_Counters(t *testing.T) {
	t.Parallel()

	p := NewPrometheus()
	p.IncSongCreated()
	p.IncSongCreated()
	p.IncSongDeleted()
	p.IncLogin(LoginThrottled)

	if got := testutil.ToFloat64(p.songWrites.WithLabelValues("create")); got != 2 {
		t.Errorf("expected 2 creates, got %v", got)
	}
	if got := testutil.ToFloat64(p.songWrites.WithLabelValues("delete")); got != 1 {
		t.Errorf("expected 1 delete, got %v", got)
	}
	if got := testutil.ToFloat64(p.logins.WithLabelValues(LoginThrottled)); got != 1 {
		t.Errorf("expected 1 throttled login, got %v", got)
	}
}

func TestPrometheusRecorder_Handler(t *testing.T) {
	t.Parallel()

	p := NewPrometheus()
	p.IncAuthRejected("invalid token")
	p.ObserveRequest("POST", "/songs", 201, 20*time.Millisecond)

	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{
		`songbook_auth_rejections_total{reason="invalid token"} 1`,
		`songbook_http_request_duration_seconds_count{method="POST",route="/songs",status="201"} 1`,
		"go_goroutines",
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("expected exposition to contain %q", want)
		}
	}
}

func TestRecorderImplementations(t *testing.T) {
	t.Parallel()

	var _ Recorder = NewNoop()
	var _ Recorder = NewInMemory()
	var _ Recorder = NewPrometheus()
	var _ Snapshotter = NewInMemory()
}
