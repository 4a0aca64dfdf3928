package cache

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestLoginKey(t *testing.T) {
	t.Parallel()

	ips := []string{"192.168.1.1", "192.168.1.2", "127.0.0.1", "::1", "2001:db8::7334", ""}
	seen := make(map[string]string, len(ips))

	for _, ip := range ips {
		key := loginKey(ip)
		if key != loginKey(ip) {
			t.Errorf("loginKey(%q) is not deterministic", ip)
		}
		if !strings.HasPrefix(key, loginBucketPrefix) {
			t.Errorf("loginKey(%q) = %q, missing prefix", ip, key)
		}
		hash := strings.TrimPrefix(key, loginBucketPrefix)
		if len(hash) != 16 {
			t.Errorf("loginKey(%q) hash length = %d, want 16", ip, len(hash))
		}
		if ip != "" && strings.Contains(key, ip) {
			t.Errorf("loginKey(%q) leaks the raw address", ip)
		}
		if prev, dup := seen[hash]; dup {
			t.Errorf("%q and %q share bucket %s", prev, ip, hash)
		}
		seen[hash] = ip
	}
}

func TestCatalogKey(t *testing.T) {
	t.Parallel()

	if got := catalogKey(ListGenres); got != "catalog:genres" {
		t.Errorf("catalogKey(genres) = %q", got)
	}
	if got := catalogKey(ListArtists); got != "catalog:artists" {
		t.Errorf("catalogKey(artists) = %q", got)
	}
}

func TestCheckLoginRateLimit_Disabled(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	// A zero rate never touches Redis, so no client is needed.
	c := &Cache{now: func() time.Time { return now }}

	tests := []struct {
		name          string
		burst         int
		wantRemaining int64
	}{
		{"configured burst", 5, 5},
		{"zero burst", 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res, err := c.CheckLoginRateLimit(context.Background(), "10.0.0.1", 0, tt.burst)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !res.Allowed || res.RetryAfter != 0 {
				t.Errorf("expected an open result, got %+v", res)
			}
			if res.Remaining != tt.wantRemaining {
				t.Errorf("Remaining = %d, want %d", res.Remaining, tt.wantRemaining)
			}
			if !res.ResetAt.Equal(now) {
				t.Errorf("ResetAt = %s, want %s", res.ResetAt, now)
			}
		})
	}
}
