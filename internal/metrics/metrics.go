// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Login outcomes.
const (
	LoginSuccess   = "success"
	LoginFailure   = "failure"
	LoginThrottled = "throttled"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Catalog write metrics
	IncSongCreated()
	IncSongUpdated()
	IncSongDeleted()

	// Distinct-list cache metrics
	IncCatalogCacheHit()
	IncCatalogCacheMiss()

	// Authentication metrics
	IncLogin(outcome string)       // outcome: LoginSuccess, LoginFailure, LoginThrottled
	IncAuthRejected(reason string) // reason: rejection message of the auth gate

	// HTTP metrics
	ObserveRequest(method, route string, status int, duration time.Duration)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
