package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	SongsCreated       uint64
	SongsUpdated       uint64
	SongsDeleted       uint64
	CatalogCacheHits   uint64
	CatalogCacheMisses uint64
	Logins             map[string]uint64
	AuthRejections     map[string]uint64
	Requests           uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	songsCreated       uint64
	songsUpdated       uint64
	songsDeleted       uint64
	catalogCacheHits   uint64
	catalogCacheMisses uint64
	requests           uint64

	mu             sync.Mutex
	logins         map[string]uint64
	authRejections map[string]uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		logins:         make(map[string]uint64),
		authRejections: make(map[string]uint64),
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	logins := make(map[string]uint64, len(m.logins))
	for k, v := range m.logins {
		logins[k] = v
	}
	rejections := make(map[string]uint64, len(m.authRejections))
	for k, v := range m.authRejections {
		rejections[k] = v
	}
	m.mu.Unlock()

	return Snapshot{
		SongsCreated:       atomic.LoadUint64(&m.songsCreated),
		SongsUpdated:       atomic.LoadUint64(&m.songsUpdated),
		SongsDeleted:       atomic.LoadUint64(&m.songsDeleted),
		CatalogCacheHits:   atomic.LoadUint64(&m.catalogCacheHits),
		CatalogCacheMisses: atomic.LoadUint64(&m.catalogCacheMisses),
		Logins:             logins,
		AuthRejections:     rejections,
		Requests:           atomic.LoadUint64(&m.requests),
	}
}

// IncSongCreated increments song created counter.
func (m *InMemoryRecorder) IncSongCreated() {
	atomic.AddUint64(&m.songsCreated, 1)
}

// IncSongUpdated increments song updated counter.
func (m *InMemoryRecorder) IncSongUpdated() {
	atomic.AddUint64(&m.songsUpdated, 1)
}

// IncSongDeleted increments song deleted counter.
func (m *InMemoryRecorder) IncSongDeleted() {
	atomic.AddUint64(&m.songsDeleted, 1)
}

// IncCatalogCacheHit increments cache hit counter.
func (m *InMemoryRecorder) IncCatalogCacheHit() {
	atomic.AddUint64(&m.catalogCacheHits, 1)
}

// IncCatalogCacheMiss increments cache miss counter.
func (m *InMemoryRecorder) IncCatalogCacheMiss() {
	atomic.AddUint64(&m.catalogCacheMisses, 1)
}

// IncLogin counts a login attempt by outcome.
func (m *InMemoryRecorder) IncLogin(outcome string) {
	m.mu.Lock()
	m.logins[outcome]++
	m.mu.Unlock()
}

// IncAuthRejected counts a rejected request by reason.
func (m *InMemoryRecorder) IncAuthRejected(reason string) {
	m.mu.Lock()
	m.authRejections[reason]++
	m.mu.Unlock()
}

// ObserveRequest counts a served request.
func (m *InMemoryRecorder) ObserveRequest(method, route string, status int, duration time.Duration) {
	atomic.AddUint64(&m.requests, 1)
}
