package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	RedirectCacheHits       uint64
	RedirectCacheMisses     uint64
	RedirectDurationCount   uint64
	RedirectDurationTotalNs int64
	LinksCreated            uint64
	LinksDeleted            uint64
	ClicksRecorded          uint64
	ClicksFailed            uint64
	GeoLookupsResolved      uint64
	GeoLookupsUnresolved    uint64
	GeoLookupsSkipped       uint64
}

// InMemoryRecorder stores metrics in memory.
type InMemoryRecorder struct {
	redirectCacheHits       uint64
	redirectCacheMisses     uint64
	redirectDurationCount   uint64
	redirectDurationTotalNs int64
	linksCreated            uint64
	linksDeleted            uint64
	clicksRecorded          uint64
	clicksFailed            uint64
	geoLookupsResolved      uint64
	geoLookupsUnresolved    uint64
	geoLookupsSkipped       uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		RedirectCacheHits:       atomic.LoadUint64(&m.redirectCacheHits),
		RedirectCacheMisses:     atomic.LoadUint64(&m.redirectCacheMisses),
		RedirectDurationCount:   atomic.LoadUint64(&m.redirectDurationCount),
		RedirectDurationTotalNs: atomic.LoadInt64(&m.redirectDurationTotalNs),
		LinksCreated:            atomic.LoadUint64(&m.linksCreated),
		LinksDeleted:            atomic.LoadUint64(&m.linksDeleted),
		ClicksRecorded:          atomic.LoadUint64(&m.clicksRecorded),
		ClicksFailed:            atomic.LoadUint64(&m.clicksFailed),
		GeoLookupsResolved:      atomic.LoadUint64(&m.geoLookupsResolved),
		GeoLookupsUnresolved:    atomic.LoadUint64(&m.geoLookupsUnresolved),
		GeoLookupsSkipped:       atomic.LoadUint64(&m.geoLookupsSkipped),
	}
}

// IncRedirectCacheHit increments cache hit counter.
func (m *InMemoryRecorder) IncRedirectCacheHit() {
	atomic.AddUint64(&m.redirectCacheHits, 1)
}

// IncRedirectCacheMiss increments cache miss counter.
func (m *InMemoryRecorder) IncRedirectCacheMiss() {
	atomic.AddUint64(&m.redirectCacheMisses, 1)
}

// ObserveRedirectDuration records redirect duration.
func (m *InMemoryRecorder) ObserveRedirectDuration(duration time.Duration) {
	atomic.AddUint64(&m.redirectDurationCount, 1)
	atomic.AddInt64(&m.redirectDurationTotalNs, duration.Nanoseconds())
}

// IncLinkCreated increments link created counter.
func (m *InMemoryRecorder) IncLinkCreated() {
	atomic.AddUint64(&m.linksCreated, 1)
}

// IncLinkDeleted increments link deleted counter.
func (m *InMemoryRecorder) IncLinkDeleted() {
	atomic.AddUint64(&m.linksDeleted, 1)
}

// IncClickRecorded increments the click recording counter for a status.
func (m *InMemoryRecorder) IncClickRecorded(status string) {
	if status == "success" {
		atomic.AddUint64(&m.clicksRecorded, 1)
		return
	}
	atomic.AddUint64(&m.clicksFailed, 1)
}

// IncGeoLookup increments the geolocation lookup counter for a status.
func (m *InMemoryRecorder) IncGeoLookup(status string) {
	switch status {
	case "resolved":
		atomic.AddUint64(&m.geoLookupsResolved, 1)
	case "unresolved":
		atomic.AddUint64(&m.geoLookupsUnresolved, 1)
	default:
		atomic.AddUint64(&m.geoLookupsSkipped, 1)
	}
}
