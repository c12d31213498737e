// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Redirect metrics
	IncRedirectCacheHit()
	IncRedirectCacheMiss()
	ObserveRedirectDuration(duration time.Duration)

	// Link management metrics
	IncLinkCreated()
	IncLinkDeleted()

	// Click recording metrics
	IncClickRecorded(status string) // status: "success" or "failed"
	IncGeoLookup(status string)     // status: "resolved", "unresolved", "skipped"
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
