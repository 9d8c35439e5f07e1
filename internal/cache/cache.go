// Package cache implements the per-frame caches a transform buffer keeps
// one of per frame: TemporalCache (bounded, time-ordered history with
// interpolation) and StaticCache (a single record stamped with the query
// time on read). Both satisfy the same Cache interface so the buffer can
// treat a frame's cache polymorphically without a class hierarchy — a
// tagged variant rather than a deep type hierarchy.
package cache

import (
	"github.com/agbru/tfbuffer/internal/transform"
)

// Cache is the capability set both TemporalCache and StaticCache
// implement.
type Cache interface {
	// Insert adds record to the cache. Returns true iff the record was
	// materially added (false for a detected exact duplicate).
	Insert(record transform.Record) bool

	// Get returns the transform held at time t, interpolating or
	// substituting the query time as appropriate. See the concrete types
	// for the exact semantics and error conditions.
	Get(t uint64) (transform.Record, error)

	// ParentAt returns the parent frame id in effect at time t.
	ParentAt(t uint64) (transform.FrameID, error)

	// LatestStamp returns the newest stored timestamp, or ok=false if the
	// cache has no bound to report (empty, or a static cache which has no
	// history to bound queries against).
	LatestStamp() (stamp uint64, ok bool)

	// OldestStamp returns the oldest stored timestamp, or ok=false under
	// the same conditions as LatestStamp.
	OldestStamp() (stamp uint64, ok bool)

	// LatestStampAndParent returns the newest stamp and its parent id in
	// one call, or ok=false if the cache holds nothing at all.
	LatestStampAndParent() (stamp uint64, parent transform.FrameID, ok bool)

	// Clear empties the cache.
	Clear()
}
