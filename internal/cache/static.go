package cache

import (
	"github.com/agbru/tfbuffer/internal/tferrors"
	"github.com/agbru/tfbuffer/internal/transform"
)

// StaticCache holds exactly one record for a frame that was interned static:
// a fixed mount point that never moves relative to its parent. A query at
// any time t returns the held record restamped to t,
// rather than interpolating or rejecting for extrapolation — a static
// transform is valid at every instant by definition.
type StaticCache struct {
	record *transform.Record
}

// NewStaticCache constructs an empty StaticCache.
func NewStaticCache() *StaticCache {
	return &StaticCache{}
}

// Insert replaces the held record unconditionally. Static frames have no
// history to reconcile against, so there is no prune/dedup step: the latest
// SetTransform call always wins.
func (c *StaticCache) Insert(record transform.Record) bool {
	r := record
	c.record = &r
	return true
}

// Get returns the held record restamped to t. The original StampNS the
// record was inserted with is discarded; a static cache has no notion of
// "when" beyond "always".
func (c *StaticCache) Get(t uint64) (transform.Record, error) {
	if c.record == nil {
		return transform.Record{}, tferrors.EmptyError{}
	}
	return c.record.WithStamp(t), nil
}

// ParentAt returns the held record's parent id, regardless of t.
func (c *StaticCache) ParentAt(t uint64) (transform.FrameID, error) {
	if c.record == nil {
		return 0, tferrors.EmptyError{}
	}
	return c.record.ParentID, nil
}

// LatestStamp always reports ok=false: a static frame has no history to
// bound a time-ranged query against.
func (c *StaticCache) LatestStamp() (uint64, bool) { return 0, false }

// OldestStamp always reports ok=false, for the same reason as LatestStamp.
func (c *StaticCache) OldestStamp() (uint64, bool) { return 0, false }

// LatestStampAndParent reports the held parent id with a nominal stamp of 0
// (static frames are valid at every instant, so the stamp itself carries no
// information), and ok=false only when nothing has been inserted yet.
func (c *StaticCache) LatestStampAndParent() (uint64, transform.FrameID, bool) {
	if c.record == nil {
		return 0, 0, false
	}
	return 0, c.record.ParentID, true
}

// Clear discards the held record.
func (c *StaticCache) Clear() {
	c.record = nil
}
