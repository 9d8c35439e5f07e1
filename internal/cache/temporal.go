package cache

import (
	"github.com/agbru/tfbuffer/internal/tferrors"
	"github.com/agbru/tfbuffer/internal/transform"
)

// TemporalCache holds a bounded, time-descending history of records for one
// moving frame. storage[0] is always the newest record; storage[len-1] is
// always the oldest. Records older than newest.StampNS - maxHistoryNS are
// pruned on every Insert.
//
// TemporalCache carries no lock of its own. It is always called under the
// single RWMutex the owning TransformBuffer holds over its whole cache
// vector — a per-cache lock would only add contention without shrinking the
// critical section any reader or writer needs.
type TemporalCache struct {
	maxHistoryNS uint64
	storage      []transform.Record
}

// NewTemporalCache constructs an empty TemporalCache with the given
// retention window.
func NewTemporalCache(maxHistoryNS uint64) *TemporalCache {
	return &TemporalCache{maxHistoryNS: maxHistoryNS}
}

// Insert prunes, locates the new record's slot, checks for an exact
// duplicate, then inserts, then prunes again so the newly admitted record
// itself cannot leave the retention window violated: the first pass clears
// stale entries against the pre-insert newest stamp, and since insertion
// can change which record is newest (or insert one already below the
// window), a second pass re-evaluates the cutoff against the post-insert
// state. Returns false without modifying storage if record is a
// byte-exact duplicate of a record already held at the same timestamp, and
// false if the second pass pruned the new record itself.
func (c *TemporalCache) Insert(record transform.Record) bool {
	c.prune()

	i := c.locate(record.StampNS)
	for j := i; j < len(c.storage) && c.storage[j].StampNS == record.StampNS; j++ {
		if c.storage[j].Equal(record) {
			return false
		}
	}

	c.storage = append(c.storage, transform.Record{})
	copy(c.storage[i+1:], c.storage[i:])
	c.storage[i] = record
	c.prune()
	return i < len(c.storage)
}

// prune drops all records older than the current newest stamp minus the
// retention window, against whatever state storage is in when called.
func (c *TemporalCache) prune() {
	if len(c.storage) == 0 {
		return
	}
	newest := c.storage[0].StampNS
	var cutoff uint64
	if newest > c.maxHistoryNS {
		cutoff = newest - c.maxHistoryNS
	}
	for len(c.storage) > 0 && c.storage[len(c.storage)-1].StampNS < cutoff {
		c.storage = c.storage[:len(c.storage)-1]
	}
}

// locate returns the first index i such that storage[i].StampNS <= stamp
// (or len(storage) if no such index exists). Inserting at i keeps storage
// descending and places a new record at the head of any run sharing its
// timestamp, ahead of records already stored at that timestamp.
func (c *TemporalCache) locate(stamp uint64) int {
	for i, r := range c.storage {
		if r.StampNS <= stamp {
			return i
		}
	}
	return len(c.storage)
}

// Get returns the transform held at time t:
//   - empty cache: EmptyError
//   - t == transform.LatestTime (0): the newest record, unchanged
//   - a single stored record: that record if t matches its stamp, else
//     SingleExtrapolationError
//   - t above the newest stamp: FutureExtrapolationError
//   - t below the oldest stamp: PastExtrapolationError
//   - t equal to the newest or the oldest stamp: that record
//   - otherwise (including t equal to an interior stamp): the two bracketing records are interpolated if they share a
//     parent, or the newer one is returned unchanged if a reparenting
//     occurred between them (interpolating across a parent change would
//     produce a meaningless blend of two different edges)
func (c *TemporalCache) Get(t uint64) (transform.Record, error) {
	if len(c.storage) == 0 {
		return transform.Record{}, tferrors.EmptyError{}
	}

	newest := c.storage[0]
	if t == transform.LatestTime {
		return newest, nil
	}

	oldest := c.storage[len(c.storage)-1]
	if len(c.storage) == 1 {
		if t == newest.StampNS {
			return newest, nil
		}
		return transform.Record{}, tferrors.SingleExtrapolationError{RequestedNS: t, HeldNS: newest.StampNS}
	}

	if t == newest.StampNS {
		return newest, nil
	}
	if t == oldest.StampNS {
		return oldest, nil
	}
	if t > newest.StampNS {
		return transform.Record{}, tferrors.FutureExtrapolationError{RequestedNS: t, NewestNS: newest.StampNS}
	}
	if t < oldest.StampNS {
		return transform.Record{}, tferrors.PastExtrapolationError{RequestedNS: t, OldestNS: oldest.StampNS}
	}

	for i := 0; i < len(c.storage)-1; i++ {
		hi, lo := c.storage[i], c.storage[i+1]
		if lo.StampNS <= t && t <= hi.StampNS {
			if hi.ParentID != lo.ParentID {
				return hi, nil
			}
			return transform.Interpolate(lo, hi, t), nil
		}
	}
	return transform.Record{}, tferrors.UnknownError{Detail: "no bracketing pair found for in-range query"}
}

// ParentAt returns the parent frame id in effect at time t.
func (c *TemporalCache) ParentAt(t uint64) (transform.FrameID, error) {
	rec, err := c.Get(t)
	if err != nil {
		return 0, err
	}
	return rec.ParentID, nil
}

// LatestStamp returns the newest stored timestamp.
func (c *TemporalCache) LatestStamp() (uint64, bool) {
	if len(c.storage) == 0 {
		return 0, false
	}
	return c.storage[0].StampNS, true
}

// OldestStamp returns the oldest stored timestamp.
func (c *TemporalCache) OldestStamp() (uint64, bool) {
	if len(c.storage) == 0 {
		return 0, false
	}
	return c.storage[len(c.storage)-1].StampNS, true
}

// LatestStampAndParent returns the newest stamp and its parent id.
func (c *TemporalCache) LatestStampAndParent() (uint64, transform.FrameID, bool) {
	if len(c.storage) == 0 {
		return 0, 0, false
	}
	return c.storage[0].StampNS, c.storage[0].ParentID, true
}

// Clear empties the cache.
func (c *TemporalCache) Clear() {
	c.storage = nil
}

// Len reports how many records are currently held. Exposed for tests that
// assert on the exact retained set after a sequence of inserts.
func (c *TemporalCache) Len() int {
	return len(c.storage)
}

// Stamps returns the stored stamps, newest first, as a convenience for
// tests asserting on the retained set.
func (c *TemporalCache) Stamps() []uint64 {
	out := make([]uint64, len(c.storage))
	for i, r := range c.storage {
		out[i] = r.StampNS
	}
	return out
}
