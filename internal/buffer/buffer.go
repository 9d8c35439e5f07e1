// Package buffer implements the TransformBuffer orchestrator: input
// validation, frame-forest graph walk, lowest-common-ancestor search,
// chain composition, and the public query surface.
package buffer

import (
	"math"
	"sync"

	"github.com/agbru/tfbuffer/internal/logging"
	"github.com/agbru/tfbuffer/internal/registry"
	"github.com/agbru/tfbuffer/internal/spatial"
	"github.com/agbru/tfbuffer/internal/tferrors"
	"github.com/agbru/tfbuffer/internal/transform"
)

// maxWalkHops caps the depth of any single-side frame-forest walk: a
// pathological or cyclic forest must not hang a lookup.
const maxWalkHops = 1000

// TransformInput is the adapter boundary: a collaborator translates its own
// wire format into this contract before calling SetTransform.
type TransformInput struct {
	StampNS     uint64
	ParentName  string
	ChildName   string
	Translation spatial.Vector3
	Rotation    spatial.Quaternion
}

// TransformBuffer is the orchestrator: it owns a FrameRegistry, validates
// ingestion, walks the frame forest to answer queries, and exposes the
// public query API.
type TransformBuffer struct {
	mu          sync.RWMutex
	registry    *registry.FrameRegistry
	logger      logging.Logger
	cacheTimeNS uint64
}

// Option configures a TransformBuffer at construction time.
type Option func(*TransformBuffer)

// WithLogger overrides the buffer's logger. The default is a no-op logger.
func WithLogger(logger logging.Logger) Option {
	return func(b *TransformBuffer) { b.logger = logger }
}

// New constructs a TransformBuffer whose per-frame temporal caches retain
// cacheTimeNS of history.
func New(cacheTimeNS uint64, opts ...Option) *TransformBuffer {
	b := &TransformBuffer{
		registry:    registry.New(cacheTimeNS),
		logger:      logging.Nop(),
		cacheTimeNS: cacheTimeNS,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// SetTransform ingests one transform. The parent is always interned as
// non-static; the child respects isStatic. The record
// always lands in the child frame's cache, since each frame has at most one
// incoming edge at any instant.
func (b *TransformBuffer) SetTransform(input TransformInput, authority string, isStatic bool) error {
	parentName := registry.StripLeadingSlash(input.ParentName)
	childName := registry.StripLeadingSlash(input.ChildName)

	if parentName == childName {
		return tferrors.MatchingFrameIDsError{Authority: authority, Name: parentName}
	}
	if childName == "" {
		return tferrors.EmptyFrameIDError{Authority: authority, Which: "child_frame_id"}
	}
	if parentName == "" {
		return tferrors.EmptyFrameIDError{Authority: authority, Which: "frame_id"}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	parentID := b.registry.Intern(parentName, false)
	childID := b.registry.Intern(childName, isStatic)

	record := transform.New(input.Rotation, input.Translation, input.StampNS, parentID, childID)

	childCache, ok := b.registry.CacheFor(childID)
	if !ok {
		return tferrors.UnknownError{Detail: "child frame cache missing immediately after intern"}
	}
	childCache.Insert(record)
	b.registry.SetAuthority(childID, authority)

	b.logger.Debug("set_transform",
		logging.String("parent", parentName),
		logging.String("child", childName),
		logging.Uint64("stamp_ns", input.StampNS),
		logging.String("authority", authority),
	)
	return nil
}

// LookupTransform resolves the rigid transform from source to target at
// time.
func (b *TransformBuffer) LookupTransform(targetName, sourceName string, time uint64) (transform.Record, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lookupLocked(targetName, sourceName, time)
}

func (b *TransformBuffer) lookupLocked(targetName, sourceName string, time uint64) (transform.Record, error) {
	targetID, ok := b.registry.Lookup(targetName)
	if !ok {
		return transform.Record{}, tferrors.UnknownFrameIDError{Name: targetName}
	}
	sourceID, ok := b.registry.Lookup(sourceName)
	if !ok {
		return transform.Record{}, tferrors.UnknownFrameIDError{Name: sourceName}
	}

	if targetID == sourceID {
		stamp := time
		if stamp == transform.LatestTime {
			if c, ok := b.registry.CacheFor(targetID); ok {
				if latest, ok := c.LatestStamp(); ok {
					stamp = latest
				}
			}
		}
		return transform.Identity(stamp, targetID, sourceID), nil
	}

	resolvedTime := time
	if resolvedTime == transform.LatestTime {
		_, newest, ok := b.commonTimeBoundsLocked(targetID, sourceID)
		if !ok {
			return transform.Record{}, tferrors.UnknownRelationBetweenFramesError{TargetID: uint32(targetID), SourceID: uint32(sourceID)}
		}
		resolvedTime = newest
	}

	lca, ok := b.findLCALocked(targetID, sourceID)
	if !ok {
		return transform.Record{}, tferrors.UnknownRelationBetweenFramesError{TargetID: uint32(targetID), SourceID: uint32(sourceID)}
	}

	accum := newChainAccumulator()
	if err := b.walkToLCALocked(sourceID, lca, resolvedTime, accum.accumSource); err != nil {
		return transform.Record{}, err
	}
	if err := b.walkToLCALocked(targetID, lca, resolvedTime, accum.accumTarget); err != nil {
		return transform.Record{}, err
	}

	var ending chainEnding
	switch {
	case targetID == lca:
		ending = endingTargetIsLCA
	case sourceID == lca:
		ending = endingSourceIsLCA
	default:
		ending = endingFullPath
	}

	rotation, translation := accum.finalize(ending)
	return transform.Record{
		Rotation:    rotation,
		Translation: translation,
		StampNS:     resolvedTime,
		ParentID:    targetID,
		ChildID:     sourceID,
	}, nil
}

// walkToLCALocked walks from id up toward lca, reading each hop's cache at
// time and feeding it to accum, until id==lca. Returns any cache Get error
// encountered, or UnknownRelationBetweenFramesError if the walk cap is
// exceeded or a frame has no cache (should not happen for an id returned by
// findLCALocked, but guarded defensively).
func (b *TransformBuffer) walkToLCALocked(id, lca transform.FrameID, time uint64, accum func(transform.Record)) error {
	current := id
	for hops := 0; ; hops++ {
		if current == lca {
			return nil
		}
		if hops >= maxWalkHops {
			return tferrors.UnknownRelationBetweenFramesError{TargetID: uint32(lca), SourceID: uint32(id)}
		}
		c, ok := b.registry.CacheFor(current)
		if !ok {
			return tferrors.UnknownRelationBetweenFramesError{TargetID: uint32(lca), SourceID: uint32(id)}
		}
		record, err := c.Get(time)
		if err != nil {
			return err
		}
		accum(record)
		current = record.ParentID
	}
}

// findLCALocked finds the lowest common ancestor of target and source by
// walking each toward the root along its latest-known parent pointer,
// capped at maxWalkHops per side.
func (b *TransformBuffer) findLCALocked(target, source transform.FrameID) (transform.FrameID, bool) {
	visited := b.buildVisitedLocked(source)

	current := target
	for hops := 0; ; hops++ {
		if _, ok := visited[current]; ok {
			return current, true
		}
		if hops >= maxWalkHops {
			return 0, false
		}
		c, ok := b.registry.CacheFor(current)
		if !ok {
			return 0, false
		}
		_, parent, ok := c.LatestStampAndParent()
		if !ok {
			return 0, false
		}
		current = parent
	}
}

// frameBounds is the running (oldest, newest) interval common_time_bounds
// accumulates while walking toward an ancestor. hasBound distinguishes "no
// constraint yet" (identity for intersection) from a real interval.
type frameBounds struct {
	oldestNS uint64
	newestNS uint64
	hasBound bool
}

func neutralBounds() frameBounds {
	return frameBounds{newestNS: math.MaxUint64}
}

func (f frameBounds) fold(oldest, newest uint64) frameBounds {
	if !f.hasBound {
		return frameBounds{oldestNS: oldest, newestNS: newest, hasBound: true}
	}
	o, n := f.oldestNS, f.newestNS
	if oldest > o {
		o = oldest
	}
	if newest < n {
		n = newest
	}
	return frameBounds{oldestNS: o, newestNS: n, hasBound: true}
}

func (f frameBounds) intersect(other frameBounds) frameBounds {
	if !f.hasBound {
		return other
	}
	if !other.hasBound {
		return f
	}
	return f.fold(other.oldestNS, other.newestNS)
}

// buildVisitedLocked walks from start toward the root, along each frame's
// latest-known parent pointer, recording the running bounds as of arriving
// at each visited frame (i.e. bounds folded from every hop strictly below
// it, not including its own cache).
func (b *TransformBuffer) buildVisitedLocked(start transform.FrameID) map[transform.FrameID]frameBounds {
	visited := map[transform.FrameID]frameBounds{start: neutralBounds()}

	current := start
	bounds := neutralBounds()
	for hops := 0; hops < maxWalkHops; hops++ {
		c, ok := b.registry.CacheFor(current)
		if !ok {
			break
		}
		latest, parent, ok := c.LatestStampAndParent()
		if !ok {
			break
		}
		if oldest, ok := c.OldestStamp(); ok {
			bounds = bounds.fold(oldest, latest)
		}
		current = parent
		visited[current] = bounds
	}
	return visited
}

// CommonTimeBounds returns the intersection of the common validity
// intervals along the two walks from target and source up to their lowest
// common ancestor.
func (b *TransformBuffer) CommonTimeBounds(targetName, sourceName string) (oldestNS, newestNS uint64, ok bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	targetID, ok1 := b.registry.Lookup(targetName)
	sourceID, ok2 := b.registry.Lookup(sourceName)
	if !ok1 || !ok2 {
		return 0, 0, false
	}
	return b.commonTimeBoundsLocked(targetID, sourceID)
}

func (b *TransformBuffer) commonTimeBoundsLocked(targetID, sourceID transform.FrameID) (uint64, uint64, bool) {
	if targetID == transform.RootFrameID || sourceID == transform.RootFrameID {
		return 0, 0, false
	}

	sourceVisited := b.buildVisitedLocked(sourceID)

	current := targetID
	bounds := neutralBounds()
	for hops := 0; ; hops++ {
		if sourceBounds, ok := sourceVisited[current]; ok {
			merged := bounds.intersect(sourceBounds)
			if !merged.hasBound {
				return 0, 0, false
			}
			return merged.oldestNS, merged.newestNS, true
		}
		if hops >= maxWalkHops {
			return 0, 0, false
		}
		c, ok := b.registry.CacheFor(current)
		if !ok {
			return 0, 0, false
		}
		latest, parent, ok := c.LatestStampAndParent()
		if !ok {
			return 0, 0, false
		}
		if oldest, ok := c.OldestStamp(); ok {
			bounds = bounds.fold(oldest, latest)
		}
		current = parent
	}
}

// CanTransform reports whether target and source have a non-empty common
// time interval containing time, walking through fixed. Any unknown frame
// reports false rather than erroring.
func (b *TransformBuffer) CanTransform(targetName, sourceName, fixedName string, time uint64) bool {
	oldest1, newest1, ok1 := b.CommonTimeBounds(targetName, fixedName)
	if !ok1 || time < oldest1 || time > newest1 {
		return false
	}
	oldest2, newest2, ok2 := b.CommonTimeBounds(fixedName, sourceName)
	if !ok2 || time < oldest2 || time > newest2 {
		return false
	}
	return true
}

// LookupTransformFull performs a two-time lookup through a fixed reference
// frame: A = lookup(target, fixed, tTarget), B = lookup(fixed, source,
// tSource), result = A applied after B, restamped with tTarget.
func (b *TransformBuffer) LookupTransformFull(targetName string, tTarget uint64, sourceName string, tSource uint64, fixedName string) (transform.Record, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	a, err := b.lookupLocked(targetName, fixedName, tTarget)
	if err != nil {
		return transform.Record{}, err
	}
	bb, err := b.lookupLocked(fixedName, sourceName, tSource)
	if err != nil {
		return transform.Record{}, err
	}

	// a maps target->fixed, bb maps fixed->source; Compose(x,y) applies y
	// then x and requires x.ChildID == y.ParentID, so a is the outer/x
	// operand here (a.ChildID == fixed == bb.ParentID).
	combined := transform.Compose(a, bb)
	return combined.WithStamp(tTarget), nil
}

// AllFrameNames returns a snapshot of every interned frame name.
func (b *TransformBuffer) AllFrameNames() []string {
	return b.registry.AllNames()
}

// CacheLengthNS returns the retention window every temporal cache in this
// buffer was constructed with.
func (b *TransformBuffer) CacheLengthNS() uint64 {
	return b.cacheTimeNS
}

// LatestAuthorityFor returns the authority last recorded for name.
func (b *TransformBuffer) LatestAuthorityFor(name string) (string, bool) {
	return b.registry.AuthorityOf(name)
}

// Clear empties every frame's cache but preserves all interned ids, names,
// and authorities.
func (b *TransformBuffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.registry.Clear()
}
