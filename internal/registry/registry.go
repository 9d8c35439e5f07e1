// Package registry implements the FrameRegistry: a string-name to
// compact-id bimap, plus per-frame authority tracking and the lazy
// allocation of each frame's cache (Temporal or Static) on first mention.
package registry

import (
	"strings"
	"sync"

	"github.com/agbru/tfbuffer/internal/cache"
	"github.com/agbru/tfbuffer/internal/transform"
)

// FrameRegistry maps frame names to compact ids, tracks the authority that
// last asserted each frame's incoming edge, and owns the cache vector
// TransformBuffer reads and writes through. Id 0 is the reserved root
// sentinel (NO_PARENT); it owns no cache and no real name.
//
// The maps and the cache vector are protected by a single readers/writer
// lock, held only for the duration of each method call. The contents of
// the caches, and walks that read many frames in one snapshot, rely on the
// owning TransformBuffer's lock, which it holds across a whole lookup or
// ingestion.
type FrameRegistry struct {
	mu sync.RWMutex

	nameToID      map[string]transform.FrameID
	idToName      []string
	idToAuthority []string
	caches        []cache.Cache

	defaultCacheTimeNS uint64
}

// New constructs a FrameRegistry whose newly-interned temporal caches use
// defaultCacheTimeNS as their retention window. Id 0 is pre-seeded as the
// root sentinel.
func New(defaultCacheTimeNS uint64) *FrameRegistry {
	return &FrameRegistry{
		nameToID:           map[string]transform.FrameID{},
		idToName:           []string{""},
		idToAuthority:      []string{""},
		caches:             []cache.Cache{nil},
		defaultCacheTimeNS: defaultCacheTimeNS,
	}
}

// StripLeadingSlash removes a single leading '/' from name, the
// normalization applied before any name comparison. Exported so callers
// that must validate a name before interning it (TransformBuffer's
// SetTransform) can apply the same normalization.
func StripLeadingSlash(name string) string {
	return strings.TrimPrefix(name, "/")
}

// Intern strips a leading '/' from name and returns its id, allocating a
// new id and cache (Temporal or Static, per isStatic) if name has not been
// seen before. On re-declaration of an existing name, isStatic is ignored —
// the first declaration wins.
func (r *FrameRegistry) Intern(name string, isStatic bool) transform.FrameID {
	stripped := StripLeadingSlash(name)

	r.mu.RLock()
	if id, ok := r.nameToID[stripped]; ok {
		r.mu.RUnlock()
		return id
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.nameToID[stripped]; ok {
		return id
	}

	id := transform.FrameID(len(r.idToName))
	r.idToName = append(r.idToName, stripped)
	r.nameToID[stripped] = id
	r.idToAuthority = append(r.idToAuthority, "")

	var c cache.Cache
	if isStatic {
		c = cache.NewStaticCache()
	} else {
		c = cache.NewTemporalCache(r.defaultCacheTimeNS)
	}
	r.caches = append(r.caches, c)

	return id
}

// Lookup returns the id of an already-interned name, stripping the leading
// '/' the same way Intern does.
func (r *FrameRegistry) Lookup(name string) (transform.FrameID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.nameToID[StripLeadingSlash(name)]
	return id, ok
}

// NameOf returns the stripped name stored for id.
func (r *FrameRegistry) NameOf(id transform.FrameID) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if int(id) <= 0 || int(id) >= len(r.idToName) {
		return "", false
	}
	return r.idToName[id], true
}

// SetAuthority records the producer that most recently asserted childID's
// incoming edge.
func (r *FrameRegistry) SetAuthority(childID transform.FrameID, authority string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if int(childID) > 0 && int(childID) < len(r.idToAuthority) {
		r.idToAuthority[childID] = authority
	}
}

// AuthorityOf returns the authority last recorded for name.
func (r *FrameRegistry) AuthorityOf(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.nameToID[StripLeadingSlash(name)]
	if !ok {
		return "", false
	}
	return r.idToAuthority[id], true
}

// AllNames returns a snapshot of every interned frame name, excluding the
// reserved root sentinel.
func (r *FrameRegistry) AllNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.idToName)-1)
	out = append(out, r.idToName[1:]...)
	return out
}

// CacheFor returns the cache for id, or ok=false for the root sentinel or
// an id that was never interned.
func (r *FrameRegistry) CacheFor(id transform.FrameID) (cache.Cache, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if int(id) <= 0 || int(id) >= len(r.caches) {
		return nil, false
	}
	return r.caches[id], true
}

// Size returns the number of real (non-root) frames currently interned.
func (r *FrameRegistry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.idToName) - 1
}

// Clear empties every frame's cache but preserves all interned ids, names,
// and authorities.
func (r *FrameRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.caches {
		if c != nil {
			c.Clear()
		}
	}
}
