// Package transform implements the TransformRecord value type: a rigid
// transform from a parent frame to a child frame at a single instant, and
// the interpolation/composition operators defined on it.
package transform

import (
	"github.com/agbru/tfbuffer/internal/spatial"
)

// FrameID is a compact, monotonically-allocated frame identifier.
// Id 0 is reserved as the sentinel root (no parent).
type FrameID uint32

// RootFrameID is the sentinel id meaning "no parent" / the forest root.
// It owns no real transform.
const RootFrameID FrameID = 0

// LatestTime is the sentinel query timestamp meaning "the newest available
// sample", never stored as an actual sample timestamp.
const LatestTime uint64 = 0

// Record is a rigid transform from ParentID to ChildID at StampNS, expressed
// as a unit-quaternion rotation plus a translation.
type Record struct {
	Rotation    spatial.Quaternion
	Translation spatial.Vector3
	StampNS     uint64
	ParentID    FrameID
	ChildID     FrameID
}

// New constructs a Record, normalizing the rotation on entry so the unit
// quaternion invariant holds regardless of caller-supplied precision.
func New(rotation spatial.Quaternion, translation spatial.Vector3, stampNS uint64, parentID, childID FrameID) Record {
	return Record{
		Rotation:    rotation.Normalized(),
		Translation: translation,
		StampNS:     stampNS,
		ParentID:    parentID,
		ChildID:     childID,
	}
}

// Identity returns the zero-translation, identity-rotation record for the
// given edge at the given stamp.
func Identity(stampNS uint64, parentID, childID FrameID) Record {
	return Record{
		Rotation:    spatial.IdentityQuaternion,
		Translation: spatial.Zero,
		StampNS:     stampNS,
		ParentID:    parentID,
		ChildID:     childID,
	}
}

// Interpolate returns the transform at time t between a and b, where
// a.StampNS <= t <= b.StampNS and a.ParentID == b.ParentID (callers are
// responsible for detecting a parent change between a and b; Interpolate
// itself always blends). Translation interpolates linearly; rotation slerps
// along the shortest arc. Parent/child ids are inherited from a. If
// a.StampNS == b.StampNS, a is returned unchanged (avoids a 0/0 division).
func Interpolate(a, b Record, t uint64) Record {
	if a.StampNS == b.StampNS {
		return a
	}
	alpha := float64(t-a.StampNS) / float64(b.StampNS-a.StampNS)
	return Record{
		Rotation:    spatial.Slerp(a.Rotation, b.Rotation, alpha),
		Translation: spatial.Lerp(a.Translation, b.Translation, alpha),
		StampNS:     t,
		ParentID:    a.ParentID,
		ChildID:     a.ChildID,
	}
}

// Compose returns the rigid transform equivalent to applying y then x:
// combined rotation is x.Rotation * y.Rotation, combined translation is
// x.Translation + x.Rotation.RotateVector(y.Translation). The caller is
// responsible for ensuring the two transforms share a common frame
// (x.ChildID == y.ParentID); Compose itself is a pure algebraic operation
// and does not check frame compatibility.
func Compose(x, y Record) Record {
	return Record{
		Rotation:    x.Rotation.Multiply(y.Rotation),
		Translation: x.Translation.Add(x.Rotation.RotateVector(y.Translation)),
		ParentID:    y.ParentID,
		ChildID:     x.ChildID,
	}
}

// Inverse returns the transform mapping ChildID back to ParentID.
func (r Record) Inverse() Record {
	inv := r.Rotation.Inverse()
	return Record{
		Rotation:    inv,
		Translation: inv.RotateVector(r.Translation.Scale(-1)),
		ParentID:    r.ChildID,
		ChildID:     r.ParentID,
	}
}

// WithStamp returns a copy of r stamped at t.
func (r Record) WithStamp(t uint64) Record {
	r.StampNS = t
	return r
}

// Equal reports whether r and other are byte-exact duplicates: equal ids
// and stamp, plus bitwise-equal rotation and translation components.
func (r Record) Equal(other Record) bool {
	return r.StampNS == other.StampNS &&
		r.ParentID == other.ParentID &&
		r.ChildID == other.ChildID &&
		r.Translation == other.Translation &&
		r.Rotation == other.Rotation
}

// Less implements a total order over records for cache storage:
// lexicographic by (stamp, parent, child, translation, rotation). Cache
// storage keeps records in descending stamp order, so Less is primarily
// used to break ties among same-timestamp records deterministically.
func Less(a, b Record) bool {
	if a.StampNS != b.StampNS {
		return a.StampNS < b.StampNS
	}
	if a.ParentID != b.ParentID {
		return a.ParentID < b.ParentID
	}
	if a.ChildID != b.ChildID {
		return a.ChildID < b.ChildID
	}
	if a.Translation != b.Translation {
		return lessVector(a.Translation, b.Translation)
	}
	return lessQuaternion(a.Rotation, b.Rotation)
}

func lessVector(a, b spatial.Vector3) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	return a.Z < b.Z
}

func lessQuaternion(a, b spatial.Quaternion) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	if a.Z != b.Z {
		return a.Z < b.Z
	}
	return a.W < b.W
}
