package buffer

import (
	"github.com/agbru/tfbuffer/internal/spatial"
	"github.com/agbru/tfbuffer/internal/transform"
)

// chainSide accumulates one side (source or target) of a frame-forest walk:
// the single rigid transform equivalent to composing every hop walked so
// far, from the original leaf frame toward the frame currently reached.
type chainSide struct {
	rotation    spatial.Quaternion
	translation spatial.Vector3
}

func identitySide() chainSide {
	return chainSide{rotation: spatial.IdentityQuaternion, translation: spatial.Zero}
}

// accum folds one more hop into the chain. The walk reads hops nearest the
// original leaf first and works outward, so the newly-read record is always
// the outer transform and the walk-so-far (s) is the inner one: record is
// applied after s, not before it.
func (s chainSide) accum(record transform.Record) chainSide {
	return chainSide{
		rotation:    record.Rotation.Multiply(s.rotation),
		translation: record.Translation.Add(record.Rotation.RotateVector(s.translation)),
	}
}

// inverse returns the transform mapping the other way.
func (s chainSide) inverse() chainSide {
	inv := s.rotation.Inverse()
	return chainSide{
		rotation:    inv,
		translation: inv.RotateVector(s.translation.Scale(-1)),
	}
}

// compose returns s ∘ other: other applied first, then s.
func (s chainSide) compose(other chainSide) chainSide {
	return chainSide{
		rotation:    s.rotation.Multiply(other.rotation),
		translation: s.translation.Add(s.rotation.RotateVector(other.translation)),
	}
}

// chainEnding names which of the three endings a completed frame-forest
// walk can reach.
type chainEnding int

const (
	// endingTargetIsLCA means the target frame itself is the lowest common
	// ancestor; the source-side chain is the answer as-is.
	endingTargetIsLCA chainEnding = iota
	// endingSourceIsLCA means the source frame itself is the lowest common
	// ancestor; the answer is the inverse of the target-side chain.
	endingSourceIsLCA
	// endingFullPath means neither frame is the LCA; the answer composes
	// both chains through it.
	endingFullPath
)

// chainAccumulator holds the two independent accumulators for a
// frame-forest walk, one per side (source and target).
type chainAccumulator struct {
	source chainSide
	target chainSide
}

func newChainAccumulator() *chainAccumulator {
	return &chainAccumulator{source: identitySide(), target: identitySide()}
}

func (c *chainAccumulator) accumSource(record transform.Record) {
	c.source = c.source.accum(record)
}

func (c *chainAccumulator) accumTarget(record transform.Record) {
	c.target = c.target.accum(record)
}

// finalize returns the composed (rotation, translation) pair per the ending
// the walk reached.
func (c *chainAccumulator) finalize(ending chainEnding) (spatial.Quaternion, spatial.Vector3) {
	switch ending {
	case endingTargetIsLCA:
		return c.source.rotation, c.source.translation
	case endingSourceIsLCA:
		inv := c.target.inverse()
		return inv.rotation, inv.translation
	default:
		composed := c.target.inverse().compose(c.source)
		return composed.rotation, composed.translation
	}
}
