// Package tferrors defines the structured error taxonomy the transform
// buffer surfaces to callers. Every kind is a distinct typed value
// implementing error, carrying the specific fields that kind's triggering
// condition names; callers MAY pattern-match on Kind or use errors.As
// against the concrete type.
//
// Error Wrapping Guidelines:
// Errors here never wrap an underlying cause — the buffer recovers nothing
// itself and every ingestion/lookup error is total and self-contained, so
// there is nothing to Unwrap().
package tferrors

import "fmt"

// Kind identifies which error condition occurred, for callers that prefer
// a single comparable value over a type switch.
type Kind int

const (
	// KindUnknown is the catch-all for states that should not occur in a
	// correctly-used buffer.
	KindUnknown Kind = iota
	// KindEmpty means a cache was read with no records.
	KindEmpty
	// KindMatchingFrameIDs means parent == child after '/' stripping.
	KindMatchingFrameIDs
	// KindEmptyFrameID means an ingested parent or child name was empty.
	KindEmptyFrameID
	// KindUnknownFrameID means a lookup named a never-interned frame.
	KindUnknownFrameID
	// KindUnknownRelationBetweenFrames means no LCA was found, the walk
	// depth cap was exceeded, or no common validity interval existed.
	KindUnknownRelationBetweenFrames
	// KindSingleExtrapolation means a single-entry cache was queried at a
	// different time than its one record.
	KindSingleExtrapolation
	// KindFutureExtrapolation means the query time was above the newest
	// held sample.
	KindFutureExtrapolation
	// KindPastExtrapolation means the query time was below the oldest held
	// sample.
	KindPastExtrapolation
)

// Error is the interface every taxonomy member satisfies, in addition to
// the standard error interface, so callers can retrieve the Kind without a
// type switch over every concrete type.
type Error interface {
	error
	Kind() Kind
}

// UnknownError is the catch-all error, used only for states that indicate a
// bug in the buffer's own invariants rather than caller misuse.
type UnknownError struct {
	Detail string
}

func (e UnknownError) Error() string { return fmt.Sprintf("tfbuffer: unknown error: %s", e.Detail) }
func (e UnknownError) Kind() Kind    { return KindUnknown }

// EmptyError is returned by a cache Get with no stored records.
type EmptyError struct{}

func (e EmptyError) Error() string { return "tfbuffer: cache is empty" }
func (e EmptyError) Kind() Kind    { return KindEmpty }

// MatchingFrameIDsError is returned when set_transform is called with the
// same frame as both parent and child (after '/' stripping).
type MatchingFrameIDsError struct {
	Authority string
	Name      string
}

func (e MatchingFrameIDsError) Error() string {
	return fmt.Sprintf("tfbuffer: frame_id and child_frame_id are both %q (authority %q)", e.Name, e.Authority)
}
func (e MatchingFrameIDsError) Kind() Kind { return KindMatchingFrameIDs }

// EmptyFrameIDError is returned when SetTransform is called with an empty
// parent or child frame name. Which is one of "frame_id" (parent) or
// "child_frame_id" (child).
type EmptyFrameIDError struct {
	Authority string
	Which     string
}

func (e EmptyFrameIDError) Error() string {
	return fmt.Sprintf("tfbuffer: %s is empty (authority %q)", e.Which, e.Authority)
}
func (e EmptyFrameIDError) Kind() Kind { return KindEmptyFrameID }

// UnknownFrameIDError is returned by a lookup naming a frame that was never
// interned.
type UnknownFrameIDError struct {
	Name string
}

func (e UnknownFrameIDError) Error() string {
	return fmt.Sprintf("tfbuffer: unknown frame %q", e.Name)
}
func (e UnknownFrameIDError) Kind() Kind { return KindUnknownFrameID }

// UnknownRelationBetweenFramesError is returned when no lowest common
// ancestor exists between two frames, the graph walk depth cap (1000 hops
// per side) was exceeded, or no common validity interval exists for a
// time==0 query.
type UnknownRelationBetweenFramesError struct {
	TargetID uint32
	SourceID uint32
}

func (e UnknownRelationBetweenFramesError) Error() string {
	return fmt.Sprintf("tfbuffer: no known relation between frame %d and frame %d", e.TargetID, e.SourceID)
}
func (e UnknownRelationBetweenFramesError) Kind() Kind { return KindUnknownRelationBetweenFrames }

// SingleExtrapolationError is returned when a single-entry cache is queried
// at a time other than that entry's stamp.
type SingleExtrapolationError struct {
	RequestedNS uint64
	HeldNS      uint64
}

func (e SingleExtrapolationError) Error() string {
	return fmt.Sprintf("tfbuffer: requested time %d but cache holds only one sample at %d", e.RequestedNS, e.HeldNS)
}
func (e SingleExtrapolationError) Kind() Kind { return KindSingleExtrapolation }

// FutureExtrapolationError is returned when the requested time is newer
// than the newest held sample.
type FutureExtrapolationError struct {
	RequestedNS uint64
	NewestNS    uint64
}

func (e FutureExtrapolationError) Error() string {
	return fmt.Sprintf("tfbuffer: requested time %d is after the newest sample at %d", e.RequestedNS, e.NewestNS)
}
func (e FutureExtrapolationError) Kind() Kind { return KindFutureExtrapolation }

// PastExtrapolationError is returned when the requested time is older than
// the oldest held sample.
type PastExtrapolationError struct {
	RequestedNS uint64
	OldestNS    uint64
}

func (e PastExtrapolationError) Error() string {
	return fmt.Sprintf("tfbuffer: requested time %d is before the oldest sample at %d", e.RequestedNS, e.OldestNS)
}
func (e PastExtrapolationError) Kind() Kind { return KindPastExtrapolation }
