package buffer

import (
	"fmt"
	"math"
	"testing"

	"github.com/agbru/tfbuffer/internal/spatial"
	"github.com/agbru/tfbuffer/internal/tferrors"
	"github.com/agbru/tfbuffer/internal/transform"
)

func input(stamp uint64, parent, child string, tx, ty, tz float64) TransformInput {
	return TransformInput{
		StampNS:     stamp,
		ParentName:  parent,
		ChildName:   child,
		Translation: spatial.Vector3{X: tx, Y: ty, Z: tz},
		Rotation:    spatial.IdentityQuaternion,
	}
}

// Seed scenario 1: insert identity (parent=a, child=b1, stamp=1);
// lookup("b1","a",0) is identity, and id(a) != id(b1).
func TestSetTransform_SeedScenario1(t *testing.T) {
	b := New(1_000_000_000)
	if err := b.SetTransform(input(1, "a", "b1", 0, 0, 0), "test", false); err != nil {
		t.Fatalf("SetTransform: %v", err)
	}

	got, err := b.LookupTransform("b1", "a", 0)
	if err != nil {
		t.Fatalf("LookupTransform: %v", err)
	}
	if got.Rotation != spatial.IdentityQuaternion || got.Translation != spatial.Zero {
		t.Errorf("LookupTransform(b1,a,0) = %+v, want identity", got)
	}

	aID, _ := b.registry.Lookup("a")
	b1ID, _ := b.registry.Lookup("b1")
	if aID == b1ID {
		t.Error("distinct frame names must intern to distinct ids")
	}
}

// Seed scenario 2: insert (a->b1,stamp=1) and (a->c1,stamp=1);
// common_time_bounds(c1,b1) -> (1,1).
func TestCommonTimeBounds_SeedScenario2(t *testing.T) {
	b := New(1_000_000_000)
	must(t, b.SetTransform(input(1, "a", "b1", 1, 0, 0), "test", false))
	must(t, b.SetTransform(input(1, "a", "c1", 2, 0, 0), "test", false))

	oldest, newest, ok := b.CommonTimeBounds("c1", "b1")
	if !ok || oldest != 1 || newest != 1 {
		t.Fatalf("CommonTimeBounds(c1,b1) = (%d,%d,%v), want (1,1,true)", oldest, newest, ok)
	}
}

// Seed scenario 3: chain a->c1->c2->c3->c4 with stamps 1..4;
// common_time_bounds(c1,c4) -> (4,2).
func TestCommonTimeBounds_SeedScenario3(t *testing.T) {
	b := New(1_000_000_000)
	must(t, b.SetTransform(input(1, "a", "c1", 0, 0, 0), "test", false))
	must(t, b.SetTransform(input(2, "c1", "c2", 0, 0, 0), "test", false))
	must(t, b.SetTransform(input(3, "c2", "c3", 0, 0, 0), "test", false))
	must(t, b.SetTransform(input(4, "c3", "c4", 0, 0, 0), "test", false))

	oldest, newest, ok := b.CommonTimeBounds("c1", "c4")
	if !ok || oldest != 4 || newest != 2 {
		t.Fatalf("CommonTimeBounds(c1,c4) = (%d,%d,%v), want (4,2,true)", oldest, newest, ok)
	}
}

// Seed scenario 4: insert(parent="parent", child="parent", stamp=0) ->
// MatchingFrameIDs.
func TestSetTransform_SeedScenario4(t *testing.T) {
	b := New(1_000_000_000)
	err := b.SetTransform(input(0, "parent", "parent", 0, 0, 0), "a", false)
	if _, ok := err.(tferrors.MatchingFrameIDsError); !ok {
		t.Fatalf("SetTransform err = %v, want MatchingFrameIDsError", err)
	}
	if b.registry.Size() != 0 {
		t.Errorf("registry size = %d after rejected insert, want 0", b.registry.Size())
	}
}

// Seed scenario 5: insert(parent="", child="p", stamp=0, authority="a") ->
// EmptyFrameID("a","frame_id").
func TestSetTransform_SeedScenario5(t *testing.T) {
	b := New(1_000_000_000)
	err := b.SetTransform(input(0, "", "p", 0, 0, 0), "a", false)
	efi, ok := err.(tferrors.EmptyFrameIDError)
	if !ok || efi.Authority != "a" || efi.Which != "frame_id" {
		t.Fatalf("SetTransform err = %v, want EmptyFrameIDError{a,frame_id}", err)
	}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// P2: ingestion validation leaves the registry unchanged on error.
func TestSetTransform_EmptyChildLeavesRegistryUnchanged(t *testing.T) {
	b := New(1_000_000_000)
	must(t, b.SetTransform(input(1, "odom", "base", 0, 0, 0), "a", false))
	sizeBefore := b.registry.Size()

	err := b.SetTransform(input(2, "odom", "", 0, 0, 0), "a", false)
	efi, ok := err.(tferrors.EmptyFrameIDError)
	if !ok || efi.Which != "child_frame_id" {
		t.Fatalf("err = %v, want EmptyFrameIDError{child_frame_id}", err)
	}
	if b.registry.Size() != sizeBefore {
		t.Errorf("registry size changed on rejected ingestion: %d -> %d", sizeBefore, b.registry.Size())
	}
}

// P7: identity lookup for any known frame.
func TestLookupTransform_IdentityForKnownFrame(t *testing.T) {
	b := New(1_000_000_000)
	must(t, b.SetTransform(input(5, "odom", "base_link", 1, 2, 3), "test", false))

	got, err := b.LookupTransform("base_link", "base_link", 7)
	if err != nil {
		t.Fatalf("LookupTransform: %v", err)
	}
	if got.Rotation != spatial.IdentityQuaternion || got.Translation != spatial.Zero || got.StampNS != 7 {
		t.Errorf("identity lookup = %+v, want identity stamped at 7", got)
	}
}

func TestLookupTransform_UnknownFrameNames(t *testing.T) {
	b := New(1_000_000_000)
	must(t, b.SetTransform(input(1, "odom", "base_link", 0, 0, 0), "test", false))

	_, err := b.LookupTransform("nope", "odom", 1)
	if _, ok := err.(tferrors.UnknownFrameIDError); !ok {
		t.Fatalf("err = %v, want UnknownFrameIDError", err)
	}
	_, err = b.LookupTransform("odom", "nope", 1)
	if _, ok := err.(tferrors.UnknownFrameIDError); !ok {
		t.Fatalf("err = %v, want UnknownFrameIDError", err)
	}
}

// P8: a chain of 1001 frames exceeds the walk cap.
func TestLookupTransform_WalkCapExceeded(t *testing.T) {
	b := New(1_000_000_000)
	parent := "c1"
	for i := 2; i <= 1002; i++ {
		child := fmt.Sprintf("c%d", i)
		must(t, b.SetTransform(input(uint64(i), parent, child, 1, 0, 0), "test", false))
		parent = child
	}

	_, err := b.LookupTransform("c1", "c1002", 1)
	if _, ok := err.(tferrors.UnknownRelationBetweenFramesError); !ok {
		t.Fatalf("err = %v, want UnknownRelationBetweenFramesError", err)
	}
}

// P9: frames in two never-connected trees under the sentinel root.
func TestLookupTransform_DisjointTrees(t *testing.T) {
	b := New(1_000_000_000)
	must(t, b.SetTransform(input(1, "rootA", "leafA", 0, 0, 0), "test", false))
	must(t, b.SetTransform(input(1, "rootB", "leafB", 0, 0, 0), "test", false))

	_, err := b.LookupTransform("leafA", "leafB", 1)
	if _, ok := err.(tferrors.UnknownRelationBetweenFramesError); !ok {
		t.Fatalf("err = %v, want UnknownRelationBetweenFramesError", err)
	}
}

// P10: round-trip composition lookup(A,C,t) == lookup(A,B,t) composed with
// lookup(B,C,t), for a simple three-frame chain A<-B<-C at a shared time.
func TestLookupTransform_RoundTripComposition(t *testing.T) {
	b := New(1_000_000_000)
	must(t, b.SetTransform(input(5, "A", "B", 1, 0, 0), "test", false))
	must(t, b.SetTransform(input(5, "B", "C", 0, 1, 0), "test", false))

	ac, err := b.LookupTransform("A", "C", 5)
	if err != nil {
		t.Fatalf("LookupTransform(A,C): %v", err)
	}
	ab, err := b.LookupTransform("A", "B", 5)
	if err != nil {
		t.Fatalf("LookupTransform(A,B): %v", err)
	}
	bc, err := b.LookupTransform("B", "C", 5)
	if err != nil {
		t.Fatalf("LookupTransform(B,C): %v", err)
	}

	composed := transform.Compose(ab, bc)
	if !composed.Translation.AlmostEqual(ac.Translation, 1e-9) {
		t.Errorf("composed translation = %+v, want %+v", composed.Translation, ac.Translation)
	}
	if composed.Rotation != ac.Rotation {
		t.Errorf("composed rotation = %+v, want %+v", composed.Rotation, ac.Rotation)
	}
}

// P10, non-identity case: composing two non-commuting rotations through a
// three-frame chain must fold them in walk order (leaf-nearest hop inner,
// root-nearest hop outer), not multiplication order. A<-B carries a 90
// degree turn about Z, B<-C a 90 degree turn about X; rotating (1,2,3)
// through the composed A<-C transform must land on (3,1,2), the same
// result as applying the X turn then the Z turn directly.
func TestLookupTransform_RoundTripComposition_NonIdentityRotation(t *testing.T) {
	half := math.Sqrt2 / 2
	qz90 := spatial.Quaternion{Z: half, W: half}
	qx90 := spatial.Quaternion{X: half, W: half}

	b := New(1_000_000_000)
	must(t, b.SetTransform(TransformInput{StampNS: 5, ParentName: "A", ChildName: "B", Rotation: qz90}, "test", false))
	must(t, b.SetTransform(TransformInput{StampNS: 5, ParentName: "B", ChildName: "C", Rotation: qx90}, "test", false))

	ac, err := b.LookupTransform("A", "C", 5)
	if err != nil {
		t.Fatalf("LookupTransform(A,C): %v", err)
	}

	got := ac.Rotation.RotateVector(spatial.Vector3{X: 1, Y: 2, Z: 3})
	want := spatial.Vector3{X: 3, Y: 1, Z: 2}
	if !got.AlmostEqual(want, 1e-9) {
		t.Errorf("rotated (1,2,3) through A<-C = %+v, want %+v", got, want)
	}

	ab, err := b.LookupTransform("A", "B", 5)
	if err != nil {
		t.Fatalf("LookupTransform(A,B): %v", err)
	}
	bc, err := b.LookupTransform("B", "C", 5)
	if err != nil {
		t.Fatalf("LookupTransform(B,C): %v", err)
	}
	composed := transform.Compose(ab, bc)
	if composed.Rotation != ac.Rotation {
		t.Errorf("Compose(ab,bc).Rotation = %+v, want %+v", composed.Rotation, ac.Rotation)
	}
}

func TestCanTransform_TrueWithinCommonInterval(t *testing.T) {
	b := New(1_000_000_000)
	must(t, b.SetTransform(input(1, "odom", "base", 0, 0, 0), "test", false))
	must(t, b.SetTransform(input(10, "odom", "base", 0, 0, 0), "test", false))
	must(t, b.SetTransform(input(1, "odom", "laser", 0, 0, 0), "test", false))
	must(t, b.SetTransform(input(10, "odom", "laser", 0, 0, 0), "test", false))

	if !b.CanTransform("base", "laser", "odom", 5) {
		t.Error("CanTransform should be true for a time within both frames' coverage")
	}
	if b.CanTransform("base", "laser", "odom", 20) {
		t.Error("CanTransform should be false for a time past both frames' coverage")
	}
}

func TestCanTransform_UnknownFrameIsFalse(t *testing.T) {
	b := New(1_000_000_000)
	if b.CanTransform("nope", "also-nope", "fixed", 1) {
		t.Error("CanTransform with unknown frames should be false, not error")
	}
}

func TestLookupTransformFull_ComposesThroughFixedFrame(t *testing.T) {
	b := New(1_000_000_000)
	must(t, b.SetTransform(input(1, "map", "odom", 1, 0, 0), "test", false))
	must(t, b.SetTransform(input(1, "odom", "base_link", 0, 1, 0), "test", false))

	got, err := b.LookupTransformFull("map", 1, "base_link", 1, "odom")
	if err != nil {
		t.Fatalf("LookupTransformFull: %v", err)
	}
	direct, err := b.LookupTransform("map", "base_link", 1)
	if err != nil {
		t.Fatalf("LookupTransform: %v", err)
	}
	if !got.Translation.AlmostEqual(direct.Translation, 1e-9) {
		t.Errorf("LookupTransformFull translation = %+v, want %+v", got.Translation, direct.Translation)
	}
	if got.StampNS != 1 {
		t.Errorf("LookupTransformFull.StampNS = %d, want 1 (restamped to t_target)", got.StampNS)
	}
}

func TestClear_EmptiesCachesButKeepsFrameNames(t *testing.T) {
	b := New(1_000_000_000)
	must(t, b.SetTransform(input(1, "odom", "base", 0, 0, 0), "test", false))

	b.Clear()

	_, err := b.LookupTransform("base", "odom", 1)
	if err == nil {
		t.Fatal("LookupTransform after Clear should fail: the cache is empty")
	}
	names := b.AllFrameNames()
	if len(names) != 2 {
		t.Errorf("AllFrameNames() after Clear = %v, want 2 names still interned", names)
	}
}

func TestAuthority_TracksMostRecentSetter(t *testing.T) {
	b := New(1_000_000_000)
	must(t, b.SetTransform(input(1, "odom", "base", 0, 0, 0), "producer-1", false))
	must(t, b.SetTransform(input(2, "odom", "base", 0, 0, 0), "producer-2", false))

	got, ok := b.LatestAuthorityFor("base")
	if !ok || got != "producer-2" {
		t.Errorf("LatestAuthorityFor(base) = %q,%v want producer-2,true", got, ok)
	}
}

func TestCacheLengthNS_ReflectsConstruction(t *testing.T) {
	b := New(42)
	if got := b.CacheLengthNS(); got != 42 {
		t.Errorf("CacheLengthNS() = %d, want 42", got)
	}
}
