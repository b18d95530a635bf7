package physics

import (
	"errors"
	"math"
	"testing"
)

// memWorld is a minimal MergeWorld over a slice.
type memWorld struct {
	bodies []Body
	nextID BodyID
	fail   bool
}

func newMemWorld(bodies ...Body) *memWorld {
	w := &memWorld{nextID: 1}
	for _, b := range bodies {
		b.ID = w.nextID
		w.nextID++
		w.bodies = append(w.bodies, b)
	}
	return w
}

func (w *memWorld) Circles() []Body {
	return append([]Body(nil), w.bodies...)
}

func (w *memWorld) Contains(id BodyID) bool {
	for _, b := range w.bodies {
		if b.ID == id {
			return true
		}
	}
	return false
}

func (w *memWorld) Replace(a, b BodyID, merged Body) (BodyID, error) {
	if w.fail {
		return 0, errors.New("replace failed")
	}
	kept := w.bodies[:0]
	for _, x := range w.bodies {
		if x.ID != a && x.ID != b {
			kept = append(kept, x)
		}
	}
	merged.ID = w.nextID
	w.nextID++
	w.bodies = append(kept, merged)
	return merged.ID, nil
}

func TestMergeBodiesConservation(t *testing.T) {
	a := Body{Mass: 1, Pos: Vec2{0, 0}, Vel: Vec2{3, -1}, Radius: 3, Friction: 0.7, Elasticity: 0.5, Hook: HookCentral}
	b := Body{Mass: 3, Pos: Vec2{4, 0}, Vel: Vec2{-1, 2}, Radius: 4, Friction: 0.9, Elasticity: 1}
	m, ok := MergeBodies(a, b)
	if !ok {
		t.Fatal("MergeBodies refused positive masses")
	}
	if m.Mass != 4 {
		t.Errorf("mass %v, want 4", m.Mass)
	}
	wantVel := Vec2{(1*3 + 3*-1) / 4.0, (1*-1 + 3*2) / 4.0}
	if math.Abs(m.Vel.X-wantVel.X) > 1e-12 || math.Abs(m.Vel.Y-wantVel.Y) > 1e-12 {
		t.Errorf("velocity %v, want %v", m.Vel, wantVel)
	}
	if p0, p1 := a.Momentum().Add(b.Momentum()), m.Momentum(); p0.Dist(p1) > 1e-12 {
		t.Errorf("momentum %v before, %v after", p0, p1)
	}
	if m.Pos != (Vec2{3, 0}) {
		t.Errorf("position %v, want center of mass (3, 0)", m.Pos)
	}
	if got, want := m.Volume(), a.Volume()+b.Volume(); math.Abs(got-want) > 1e-9*want {
		t.Errorf("r^3 = %v, want %v", got, want)
	}
	if m.Friction != 0.9 {
		t.Errorf("friction %v, want the max 0.9", m.Friction)
	}
	if m.Elasticity != MergedElasticity {
		t.Errorf("elasticity %v, want %v", m.Elasticity, MergedElasticity)
	}
	if m.Hook != HookCentral {
		t.Errorf("hook %v, want central carried from a parent", m.Hook)
	}
}

type hookTest struct {
	a, b, want VelocityHook
}

var hookTests = []hookTest{
	{HookDefault, HookDefault, HookDefault},
	{HookCentral, HookDefault, HookCentral},
	{HookDefault, HookCentral, HookCentral},
	{HookCentral, HookCentral, HookCentral},
}

func TestMergeHookInheritance(t *testing.T) {
	for _, ht := range hookTests {
		m, _ := MergeBodies(Body{Mass: 1, Radius: 1, Hook: ht.a}, Body{Mass: 1, Radius: 1, Hook: ht.b})
		if m.Hook != ht.want {
			t.Errorf("MergeBodies(%v, %v) hook = %v, want %v", ht.a, ht.b, m.Hook, ht.want)
		}
	}
}

type overlapTest struct {
	a, b Body
	want bool
}

var overlapTests = []overlapTest{
	{Body{Pos: Vec2{0, 0}, Radius: 1}, Body{Pos: Vec2{2, 0}, Radius: 1}, true},
	{Body{Pos: Vec2{0, 0}, Radius: 1}, Body{Pos: Vec2{2.01, 0}, Radius: 1}, false},
	{Body{Pos: Vec2{0, 0}, Radius: 1}, Body{Pos: Vec2{1.5, 1.5}, Radius: 1}, false},
	{Body{Pos: Vec2{0, 0}, Radius: 3}, Body{Pos: Vec2{1, 1}, Radius: 0.5}, true},
}

func TestOverlaps(t *testing.T) {
	for _, ot := range overlapTests {
		if got := Overlaps(ot.a, ot.b); got != ot.want {
			t.Errorf("Overlaps(%v r%v, %v r%v) = %v, want %v", ot.a.Pos, ot.a.Radius, ot.b.Pos, ot.b.Radius, got, ot.want)
		}
	}
}

func TestMergeOnceNoOverlap(t *testing.T) {
	w := newMemWorld(
		Body{Mass: 1, Pos: Vec2{0, 0}, Radius: 3},
		Body{Mass: 1, Pos: Vec2{10, 0}, Radius: 3},
		Body{Mass: 1, Pos: Vec2{0, 10}, Radius: 3},
	)
	before := w.Circles()
	_, ok, err := MergeOnce(w)
	if err != nil || ok {
		t.Fatalf("MergeOnce = %v, %v; want no merge", ok, err)
	}
	after := w.Circles()
	if len(after) != len(before) {
		t.Fatalf("world changed size: %d -> %d", len(before), len(after))
	}
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("body %d changed: %+v -> %+v", i, before[i], after[i])
		}
	}
}

func TestMergeOnceFirstPairWins(t *testing.T) {
	w := newMemWorld(
		Body{Mass: 1, Pos: Vec2{0, 0}, Radius: 3},   // 1
		Body{Mass: 1, Pos: Vec2{100, 0}, Radius: 3}, // 2
		Body{Mass: 1, Pos: Vec2{104, 0}, Radius: 3}, // 3, overlaps 2
		Body{Mass: 1, Pos: Vec2{2, 0}, Radius: 3},   // 4, overlaps 1
	)
	res, ok, err := MergeOnce(w)
	if err != nil || !ok {
		t.Fatalf("MergeOnce = %v, %v", ok, err)
	}
	// i=0 is scanned first, so (1,4) beats (2,3)
	if res.Removed != [2]BodyID{1, 4} {
		t.Errorf("merged %v, want [1 4]", res.Removed)
	}
	if w.Contains(1) || w.Contains(4) || !w.Contains(res.Merged.ID) {
		t.Errorf("world after merge: %+v", w.Circles())
	}
	if len(w.Circles()) != 3 {
		t.Errorf("got %d bodies, want 3", len(w.Circles()))
	}
}

func TestMergeOverlapsBounded(t *testing.T) {
	// a tight cluster where every merge produces a new overlap
	var bodies []Body
	for i := 0; i < 20; i++ {
		bodies = append(bodies, Body{Mass: 1, Pos: Vec2{float64(i), 0}, Radius: 1})
	}
	w := newMemWorld(bodies...)
	res, err := MergeOverlaps(w, DefaultMergePasses)
	if err != nil {
		t.Fatal(err)
	}
	if len(res) != DefaultMergePasses {
		t.Errorf("ran %d merges, want the bound %d", len(res), DefaultMergePasses)
	}
	if got := len(w.Circles()); got != 20-DefaultMergePasses {
		t.Errorf("got %d bodies, want %d", got, 20-DefaultMergePasses)
	}

	var mass float64
	for _, b := range w.Circles() {
		mass += b.Mass
	}
	if mass != 20 {
		t.Errorf("total mass %v, want 20", mass)
	}
}

func TestMergeOverlapsStopsEarly(t *testing.T) {
	w := newMemWorld(
		Body{Mass: 1, Pos: Vec2{0, 0}, Radius: 1},
		Body{Mass: 1, Pos: Vec2{1, 0}, Radius: 1},
		Body{Mass: 1, Pos: Vec2{50, 0}, Radius: 1},
	)
	res, err := MergeOverlaps(w, 5)
	if err != nil || len(res) != 1 {
		t.Errorf("MergeOverlaps = %d merges, %v; want 1", len(res), err)
	}
}

func TestFindOverlapSkipsRemoved(t *testing.T) {
	bodies := []Body{
		{ID: 1, Pos: Vec2{0, 0}, Radius: 1},
		{ID: 2, Pos: Vec2{1, 0}, Radius: 1},
		{ID: 3, Pos: Vec2{1.5, 0}, Radius: 1},
	}
	gone := map[BodyID]bool{1: true}
	req, ok := FindOverlap(bodies, func(id BodyID) bool { return !gone[id] })
	if !ok || req.A.ID != 2 || req.B.ID != 3 {
		t.Errorf("FindOverlap = %+v, %v; want bodies 2 and 3", req, ok)
	}
}

func TestMergeOnceReplaceError(t *testing.T) {
	w := newMemWorld(
		Body{Mass: 1, Pos: Vec2{0, 0}, Radius: 1},
		Body{Mass: 1, Pos: Vec2{1, 0}, Radius: 1},
	)
	w.fail = true
	if _, ok, err := MergeOnce(w); ok || err == nil {
		t.Errorf("MergeOnce = %v, %v; want the replace error", ok, err)
	}
}
