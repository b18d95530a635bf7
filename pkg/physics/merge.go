package physics

import (
	"math"
)

// MergedElasticity is the elasticity given to every merged body
// (perfectly inelastic).
const MergedElasticity = 0

// DefaultMergePasses is how many merges a tick performs at most.
const DefaultMergePasses = 5

// MergeWorld is the view of an engine world the merger needs.
type MergeWorld interface {
	// Circles returns the circular bodies in a stable order.
	Circles() []Body
	// Contains reports whether the body is still part of the world.
	Contains(id BodyID) bool
	// Replace removes a and b and inserts merged as one step, returning the
	// id given to the merged body.
	Replace(a, b BodyID, merged Body) (BodyID, error)
}

// MergeRequest names a pair flagged during an overlap scan.
type MergeRequest struct {
	A, B Body
}

// MergeResult describes one executed merge.
type MergeResult struct {
	Removed [2]BodyID
	Merged  Body
}

// Overlaps reports whether two circles touch or intersect. The per-axis
// check rejects far pairs before the exact distance test.
func Overlaps(a, b Body) bool {
	rsum := a.Radius + b.Radius
	if math.Abs(a.Pos.X-b.Pos.X) > rsum || math.Abs(a.Pos.Y-b.Pos.Y) > rsum {
		return false
	}
	return a.Pos.DistSq(b.Pos) <= rsum*rsum
}

// FindOverlap scans i ascending, j > i ascending and returns the first
// overlapping pair whose bodies are both still present. Bodies already
// consumed by an earlier merge are skipped silently.
func FindOverlap(bodies []Body, present func(BodyID) bool) (MergeRequest, bool) {
	for i := range bodies {
		if !present(bodies[i].ID) {
			continue
		}
		for j := i + 1; j < len(bodies); j++ {
			if !present(bodies[j].ID) {
				continue
			}
			if Overlaps(bodies[i], bodies[j]) {
				return MergeRequest{A: bodies[i], B: bodies[j]}, true
			}
		}
	}
	return MergeRequest{}, false
}

// MergeBodies combines two bodies into one. Linear momentum and volume
// (r^3) are conserved; the result is perfectly inelastic and keeps the
// rougher surface. It carries the central hook when either parent does.
func MergeBodies(a, b Body) (Body, bool) {
	m := a.Mass + b.Mass
	if m <= 0 {
		return Body{}, false
	}
	hook := HookDefault
	if a.Hook == HookCentral || b.Hook == HookCentral {
		hook = HookCentral
	}
	return Body{
		Mass:       m,
		Pos:        a.Pos.Mul(a.Mass).Add(b.Pos.Mul(b.Mass)).Mul(1 / m),
		Vel:        a.Vel.Mul(a.Mass).Add(b.Vel.Mul(b.Mass)).Mul(1 / m),
		Radius:     math.Cbrt(a.Volume() + b.Volume()),
		Friction:   math.Max(a.Friction, b.Friction),
		Elasticity: MergedElasticity,
		Hook:       hook,
	}, true
}

// MergeOnce merges the first overlapping pair of the world. It returns
// false when no pair overlaps, or when the pair could not be merged.
func MergeOnce(w MergeWorld) (MergeResult, bool, error) {
	req, ok := FindOverlap(w.Circles(), w.Contains)
	if !ok {
		return MergeResult{}, false, nil
	}
	merged, ok := MergeBodies(req.A, req.B)
	if !ok {
		return MergeResult{}, false, nil
	}
	id, err := w.Replace(req.A.ID, req.B.ID, merged)
	if err != nil {
		return MergeResult{}, false, err
	}
	merged.ID = id
	return MergeResult{Removed: [2]BodyID{req.A.ID, req.B.ID}, Merged: merged}, true, nil
}

// MergeOverlaps runs at most maxPasses merge passes and stops early once a
// pass finds nothing. Dense clusters can keep producing overlaps, so the
// bound is mandatory.
func MergeOverlaps(w MergeWorld, maxPasses int) ([]MergeResult, error) {
	var out []MergeResult
	for pass := 0; pass < maxPasses; pass++ {
		res, ok, err := MergeOnce(w)
		if err != nil {
			return out, err
		}
		if !ok {
			break
		}
		out = append(out, res)
	}
	return out, nil
}
