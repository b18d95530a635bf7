package physics

import "math"

// SoftenedGravity is the pairwise attraction used between neighbor bodies:
// F = G*m_i*m_j*d / (|d|^2 + softening^2)^(3/2), clamped to MaxForce.
type SoftenedGravity struct {
	G         float64
	Softening float64
	// MaxForce bounds |F| per pair. Zero or negative disables the clamp.
	MaxForce float64
}

// PairForce returns the force on body i (at pi, mass mi) exerted by body j.
// Body j receives the exact negation. Coincident bodies yield ok=false and
// contribute nothing.
func (g SoftenedGravity) PairForce(pi, pj Vec2, mi, mj float64) (f Vec2, ok bool) {
	d := pj.Sub(pi)
	r2 := d.LenSq()
	if r2 <= 0 {
		return Vec2{}, false
	}
	rs2 := r2 + g.Softening*g.Softening
	invR3 := 1 / (rs2 * math.Sqrt(rs2))
	f = d.Mul(g.G * (mi * mj) * invR3)
	if g.MaxForce > 0 {
		f = ClampForce(f, g.MaxForce)
	}
	return f, true
}

// ClampForce rescales f to magnitude maxF when it is longer, keeping the
// direction. The zero vector passes through unchanged.
func ClampForce(f Vec2, maxF float64) Vec2 {
	mag2 := f.LenSq()
	if mag2 <= 0 || mag2 <= maxF*maxF {
		return f
	}
	return f.Mul(maxF / math.Sqrt(mag2))
}

// ForceAccumulator collects the net pairwise force on every body of one
// snapshot. It is rebuilt each tick.
type ForceAccumulator struct {
	Force []Vec2
	mass  []float64
	pairs int
}

func NewForceAccumulator(s *Snapshot) *ForceAccumulator {
	return &ForceAccumulator{
		Force: make([]Vec2, s.Len()),
		mass:  s.Mass,
	}
}

// Accumulate applies the law once to every pair, reading positions from the
// snapshot only.
func (a *ForceAccumulator) Accumulate(s *Snapshot, law SoftenedGravity, pairs []Pair) {
	for _, p := range pairs {
		f, ok := law.PairForce(s.Pos(p.I), s.Pos(p.J), s.Mass[p.I], s.Mass[p.J])
		if !ok {
			continue
		}
		a.Force[p.I] = a.Force[p.I].Add(f)
		a.Force[p.J] = a.Force[p.J].Sub(f)
		a.pairs++
	}
}

// Pairs reports how many pairs contributed a force.
func (a *ForceAccumulator) Pairs() int {
	return a.pairs
}

func (a *ForceAccumulator) Acceleration(i int) Vec2 {
	return a.Force[i].Mul(1 / a.mass[i])
}

// VelocityDeltas converts the net forces to dv = F/m*dt per body.
func (a *ForceAccumulator) VelocityDeltas(dt float64) []Vec2 {
	dv := make([]Vec2, len(a.Force))
	for i := range a.Force {
		if a.Force[i].IsZero() {
			continue
		}
		dv[i] = a.Acceleration(i).Mul(dt)
	}
	return dv
}

// NeighborVelocityDeltas runs the whole neighbor pass: pair selection on the
// snapshot positions, force accumulation, conversion to velocity deltas.
func NeighborVelocityDeltas(s *Snapshot, finder NeighborFinder, k int, law SoftenedGravity, dt float64) ([]Vec2, int) {
	pairs := finder.Pairs(s.Positions(), k)
	if len(pairs) == 0 {
		return make([]Vec2, s.Len()), 0
	}
	acc := NewForceAccumulator(s)
	acc.Accumulate(s, law, pairs)
	return acc.VelocityDeltas(dt), acc.Pairs()
}
