package physics

import "math"

// BodyID identifies a body inside a world. IDs are never reused by an engine.
type BodyID uint64

// VelocityHook selects how the engine integrates a body's velocity.
type VelocityHook uint8

const (
	// HookDefault is the engine's own update: v = damping*v + gravity*dt.
	HookDefault VelocityHook = iota
	// HookCentral replaces the engine gravity with CentralGravity.
	HookCentral
)

func (h VelocityHook) String() string {
	switch h {
	case HookCentral:
		return "central"
	default:
		return "default"
	}
}

// --- Physical body ---
type Body struct {
	ID         BodyID
	Mass       float64
	Pos        Vec2
	Vel        Vec2
	Radius     float64
	Angle      float64
	AngVel     float64
	Friction   float64
	Elasticity float64
	Hook       VelocityHook
}

func (b Body) Momentum() Vec2 {
	return b.Vel.Mul(b.Mass)
}

func (b Body) KineticEnergy() float64 {
	return 0.5 * b.Mass * b.Vel.LenSq()
}

// Volume is the radius cubed; merges conserve it under constant density.
func (b Body) Volume() float64 {
	return b.Radius * b.Radius * b.Radius
}

// Snapshot is a structure-of-arrays copy of a set of bodies taken at the
// start of a force pass. All pairwise distances in one pass read from it.
type Snapshot struct {
	IDs    []BodyID
	PX, PY []float64
	VX, VY []float64
	Mass   []float64
	Radius []float64
}

func NewSnapshot(bodies []Body) *Snapshot {
	n := len(bodies)
	s := &Snapshot{
		IDs:    make([]BodyID, n),
		PX:     make([]float64, n),
		PY:     make([]float64, n),
		VX:     make([]float64, n),
		VY:     make([]float64, n),
		Mass:   make([]float64, n),
		Radius: make([]float64, n),
	}
	for i, b := range bodies {
		s.IDs[i] = b.ID
		s.PX[i], s.PY[i] = b.Pos.X, b.Pos.Y
		s.VX[i], s.VY[i] = b.Vel.X, b.Vel.Y
		s.Mass[i] = b.Mass
		s.Radius[i] = b.Radius
	}
	return s
}

func (s *Snapshot) Len() int {
	return len(s.IDs)
}

func (s *Snapshot) Pos(i int) Vec2 {
	return Vec2{s.PX[i], s.PY[i]}
}

func (s *Snapshot) Vel(i int) Vec2 {
	return Vec2{s.VX[i], s.VY[i]}
}

// Positions returns the positions as a slice of vectors, in snapshot order.
func (s *Snapshot) Positions() []Vec2 {
	out := make([]Vec2, s.Len())
	for i := range out {
		out[i] = s.Pos(i)
	}
	return out
}

// TotalMomentum sums m*v over all bodies.
func TotalMomentum(bodies []Body) Vec2 {
	var p Vec2
	for _, b := range bodies {
		p = p.Add(b.Momentum())
	}
	return p
}

func TotalKineticEnergy(bodies []Body) float64 {
	e := 0.0
	for _, b := range bodies {
		e += b.KineticEnergy()
	}
	return e
}

func orbitAngle(d Vec2) float64 {
	return math.Atan2(d.Y, d.X)
}
