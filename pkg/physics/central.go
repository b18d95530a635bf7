package physics

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// CentralGravity pulls every body toward a fixed center, a = -G*(p-c)/r^3.
// The law has no softening: r = 0 is a precondition violation, callers keep
// bodies clear of the center (see OrbitSeeder.Clearance).
type CentralGravity struct {
	Center   Vec2
	Strength float64
}

func (g CentralGravity) Acceleration(p Vec2) Vec2 {
	d := p.Sub(g.Center)
	sq := d.LenSq()
	return d.Mul(-g.Strength / (sq * math.Sqrt(sq)))
}

// UpdateVelocity is the scalar path, shaped like an engine velocity hook:
// v' = damping*v + a(p)*dt.
func (g CentralGravity) UpdateVelocity(p, v Vec2, damping, dt float64) Vec2 {
	return v.Mul(damping).Add(g.Acceleration(p).Mul(dt))
}

// UpdateVelocities is the batch path over a structure-of-arrays snapshot.
// It overwrites s.VX and s.VY with v + a*dt for every body (no damping).
func (g CentralGravity) UpdateVelocities(s *Snapshot, dt float64) {
	n := s.Len()
	if n == 0 {
		return
	}
	dx := make([]float64, n)
	dy := make([]float64, n)
	copy(dx, s.PX)
	copy(dy, s.PY)
	floats.AddConst(-g.Center.X, dx)
	floats.AddConst(-g.Center.Y, dy)

	sq := make([]float64, n)
	tmp := make([]float64, n)
	floats.MulTo(sq, dx, dx)
	floats.MulTo(tmp, dy, dy)
	floats.Add(sq, tmp)

	// per-body -G/r^3
	for i, q := range sq {
		tmp[i] = -g.Strength / (q * math.Sqrt(q))
	}
	floats.Mul(dx, tmp)
	floats.Mul(dy, tmp)

	floats.AddScaled(s.VX, dt, dx)
	floats.AddScaled(s.VY, dt, dy)
}

// CircularSpeed is the orbital speed |v| of a circular orbit at radius r.
func (g CentralGravity) CircularSpeed(r float64) float64 {
	return math.Sqrt(g.Strength / r)
}

// OrbitalVelocity returns the tangential velocity at p, scaled by factor
// (1 gives a circular orbit, below 1 a bound ellipse with p near apocenter).
// The direction is the counter-clockwise perpendicular of p-c.
func (g CentralGravity) OrbitalVelocity(p Vec2, factor float64) Vec2 {
	d := p.Sub(g.Center)
	r := d.Len()
	return d.Perp().Mul(g.angularSpeed(r) * factor)
}

// angularSpeed is sqrt(G/r)/r, the circular-orbit angular velocity.
func (g CentralGravity) angularSpeed(r float64) float64 {
	return math.Sqrt(g.Strength/r) / r
}
