package physics

import "math"

// Integrator advances bodies without contacts: semi-implicit Euler with a
// per-body velocity hook, the way a rigid-body engine does between solves.
type Integrator struct {
	Gravity Vec2
	// Damping is the fraction of velocity kept per second; 1 means none.
	Damping float64
	// Central is used by bodies with HookCentral. Nil falls back to the
	// default update.
	Central *CentralGravity
}

// UpdateVelocity applies the body's velocity hook for one step.
func (in Integrator) UpdateVelocity(b *Body, damping, dt float64) {
	if b.Hook == HookCentral && in.Central != nil {
		b.Vel = in.Central.UpdateVelocity(b.Pos, b.Vel, damping, dt)
		return
	}
	b.Vel = b.Vel.Mul(damping).Add(in.Gravity.Mul(dt))
}

// IntegrateEulerSymplectic updates velocities first, then positions with
// the new velocities.
func (in Integrator) IntegrateEulerSymplectic(bodies []Body, dt float64) {
	damping := stepDamping(in.Damping, dt)
	for i := range bodies {
		in.UpdateVelocity(&bodies[i], damping, dt)
	}
	for i := range bodies {
		b := &bodies[i]
		b.Pos = b.Pos.Add(b.Vel.Mul(dt))
		b.Angle += b.AngVel * dt
	}
}

// stepDamping converts a per-second retention into the per-step factor.
func stepDamping(damping, dt float64) float64 {
	if damping == 1 {
		return 1
	}
	return math.Pow(damping, dt)
}
