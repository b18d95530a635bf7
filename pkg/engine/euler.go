package engine

import (
	"fmt"

	"accretion-sim/pkg/physics"
)

// Euler is a world of free circles integrated with physics.Integrator.
// It has no contacts and no constraints.
type Euler struct {
	integrator physics.Integrator
	bodies     []physics.Body
	index      map[physics.BodyID]int
	nextID     physics.BodyID
}

func NewEuler(gravity physics.Vec2, damping float64) *Euler {
	return &Euler{
		integrator: physics.Integrator{Gravity: gravity, Damping: damping},
		index:      make(map[physics.BodyID]int),
		nextID:     StaticBody + 1,
	}
}

func (w *Euler) SetCentral(law *physics.CentralGravity) {
	w.integrator.Central = law
}

func (w *Euler) AddCircle(b physics.Body) physics.BodyID {
	b.ID = w.nextID
	w.nextID++
	w.index[b.ID] = len(w.bodies)
	w.bodies = append(w.bodies, b)
	return b.ID
}

func (w *Euler) Remove(id physics.BodyID) error {
	i, ok := w.index[id]
	if !ok {
		return unknownBody(id)
	}
	w.bodies = append(w.bodies[:i], w.bodies[i+1:]...)
	delete(w.index, id)
	for j := i; j < len(w.bodies); j++ {
		w.index[w.bodies[j].ID] = j
	}
	return nil
}

func (w *Euler) Body(id physics.BodyID) (physics.Body, bool) {
	i, ok := w.index[id]
	if !ok {
		return physics.Body{}, false
	}
	return w.bodies[i], true
}

// Bodies returns a copy of every body in insertion order.
func (w *Euler) Bodies() []physics.Body {
	out := make([]physics.Body, len(w.bodies))
	copy(out, w.bodies)
	return out
}

func (w *Euler) Circles() []physics.Body {
	return w.Bodies()
}

func (w *Euler) Contains(id physics.BodyID) bool {
	_, ok := w.index[id]
	return ok
}

// Replace validates both ids before touching the world, so a failed call
// leaves it unchanged.
func (w *Euler) Replace(a, b physics.BodyID, merged physics.Body) (physics.BodyID, error) {
	if !w.Contains(a) {
		return 0, unknownBody(a)
	}
	if !w.Contains(b) {
		return 0, unknownBody(b)
	}
	if a == b {
		return 0, fmt.Errorf("replace body %d with itself", a)
	}
	_ = w.Remove(a)
	_ = w.Remove(b)
	return w.AddCircle(merged), nil
}

func (w *Euler) AddVelocities(ids []physics.BodyID, dv []physics.Vec2) error {
	if err := checkLengths(ids, dv); err != nil {
		return err
	}
	for k, id := range ids {
		i, ok := w.index[id]
		if !ok {
			return unknownBody(id)
		}
		w.bodies[i].Vel = w.bodies[i].Vel.Add(dv[k])
	}
	return nil
}

func (w *Euler) SetVelocities(ids []physics.BodyID, v []physics.Vec2) error {
	if err := checkLengths(ids, v); err != nil {
		return err
	}
	for k, id := range ids {
		i, ok := w.index[id]
		if !ok {
			return unknownBody(id)
		}
		w.bodies[i].Vel = v[k]
	}
	return nil
}

func (w *Euler) SetHook(id physics.BodyID, hook physics.VelocityHook) error {
	i, ok := w.index[id]
	if !ok {
		return unknownBody(id)
	}
	w.bodies[i].Hook = hook
	return nil
}

func (w *Euler) Step(dt float64) {
	w.integrator.IntegrateEulerSymplectic(w.bodies, dt)
}

func (w *Euler) AddSegment(a, b physics.Vec2, radius, elasticity, friction float64) error {
	return fmt.Errorf("static segment: %w", ErrUnsupported)
}

func (w *Euler) AddAnchor(pos physics.Vec2) (physics.BodyID, error) {
	return 0, fmt.Errorf("kinematic anchor: %w", ErrUnsupported)
}

func (w *Euler) MoveAnchor(id physics.BodyID, pos physics.Vec2) error {
	return fmt.Errorf("kinematic anchor: %w", ErrUnsupported)
}

func (w *Euler) AddSpring(a, b physics.BodyID, anchorA, anchorB physics.Vec2, restLength, stiffness, damping float64) error {
	return fmt.Errorf("damped spring: %w", ErrUnsupported)
}
