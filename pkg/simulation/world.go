package simulation

import (
	"accretion-sim/pkg/engine"
	"accretion-sim/pkg/physics"
)

// World is the engine the simulator drives. The simulator reads snapshots
// from it and requests velocity updates and body replacements; it never
// keeps bodies across ticks.
type World interface {
	physics.MergeWorld

	Bodies() []physics.Body
	Body(id physics.BodyID) (physics.Body, bool)
	AddCircle(b physics.Body) physics.BodyID
	Remove(id physics.BodyID) error

	AddVelocities(ids []physics.BodyID, dv []physics.Vec2) error
	SetVelocities(ids []physics.BodyID, v []physics.Vec2) error
	SetHook(id physics.BodyID, hook physics.VelocityHook) error
	SetCentral(law *physics.CentralGravity)
	Step(dt float64)

	AddSegment(a, b physics.Vec2, radius, elasticity, friction float64) error
	AddAnchor(pos physics.Vec2) (physics.BodyID, error)
	MoveAnchor(id physics.BodyID, pos physics.Vec2) error
	AddSpring(a, b physics.BodyID, anchorA, anchorB physics.Vec2, restLength, stiffness, damping float64) error
}

var (
	_ World = (*engine.Chipmunk)(nil)
	_ World = (*engine.Euler)(nil)
)

// NewWorld builds the engine named in the config.
func NewWorld(cfg *EnvironmentConfig) World {
	gravity := physics.Vec2{X: cfg.Gravity[0], Y: cfg.Gravity[1]}
	if cfg.Engine == EngineEuler {
		return engine.NewEuler(gravity, cfg.Damping)
	}
	return engine.NewChipmunk(gravity, cfg.Damping, cfg.Iterations)
}
