package simulation

import (
	"fmt"

	"accretion-sim/pkg/engine"
	"accretion-sim/pkg/physics"
)

// build populates the world for the configured scenario.
func (s *Simulator) build() error {
	switch s.cfg.Scenario {
	case ScenarioPlanet:
		return s.AddPlanets(s.cfg.Planets.Count)
	case ScenarioBalls:
		return s.buildBalls()
	case ScenarioChain:
		return s.buildChain()
	case ScenarioPendulum:
		return s.buildPendulum()
	case ScenarioBodies:
		return s.buildBodies()
	}
	return fmt.Errorf("%q: %w", s.cfg.Scenario, ErrUnknownScenario)
}

// AddPlanets seeds n planets on orbits around the center.
func (s *Simulator) AddPlanets(n int) error {
	if s.seeder == nil {
		return fmt.Errorf("add planets: no central gravity configured: %w", ErrInvalidConfig)
	}
	p := s.cfg.Planets
	for i := 0; i < n; i++ {
		b, ok := s.seeder.Seed()
		if !ok {
			return fmt.Errorf("add planets: spawn box has no point clear of the center: %w", ErrInvalidConfig)
		}
		b.Mass = p.Mass
		b.Radius = p.Radius
		b.Friction = p.Friction
		b.Elasticity = 0
		s.world.AddCircle(b)
	}
	return nil
}

func (s *Simulator) buildBalls() error {
	bc := s.cfg.Balls
	for _, seg := range bc.Segments {
		a := physics.Vec2{X: seg.A[0], Y: seg.A[1]}
		b := physics.Vec2{X: seg.B[0], Y: seg.B[1]}
		if err := s.world.AddSegment(a, b, seg.Radius, bc.StaticElasticity, bc.StaticFriction); err != nil {
			return fmt.Errorf("balls: %w", err)
		}
	}
	s.ticksToNextBall = bc.FirstSpawnTicks
	return nil
}

// spawnBall drops one ball of random size at a random x.
func (s *Simulator) spawnBall() {
	bc := s.cfg.Balls
	scale := bc.ScaleRange[0] + s.rnd.Float64()*(bc.ScaleRange[1]-bc.ScaleRange[0])
	x := bc.SpawnXRange[0] + s.rnd.Float64()*(bc.SpawnXRange[1]-bc.SpawnXRange[0])
	s.world.AddCircle(physics.Body{
		Mass:       bc.Mass,
		Radius:     float64(int(bc.RadiusBase*scale + 0.5)),
		Pos:        physics.Vec2{X: x, Y: bc.SpawnY},
		Friction:   bc.Friction,
		Elasticity: bc.Elasticity,
	})
}

// updateBalls spawns on schedule and drops balls past the removal line.
func (s *Simulator) updateBalls() error {
	bc := s.cfg.Balls
	s.ticksToNextBall--
	if s.ticksToNextBall <= 0 {
		s.spawnBall()
		s.ticksToNextBall = bc.SpawnEveryTicks
	}
	for _, b := range s.world.Bodies() {
		if b.Pos.Y > bc.RemoveBelowY {
			if err := s.world.Remove(b.ID); err != nil {
				return err
			}
			s.removed++
		}
	}
	return nil
}

func (s *Simulator) buildChain() error {
	cc := s.cfg.Chain
	anchor, err := s.world.AddAnchor(physics.Vec2{})
	if err != nil {
		return fmt.Errorf("chain: %w", err)
	}
	s.chainAnchor = anchor

	wallX := float64(cc.Masses+1) * cc.Spacing
	if err := s.world.AddSegment(physics.Vec2{X: wallX, Y: -5}, physics.Vec2{X: wallX, Y: 5}, 0.01, 0, 0); err != nil {
		return fmt.Errorf("chain: %w", err)
	}

	prev := anchor
	for i := 0; i < cc.Masses; i++ {
		id := s.world.AddCircle(physics.Body{
			Mass:   cc.Mass,
			Radius: cc.Radius,
			Pos:    physics.Vec2{X: float64(i+1) * cc.Spacing},
		})
		if err := s.world.AddSpring(prev, id, physics.Vec2{}, physics.Vec2{}, cc.RestLength, cc.Stiffness, cc.Damping); err != nil {
			return fmt.Errorf("chain link %d: %w", i, err)
		}
		prev = id
	}
	if err := s.world.AddSpring(prev, engine.StaticBody, physics.Vec2{}, physics.Vec2{X: wallX}, cc.RestLength, cc.Stiffness, cc.Damping); err != nil {
		return fmt.Errorf("chain wall: %w", err)
	}
	return nil
}

// updateChain lifts the left anchor once the time at the end of the
// coming tick reaches the impulse time.
func (s *Simulator) updateChain(now float64) error {
	cc := s.cfg.Chain
	if s.impulseApplied || now < cc.ImpulseTime {
		return nil
	}
	s.impulseApplied = true
	s.logger.Printf("%s: anchor lifted by %.2f at t=%.3fs", s.Name, cc.AnchorLift, now)
	return s.world.MoveAnchor(s.chainAnchor, physics.Vec2{Y: cc.AnchorLift})
}

func (s *Simulator) buildPendulum() error {
	pc := s.cfg.Pendulum
	top := physics.Vec2{X: pc.Anchor[0], Y: pc.Anchor[1]}
	p1 := top.Add(physics.Vec2{X: pc.Offsets[0][0], Y: pc.Offsets[0][1]})
	p2 := p1.Add(physics.Vec2{X: pc.Offsets[1][0], Y: pc.Offsets[1][1]})

	b1 := s.world.AddCircle(physics.Body{
		Mass: pc.Masses[0], Radius: pc.Radius, Pos: p1,
		Friction: pc.Friction, Elasticity: pc.Elasticity,
	})
	b2 := s.world.AddCircle(physics.Body{
		Mass: pc.Masses[1], Radius: pc.Radius, Pos: p2,
		Friction: pc.Friction, Elasticity: pc.Elasticity,
	})

	wallX := top.X - pc.WallOffset
	if err := s.world.AddSegment(physics.Vec2{X: wallX}, physics.Vec2{X: wallX, Y: pc.WallHeight}, pc.WallRadius, pc.WallElasticity, pc.WallFriction); err != nil {
		return fmt.Errorf("pendulum: %w", err)
	}
	if err := s.world.AddSpring(engine.StaticBody, b1, top, physics.Vec2{}, pc.RestLengths[0], pc.Stiffness, pc.Damping); err != nil {
		return fmt.Errorf("pendulum: %w", err)
	}
	if err := s.world.AddSpring(b1, b2, physics.Vec2{}, physics.Vec2{}, pc.RestLengths[1], pc.Stiffness, pc.Damping); err != nil {
		return fmt.Errorf("pendulum: %w", err)
	}
	return nil
}

func (s *Simulator) buildBodies() error {
	bodies := s.cfg.Bodies
	if s.cfg.AutoOrbit && s.central != nil {
		bodies = append([]BodyConfig(nil), bodies...)
		SetOrbitalVelocities(bodies, *s.central)
	}
	for _, bc := range bodies {
		b := physics.Body{
			Mass:     bc.Mass,
			Pos:      physics.Vec2{X: bc.Pos[0], Y: bc.Pos[1]},
			Vel:      physics.Vec2{X: bc.Vel[0], Y: bc.Vel[1]},
			Radius:   bc.Radius,
			Friction: bc.Friction,
		}
		if bc.Central && s.central != nil {
			b.Hook = physics.HookCentral
		}
		s.world.AddCircle(b)
	}
	return nil
}
