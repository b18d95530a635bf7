package simulation

import (
	"errors"
	"testing"

	"accretion-sim/pkg/engine"
	"accretion-sim/pkg/physics"
)

// bareConfig sets only the top-level fields, leaving every scenario block nil.
func bareConfig(scenario string) *EnvironmentConfig {
	cfg := &EnvironmentConfig{
		Scenario:   scenario,
		Engine:     EngineChipmunk,
		Dt:         1.0 / 60,
		Substeps:   1,
		Damping:    1,
		UpdateMode: ModeCallback,
		Neighbor:   NeighborConfig{Index: "brute"},
	}
	if scenario == ScenarioPlanet {
		cfg.Central = &CentralConfig{Center: [2]float64{450, 450}, Strength: 5e6}
	}
	return cfg
}

var blockScenarios = []string{ScenarioPlanet, ScenarioBalls, ScenarioChain, ScenarioPendulum}

func TestValidateRequiresScenarioBlock(t *testing.T) {
	for _, sc := range blockScenarios {
		if err := bareConfig(sc).Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("%s: Validate = %v, want ErrInvalidConfig", sc, err)
		}
	}
	cfg := bareConfig(ScenarioPlanet)
	cfg.Central = nil
	cfg.Planets = defaultPlanets()
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("planet without central: Validate = %v", err)
	}
}

func TestNewSimulatorFillsScenarioDefaults(t *testing.T) {
	for _, sc := range blockScenarios {
		s, err := NewSimulator(bareConfig(sc), quiet)
		if err != nil {
			t.Errorf("%s: %v", sc, err)
			continue
		}
		if err := s.Update(); err != nil {
			t.Errorf("%s: first tick: %v", sc, err)
		}
	}
}

func smallChain(impulseTime float64) *EnvironmentConfig {
	cfg := bareConfig(ScenarioChain)
	cfg.Dt = 1.0 / 120
	cfg.Chain = defaultChain()
	cfg.Chain.Masses = 3
	cfg.Chain.ImpulseTime = impulseTime
	return cfg
}

func TestChainImpulseActsOnItsOwnTick(t *testing.T) {
	lifted, err := NewSimulator(smallChain(1.0/120), quiet)
	if err != nil {
		t.Fatal(err)
	}
	still, err := NewSimulator(smallChain(10), quiet)
	if err != nil {
		t.Fatal(err)
	}
	if err := lifted.Update(); err != nil {
		t.Fatal(err)
	}
	if err := still.Update(); err != nil {
		t.Fatal(err)
	}
	if !lifted.impulseApplied {
		t.Fatal("impulse not applied on the tick that reaches its time")
	}
	a, b := lifted.World().Bodies()[0], still.World().Bodies()[0]
	if a.Vel.Y <= b.Vel.Y {
		t.Errorf("first mass vel.y %v after the lift, %v without; the lifted anchor should pull it up", a.Vel.Y, b.Vel.Y)
	}
}

type recordedSegment struct {
	a, b                         physics.Vec2
	radius, elasticity, friction float64
}

// segmentRecorder is a Chipmunk world that remembers its static segments.
type segmentRecorder struct {
	*engine.Chipmunk
	segments []recordedSegment
}

func (r *segmentRecorder) AddSegment(a, b physics.Vec2, radius, elasticity, friction float64) error {
	r.segments = append(r.segments, recordedSegment{a, b, radius, elasticity, friction})
	return r.Chipmunk.AddSegment(a, b, radius, elasticity, friction)
}

func TestPendulumWallFromConfig(t *testing.T) {
	cfg := bareConfig(ScenarioPendulum)
	cfg.Pendulum = defaultPendulum()
	cfg.Pendulum.WallRadius = 3
	cfg.Pendulum.WallElasticity = 0.5
	cfg.Pendulum.WallFriction = 0.2

	rec := &segmentRecorder{Chipmunk: engine.NewChipmunk(physics.Vec2{Y: 981}, 1, 0)}
	if _, err := NewSimulator(cfg, quiet, WithWorld(rec)); err != nil {
		t.Fatal(err)
	}
	if len(rec.segments) != 1 {
		t.Fatalf("got %d segments, want the wall only", len(rec.segments))
	}
	got := rec.segments[0]
	if got.radius != 3 || got.elasticity != 0.5 || got.friction != 0.2 {
		t.Errorf("wall radius %v elasticity %v friction %v, want 3 0.5 0.2", got.radius, got.elasticity, got.friction)
	}
	if wantX := 400.0 - 25; got.a.X != wantX || got.b.X != wantX {
		t.Errorf("wall at x %v..%v, want %v", got.a.X, got.b.X, wantX)
	}
}

func TestBundledBallsLeaveAttractionOff(t *testing.T) {
	cfg, err := LoadConfig("../assets/balls.json")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Neighbor.K != 0 {
		t.Errorf("balls neighbor k = %d, want 0", cfg.Neighbor.K)
	}
	p, err := LoadConfig("../assets/pendulum.json")
	if err != nil {
		t.Fatal(err)
	}
	if w := p.Pendulum; w.WallRadius != 2 || w.WallElasticity != 0.98 || w.WallFriction != 0.4 {
		t.Errorf("pendulum wall %v %v %v, want 2 0.98 0.4", w.WallRadius, w.WallElasticity, w.WallFriction)
	}
}
