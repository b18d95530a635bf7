package simulation

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/exp/rand"

	"accretion-sim/pkg/physics"
)

// --- Main simulator structure ---
type Simulator struct {
	Name string
	Dt   float64

	cfg    *EnvironmentConfig
	world  World
	logger *log.Logger
	rnd    *rand.Rand

	finder  physics.NeighborFinder
	pairLaw physics.SoftenedGravity
	central *physics.CentralGravity
	seeder  *physics.OrbitSeeder
	mode    UpdateMode

	tick    int
	time    float64
	merges  int
	removed int
	last    Stats

	// scenario upkeep
	ticksToNextBall int
	chainAnchor     physics.BodyID
	impulseApplied  bool
}

// Stats summarises the simulator after the latest tick.
type Stats struct {
	Tick          int
	Time          float64
	Bodies        int
	Pairs         int
	Merges        int
	TotalMerges   int
	Removed       int
	Momentum      physics.Vec2
	KineticEnergy float64
	Mode          UpdateMode
}

type Option func(*Simulator)

func WithLogger(l *log.Logger) Option {
	return func(s *Simulator) { s.logger = l }
}

// WithWorld replaces the engine the config would build.
func WithWorld(w World) Option {
	return func(s *Simulator) { s.world = w }
}

// --- Building the simulator from config ---

// NewSimulator fills the config's zero values with defaults, validates it
// and builds the scenario.
func NewSimulator(cfg *EnvironmentConfig, opts ...Option) (*Simulator, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Simulator{
		Name:    cfg.Name,
		Dt:      cfg.Dt,
		cfg:     cfg,
		logger:  log.Default(),
		rnd:     rand.New(rand.NewSource(cfg.Seed)),
		finder:  physics.NewNeighborFinder(cfg.Neighbor.Index),
		pairLaw: cfg.Neighbor.Law(),
		mode:    cfg.UpdateMode,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.world == nil {
		s.world = NewWorld(cfg)
	}

	if cfg.Central != nil {
		law := cfg.Central.Law()
		s.central = &law
		if s.mode == ModeCallback {
			s.world.SetCentral(s.central)
		}
		if p := cfg.Planets; p != nil {
			seeder := physics.NewOrbitSeeder(law, s.rnd)
			seeder.Min = physics.Vec2{X: p.SpawnMin[0], Y: p.SpawnMin[1]}
			seeder.Max = physics.Vec2{X: p.SpawnMax[0], Y: p.SpawnMax[1]}
			seeder.Clearance = p.Clearance
			seeder.EllipticalFraction = p.EllipticalFraction
			seeder.SpeedMin, seeder.SpeedMax = p.SpeedRange[0], p.SpeedRange[1]
			s.seeder = seeder
		}
	}

	if err := s.build(); err != nil {
		return nil, fmt.Errorf("build %s: %w", cfg.Scenario, err)
	}
	s.last = s.stats(0, 0)
	s.logger.Printf("%s: %s scenario on %s engine, %d bodies, update mode %s",
		s.Name, cfg.Scenario, cfg.Engine, s.last.Bodies, s.mode)
	return s, nil
}

func (s *Simulator) World() World {
	return s.world
}

func (s *Simulator) Mode() UpdateMode {
	return s.mode
}

// SetUpdateMode switches central gravity between the engine hook and the
// batch pass. Bodies keep their hook; in batch mode the engine simply has
// no central law to call.
func (s *Simulator) SetUpdateMode(mode UpdateMode) error {
	if mode != ModeCallback && mode != ModeBatch {
		return fmt.Errorf("update mode %q: %w", mode, ErrInvalidConfig)
	}
	if s.central == nil {
		return fmt.Errorf("update mode %s: no central gravity: %w", mode, ErrInvalidConfig)
	}
	if mode == s.mode {
		return nil
	}
	s.mode = mode
	if mode == ModeBatch {
		s.world.SetCentral(nil)
	} else {
		s.world.SetCentral(s.central)
	}
	s.logger.Printf("%s: update mode %s", s.Name, mode)
	return nil
}

// --- Simulation update ---

// Update advances one tick: batch central gravity, neighbor gravity, the
// chain impulse, the engine steps, bounded merging, ball upkeep.
func (s *Simulator) Update() error {
	if s.mode == ModeBatch && s.central != nil {
		if err := s.applyBatchCentral(); err != nil {
			return fmt.Errorf("batch central gravity: %w", err)
		}
	}

	pairs := 0
	if s.cfg.Neighbor.K > 0 {
		n, err := s.applyNeighborGravity()
		if err != nil {
			return fmt.Errorf("neighbor gravity: %w", err)
		}
		pairs = n
	}

	// time at the end of this tick; the chain impulse fires before stepping
	next := s.time + s.Dt*float64(s.cfg.Substeps)
	if s.cfg.Scenario == ScenarioChain {
		if err := s.updateChain(next); err != nil {
			return fmt.Errorf("chain: %w", err)
		}
	}

	for i := 0; i < s.cfg.Substeps; i++ {
		s.world.Step(s.Dt)
	}
	s.time = next
	s.tick++

	merged := 0
	if s.cfg.Merge.Enabled {
		res, err := physics.MergeOverlaps(s.world, s.cfg.Merge.MaxPasses)
		merged = len(res)
		s.merges += merged
		if err != nil {
			return fmt.Errorf("merge: %w", err)
		}
	}

	if s.cfg.Scenario == ScenarioBalls {
		if err := s.updateBalls(); err != nil {
			return fmt.Errorf("balls: %w", err)
		}
	}

	s.last = s.stats(pairs, merged)
	return nil
}

// applyBatchCentral evaluates the central law over every hooked body at once.
func (s *Simulator) applyBatchCentral() error {
	var hooked []physics.Body
	for _, b := range s.world.Bodies() {
		if b.Hook == physics.HookCentral {
			hooked = append(hooked, b)
		}
	}
	if len(hooked) == 0 {
		return nil
	}
	snap := physics.NewSnapshot(hooked)
	s.central.UpdateVelocities(snap, s.Dt)
	v := make([]physics.Vec2, snap.Len())
	for i := range v {
		v[i] = snap.Vel(i)
	}
	return s.world.SetVelocities(snap.IDs, v)
}

func (s *Simulator) applyNeighborGravity() (int, error) {
	snap := physics.NewSnapshot(s.world.Bodies())
	if snap.Len() < 2 {
		return 0, nil
	}
	dv, pairs := physics.NeighborVelocityDeltas(snap, s.finder, s.cfg.Neighbor.K, s.pairLaw, s.Dt)
	if pairs == 0 {
		return 0, nil
	}
	return pairs, s.world.AddVelocities(snap.IDs, dv)
}

// Run calls Update until ticks have run (ticks <= 0 means until ctx is
// done). report, when set, receives the stats every `every` ticks.
// Cancellation is checked between ticks only.
func (s *Simulator) Run(ctx context.Context, ticks, every int, report func(Stats)) error {
	for i := 0; ticks <= 0 || i < ticks; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.Update(); err != nil {
			return fmt.Errorf("tick %d: %w", s.tick, err)
		}
		if report != nil && every > 0 && s.tick%every == 0 {
			report(s.last)
		}
	}
	return nil
}

func (s *Simulator) Stats() Stats {
	return s.last
}

func (s *Simulator) stats(pairs, merged int) Stats {
	bodies := s.world.Bodies()
	return Stats{
		Tick:          s.tick,
		Time:          s.time,
		Bodies:        len(bodies),
		Pairs:         pairs,
		Merges:        merged,
		TotalMerges:   s.merges,
		Removed:       s.removed,
		Momentum:      physics.TotalMomentum(bodies),
		KineticEnergy: physics.TotalKineticEnergy(bodies),
		Mode:          s.mode,
	}
}
