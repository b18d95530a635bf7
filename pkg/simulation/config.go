package simulation

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"accretion-sim/pkg/physics"
)

var (
	ErrInvalidConfig   = errors.New("invalid config")
	ErrUnknownScenario = errors.New("unknown scenario")
)

const (
	ScenarioPlanet   = "planet"
	ScenarioBalls    = "balls"
	ScenarioChain    = "chain"
	ScenarioPendulum = "pendulum"
	ScenarioBodies   = "bodies"

	EngineChipmunk = "chipmunk"
	EngineEuler    = "euler"
)

// UpdateMode selects how central gravity reaches the bodies.
type UpdateMode string

const (
	// ModeCallback runs the law inside the engine as a velocity hook.
	ModeCallback UpdateMode = "callback"
	// ModeBatch evaluates the law over all bodies before each tick.
	ModeBatch UpdateMode = "batch"
)

// --- Environment configuration ---
type EnvironmentConfig struct {
	Name       string     `json:"name"`
	Scenario   string     `json:"scenario"`
	Engine     string     `json:"engine,omitempty"`
	Dt         float64    `json:"dt"`
	Substeps   int        `json:"substeps,omitempty"`
	Iterations int        `json:"iterations,omitempty"`
	Gravity    [2]float64 `json:"gravity"`
	// Damping is the fraction of velocity kept per second (1 = none).
	Damping    float64    `json:"damping,omitempty"`
	Seed       uint64     `json:"seed"`
	UpdateMode UpdateMode `json:"update_mode,omitempty"`

	Neighbor NeighborConfig `json:"neighbor"`
	Central  *CentralConfig `json:"central,omitempty"`
	Merge    MergeConfig    `json:"merge"`

	Planets  *PlanetsConfig  `json:"planets,omitempty"`
	Balls    *BallsConfig    `json:"balls,omitempty"`
	Chain    *ChainConfig    `json:"chain,omitempty"`
	Pendulum *PendulumConfig `json:"pendulum,omitempty"`

	Bodies    []BodyConfig `json:"bodies,omitempty"`
	AutoOrbit bool         `json:"auto_orbit,omitempty"`
}

type NeighborConfig struct {
	K         int     `json:"k"`
	G         float64 `json:"g"`
	Softening float64 `json:"softening"`
	// MaxForce of 0 leaves the pairwise force unclamped.
	MaxForce float64 `json:"max_force,omitempty"`
	Index    string  `json:"index,omitempty"`
}

func (n NeighborConfig) Law() physics.SoftenedGravity {
	return physics.SoftenedGravity{G: n.G, Softening: n.Softening, MaxForce: n.MaxForce}
}

type CentralConfig struct {
	Center   [2]float64 `json:"center"`
	Strength float64    `json:"strength"`
}

func (c CentralConfig) Law() physics.CentralGravity {
	return physics.CentralGravity{
		Center:   physics.Vec2{X: c.Center[0], Y: c.Center[1]},
		Strength: c.Strength,
	}
}

type MergeConfig struct {
	Enabled   bool `json:"enabled"`
	MaxPasses int  `json:"max_passes,omitempty"`
}

type PlanetsConfig struct {
	Count              int        `json:"count"`
	Radius             float64    `json:"radius"`
	Mass               float64    `json:"mass"`
	Friction           float64    `json:"friction"`
	SpawnMin           [2]float64 `json:"spawn_min"`
	SpawnMax           [2]float64 `json:"spawn_max"`
	Clearance          float64    `json:"clearance"`
	EllipticalFraction float64    `json:"elliptical_fraction"`
	SpeedRange         [2]float64 `json:"speed_range"`
}

type SegmentConfig struct {
	A      [2]float64 `json:"a"`
	B      [2]float64 `json:"b"`
	Radius float64    `json:"radius"`
}

type BallsConfig struct {
	Mass             float64         `json:"mass"`
	RadiusBase       float64         `json:"radius_base"`
	ScaleRange       [2]float64      `json:"scale_range"`
	SpawnXRange      [2]float64      `json:"spawn_x_range"`
	SpawnY           float64         `json:"spawn_y"`
	Elasticity       float64         `json:"elasticity"`
	Friction         float64         `json:"friction"`
	FirstSpawnTicks  int             `json:"first_spawn_ticks"`
	SpawnEveryTicks  int             `json:"spawn_every_ticks"`
	RemoveBelowY     float64         `json:"remove_below_y"`
	Segments         []SegmentConfig `json:"segments"`
	StaticElasticity float64         `json:"static_elasticity"`
	StaticFriction   float64         `json:"static_friction"`
}

type ChainConfig struct {
	Masses      int     `json:"masses"`
	Mass        float64 `json:"mass"`
	Radius      float64 `json:"radius"`
	Spacing     float64 `json:"spacing"`
	RestLength  float64 `json:"rest_length"`
	Stiffness   float64 `json:"stiffness"`
	Damping     float64 `json:"damping"`
	ImpulseTime float64 `json:"impulse_time"`
	AnchorLift  float64 `json:"anchor_lift"`
}

type PendulumConfig struct {
	Anchor      [2]float64    `json:"anchor"`
	Masses      [2]float64    `json:"masses"`
	Radius      float64       `json:"radius"`
	RestLengths [2]float64    `json:"rest_lengths"`
	Stiffness   float64       `json:"stiffness"`
	Damping     float64       `json:"damping"`
	Offsets     [2][2]float64 `json:"offsets"`
	Friction    float64       `json:"friction"`
	Elasticity  float64       `json:"elasticity"`
	WallOffset  float64       `json:"wall_offset"`
	WallHeight  float64       `json:"wall_height"`

	WallRadius     float64 `json:"wall_radius"`
	WallElasticity float64 `json:"wall_elasticity"`
	WallFriction   float64 `json:"wall_friction"`
}

type BodyConfig struct {
	Mass     float64    `json:"mass"`
	Pos      [2]float64 `json:"pos"`
	Vel      [2]float64 `json:"vel"`
	Radius   float64    `json:"radius"`
	Friction float64    `json:"friction,omitempty"`
	// Central marks bodies integrated with the central-gravity hook.
	Central bool `json:"central,omitempty"`
}

// SetOrbitalVelocities gives every body without a velocity a circular orbit
// around the central-gravity center.
func SetOrbitalVelocities(bodies []BodyConfig, law physics.CentralGravity) {
	for i := range bodies {
		if bodies[i].Vel != [2]float64{} {
			continue
		}
		p := physics.Vec2{X: bodies[i].Pos[0], Y: bodies[i].Pos[1]}
		if p.DistSq(law.Center) == 0 {
			continue
		}
		v := law.OrbitalVelocity(p, 1)
		bodies[i].Vel = [2]float64{v.X, v.Y}
	}
}

// --- Loading the config file ---
func LoadConfig(path string) (*EnvironmentConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var env EnvironmentConfig
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	env.ApplyDefaults()
	if err := env.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &env, nil
}

// ApplyDefaults fills zero values with the defaults of the scenario.
func (c *EnvironmentConfig) ApplyDefaults() {
	if c.Engine == "" {
		c.Engine = EngineChipmunk
	}
	if c.Dt == 0 {
		c.Dt = 1.0 / 60.0
	}
	if c.Substeps == 0 {
		c.Substeps = 1
	}
	if c.Damping == 0 {
		c.Damping = 1
	}
	if c.UpdateMode == "" {
		c.UpdateMode = ModeCallback
	}
	if c.Neighbor.Index == "" {
		c.Neighbor.Index = "brute"
	}
	if c.Merge.MaxPasses == 0 {
		c.Merge.MaxPasses = physics.DefaultMergePasses
	}

	switch c.Scenario {
	case ScenarioPlanet:
		if c.Central == nil {
			c.Central = &CentralConfig{Center: [2]float64{450, 450}, Strength: 5.0e6}
		}
		if c.Planets == nil {
			c.Planets = defaultPlanets()
		}
	case ScenarioBalls:
		if c.Balls == nil {
			c.Balls = defaultBalls()
		}
	case ScenarioChain:
		if c.Chain == nil {
			c.Chain = defaultChain()
		}
	case ScenarioPendulum:
		if c.Pendulum == nil {
			c.Pendulum = defaultPendulum()
		}
	}
}

func defaultPlanets() *PlanetsConfig {
	return &PlanetsConfig{
		Count:              400,
		Radius:             3,
		Mass:               1,
		Friction:           0.7,
		SpawnMin:           [2]float64{0, 0},
		SpawnMax:           [2]float64{900, 900},
		Clearance:          40,
		EllipticalFraction: 0.01,
		SpeedRange:         [2]float64{0.6, 0.95},
	}
}

func defaultBalls() *BallsConfig {
	return &BallsConfig{
		Mass:            10,
		RadiusBase:      25,
		ScaleRange:      [2]float64{0.5, 2},
		SpawnXRange:     [2]float64{115, 350},
		SpawnY:          80,
		Elasticity:      0.98,
		Friction:        0.9,
		FirstSpawnTicks: 10,
		SpawnEveryTicks: 100,
		RemoveBelowY:    500,
		Segments: []SegmentConfig{
			{A: [2]float64{111, 320}, B: [2]float64{407, 354}},
			{A: [2]float64{407, 354}, B: [2]float64{407, 257}},
		},
		StaticElasticity: 0.95,
		StaticFriction:   0.9,
	}
}

func defaultChain() *ChainConfig {
	return &ChainConfig{
		Masses:      150,
		Mass:        0.05,
		Radius:      0.04,
		Spacing:     0.12,
		RestLength:  0.1,
		Stiffness:   1200,
		Damping:     8,
		ImpulseTime: 0.25,
		AnchorLift:  0.5,
	}
}

func defaultPendulum() *PendulumConfig {
	return &PendulumConfig{
		Anchor:      [2]float64{400, 100},
		Masses:      [2]float64{2, 1},
		Radius:      12,
		RestLengths: [2]float64{100, 100},
		Stiffness:   40,
		Damping:     0.01,
		Offsets:     [2][2]float64{{120, 110}, {80, 110}},
		Friction:    0.4,
		Elasticity:  0.9,
		WallOffset:  25,
		WallHeight:  600,

		WallRadius:     2,
		WallElasticity: 0.98,
		WallFriction:   0.4,
	}
}

func (c *EnvironmentConfig) Validate() error {
	switch c.Scenario {
	case ScenarioPlanet, ScenarioBalls, ScenarioChain, ScenarioPendulum, ScenarioBodies:
	default:
		return fmt.Errorf("%q: %w", c.Scenario, ErrUnknownScenario)
	}
	if err := c.validateScenarioBlock(); err != nil {
		return err
	}
	switch c.Engine {
	case EngineChipmunk, EngineEuler:
	default:
		return fmt.Errorf("engine %q: %w", c.Engine, ErrInvalidConfig)
	}
	switch c.UpdateMode {
	case ModeCallback, ModeBatch:
	default:
		return fmt.Errorf("update mode %q: %w", c.UpdateMode, ErrInvalidConfig)
	}
	if c.Dt <= 0 {
		return fmt.Errorf("dt %v must be positive: %w", c.Dt, ErrInvalidConfig)
	}
	if c.Substeps < 1 {
		return fmt.Errorf("substeps %d: %w", c.Substeps, ErrInvalidConfig)
	}
	if c.Damping < 0 || c.Damping > 1 {
		return fmt.Errorf("damping %v outside [0,1]: %w", c.Damping, ErrInvalidConfig)
	}
	if c.Neighbor.K < 0 {
		return fmt.Errorf("neighbor k %d: %w", c.Neighbor.K, ErrInvalidConfig)
	}
	if c.Neighbor.Softening < 0 {
		return fmt.Errorf("neighbor softening %v: %w", c.Neighbor.Softening, ErrInvalidConfig)
	}
	if c.Neighbor.Index != "brute" && c.Neighbor.Index != "kdtree" {
		return fmt.Errorf("neighbor index %q: %w", c.Neighbor.Index, ErrInvalidConfig)
	}
	if c.Merge.MaxPasses < 0 {
		return fmt.Errorf("merge max passes %d: %w", c.Merge.MaxPasses, ErrInvalidConfig)
	}
	if c.UpdateMode == ModeBatch && c.Central == nil {
		return fmt.Errorf("batch update mode needs central gravity: %w", ErrInvalidConfig)
	}
	if c.Central != nil && c.Central.Strength < 0 {
		return fmt.Errorf("central strength %v: %w", c.Central.Strength, ErrInvalidConfig)
	}
	if p := c.Planets; p != nil && c.Scenario == ScenarioPlanet {
		if p.Mass <= 0 || p.Radius <= 0 {
			return fmt.Errorf("planet mass and radius must be positive: %w", ErrInvalidConfig)
		}
		if p.SpeedRange[0] > p.SpeedRange[1] {
			return fmt.Errorf("planet speed range %v: %w", p.SpeedRange, ErrInvalidConfig)
		}
	}
	for i, b := range c.Bodies {
		if b.Mass <= 0 || b.Radius <= 0 {
			return fmt.Errorf("body %d: mass and radius must be positive: %w", i, ErrInvalidConfig)
		}
	}
	if c.Engine == EngineEuler && (c.Scenario == ScenarioChain || c.Scenario == ScenarioPendulum || c.Scenario == ScenarioBalls) {
		return fmt.Errorf("scenario %s needs the chipmunk engine: %w", c.Scenario, ErrInvalidConfig)
	}
	return nil
}

// validateScenarioBlock checks that the block the scenario builds from is
// present. ApplyDefaults fills every missing block.
func (c *EnvironmentConfig) validateScenarioBlock() error {
	missing := ""
	switch c.Scenario {
	case ScenarioPlanet:
		if c.Planets == nil {
			missing = "planets"
		} else if c.Central == nil {
			missing = "central"
		}
	case ScenarioBalls:
		if c.Balls == nil {
			missing = "balls"
		}
	case ScenarioChain:
		if c.Chain == nil {
			missing = "chain"
		}
	case ScenarioPendulum:
		if c.Pendulum == nil {
			missing = "pendulum"
		}
	}
	if missing != "" {
		return fmt.Errorf("scenario %s needs a %s block: %w", c.Scenario, missing, ErrInvalidConfig)
	}
	return nil
}
