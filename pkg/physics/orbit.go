package physics

import (
	"golang.org/x/exp/rand"
)

// OrbitSeeder places new bodies on orbits around a CentralGravity center.
type OrbitSeeder struct {
	Law CentralGravity
	// Spawn box, inclusive.
	Min, Max Vec2
	// Positions closer than Clearance to the center are resampled.
	Clearance float64
	// Probability of an elliptical instead of a circular orbit.
	EllipticalFraction float64
	// Speed factor range applied to elliptical orbits.
	SpeedMin, SpeedMax float64

	rnd *rand.Rand
}

// maxSpawnAttempts bounds the rejection loop when the spawn box barely
// extends beyond the clearance disc.
const maxSpawnAttempts = 10000

func NewOrbitSeeder(law CentralGravity, rnd *rand.Rand) *OrbitSeeder {
	return &OrbitSeeder{
		Law:      law,
		SpeedMin: 1,
		SpeedMax: 1,
		rnd:      rnd,
	}
}

// Seed returns a body template on a fresh orbit. Mass, radius and surface
// properties are left to the caller.
func (s *OrbitSeeder) Seed() (Body, bool) {
	pos, ok := s.position()
	if !ok {
		return Body{}, false
	}
	factor := 1.0
	if s.rnd.Float64() < s.EllipticalFraction {
		factor = s.SpeedMin + s.rnd.Float64()*(s.SpeedMax-s.SpeedMin)
	}
	d := pos.Sub(s.Law.Center)
	w := s.Law.angularSpeed(d.Len()) * factor
	return Body{
		Pos:    pos,
		Vel:    d.Perp().Mul(w),
		Angle:  orbitAngle(d),
		AngVel: w,
		Hook:   HookCentral,
	}, true
}

func (s *OrbitSeeder) position() (Vec2, bool) {
	clear2 := s.Clearance * s.Clearance
	for attempt := 0; attempt < maxSpawnAttempts; attempt++ {
		p := Vec2{
			X: s.Min.X + s.rnd.Float64()*(s.Max.X-s.Min.X),
			Y: s.Min.Y + s.rnd.Float64()*(s.Max.Y-s.Min.Y),
		}
		if p.DistSq(s.Law.Center) > clear2 {
			return p, true
		}
	}
	return Vec2{}, false
}
