package physics

import (
	"math"
	"testing"

	"golang.org/x/exp/rand"
)

func relClose(a, b, tol float64) bool {
	d := math.Abs(a - b)
	m := math.Max(math.Abs(a), math.Abs(b))
	return d <= tol*m || d <= 1e-300
}

func TestCentralAccelerationPointsInward(t *testing.T) {
	law := CentralGravity{Center: Vec2{450, 450}, Strength: 5e6}
	for _, p := range []Vec2{{550, 450}, {450, 300}, {100, 800}, {451, 451}} {
		a := law.Acceleration(p)
		d := p.Sub(law.Center)
		r := d.Len()
		if a.Dot(d) >= 0 {
			t.Errorf("a(%v) = %v does not point at the center", p, a)
		}
		if want := law.Strength / (r * r); !relClose(a.Len(), want, 1e-12) {
			t.Errorf("|a(%v)| = %v, want %v", p, a.Len(), want)
		}
	}
}

func TestUpdateVelocityDamping(t *testing.T) {
	law := CentralGravity{Strength: 1e4}
	p, v := Vec2{100, 0}, Vec2{0, 10}
	dt := 0.5
	got := law.UpdateVelocity(p, v, 0.9, dt)
	want := v.Mul(0.9).Add(law.Acceleration(p).Mul(dt))
	if got != want {
		t.Errorf("UpdateVelocity = %v, want %v", got, want)
	}
}

func TestScalarBatchEquivalence(t *testing.T) {
	law := CentralGravity{Center: Vec2{450, 450}, Strength: 5e6}
	rnd := rand.New(rand.NewSource(1))
	bodies := make([]Body, 400)
	for i := range bodies {
		p := Vec2{rnd.Float64() * 900, rnd.Float64() * 900}
		for p.DistSq(law.Center) <= 40*40 {
			p = Vec2{rnd.Float64() * 900, rnd.Float64() * 900}
		}
		bodies[i] = Body{
			ID:   BodyID(i + 1),
			Mass: 1,
			Pos:  p,
			Vel:  Vec2{rnd.NormFloat64() * 50, rnd.NormFloat64() * 50},
		}
	}
	dt := 1.0 / 60

	s := NewSnapshot(bodies)
	law.UpdateVelocities(s, dt)
	for i, b := range bodies {
		want := law.UpdateVelocity(b.Pos, b.Vel, 1.0, dt)
		got := s.Vel(i)
		if !relClose(got.X, want.X, 1e-9) || !relClose(got.Y, want.Y, 1e-9) {
			t.Errorf("body %d: batch %v, scalar %v", i, got, want)
		}
	}
}

func TestUpdateVelocitiesEmpty(t *testing.T) {
	s := NewSnapshot(nil)
	CentralGravity{Strength: 1}.UpdateVelocities(s, 1)
	if s.Len() != 0 {
		t.Errorf("empty snapshot grew to %d", s.Len())
	}
}

func TestCircularOrbitSeeding(t *testing.T) {
	law := CentralGravity{Center: Vec2{0, 0}, Strength: 5e6}
	p := Vec2{100, 0}
	r := 100.0
	v := law.OrbitalVelocity(p, 1)

	// purely tangential
	if math.Abs(v.Dot(p)) > 1e-9 {
		t.Errorf("v = %v has a radial component", v)
	}
	if want := law.CircularSpeed(r); !relClose(v.Len(), want, 1e-12) {
		t.Errorf("|v| = %v, want %v", v.Len(), want)
	}

	a := law.Acceleration(p)
	radial := a.Dot(p.Normalize())
	if want := -law.Strength / (r * r); !relClose(radial, want, 1e-12) {
		t.Errorf("radial acceleration %v, want %v", radial, want)
	}
	// centripetal balance of a circular orbit
	if !relClose(v.LenSq()/r, -radial, 1e-12) {
		t.Errorf("v^2/r = %v, want %v", v.LenSq()/r, -radial)
	}
}

func TestOrbitalVelocityFactor(t *testing.T) {
	law := CentralGravity{Center: Vec2{450, 450}, Strength: 5e6}
	p := Vec2{450, 650}
	circ := law.OrbitalVelocity(p, 1)
	ell := law.OrbitalVelocity(p, 0.75)
	if !relClose(ell.Len(), 0.75*circ.Len(), 1e-12) {
		t.Errorf("|v_ell| = %v, want %v", ell.Len(), 0.75*circ.Len())
	}
	if circ.Normalize().Dot(ell.Normalize()) < 1-1e-12 {
		t.Errorf("scaled velocity changed direction: %v vs %v", ell, circ)
	}
}
