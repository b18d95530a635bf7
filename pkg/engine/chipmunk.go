package engine

import (
	"fmt"

	"github.com/jakecoffman/cp"

	"accretion-sim/pkg/physics"
)

// Chipmunk adapts a cp.Space to the simulator. Circles are tracked in
// insertion order so snapshots are stable between ticks.
type Chipmunk struct {
	space   *cp.Space
	central *physics.CentralGravity

	nextID  physics.BodyID
	circles map[physics.BodyID]*circle
	order   []physics.BodyID
	anchors map[physics.BodyID]*cp.Body
}

type circle struct {
	body   *cp.Body
	shape  *cp.Shape
	radius float64
	hook   physics.VelocityHook
}

// NewChipmunk creates a space with the given gravity, velocity retention
// per second and solver iterations (0 keeps the cp default).
func NewChipmunk(gravity physics.Vec2, damping float64, iterations int) *Chipmunk {
	space := cp.NewSpace()
	space.SetGravity(toCP(gravity))
	space.SetDamping(damping)
	if iterations > 0 {
		space.Iterations = uint(iterations)
	}
	return &Chipmunk{
		space:   space,
		nextID:  StaticBody + 1,
		circles: make(map[physics.BodyID]*circle),
		anchors: make(map[physics.BodyID]*cp.Body),
	}
}

func toCP(v physics.Vec2) cp.Vector {
	return cp.Vector{X: v.X, Y: v.Y}
}

func fromCP(v cp.Vector) physics.Vec2 {
	return physics.Vec2{X: v.X, Y: v.Y}
}

func (c *Chipmunk) SetCentral(law *physics.CentralGravity) {
	c.central = law
}

// centralVelocity is installed as the velocity update func of bodies with
// HookCentral. It ignores the space gravity.
func (c *Chipmunk) centralVelocity(body *cp.Body, gravity cp.Vector, damping, dt float64) {
	if c.central == nil {
		cp.BodyUpdateVelocity(body, gravity, damping, dt)
		return
	}
	a := c.central.Acceleration(fromCP(body.Position()))
	cp.BodyUpdateVelocity(body, toCP(a), damping, dt)
}

func (c *Chipmunk) AddCircle(b physics.Body) physics.BodyID {
	body := c.space.AddBody(cp.NewBody(b.Mass, cp.MomentForCircle(b.Mass, 0, b.Radius, cp.Vector{})))
	body.SetPosition(toCP(b.Pos))
	body.SetVelocityVector(toCP(b.Vel))
	body.SetAngle(b.Angle)
	body.SetAngularVelocity(b.AngVel)

	shape := cp.NewCircle(body, b.Radius, cp.Vector{})
	shape.SetFriction(b.Friction)
	shape.SetElasticity(b.Elasticity)
	c.space.AddShape(shape)

	id := c.nextID
	c.nextID++
	body.UserData = id

	e := &circle{body: body, shape: shape, radius: b.Radius}
	c.circles[id] = e
	c.order = append(c.order, id)
	c.setHook(e, b.Hook)
	return id
}

func (c *Chipmunk) setHook(e *circle, hook physics.VelocityHook) {
	e.hook = hook
	if hook == physics.HookCentral {
		e.body.SetVelocityUpdateFunc(c.centralVelocity)
		return
	}
	e.body.SetVelocityUpdateFunc(cp.BodyUpdateVelocity)
}

func (c *Chipmunk) SetHook(id physics.BodyID, hook physics.VelocityHook) error {
	e, ok := c.circles[id]
	if !ok {
		return unknownBody(id)
	}
	c.setHook(e, hook)
	return nil
}

func (c *Chipmunk) Remove(id physics.BodyID) error {
	e, ok := c.circles[id]
	if !ok {
		return unknownBody(id)
	}
	c.space.RemoveShape(e.shape)
	c.space.RemoveBody(e.body)
	delete(c.circles, id)
	return nil
}

func (c *Chipmunk) Contains(id physics.BodyID) bool {
	e, ok := c.circles[id]
	return ok && c.space.ContainsBody(e.body)
}

func (c *Chipmunk) Body(id physics.BodyID) (physics.Body, bool) {
	e, ok := c.circles[id]
	if !ok {
		return physics.Body{}, false
	}
	return c.read(id, e), true
}

func (c *Chipmunk) read(id physics.BodyID, e *circle) physics.Body {
	return physics.Body{
		ID:         id,
		Mass:       e.body.Mass(),
		Pos:        fromCP(e.body.Position()),
		Vel:        fromCP(e.body.Velocity()),
		Radius:     e.radius,
		Angle:      e.body.Angle(),
		AngVel:     e.body.AngularVelocity(),
		Friction:   e.shape.Friction(),
		Elasticity: e.shape.Elasticity(),
		Hook:       e.hook,
	}
}

// Bodies returns the dynamic circles in insertion order and drops removed
// ids from the order list.
func (c *Chipmunk) Bodies() []physics.Body {
	out := make([]physics.Body, 0, len(c.circles))
	live := c.order[:0]
	for _, id := range c.order {
		e, ok := c.circles[id]
		if !ok {
			continue
		}
		live = append(live, id)
		out = append(out, c.read(id, e))
	}
	c.order = live
	return out
}

func (c *Chipmunk) Circles() []physics.Body {
	return c.Bodies()
}

func (c *Chipmunk) Replace(a, b physics.BodyID, merged physics.Body) (physics.BodyID, error) {
	if a == b {
		return 0, fmt.Errorf("replace body %d with itself", a)
	}
	if !c.Contains(a) {
		return 0, unknownBody(a)
	}
	if !c.Contains(b) {
		return 0, unknownBody(b)
	}
	id := c.AddCircle(merged)
	_ = c.Remove(a)
	_ = c.Remove(b)
	return id, nil
}

func (c *Chipmunk) AddVelocities(ids []physics.BodyID, dv []physics.Vec2) error {
	if err := checkLengths(ids, dv); err != nil {
		return err
	}
	for k, id := range ids {
		e, ok := c.circles[id]
		if !ok {
			return unknownBody(id)
		}
		e.body.SetVelocityVector(e.body.Velocity().Add(toCP(dv[k])))
	}
	return nil
}

func (c *Chipmunk) SetVelocities(ids []physics.BodyID, v []physics.Vec2) error {
	if err := checkLengths(ids, v); err != nil {
		return err
	}
	for k, id := range ids {
		e, ok := c.circles[id]
		if !ok {
			return unknownBody(id)
		}
		e.body.SetVelocityVector(toCP(v[k]))
	}
	return nil
}

func (c *Chipmunk) Step(dt float64) {
	c.space.Step(dt)
}

func (c *Chipmunk) AddSegment(a, b physics.Vec2, radius, elasticity, friction float64) error {
	shape := cp.NewSegment(c.space.StaticBody, toCP(a), toCP(b), radius)
	shape.SetElasticity(elasticity)
	shape.SetFriction(friction)
	c.space.AddShape(shape)
	return nil
}

// AddAnchor adds a kinematic body that springs can attach to and that the
// caller moves explicitly.
func (c *Chipmunk) AddAnchor(pos physics.Vec2) (physics.BodyID, error) {
	body := c.space.AddBody(cp.NewKinematicBody())
	body.SetPosition(toCP(pos))

	id := c.nextID
	c.nextID++
	body.UserData = id
	c.anchors[id] = body
	return id, nil
}

func (c *Chipmunk) MoveAnchor(id physics.BodyID, pos physics.Vec2) error {
	body, ok := c.anchors[id]
	if !ok {
		return unknownBody(id)
	}
	body.SetPosition(toCP(pos))
	return nil
}

func (c *Chipmunk) cpBody(id physics.BodyID) (*cp.Body, error) {
	if id == StaticBody {
		return c.space.StaticBody, nil
	}
	if e, ok := c.circles[id]; ok {
		return e.body, nil
	}
	if body, ok := c.anchors[id]; ok {
		return body, nil
	}
	return nil, unknownBody(id)
}

// AddSpring joins two bodies with a cp damped spring. Anchors are in body
// coordinates; for the static body they are world coordinates.
func (c *Chipmunk) AddSpring(a, b physics.BodyID, anchorA, anchorB physics.Vec2, restLength, stiffness, damping float64) error {
	ba, err := c.cpBody(a)
	if err != nil {
		return err
	}
	bb, err := c.cpBody(b)
	if err != nil {
		return err
	}
	c.space.AddConstraint(cp.NewDampedSpring(ba, bb, toCP(anchorA), toCP(anchorB), restLength, stiffness, damping))
	return nil
}
