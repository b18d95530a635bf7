// Package engine holds the worlds the simulator drives: a Chipmunk-backed
// rigid-body space and a contact-free Euler world.
package engine

import (
	"errors"
	"fmt"

	"accretion-sim/pkg/physics"
)

// StaticBody is the id of the world's static body in every engine.
// Dynamic ids start at 1.
const StaticBody physics.BodyID = 0

var (
	ErrUnsupported = errors.New("operation not supported by this engine")
	ErrUnknownBody = errors.New("unknown body")
)

func unknownBody(id physics.BodyID) error {
	return fmt.Errorf("body %d: %w", id, ErrUnknownBody)
}

func checkLengths(ids []physics.BodyID, vs []physics.Vec2) error {
	if len(ids) != len(vs) {
		return fmt.Errorf("%d ids but %d vectors", len(ids), len(vs))
	}
	return nil
}
