// Package kinematics models a point body moving in the plane with a constant
// per-tick velocity. Velocity is expressed in metres per tick, so one call to
// Integrate advances the body by exactly one simulation tick.
package kinematics

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/banshee-data/intercept/internal/geom"
)

// Entity is the kinematic state of one body: a position in metres and a
// velocity in metres per tick.
//
// An Entity never adjusts its own speed. Controllers own the velocity and
// replace it each tick via SetHeading or by assigning Velocity directly.
type Entity struct {
	Position r2.Vec
	Velocity r2.Vec
}

// New returns an entity at pos moving with vel.
func New(pos, vel r2.Vec) *Entity {
	return &Entity{Position: pos, Velocity: vel}
}

// Integrate advances the position by one tick of the current velocity.
// Positions are unbounded.
func (e *Entity) Integrate() {
	e.Position = r2.Add(e.Position, e.Velocity)
}

// DistanceTo returns the Euclidean distance between the two entities'
// current positions.
func (e *Entity) DistanceTo(other *Entity) float64 {
	return geom.Distance(e.Position, other.Position)
}

// Speed returns the velocity magnitude in metres per tick.
func (e *Entity) Speed() float64 {
	return r2.Norm(e.Velocity)
}

// SetHeading sets the velocity to heading scaled by speed. heading is
// expected to be a unit vector (or zero, which stops the entity).
func (e *Entity) SetHeading(heading r2.Vec, speed float64) {
	e.Velocity = r2.Scale(speed, heading)
}

// Altitude is the vertical coordinate of the position.
func (e *Entity) Altitude() float64 {
	return e.Position.Y
}
