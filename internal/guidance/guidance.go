// Package guidance steers the interceptor. Lead pursuit aims at the point
// where a straight-line path at cruise speed meets the target's extrapolated
// track; pure pursuit aims at the target's current position. An optional
// corrector keeps the heading from running parallel to the target's velocity.
package guidance

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/banshee-data/intercept/internal/geom"
)

// Mode selects how the aim point is chosen.
type Mode string

const (
	ModePure Mode = "pure" // aim at the target's current position
	ModeLead Mode = "lead" // aim at the predicted intercept point
)

// ParseMode maps a flag or config string to a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModePure, ModeLead:
		return Mode(s), nil
	case "":
		return ModeLead, nil
	}
	return "", fmt.Errorf("unknown guidance mode %q (want %q or %q)", s, ModePure, ModeLead)
}

// Defaults for the approach-angle corrector.
const (
	DefaultMinApproachDeg = 5.0
	DefaultAngleBufferDeg = 0.5
)

// Params configures the guidance law.
type Params struct {
	Mode            Mode
	EnforceMinAngle bool
	MinApproachDeg  float64
	AngleBufferDeg  float64
}

// DefaultParams returns lead pursuit with the approach-angle corrector on.
func DefaultParams() Params {
	return Params{
		Mode:            ModeLead,
		EnforceMinAngle: true,
		MinApproachDeg:  DefaultMinApproachDeg,
		AngleBufferDeg:  DefaultAngleBufferDeg,
	}
}

// Validate checks the mode and angle settings.
func (p Params) Validate() error {
	if _, err := ParseMode(string(p.Mode)); err != nil {
		return err
	}
	if p.MinApproachDeg < 0 || p.MinApproachDeg >= 180 {
		return fmt.Errorf("min approach angle must be in [0, 180), got %f", p.MinApproachDeg)
	}
	if p.AngleBufferDeg < 0 {
		return fmt.Errorf("angle buffer must be non-negative, got %f", p.AngleBufferDeg)
	}
	return nil
}

// Command is one guidance decision. Heading is a unit vector (or zero when
// the interceptor already sits on the aim point); the caller scales it by the
// cruise speed.
type Command struct {
	Heading   r2.Vec
	Aim       r2.Vec
	Intercept Intercept
	Corrected bool // approach-angle corrector rotated the heading
}

// AimPoint extrapolates the target along its velocity to the intercept time,
// or returns its current position when there is no intercept.
func AimPoint(targetPos, targetVel r2.Vec, ic Intercept) r2.Vec {
	if !ic.Found {
		return targetPos
	}
	return r2.Add(targetPos, r2.Scale(ic.T, targetVel))
}

// DesiredHeading is the unit vector from from to aim, or zero when the two
// points coincide within geom.Epsilon.
func DesiredHeading(from, aim r2.Vec) r2.Vec {
	return geom.Normalize(r2.Sub(aim, from))
}

// EnforceApproachAngle rotates heading away from targetVel by
// minDeg+bufferDeg when the angle between them is at or below minDeg. A
// heading counter-clockwise of targetVel (positive cross(targetVel, heading))
// turns further counter-clockwise; every other heading, an exactly parallel
// one included, turns clockwise. It reports whether a rotation was applied.
func EnforceApproachAngle(heading, targetVel r2.Vec, minDeg, bufferDeg float64) (r2.Vec, bool) {
	if geom.AngleBetween(heading, targetVel) > minDeg {
		return heading, false
	}
	turn := -(minDeg + bufferDeg)
	if geom.Cross(targetVel, heading) > 0 {
		turn = -turn
	}
	return geom.Normalize(geom.Rotate(heading, turn)), true
}

// Guide computes the interceptor heading for one tick. speed is the
// interceptor's current speed, the magnitude of its velocity; an interceptor
// at rest has no intercept solution and falls back to pure pursuit. The
// caller scales the returned unit heading to its cruise speed.
func Guide(interceptorPos r2.Vec, speed float64, targetPos, targetVel r2.Vec, p Params) Command {
	var ic Intercept
	if p.Mode == ModeLead {
		ic = SolveIntercept(r2.Sub(targetPos, interceptorPos), targetVel, speed)
	}
	aim := AimPoint(targetPos, targetVel, ic)
	cmd := Command{
		Heading:   DesiredHeading(interceptorPos, aim),
		Aim:       aim,
		Intercept: ic,
	}
	// A stationary target has no track to run parallel to.
	if p.EnforceMinAngle && cmd.Heading != (r2.Vec{}) && r2.Norm(targetVel) >= geom.Epsilon {
		cmd.Heading, cmd.Corrected = EnforceApproachAngle(cmd.Heading, targetVel, p.MinApproachDeg, p.AngleBufferDeg)
	}
	return cmd
}
