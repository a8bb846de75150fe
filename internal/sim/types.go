package sim

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/banshee-data/intercept/internal/evasion"
	"github.com/banshee-data/intercept/internal/guidance"
)

// State is the lifecycle state of a run.
type State string

const (
	StateRunning   State = "running"   // ticks remain and no collision yet
	StateCollided  State = "collided"  // distance dropped below the threshold
	StateExhausted State = "exhausted" // tick budget spent without collision
)

// Terminal reports whether no further ticks will run.
func (s State) Terminal() bool {
	return s == StateCollided || s == StateExhausted
}

// Defaults for the run-level parameters.
const (
	DefaultCollisionThreshold = 1.0  // metres
	DefaultMaxTicks           = 1000 // ticks
	DefaultInterceptorSpeed   = 2.5  // metres per tick
)

// Rect is an axis-aligned rectangle used to randomise the interceptor start.
type Rect struct {
	Min r2.Vec
	Max r2.Vec
}

// Contains reports whether p lies inside the rectangle, edges included.
func (r Rect) Contains(p r2.Vec) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// Params holds everything a run needs. It is not modified by the run.
type Params struct {
	CollisionThreshold float64 // metres; a negative value never collides
	MaxTicks           int

	TargetPosition      r2.Vec
	TargetVelocity      r2.Vec
	InterceptorPosition r2.Vec
	InterceptorVelocity r2.Vec
	InterceptorSpeed    float64 // cruise speed used by guidance, metres per tick

	EvasionEnabled bool
	Evasion        evasion.Params
	Guidance       guidance.Params

	// RandomStart, when set, replaces InterceptorPosition with a uniform draw
	// inside the rectangle.
	RandomStart *Rect
	Seed        int64
}

// DefaultParams reproduces the reference encounter: a target at 20 m moving
// right at 2 m/tick and an interceptor on the ground at 2.5 m/tick using lead
// pursuit with the approach-angle corrector.
func DefaultParams() Params {
	return Params{
		CollisionThreshold:  DefaultCollisionThreshold,
		MaxTicks:            DefaultMaxTicks,
		TargetPosition:      r2.Vec{X: 0, Y: 20},
		TargetVelocity:      r2.Vec{X: 2, Y: 0},
		InterceptorPosition: r2.Vec{},
		InterceptorVelocity: r2.Vec{},
		InterceptorSpeed:    DefaultInterceptorSpeed,
		EvasionEnabled:      true,
		Evasion: evasion.Params{
			ReferenceAltitude: 20,
			Weight:            0.6,
			Gain:              0.1,
			MaxDeviationDeg:   evasion.DefaultMaxDeviationDeg,
		},
		Guidance: guidance.DefaultParams(),
		Seed:     1,
	}
}

// Validate checks the parameters that would otherwise make a run
// meaningless. Numeric edge cases inside a run are not errors.
func (p Params) Validate() error {
	if p.MaxTicks <= 0 {
		return fmt.Errorf("max ticks must be positive, got %d", p.MaxTicks)
	}
	if p.InterceptorSpeed < 0 {
		return fmt.Errorf("interceptor speed must be non-negative, got %f", p.InterceptorSpeed)
	}
	for name, v := range map[string]r2.Vec{
		"target position":      p.TargetPosition,
		"target velocity":      p.TargetVelocity,
		"interceptor position": p.InterceptorPosition,
		"interceptor velocity": p.InterceptorVelocity,
	} {
		if !finite(v) {
			return fmt.Errorf("%s must be finite, got %v", name, v)
		}
	}
	if p.RandomStart != nil {
		if p.RandomStart.Min.X > p.RandomStart.Max.X || p.RandomStart.Min.Y > p.RandomStart.Max.Y {
			return fmt.Errorf("random start rectangle is inverted: %v", *p.RandomStart)
		}
	}
	if p.EvasionEnabled {
		if err := p.Evasion.Validate(); err != nil {
			return fmt.Errorf("evasion: %w", err)
		}
	}
	if err := p.Guidance.Validate(); err != nil {
		return fmt.Errorf("guidance: %w", err)
	}
	return nil
}

func finite(v r2.Vec) bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}

// Trajectory is the ordered list of positions of one entity, one per tick,
// starting with the initial position.
type Trajectory []r2.Vec

// Xs returns the horizontal coordinates.
func (tr Trajectory) Xs() []float64 {
	out := make([]float64, len(tr))
	for i, p := range tr {
		out[i] = p.X
	}
	return out
}

// Ys returns the vertical coordinates (altitudes).
func (tr Trajectory) Ys() []float64 {
	out := make([]float64, len(tr))
	for i, p := range tr {
		out[i] = p.Y
	}
	return out
}

// Last returns the final recorded position, or the zero vector when empty.
func (tr Trajectory) Last() r2.Vec {
	if len(tr) == 0 {
		return r2.Vec{}
	}
	return tr[len(tr)-1]
}

// Collision describes the tick at which the entities came within the
// collision threshold.
type Collision struct {
	Tick     int     // number of completed ticks before detection
	Point    r2.Vec  // target position at detection
	AngleDeg float64 // angle between the two velocity vectors
	Distance float64 // separation at detection
}

// Verdict classifies the terminal approach geometry.
type Verdict string

const (
	VerdictQualified Verdict = "qualified"  // approach angle above the minimum
	VerdictTailChase Verdict = "tail-chase" // approach angle at or below the minimum
)

// ClassifyApproach returns VerdictQualified when angleDeg strictly exceeds
// minDeg.
func ClassifyApproach(angleDeg, minDeg float64) Verdict {
	if angleDeg > minDeg {
		return VerdictQualified
	}
	return VerdictTailChase
}

// Result is the complete output of one run. It is fully populated before any
// rendering or reporting happens.
type Result struct {
	RunID            uuid.UUID
	Seed             int64
	State            State
	Ticks            int
	Target           Trajectory
	Interceptor      Trajectory
	Collision        *Collision
	InterceptorStart r2.Vec

	// Guidance diagnostics over the run.
	Corrections int // ticks on which the approach-angle corrector fired
	Fallbacks   int // lead-pursuit ticks with no intercept solution
}

// Collided reports whether the run ended in a collision.
func (r *Result) Collided() bool {
	return r.Collision != nil
}
