// Package sim drives a single pursuit encounter tick by tick.
//
// Each tick runs in a fixed order:
//
//  1. Collision test on the current positions. A hit ends the run with the
//     target position and the angle between the velocities as last set.
//  2. Evasion: the target controller rotates the target velocity.
//  3. Guidance: the interceptor velocity is replaced by the commanded
//     heading at cruise speed.
//  4. Both entities integrate one tick.
//  5. Both positions are appended to their trajectories.
//  6. The run ends when the tick budget is spent.
//
// All randomness comes from one seeded stream per run, so a run is fully
// reproducible from its Params.
package sim

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/banshee-data/intercept/internal/evasion"
	"github.com/banshee-data/intercept/internal/geom"
	"github.com/banshee-data/intercept/internal/guidance"
	"github.com/banshee-data/intercept/internal/kinematics"
	"github.com/banshee-data/intercept/internal/monitoring"
)

// Simulation holds the live state of one run.
type Simulation struct {
	params      Params
	rng         *rand.Rand
	target      *kinematics.Entity
	interceptor *kinematics.Entity
	evader      *evasion.Controller
	state       State
	tick        int
	result      *Result
}

// New validates params and places both entities at their initial state.
// When params.RandomStart is set, the interceptor position is drawn from the
// run's random stream before any evasion draw.
func New(params Params) (*Simulation, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	params.Guidance.Mode, _ = guidance.ParseMode(string(params.Guidance.Mode))

	rng := rand.New(rand.NewSource(params.Seed))

	start := params.InterceptorPosition
	if rs := params.RandomStart; rs != nil {
		start = r2.Vec{
			X: rs.Min.X + rng.Float64()*(rs.Max.X-rs.Min.X),
			Y: rs.Min.Y + rng.Float64()*(rs.Max.Y-rs.Min.Y),
		}
	}

	s := &Simulation{
		params:      params,
		rng:         rng,
		target:      kinematics.New(params.TargetPosition, params.TargetVelocity),
		interceptor: kinematics.New(start, params.InterceptorVelocity),
		state:       StateRunning,
	}
	if params.EvasionEnabled {
		s.evader = evasion.NewController(params.Evasion, rng)
		ep := s.evader.Params()
		monitoring.Debugf("evader: weight %.2f, gain %.3f, reference altitude %.2f, max deviation %.1f°",
			ep.Weight, ep.Gain, ep.ReferenceAltitude, ep.MaxDeviationDeg)
	}

	s.result = &Result{
		RunID:            uuid.New(),
		Seed:             params.Seed,
		State:            StateRunning,
		InterceptorStart: start,
		Target:           make(Trajectory, 0, params.MaxTicks+1),
		Interceptor:      make(Trajectory, 0, params.MaxTicks+1),
	}
	s.result.Target = append(s.result.Target, s.target.Position)
	s.result.Interceptor = append(s.result.Interceptor, s.interceptor.Position)
	return s, nil
}

// State returns the current lifecycle state.
func (s *Simulation) State() State { return s.state }

// Tick returns the number of completed ticks.
func (s *Simulation) Tick() int { return s.tick }

// Target returns the live target entity. Callers must not mutate it.
func (s *Simulation) Target() *kinematics.Entity { return s.target }

// Interceptor returns the live interceptor entity. Callers must not mutate it.
func (s *Simulation) Interceptor() *kinematics.Entity { return s.interceptor }

// Step advances the run by one tick and returns the resulting state. Calling
// Step on a terminal run is a no-op.
func (s *Simulation) Step() State {
	if s.state.Terminal() {
		return s.state
	}

	dist := s.target.DistanceTo(s.interceptor)
	if dist < s.params.CollisionThreshold {
		s.result.Collision = &Collision{
			Tick:     s.tick,
			Point:    s.target.Position,
			AngleDeg: geom.AngleBetween(s.target.Velocity, s.interceptor.Velocity),
			Distance: dist,
		}
		s.finish(StateCollided)
		return s.state
	}

	if s.evader != nil {
		turn := s.evader.Step(s.target)
		monitoring.Debugf("tick %d: target turned %.3f°", s.tick, turn)
	}

	// The intercept is solved at the current speed; the heading is then
	// flown at cruise speed.
	cmd := guidance.Guide(s.interceptor.Position, s.interceptor.Speed(),
		s.target.Position, s.target.Velocity, s.params.Guidance)
	if cmd.Corrected {
		s.result.Corrections++
	}
	if s.params.Guidance.Mode == guidance.ModeLead && !cmd.Intercept.Found {
		s.result.Fallbacks++
		monitoring.Debugf("tick %d: no intercept solution, pure pursuit", s.tick)
	}
	s.interceptor.SetHeading(cmd.Heading, s.params.InterceptorSpeed)

	s.target.Integrate()
	s.interceptor.Integrate()

	s.result.Target = append(s.result.Target, s.target.Position)
	s.result.Interceptor = append(s.result.Interceptor, s.interceptor.Position)
	s.tick++

	if s.tick >= s.params.MaxTicks {
		s.finish(StateExhausted)
	}
	return s.state
}

func (s *Simulation) finish(state State) {
	s.state = state
	s.result.State = state
	s.result.Ticks = s.tick
	switch state {
	case StateCollided:
		c := s.result.Collision
		monitoring.Logf("run %s: collision at tick %d at (%.2f, %.2f), approach %.2f°",
			s.result.RunID, c.Tick, c.Point.X, c.Point.Y, c.AngleDeg)
	case StateExhausted:
		monitoring.Logf("run %s: no collision within %d ticks (final separation %.2f m)",
			s.result.RunID, s.tick, s.target.DistanceTo(s.interceptor))
	}
}

// Run steps the simulation to a terminal state and returns its result.
func (s *Simulation) Run() *Result {
	for !s.state.Terminal() {
		s.Step()
	}
	return s.result
}

// Result returns the result accumulated so far.
func (s *Simulation) Result() *Result { return s.result }

// Run executes a complete encounter for params.
func Run(params Params) (*Result, error) {
	s, err := New(params)
	if err != nil {
		return nil, err
	}
	monitoring.Logf("run %s: seed=%d mode=%s evasion=%t threshold=%.2f max_ticks=%d",
		s.result.RunID, params.Seed, params.Guidance.Mode, params.EvasionEnabled,
		params.CollisionThreshold, params.MaxTicks)
	return s.Run(), nil
}
