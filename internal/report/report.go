// Package report prints the outcome of a run for people and for scripts.
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/banshee-data/intercept/internal/sim"
)

// Summary is the machine-readable outcome of one run.
type Summary struct {
	RunID         string      `json:"run_id"`
	Seed          int64       `json:"seed"`
	State         sim.State   `json:"state"`
	Ticks         int         `json:"ticks"`
	MaxTicks      int         `json:"max_ticks"`
	Collided      bool        `json:"collided"`
	CollisionTick *int        `json:"collision_tick,omitempty"`
	CollisionX    *float64    `json:"collision_x,omitempty"`
	CollisionY    *float64    `json:"collision_y,omitempty"`
	ApproachDeg   *float64    `json:"approach_deg,omitempty"`
	Verdict       sim.Verdict `json:"verdict,omitempty"`
	Corrections   int         `json:"angle_corrections"`
	Fallbacks     int         `json:"pursuit_fallbacks"`
}

// Summarize extracts the reportable fields from res.
func Summarize(res *sim.Result, maxTicks int, minApproachDeg float64) Summary {
	s := Summary{
		RunID:       res.RunID.String(),
		Seed:        res.Seed,
		State:       res.State,
		Ticks:       res.Ticks,
		MaxTicks:    maxTicks,
		Collided:    res.Collided(),
		Corrections: res.Corrections,
		Fallbacks:   res.Fallbacks,
	}
	if c := res.Collision; c != nil {
		tick, x, y, angle := c.Tick, c.Point.X, c.Point.Y, c.AngleDeg
		s.CollisionTick = &tick
		s.CollisionX = &x
		s.CollisionY = &y
		s.ApproachDeg = &angle
		s.Verdict = sim.ClassifyApproach(angle, minApproachDeg)
	}
	return s
}

// Write prints the console report: collision tick and position plus the
// approach-angle verdict, or the no-collision line.
func Write(w io.Writer, res *sim.Result, maxTicks int, minApproachDeg float64) error {
	c := res.Collision
	if c == nil {
		_, err := fmt.Fprintf(w, "❌ No collision occurred within %d time steps\n", maxTicks)
		return err
	}

	if _, err := fmt.Fprintf(w, "✅ Collision occurred at step %d (within %d time steps)\n", c.Tick, maxTicks); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "   Position: (%.2f, %.2f), separation %.3f m\n", c.Point.X, c.Point.Y, c.Distance); err != nil {
		return err
	}

	var err error
	if sim.ClassifyApproach(c.AngleDeg, minApproachDeg) == sim.VerdictQualified {
		_, err = fmt.Fprintf(w, "✅ Angle between velocities is: %.2f° (greater than %g°)\n", c.AngleDeg, minApproachDeg)
	} else {
		_, err = fmt.Fprintf(w, "❌ Angle between velocities is: %.2f° (not greater than %g°)\n", c.AngleDeg, minApproachDeg)
	}
	return err
}

// WriteJSON encodes the summary as indented JSON.
func WriteJSON(w io.Writer, s Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	return nil
}
