// Package evasion implements the target's heading controller: a bounded random
// jink blended with a proportional pull back toward a reference altitude.
//
// Weight 0 gives purely stochastic evasion; weight 1 gives a deterministic
// altitude-holding controller.
package evasion

import (
	"fmt"

	"github.com/banshee-data/intercept/internal/geom"
	"github.com/banshee-data/intercept/internal/kinematics"
)

// DefaultMaxDeviationDeg bounds the random heading deviation drawn each tick.
const DefaultMaxDeviationDeg = 5.0

// Source supplies uniform samples in [0, 1). *math/rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// Params configures the controller. Values are fixed for a run.
type Params struct {
	ReferenceAltitude float64 // metres
	Weight            float64 // 0 = pure random, 1 = pure correction
	Gain              float64 // degrees of correction per metre of altitude error
	MaxDeviationDeg   float64 // random deviation bound; 0 disables the random turn
}

// Validate checks the blend weight and deviation bound.
func (p Params) Validate() error {
	if p.Weight < 0 || p.Weight > 1 {
		return fmt.Errorf("evasion weight must be between 0 and 1, got %f", p.Weight)
	}
	if p.MaxDeviationDeg < 0 {
		return fmt.Errorf("evasion max deviation must be non-negative, got %f", p.MaxDeviationDeg)
	}
	return nil
}

// Controller steers a target entity each tick.
type Controller struct {
	params Params
	src    Source
}

// NewController returns a controller drawing its randomness from src.
func NewController(params Params, src Source) *Controller {
	return &Controller{params: params, src: src}
}

// Params returns the controller configuration.
func (c *Controller) Params() Params { return c.params }

// Deviation draws a heading deviation uniformly from
// [-MaxDeviationDeg, +MaxDeviationDeg]. A sample is consumed even when the
// bound is zero so the stream stays aligned across configurations.
func (c *Controller) Deviation() float64 {
	return (c.src.Float64()*2 - 1) * c.params.MaxDeviationDeg
}

// Correction returns the proportional correction angle in degrees. Below the
// reference altitude the result is positive, which turns a rightward-moving
// target upward.
func (c *Controller) Correction(altitude float64) float64 {
	return -(altitude - c.params.ReferenceAltitude) * c.params.Gain
}

// Blend mixes the random and corrective angles by the configured weight.
func (c *Controller) Blend(random, correction float64) float64 {
	w := c.params.Weight
	return random*(1-w) + correction*w
}

// Step rotates the target's velocity by the blended angle and returns the
// angle applied, in degrees. Speed is preserved by the rotation.
func (c *Controller) Step(target *kinematics.Entity) float64 {
	random := c.Deviation()
	correction := c.Correction(target.Altitude())
	turn := c.Blend(random, correction)
	target.Velocity = geom.Rotate(target.Velocity, turn)
	return turn
}
