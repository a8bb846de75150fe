package guidance

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/banshee-data/intercept/internal/geom"
)

// Intercept is the result of solving the closing-time quadratic. Found is
// false when no strictly positive time exists; T is meaningless in that case.
type Intercept struct {
	T     float64
	Found bool
}

// InterceptAt returns a solved intercept at time t.
func InterceptAt(t float64) Intercept { return Intercept{T: t, Found: true} }

// NoIntercept returns the unsolvable result.
func NoIntercept() Intercept { return Intercept{} }

// SolveIntercept finds the earliest time t > 0 at which a pursuer moving in a
// straight line at speed from the origin of r can meet a target currently at
// offset r moving with constant velocity v. It solves
//
//	(v·v − s²)t² + 2(r·v)t + r·r = 0
//
// and selects the smallest strictly positive real root.
func SolveIntercept(r, v r2.Vec, speed float64) Intercept {
	a := r2.Dot(v, v) - speed*speed
	b := 2 * r2.Dot(r, v)
	c := r2.Dot(r, r)

	if math.Abs(a) < geom.Epsilon {
		// Equal speeds: bt + c = 0.
		if math.Abs(b) < geom.Epsilon {
			return NoIntercept()
		}
		t := -c / b
		if t > 0 {
			return InterceptAt(t)
		}
		return NoIntercept()
	}

	disc := b*b - 4*a*c
	if disc < 0 {
		return NoIntercept()
	}
	sq := math.Sqrt(disc)
	t1 := (-b - sq) / (2 * a)
	t2 := (-b + sq) / (2 * a)
	if t1 > t2 {
		t1, t2 = t2, t1
	}
	switch {
	case t1 > 0:
		return InterceptAt(t1)
	case t2 > 0:
		return InterceptAt(t2)
	default:
		return NoIntercept()
	}
}
