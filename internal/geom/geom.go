// Package geom holds the planar vector helpers shared by the guidance and
// evasion controllers. All vectors are gonum r2.Vec values; angles crossing
// the package boundary are in degrees.
package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Epsilon is the magnitude below which a vector is treated as zero.
const Epsilon = 1e-9

// Deg2Rad converts degrees to radians.
func Deg2Rad(deg float64) float64 { return deg * math.Pi / 180 }

// Rad2Deg converts radians to degrees.
func Rad2Deg(rad float64) float64 { return rad * 180 / math.Pi }

// Normalize returns v scaled to unit length. Vectors shorter than Epsilon
// normalize to the zero vector.
func Normalize(v r2.Vec) r2.Vec {
	mag := r2.Norm(v)
	if mag < Epsilon {
		return r2.Vec{}
	}
	return r2.Vec{X: v.X / mag, Y: v.Y / mag}
}

// AngleBetween returns the unsigned angle between a and b in degrees, in
// [0, 180]. A zero-length operand yields 0.
func AngleBetween(a, b r2.Vec) float64 {
	magA := r2.Norm(a)
	magB := r2.Norm(b)
	if magA == 0 || magB == 0 {
		return 0
	}
	cos := r2.Dot(a, b) / (magA * magB)
	// Rounding can push parallel vectors just outside acos's domain.
	cos = math.Max(-1, math.Min(1, cos))
	return Rad2Deg(math.Acos(cos))
}

// Rotate turns v counter-clockwise by deg degrees about the origin.
func Rotate(v r2.Vec, deg float64) r2.Vec {
	return r2.Rotate(v, Deg2Rad(deg), r2.Vec{})
}

// Cross returns the z component of a × b. Positive means b lies
// counter-clockwise of a.
func Cross(a, b r2.Vec) float64 {
	return r2.Cross(a, b)
}

// Distance returns the Euclidean distance between two points.
func Distance(a, b r2.Vec) float64 {
	return r2.Norm(r2.Sub(a, b))
}
