// Package testutil provides shared test helpers for vector-valued results.
package testutil

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t testing.TB, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// VecInDelta reports whether every component of got is within delta of want.
func VecInDelta(want, got r2.Vec, delta float64) bool {
	return math.Abs(want.X-got.X) <= delta && math.Abs(want.Y-got.Y) <= delta
}

// AssertVecInDelta fails the test when got differs from want by more than
// delta in either component.
func AssertVecInDelta(t testing.TB, want, got r2.Vec, delta float64) {
	t.Helper()
	if !VecInDelta(want, got, delta) {
		t.Errorf("vector = (%g, %g), want (%g, %g) within %g", got.X, got.Y, want.X, want.Y, delta)
	}
}

// AssertUnit fails the test unless v has unit length within delta.
func AssertUnit(t testing.TB, v r2.Vec, delta float64) {
	t.Helper()
	if n := r2.Norm(v); math.Abs(n-1) > delta {
		t.Errorf("|(%g, %g)| = %g, want 1", v.X, v.Y, n)
	}
}
