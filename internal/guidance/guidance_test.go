package guidance

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/banshee-data/intercept/internal/geom"
	"github.com/banshee-data/intercept/internal/testutil"
)

func TestParseMode(t *testing.T) {
	m, err := ParseMode("pure")
	require.NoError(t, err)
	assert.Equal(t, ModePure, m)

	m, err = ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeLead, m)

	_, err = ParseMode("proportional")
	assert.Error(t, err)
}

func TestAimPoint(t *testing.T) {
	pos := r2.Vec{X: 1, Y: 2}
	vel := r2.Vec{X: 2, Y: -1}
	assert.Equal(t, pos, AimPoint(pos, vel, NoIntercept()))
	assert.Equal(t, r2.Vec{X: 7, Y: -1}, AimPoint(pos, vel, InterceptAt(3)))
}

func TestAimPoint_StationaryTargetIsCurrentPosition(t *testing.T) {
	target := r2.Vec{X: 12, Y: -5}
	ic := SolveIntercept(r2.Sub(target, r2.Vec{}), r2.Vec{}, 2.5)
	assert.Equal(t, target, AimPoint(target, r2.Vec{}, ic))

	cmd := Guide(r2.Vec{}, 2.5, target, r2.Vec{}, DefaultParams())
	assert.Equal(t, target, cmd.Aim)
	assert.False(t, cmd.Corrected)
	testutil.AssertVecInDelta(t, r2.Vec{X: 12.0 / 13.0, Y: -5.0 / 13.0}, cmd.Heading, 1e-12)
}

func TestDesiredHeading(t *testing.T) {
	h := DesiredHeading(r2.Vec{X: 1, Y: 1}, r2.Vec{X: 4, Y: 5})
	testutil.AssertVecInDelta(t, r2.Vec{X: 0.6, Y: 0.8}, h, 1e-12)

	assert.Equal(t, r2.Vec{}, DesiredHeading(r2.Vec{X: 3, Y: 3}, r2.Vec{X: 3, Y: 3}))
}

func TestEnforceApproachAngle(t *testing.T) {
	vel := r2.Vec{X: 2, Y: 0}

	t.Run("wide_heading_untouched", func(t *testing.T) {
		h := r2.Vec{X: 0.8, Y: 0.6}
		got, corrected := EnforceApproachAngle(h, vel, 5, 0.5)
		assert.False(t, corrected)
		assert.Equal(t, h, got)
	})

	t.Run("parallel_turns_clockwise", func(t *testing.T) {
		got, corrected := EnforceApproachAngle(r2.Vec{X: 1, Y: 0}, vel, 5, 0.5)
		assert.True(t, corrected)
		assert.InDelta(t, 5.5, geom.AngleBetween(got, vel), 1e-9)
		assert.Less(t, got.Y, 0.0)
		testutil.AssertVecInDelta(t, geom.Rotate(r2.Vec{X: 1, Y: 0}, -5.5), got, 1e-12)
	})

	t.Run("parallel_on_other_axis_turns_clockwise", func(t *testing.T) {
		up := r2.Vec{X: 0, Y: 3}
		got, corrected := EnforceApproachAngle(r2.Vec{X: 0, Y: 1}, up, 5, 0.5)
		assert.True(t, corrected)
		assert.Greater(t, got.X, 0.0, "clockwise from +y points toward +x")
		assert.InDelta(t, 5.5, geom.AngleBetween(got, up), 1e-9)
	})

	t.Run("above_track_turns_further_up", func(t *testing.T) {
		h := geom.Rotate(r2.Vec{X: 1, Y: 0}, 2)
		got, corrected := EnforceApproachAngle(h, vel, 5, 0.5)
		assert.True(t, corrected)
		assert.InDelta(t, 7.5, geom.AngleBetween(got, vel), 1e-9)
		assert.Greater(t, got.Y, 0.0)
	})

	t.Run("below_track_turns_further_down", func(t *testing.T) {
		h := geom.Rotate(r2.Vec{X: 1, Y: 0}, -3)
		got, corrected := EnforceApproachAngle(h, vel, 5, 0.5)
		assert.True(t, corrected)
		assert.InDelta(t, 8.5, geom.AngleBetween(got, vel), 1e-9)
		assert.Less(t, got.Y, 0.0)
	})

	t.Run("exact_threshold_is_corrected", func(t *testing.T) {
		h := r2.Vec{X: 1, Y: 0}
		v := geom.Rotate(r2.Vec{X: 1, Y: 0}, -4)
		_, corrected := EnforceApproachAngle(h, v, geom.AngleBetween(h, v), 0.5)
		assert.True(t, corrected)
	})

	t.Run("result_is_unit", func(t *testing.T) {
		got, _ := EnforceApproachAngle(r2.Vec{X: 1, Y: 0}, vel, 5, 0.5)
		assert.InDelta(t, 1.0, r2.Norm(got), 1e-12)
	})
}

func TestGuide_PureMode(t *testing.T) {
	p := Params{Mode: ModePure}
	cmd := Guide(r2.Vec{}, 2.5, r2.Vec{X: 0, Y: 20}, r2.Vec{X: 2, Y: 0}, p)
	assert.False(t, cmd.Intercept.Found)
	assert.Equal(t, r2.Vec{X: 0, Y: 20}, cmd.Aim)
	assert.Equal(t, r2.Vec{X: 0, Y: 1}, cmd.Heading)
}

func TestGuide_LeadMode(t *testing.T) {
	cmd := Guide(r2.Vec{}, 2.5, r2.Vec{X: 0, Y: 20}, r2.Vec{X: 2, Y: 0}, DefaultParams())
	require.True(t, cmd.Intercept.Found)
	testutil.AssertVecInDelta(t, r2.Vec{X: 80.0 / 3.0, Y: 20}, cmd.Aim, 1e-9)
	testutil.AssertVecInDelta(t, r2.Vec{X: 0.8, Y: 0.6}, cmd.Heading, 1e-12)
	testutil.AssertUnit(t, cmd.Heading, 1e-12)
	assert.False(t, cmd.Corrected)
}

func TestGuide_AtRestFallsBackToPurePursuit(t *testing.T) {
	cmd := Guide(r2.Vec{}, 0, r2.Vec{X: 0, Y: 20}, r2.Vec{X: 2, Y: 0}, DefaultParams())
	assert.False(t, cmd.Intercept.Found)
	assert.Equal(t, r2.Vec{X: 0, Y: 20}, cmd.Aim)
	assert.Equal(t, r2.Vec{X: 0, Y: 1}, cmd.Heading)
	assert.False(t, cmd.Corrected)
}

func TestGuide_FallsBackToPurePursuit(t *testing.T) {
	// A faster target running away leaves no intercept.
	cmd := Guide(r2.Vec{}, 1, r2.Vec{X: 0, Y: 10}, r2.Vec{X: 10, Y: 0}, DefaultParams())
	assert.False(t, cmd.Intercept.Found)
	assert.Equal(t, r2.Vec{X: 0, Y: 10}, cmd.Aim)
}

func TestGuide_OnAimPointHoldsZero(t *testing.T) {
	cmd := Guide(r2.Vec{X: 5, Y: 5}, 2, r2.Vec{X: 5, Y: 5}, r2.Vec{}, DefaultParams())
	assert.Equal(t, r2.Vec{}, cmd.Heading)
}

func TestGuide_NeverParallelToTarget(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	p := DefaultParams()
	for i := 0; i < 5000; i++ {
		from := r2.Vec{X: rng.Float64()*200 - 100, Y: rng.Float64()*200 - 100}
		target := r2.Vec{X: rng.Float64()*200 - 100, Y: rng.Float64()*200 - 100}
		vel := r2.Vec{X: rng.Float64()*6 - 3, Y: rng.Float64()*6 - 3}
		speed := rng.Float64() * 5
		if r2.Norm(vel) < geom.Epsilon || geom.Distance(from, target) < 1e-6 {
			continue
		}
		cmd := Guide(from, speed, target, vel, p)
		if cmd.Heading == (r2.Vec{}) {
			continue
		}
		require.GreaterOrEqual(t, geom.AngleBetween(cmd.Heading, vel), p.MinApproachDeg-1e-9,
			"from=%v target=%v vel=%v speed=%v", from, target, vel, speed)
	}
}

func TestGuide_TailChaseIsCorrected(t *testing.T) {
	// Directly behind a target moving away: the aim lies on the target's track.
	cmd := Guide(r2.Vec{X: -10, Y: 0}, 3, r2.Vec{}, r2.Vec{X: 1, Y: 0}, DefaultParams())
	assert.True(t, cmd.Corrected)
	assert.InDelta(t, 5.5, geom.AngleBetween(cmd.Heading, r2.Vec{X: 1, Y: 0}), 1e-9)
}

func TestParamsValidate(t *testing.T) {
	assert.NoError(t, DefaultParams().Validate())
	assert.Error(t, Params{Mode: "bogus"}.Validate())
	assert.Error(t, Params{Mode: ModeLead, MinApproachDeg: -1}.Validate())
	assert.Error(t, Params{Mode: ModeLead, AngleBufferDeg: -1}.Validate())
}
