package sim

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/banshee-data/intercept/internal/guidance"
	"github.com/banshee-data/intercept/internal/monitoring"
)

func TestMain(m *testing.M) {
	monitoring.SetLogger(nil)
	m.Run()
}

// referenceParams is the fixed encounter used by the scenario tests: target
// at (0,20) moving (2,0), interceptor at the origin at rest, 2.5 m/tick.
func referenceParams() Params {
	p := DefaultParams()
	p.EvasionEnabled = false
	return p
}

func pursuitParams() Params {
	p := referenceParams()
	p.Guidance = guidance.Params{Mode: guidance.ModePure}
	return p
}

func TestRun_PurePursuitTailChase(t *testing.T) {
	res, err := Run(pursuitParams())
	require.NoError(t, err)

	require.Equal(t, StateCollided, res.State)
	require.NotNil(t, res.Collision)
	assert.Equal(t, 22, res.Collision.Tick)
	assert.Less(t, res.Collision.AngleDeg, 5.0)
	assert.Equal(t, VerdictTailChase, ClassifyApproach(res.Collision.AngleDeg, 5))
	assert.Less(t, res.Collision.Distance, 1.0)
	assert.Equal(t, r2.Vec{X: 44, Y: 20}, res.Collision.Point)
	assert.Zero(t, res.Corrections)
}

func TestRun_LeadPursuitQualifies(t *testing.T) {
	pure, err := Run(pursuitParams())
	require.NoError(t, err)

	res, err := Run(referenceParams())
	require.NoError(t, err)

	require.Equal(t, StateCollided, res.State)
	require.NotNil(t, res.Collision)
	assert.Greater(t, res.Collision.AngleDeg, 5.0)
	assert.InDelta(t, 30.841361208967, res.Collision.AngleDeg, 1e-6)
	assert.Equal(t, VerdictQualified, ClassifyApproach(res.Collision.AngleDeg, 5))
	assert.Equal(t, 14, res.Collision.Tick)
	assert.LessOrEqual(t, res.Collision.Tick, pure.Collision.Tick)
	assert.Equal(t, r2.Vec{X: 28, Y: 20}, res.Collision.Point)
	assert.InDelta(t, 0.843916712126, res.Collision.Distance, 1e-9)
	// Only the first tick, flown from rest, lacks an intercept solution.
	assert.Equal(t, 1, res.Fallbacks)
	assert.Zero(t, res.Corrections)
}

func TestRun_LeadFromRestStartsWithPurePursuit(t *testing.T) {
	s, err := New(referenceParams())
	require.NoError(t, err)
	require.Zero(t, s.Interceptor().Speed())

	s.Step()
	assert.Equal(t, r2.Vec{X: 0, Y: 2.5}, s.Interceptor().Position,
		"at rest the first heading points at the target's current position")
	assert.Equal(t, r2.Vec{X: 0, Y: 2.5}, s.Interceptor().Velocity)
	assert.Equal(t, 1, s.Result().Fallbacks)

	s.Step()
	assert.Equal(t, 1, s.Result().Fallbacks, "moving at cruise speed the intercept resolves")
	assert.InDelta(t, 2.5, s.Interceptor().Speed(), 1e-12)
}

func TestRun_LeadAlreadyMovingSolvesFromFirstTick(t *testing.T) {
	p := referenceParams()
	p.InterceptorVelocity = r2.Vec{X: 0, Y: p.InterceptorSpeed}

	res, err := Run(p)
	require.NoError(t, err)
	require.NotNil(t, res.Collision)
	assert.Zero(t, res.Fallbacks)
	assert.Equal(t, 13, res.Collision.Tick)
	assert.Equal(t, r2.Vec{X: 26, Y: 20}, res.Collision.Point)
	assert.InDelta(t, 36.869897645844, res.Collision.AngleDeg, 1e-6)
}

func TestRun_PureCorrectionHoldsVelocity(t *testing.T) {
	p := referenceParams()
	p.EvasionEnabled = true
	p.Evasion.Weight = 1
	p.Evasion.ReferenceAltitude = p.TargetPosition.Y
	p.Evasion.Gain = 0.3
	p.CollisionThreshold = -1
	p.MaxTicks = 200

	s, err := New(p)
	require.NoError(t, err)
	for !s.State().Terminal() {
		s.Step()
		require.Equal(t, p.TargetVelocity, s.Target().Velocity, "tick %d", s.Tick())
	}
	for _, pos := range s.Result().Target {
		require.Equal(t, p.TargetPosition.Y, pos.Y)
	}
}

func TestNew_LogsEvaderParams(t *testing.T) {
	orig := monitoring.Debugf
	t.Cleanup(func() { monitoring.SetDebugLogger(orig) })

	var lines []string
	monitoring.SetDebugLogger(func(format string, v ...interface{}) {
		lines = append(lines, fmt.Sprintf(format, v...))
	})

	p := DefaultParams()
	p.Evasion.MaxDeviationDeg = 0
	_, err := New(p)
	require.NoError(t, err)
	require.NotEmpty(t, lines)
	assert.Equal(t, "evader: weight 0.60, gain 0.100, reference altitude 20.00, max deviation 0.0°", lines[0])
}

func TestRun_NegativeThresholdExhausts(t *testing.T) {
	p := referenceParams()
	p.CollisionThreshold = -1
	p.MaxTicks = 1000

	res, err := Run(p)
	require.NoError(t, err)
	assert.Equal(t, StateExhausted, res.State)
	assert.False(t, res.Collided())
	assert.Nil(t, res.Collision)
	assert.Equal(t, 1000, res.Ticks)
	assert.Len(t, res.Target, 1001)
	assert.Len(t, res.Interceptor, 1001)
}

func TestRun_Deterministic(t *testing.T) {
	p := DefaultParams()
	p.Seed = 20240601
	p.RandomStart = &Rect{Min: r2.Vec{X: -50, Y: -10}, Max: r2.Vec{X: 50, Y: 0}}

	a, err := Run(p)
	require.NoError(t, err)
	b, err := Run(p)
	require.NoError(t, err)

	if diff := cmp.Diff(a, b, cmpopts.IgnoreFields(Result{}, "RunID")); diff != "" {
		t.Errorf("identical parameters produced different runs (-first +second):\n%s", diff)
	}
	assert.NotEqual(t, a.RunID, b.RunID)
}

func TestRun_SeedChangesEvasion(t *testing.T) {
	p := DefaultParams()
	p.CollisionThreshold = -1
	p.MaxTicks = 50

	p.Seed = 1
	a, err := Run(p)
	require.NoError(t, err)
	p.Seed = 2
	b, err := Run(p)
	require.NoError(t, err)

	assert.NotEqual(t, a.Target.Last(), b.Target.Last())
}

func TestNew_RandomStartInsideRect(t *testing.T) {
	rect := Rect{Min: r2.Vec{X: -30, Y: -5}, Max: r2.Vec{X: 30, Y: 0}}
	for seed := int64(0); seed < 200; seed++ {
		p := referenceParams()
		p.Seed = seed
		p.RandomStart = &rect
		s, err := New(p)
		require.NoError(t, err)
		start := s.Interceptor().Position
		require.True(t, rect.Contains(start), "seed %d start %v", seed, start)
		assert.Equal(t, start, s.Result().Interceptor[0])
		assert.Equal(t, start, s.Result().InterceptorStart)
	}
}

func TestSimulation_SeedsTrajectories(t *testing.T) {
	s, err := New(referenceParams())
	require.NoError(t, err)
	res := s.Result()
	assert.Equal(t, Trajectory{{X: 0, Y: 20}}, res.Target)
	assert.Equal(t, Trajectory{{X: 0, Y: 0}}, res.Interceptor)
	assert.Equal(t, StateRunning, s.State())
}

func TestSimulation_StepOrder(t *testing.T) {
	s, err := New(referenceParams())
	require.NoError(t, err)

	s.Step()
	assert.Equal(t, 1, s.Tick())
	// Guidance set the velocity before integration, so the first move already
	// follows the commanded heading.
	assert.Equal(t, r2.Vec{X: 0, Y: 2.5}, s.Interceptor().Position)
	assert.Equal(t, r2.Vec{X: 2, Y: 20}, s.Target().Position)
	assert.Len(t, s.Result().Target, 2)

	s.Step()
	assert.Equal(t, 2, s.Tick())
	assert.InDelta(t, 2.1464750872395806, s.Interceptor().Position.X, 1e-9)
	assert.InDelta(t, 3.7816570133463303, s.Interceptor().Position.Y, 1e-9)
	assert.Equal(t, r2.Vec{X: 4, Y: 20}, s.Target().Position)
	assert.Len(t, s.Result().Interceptor, 3)
}

func TestSimulation_CollisionUsesPreIntegrationState(t *testing.T) {
	p := referenceParams()
	p.InterceptorPosition = r2.Vec{X: 0, Y: 19.5}
	p.InterceptorVelocity = r2.Vec{X: 0, Y: 3}

	s, err := New(p)
	require.NoError(t, err)
	assert.Equal(t, StateCollided, s.Step())

	res := s.Result()
	require.NotNil(t, res.Collision)
	assert.Equal(t, 0, res.Collision.Tick)
	assert.Equal(t, r2.Vec{X: 0, Y: 20}, res.Collision.Point)
	assert.InDelta(t, 90, res.Collision.AngleDeg, 1e-12)
	assert.Len(t, res.Target, 1, "no mutation after collision")
}

func TestSimulation_StepAfterTerminalIsNoop(t *testing.T) {
	p := referenceParams()
	p.CollisionThreshold = -1
	p.MaxTicks = 3
	s, err := New(p)
	require.NoError(t, err)
	res := s.Run()
	require.Equal(t, StateExhausted, res.State)

	before := len(res.Target)
	assert.Equal(t, StateExhausted, s.Step())
	assert.Len(t, s.Result().Target, before)
	assert.Equal(t, 3, s.Tick())
}

func TestClassifyApproach(t *testing.T) {
	assert.Equal(t, VerdictQualified, ClassifyApproach(5.01, 5))
	assert.Equal(t, VerdictTailChase, ClassifyApproach(5, 5))
	assert.Equal(t, VerdictTailChase, ClassifyApproach(0, 5))
}

func TestParamsValidate(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*Params)
	}{
		{"zero_ticks", func(p *Params) { p.MaxTicks = 0 }},
		{"negative_speed", func(p *Params) { p.InterceptorSpeed = -1 }},
		{"bad_weight", func(p *Params) { p.Evasion.Weight = 2 }},
		{"bad_mode", func(p *Params) { p.Guidance.Mode = "loft" }},
		{"inverted_rect", func(p *Params) {
			p.RandomStart = &Rect{Min: r2.Vec{X: 1, Y: 1}, Max: r2.Vec{X: 0, Y: 0}}
		}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := DefaultParams()
			tc.mutate(&p)
			assert.Error(t, p.Validate())
			_, err := Run(p)
			assert.Error(t, err)
		})
	}
	assert.NoError(t, DefaultParams().Validate())
}

func TestValidate_IgnoresEvasionWhenDisabled(t *testing.T) {
	p := DefaultParams()
	p.EvasionEnabled = false
	p.Evasion.Weight = 7
	assert.NoError(t, p.Validate())
}

func TestRun_EmptyModeDefaultsToLead(t *testing.T) {
	p := referenceParams()
	p.Guidance.Mode = ""
	res, err := Run(p)
	require.NoError(t, err)
	require.NotNil(t, res.Collision)
	assert.Equal(t, 14, res.Collision.Tick)
}

func TestTrajectoryAccessors(t *testing.T) {
	tr := Trajectory{{X: 1, Y: 2}, {X: 3, Y: 4}}
	assert.Equal(t, []float64{1, 3}, tr.Xs())
	assert.Equal(t, []float64{2, 4}, tr.Ys())
	assert.Equal(t, r2.Vec{X: 3, Y: 4}, tr.Last())
	assert.Equal(t, r2.Vec{}, Trajectory(nil).Last())
}
