package sweep

import (
	"fmt"

	"github.com/banshee-data/intercept/internal/config"
	"github.com/banshee-data/intercept/internal/monitoring"
	"github.com/banshee-data/intercept/internal/sim"
)

// Sample is the outcome of a single run within a sweep.
type Sample struct {
	Weight  float64
	Seed    int64
	Result  *sim.Result
	Verdict sim.Verdict // empty when the run did not collide
}

// Summary aggregates every sample taken at one blend weight.
type Summary struct {
	Weight        float64
	Runs          int
	Hits          int
	Qualified     int
	HitRate       float64
	QualifiedRate float64
	TicksMean     float64 // over collided runs only
	TicksStddev   float64
	AngleMean     float64 // over collided runs only
	AngleStddev   float64
}

// Runner executes the cartesian product of weights and seeds on top of a base
// configuration. Runs are sequential.
type Runner struct {
	Base    *config.Config
	Weights []float64
	Seeds   []int64

	// OnSample, when set, is called after every run in execution order.
	OnSample func(Sample)
}

// Run executes the sweep and returns one Summary per weight in input order.
func (r *Runner) Run() ([]Summary, error) {
	if len(r.Weights) == 0 {
		return nil, fmt.Errorf("sweep needs at least one weight")
	}
	if len(r.Seeds) == 0 {
		return nil, fmt.Errorf("sweep needs at least one seed")
	}
	base := r.Base
	if base == nil {
		base = config.DefaultConfig()
	}
	minDeg := base.GetMinApproachDeg()

	out := make([]Summary, 0, len(r.Weights))
	for _, w := range r.Weights {
		samples := make([]Sample, 0, len(r.Seeds))
		for _, seed := range r.Seeds {
			params := base.ToParams()
			params.Evasion.Weight = w
			params.Seed = seed

			res, err := sim.Run(params)
			if err != nil {
				return nil, fmt.Errorf("weight %g seed %d: %w", w, seed, err)
			}
			s := Sample{Weight: w, Seed: seed, Result: res}
			if res.Collision != nil {
				s.Verdict = sim.ClassifyApproach(res.Collision.AngleDeg, minDeg)
			}
			if r.OnSample != nil {
				r.OnSample(s)
			}
			samples = append(samples, s)
		}
		sum := Summarize(w, samples)
		monitoring.Logf("sweep weight=%g: hits=%d/%d qualified=%d", w, sum.Hits, sum.Runs, sum.Qualified)
		out = append(out, sum)
	}
	return out, nil
}

// Summarize aggregates samples taken at weight.
func Summarize(weight float64, samples []Sample) Summary {
	sum := Summary{Weight: weight, Runs: len(samples)}
	var ticks, angles []float64
	for _, s := range samples {
		c := s.Result.Collision
		if c == nil {
			continue
		}
		sum.Hits++
		if s.Verdict == sim.VerdictQualified {
			sum.Qualified++
		}
		ticks = append(ticks, float64(c.Tick))
		angles = append(angles, c.AngleDeg)
	}
	if sum.Runs > 0 {
		sum.HitRate = float64(sum.Hits) / float64(sum.Runs)
		sum.QualifiedRate = float64(sum.Qualified) / float64(sum.Runs)
	}
	sum.TicksMean, sum.TicksStddev = MeanStddev(ticks)
	sum.AngleMean, sum.AngleStddev = MeanStddev(angles)
	return sum
}
