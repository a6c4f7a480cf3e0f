package automation

import (
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/AntonZelenin/planet-gravity/internal/config"
	"github.com/AntonZelenin/planet-gravity/internal/metrics"
	"github.com/AntonZelenin/planet-gravity/internal/physics"
	"github.com/AntonZelenin/planet-gravity/internal/sim"
)

const (
	ParamGravity     = "gravity"
	ParamMinDistance = "min_distance"
	ParamDt          = "dt"
)

var SweepParams = []string{ParamGravity, ParamMinDistance, ParamDt}

// Sweep reruns a base config once per value of a single parameter. A dt
// sweep keeps the simulated duration of the base config, so the step count
// changes with dt.
type Sweep struct {
	Param  string
	Values []float64
	// Workers bounds concurrent runs; zero means one per value.
	Workers int
}

type SweepResult struct {
	Value           float64
	StepsTaken      int
	EnergyDrift     float64
	MomentumDrift   float64
	ClosestApproach float64
	Stability       float64
	Diverged        bool
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}

func (sw Sweep) apply(base *config.Config, v float64) (*config.Config, error) {
	cfg := base.Clone()
	switch sw.Param {
	case ParamGravity:
		cfg.Gravity = v
	case ParamMinDistance:
		cfg.MinDistance = v
	case ParamDt:
		duration := base.Dt * float64(base.Steps)
		cfg.Dt = v
		if v > 0 {
			cfg.Steps = max(1, int(math.Round(duration/v)))
		}
	default:
		return nil, fmt.Errorf("unknown sweep parameter %q (want one of %v)", sw.Param, SweepParams)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s=%g: %w", sw.Param, v, err)
	}
	return cfg, nil
}

// RunSweep runs every value concurrently and returns results in value order.
func RunSweep(ctx context.Context, base *config.Config, sw Sweep) ([]SweepResult, error) {
	if len(sw.Values) == 0 {
		return nil, fmt.Errorf("sweep over %s has no values", sw.Param)
	}

	cases := make([]sim.Case, len(sw.Values))
	params := make([]physics.Params, len(sw.Values))
	for i, v := range sw.Values {
		cfg, err := sw.apply(base, v)
		if err != nil {
			return nil, err
		}
		params[i] = cfg.Params()
		cases[i] = sim.Case{
			Name:    fmt.Sprintf("%s=%g", sw.Param, v),
			Stepper: physics.NewStepper(params[i]),
			Config:  cfg.SimConfig(),
		}
	}

	e := sim.NewEnsemble(cases, func(i int) []sim.Metric { return metrics.Default(params[i]) })
	e.SetLimit(sw.Workers)
	runs, err := e.Run(ctx, base.World())
	if err != nil {
		return nil, err
	}

	out := make([]SweepResult, len(runs))
	for i, r := range runs {
		out[i] = SweepResult{
			Value:           sw.Values[i],
			StepsTaken:      r.StepsTaken,
			EnergyDrift:     r.Metrics["energy_drift"],
			MomentumDrift:   r.Metrics["momentum_drift"],
			ClosestApproach: r.Metrics["closest_approach"],
			Stability:       r.Metrics["stability"],
			Diverged:        len(r.Errors) > 0,
		}
	}
	return out, nil
}

// Best returns the result with the smallest energy drift among runs that did
// not diverge.
func Best(results []SweepResult) (SweepResult, bool) {
	ok := slices.DeleteFunc(slices.Clone(results), func(r SweepResult) bool { return r.Diverged })
	if len(ok) == 0 {
		return SweepResult{}, false
	}
	return slices.MinFunc(ok, func(a, b SweepResult) int {
		switch {
		case a.EnergyDrift < b.EnergyDrift:
			return -1
		case a.EnergyDrift > b.EnergyDrift:
			return 1
		}
		return 0
	}), true
}
