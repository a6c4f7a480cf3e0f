package automation

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/AntonZelenin/planet-gravity/internal/config"
	"github.com/AntonZelenin/planet-gravity/internal/metrics"
	"github.com/AntonZelenin/planet-gravity/internal/physics"
	"github.com/AntonZelenin/planet-gravity/internal/sim"
	"github.com/AntonZelenin/planet-gravity/internal/world"
)

const DefaultEscapeRadius = 5000.0

// MonteCarlo perturbs the base world's in-plane positions and velocities by
// uniform noise and reruns it NumTrials times.
type MonteCarlo struct {
	NumTrials            int
	PositionPerturbation float64
	VelocityPerturbation float64
	// EscapeRadius bounds a stable trial; zero means DefaultEscapeRadius.
	EscapeRadius float64
	// Seed zero seeds from the clock.
	Seed    int64
	Workers int
}

type MonteCarloResult struct {
	TrialID         int
	Initial         []world.Spec
	Final           []world.Spec
	ClosestApproach float64
	EnergyDrift     float64
	Stable          bool
}

func (mc MonteCarlo) perturb(rng *rand.Rand, specs []world.Spec) []world.Spec {
	noise := func(amp float64) r3.Vec {
		return r3.Vec{X: (rng.Float64() - 0.5) * 2 * amp, Y: (rng.Float64() - 0.5) * 2 * amp}
	}
	out := make([]world.Spec, len(specs))
	for i, s := range specs {
		out[i] = world.Spec{
			Mass:     s.Mass,
			Position: r3.Add(s.Position, noise(mc.PositionPerturbation)),
			Velocity: r3.Add(s.Velocity, noise(mc.VelocityPerturbation)),
		}
	}
	return out
}

// RunMonteCarlo executes the trials concurrently. The perturbations are drawn
// up front from one generator, so a fixed seed reproduces every trial.
func RunMonteCarlo(ctx context.Context, base *config.Config, mc MonteCarlo) ([]MonteCarloResult, error) {
	if mc.NumTrials <= 0 {
		return nil, fmt.Errorf("monte carlo needs at least one trial, got %d", mc.NumTrials)
	}
	radius := mc.EscapeRadius
	if radius <= 0 {
		radius = DefaultEscapeRadius
	}
	seed := mc.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	params := base.Params()
	stepper := physics.NewStepper(params)
	specs := base.Specs()

	initial := make([][]world.Spec, mc.NumTrials)
	cases := make([]sim.Case, mc.NumTrials)
	for i := range cases {
		initial[i] = mc.perturb(rng, specs)
		cases[i] = sim.Case{
			Name:    fmt.Sprintf("trial-%d", i),
			Stepper: stepper,
			Config:  base.SimConfig(),
			World:   world.New(initial[i]...),
		}
	}

	e := sim.NewEnsemble(cases, func(int) []sim.Metric {
		return []sim.Metric{
			metrics.NewStability(radius),
			metrics.NewEnergyDrift(params),
			metrics.NewClosestApproach(),
		}
	})
	e.SetLimit(mc.Workers)
	runs, err := e.Run(ctx, base.World())
	if err != nil {
		return nil, err
	}

	out := make([]MonteCarloResult, len(runs))
	for i, r := range runs {
		out[i] = MonteCarloResult{
			TrialID:         i,
			Initial:         initial[i],
			Final:           r.Final.Specs(),
			ClosestApproach: r.Metrics["closest_approach"],
			EnergyDrift:     r.Metrics["energy_drift"],
			Stable:          len(r.Errors) == 0 && r.Metrics["stability"] == 1,
		}
	}
	return out, nil
}

func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
