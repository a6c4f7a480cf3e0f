package main

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/AntonZelenin/planet-gravity/internal/automation"
	"github.com/AntonZelenin/planet-gravity/internal/physics"
	"github.com/AntonZelenin/planet-gravity/internal/storage"
	"github.com/AntonZelenin/planet-gravity/internal/world"
)

var (
	compareDts []float64

	sweepParam  string
	sweepFrom   float64
	sweepTo     float64
	sweepCount  int
	sweepValues []float64
	workers     int

	trials   int
	posNoise float64
	velNoise float64
	radius   float64
	seed     int64

	noSave bool

	benchBodies int
	benchSteps  int
	benchSeed   int64
)

func batchCommands() []*cobra.Command {
	compareCmd := &cobra.Command{
		Use:   "compare",
		Short: "compare timesteps on the same scene over the same duration",
		Args:  cobra.NoArgs,
		RunE:  compareTimesteps,
	}
	addSceneFlags(compareCmd)
	compareCmd.Flags().Float64SliceVar(&compareDts, "dts", []float64{1.0 / 30, 1.0 / 60, 1.0 / 120, 1.0 / 240}, "timesteps to compare")
	compareCmd.Flags().IntVar(&workers, "workers", 0, "concurrent runs; 0 runs all at once")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "rerun a scene across values of one parameter",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addSceneFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", automation.ParamGravity, fmt.Sprintf("parameter to sweep %v", automation.SweepParams))
	sweepCmd.Flags().Float64Var(&sweepFrom, "from", 20000, "first value")
	sweepCmd.Flags().Float64Var(&sweepTo, "to", 60000, "last value")
	sweepCmd.Flags().IntVar(&sweepCount, "count", 5, "number of evenly spaced values")
	sweepCmd.Flags().Float64SliceVar(&sweepValues, "values", nil, "explicit values; overrides --from/--to/--count")
	sweepCmd.Flags().IntVar(&workers, "workers", 0, "concurrent runs; 0 runs all at once")

	mcCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "perturb a scene and count how many trials stay bound",
		Args:  cobra.NoArgs,
		RunE:  runMonteCarlo,
	}
	addSceneFlags(mcCmd)
	mcCmd.Flags().IntVar(&trials, "trials", 20, "number of trials")
	mcCmd.Flags().Float64Var(&posNoise, "pos-noise", 5, "position perturbation amplitude")
	mcCmd.Flags().Float64Var(&velNoise, "vel-noise", 2, "velocity perturbation amplitude")
	mcCmd.Flags().Float64Var(&radius, "radius", automation.DefaultEscapeRadius, "escape radius")
	mcCmd.Flags().Int64Var(&seed, "seed", 0, "random seed; 0 seeds from the clock")
	mcCmd.Flags().IntVar(&workers, "workers", 0, "concurrent runs; 0 runs all at once")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted sequence of scenes",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	scenarioCmd.Flags().BoolVar(&noSave, "no-save", false, "ignore save_as entries")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "measure tick throughput for n bodies",
		Args:  cobra.NoArgs,
		RunE:  benchStep,
	}
	benchCmd.Flags().IntVar(&benchBodies, "bodies", 100, "number of bodies")
	benchCmd.Flags().IntVar(&benchSteps, "steps", 1000, "number of ticks")
	benchCmd.Flags().Int64Var(&benchSeed, "seed", 1, "random seed")

	return []*cobra.Command{compareCmd, sweepCmd, mcCmd, scenarioCmd, benchCmd}
}

func compareTimesteps(cmd *cobra.Command, args []string) error {
	cfg, err := loadScene(cmd)
	if err != nil {
		return err
	}

	start := time.Now()
	results, err := automation.RunSweep(cmd.Context(), cfg, automation.Sweep{
		Param:   automation.ParamDt,
		Values:  compareDts,
		Workers: workers,
	})
	if err != nil {
		return err
	}
	slog.Debug("compare finished", "elapsed", time.Since(start))

	fmt.Printf("comparing timesteps for %s (duration=%.2fs)\n\n", cfg.Name, cfg.Dt*float64(cfg.Steps))
	fmt.Printf("%-12s  %-8s  %-12s  %-12s  %-12s\n", "dt", "steps", "energy_drift", "mom_drift", "closest")
	fmt.Println(strings.Repeat("-", 64))
	for _, r := range results {
		fmt.Printf("%-12.6f  %-8d  %12.3e  %12.3e  %12.3f%s\n",
			r.Value, r.StepsTaken, r.EnergyDrift, r.MomentumDrift, r.ClosestApproach, divergedMark(r.Diverged))
	}
	return nil
}

func divergedMark(d bool) string {
	if d {
		return "  diverged"
	}
	return ""
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadScene(cmd)
	if err != nil {
		return err
	}

	values := sweepValues
	if len(values) == 0 {
		values = automation.Linspace(sweepFrom, sweepTo, sweepCount)
	}

	results, err := automation.RunSweep(cmd.Context(), cfg, automation.Sweep{
		Param:   sweepParam,
		Values:  values,
		Workers: workers,
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tSTEPS\tENERGY_DRIFT\tMOM_DRIFT\tCLOSEST\tSTABILITY\n", strings.ToUpper(sweepParam))
	for _, r := range results {
		fmt.Fprintf(w, "%g\t%d\t%.3e\t%.3e\t%.3f\t%.3f%s\n",
			r.Value, r.StepsTaken, r.EnergyDrift, r.MomentumDrift, r.ClosestApproach, r.Stability, divergedMark(r.Diverged))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if best, ok := automation.Best(results); ok {
		fmt.Printf("\nlowest energy drift: %s=%g (%.3e)\n", sweepParam, best.Value, best.EnergyDrift)
	}
	return nil
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := loadScene(cmd)
	if err != nil {
		return err
	}

	results, err := automation.RunMonteCarlo(cmd.Context(), cfg, automation.MonteCarlo{
		NumTrials:            trials,
		PositionPerturbation: posNoise,
		VelocityPerturbation: velNoise,
		EscapeRadius:         radius,
		Seed:                 seed,
		Workers:              workers,
	})
	if err != nil {
		return err
	}

	closest := math.Inf(1)
	for _, r := range results {
		slog.Debug("trial", "id", r.TrialID, "stable", r.Stable, "closest", r.ClosestApproach, "energy_drift", r.EnergyDrift)
		closest = min(closest, r.ClosestApproach)
	}

	stable, unstable := automation.MonteCarloStats(results)
	fmt.Printf("monte carlo: %s, %d trials\n", cfg.Name, len(results))
	fmt.Printf("stable: %d  unstable: %d  (%.1f%%)\n", stable, unstable, 100*float64(stable)/float64(len(results)))
	fmt.Printf("closest approach over all trials: %.3f\n", closest)
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	var saver automation.Saver
	if !noSave {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		saver = st
	}

	results, err := automation.RunScenario(cmd.Context(), sc, saver, slog.Default())
	for i, r := range results {
		id := r.RunID
		if id == "" {
			id = "-"
		}
		fmt.Printf("%2d  %-16s  steps=%-6d  drift=%.3e  run=%s\n",
			i+1, r.Name, r.Result.StepsTaken, r.Result.EnergyDrift, id)
	}
	return err
}

// benchWorld scatters n bodies on a disc with roughly circular velocities
// about the origin.
func benchWorld(n int, rng *rand.Rand) *world.World {
	specs := make([]world.Spec, n)
	for i := range specs {
		angle := rng.Float64() * 2 * math.Pi
		r := 100 + rng.Float64()*900
		pos := r3.Vec{X: r * math.Cos(angle), Y: r * math.Sin(angle)}
		v := math.Sqrt(physics.DefaultG * float64(n) / r / 10)
		specs[i] = world.Spec{
			Mass:     1 + rng.Float64()*4,
			Position: pos,
			Velocity: r3.Vec{X: v * math.Sin(angle), Y: -v * math.Cos(angle)},
		}
	}
	return world.New(specs...)
}

func benchStep(cmd *cobra.Command, args []string) error {
	if benchBodies < 2 || benchSteps < 1 {
		return fmt.Errorf("need at least 2 bodies and 1 step")
	}

	w := benchWorld(benchBodies, rand.New(rand.NewSource(benchSeed)))
	stepper := physics.NewStepper(physics.DefaultParams())

	start := time.Now()
	for range benchSteps {
		stepper.Step(w, 1.0/60)
	}
	elapsed := time.Since(start)

	pairs := benchBodies * (benchBodies - 1) / 2
	perStep := elapsed / time.Duration(benchSteps)
	fmt.Printf("bodies: %d  pairs: %d  steps: %d\n", benchBodies, pairs, benchSteps)
	fmt.Printf("total: %v  per step: %v  steps/s: %.0f\n", elapsed, perStep, float64(benchSteps)/elapsed.Seconds())
	if !physics.IsFinite(w) {
		slog.Warn("bench world diverged; timings still hold")
	}
	return nil
}
