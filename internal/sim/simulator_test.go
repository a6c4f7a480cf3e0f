package sim

import (
	"context"
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/AntonZelenin/planet-gravity/internal/physics"
	"github.com/AntonZelenin/planet-gravity/internal/world"
)

// driftStepper moves every particle by its velocity and ignores forces.
type driftStepper struct{}

func (d *driftStepper) Step(w *world.World, dt float64) {
	for i := range w.Particles {
		p := &w.Particles[i]
		p.Position = r3.Add(p.Position, r3.Scale(dt, p.Velocity))
	}
}

// nanStepper poisons the world on the given tick.
type nanStepper struct {
	at    int
	ticks int
}

func (n *nanStepper) Step(w *world.World, dt float64) {
	n.ticks++
	if n.ticks == n.at {
		w.Particles[0].Position.X = math.NaN()
	}
}

type countMetric struct {
	count int
	last  float64
}

func (c *countMetric) Name() string { return "count" }
func (c *countMetric) Observe(w *world.World, t float64) {
	c.count++
	c.last = t
}
func (c *countMetric) Value() float64 { return float64(c.count) }
func (c *countMetric) Reset()         { c.count = 0 }

type stepRecorder struct {
	steps []int
}

func (r *stepRecorder) OnStep(w *world.World, step int, t float64) {
	r.steps = append(r.steps, step)
}

func singleParticle() *world.World {
	return world.New(world.Spec{Mass: 1, Velocity: r3.Vec{X: 1}})
}

func TestSimulatorRun(t *testing.T) {
	s := New(&driftStepper{})
	cfg := Config{Dt: 0.1, Steps: 10, SampleEvery: 1}

	w0 := singleParticle()
	result, err := s.Run(context.Background(), w0, cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(result.Samples) != 11 {
		t.Errorf("expected 11 samples, got %d", len(result.Samples))
	}
	if result.StepsTaken != 10 {
		t.Errorf("expected 10 steps, got %d", result.StepsTaken)
	}

	final := result.Samples[len(result.Samples)-1]
	if math.Abs(final.Time-1.0) > 1e-12 {
		t.Errorf("expected final time 1.0, got %v", final.Time)
	}
	if math.Abs(final.Positions[0].X-1.0) > 1e-9 {
		t.Errorf("expected final x ~1.0, got %v", final.Positions[0].X)
	}

	if w0.Particles[0].Position.X != 0 {
		t.Error("Run mutated the initial world")
	}
	if result.Final.Particles[0].Position != final.Positions[0] {
		t.Error("final world does not match last sample")
	}
}

func TestSimulatorSampleEvery(t *testing.T) {
	s := New(&driftStepper{})
	cfg := Config{Dt: 0.1, Steps: 10, SampleEvery: 4}

	result, err := s.Run(context.Background(), singleParticle(), cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	want := []int{0, 4, 8, 10}
	if len(result.Samples) != len(want) {
		t.Fatalf("expected %d samples, got %d", len(want), len(result.Samples))
	}
	for i, step := range want {
		if result.Samples[i].Step != step {
			t.Errorf("sample %d: step = %d, want %d", i, result.Samples[i].Step, step)
		}
	}
}

func TestSimulatorInvalidConfig(t *testing.T) {
	s := New(&driftStepper{})

	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero dt", Config{Dt: 0, Steps: 10, SampleEvery: 1}},
		{"negative dt", Config{Dt: -0.1, Steps: 10, SampleEvery: 1}},
		{"nan dt", Config{Dt: math.NaN(), Steps: 10, SampleEvery: 1}},
		{"zero steps", Config{Dt: 0.1, Steps: 0, SampleEvery: 1}},
		{"zero sample interval", Config{Dt: 0.1, Steps: 10, SampleEvery: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Run(context.Background(), singleParticle(), tt.cfg)
			if err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestSimulatorMetricsAndObservers(t *testing.T) {
	s := New(&driftStepper{})
	metric := &countMetric{}
	rec := &stepRecorder{}
	s.AddMetric(metric)
	s.AddObserver(rec)

	result, err := s.Run(context.Background(), singleParticle(), Config{Dt: 0.1, Steps: 10, SampleEvery: 1})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if result.Metrics["count"] != 11 {
		t.Errorf("expected 11 observations, got %v", result.Metrics["count"])
	}
	if len(rec.steps) != 10 || rec.steps[0] != 1 || rec.steps[9] != 10 {
		t.Errorf("unexpected observer steps: %v", rec.steps)
	}
}

func TestSimulatorStopsOnNonFinite(t *testing.T) {
	s := New(&nanStepper{at: 3})
	cfg := Config{Dt: 0.1, Steps: 10, SampleEvery: 1, ValidateState: true}

	result, err := s.Run(context.Background(), singleParticle(), cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if result.StepsTaken != 3 {
		t.Errorf("expected run to stop after 3 steps, got %d", result.StepsTaken)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 error, got %d", len(result.Errors))
	}

	var stepErr *physics.StepError
	if !errors.As(result.Errors[0], &stepErr) {
		t.Fatalf("expected StepError, got %T", result.Errors[0])
	}
	if stepErr.Step != 3 {
		t.Errorf("expected error at step 3, got %d", stepErr.Step)
	}
	if !errors.Is(result.Errors[0], physics.ErrNonFinite) {
		t.Error("expected error to wrap ErrNonFinite")
	}
}

func TestSimulatorIgnoresNonFiniteWhenNotValidating(t *testing.T) {
	s := New(&nanStepper{at: 3})
	cfg := Config{Dt: 0.1, Steps: 10, SampleEvery: 1}

	result, err := s.Run(context.Background(), singleParticle(), cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.StepsTaken != 10 || len(result.Errors) != 0 {
		t.Errorf("expected full run without errors, got %d steps, %v", result.StepsTaken, result.Errors)
	}
}

func TestSimulatorCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := New(&driftStepper{})
	result, err := s.Run(ctx, singleParticle(), Config{Dt: 0.1, Steps: 10, SampleEvery: 1})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if result == nil || result.StepsTaken != 0 {
		t.Error("expected partial result with no steps")
	}
}

// cancelAt cancels the run after the given tick.
type cancelAt struct {
	step   int
	cancel context.CancelFunc
}

func (c *cancelAt) OnStep(w *world.World, step int, t float64) {
	if step == c.step {
		c.cancel()
	}
}

func TestSimulatorCanceledMidRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := physics.DefaultParams()
	s := New(physics.NewStepper(p))
	metric := &countMetric{}
	s.AddMetric(metric)
	s.AddObserver(&cancelAt{step: 3, cancel: cancel})

	w0 := world.New(
		world.Spec{Mass: 18, Velocity: r3.Vec{Y: -5}},
		world.Spec{Mass: 4, Position: r3.Vec{X: 250, Y: 50}, Velocity: r3.Vec{Y: 55}},
	)
	result, err := s.Run(ctx, w0, Config{Dt: 0.01, Steps: 100, SampleEvery: 1})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	if result.StepsTaken != 3 {
		t.Fatalf("expected 3 steps, got %d", result.StepsTaken)
	}
	if result.Metrics["count"] != 4 {
		t.Errorf("expected metrics from 4 observations, got %v", result.Metrics)
	}
	if e := physics.Energy(result.Final, p); result.FinalEnergy != e {
		t.Errorf("final energy = %v, want %v", result.FinalEnergy, e)
	}
	if m := physics.Momentum(result.Final); result.FinalMomentum != m {
		t.Errorf("final momentum = %v, want %v", result.FinalMomentum, m)
	}
	if result.EnergyDrift == 0 {
		t.Error("expected energy drift to be computed")
	}
}

func TestSimulatorGravityConservesMomentum(t *testing.T) {
	w := world.New(
		world.Spec{Mass: 18, Velocity: r3.Vec{Y: -5}},
		world.Spec{Mass: 4, Position: r3.Vec{X: 250, Y: 50}, Velocity: r3.Vec{Y: 55}},
	)

	s := New(physics.NewStepper(physics.DefaultParams()))
	result, err := s.Run(context.Background(), w, Config{Dt: 1e-3, Steps: 2000, SampleEvery: 100, ValidateState: true})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	dp := r3.Norm(r3.Sub(result.FinalMomentum, result.InitialMomentum)) / r3.Norm(result.InitialMomentum)
	if dp > 1e-9 {
		t.Errorf("momentum drifted by %e", dp)
	}
	if result.InitialEnergy == 0 {
		t.Error("expected energy from the physics stepper")
	}
	if result.EnergyDrift > 0.01 {
		t.Errorf("energy drifted by %e", result.EnergyDrift)
	}
	if len(result.Masses) != 2 || result.Masses[0] != 18 {
		t.Errorf("unexpected masses: %v", result.Masses)
	}
}

func TestEnsembleRun(t *testing.T) {
	w := world.New(
		world.Spec{Mass: 18, Velocity: r3.Vec{Y: -5}},
		world.Spec{Mass: 4, Position: r3.Vec{X: 250, Y: 50}, Velocity: r3.Vec{Y: 55}},
	)
	stepper := physics.NewStepper(physics.DefaultParams())

	cases := []Case{
		{Name: "fine", Stepper: stepper, Config: Config{Dt: 0.001, Steps: 100, SampleEvery: 10}},
		{Name: "coarse", Stepper: stepper, Config: Config{Dt: 0.01, Steps: 10, SampleEvery: 1}},
	}

	e := NewEnsemble(cases, func(int) []Metric { return []Metric{&countMetric{}} })
	results, err := e.Run(context.Background(), w)
	if err != nil {
		t.Fatalf("ensemble failed: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].StepsTaken != 100 || results[1].StepsTaken != 10 {
		t.Errorf("unexpected steps: %d, %d", results[0].StepsTaken, results[1].StepsTaken)
	}
	if results[0].Metrics["count"] != 101 || results[1].Metrics["count"] != 11 {
		t.Errorf("metrics shared between cases: %v, %v", results[0].Metrics, results[1].Metrics)
	}
}

func TestEnsembleError(t *testing.T) {
	cases := []Case{
		{Name: "bad", Stepper: &driftStepper{}, Config: Config{Dt: 0, Steps: 10, SampleEvery: 1}},
	}
	_, err := NewEnsemble(cases, nil).Run(context.Background(), singleParticle())
	if !errors.Is(err, physics.ErrInvalidTimestep) {
		t.Errorf("expected ErrInvalidTimestep, got %v", err)
	}
}

func TestEnsembleCaseWorld(t *testing.T) {
	moved := world.New(world.Spec{Mass: 1, Position: r3.Vec{X: 100}, Velocity: r3.Vec{X: 1}})
	cases := []Case{
		{Name: "shared", Stepper: &driftStepper{}, Config: Config{Dt: 1, Steps: 2, SampleEvery: 1}},
		{Name: "own", Stepper: &driftStepper{}, Config: Config{Dt: 1, Steps: 2, SampleEvery: 1}, World: moved},
	}

	e := NewEnsemble(cases, nil)
	e.SetLimit(1)
	results, err := e.Run(context.Background(), singleParticle())
	if err != nil {
		t.Fatalf("ensemble failed: %v", err)
	}
	if got := results[0].Final.Particles[0].Position.X; got != 2 {
		t.Errorf("shared case: expected x=2, got %v", got)
	}
	if got := results[1].Final.Particles[0].Position.X; got != 102 {
		t.Errorf("own case: expected x=102, got %v", got)
	}
}
