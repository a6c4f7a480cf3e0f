package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/AntonZelenin/planet-gravity/internal/physics"
	"github.com/AntonZelenin/planet-gravity/internal/world"
)

type Simulator struct {
	stepper   Stepper
	metrics   []Metric
	observers []Observer
}

func New(stepper Stepper) *Simulator {
	return &Simulator{
		stepper:   stepper,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Run advances a copy of w0 for cfg.Steps ticks of cfg.Dt. w0 is not
// modified. Metrics see the initial state and the state after every tick.
func (s *Simulator) Run(ctx context.Context, w0 *world.World, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	w := w0.Clone()
	result := &Result{
		Samples: make([]Sample, 0, cfg.Steps/cfg.SampleEvery+2),
		Masses:  make([]float64, w.Len()),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}
	for i := range w.Particles {
		result.Masses[i] = w.Particles[i].Mass()
	}

	for _, m := range s.metrics {
		m.Reset()
		m.Observe(w, 0)
	}

	result.Samples = append(result.Samples, newSample(w, 0, 0))
	result.InitialMomentum = physics.Momentum(w)
	result.InitialEnergy = s.computeEnergy(w)

	t := 0.0
	for i := 1; i <= cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			s.finish(result, w)
			return result, ctx.Err()
		default:
		}

		s.stepper.Step(w, cfg.Dt)
		t = float64(i) * cfg.Dt
		result.StepsTaken++

		if cfg.ValidateState && !physics.IsFinite(w) {
			result.Errors = append(result.Errors, &physics.StepError{Step: i, Time: t, Wrapped: physics.ErrNonFinite})
			break
		}

		for _, m := range s.metrics {
			m.Observe(w, t)
		}
		for _, obs := range s.observers {
			obs.OnStep(w, i, t)
		}

		if i%cfg.SampleEvery == 0 || i == cfg.Steps {
			result.Samples = append(result.Samples, newSample(w, i, t))
		}
	}

	s.finish(result, w)
	return result, nil
}

// finish fills in the end-of-run fields from the last state reached.
func (s *Simulator) finish(result *Result, w *world.World) {
	result.Final = w
	result.FinalMomentum = physics.Momentum(w)
	result.FinalEnergy = s.computeEnergy(w)
	if result.InitialEnergy != 0 {
		result.EnergyDrift = math.Abs(result.FinalEnergy-result.InitialEnergy) / math.Abs(result.InitialEnergy)
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

func validateConfig(cfg Config) error {
	if cfg.Dt <= 0 || math.IsNaN(cfg.Dt) || math.IsInf(cfg.Dt, 0) {
		return fmt.Errorf("%w: dt must be positive, got %f", physics.ErrInvalidTimestep, cfg.Dt)
	}
	if cfg.Steps <= 0 {
		return fmt.Errorf("steps must be positive, got %d", cfg.Steps)
	}
	if cfg.SampleEvery < 1 {
		return fmt.Errorf("sample_every must be at least 1, got %d", cfg.SampleEvery)
	}
	return nil
}

func (s *Simulator) computeEnergy(w *world.World) float64 {
	if ec, ok := s.stepper.(EnergyComputer); ok {
		return ec.Energy(w)
	}
	return 0
}
