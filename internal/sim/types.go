package sim

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/AntonZelenin/planet-gravity/internal/world"
)

// Stepper advances a world by one tick.
type Stepper interface {
	Step(w *world.World, dt float64)
}

// EnergyComputer is implemented by steppers that know the potential their
// force law derives from.
type EnergyComputer interface {
	Energy(w *world.World) float64
}

type Metric interface {
	Name() string
	Observe(w *world.World, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(w *world.World, step int, t float64)
}

type Config struct {
	Dt            float64
	Steps         int
	SampleEvery   int
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Dt:            1.0 / 60,
		Steps:         1000,
		SampleEvery:   1,
		ValidateState: true,
	}
}

// Sample is a copy of every particle's kinematic state at one tick.
type Sample struct {
	Step       int
	Time       float64
	Positions  []r3.Vec
	Velocities []r3.Vec
}

func newSample(w *world.World, step int, t float64) Sample {
	s := Sample{
		Step:       step,
		Time:       t,
		Positions:  make([]r3.Vec, w.Len()),
		Velocities: make([]r3.Vec, w.Len()),
	}
	for i := range w.Particles {
		s.Positions[i] = w.Particles[i].Position
		s.Velocities[i] = w.Particles[i].Velocity
	}
	return s
}

type Result struct {
	Samples         []Sample
	Masses          []float64
	Metrics         map[string]float64
	StepsTaken      int
	Final           *world.World
	InitialMomentum r3.Vec
	FinalMomentum   r3.Vec
	InitialEnergy   float64
	FinalEnergy     float64
	EnergyDrift     float64
	Errors          []error
}
