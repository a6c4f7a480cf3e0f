package metrics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/AntonZelenin/planet-gravity/internal/physics"
	"github.com/AntonZelenin/planet-gravity/internal/world"
)

// EnergyDrift tracks the largest relative deviation of total energy from its
// first observed value.
type EnergyDrift struct {
	name          string
	params        physics.Params
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift(p physics.Params) *EnergyDrift {
	return &EnergyDrift{
		name:   "energy_drift",
		params: p,
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(w *world.World, t float64) {
	energy := physics.Energy(w, e.params)

	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}

// MomentumDrift tracks the largest deviation of total momentum from its first
// observed value, relative to its magnitude. A system starting at rest is
// measured in absolute terms.
type MomentumDrift struct {
	name     string
	initial  r3.Vec
	maxDrift float64
	samples  int
}

func NewMomentumDrift() *MomentumDrift {
	return &MomentumDrift{name: "momentum_drift"}
}

func (m *MomentumDrift) Name() string { return m.name }

func (m *MomentumDrift) Observe(w *world.World, t float64) {
	p := physics.Momentum(w)
	if m.samples == 0 {
		m.initial = p
	}
	m.samples++

	drift := r3.Norm(r3.Sub(p, m.initial))
	if scale := r3.Norm(m.initial); scale > 0 {
		drift /= scale
	}
	m.maxDrift = math.Max(m.maxDrift, drift)
}

func (m *MomentumDrift) Value() float64 {
	return m.maxDrift
}

func (m *MomentumDrift) Reset() {
	m.initial = r3.Vec{}
	m.maxDrift = 0
	m.samples = 0
}
