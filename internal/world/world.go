// Package world holds the particle state advanced by the physics step.
//
// A [World] is a plain container: it is built once from a list of [Spec]
// tuples and afterwards only particle velocities, positions and force
// accumulators change. Particle order is fixed for the lifetime of the world,
// which is what lets the physics step visit every unordered pair once.
package world

import "gonum.org/v1/gonum/spatial/r3"

// Spec is the construction tuple for one particle.
type Spec struct {
	Mass     float64
	Position r3.Vec
	Velocity r3.Vec
}

// Particle is a single gravitating point mass.
//
// Force is per-tick scratch space: it is zero when a tick starts and is
// cleared again once the integration pass has consumed it.
type Particle struct {
	mass     float64
	Position r3.Vec
	Velocity r3.Vec
	Force    r3.Vec
}

// Mass returns the particle's mass. It never changes after construction.
func (p *Particle) Mass() float64 { return p.mass }

type World struct {
	Particles []Particle
}

// New builds a world from specs with every force accumulator at zero.
// Masses must be positive; that is the caller's contract and is not checked.
func New(specs ...Spec) *World {
	w := &World{Particles: make([]Particle, len(specs))}
	for i, s := range specs {
		w.Particles[i] = Particle{
			mass:     s.Mass,
			Position: s.Position,
			Velocity: s.Velocity,
		}
	}
	return w
}

// Len returns the number of particles.
func (w *World) Len() int { return len(w.Particles) }

func (w *World) Clone() *World {
	c := &World{Particles: make([]Particle, len(w.Particles))}
	copy(c.Particles, w.Particles)
	return c
}

// Specs returns the construction tuples matching the current state, which is
// how a world is rebuilt from a stored frame.
func (w *World) Specs() []Spec {
	specs := make([]Spec, len(w.Particles))
	for i := range w.Particles {
		p := &w.Particles[i]
		specs[i] = Spec{Mass: p.mass, Position: p.Position, Velocity: p.Velocity}
	}
	return specs
}
