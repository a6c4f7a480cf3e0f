package physics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/AntonZelenin/planet-gravity/internal/world"
)

// Momentum returns Σ m·v over all particles.
func Momentum(w *world.World) r3.Vec {
	var total r3.Vec
	for i := range w.Particles {
		pt := &w.Particles[i]
		total = r3.Add(total, r3.Scale(pt.Mass(), pt.Velocity))
	}
	return total
}

func KineticEnergy(w *world.World) float64 {
	ke := 0.0
	for i := range w.Particles {
		pt := &w.Particles[i]
		ke += 0.5 * pt.Mass() * r3.Norm2(pt.Velocity)
	}
	return ke
}

// PotentialEnergy sums -G·mi·mj/d over unordered pairs with d floored at
// MinDistance, the same floor the force law uses.
func PotentialEnergy(w *world.World, p Params) float64 {
	ps := w.Particles
	pe := 0.0
	for a := 0; a < len(ps); a++ {
		for b := a + 1; b < len(ps); b++ {
			d := math.Max(r3.Norm(r3.Sub(ps[a].Position, ps[b].Position)), p.MinDistance)
			if d == 0 {
				continue
			}
			pe -= p.G * ps[a].Mass() * ps[b].Mass() / d
		}
	}
	return pe
}

func Energy(w *world.World, p Params) float64 {
	return KineticEnergy(w) + PotentialEnergy(w, p)
}

// CenterOfMass returns the mass-weighted mean position.
func CenterOfMass(w *world.World) r3.Vec {
	var sum r3.Vec
	total := 0.0
	for i := range w.Particles {
		pt := &w.Particles[i]
		sum = r3.Add(sum, r3.Scale(pt.Mass(), pt.Position))
		total += pt.Mass()
	}
	if total == 0 {
		return r3.Vec{}
	}
	return r3.Scale(1/total, sum)
}

// MinSeparation returns the smallest distance between any two particles, or
// +Inf for fewer than two.
func MinSeparation(w *world.World) float64 {
	ps := w.Particles
	minD := math.Inf(1)
	for a := 0; a < len(ps); a++ {
		for b := a + 1; b < len(ps); b++ {
			minD = math.Min(minD, r3.Norm(r3.Sub(ps[a].Position, ps[b].Position)))
		}
	}
	return minD
}

// IsFinite reports whether every position and velocity component is finite.
func IsFinite(w *world.World) bool {
	for i := range w.Particles {
		pt := &w.Particles[i]
		if !finite(pt.Position) || !finite(pt.Velocity) {
			return false
		}
	}
	return true
}

func finite(v r3.Vec) bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
