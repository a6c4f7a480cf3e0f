package physics

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/AntonZelenin/planet-gravity/internal/world"
)

// Accumulate adds the pairwise gravitational forces into every particle's
// accumulator. Each unordered pair is evaluated once, as two force calls with
// the roles swapped.
func Accumulate(w *world.World, p Params) {
	ps := w.Particles
	n := len(ps)

	for a := 0; a < n; a++ {
		for b := a + 1; b < n; b++ {
			pa, pb := &ps[a], &ps[b]

			fa := Force(pa.Position, pb.Position, pa.Mass(), pb.Mass(), p)
			pa.Force = r3.Add(pa.Force, fa)

			fb := Force(pb.Position, pa.Position, pb.Mass(), pa.Mass(), p)
			pb.Force = r3.Add(pb.Force, fb)
		}
	}
}

// Integrate applies one semi-implicit Euler step of length dt using the
// accumulated forces, then clears every accumulator.
func Integrate(w *world.World, dt float64) {
	for i := range w.Particles {
		pt := &w.Particles[i]

		acc := r3.Scale(1/pt.Mass(), pt.Force)
		pt.Velocity = r3.Add(pt.Velocity, r3.Scale(dt, acc))
		pt.Position = r3.Sub(pt.Position, r3.Scale(dt, pt.Velocity))

		pt.Force = r3.Vec{}
	}
}

// Step advances w by one tick of length dt.
func Step(w *world.World, dt float64, p Params) {
	Accumulate(w, p)
	Integrate(w, dt)
}

// Stepper binds a parameter set to the per-tick entry point, so an engine
// loop only has to supply dt.
type Stepper struct {
	Params Params
}

func NewStepper(p Params) *Stepper {
	return &Stepper{Params: p}
}

func (s *Stepper) Step(w *world.World, dt float64) {
	Step(w, dt, s.Params)
}

func (s *Stepper) Energy(w *world.World) float64 {
	return Energy(w, s.Params)
}
