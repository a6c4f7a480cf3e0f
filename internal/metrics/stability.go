package metrics

import (
	"github.com/AntonZelenin/planet-gravity/internal/physics"
	"github.com/AntonZelenin/planet-gravity/internal/world"
)

// Stability is the fraction of observed ticks whose state was finite and
// inside the given radius of the origin. A radius of zero disables the bound.
type Stability struct {
	name       string
	radius     float64
	violations int
	samples    int
}

func NewStability(radius float64) *Stability {
	return &Stability{
		name:   "stability",
		radius: radius,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(w *world.World, t float64) {
	s.samples++
	if !physics.IsFinite(w) {
		s.violations++
		return
	}
	if s.radius <= 0 {
		return
	}
	r2 := s.radius * s.radius
	for i := range w.Particles {
		p := w.Particles[i].Position
		if p.X*p.X+p.Y*p.Y+p.Z*p.Z > r2 {
			s.violations++
			return
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
