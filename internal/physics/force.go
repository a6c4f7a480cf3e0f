package physics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// DefaultG is the gravitational constant in simulation units.
	DefaultG = 40000.0
	// DefaultMinDistance is the floor applied to pair distance in the force
	// magnitude.
	DefaultMinDistance = 10.0
)

type Params struct {
	G           float64 `yaml:"gravity" json:"gravity"`
	MinDistance float64 `yaml:"min_distance" json:"min_distance"`
}

func DefaultParams() Params {
	return Params{G: DefaultG, MinDistance: DefaultMinDistance}
}

func (p Params) Validate() error {
	if p.G <= 0 || math.IsNaN(p.G) || math.IsInf(p.G, 0) {
		return fmt.Errorf("%w: gravity must be positive and finite, got %v", ErrInvalidParams, p.G)
	}
	if p.MinDistance < 0 || math.IsNaN(p.MinDistance) || math.IsInf(p.MinDistance, 0) {
		return fmt.Errorf("%w: min_distance must be non-negative and finite, got %v", ErrInvalidParams, p.MinDistance)
	}
	return nil
}

// Force returns the force on a body of mass mi at pi due to a body of mass mj
// at pj.
//
// The magnitude is G*mi*mj/d² with d floored at MinDistance. The direction is
// the unit vector from pj to pi taken from the true, unclamped separation.
// Coincident positions have no direction and contribute nothing.
func Force(pi, pj r3.Vec, mi, mj float64, p Params) r3.Vec {
	dir := r3.Sub(pi, pj)
	d := r3.Norm(dir)
	if d == 0 {
		return r3.Vec{}
	}

	clamped := math.Max(d, p.MinDistance)
	magnitude := p.G * mi * mj / (clamped * clamped)

	return r3.Scale(magnitude, r3.Scale(1/d, dir))
}

// ForceMagnitude is the scalar part of [Force] for a separation d.
func ForceMagnitude(d, mi, mj float64, p Params) float64 {
	clamped := math.Max(d, p.MinDistance)
	return p.G * mi * mj / (clamped * clamped)
}
