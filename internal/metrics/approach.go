package metrics

import (
	"math"

	"github.com/AntonZelenin/planet-gravity/internal/physics"
	"github.com/AntonZelenin/planet-gravity/internal/world"
)

// ClosestApproach records the smallest pair separation seen. Values below the
// force clamp mean the run spent time in the softened region.
type ClosestApproach struct {
	name    string
	minDist float64
}

func NewClosestApproach() *ClosestApproach {
	return &ClosestApproach{
		name:    "closest_approach",
		minDist: math.Inf(1),
	}
}

func (c *ClosestApproach) Name() string { return c.name }

func (c *ClosestApproach) Observe(w *world.World, t float64) {
	c.minDist = math.Min(c.minDist, physics.MinSeparation(w))
}

func (c *ClosestApproach) Value() float64 {
	if math.IsInf(c.minDist, 1) {
		return 0
	}
	return c.minDist
}

func (c *ClosestApproach) Reset() {
	c.minDist = math.Inf(1)
}
