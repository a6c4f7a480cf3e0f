// Package metrics holds per-tick observers that summarise a run.
package metrics

import (
	"github.com/AntonZelenin/planet-gravity/internal/physics"
	"github.com/AntonZelenin/planet-gravity/internal/sim"
)

// Default returns the metric set recorded for every run.
func Default(p physics.Params) []sim.Metric {
	return []sim.Metric{
		NewMomentumDrift(),
		NewEnergyDrift(p),
		NewStability(0),
		NewClosestApproach(),
	}
}
