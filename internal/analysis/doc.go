// Package analysis post-processes stored trajectories.
//
// The package works on [sim.Sample] slices, either straight from a run result
// or read back from storage:
//
//   - [RelativeSeries]: one coordinate of a particle relative to the centre of mass
//   - [PowerSpectrum]: magnitude spectrum of a series
//   - [DominantPeriod]: orbital period from the strongest spectral peak
//   - [RenderOrbits]: ASCII map of every particle's path in the x-y plane
//
// # Orbital Period
//
// For a bound orbit the coordinate relative to the centre of mass oscillates
// once per revolution:
//
//	xs := analysis.RelativeSeries(samples, masses, 1, analysis.AxisX)
//	period, ok := analysis.DominantPeriod(xs, dt*float64(sampleEvery))
package analysis
