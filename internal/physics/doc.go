// Package physics advances a [world.World] by one discrete tick.
//
// A tick has two passes over the particles:
//
//   - [Accumulate]: every unordered pair (a, b) with a < b is visited once and
//     the mutual gravitational force is added to both accumulators. Positions
//     and velocities are only read.
//   - [Integrate]: semi-implicit Euler. Each accumulator is turned into an
//     acceleration, applied to the velocity, the new velocity moves the
//     position, and the accumulator is cleared.
//
// # Sign convention
//
// [Force] on particle i points from j towards i, and [Integrate] subtracts
// velocity*dt from the position. The two signs only produce attraction as a
// pair; flip one and the other must flip with it.
//
// # Example
//
//	w := world.New(specs...)
//	s := physics.NewStepper(physics.DefaultParams())
//	for range frames {
//	    s.Step(w, dt)
//	}
//
// # Thread Safety
//
// Nothing here is safe for concurrent use on the same world. The caller owns
// the world exclusively for the duration of a tick.
package physics
