package physics_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/AntonZelenin/planet-gravity/internal/physics"
	"github.com/AntonZelenin/planet-gravity/internal/world"
)

func referenceSpecs() []world.Spec {
	return []world.Spec{
		{Mass: 18, Position: r3.Vec{}, Velocity: r3.Vec{Y: -5}},
		{Mass: 4, Position: r3.Vec{X: 250, Y: 50}, Velocity: r3.Vec{Y: 55}},
		{Mass: 2, Position: r3.Vec{X: -200, Y: 50}, Velocity: r3.Vec{Y: -60}},
		{Mass: 1, Position: r3.Vec{X: 250, Y: 5}, Velocity: r3.Vec{X: 50, Y: 55}},
	}
}

func expectVecNear(got, want r3.Vec, tol float64) {
	ExpectWithOffset(1, got.X).To(BeNumerically("~", want.X, tol))
	ExpectWithOffset(1, got.Y).To(BeNumerically("~", want.Y, tol))
	ExpectWithOffset(1, got.Z).To(BeNumerically("~", want.Z, tol))
}

var _ = Describe("Force", func() {
	params := physics.DefaultParams()

	It("is equal and opposite for a pair", func() {
		pi := r3.Vec{X: 3, Y: -40, Z: 0}
		pj := r3.Vec{X: 120, Y: 15, Z: 0}

		fij := physics.Force(pi, pj, 18, 4, params)
		fji := physics.Force(pj, pi, 4, 18, params)

		expectVecNear(r3.Add(fij, fji), r3.Vec{}, 1e-12)
		Expect(r3.Norm(fij)).To(BeNumerically("~", r3.Norm(fji), 1e-12))
	})

	It("points from the other body towards this one", func() {
		f := physics.Force(r3.Vec{X: 100}, r3.Vec{}, 1, 1, params)
		Expect(f.X).To(BeNumerically(">", 0))
		Expect(f.Y).To(BeZero())
	})

	It("follows the inverse-square law outside the clamp", func() {
		near := r3.Norm(physics.Force(r3.Vec{X: 50}, r3.Vec{}, 2, 3, params))
		far := r3.Norm(physics.Force(r3.Vec{X: 100}, r3.Vec{}, 2, 3, params))
		Expect(near / far).To(BeNumerically("~", 4, 1e-9))
		Expect(near).To(BeNumerically("~", 40000*2*3/2500.0, 1e-9))
	})

	DescribeTable("clamps the magnitude below the minimum distance",
		func(d float64) {
			atClamp := r3.Norm(physics.Force(r3.Vec{X: params.MinDistance}, r3.Vec{}, 18, 4, params))
			got := r3.Norm(physics.Force(r3.Vec{X: d}, r3.Vec{}, 18, 4, params))
			Expect(got).To(BeNumerically("~", atClamp, 1e-9))
			Expect(physics.ForceMagnitude(d, 18, 4, params)).To(BeNumerically("~", atClamp, 1e-9))
		},
		Entry("just inside", 9.99),
		Entry("half", 5.0),
		Entry("tiny", 1e-6),
		Entry("diagonal separation", 0.5),
	)

	It("keeps the direction of the true separation inside the clamp", func() {
		f := physics.Force(r3.Vec{X: 3, Y: 4}, r3.Vec{}, 1, 1, params)
		Expect(f.X / r3.Norm(f)).To(BeNumerically("~", 0.6, 1e-12))
		Expect(f.Y / r3.Norm(f)).To(BeNumerically("~", 0.8, 1e-12))
	})

	It("contributes nothing for coincident positions", func() {
		p := r3.Vec{X: 7, Y: 7}
		Expect(physics.Force(p, p, 18, 4, params)).To(Equal(r3.Vec{}))
	})
})

var _ = Describe("Accumulate", func() {
	It("only writes the force accumulators", func() {
		w := world.New(referenceSpecs()...)
		before := w.Clone()

		physics.Accumulate(w, physics.DefaultParams())

		for i := range w.Particles {
			Expect(w.Particles[i].Position).To(Equal(before.Particles[i].Position))
			Expect(w.Particles[i].Velocity).To(Equal(before.Particles[i].Velocity))
			Expect(w.Particles[i].Force).NotTo(Equal(r3.Vec{}))
		}
	})

	It("sums to zero net force over a closed system", func() {
		w := world.New(referenceSpecs()...)
		physics.Accumulate(w, physics.DefaultParams())

		var net r3.Vec
		for i := range w.Particles {
			net = r3.Add(net, w.Particles[i].Force)
		}
		expectVecNear(net, r3.Vec{}, 1e-9)
	})

	It("does not depend on particle order beyond rounding", func() {
		specs := referenceSpecs()
		reversed := make([]world.Spec, len(specs))
		for i := range specs {
			reversed[len(specs)-1-i] = specs[i]
		}

		a := world.New(specs...)
		b := world.New(reversed...)
		physics.Accumulate(a, physics.DefaultParams())
		physics.Accumulate(b, physics.DefaultParams())

		for i := range specs {
			expectVecNear(a.Particles[i].Force, b.Particles[len(specs)-1-i].Force, 1e-9)
		}
	})
})

var _ = Describe("Step", func() {
	var (
		w      *world.World
		params physics.Params
	)

	BeforeEach(func() {
		w = world.New(referenceSpecs()...)
		params = physics.DefaultParams()
	})

	It("leaves every accumulator at exactly zero", func() {
		for tick := 0; tick < 10; tick++ {
			physics.Step(w, 1.0/60, params)
			for i := range w.Particles {
				Expect(w.Particles[i].Force).To(Equal(r3.Vec{}))
			}
		}
	})

	It("is a no-op on positions and velocities when dt is zero", func() {
		before := w.Clone()
		physics.Step(w, 0, params)

		for i := range w.Particles {
			Expect(w.Particles[i].Position).To(Equal(before.Particles[i].Position))
			Expect(w.Particles[i].Velocity).To(Equal(before.Particles[i].Velocity))
			Expect(w.Particles[i].Force).To(Equal(r3.Vec{}))
		}
	})

	It("never changes a mass", func() {
		for tick := 0; tick < 100; tick++ {
			physics.Step(w, 1.0/60, params)
		}
		for i, s := range referenceSpecs() {
			Expect(w.Particles[i].Mass()).To(Equal(s.Mass))
		}
	})

	It("brings two resting bodies together", func() {
		pair := world.New(
			world.Spec{Mass: 1, Position: r3.Vec{X: -100}},
			world.Spec{Mass: 1, Position: r3.Vec{X: 100}},
		)
		before := r3.Norm(r3.Sub(pair.Particles[0].Position, pair.Particles[1].Position))

		for tick := 0; tick < 10; tick++ {
			physics.Step(pair, 0.01, params)
		}

		after := r3.Norm(r3.Sub(pair.Particles[0].Position, pair.Particles[1].Position))
		Expect(after).To(BeNumerically("<", before))
	})

	It("stays finite for coincident bodies", func() {
		pair := world.New(
			world.Spec{Mass: 18, Position: r3.Vec{X: 5, Y: 5}},
			world.Spec{Mass: 4, Position: r3.Vec{X: 5, Y: 5}, Velocity: r3.Vec{Y: 1}},
		)
		physics.Step(pair, 1, params)
		Expect(physics.IsFinite(pair)).To(BeTrue())
	})

	It("conserves two-body momentum over many small ticks", func() {
		pair := world.New(referenceSpecs()[:2]...)
		p0 := physics.Momentum(pair)

		for tick := 0; tick < 5000; tick++ {
			physics.Step(pair, 1e-3, params)
		}

		p1 := physics.Momentum(pair)
		Expect(r3.Norm(r3.Sub(p1, p0)) / r3.Norm(p0)).To(BeNumerically("<", 1e-9))
	})

	It("uses the stepper's parameters", func() {
		a := w.Clone()
		physics.NewStepper(params).Step(a, 0.5)
		physics.Step(w, 0.5, params)

		for i := range w.Particles {
			Expect(a.Particles[i].Position).To(Equal(w.Particles[i].Position))
			Expect(a.Particles[i].Velocity).To(Equal(w.Particles[i].Velocity))
		}
	})
})

var _ = Describe("Two-body scenario", func() {
	It("matches the force law and semi-implicit Euler at dt = 1", func() {
		params := physics.DefaultParams()
		w := world.New(referenceSpecs()[:2]...)

		x0, x1 := w.Particles[0].Position, w.Particles[1].Position
		v0, v1 := w.Particles[0].Velocity, w.Particles[1].Velocity

		d := r3.Norm(r3.Sub(x0, x1))
		Expect(d).To(BeNumerically("~", 254.95, 0.01))

		magnitude := 40000 * 18 * 4 / (d * d)
		Expect(magnitude).To(BeNumerically("~", 44.31, 0.01))

		dir0 := r3.Scale(1/d, r3.Sub(x0, x1))
		dir1 := r3.Scale(1/d, r3.Sub(x1, x0))
		a0 := r3.Scale(magnitude/18, dir0)
		a1 := r3.Scale(magnitude/4, dir1)
		wantV0 := r3.Add(v0, a0)
		wantV1 := r3.Add(v1, a1)
		wantX0 := r3.Sub(x0, wantV0)
		wantX1 := r3.Sub(x1, wantV1)

		physics.Step(w, 1, params)

		rel := func(got, want r3.Vec) float64 {
			return r3.Norm(r3.Sub(got, want)) / math.Max(r3.Norm(want), 1)
		}
		Expect(rel(w.Particles[0].Velocity, wantV0)).To(BeNumerically("<", 1e-4))
		Expect(rel(w.Particles[1].Velocity, wantV1)).To(BeNumerically("<", 1e-4))
		Expect(rel(w.Particles[0].Position, wantX0)).To(BeNumerically("<", 1e-4))
		Expect(rel(w.Particles[1].Position, wantX1)).To(BeNumerically("<", 1e-4))
	})
})

var _ = Describe("Four-body reference scenario", func() {
	It("stays finite and conserves momentum over 1000 ticks", func() {
		params := physics.DefaultParams()
		w := world.New(referenceSpecs()...)
		p0 := physics.Momentum(w)

		for tick := 0; tick < 1000; tick++ {
			physics.Step(w, 1.0/60, params)
		}

		Expect(physics.IsFinite(w)).To(BeTrue())
		drift := r3.Norm(r3.Sub(physics.Momentum(w), p0)) / r3.Norm(p0)
		Expect(drift).To(BeNumerically("<", 0.01))
	})
})
