package gui

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/AntonZelenin/planet-gravity/internal/physics"
	"github.com/AntonZelenin/planet-gravity/internal/world"
)

type poisonStepper struct{}

func (poisonStepper) Step(w *world.World, dt float64) {
	w.Particles[0].Position.X = math.NaN()
}

type recordingStepper struct {
	dts []float64
}

func (r *recordingStepper) Step(w *world.World, dt float64) { r.dts = append(r.dts, dt) }

func binary() *world.World {
	return world.New(
		world.Spec{Mass: 18, Velocity: r3.Vec{Y: -5}},
		world.Spec{Mass: 4, Position: r3.Vec{X: 250, Y: 50}, Velocity: r3.Vec{Y: 55}},
	)
}

func TestFrameDt(t *testing.T) {
	tests := []struct {
		name  string
		opts  Options
		frame float64
		want  float64
	}{
		{"frame time", Options{}, 1.0 / 60, 1.0 / 60},
		{"speed", Options{Speed: 2}, 0.02, 0.04},
		{"capped", Options{}, 0.5, MaxFrameDt},
		{"capped after speed", Options{Speed: 10}, 0.02, MaxFrameDt},
		{"first frame", Options{}, 0, 0},
		{"fixed", Options{Dt: 0.005}, 0.5, 0.005},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := NewScene(binary(), &recordingStepper{}, tt.opts)
			if got := sc.FrameDt(tt.frame); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("FrameDt(%v) = %v, want %v", tt.frame, got, tt.want)
			}
		})
	}
}

func TestAdvance(t *testing.T) {
	st := &recordingStepper{}
	sc := NewScene(binary(), st, DefaultOptions())

	sc.Advance(0)
	sc.Advance(0.016)
	sc.Advance(1)
	if len(st.dts) != 2 || st.dts[0] != 0.016 || st.dts[1] != MaxFrameDt {
		t.Errorf("unexpected step lengths: %v", st.dts)
	}
	if sc.Steps() != 2 || math.Abs(sc.Time()-0.116) > 1e-12 {
		t.Errorf("steps=%d t=%v", sc.Steps(), sc.Time())
	}

	sc.TogglePause()
	sc.Advance(0.016)
	if len(st.dts) != 2 {
		t.Error("stepped while paused")
	}
}

func TestAdvanceMovesBodies(t *testing.T) {
	w := binary()
	sc := NewScene(w, physics.NewStepper(physics.DefaultParams()), DefaultOptions())

	sc.Advance(1.0 / 60)
	if sc.World().Particles[1].Position == w.Particles[1].Position {
		t.Error("expected the world to move")
	}
	if w.Particles[1].Position != (r3.Vec{X: 250, Y: 50}) {
		t.Error("scene mutated the caller's world")
	}

	sc.Reset()
	if sc.Steps() != 0 || sc.World().Particles[1].Position != w.Particles[1].Position {
		t.Error("reset did not restore the initial state")
	}
}

func TestAdvanceStopsOnNonFinite(t *testing.T) {
	sc := NewScene(binary(), poisonStepper{}, DefaultOptions())
	sc.Advance(0.016)

	if !errors.Is(sc.Err(), physics.ErrNonFinite) {
		t.Fatalf("expected ErrNonFinite, got %v", sc.Err())
	}
	if !sc.Paused() {
		t.Error("expected the scene to pause")
	}

	sc.TogglePause()
	sc.Advance(0.016)
	if sc.Steps() != 1 {
		t.Error("stepped past a non-finite state")
	}
}

func TestDiscs(t *testing.T) {
	sc := NewScene(binary(), &recordingStepper{}, DefaultOptions())
	discs := sc.Discs()

	want := []Disc{
		{X: 640, Y: 360, Radius: 36, Color: Primary},
		{X: 890, Y: 310, Radius: 8, Color: Secondary},
	}
	for i, d := range want {
		if discs[i] != d {
			t.Errorf("disc %d = %+v, want %+v", i, discs[i], d)
		}
	}

	sc.ZoomOut()
	if r := sc.Discs()[0].Radius; math.Abs(float64(r)-36/1.25) > 1e-4 {
		t.Errorf("expected zoomed radius %v, got %v", 36/1.25, r)
	}
}

func TestBodyColor(t *testing.T) {
	if BodyColor(0) != Primary {
		t.Error("first body should be orange")
	}
	for i := 1; i < 4; i++ {
		if BodyColor(i) != Secondary {
			t.Errorf("body %d should be turquoise", i)
		}
	}
}
