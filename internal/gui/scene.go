// Package gui drives a world from a windowing loop. Scene holds everything
// that does not need a window, so the same stepping and body mapping run
// under raylib in package window and headless in tests.
package gui

import (
	"image/color"
	"math"

	"github.com/AntonZelenin/planet-gravity/internal/physics"
	"github.com/AntonZelenin/planet-gravity/internal/sim"
	"github.com/AntonZelenin/planet-gravity/internal/world"
)

const (
	DefaultWidth  = 1280
	DefaultHeight = 720

	// MaxFrameDt caps a frame so a stalled window does not become one huge
	// integration step.
	MaxFrameDt = 0.1

	minScale = 0.1
	maxScale = 50
)

var (
	Background = color.RGBA{26, 26, 26, 255}
	Primary    = color.RGBA{255, 165, 0, 255}
	Secondary  = color.RGBA{64, 224, 208, 255}
)

type Options struct {
	Title  string
	Width  int
	Height int

	// Dt is a fixed tick length; zero steps by the frame time.
	Dt    float64
	Speed float64
	// Scale is world units per pixel.
	Scale float64
}

func DefaultOptions() Options {
	return Options{
		Title:  "planetsim",
		Width:  DefaultWidth,
		Height: DefaultHeight,
		Speed:  1,
		Scale:  1,
	}
}

// Disc is one body as drawn: screen centre, radius in pixels and fill.
type Disc struct {
	X, Y   float32
	Radius float32
	Color  color.RGBA
}

type Scene struct {
	opts    Options
	stepper sim.Stepper
	world   *world.World
	initial *world.World

	t      float64
	steps  int
	paused bool
	err    error
}

// NewScene takes a clone of w; the caller's world is untouched.
func NewScene(w *world.World, stepper sim.Stepper, opts Options) *Scene {
	def := DefaultOptions()
	if opts.Width <= 0 {
		opts.Width = def.Width
	}
	if opts.Height <= 0 {
		opts.Height = def.Height
	}
	if opts.Speed <= 0 {
		opts.Speed = def.Speed
	}
	if opts.Scale <= 0 {
		opts.Scale = def.Scale
	}
	if opts.Title == "" {
		opts.Title = def.Title
	}
	return &Scene{
		opts:    opts,
		stepper: stepper,
		world:   w.Clone(),
		initial: w.Clone(),
	}
}

func (s *Scene) World() *world.World { return s.world }
func (s *Scene) Time() float64       { return s.t }
func (s *Scene) Steps() int          { return s.steps }
func (s *Scene) Paused() bool        { return s.paused }
func (s *Scene) Err() error          { return s.err }
func (s *Scene) TogglePause()        { s.paused = !s.paused }
func (s *Scene) ZoomIn()             { s.opts.Scale = math.Max(minScale, s.opts.Scale/1.25) }
func (s *Scene) ZoomOut()            { s.opts.Scale = math.Min(maxScale, s.opts.Scale*1.25) }
func (s *Scene) Scale() float64      { return s.opts.Scale }
func (s *Scene) SetSize(w, h int)    { s.opts.Width, s.opts.Height = w, h }
func (s *Scene) Size() (int, int)    { return s.opts.Width, s.opts.Height }
func (s *Scene) Title() string       { return s.opts.Title }

// FrameDt returns the tick length for a frame that lasted frameTime seconds.
func (s *Scene) FrameDt(frameTime float64) float64 {
	if s.opts.Dt > 0 {
		return s.opts.Dt
	}
	if frameTime <= 0 || math.IsNaN(frameTime) {
		return 0
	}
	return min(frameTime*s.opts.Speed, MaxFrameDt)
}

// Advance runs one tick for a frame of frameTime seconds. A non-finite state
// pauses the scene and is kept as its error.
func (s *Scene) Advance(frameTime float64) {
	if s.paused || s.err != nil {
		return
	}
	dt := s.FrameDt(frameTime)
	if dt == 0 {
		return
	}

	s.stepper.Step(s.world, dt)
	s.t += dt
	s.steps++

	if !physics.IsFinite(s.world) {
		s.err = &physics.StepError{Step: s.steps, Time: s.t, Wrapped: physics.ErrNonFinite}
		s.paused = true
	}
}

func (s *Scene) Reset() {
	s.world = s.initial.Clone()
	s.t = 0
	s.steps = 0
	s.err = nil
	s.paused = false
}

// BodyColor is orange for the first body and turquoise for the rest.
func BodyColor(i int) color.RGBA {
	if i == 0 {
		return Primary
	}
	return Secondary
}

// BodyRadius is the drawn radius of a body in world units.
func BodyRadius(mass float64) float64 {
	return 2 * mass
}

// Discs maps every body onto the window: world origin at the centre, y up.
func (s *Scene) Discs() []Disc {
	cx, cy := float64(s.opts.Width)/2, float64(s.opts.Height)/2
	out := make([]Disc, len(s.world.Particles))
	for i := range s.world.Particles {
		p := &s.world.Particles[i]
		out[i] = Disc{
			X:      float32(cx + p.Position.X/s.opts.Scale),
			Y:      float32(cy - p.Position.Y/s.opts.Scale),
			Radius: float32(BodyRadius(p.Mass()) / s.opts.Scale),
			Color:  BodyColor(i),
		}
	}
	return out
}
