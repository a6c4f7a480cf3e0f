package viz

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/AntonZelenin/planet-gravity/internal/physics"
	"github.com/AntonZelenin/planet-gravity/internal/sim"
	"github.com/AntonZelenin/planet-gravity/internal/world"
)

const (
	DefaultWidth  = 80
	DefaultHeight = 24

	// DefaultScale is world units per Braille dot.
	DefaultScale = 5.0

	// MaxFrameDt caps a wall-clock tick so a stalled terminal does not turn
	// into one huge integration step.
	MaxFrameDt = 0.1

	historyCapacity = 600
	trailCapacity   = 150
	frameInterval   = time.Second / 60

	// A recording keeps every recordEvery-th frame and saves itself once it
	// holds recordCapacity frames (30 seconds at 60 ticks per second).
	recordEvery    = 3
	recordCapacity = 600
)

type TickMsg time.Time

type Options struct {
	Name string
	// Dt is a fixed tick length. Zero means wall-clock time scaled by Speed.
	Dt            float64
	Speed         float64
	Scale         float64
	Width, Height int
	Trails        bool
	// GIFPath is where a recording is written; empty disables recording.
	GIFPath string
}

func DefaultOptions() Options {
	return Options{
		Name:    "planets",
		Speed:   1,
		Scale:   DefaultScale,
		Width:   DefaultWidth,
		Height:  DefaultHeight,
		Trails:  true,
		GIFPath: "planets.gif",
	}
}

// Model is the Bubble Tea model of a running world.
type Model struct {
	opts    Options
	stepper sim.Stepper
	world   *world.World
	initial *world.World

	t        float64
	steps    int
	lastTick time.Time
	running  bool
	follow   bool
	showHelp bool

	canvas *Canvas
	camera *Camera
	trails [][]r3.Vec

	energyHistory []float64

	recording   bool
	recordTicks int
	maxFrames   int
	frames      []*image.Paletted

	err error
}

// NewModel takes ownership of a clone of w; the caller's world is untouched.
func NewModel(w *world.World, stepper sim.Stepper, opts Options) Model {
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}
	if opts.Speed <= 0 {
		opts.Speed = 1
	}

	return Model{
		opts:          opts,
		stepper:       stepper,
		world:         w.Clone(),
		initial:       w.Clone(),
		running:       true,
		canvas:        NewCanvas(opts.Width, opts.Height),
		camera:        NewCamera(opts.Scale),
		trails:        make([][]r3.Vec, w.Len()),
		energyHistory: make([]float64, 0, historyCapacity),
		maxFrames:     recordCapacity,
	}
}

// World exposes the live state, mostly for tests.
func (m Model) World() *world.World { return m.world }

func (m Model) Time() float64 { return m.t }

func (m Model) Steps() int { return m.steps }

func (m Model) Running() bool { return m.running }

func (m Model) Err() error { return m.err }

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick()
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.recording {
				m.stopRecording()
			}
			return m, tea.Quit
		case " ":
			m.running = !m.running
			m.lastTick = time.Time{}
		case "r":
			m.reset()
		case "n":
			if !m.running {
				m.step(m.frameDt(0))
			}
		case "+", "=":
			m.camera.ZoomIn()
		case "-", "_":
			m.camera.ZoomOut()
		case "f":
			m.follow = !m.follow
			if !m.follow {
				m.camera.Center = r3.Vec{}
			}
		case "t":
			m.opts.Trails = !m.opts.Trails
			m.clearTrails()
		case "g":
			if m.opts.GIFPath == "" {
				break
			}
			if m.recording {
				m.stopRecording()
			} else {
				m.recording = true
				m.recordTicks = 0
				m.frames = m.frames[:0]
			}
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		now := time.Time(msg)
		if m.running {
			var elapsed float64
			if !m.lastTick.IsZero() {
				elapsed = now.Sub(m.lastTick).Seconds()
			}
			m.step(m.frameDt(elapsed))
		}
		m.lastTick = now
		m.draw()
		if m.recording {
			if m.recordTicks%recordEvery == 0 {
				m.captureFrame()
			}
			m.recordTicks++
			if len(m.frames) >= m.maxFrames {
				m.stopRecording()
			}
		}
		return m, tick()
	}
	return m, nil
}

// frameDt returns the tick length for a frame that took elapsed seconds of
// wall time.
func (m *Model) frameDt(elapsed float64) float64 {
	if m.opts.Dt > 0 {
		return m.opts.Dt
	}
	if elapsed <= 0 {
		elapsed = frameInterval.Seconds()
	}
	return min(elapsed*m.opts.Speed, MaxFrameDt)
}

// step advances the world by one tick.
func (m *Model) step(dt float64) {
	if m.err != nil {
		return
	}
	m.stepper.Step(m.world, dt)
	m.t += dt
	m.steps++

	if !physics.IsFinite(m.world) {
		m.err = &physics.StepError{Step: m.steps, Time: m.t, Wrapped: physics.ErrNonFinite}
		m.running = false
		return
	}

	if e, ok := m.stepper.(sim.EnergyComputer); ok {
		m.energyHistory = append(m.energyHistory, e.Energy(m.world))
		if len(m.energyHistory) > historyCapacity {
			m.energyHistory = m.energyHistory[1:]
		}
	}

	if m.opts.Trails {
		for i := range m.world.Particles {
			m.trails[i] = append(m.trails[i], m.world.Particles[i].Position)
			if len(m.trails[i]) > trailCapacity {
				m.trails[i] = m.trails[i][1:]
			}
		}
	}
}

// reset restores the initial world.
func (m *Model) reset() {
	m.world = m.initial.Clone()
	m.t = 0
	m.steps = 0
	m.err = nil
	m.lastTick = time.Time{}
	m.energyHistory = m.energyHistory[:0]
	m.clearTrails()
}

func (m *Model) clearTrails() {
	for i := range m.trails {
		m.trails[i] = m.trails[i][:0]
	}
}

func (m *Model) draw() {
	m.canvas.Clear()
	if m.follow {
		m.camera.Center = physics.CenterOfMass(m.world)
	}
	sw, sh := m.canvas.SubWidth(), m.canvas.SubHeight()

	for _, trail := range m.trails {
		for _, pt := range trail {
			x, y := m.camera.Project(pt, sw, sh)
			m.canvas.Set(x, y, -1)
		}
	}
	for i := range m.world.Particles {
		p := &m.world.Particles[i]
		x, y := m.camera.Project(p.Position, sw, sh)
		m.canvas.DrawDisc(x, y, 2*p.Mass()/m.camera.Scale, i)
	}
}

// View renders the TUI interface.
func (m Model) View() string {
	m.draw()
	canvasView := canvasStyle.Render(m.canvas.Render(BodyStyle))

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.opts.Name)) + "\n")

	status := StatusRunning.Render("RUNNING")
	switch {
	case m.err != nil:
		status = StatusError.Render("DIVERGED")
	case !m.running:
		status = StatusPaused.Render("PAUSED")
	}
	if m.recording {
		status += " " + StatusError.Render("● REC")
	}
	s.WriteString(status + "\n\n")

	if len(m.energyHistory) > 1 {
		chart := asciigraph.Plot(m.energyHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.2fs", m.t))
	row("Steps", fmt.Sprintf("%d", m.steps))
	row("Bodies", fmt.Sprintf("%d", m.world.Len()))
	if len(m.energyHistory) > 0 {
		row("Energy", fmt.Sprintf("%.2f", m.energyHistory[len(m.energyHistory)-1]))
	}
	mom := physics.Momentum(m.world)
	row("Momentum", fmt.Sprintf("(%.2f, %.2f)", mom.X, mom.Y))
	row("Scale", fmt.Sprintf("%.2f u/dot", m.camera.Scale))
	if m.opts.Dt > 0 {
		row("dt", fmt.Sprintf("%.4f fixed", m.opts.Dt))
	} else {
		row("dt", fmt.Sprintf("wall ×%.2f", m.opts.Speed))
	}
	if m.err != nil {
		s.WriteString("\n" + StatusError.Render(m.err.Error()) + "\n")
	}

	s.WriteString(helpStyle.Render("─────────────────────\nSP:Pause R:Reset Q:Quit\nF:Follow T:Trails ±:Zoom\nN:Step G:Record ?:Help"))
	statsView := statsStyle.Render(s.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
	if m.showHelp {
		return helpOverlay + "\n\n" + mainView
	}
	return mainView
}

const helpOverlay = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume simulation  ║
║  N        - Single step when paused  ║
║  R        - Reset simulation         ║
║  F        - Follow centre of mass    ║
║  T        - Toggle trails            ║
║  + / -    - Zoom in / out            ║
║  G        - Toggle GIF recording     ║
║  Q        - Quit                     ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝`

func (m *Model) captureFrame() {
	const charW, charH = 8, 16
	img := image.NewPaletted(
		image.Rect(0, 0, m.canvas.Width*charW, m.canvas.Height*charH),
		color.Palette{color.Black, color.RGBA{0x40, 0xe0, 0xd0, 0xff}, color.RGBA{0xff, 0xa5, 0x00, 0xff}},
	)
	dotW, dotH := charW/2, charH/4
	for row := 0; row < m.canvas.Height; row++ {
		for col := 0; col < m.canvas.Width; col++ {
			pattern := int(m.canvas.Grid[row][col] - blank)
			if pattern == 0 {
				continue
			}
			idx := uint8(1)
			if m.canvas.owner[row][col] == 0 {
				idx = 2
			}
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&pixelMap[dy][dx] == 0 {
						continue
					}
					baseX, baseY := col*charW+dx*dotW, row*charH+dy*dotH
					for py := 0; py < dotH; py++ {
						for px := 0; px < dotW; px++ {
							img.SetColorIndex(baseX+px, baseY+py, idx)
						}
					}
				}
			}
		}
	}
	m.frames = append(m.frames, img)
}

func (m *Model) stopRecording() {
	m.recording = false
	if err := saveGIF(m.opts.GIFPath, m.frames); err != nil && m.err == nil {
		m.err = err
	}
	m.frames = nil
}

func saveGIF(path string, frames []*image.Paletted) error {
	if len(frames) == 0 {
		return nil
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, 100*recordEvery/60)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create recording: %w", err)
	}
	return errors.Join(gif.EncodeAll(f, &anim), f.Close())
}

// Run starts the live view and blocks until the user quits. The returned
// error is the program's own failure or the state error that stopped the
// world, whichever came first.
func Run(w *world.World, stepper sim.Stepper, opts Options) error {
	p := tea.NewProgram(NewModel(w, stepper, opts), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("live view: %w", err)
	}
	if m, ok := final.(Model); ok {
		return m.err
	}
	return nil
}
