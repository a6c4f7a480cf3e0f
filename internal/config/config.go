package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"

	"github.com/AntonZelenin/planet-gravity/internal/physics"
	"github.com/AntonZelenin/planet-gravity/internal/sim"
	"github.com/AntonZelenin/planet-gravity/internal/world"
)

const (
	DefaultDt          = 1.0 / 60
	DefaultSteps       = 2000
	DefaultSampleEvery = 4
)

type Config struct {
	Name        string           `yaml:"name"`
	Gravity     float64          `yaml:"gravity"`
	MinDistance float64          `yaml:"min_distance"`
	Dt          float64          `yaml:"dt"`
	Steps       int              `yaml:"steps"`
	SampleEvery int              `yaml:"sample_every"`
	Particles   []ParticleConfig `yaml:"particles"`
}

// ParticleConfig accepts two- or three-component vectors; a missing z is zero.
type ParticleConfig struct {
	Mass     float64   `yaml:"mass"`
	Position []float64 `yaml:"position,flow"`
	Velocity []float64 `yaml:"velocity,flow"`
}

// DefaultConfig is the four-body reference setup: one heavy body and three
// light ones.
func DefaultConfig() *Config {
	return &Config{
		Name:        "reference",
		Gravity:     physics.DefaultG,
		MinDistance: physics.DefaultMinDistance,
		Dt:          DefaultDt,
		Steps:       DefaultSteps,
		SampleEvery: DefaultSampleEvery,
		Particles: []ParticleConfig{
			{Mass: 18, Position: []float64{0, 0, 0}, Velocity: []float64{0, -5, 0}},
			{Mass: 4, Position: []float64{250, 50, 0}, Velocity: []float64{0, 55, 0}},
			{Mass: 2, Position: []float64{-200, 50, 0}, Velocity: []float64{0, -60, 0}},
			{Mass: 1, Position: []float64{250, 5, 0}, Velocity: []float64{50, 55, 0}},
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate reports every problem with the scenario at once.
func (c *Config) Validate() error {
	var errs []error

	if err := c.Params().Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Dt <= 0 || math.IsNaN(c.Dt) || math.IsInf(c.Dt, 0) {
		errs = append(errs, fmt.Errorf("%w: dt must be positive, got %v", physics.ErrInvalidTimestep, c.Dt))
	}
	if c.Steps <= 0 {
		errs = append(errs, fmt.Errorf("steps must be positive, got %d", c.Steps))
	}
	if c.SampleEvery < 0 {
		errs = append(errs, fmt.Errorf("sample_every must not be negative, got %d", c.SampleEvery))
	}
	if len(c.Particles) == 0 {
		errs = append(errs, errors.New("at least one particle is required"))
	}

	for i, p := range c.Particles {
		if p.Mass <= 0 || math.IsNaN(p.Mass) || math.IsInf(p.Mass, 0) {
			errs = append(errs, fmt.Errorf("particle %d: %w, got %v", i, physics.ErrInvalidMass, p.Mass))
		}
		if err := checkVec(p.Position); err != nil {
			errs = append(errs, fmt.Errorf("particle %d position: %w", i, err))
		}
		if err := checkVec(p.Velocity); err != nil {
			errs = append(errs, fmt.Errorf("particle %d velocity: %w", i, err))
		}
	}

	return errors.Join(errs...)
}

func checkVec(v []float64) error {
	if len(v) != 0 && len(v) != 2 && len(v) != 3 {
		return fmt.Errorf("expected 2 or 3 components, got %d", len(v))
	}
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return errors.New("components must be finite")
		}
	}
	return nil
}

func toVec(v []float64) r3.Vec {
	var out r3.Vec
	if len(v) > 0 {
		out.X = v[0]
	}
	if len(v) > 1 {
		out.Y = v[1]
	}
	if len(v) > 2 {
		out.Z = v[2]
	}
	return out
}

func (c *Config) Params() physics.Params {
	return physics.Params{G: c.Gravity, MinDistance: c.MinDistance}
}

func (c *Config) Specs() []world.Spec {
	specs := make([]world.Spec, len(c.Particles))
	for i, p := range c.Particles {
		specs[i] = world.Spec{
			Mass:     p.Mass,
			Position: toVec(p.Position),
			Velocity: toVec(p.Velocity),
		}
	}
	return specs
}

// World builds the initial world. Call Validate first; masses are not
// rechecked here.
func (c *Config) World() *world.World {
	return world.New(c.Specs()...)
}

func (c *Config) SimConfig() sim.Config {
	sampleEvery := c.SampleEvery
	if sampleEvery == 0 {
		sampleEvery = 1
	}
	return sim.Config{
		Dt:            c.Dt,
		Steps:         c.Steps,
		SampleEvery:   sampleEvery,
		ValidateState: true,
	}
}

// Clone returns a deep copy, so presets can be overridden without touching
// the shared table.
func (c *Config) Clone() *Config {
	out := *c
	out.Particles = make([]ParticleConfig, len(c.Particles))
	for i, p := range c.Particles {
		out.Particles[i] = ParticleConfig{
			Mass:     p.Mass,
			Position: append([]float64(nil), p.Position...),
			Velocity: append([]float64(nil), p.Velocity...),
		}
	}
	return &out
}
