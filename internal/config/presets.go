package config

import "sort"

var Presets = map[string]*Config{
	"reference": DefaultConfig(),
	"binary": {
		Name: "binary", Gravity: 40000, MinDistance: 10, Dt: 0.001, Steps: 30000, SampleEvery: 50,
		Particles: []ParticleConfig{
			{Mass: 18, Position: []float64{0, 0, 0}, Velocity: []float64{0, -5, 0}},
			{Mass: 4, Position: []float64{250, 50, 0}, Velocity: []float64{0, 55, 0}},
		},
	},
	"pair": {
		Name: "pair", Gravity: 40000, MinDistance: 10, Dt: 1, Steps: 1, SampleEvery: 1,
		Particles: []ParticleConfig{
			{Mass: 18, Position: []float64{0, 0, 0}, Velocity: []float64{0, -5, 0}},
			{Mass: 4, Position: []float64{250, 50, 0}, Velocity: []float64{0, 55, 0}},
		},
	},
	"plunge": {
		Name: "plunge", Gravity: 40000, MinDistance: 10, Dt: 0.001, Steps: 5000, SampleEvery: 10,
		Particles: []ParticleConfig{
			{Mass: 18, Position: []float64{0, 0, 0}, Velocity: []float64{0, 0, 0}},
			{Mass: 1, Position: []float64{150, 0, 0}, Velocity: []float64{0, 0, 0}},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
