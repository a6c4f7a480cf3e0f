package automation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/AntonZelenin/planet-gravity/internal/config"
	"github.com/AntonZelenin/planet-gravity/internal/metrics"
	"github.com/AntonZelenin/planet-gravity/internal/physics"
	"github.com/AntonZelenin/planet-gravity/internal/sim"
)

var ErrScenario = errors.New("invalid scenario")

// Scenario is a scripted sequence of runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`

	baseDir string
}

// ScenarioStep names a preset or a config file and optional overrides. Unset
// overrides keep the source value; min_distance: 0 disables the clamp.
type ScenarioStep struct {
	Preset      string   `yaml:"preset"`
	Config      string   `yaml:"config"`
	Gravity     *float64 `yaml:"gravity"`
	MinDistance *float64 `yaml:"min_distance"`
	Dt          *float64 `yaml:"dt"`
	Steps       *int     `yaml:"steps"`
	SaveAs      string   `yaml:"save_as"`
}

// Saver persists a finished run; *storage.Store implements it.
type Saver interface {
	Save(name string, params physics.Params, cfg sim.Config, result *sim.Result) (string, error)
}

type StepResult struct {
	Name   string
	RunID  string
	Result *sim.Result
}

// LoadScenario reads a scenario file. Relative config paths inside it are
// resolved against the file's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if len(sc.Steps) == 0 {
		return nil, fmt.Errorf("%w: %s has no steps", ErrScenario, path)
	}
	sc.baseDir = filepath.Dir(path)
	return &sc, nil
}

// Resolve builds the validated run config for one step.
func (st ScenarioStep) Resolve(baseDir string) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case st.Preset != "" && st.Config != "":
		return nil, fmt.Errorf("%w: preset and config are mutually exclusive", ErrScenario)
	case st.Preset != "":
		cfg = config.GetPreset(st.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("%w: unknown preset %q", ErrScenario, st.Preset)
		}
	case st.Config != "":
		path := st.Config
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	default:
		cfg = config.DefaultConfig()
	}

	if st.Gravity != nil {
		cfg.Gravity = *st.Gravity
	}
	if st.MinDistance != nil {
		cfg.MinDistance = *st.MinDistance
	}
	if st.Dt != nil {
		cfg.Dt = *st.Dt
	}
	if st.Steps != nil {
		cfg.Steps = *st.Steps
	}
	if st.SaveAs != "" {
		cfg.Name = st.SaveAs
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// RunScenario executes the steps in order. Steps with save_as are persisted
// through saver when it is non-nil. The results gathered so far are returned
// alongside the first error.
func RunScenario(ctx context.Context, sc *Scenario, saver Saver, logger *slog.Logger) ([]StepResult, error) {
	if logger == nil {
		logger = slog.Default()
	}
	results := make([]StepResult, 0, len(sc.Steps))

	for i, step := range sc.Steps {
		cfg, err := step.Resolve(sc.baseDir)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		logger.Info("scenario step", "step", i+1, "of", len(sc.Steps), "name", cfg.Name, "particles", len(cfg.Particles))

		params := cfg.Params()
		s := sim.New(physics.NewStepper(params))
		for _, m := range metrics.Default(params) {
			s.AddMetric(m)
		}

		simCfg := cfg.SimConfig()
		result, err := s.Run(ctx, cfg.World(), simCfg)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		sr := StepResult{Name: cfg.Name, Result: result}
		if step.SaveAs != "" && saver != nil {
			if sr.RunID, err = saver.Save(step.SaveAs, params, simCfg, result); err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
			logger.Debug("saved run", "id", sr.RunID)
		}
		results = append(results, sr)
	}

	return results, nil
}
