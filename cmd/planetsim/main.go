package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AntonZelenin/planet-gravity/internal/config"
	"github.com/AntonZelenin/planet-gravity/internal/gui"
	"github.com/AntonZelenin/planet-gravity/internal/gui/window"
	"github.com/AntonZelenin/planet-gravity/internal/metrics"
	"github.com/AntonZelenin/planet-gravity/internal/physics"
	"github.com/AntonZelenin/planet-gravity/internal/sim"
	"github.com/AntonZelenin/planet-gravity/internal/storage"
	"github.com/AntonZelenin/planet-gravity/internal/viz"
)

var (
	dataDir  string
	logLevel string

	configFile  string
	preset      string
	runName     string
	gravity     float64
	minDistance float64
	dt          float64
	steps       int
	sampleEvery int

	// live view and window
	fixedDt  float64
	speed    float64
	scale    float64
	noTrails bool
	gifPath  string

	// window
	windowScale  float64
	windowWidth  int
	windowHeight int
)

// main registers the planetsim commands and exits with status 1 when the
// selected command fails.
func main() {
	rootCmd := &cobra.Command{
		Use:           "planetsim",
		Short:         "gravitational n-body sandbox",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(logLevel)
			if err != nil {
				return err
			}
			slog.SetDefault(logger)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".planetsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation and store its trajectory",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addSceneFlags(runCmd)
	runCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	runCmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "number of ticks")
	runCmd.Flags().IntVar(&sampleEvery, "sample-every", config.DefaultSampleEvery, "store every n-th tick")
	runCmd.Flags().StringVar(&runName, "name", "", "run name (defaults to the scene name)")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run a simulation with live visualization",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addSceneFlags(liveCmd)
	liveCmd.Flags().Float64Var(&fixedDt, "fixed-dt", 0, "fixed timestep; 0 follows the wall clock")
	liveCmd.Flags().Float64Var(&speed, "speed", 1, "wall-clock speed factor")
	liveCmd.Flags().Float64Var(&scale, "scale", viz.DefaultScale, "world units per braille dot")
	liveCmd.Flags().BoolVar(&noTrails, "no-trails", false, "start with trails hidden")
	liveCmd.Flags().StringVar(&gifPath, "gif", "planets.gif", "recording output path")

	windowCmd := &cobra.Command{
		Use:   "window",
		Short: "run a simulation in a desktop window",
		Args:  cobra.NoArgs,
		RunE:  runWindow,
	}
	addSceneFlags(windowCmd)
	windowCmd.Flags().Float64Var(&fixedDt, "fixed-dt", 0, "fixed timestep; 0 follows the frame time")
	windowCmd.Flags().Float64Var(&speed, "speed", 1, "frame-time speed factor")
	windowCmd.Flags().Float64Var(&windowScale, "scale", 1, "world units per pixel")
	windowCmd.Flags().IntVar(&windowWidth, "width", gui.DefaultWidth, "window width")
	windowCmd.Flags().IntVar(&windowHeight, "height", gui.DefaultHeight, "window height")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in scenes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				p := config.Presets[name]
				fmt.Printf("  %-10s %d bodies, dt=%g, %d steps\n", name, len(p.Particles), p.Dt, p.Steps)
			}
			return nil
		},
	}

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write the reference scene as a config file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "planets.yaml"
			if len(args) > 0 {
				path = args[0]
			}
			cfg := config.DefaultConfig()
			if preset != "" {
				if cfg = config.GetPreset(preset); cfg == nil {
					return fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
				}
			}
			if err := config.Save(path, cfg); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().StringVar(&preset, "preset", "", "preset to write instead of the reference scene")

	rootCmd.AddCommand(runCmd, liveCmd, windowCmd, presetsCmd, initCmd)
	rootCmd.AddCommand(runCommands()...)
	rootCmd.AddCommand(batchCommands()...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		slog.Error("command failed", "err", err)
		os.Exit(1)
	}
}

func newLogger(level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})), nil
}

func addSceneFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use a built-in scene")
	cmd.Flags().Float64Var(&gravity, "gravity", physics.DefaultG, "gravitational constant")
	cmd.Flags().Float64Var(&minDistance, "min-distance", physics.DefaultMinDistance, "distance floor of the force law")
}

// loadScene resolves the scene in order preset, config file, reference scene,
// then applies any flag the user set explicitly.
func loadScene(cmd *cobra.Command) (*config.Config, error) {
	if preset != "" && configFile != "" {
		return nil, fmt.Errorf("--preset and --config are mutually exclusive")
	}

	cfg := config.DefaultConfig()
	switch {
	case preset != "":
		if cfg = config.GetPreset(preset); cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	case configFile != "":
		var err error
		if cfg, err = config.Load(configFile); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("gravity") {
		cfg.Gravity = gravity
	}
	if flags.Changed("min-distance") {
		cfg.MinDistance = minDistance
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("sample-every") {
		cfg.SampleEvery = sampleEvery
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadScene(cmd)
	if err != nil {
		return err
	}
	name := cfg.Name
	if runName != "" {
		name = runName
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	params := cfg.Params()
	s := sim.New(physics.NewStepper(params))
	for _, m := range metrics.Default(params) {
		s.AddMetric(m)
	}

	simCfg := cfg.SimConfig()
	slog.Info("starting run", "name", name, "bodies", len(cfg.Particles), "dt", simCfg.Dt, "steps", simCfg.Steps)

	result, err := s.Run(cmd.Context(), cfg.World(), simCfg)
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}
	for _, e := range result.Errors {
		slog.Warn("run stopped early", "err", e)
	}

	runID, err := st.Save(name, params, simCfg, result)
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}

	fmt.Printf("run: %s\n", runID)
	fmt.Printf("steps: %d/%d (t=%.3f)\n", result.StepsTaken, simCfg.Steps, float64(result.StepsTaken)*simCfg.Dt)
	fmt.Printf("samples: %d\n", len(result.Samples))
	fmt.Printf("energy: %.4f -> %.4f (drift %.3e)\n", result.InitialEnergy, result.FinalEnergy, result.EnergyDrift)
	fmt.Printf("momentum: (%.4f, %.4f, %.4f) -> (%.4f, %.4f, %.4f)\n",
		result.InitialMomentum.X, result.InitialMomentum.Y, result.InitialMomentum.Z,
		result.FinalMomentum.X, result.FinalMomentum.Y, result.FinalMomentum.Z)
	fmt.Println("metrics:")
	for _, k := range sortedKeys(result.Metrics) {
		fmt.Printf("  %-17s %.6g\n", k, result.Metrics[k])
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadScene(cmd)
	if err != nil {
		return err
	}

	opts := viz.DefaultOptions()
	opts.Name = cfg.Name
	opts.Dt = fixedDt
	opts.Speed = speed
	opts.Scale = scale
	opts.Trails = !noTrails
	opts.GIFPath = gifPath

	slog.Debug("starting live view", "name", cfg.Name, "fixed_dt", fixedDt, "speed", speed)
	return viz.Run(cfg.World(), physics.NewStepper(cfg.Params()), opts)
}

func runWindow(cmd *cobra.Command, args []string) error {
	cfg, err := loadScene(cmd)
	if err != nil {
		return err
	}

	opts := gui.DefaultOptions()
	opts.Title = "planetsim: " + cfg.Name
	opts.Dt = fixedDt
	opts.Speed = speed
	opts.Scale = windowScale
	opts.Width = windowWidth
	opts.Height = windowHeight

	slog.Debug("opening window", "name", cfg.Name, "fixed_dt", fixedDt, "speed", speed)
	return window.Run(gui.NewScene(cfg.World(), physics.NewStepper(cfg.Params()), opts))
}
