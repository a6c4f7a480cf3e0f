package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/AntonZelenin/planet-gravity/internal/physics"
	"github.com/AntonZelenin/planet-gravity/internal/sim"
)

const (
	metadataFile = "metadata.json"
	statesFile   = "states.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	Timestamp     time.Time          `json:"timestamp"`
	Gravity       float64            `json:"gravity"`
	MinDistance   float64            `json:"min_distance"`
	Dt            float64            `json:"dt"`
	Steps         int                `json:"steps"`
	StepsTaken    int                `json:"steps_taken"`
	SampleEvery   int                `json:"sample_every"`
	Masses        []float64          `json:"masses"`
	InitialEnergy float64            `json:"initial_energy"`
	FinalEnergy   float64            `json:"final_energy"`
	Metrics       map[string]float64 `json:"metrics"`
	Errors        []string           `json:"errors,omitempty"`
}

// Duration is the simulated time actually covered by the run.
func (m *RunMetadata) Duration() float64 {
	return float64(m.StepsTaken) * m.Dt
}

// Save writes the run under a new directory and returns its id.
func (s *Store) Save(name string, params physics.Params, cfg sim.Config, result *sim.Result) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", sanitize(name), now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:            runID,
		Name:          name,
		Timestamp:     now,
		Gravity:       params.G,
		MinDistance:   params.MinDistance,
		Dt:            cfg.Dt,
		Steps:         cfg.Steps,
		StepsTaken:    result.StepsTaken,
		SampleEvery:   cfg.SampleEvery,
		Masses:        result.Masses,
		InitialEnergy: jsonSafe(result.InitialEnergy),
		FinalEnergy:   jsonSafe(result.FinalEnergy),
		Metrics:       make(map[string]float64, len(result.Metrics)),
	}
	for k, v := range result.Metrics {
		meta.Metrics[k] = jsonSafe(v)
	}
	for _, err := range result.Errors {
		meta.Errors = append(meta.Errors, err.Error())
	}

	if err := writeMetadata(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeStates(filepath.Join(runDir, statesFile), len(result.Masses), result.Samples); err != nil {
		return "", err
	}

	return runID, nil
}

// jsonSafe zeroes NaN and Inf, which encoding/json rejects. A diverged run
// already carries the reason in Errors.
func jsonSafe(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func sanitize(name string) string {
	if name == "" {
		return "run"
	}
	return strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == ' ' {
			return '_'
		}
		return r
	}, name)
}

func writeMetadata(path string, meta RunMetadata) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func writeStates(path string, n int, samples []sim.Sample) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)

	header := []string{"step", "time"}
	for i := 0; i < n; i++ {
		for _, c := range []string{"x", "y", "z", "vx", "vy", "vz"} {
			header = append(header, fmt.Sprintf("p%d_%s", i, c))
		}
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, smp := range samples {
		row := make([]string, 0, 2+6*n)
		row = append(row, strconv.Itoa(smp.Step), formatFloat(smp.Time))
		for i := 0; i < n; i++ {
			p, v := smp.Positions[i], smp.Velocities[i]
			row = append(row,
				formatFloat(p.X), formatFloat(p.Y), formatFloat(p.Z),
				formatFloat(v.X), formatFloat(v.Y), formatFloat(v.Z),
			)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// List returns stored runs, oldest first. Directories without readable
// metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("decode metadata for %s: %w", runID, err)
	}

	return &meta, nil
}

// LoadStates reads the sampled trajectory back.
func (s *Store) LoadStates(runID string) ([]sim.Sample, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, statesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(records) < 2 {
		return []sim.Sample{}, nil
	}

	cols := len(records[0])
	if cols < 2 || (cols-2)%6 != 0 {
		return nil, fmt.Errorf("%s: unexpected column count %d", statesFile, cols)
	}
	n := (cols - 2) / 6

	samples := make([]sim.Sample, 0, len(records)-1)
	for lineNo, record := range records[1:] {
		vals := make([]float64, len(record)-1)
		for j := 1; j < len(record); j++ {
			vals[j-1], err = strconv.ParseFloat(record[j], 64)
			if err != nil {
				return nil, fmt.Errorf("%s line %d: %w", statesFile, lineNo+2, err)
			}
		}
		step, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", statesFile, lineNo+2, err)
		}

		smp := sim.Sample{
			Step:       step,
			Time:       vals[0],
			Positions:  make([]r3.Vec, n),
			Velocities: make([]r3.Vec, n),
		}
		for i := 0; i < n; i++ {
			o := 1 + i*6
			smp.Positions[i] = r3.Vec{X: vals[o], Y: vals[o+1], Z: vals[o+2]}
			smp.Velocities[i] = r3.Vec{X: vals[o+3], Y: vals[o+4], Z: vals[o+5]}
		}
		samples = append(samples, smp)
	}

	return samples, nil
}
