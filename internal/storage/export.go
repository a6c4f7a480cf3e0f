package storage

import (
	"encoding/json"
	"io"

	"github.com/AntonZelenin/planet-gravity/internal/sim"
)

type ExportData struct {
	Run     RunMetadata    `json:"run"`
	Samples []ExportSample `json:"samples"`
}

type ExportSample struct {
	Step       int          `json:"step"`
	Time       float64      `json:"time"`
	Positions  [][3]float64 `json:"positions"`
	Velocities [][3]float64 `json:"velocities"`
}

// ExportJSON writes a run's metadata and full sampled trajectory as one JSON
// document.
func ExportJSON(w io.Writer, meta RunMetadata, samples []sim.Sample) error {
	data := ExportData{
		Run:     meta,
		Samples: make([]ExportSample, len(samples)),
	}

	for i, s := range samples {
		es := ExportSample{
			Step:       s.Step,
			Time:       s.Time,
			Positions:  make([][3]float64, len(s.Positions)),
			Velocities: make([][3]float64, len(s.Velocities)),
		}
		for j, p := range s.Positions {
			es.Positions[j] = [3]float64{p.X, p.Y, p.Z}
		}
		for j, v := range s.Velocities {
			es.Velocities[j] = [3]float64{v.X, v.Y, v.Z}
		}
		data.Samples[i] = es
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
