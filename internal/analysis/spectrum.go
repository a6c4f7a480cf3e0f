package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/AntonZelenin/planet-gravity/internal/sim"
)

type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	default:
		return "?"
	}
}

// Component returns the coordinate of v along a.
func Component(v r3.Vec, a Axis) float64 {
	switch a {
	case AxisY:
		return v.Y
	case AxisZ:
		return v.Z
	default:
		return v.X
	}
}

// Uniform keeps the samples whose step lies on the every-th tick grid. A run
// also stores its last tick, which is usually off that grid and would skew
// a spectrum that assumes even spacing.
func Uniform(samples []sim.Sample, every int) []sim.Sample {
	if every < 1 {
		every = 1
	}
	out := make([]sim.Sample, 0, len(samples))
	for _, s := range samples {
		if s.Step%every == 0 {
			out = append(out, s)
		}
	}
	return out
}

// RelativeSeries extracts one position coordinate of particle i, measured from
// the system's centre of mass at each sample. Removing the centre of mass
// strips the uniform drift of the whole system so only orbital motion is left.
func RelativeSeries(samples []sim.Sample, masses []float64, i int, axis Axis) []float64 {
	total := 0.0
	for _, m := range masses {
		total += m
	}

	out := make([]float64, 0, len(samples))
	for _, s := range samples {
		if i >= len(s.Positions) {
			return nil
		}
		var com r3.Vec
		if total > 0 {
			for j, m := range masses {
				if j < len(s.Positions) {
					com = r3.Add(com, r3.Scale(m/total, s.Positions[j]))
				}
			}
		}
		out = append(out, Component(r3.Sub(s.Positions[i], com), axis))
	}
	return out
}

// PowerSpectrum returns |X[k]| for k in [0, n/2) after removing the mean.
func PowerSpectrum(data []float64) []float64 {
	n := len(data)
	if n < 2 {
		return nil
	}

	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(n)

	centred := make([]float64, n)
	for i, v := range data {
		centred[i] = v - mean
	}

	spectrum := fft.FFTReal(centred)
	ps := make([]float64, n/2)
	for k := range ps {
		ps[k] = cmplx.Abs(spectrum[k])
	}
	return ps
}

// DominantPeriod returns the period of the strongest non-constant frequency in
// data sampled every sampleDt. It reports false when the series is too short
// or flat.
func DominantPeriod(data []float64, sampleDt float64) (float64, bool) {
	ps := PowerSpectrum(data)
	if len(ps) < 2 || sampleDt <= 0 {
		return 0, false
	}

	maxIdx, maxPower := 0, 0.0
	for k := 1; k < len(ps); k++ {
		if ps[k] > maxPower {
			maxPower = ps[k]
			maxIdx = k
		}
	}
	if maxIdx == 0 || maxPower < 1e-12 {
		return 0, false
	}

	freq := float64(maxIdx) / (float64(len(data)) * sampleDt)
	return 1 / freq, true
}
