// Package export renders stored runs as standalone SVG images.
package export

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/AntonZelenin/planet-gravity/internal/sim"
)

const (
	background = "#0a0a0a"
	primary    = "#ffa500"
	secondary  = "#40e0d0"
)

var ErrNoSamples = errors.New("no samples to draw")

type frame struct {
	minX, minY, rangeX, rangeY float64
	width, height              int
}

func newFrame(samples []sim.Sample, width, height int) frame {
	first := true
	var minX, maxX, minY, maxY float64
	for _, s := range samples {
		for _, p := range s.Positions {
			if first {
				minX, maxX, minY, maxY = p.X, p.X, p.Y, p.Y
				first = false
				continue
			}
			minX, maxX = min(minX, p.X), max(maxX, p.X)
			minY, maxY = min(minY, p.Y), max(maxY, p.Y)
		}
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	// Equal scale on both axes so orbits keep their shape.
	if rangeX/float64(width) > rangeY/float64(height) {
		rangeY = rangeX * float64(height) / float64(width)
	} else {
		rangeX = rangeY * float64(width) / float64(height)
	}
	cx, cy := (minX+maxX)/2, (minY+maxY)/2
	rangeX *= 1.2
	rangeY *= 1.2

	return frame{
		minX: cx - rangeX/2, minY: cy - rangeY/2,
		rangeX: rangeX, rangeY: rangeY,
		width: width, height: height,
	}
}

func (f frame) project(x, y float64) (float64, float64) {
	return (x - f.minX) / f.rangeX * float64(f.width),
		float64(f.height) - (y-f.minY)/f.rangeY*float64(f.height)
}

// OrbitsSVG writes the x-y path of every particle as one SVG document. The
// first particle is drawn orange, the rest turquoise; each path ends in a
// disc whose radius grows with mass when masses is non-nil.
func OrbitsSVG(w io.Writer, samples []sim.Sample, masses []float64, width, height int) error {
	if len(samples) == 0 || len(samples[0].Positions) == 0 {
		return ErrNoSamples
	}
	f := newFrame(samples, width, height)

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background)

	n := len(samples[0].Positions)
	for i := 0; i < n; i++ {
		color := secondary
		if i == 0 {
			color = primary
		}

		fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" stroke-opacity="0.6" d="`, color)
		for j, s := range samples {
			if i >= len(s.Positions) {
				break
			}
			x, y := f.project(s.Positions[i].X, s.Positions[i].Y)
			if j == 0 {
				fmt.Fprintf(&sb, "M%.1f,%.1f", x, y)
			} else {
				fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
			}
		}
		sb.WriteString("\"/>\n")

		last := samples[len(samples)-1].Positions[i]
		x, y := f.project(last.X, last.Y)
		r := 3.0
		if i < len(masses) {
			r = 2 + masses[i]/2
		}
		fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>`+"\n", x, y, r, color)
	}

	sb.WriteString("</svg>\n")
	_, err := io.WriteString(w, sb.String())
	return err
}
