package analysis

import (
	"strings"

	"github.com/AntonZelenin/planet-gravity/internal/sim"
)

type bounds struct {
	minX, maxX, minY, maxY float64
}

func sampleBounds(samples []sim.Sample) (bounds, bool) {
	var b bounds
	found := false
	for _, s := range samples {
		for _, p := range s.Positions {
			if !found {
				b = bounds{p.X, p.X, p.Y, p.Y}
				found = true
				continue
			}
			b.minX = min(b.minX, p.X)
			b.maxX = max(b.maxX, p.X)
			b.minY = min(b.minY, p.Y)
			b.maxY = max(b.maxY, p.Y)
		}
	}
	if !found {
		return b, false
	}

	rangeX := b.maxX - b.minX
	rangeY := b.maxY - b.minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	b.minX -= rangeX * 0.05
	b.maxX += rangeX * 0.05
	b.minY -= rangeY * 0.05
	b.maxY += rangeY * 0.05
	return b, true
}

// RenderOrbits draws every particle's path in the x-y plane. Paths are dotted
// and each particle's last sampled position is marked with its index (mod 10).
func RenderOrbits(samples []sim.Sample, width, height int) string {
	b, ok := sampleBounds(samples)
	if !ok || width < 2 || height < 2 {
		return ""
	}
	rangeX := b.maxX - b.minX
	rangeY := b.maxY - b.minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	cell := func(x, y float64) (int, int, bool) {
		col := int((x - b.minX) / rangeX * float64(width-1))
		row := height - 1 - int((y-b.minY)/rangeY*float64(height-1))
		return row, col, row >= 0 && row < height && col >= 0 && col < width
	}

	if b.minX <= 0 && b.maxX >= 0 {
		if _, col, ok := cell(0, b.minY); ok {
			for row := 0; row < height; row++ {
				canvas[row][col] = '│'
			}
		}
	}
	if b.minY <= 0 && b.maxY >= 0 {
		if row, _, ok := cell(b.minX, 0); ok {
			for col := 0; col < width; col++ {
				if canvas[row][col] == '│' {
					canvas[row][col] = '┼'
				} else {
					canvas[row][col] = '─'
				}
			}
		}
	}

	for _, s := range samples {
		for _, p := range s.Positions {
			if row, col, ok := cell(p.X, p.Y); ok {
				canvas[row][col] = '·'
			}
		}
	}

	last := samples[len(samples)-1]
	for i, p := range last.Positions {
		if row, col, ok := cell(p.X, p.Y); ok {
			canvas[row][col] = rune('0' + i%10)
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
