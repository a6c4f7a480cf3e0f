package viz

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	minScale = 0.25
	maxScale = 200
)

// Camera maps world x-y coordinates onto canvas dots. Scale is world units
// per dot; world y grows upwards, canvas rows grow downwards.
type Camera struct {
	Center r3.Vec
	Scale  float64
}

func NewCamera(scale float64) *Camera {
	if scale <= 0 {
		scale = DefaultScale
	}
	return &Camera{Scale: scale}
}

// Project returns the dot position of p on a canvas of w×h dots.
func (c *Camera) Project(p r3.Vec, w, h int) (int, int) {
	x := float64(w)/2 + (p.X-c.Center.X)/c.Scale
	y := float64(h)/2 - (p.Y-c.Center.Y)/c.Scale
	return int(math.Round(x)), int(math.Round(y))
}

func (c *Camera) ZoomIn()  { c.Scale = math.Max(minScale, c.Scale/1.25) }
func (c *Camera) ZoomOut() { c.Scale = math.Min(maxScale, c.Scale*1.25) }
