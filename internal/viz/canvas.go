package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const (
	blank   = 0x2800
	noOwner = -1
)

// Canvas is a Braille pixel grid. Every cell remembers which particle last
// drew into it so the renderer can colour it.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
	owner         [][]int
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
		owner:  make([][]int, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		c.owner[i] = make([]int, w)
	}
	c.Clear()
	return c
}

// SubWidth and SubHeight are the canvas size in Braille dots.
func (c *Canvas) SubWidth() int  { return c.Width * 2 }
func (c *Canvas) SubHeight() int { return c.Height * 4 }

// Set lights the dot at (x, y) in sub-pixel coordinates for particle id.
func (c *Canvas) Set(x, y, id int) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
	c.owner[row][col] = id
}

// DrawDisc fills a disc of radius r dots centred on (cx, cy). A radius below
// one still lights the centre dot.
func (c *Canvas) DrawDisc(cx, cy int, r float64, id int) {
	ri := int(r)
	r2 := r * r
	for dy := -ri; dy <= ri; dy++ {
		for dx := -ri; dx <= ri; dx++ {
			if float64(dx*dx+dy*dy) <= r2 {
				c.Set(cx+dx, cy+dy, id)
			}
		}
	}
	c.Set(cx, cy, id)
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
			c.owner[i][j] = noOwner
		}
	}
}

// Render joins the grid into lines, styling each lit cell with style(owner).
// A nil style renders plain text.
func (c *Canvas) Render(style func(id int) lipgloss.Style) string {
	var b strings.Builder
	for i, row := range c.Grid {
		for j, r := range row {
			if style == nil || r == blank || c.owner[i][j] == noOwner {
				b.WriteRune(r)
				continue
			}
			b.WriteString(style(c.owner[i][j]).Render(string(r)))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func (c *Canvas) String() string {
	return c.Render(nil)
}
