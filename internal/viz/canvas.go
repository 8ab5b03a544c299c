package viz

import (
	"math"
	"strings"

	"github.com/einslab/sketchphys/internal/engine"
	"github.com/einslab/sketchphys/internal/scene"
	"github.com/einslab/sketchphys/internal/transform"
)

// Braille patterns pack 2x4 dots per terminal cell:
//
//	1 4
//	2 5
//	3 6
//	7 8
//
// Unicode offset 0x2800.
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// Canvas is a braille dot-matrix the live view draws scenes onto. Cell
// size Width x Height; drawable resolution (Width*2) x (Height*4)
// subpixels.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		for j := range c.Grid[i] {
			c.Grid[i][j] = 0x2800
		}
	}
	return c
}

// Size returns the drawable subpixel extent, the container size to hand
// to the coordinate transform.
func (c *Canvas) Size() transform.Size {
	return transform.Size{W: float64(c.Width * 2), H: float64(c.Height * 4)}
}

// Set lights the subpixel at (x, y). Out-of-range coordinates are ignored.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = 0x2800
		}
	}
}

// Line draws with Bresenham's algorithm in subpixel coordinates.
func (c *Canvas) Line(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// RectOutline draws the axis-aligned rectangle spanning the two corners.
func (c *Canvas) RectOutline(x0, y0, x1, y1 int) {
	c.Line(x0, y0, x1, y0)
	c.Line(x1, y0, x1, y1)
	c.Line(x1, y1, x0, y1)
	c.Line(x0, y1, x0, y0)
}

// CircleOutline draws a circle of subpixel radius r around (cx, cy).
func (c *Canvas) CircleOutline(cx, cy, r int) {
	if r <= 0 {
		c.Set(cx, cy)
		return
	}
	steps := 8 * r
	for i := 0; i < steps; i++ {
		a := 2 * math.Pi * float64(i) / float64(steps)
		c.Set(cx+int(float64(r)*math.Cos(a)), cy+int(float64(r)*math.Sin(a)))
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// DrawScene renders the engine's current body states and the scene's
// constraints through the given meters-to-canvas transform.
func (c *Canvas) DrawScene(e *engine.Engine, cons scene.Constraints, t transform.Canvas) {
	for _, b := range e.Bodies() {
		c.drawBody(b, t)
	}
	for _, con := range cons {
		switch cc := con.(type) {
		case *scene.IdealFixedPulley:
			a, b := e.Body(cc.BodyA), e.Body(cc.BodyB)
			if a == nil || b == nil {
				continue
			}
			anchor := t.ToCanvas(cc.PulleyAnchorM)
			pa := t.ToCanvas(a.Position())
			pb := t.ToCanvas(b.Position())
			c.Line(int(pa.X), int(pa.Y), int(anchor.X), int(anchor.Y))
			c.Line(int(anchor.X), int(anchor.Y), int(pb.X), int(pb.Y))
			c.CircleOutline(int(anchor.X), int(anchor.Y), int(cc.WheelRadiusM*t.MetersToPixels))
		case *scene.Rope, *scene.Distance, *scene.Spring:
			refs := con.BodyRefs()
			a, b := e.Body(refs[0]), e.Body(refs[1])
			if a == nil || b == nil {
				continue
			}
			pa := t.ToCanvas(a.Position())
			pb := t.ToCanvas(b.Position())
			c.Line(int(pa.X), int(pa.Y), int(pb.X), int(pb.Y))
		}
	}
}

func (c *Canvas) drawBody(b *engine.Body, t transform.Canvas) {
	box := b.AABB()
	min := t.ToCanvas(box.Min)
	max := t.ToCanvas(box.Max)
	// Canvas Y is inverted relative to meters, so min/max swap on Y.
	c.RectOutline(int(min.X), int(max.Y), int(max.X), int(min.Y))
	center := t.ToCanvas(b.Position())
	c.Set(int(center.X), int(center.Y))
}
