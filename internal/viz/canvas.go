package viz

import (
	"math"
	"strings"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
)

const brailleBlank = 0x2800

// Braille dots per cell, 2 wide by 4 high:
//
//	1 4
//	2 5
//	3 6
//	7 8
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// Canvas is a grid of Braille cells addressed in dots: Width*2 by
// Height*4.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{Width: w, Height: h, Grid: make([][]rune, h)}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

// IsSet reports whether the dot at (x, y) is lit.
func (c *Canvas) IsSet(x, y int) bool {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return false
	}
	return c.Grid[y/4][x/2]&rune(pixelMap[y%4][x%2]) != 0
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
		}
	}
}

// DrawLine is Bresenham.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx, dy := absInt(x1-x0), absInt(y1-y0)
	sx, sy := -1, -1
	if x0 < x1 {
		sx = 1
	}
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy
	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
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

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

type Plane int

const (
	// Side looks along +Z: x to the right, y up.
	Side Plane = iota
	// Top looks down: x to the right, z up the screen.
	Top
)

func (p Plane) String() string {
	if p == Top {
		return "top"
	}
	return "side"
}

// Scene maps a world region onto a canvas.
type Scene struct {
	Canvas *Canvas
	Plane  Plane
	min    [2]float64
	max    [2]float64
}

// NewScene frames the region between lo and hi, keeping the aspect ratio of
// the world (a Braille dot is about twice as tall as it is wide on screen).
func NewScene(w, h int, plane Plane, lo, hi mgl64.Vec3) *Scene {
	s := &Scene{Canvas: NewCanvas(w, h), Plane: plane}
	a, b := s.axes(lo), s.axes(hi)
	s.min, s.max = a, b
	spanX, spanY := b[0]-a[0], b[1]-a[1]
	dotsX, dotsY := float64(w*2), float64(h*4)
	scale := math.Max(spanX/dotsX, spanY/dotsY)
	cx, cy := (a[0]+b[0])/2, (a[1]+b[1])/2
	s.min = [2]float64{cx - scale*dotsX/2, cy - scale*dotsY/2}
	s.max = [2]float64{cx + scale*dotsX/2, cy + scale*dotsY/2}
	return s
}

func (s *Scene) axes(p mgl64.Vec3) [2]float64 {
	if s.Plane == Top {
		return [2]float64{p[0], p[2]}
	}
	return [2]float64{p[0], p[1]}
}

// Project returns the dot a world point falls on.
func (s *Scene) Project(p mgl64.Vec3) (int, int) {
	a := s.axes(p)
	dotsX, dotsY := float64(s.Canvas.Width*2), float64(s.Canvas.Height*4)
	x := (a[0] - s.min[0]) / (s.max[0] - s.min[0]) * dotsX
	y := (s.max[1] - a[1]) / (s.max[1] - s.min[1]) * dotsY
	return int(math.Floor(x)), int(math.Floor(y))
}

func (s *Scene) Point(p mgl64.Vec3) {
	s.Canvas.Set(s.Project(p))
}

func (s *Scene) Line(a, b mgl64.Vec3) {
	x0, y0 := s.Project(a)
	x1, y1 := s.Project(b)
	s.Canvas.DrawLine(x0, y0, x1, y1)
}

// Marker draws a small cross.
func (s *Scene) Marker(p mgl64.Vec3) {
	x, y := s.Project(p)
	for d := -1; d <= 1; d++ {
		s.Canvas.Set(x+d, y)
		s.Canvas.Set(x, y+d)
	}
}

// Box outlines a volume.
func (s *Scene) Box(b cube.BBox) {
	lo, hi := b.Min(), b.Max()
	x0, y0 := s.Project(lo)
	x1, y1 := s.Project(hi)
	s.Canvas.DrawLine(x0, y0, x1, y0)
	s.Canvas.DrawLine(x1, y0, x1, y1)
	s.Canvas.DrawLine(x1, y1, x0, y1)
	s.Canvas.DrawLine(x0, y1, x0, y0)
}

// Path joins consecutive points.
func (s *Scene) Path(points []mgl64.Vec3) {
	for i := 1; i < len(points); i++ {
		s.Line(points[i-1], points[i])
	}
}

func (s *Scene) Clear() { s.Canvas.Clear() }

func (s *Scene) String() string { return s.Canvas.String() }
