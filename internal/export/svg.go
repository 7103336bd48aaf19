package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/heft/internal/sim"
	"github.com/san-kum/heft/internal/viz"
)

const (
	background  = "#0a0a0a"
	dotColor    = "#00ff00"
	brailleBase = 0x2800
)

var brailleBits = [4][2]int{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

func header(sb *strings.Builder, width, height float64) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background)
}

// CanvasToSVG draws every lit Braille dot as a circle.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	var sb strings.Builder
	header(&sb, float64(canvas.Width)*scale*2, float64(canvas.Height)*scale*4)
	fmt.Fprintf(&sb, "<g fill=\"%s\">\n", dotColor)

	r := scale * 0.4
	for row := 0; row < canvas.Height; row++ {
		for col := 0; col < canvas.Width; col++ {
			cell := canvas.Grid[row][col]
			if cell < brailleBase {
				continue
			}
			pattern := int(cell - brailleBase)
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&brailleBits[dy][dx] == 0 {
						continue
					}
					cx := (float64(col*2+dx) + 0.5) * scale
					cy := (float64(row*4+dy) + 0.5) * scale
					fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", cx, cy, r)
				}
			}
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// Trace is one named polyline in world coordinates.
type Trace struct {
	Name   string
	Color  string
	Points []mgl64.Vec3
}

// HandTraces returns the tracked and the displayed primary anchor paths.
func HandTraces(rows []sim.LogEntry) []Trace {
	tracked := Trace{Name: "tracked", Color: "#00ffff"}
	shown := Trace{Name: "visible", Color: "#ffaa00"}
	for _, r := range rows {
		tracked.Points = append(tracked.Points, r.PrimaryTracked)
		shown.Points = append(shown.Points, r.PrimaryVisible)
	}
	return []Trace{tracked, shown}
}

func planeAxes(p mgl64.Vec3, plane viz.Plane) (float64, float64) {
	if plane == viz.Top {
		return p[0], p[2]
	}
	return p[0], p[1]
}

// TracesToSVG projects traces onto plane and draws them on shared axes with
// 10% padding. Traces with fewer than two points are skipped.
func TracesToSVG(traces []Trace, plane viz.Plane, width, height int) string {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	n := 0
	for _, tr := range traces {
		if len(tr.Points) < 2 {
			continue
		}
		for _, p := range tr.Points {
			x, y := planeAxes(p, plane)
			minX, maxX = math.Min(minX, x), math.Max(maxX, x)
			minY, maxY = math.Min(minY, y), math.Max(maxY, y)
		}
		n++
	}
	if n == 0 {
		return ""
	}

	rangeX, rangeY := maxX-minX, maxY-minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	var sb strings.Builder
	header(&sb, float64(width), float64(height))
	for i, tr := range traces {
		if len(tr.Points) < 2 {
			continue
		}
		fmt.Fprintf(&sb, `<path id="%s" fill="none" stroke="%s" stroke-width="1.5" d="`, tr.Name, tr.Color)
		for j, p := range tr.Points {
			px, py := planeAxes(p, plane)
			x := (px - minX) / rangeX * float64(width)
			y := float64(height) - (py-minY)/rangeY*float64(height)
			if j == 0 {
				fmt.Fprintf(&sb, "M%.1f,%.1f", x, y)
			} else {
				fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
			}
		}
		sb.WriteString("\"/>\n")
		fmt.Fprintf(&sb, "<text x=\"8\" y=\"%d\" fill=\"%s\" font-size=\"12\">%s</text>\n", 16*(i+1), tr.Color, tr.Name)
	}
	sb.WriteString("</svg>")
	return sb.String()
}
