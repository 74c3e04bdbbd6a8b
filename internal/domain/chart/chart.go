// Package chart maps value series onto a fixed SVG canvas and draws smooth
// curves through the resulting points.
package chart

import (
	"strconv"
	"strings"
)

type Config struct {
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	PadLeft   float64 `json:"padLeft"`
	PadRight  float64 `json:"padRight"`
	PadTop    float64 `json:"padTop"`
	PadBottom float64 `json:"padBottom"`
}

// DefaultConfig is the 320x140 canvas used by the home page line charts.
func DefaultConfig() Config {
	return Config{
		Width:     320,
		Height:    140,
		PadLeft:   36,
		PadRight:  12,
		PadTop:    14,
		PadBottom: 28,
	}
}

func (c Config) PlotSize() (width, height float64) {
	return c.Width - c.PadLeft - c.PadRight, c.Height - c.PadTop - c.PadBottom
}

// Baseline is the y coordinate of a zero value.
func (c Config) Baseline() float64 {
	_, plotH := c.PlotSize()
	return c.PadTop + plotH
}

type Datum struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

type Point struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Label string  `json:"label"`
	Value int     `json:"value"`
}

// MaxValue is the largest value in series, never below 1.
func MaxValue(series []Datum) int {
	m := 1
	for _, d := range series {
		m = max(m, d.Value)
	}
	return m
}

// LayoutPoints spreads series evenly across the plot width. y grows
// downwards, so maxValue lands on PadTop and zero on the baseline. A single
// point sits on the left padding edge.
func (c Config) LayoutPoints(series []Datum, maxValue int) []Point {
	if len(series) == 0 {
		return []Point{}
	}
	maxValue = max(maxValue, 1)
	plotW, plotH := c.PlotSize()

	step := 0.0
	if len(series) > 1 {
		step = plotW / float64(len(series)-1)
	}
	out := make([]Point, 0, len(series))
	for i, d := range series {
		out = append(out, Point{
			X:     c.PadLeft + step*float64(i),
			Y:     c.PadTop + plotH - (float64(d.Value)/float64(maxValue))*plotH,
			Label: d.Label,
			Value: d.Value,
		})
	}
	return out
}

// SmoothPath draws cubic Bézier segments through every point. Control
// points come from the neighbouring points (Catmull-Rom tangents), with the
// neighbours clamped at both ends.
func SmoothPath(points []Point) string {
	switch len(points) {
	case 0:
		return ""
	case 1:
		return "M " + coords(points[0].X, points[0].Y)
	}

	var b strings.Builder
	b.WriteString("M ")
	b.WriteString(coords(points[0].X, points[0].Y))
	last := len(points) - 1
	for i := 0; i < last; i++ {
		p0 := points[max(0, i-1)]
		p1 := points[i]
		p2 := points[i+1]
		p3 := points[min(last, i+2)]

		cp1x := p1.X + (p2.X-p0.X)/6
		cp1y := p1.Y + (p2.Y-p0.Y)/6
		cp2x := p2.X - (p3.X-p1.X)/6
		cp2y := p2.Y - (p3.Y-p1.Y)/6

		b.WriteString(" C ")
		b.WriteString(coords(cp1x, cp1y))
		b.WriteByte(' ')
		b.WriteString(coords(cp2x, cp2y))
		b.WriteByte(' ')
		b.WriteString(coords(p2.X, p2.Y))
	}
	return b.String()
}

// SmoothAreaPath closes the smooth curve down to bottomY for a filled area.
// Fewer than two points have no area.
func SmoothAreaPath(points []Point, bottomY float64) string {
	if len(points) < 2 {
		return ""
	}
	first, last := points[0], points[len(points)-1]
	return SmoothPath(points) +
		" L " + coords(last.X, bottomY) +
		" L " + coords(first.X, bottomY) +
		" Z"
}

func coords(x, y float64) string {
	return num(x) + " " + num(y)
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// MonthLabels are the x axis labels of the monthly chart.
var MonthLabels = [12]string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11", "12"}

// MonthlySeries turns twelve monthly counts into a labelled series.
func MonthlySeries(counts [12]int) []Datum {
	out := make([]Datum, 0, len(counts))
	for i, c := range counts {
		out = append(out, Datum{Label: MonthLabels[i], Value: c})
	}
	return out
}

// Line bundles everything a client needs to draw one line chart.
type Line struct {
	Points   []Point `json:"points"`
	Path     string  `json:"path"`
	AreaPath string  `json:"areaPath"`
	MaxValue int     `json:"maxValue"`
	Config   Config  `json:"config"`
}

func (c Config) Line(series []Datum) Line {
	maxValue := MaxValue(series)
	points := c.LayoutPoints(series, maxValue)
	return Line{
		Points:   points,
		Path:     SmoothPath(points),
		AreaPath: SmoothAreaPath(points, c.Baseline()),
		MaxValue: maxValue,
		Config:   c,
	}
}
