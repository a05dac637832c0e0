// Package chart projects numeric series onto chart coordinates and renders
// them for the terminal and for HTML export.
package chart

import (
	"fmt"
	"strings"

	"helios/internal/domain"
)

// DefaultHeight is the vertical extent, in chart units, used by both the
// stock chart and the equity chart.
const DefaultHeight = 24

// topMargin reserves space above the highest point.
const topMargin = 2

// Point is a projected coordinate: X in percent of width, Y in chart units
// growing downward.
type Point struct {
	X float64
	Y float64
}

// Line is a straight segment in chart coordinates.
type Line struct {
	X1, Y1, X2, Y2 float64
}

// Projection is the chart-space rendering of a series: the projected
// polyline plus a flat baseline axis at the chart height.
type Projection struct {
	Points []Point
	Axis   Line
	Min    float64
	Max    float64
	Height float64
}

// Empty reports whether there is nothing to draw besides the axis.
func (p Projection) Empty() bool { return len(p.Points) == 0 }

// Polyline formats the points as "x,y x,y ..." with two decimals.
func (p Projection) Polyline() string {
	parts := make([]string, len(p.Points))
	for i, pt := range p.Points {
		parts[i] = fmt.Sprintf("%.2f,%.2f", pt.X, pt.Y)
	}
	return strings.Join(parts, " ")
}

// Project maps values onto chart coordinates using min/max scaling. A flat
// series uses a spread of 1; a single point sits at x=50. Empty input yields
// only the baseline axis.
func Project(values []float64, height float64) Projection {
	proj := Projection{
		Axis:   Line{X1: 0, Y1: height, X2: 100, Y2: height},
		Height: height,
	}
	if len(values) == 0 {
		return proj
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	spread := hi - lo
	if spread == 0 {
		spread = 1
	}

	n := len(values)
	proj.Min, proj.Max = lo, hi
	proj.Points = make([]Point, n)
	for i, v := range values {
		x := 50.0
		if n > 1 {
			x = float64(i) / float64(n-1) * 100
		}
		proj.Points[i] = Point{X: x, Y: topMargin + (hi-v)/spread*height}
	}
	return proj
}

// ProjectSeries projects a price series.
func ProjectSeries(s domain.Series, height float64) Projection {
	return Project(s.Values(), height)
}

// ProjectEquity projects a portfolio's equity timeline.
func ProjectEquity(p *domain.Portfolio, height float64) Projection {
	return Project(p.EquityValues(), height)
}
