package chart

import (
	"math"
	"strings"
)

const (
	plotMark  = '•'
	plotAxis  = '─'
	plotBlank = ' '
)

// Plot rasterizes a projection onto a cols×rows character grid. The bottom
// row carries the baseline axis; points fill the rows above it.
func Plot(p Projection, cols, rows int) []string {
	if cols < 2 {
		cols = 2
	}
	if rows < 2 {
		rows = 2
	}

	grid := make([][]rune, rows)
	for r := range grid {
		fill := plotBlank
		if r == rows-1 {
			fill = plotAxis
		}
		grid[r] = []rune(strings.Repeat(string(fill), cols))
	}

	plotRows := rows - 1
	height := p.Height
	if height <= 0 {
		height = DefaultHeight
	}

	var prevC, prevR = -1, -1
	for _, pt := range p.Points {
		c := int(math.Round(pt.X / 100 * float64(cols-1)))
		r := int(math.Round((pt.Y - topMargin) / height * float64(plotRows-1)))
		c = clamp(c, 0, cols-1)
		r = clamp(r, 0, plotRows-1)

		// Bridge vertical gaps between adjacent columns.
		if prevC >= 0 && c-prevC <= 1 {
			lo, hi := prevR, r
			if lo > hi {
				lo, hi = hi, lo
			}
			for y := lo + 1; y < hi; y++ {
				grid[y][c] = plotMark
			}
		}
		grid[r][c] = plotMark
		prevC, prevR = c, r
	}

	out := make([]string, rows)
	for r := range grid {
		out[r] = string(grid[r])
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
