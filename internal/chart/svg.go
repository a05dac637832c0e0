package chart

import (
	"fmt"
	"html"
	"io"

	"helios/internal/domain"
)

// WriteSeriesSVG renders a price series as a standalone SVG line chart.
func WriteSeriesSVG(w io.Writer, sym domain.Symbol, s domain.Series, height float64) error {
	return writeSVG(w, sym.String(), colorStockLine, ProjectSeries(s, height))
}

// WriteEquitySVG renders a portfolio's equity timeline as a standalone SVG
// line chart.
func WriteEquitySVG(w io.Writer, p *domain.Portfolio, height float64) error {
	return writeSVG(w, "Portfolio equity", colorEquityLine, ProjectEquity(p, height))
}

// writeSVG draws the projection in its own chart units, so the view box is
// 100 wide and the output scales to any size.
func writeSVG(w io.Writer, title, color string, p Projection) error {
	h := p.Height + 2*topMargin
	_, err := fmt.Fprintf(w, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 %.2f" preserveAspectRatio="none">
<title>%s</title>
<rect width="100" height="%.2f" fill="%s"/>
<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="0.2"/>
<polyline points="%s" fill="none" stroke="%s" stroke-width="2" vector-effect="non-scaling-stroke"/>
</svg>
`,
		h, html.EscapeString(title), h, colorBackground,
		p.Axis.X1, p.Axis.Y1, p.Axis.X2, p.Axis.Y2, colorTextMuted,
		p.Polyline(), color)
	if err != nil {
		return fmt.Errorf("writing svg: %w", err)
	}
	return nil
}
