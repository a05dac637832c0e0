package chart

import (
	"fmt"
	"io"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"helios/internal/domain"
)

const (
	colorBackground = "#0b1220"
	colorText       = "#e5e7eb"
	colorTextMuted  = "#9ca3af"
	colorStockLine  = "#ffde6d"
	colorEquityLine = "#2dd4bf"
	chartWidthPx    = "1200px"
	chartHeightPx   = "480px"
	timeLabelFormat = "01-02 15:04"
)

// WriteSeriesHTML renders a price series as a standalone HTML line chart.
func WriteSeriesHTML(w io.Writer, sym domain.Symbol, s domain.Series) error {
	labels := make([]string, len(s))
	data := make([]opts.LineData, len(s))
	for i, p := range s {
		labels[i] = p.Time.UTC().Format(timeLabelFormat)
		data[i] = opts.LineData{Value: p.Value}
	}
	line := newLine(fmt.Sprintf("%s synthetic price", sym), fmt.Sprintf("%d points", len(s)))
	line.SetXAxis(labels).AddSeries(sym.String(), data,
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
		charts.WithLineStyleOpts(opts.LineStyle{Color: colorStockLine, Width: 2}),
	)
	if err := line.Render(w); err != nil {
		return fmt.Errorf("rendering %s chart: %w", sym, err)
	}
	return nil
}

// WriteEquityHTML renders a portfolio equity timeline as an HTML line chart.
func WriteEquityHTML(w io.Writer, p *domain.Portfolio) error {
	var timeline []domain.EquityPoint
	if p != nil {
		timeline = p.EquityTimeline
	}
	labels := make([]string, len(timeline))
	data := make([]opts.LineData, len(timeline))
	for i, e := range timeline {
		labels[i] = e.Timestamp
		if t, err := time.Parse(time.RFC3339, e.Timestamp); err == nil {
			labels[i] = t.UTC().Format(timeLabelFormat)
		}
		data[i] = opts.LineData{Value: e.Equity}
	}
	line := newLine("Portfolio equity", fmt.Sprintf("%d samples", len(timeline)))
	line.SetXAxis(labels).AddSeries("Equity", data,
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
		charts.WithLineStyleOpts(opts.LineStyle{Color: colorEquityLine, Width: 2}),
	)
	if err := line.Render(w); err != nil {
		return fmt.Errorf("rendering equity chart: %w", err)
	}
	return nil
}

func newLine(title, subtitle string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle:       title,
			Width:           chartWidthPx,
			Height:          chartHeightPx,
			BackgroundColor: colorBackground,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:         title,
			Subtitle:      subtitle,
			TitleStyle:    &opts.TextStyle{Color: colorText},
			SubtitleStyle: &opts.TextStyle{Color: colorTextMuted},
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithXAxisOpts(opts.XAxis{
			AxisLabel: &opts.AxisLabel{Color: colorTextMuted},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Scale:     opts.Bool(true),
			AxisLabel: &opts.AxisLabel{Color: colorTextMuted},
			SplitLine: &opts.SplitLine{Show: opts.Bool(true), LineStyle: &opts.LineStyle{Color: colorTextMuted, Opacity: opts.Float(0.2)}},
		}),
	)
	return line
}
