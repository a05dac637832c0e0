package view

import "helios/internal/domain"

// Placeholders for an empty portfolio.
const (
	NoPositions = "No open positions"
	NoTrades    = "No trades executed yet."
)

// Metric is one headline portfolio figure.
type Metric struct {
	Label string
	Value string
	Tone  Tone
}

// Metrics returns the six headline cards for p.
func Metrics(p *domain.Portfolio) []Metric {
	if p == nil {
		return nil
	}
	raw := []struct {
		label string
		v     float64
	}{
		{"Starting Cash", p.StartingCash},
		{"Cash", p.Cash},
		{"Equity", p.Equity},
		{"Total P/L", p.TotalPnl},
		{"Realized P/L", p.RealizedPnl},
		{"Unrealized P/L", p.UnrealizedPnl},
	}
	out := make([]Metric, len(raw))
	for i, m := range raw {
		out[i] = Metric{Label: m.label, Value: Currency(m.v), Tone: ToneOf(m.v)}
	}
	return out
}

// PortfolioError is the metric shown in place of the cards when the
// portfolio could not be loaded.
func PortfolioError(msg string) Metric {
	return Metric{Label: "Portfolio", Value: msg, Tone: ToneNegative}
}

// PositionRow is one row of the positions table.
type PositionRow struct {
	Symbol        string
	Quantity      string
	AveragePrice  string
	LastPrice     string
	UnrealizedPnl string
	Tone          Tone
}

// PositionRows builds the positions table.
func PositionRows(positions []domain.Position) []PositionRow {
	rows := make([]PositionRow, 0, len(positions))
	for _, p := range positions {
		rows = append(rows, PositionRow{
			Symbol:        p.Symbol,
			Quantity:      FormatInt(p.Quantity),
			AveragePrice:  Currency(p.AveragePrice),
			LastPrice:     Currency(p.LastPrice),
			UnrealizedPnl: Currency(p.UnrealizedPnl),
			Tone:          ToneOf(p.UnrealizedPnl),
		})
	}
	return rows
}

// TradeItem is one entry of the trade tape.
type TradeItem struct {
	Heading string
	Symbol  string
	Detail  string
	Meta    string
}

// TradeItems builds the trade tape.
func TradeItems(trades []domain.ExecutedTrade) []TradeItem {
	items := make([]TradeItem, 0, len(trades))
	for _, t := range trades {
		meta := Time(t.Timestamp)
		if t.StoryTitle != "" {
			meta += " • " + t.StoryTitle
		}
		items = append(items, TradeItem{
			Heading: t.TradeID + " • " + string(t.Side),
			Symbol:  t.Symbol,
			Detail:  FormatInt(t.Quantity) + " @ " + Currency(t.Price) + " | Equity " + Currency(t.EquityAfterTrade),
			Meta:    meta,
		})
	}
	return items
}
