// Package domain defines the data types exchanged between the Helios backend,
// the selection session, and the view layer.
package domain

import (
	"strings"
	"time"
)

// ---------------------------------------------------------------------------
// Symbols
// ---------------------------------------------------------------------------

// Symbol is a normalized (trimmed, upper-cased) ticker-like identifier for a
// synthetic instrument.
type Symbol string

// NoSymbol is the sentinel for an absent or blank symbol.
const NoSymbol Symbol = ""

// Normalize trims and upper-cases raw. Blank input yields NoSymbol.
func Normalize(raw string) Symbol {
	return Symbol(strings.ToUpper(strings.TrimSpace(raw)))
}

// FirstSymbol returns the first candidate that normalizes to a real symbol.
func FirstSymbol(candidates ...string) Symbol {
	for _, c := range candidates {
		if s := Normalize(c); s.Valid() {
			return s
		}
	}
	return NoSymbol
}

// Valid reports whether s is a real symbol rather than NoSymbol.
func (s Symbol) Valid() bool { return s != NoSymbol }

func (s Symbol) String() string { return string(s) }

// ---------------------------------------------------------------------------
// Series
// ---------------------------------------------------------------------------

// SeriesPoint is a single timestamped value.
type SeriesPoint struct {
	Time  time.Time
	Value float64
}

// Series is an ordered, immutable sequence of points with non-decreasing
// timestamps.
type Series []SeriesPoint

// Values returns the point values in order.
func (s Series) Values() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Value
	}
	return out
}

// Last returns the final point and false when the series is empty.
func (s Series) Last() (SeriesPoint, bool) {
	if len(s) == 0 {
		return SeriesPoint{}, false
	}
	return s[len(s)-1], true
}

// ---------------------------------------------------------------------------
// Stories and recommendations
// ---------------------------------------------------------------------------

// StorySummary is one entry of the story feed.
type StorySummary struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Summary         string `json:"summary"`
	URL             string `json:"url"`
	PublishedAt     string `json:"publishedAt"`
	Source          string `json:"source"`
	SuggestedSymbol string `json:"suggestedSymbol"`
}

// StoryDetail is the full article returned with a story's insights.
type StoryDetail struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Body            string `json:"body"`
	URL             string `json:"url"`
	PublishedAt     string `json:"publishedAt"`
	Source          string `json:"source"`
	SuggestedSymbol string `json:"suggestedSymbol"`
}

// Action is the recommended course for an entity.
type Action string

const (
	ActionBuy   Action = "BUY"
	ActionSell  Action = "SELL"
	ActionWatch Action = "WATCH"
)

// Recommendation is a single trading suggestion derived from a story.
type Recommendation struct {
	Entity          string  `json:"entity"`
	Action          Action  `json:"action"`
	SuggestedSymbol string  `json:"suggestedSymbol"`
	Confidence      float64 `json:"confidence"`
	Rationale       string  `json:"rationale"`
}

// StoryInsights pairs a story's detail with its recommendations.
type StoryInsights struct {
	Story           StoryDetail      `json:"story"`
	Recommendations []Recommendation `json:"recommendations"`
}

// Primary returns the first recommendation, or nil when there is none.
func (si *StoryInsights) Primary() *Recommendation {
	if si == nil || len(si.Recommendations) == 0 {
		return nil
	}
	return &si.Recommendations[0]
}

// ---------------------------------------------------------------------------
// Trading
// ---------------------------------------------------------------------------

// Side is the direction of a trade ticket.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// SideFor maps a recommendation action onto a ticket side. WATCH is traded
// as a BUY.
func SideFor(a Action) Side {
	if a == ActionSell {
		return SideSell
	}
	return SideBuy
}

// TradeRequest is the body of a trade submission.
type TradeRequest struct {
	Symbol     string  `json:"symbol"`
	Side       Side    `json:"side"`
	Quantity   int     `json:"quantity"`
	Price      float64 `json:"price"`
	Note       string  `json:"note"`
	StoryID    string  `json:"storyId"`
	StoryTitle string  `json:"storyTitle"`
}

// TradeResult is the successful response to a trade submission.
type TradeResult struct {
	Portfolio Portfolio `json:"portfolio"`
}

// Position is an open holding in the simulated portfolio.
type Position struct {
	Symbol        string  `json:"symbol"`
	Quantity      int     `json:"quantity"`
	AveragePrice  float64 `json:"averagePrice"`
	LastPrice     float64 `json:"lastPrice"`
	MarketValue   float64 `json:"marketValue"`
	UnrealizedPnl float64 `json:"unrealizedPnl"`
}

// ExecutedTrade is one entry of the portfolio's trade tape.
type ExecutedTrade struct {
	TradeID            string  `json:"tradeId"`
	Timestamp          string  `json:"timestamp"`
	Symbol             string  `json:"symbol"`
	Side               Side    `json:"side"`
	Quantity           int     `json:"quantity"`
	Price              float64 `json:"price"`
	Notional           float64 `json:"notional"`
	Note               string  `json:"note"`
	StoryTitle         string  `json:"storyTitle"`
	EquityAfterTrade   float64 `json:"equityAfterTrade"`
	TotalPnlAfterTrade float64 `json:"totalPnlAfterTrade"`
}

// EquityPoint is one sample of portfolio equity over time.
type EquityPoint struct {
	Timestamp string  `json:"timestamp"`
	Equity    float64 `json:"equity"`
}

// Portfolio is a snapshot of the simulated trading account.
type Portfolio struct {
	StartingCash   float64         `json:"startingCash"`
	Cash           float64         `json:"cash"`
	Equity         float64         `json:"equity"`
	TotalPnl       float64         `json:"totalPnl"`
	RealizedPnl    float64         `json:"realizedPnl"`
	UnrealizedPnl  float64         `json:"unrealizedPnl"`
	Positions      []Position      `json:"positions"`
	RecentTrades   []ExecutedTrade `json:"recentTrades"`
	EquityTimeline []EquityPoint   `json:"equityTimeline"`
}

// EquityValues returns the equity timeline as a plain value slice.
func (p *Portfolio) EquityValues() []float64 {
	if p == nil {
		return nil
	}
	out := make([]float64, len(p.EquityTimeline))
	for i, e := range p.EquityTimeline {
		out[i] = e.Equity
	}
	return out
}
