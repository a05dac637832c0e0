// Package store persists generated series and portfolio equity snapshots
// for offline analysis.
package store

import (
	"context"
	"time"

	"helios/internal/domain"
)

// SeriesStore persists and retrieves synthetic price series.
type SeriesStore interface {
	// WriteSeries persists a series for sym, replacing points with the same
	// timestamp.
	WriteSeries(ctx context.Context, sym domain.Symbol, series domain.Series) error

	// ReadSeries returns the points for sym within [start, end].
	ReadSeries(ctx context.Context, sym domain.Symbol, start, end time.Time) (domain.Series, error)

	// ListSymbols returns all symbols with stored series.
	ListSymbols(ctx context.Context) ([]string, error)
}

// EquityStore persists portfolio equity timelines.
type EquityStore interface {
	// WriteEquity merges the portfolio's equity timeline into storage.
	WriteEquity(ctx context.Context, timeline []domain.EquityPoint) error

	// ReadEquity returns all stored equity points in time order.
	ReadEquity(ctx context.Context) ([]domain.EquityPoint, error)
}
