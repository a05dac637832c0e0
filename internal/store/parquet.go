package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/parquet-go/parquet-go"

	"helios/internal/domain"
)

// Compile-time interface checks.
var _ SeriesStore = (*ParquetStore)(nil)
var _ EquityStore = (*ParquetStore)(nil)

// ParquetStore implements SeriesStore and EquityStore using Parquet files on
// disk.
type ParquetStore struct {
	DataDir string
}

// NewParquetStore creates a new ParquetStore rooted at the given data directory.
func NewParquetStore(dataDir string) *ParquetStore {
	return &ParquetStore{DataDir: dataDir}
}

// ---------------------------------------------------------------------------
// Parquet record types (on-disk schema)
// ---------------------------------------------------------------------------

// SeriesRecord is the Parquet schema for one synthetic price point.
type SeriesRecord struct {
	Symbol    string  `parquet:"symbol"`
	Timestamp int64   `parquet:"timestamp,timestamp(millisecond)"` // Unix ms
	Price     float64 `parquet:"price"`
}

// EquityRecord is the Parquet schema for one equity timeline sample.
type EquityRecord struct {
	Timestamp int64   `parquet:"timestamp,timestamp(millisecond)"` // Unix ms
	Equity    float64 `parquet:"equity"`
}

// ---------------------------------------------------------------------------
// SeriesStore implementation
// ---------------------------------------------------------------------------

// WriteSeries writes series points to Parquet files organized by symbol and
// UTC date. Each symbol+date combination produces a separate file at:
//
//	<DataDir>/synthetic/<SYMBOL>/<YYYY-MM-DD>.parquet
func (s *ParquetStore) WriteSeries(_ context.Context, sym domain.Symbol, series domain.Series) error {
	if !sym.Valid() || len(series) == 0 {
		return nil
	}

	groups := make(map[string][]SeriesRecord)
	for _, p := range series {
		date := p.Time.UTC().Format("2006-01-02")
		groups[date] = append(groups[date], SeriesRecord{
			Symbol:    sym.String(),
			Timestamp: p.Time.UnixMilli(),
			Price:     p.Value,
		})
	}

	for date, records := range groups {
		t, _ := time.Parse("2006-01-02", date)
		path := s.seriesPath(sym, t)

		existing, _ := readParquetFile[SeriesRecord](path)
		merged := mergeSeriesRecords(existing, records)

		if err := writeParquetFile(path, merged); err != nil {
			return fmt.Errorf("writing series for %s/%s: %w", sym, date, err)
		}
	}
	return nil
}

// ReadSeries reads series points from Parquet files for the given symbol and
// time range.
func (s *ParquetStore) ReadSeries(_ context.Context, sym domain.Symbol, start, end time.Time) (domain.Series, error) {
	var series domain.Series
	first := start.UTC().Truncate(24 * time.Hour)
	for d := first; !d.After(end); d = d.AddDate(0, 0, 1) {
		records, err := readParquetFile[SeriesRecord](s.seriesPath(sym, d))
		if err != nil {
			continue
		}
		for _, r := range records {
			ts := time.UnixMilli(r.Timestamp)
			if !ts.Before(start) && !ts.After(end) {
				series = append(series, domain.SeriesPoint{Time: ts, Value: r.Price})
			}
		}
	}
	return series, nil
}

// ListSymbols lists all symbols that have stored series.
func (s *ParquetStore) ListSymbols(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.DataDir, "synthetic"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var symbols []string
	for _, e := range entries {
		if e.IsDir() {
			symbols = append(symbols, e.Name())
		}
	}
	sort.Strings(symbols)
	return symbols, nil
}

// ---------------------------------------------------------------------------
// EquityStore implementation
// ---------------------------------------------------------------------------

// WriteEquity merges timeline into <DataDir>/portfolio/equity.parquet.
// Points with unparsable timestamps are skipped.
func (s *ParquetStore) WriteEquity(_ context.Context, timeline []domain.EquityPoint) error {
	records := make([]EquityRecord, 0, len(timeline))
	for _, p := range timeline {
		ts, err := time.Parse(time.RFC3339, p.Timestamp)
		if err != nil {
			continue
		}
		records = append(records, EquityRecord{Timestamp: ts.UnixMilli(), Equity: p.Equity})
	}
	if len(records) == 0 {
		return nil
	}

	path := s.equityPath()
	existing, _ := readParquetFile[EquityRecord](path)
	if err := writeParquetFile(path, mergeEquityRecords(existing, records)); err != nil {
		return fmt.Errorf("writing equity timeline: %w", err)
	}
	return nil
}

// ReadEquity reads the stored equity timeline. A missing file yields no
// points.
func (s *ParquetStore) ReadEquity(_ context.Context) ([]domain.EquityPoint, error) {
	path := s.equityPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	records, err := readParquetFile[EquityRecord](path)
	if err != nil {
		return nil, fmt.Errorf("reading equity timeline: %w", err)
	}
	out := make([]domain.EquityPoint, len(records))
	for i, r := range records {
		out[i] = domain.EquityPoint{
			Timestamp: time.UnixMilli(r.Timestamp).UTC().Format(time.RFC3339),
			Equity:    r.Equity,
		}
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Path helpers
// ---------------------------------------------------------------------------

// seriesPath returns the filesystem path for a series Parquet file.
// Layout: <dataDir>/synthetic/<SYMBOL>/<YYYY-MM-DD>.parquet
func (s *ParquetStore) seriesPath(sym domain.Symbol, t time.Time) string {
	date := t.Format("2006-01-02")
	return filepath.Join(s.DataDir, "synthetic", sym.String(), date+".parquet")
}

// equityPath returns the filesystem path of the equity timeline.
func (s *ParquetStore) equityPath() string {
	return filepath.Join(s.DataDir, "portfolio", "equity.parquet")
}

// ---------------------------------------------------------------------------
// Parquet file helpers
// ---------------------------------------------------------------------------

func writeParquetFile[T any](path string, records []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return parquet.WriteFile(path, records)
}

func readParquetFile[T any](path string) ([]T, error) {
	rows, err := parquet.ReadFile[T](path)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// mergeSeriesRecords deduplicates records by (symbol, timestamp), preferring
// new records over existing ones. Results are sorted by timestamp.
func mergeSeriesRecords(existing, incoming []SeriesRecord) []SeriesRecord {
	type key struct {
		symbol string
		ts     int64
	}
	seen := make(map[key]SeriesRecord, len(existing)+len(incoming))
	for _, r := range existing {
		seen[key{r.Symbol, r.Timestamp}] = r
	}
	for _, r := range incoming {
		seen[key{r.Symbol, r.Timestamp}] = r
	}

	merged := make([]SeriesRecord, 0, len(seen))
	for _, r := range seen {
		merged = append(merged, r)
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Timestamp < merged[j].Timestamp
	})
	return merged
}

// mergeEquityRecords deduplicates records by timestamp, preferring new
// records over existing ones.
func mergeEquityRecords(existing, incoming []EquityRecord) []EquityRecord {
	seen := make(map[int64]EquityRecord, len(existing)+len(incoming))
	for _, r := range existing {
		seen[r.Timestamp] = r
	}
	for _, r := range incoming {
		seen[r.Timestamp] = r
	}

	merged := make([]EquityRecord, 0, len(seen))
	for _, r := range seen {
		merged = append(merged, r)
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Timestamp < merged[j].Timestamp
	})
	return merged
}
