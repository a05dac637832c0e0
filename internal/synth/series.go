package synth

import (
	"math"
	"time"

	"helios/internal/domain"
)

// Default window used by the terminal and CLI clients.
const (
	DefaultLookback = 48 * time.Hour
	DefaultInterval = 30 * time.Minute
)

const (
	basePrice      = 100
	basePriceRange = 70
	driftScale     = 0.0075
	cycleScale     = 0.0018
	cycleTurns     = 1.6
	priceFloor     = 1
)

// Clock supplies the instant that ends a series window.
type Clock interface {
	Now() time.Time
}

// SystemClock reads wall-clock time.
type SystemClock struct{}

// Now returns time.Now.
func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always reports the same instant.
type FixedClock time.Time

// Now returns the pinned instant.
func (c FixedClock) Now() time.Time { return time.Time(c) }

// Builder generates bounded random-walk price series for symbols.
type Builder struct {
	clock    Clock
	lookback time.Duration
	interval time.Duration
}

// NewBuilder creates a Builder over a 48h window sampled every 30 minutes.
// A nil clock falls back to SystemClock.
func NewBuilder(clock Clock) *Builder {
	return NewBuilderWindow(clock, DefaultLookback, DefaultInterval)
}

// NewBuilderWindow creates a Builder with an explicit window. Non-positive
// durations fall back to the defaults.
func NewBuilderWindow(clock Clock, lookback, interval time.Duration) *Builder {
	if clock == nil {
		clock = SystemClock{}
	}
	if lookback <= 0 {
		lookback = DefaultLookback
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Builder{clock: clock, lookback: lookback, interval: interval}
}

// Steps returns the number of intervals in the window. A series has
// Steps()+1 points.
func (b *Builder) Steps() int {
	n := int(b.lookback / b.interval)
	if n < 1 {
		n = 1
	}
	return n
}

// Now returns the instant the builder's windows end at.
func (b *Builder) Now() time.Time { return b.clock.Now() }

// Build returns the synthetic series for sym, ending at the clock's current
// instant. NoSymbol yields an empty series.
func (b *Builder) Build(sym domain.Symbol) domain.Series {
	return b.BuildAt(sym, b.Now())
}

// BuildAt returns the synthetic series for sym with the window ending at end.
func (b *Builder) BuildAt(sym domain.Symbol, end time.Time) domain.Series {
	if !sym.Valid() {
		return domain.Series{}
	}

	seed := SeedFrom(sym)
	total := b.Steps()
	start := end.Add(-b.lookback)
	span := end.Sub(start)

	price := float64(basePrice + seed%basePriceRange)
	state := seed
	points := make(domain.Series, 0, total+1)
	for i := 0; i <= total; i++ {
		state = Next(state)
		frac := float64(i) / float64(total)
		drift := Noise(state) * price * driftScale
		cycle := math.Sin(frac*math.Pi*cycleTurns) * price * cycleScale
		price = math.Max(priceFloor, round2(price+drift+cycle))

		points = append(points, domain.SeriesPoint{
			Time:  start.Add(span * time.Duration(i) / time.Duration(total)),
			Value: price,
		})
	}
	return points
}

// round2 rounds to two decimal places, half away from zero.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
