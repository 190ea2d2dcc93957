package provider

import (
	"context"
	"time"

	"github.com/moznion/go-optional"

	"github.com/fairview-lab/terminal-gateway/internal/synthetic"
	"github.com/fairview-lab/terminal-gateway/internal/types"
)

// SyntheticProvider serves every read from the synthetic generator. It is
// the sole provider in offline mode and the fallback tier behind a failing
// remote provider.
type SyntheticProvider struct {
	gen *synthetic.Generator
}

var _ Provider = (*SyntheticProvider)(nil)

// NewSyntheticProvider wraps a generator as a Provider.
func NewSyntheticProvider(gen *synthetic.Generator) *SyntheticProvider {
	return &SyntheticProvider{gen: gen}
}

// ListInstruments returns the fixed reference set.
func (s *SyntheticProvider) ListInstruments(_ context.Context) ([]types.Instrument, error) {
	return s.gen.Instruments(), nil
}

// GetSnapshot generates a snapshot for the ticker.
func (s *SyntheticProvider) GetSnapshot(_ context.Context, ticker string) (types.MarketDataPoint, error) {
	return s.gen.Snapshot(ticker), nil
}

// GetPreviousClose reduces a generated snapshot to its previous close.
func (s *SyntheticProvider) GetPreviousClose(_ context.Context, ticker string) (types.MarketDataPoint, error) {
	snap := s.gen.Snapshot(ticker)

	prev := snap.Price
	if snap.PreviousClose.IsSome() {
		prev = snap.PreviousClose.Unwrap()
	}

	return types.MarketDataPoint{
		Ticker:        ticker,
		Price:         prev,
		Timestamp:     snap.Timestamp,
		PreviousClose: optional.Some(prev),
		ChangeValue:   optional.None[float64](),
		ChangePercent: optional.None[float64](),
		Bid:           optional.None[float64](),
		Ask:           optional.None[float64](),
		Volume:        snap.Volume,
		Yield:         optional.None[float64](),
		Duration:      optional.None[float64](),
		Convexity:     optional.None[float64](),
	}, nil
}

// GetDailyBars generates a walk with one point per weekday in the window,
// anchored to the ticker's current synthetic value.
func (s *SyntheticProvider) GetDailyBars(_ context.Context, ticker string, start, end time.Time) ([]types.PricePoint, error) {
	points := weekdaysBetween(start, end)
	if points == 0 {
		return []types.PricePoint{}, nil
	}

	current := s.gen.Snapshot(ticker).Price

	return s.gen.Historical(ticker, points, current), nil
}

func weekdaysBetween(start, end time.Time) int {
	if end.Before(start) {
		return 0
	}

	count := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if d.Weekday() != time.Saturday && d.Weekday() != time.Sunday {
			count++
		}
	}

	return count
}
