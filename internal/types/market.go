package types

import (
	"time"

	"github.com/moznion/go-optional"
)

// MarketDataPoint is a single point-in-time snapshot for a ticker. The
// Price field holds a price or a yield depending on the instrument type.
// Each fetch produces a new immutable value; snapshots are never mutated.
type MarketDataPoint struct {
	Ticker    string    `json:"ticker" yaml:"ticker"`
	Price     float64   `json:"price" yaml:"price"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	// PreviousClose is the prior session's closing price or yield.
	PreviousClose optional.Option[float64] `json:"previous_close" yaml:"previous_close"`
	// ChangeValue is Price minus PreviousClose.
	ChangeValue optional.Option[float64] `json:"change_value" yaml:"change_value"`
	// ChangePercent is the day change as a percentage of PreviousClose.
	ChangePercent optional.Option[float64] `json:"change_percent" yaml:"change_percent"`
	Bid           optional.Option[float64] `json:"bid" yaml:"bid"`
	Ask           optional.Option[float64] `json:"ask" yaml:"ask"`
	Volume        optional.Option[float64] `json:"volume" yaml:"volume"`
	// Yield is the yield-to-maturity for fixed income instruments.
	Yield     optional.Option[float64] `json:"yield" yaml:"yield"`
	Duration  optional.Option[float64] `json:"duration" yaml:"duration"`
	Convexity optional.Option[float64] `json:"convexity" yaml:"convexity"`
}

// PricePoint is one element of a historical series: a calendar day and the
// closing value observed on that day.
type PricePoint struct {
	Date  time.Time `json:"date" yaml:"date"`
	Value float64   `json:"value" yaml:"value"`
}

// HistoricalSeries is an ordered sequence of daily price points for a
// ticker. Dates ascend with no duplicates, and the final element's value
// equals the most recently observed current price or yield for the ticker.
type HistoricalSeries struct {
	Ticker string       `json:"ticker" yaml:"ticker"`
	Points []PricePoint `json:"points" yaml:"points"`
}

// Last returns the final point of the series and false when empty.
func (s HistoricalSeries) Last() (PricePoint, bool) {
	if len(s.Points) == 0 {
		return PricePoint{}, false
	}

	return s.Points[len(s.Points)-1], true
}
