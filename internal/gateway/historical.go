package gateway

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fairview-lab/terminal-gateway/internal/types"
	"github.com/fairview-lab/terminal-gateway/pkg/errors"
)

// Range selects the lookback window for historical reads.
type Range string

const (
	RangeOneMonth  Range = "1m"
	RangeSixMonths Range = "6m"
	RangeOneYear   Range = "1y"
)

type rangeWindow struct {
	months int
	points int
}

// windows maps each range to its calendar span and the approximate number
// of trading days inside it.
var windows = map[Range]rangeWindow{
	RangeOneMonth:  {months: 1, points: 22},
	RangeSixMonths: {months: 6, points: 126},
	RangeOneYear:   {months: 12, points: 252},
}

// Window returns the trading-day count for the range.
func (r Range) Window() (int, bool) {
	w, ok := windows[r]
	if !ok {
		return 0, false
	}

	return w.points, true
}

// GetHistoricalData returns a daily close series for the ticker covering
// the requested range. An instrument that exists but has no bars in the
// window produces an empty series, not an error.
func (g *Gateway) GetHistoricalData(ctx context.Context, ticker string, rng Range) (types.HistoricalSeries, error) {
	ticker = strings.TrimSpace(ticker)
	if ticker == "" {
		return types.HistoricalSeries{}, errors.New(errors.KindValidation, "ticker is required")
	}

	window, ok := windows[rng]
	if !ok {
		return types.HistoricalSeries{}, errors.Newf(errors.KindValidation, "unsupported range %q", rng)
	}

	end := time.Now().UTC()
	start := end.AddDate(0, -window.months, 0)

	points, err := g.primary.GetDailyBars(ctx, ticker, start, end)
	if err != nil {
		if !g.fallbackEnabled {
			return types.HistoricalSeries{}, errors.Ensure(err, "historical data for "+ticker)
		}

		g.log.Warn("historical call failed, falling back to synthetic",
			zap.String("ticker", ticker), zap.Error(err))

		points, err = g.fallback.GetDailyBars(ctx, ticker, start, end)
		if err != nil {
			return types.HistoricalSeries{}, errors.Ensure(err, "historical data for "+ticker)
		}
	}

	for i := range points {
		points[i].Value = roundTo(points[i].Value, priceDecimals)
	}

	return types.HistoricalSeries{Ticker: ticker, Points: points}, nil
}
