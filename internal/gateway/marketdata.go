package gateway

import (
	"context"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/moznion/go-optional"

	"github.com/fairview-lab/terminal-gateway/internal/types"
	"github.com/fairview-lab/terminal-gateway/pkg/errors"
)

const (
	priceDecimals   = 4
	percentDecimals = 2
)

// GetMarketData returns a point-in-time snapshot for the ticker.
//
// The fallback chain has three tiers: the snapshot call, a previous-close
// call used to backfill fields the snapshot left empty (never to overwrite
// fields it returned), and, when enabled, the synthetic generator. If no
// tier yields a current price the read fails with a data provider error
// rather than returning a zero price.
func (g *Gateway) GetMarketData(ctx context.Context, ticker string) (types.MarketDataPoint, error) {
	ticker = strings.TrimSpace(ticker)
	if ticker == "" {
		return types.MarketDataPoint{}, errors.New(errors.KindValidation, "ticker is required")
	}

	point, snapErr := g.primary.GetSnapshot(ctx, ticker)
	if snapErr != nil {
		g.log.Warn("snapshot call failed", zap.String("ticker", ticker), zap.Error(snapErr))

		point = types.MarketDataPoint{Ticker: ticker}
	}

	// Backfill gaps from the previous-close aggregate. A failure here
	// only matters if the snapshot produced nothing usable.
	if point.Price == 0 || point.PreviousClose.IsNone() {
		prev, prevErr := g.primary.GetPreviousClose(ctx, ticker)
		if prevErr != nil {
			g.log.Warn("previous close call failed", zap.String("ticker", ticker), zap.Error(prevErr))
		} else {
			point = backfill(point, prev)
		}
	}

	if point.Price == 0 {
		if g.fallbackEnabled {
			g.log.Warn("provider yielded no price, falling back to synthetic", zap.String("ticker", ticker))

			synth, err := g.fallback.GetSnapshot(ctx, ticker)
			if err != nil {
				return types.MarketDataPoint{}, errors.Wrap(errors.KindDataProvider, "no market data for "+ticker, err)
			}

			point = synth
		} else {
			return types.MarketDataPoint{}, errors.Wrap(errors.KindDataProvider, "no market data for "+ticker, snapErr)
		}
	}

	return finishPoint(point), nil
}

// backfill copies fields from the previous-close bar into the snapshot
// without overwriting anything the snapshot already carries. When the
// snapshot produced no current price at all, the previous close serves as
// the (stale) current price; the bar's own timestamp is kept so the
// staleness stays observable.
func backfill(point, prev types.MarketDataPoint) types.MarketDataPoint {
	if point.Price == 0 {
		point.Price = prev.Price
		if point.Timestamp.IsZero() {
			point.Timestamp = prev.Timestamp
		}
	}

	if point.PreviousClose.IsNone() {
		point.PreviousClose = prev.PreviousClose
	}

	if point.Volume.IsNone() {
		point.Volume = prev.Volume
	}

	return point
}

// finishPoint derives the day-change fields when they are still missing
// and rounds numeric outputs to fixed display precision.
func finishPoint(point types.MarketDataPoint) types.MarketDataPoint {
	if point.ChangeValue.IsNone() && point.PreviousClose.IsSome() {
		prev := point.PreviousClose.Unwrap()
		change := point.Price - prev

		point.ChangeValue = optional.Some(change)

		if point.ChangePercent.IsNone() {
			pct := 0.0
			if prev != 0 {
				pct = change / prev * 100
			}

			point.ChangePercent = optional.Some(pct)
		}
	}

	point.Price = roundTo(point.Price, priceDecimals)
	point.ChangeValue = roundOpt(point.ChangeValue, priceDecimals)
	point.ChangePercent = roundOpt(point.ChangePercent, percentDecimals)
	point.PreviousClose = roundOpt(point.PreviousClose, priceDecimals)

	return point
}

func roundTo(val float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))

	return math.Round(val*pow) / pow
}

func roundOpt(opt optional.Option[float64], decimals int) optional.Option[float64] {
	if opt.IsNone() {
		return opt
	}

	return optional.Some(roundTo(opt.Unwrap(), decimals))
}
