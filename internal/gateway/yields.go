package gateway

import (
	"context"

	"go.uber.org/zap"

	"github.com/fairview-lab/terminal-gateway/internal/gateway/join"
	"github.com/fairview-lab/terminal-gateway/internal/types"
	"github.com/fairview-lab/terminal-gateway/pkg/errors"
)

// GetGovBondYields fetches the configured yield curve concurrently. Each
// tenor resolves independently: a failed leg is logged and skipped, and
// the call only fails when every leg fails. Results come back in curve
// order, shortest maturity first.
func (g *Gateway) GetGovBondYields(ctx context.Context) ([]types.YieldPoint, error) {
	if len(g.curve) == 0 {
		return nil, errors.New(errors.KindValidation, "no yield curve configured")
	}

	results := join.Settle(ctx, g.curve, func(ctx context.Context, leg yieldTicker) (types.YieldPoint, error) {
		point, err := g.GetMarketData(ctx, leg.ticker)
		if err != nil {
			return types.YieldPoint{}, err
		}

		yield := point.Price
		if point.Yield.IsSome() {
			yield = point.Yield.Unwrap()
		}

		return types.YieldPoint{
			Maturity:  leg.tenor,
			Yield:     roundTo(yield, percentDecimals),
			Change:    roundOpt(point.ChangeValue, percentDecimals),
			Timestamp: point.Timestamp,
		}, nil
	})

	points := make([]types.YieldPoint, 0, len(results))

	for _, res := range results {
		if res.Err != nil {
			g.log.Warn("yield curve leg failed",
				zap.String("tenor", string(res.Input.tenor)),
				zap.String("ticker", res.Input.ticker),
				zap.Error(res.Err))

			continue
		}

		points = append(points, res.Value)
	}

	if len(points) == 0 {
		return nil, errors.New(errors.KindDataProvider, "no valid yield data")
	}

	return points, nil
}
