package gateway

import (
	"context"

	"go.uber.org/zap"

	"github.com/moznion/go-optional"

	"github.com/fairview-lab/terminal-gateway/internal/gateway/join"
	"github.com/fairview-lab/terminal-gateway/internal/types"
)

// EnrichPositions attaches current prices, market values, and unrealized
// P&L to broker positions. Enrichment is best effort: a position whose
// ticker fails to price comes back unchanged rather than sinking the
// whole portfolio view.
func (g *Gateway) EnrichPositions(ctx context.Context, positions []types.Position) []types.Position {
	if len(positions) == 0 {
		return positions
	}

	results := join.Settle(ctx, positions, func(ctx context.Context, pos types.Position) (types.Position, error) {
		point, err := g.GetMarketData(ctx, pos.Ticker)
		if err != nil {
			return pos, err
		}

		pos.CurrentPrice = optional.Some(point.Price)
		pos.MarketValue = optional.Some(roundTo(point.Price*pos.Quantity, priceDecimals))
		pos.UnrealizedPnl = optional.Some(roundTo((point.Price-pos.AveragePrice)*pos.Quantity, priceDecimals))

		return pos, nil
	})

	enriched := make([]types.Position, 0, len(positions))

	for _, res := range results {
		if res.Err != nil {
			g.log.Warn("position enrichment failed",
				zap.String("ticker", res.Input.Ticker), zap.Error(res.Err))

			enriched = append(enriched, res.Input)

			continue
		}

		enriched = append(enriched, res.Value)
	}

	return enriched
}
