package gateway

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/fairview-lab/terminal-gateway/internal/gateway/join"
	"github.com/fairview-lab/terminal-gateway/internal/types"
	"github.com/fairview-lab/terminal-gateway/pkg/errors"
)

// Movers holds the day's best and worst performers.
type Movers struct {
	Gainers []types.MarketDataPoint `json:"gainers"`
	Losers  []types.MarketDataPoint `json:"losers"`
}

// GetTopMovers snapshots the given universe concurrently and ranks it by
// day change: gainers are the top of the ranking (largest change first),
// losers the bottom (smallest change first). Tickers that fail to resolve
// or carry no change figure are dropped; the call fails only when the
// whole universe does.
func (g *Gateway) GetTopMovers(ctx context.Context, tickers []string, limit int) (Movers, error) {
	if len(tickers) == 0 {
		return Movers{}, errors.New(errors.KindValidation, "no tickers to rank")
	}

	if limit <= 0 {
		limit = 5
	}

	results := join.Settle(ctx, tickers, func(ctx context.Context, ticker string) (types.MarketDataPoint, error) {
		return g.GetMarketData(ctx, ticker)
	})

	ranked := make([]types.MarketDataPoint, 0, len(results))

	for _, res := range results {
		if res.Err != nil {
			g.log.Warn("mover snapshot failed", zap.String("ticker", res.Input), zap.Error(res.Err))

			continue
		}

		if res.Value.ChangePercent.IsNone() {
			continue
		}

		ranked = append(ranked, res.Value)
	}

	if len(ranked) == 0 {
		return Movers{}, errors.New(errors.KindDataProvider, "no movers data")
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].ChangePercent.Unwrap() > ranked[j].ChangePercent.Unwrap()
	})

	count := limit
	if count > len(ranked) {
		count = len(ranked)
	}

	movers := Movers{
		Gainers: make([]types.MarketDataPoint, 0, count),
		Losers:  make([]types.MarketDataPoint, 0, count),
	}

	movers.Gainers = append(movers.Gainers, ranked[:count]...)

	for i := len(ranked) - 1; i >= len(ranked)-count; i-- {
		movers.Losers = append(movers.Losers, ranked[i])
	}

	return movers, nil
}
