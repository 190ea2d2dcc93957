// Package gateway implements the financial data gateway between the
// presentation layer and the configured market data backend. It owns the
// fallback chain from the remote provider down to synthetic generation and
// the fan-out joins used by the batch reads.
package gateway

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/fairview-lab/terminal-gateway/internal/logger"
	"github.com/fairview-lab/terminal-gateway/internal/types"
	"github.com/fairview-lab/terminal-gateway/pkg/errors"
	"github.com/fairview-lab/terminal-gateway/pkg/marketdata/provider"
)

// yieldTicker binds one curve tenor to the ticker that carries its yield.
type yieldTicker struct {
	tenor  types.Tenor
	ticker string
}

// Options configures a Gateway. The zero value disables the synthetic
// fallback and serves an empty yield curve.
type Options struct {
	// YieldCurve maps curve tenors to the tickers queried for
	// GetGovBondYields.
	YieldCurve map[types.Tenor]string
	// FallbackToSynthetic enables the synthetic degradation path for
	// read-only data endpoints when the primary provider fails.
	FallbackToSynthetic bool
}

// Gateway resolves instruments, market data, historical series, and yield
// curves. It is stateless per call; a Gateway value is safe for concurrent
// use.
type Gateway struct {
	primary         provider.Provider
	fallback        provider.Provider
	curve           []yieldTicker
	fallbackEnabled bool
	log             *logger.Logger
}

// New creates a Gateway over the primary provider. The fallback provider
// is consulted for read paths when Options.FallbackToSynthetic is set; it
// may be nil when the primary already is the synthetic provider.
func New(primary provider.Provider, fallback provider.Provider, opts Options, log *logger.Logger) *Gateway {
	curve := make([]yieldTicker, 0, len(opts.YieldCurve))
	for tenor, ticker := range opts.YieldCurve {
		curve = append(curve, yieldTicker{tenor: tenor, ticker: ticker})
	}

	// Fixed maturity ordering keeps the fan-out and its results stable.
	sort.SliceStable(curve, func(i, j int) bool {
		return types.TenorRank(curve[i].tenor) < types.TenorRank(curve[j].tenor)
	})

	return &Gateway{
		primary:         primary,
		fallback:        fallback,
		curve:           curve,
		fallbackEnabled: opts.FallbackToSynthetic && fallback != nil,
		log:             log,
	}
}

// GetInstruments returns the provider's instrument universe. The read is
// all-or-nothing per provider with one explicit fallback: when the primary
// fails and the synthetic fallback is enabled, the fixed reference set is
// served instead.
func (g *Gateway) GetInstruments(ctx context.Context) ([]types.Instrument, error) {
	instruments, err := g.primary.ListInstruments(ctx)
	if err == nil {
		return instruments, nil
	}

	if g.fallbackEnabled {
		g.log.Warn("instrument list failed, serving synthetic reference set", zap.Error(err))

		return g.fallback.ListInstruments(ctx)
	}

	return nil, errors.Ensure(err, "instrument list failed")
}
