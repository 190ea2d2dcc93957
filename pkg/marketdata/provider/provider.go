// Package provider defines the market data provider strategy consumed by
// the gateway. A provider is selected once at construction time, so the
// synthetic/remote split lives here rather than as branches inside every
// gateway operation.
package provider

import (
	"context"
	"time"

	"github.com/fairview-lab/terminal-gateway/internal/synthetic"
	"github.com/fairview-lab/terminal-gateway/internal/types"
	"github.com/fairview-lab/terminal-gateway/pkg/errors"
)

// ProviderType defines the type of market data provider.
type ProviderType string

const (
	ProviderPolygon   ProviderType = "polygon"
	ProviderSynthetic ProviderType = "synthetic"
)

// Provider resolves instrument reference data and ticker-keyed market
// reads. Implementations normalize provider-specific responses into the
// gateway's types before returning.
type Provider interface {
	// ListInstruments returns the provider's instrument universe.
	ListInstruments(ctx context.Context) ([]types.Instrument, error)
	// GetSnapshot returns the last trade/quote for the ticker plus the
	// prior session's close and the day change where the upstream
	// reports them.
	GetSnapshot(ctx context.Context, ticker string) (types.MarketDataPoint, error)
	// GetPreviousClose returns a point carrying only the prior session's
	// closing value. Used to backfill snapshot gaps.
	GetPreviousClose(ctx context.Context, ticker string) (types.MarketDataPoint, error)
	// GetDailyBars returns daily closing values in [start, end],
	// ascending. An empty result is a valid "no data" answer, not an
	// error.
	GetDailyBars(ctx context.Context, ticker string, start, end time.Time) ([]types.PricePoint, error)
}

// NewProvider creates a market data provider of the given type.
func NewProvider(providerType ProviderType, apiKey string, gen *synthetic.Generator) (Provider, error) {
	switch providerType {
	case ProviderPolygon:
		return NewPolygonProvider(apiKey)
	case ProviderSynthetic:
		return NewSyntheticProvider(gen), nil
	default:
		return nil, errors.Newf(errors.KindAPI, "unsupported market data provider: %s", providerType)
	}
}
