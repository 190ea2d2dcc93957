package provider

import (
	"context"
	"strings"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"

	"github.com/moznion/go-optional"

	"github.com/fairview-lab/terminal-gateway/internal/types"
	"github.com/fairview-lab/terminal-gateway/pkg/errors"
)

// PolygonProvider serves market reads from the Polygon REST API.
type PolygonProvider struct {
	client *polygon.Client
}

var _ Provider = (*PolygonProvider)(nil)

// NewPolygonProvider creates a Polygon-backed provider. A missing API key
// is a configuration error, never a silent fallback.
func NewPolygonProvider(apiKey string) (*PolygonProvider, error) {
	if apiKey == "" {
		return nil, errors.New(errors.KindDataProvider, "polygon api key is required")
	}

	return &PolygonProvider{client: polygon.New(apiKey)}, nil
}

// ListInstruments returns the active ticker universe.
func (p *PolygonProvider) ListInstruments(ctx context.Context) ([]types.Instrument, error) {
	params := models.ListTickersParams{}.
		WithMarket(models.AssetStocks).
		WithActive(true).
		WithLimit(1000)

	iter := p.client.ListTickers(ctx, params)

	instruments := make([]types.Instrument, 0)

	for iter.Next() {
		t := iter.Item()
		instruments = append(instruments, types.Instrument{
			Ticker:       t.Ticker,
			Name:         t.Name,
			AssetType:    assetTypeFromPolygon(t.Type),
			Country:      countryFromLocale(string(t.Locale)),
			MaturityDate: optional.None[time.Time](),
		})
	}

	if iter.Err() != nil {
		return nil, classifyPolygonError(iter.Err(), "listing tickers failed")
	}

	return instruments, nil
}

// GetSnapshot returns the current trade/quote snapshot for a ticker.
func (p *PolygonProvider) GetSnapshot(ctx context.Context, ticker string) (types.MarketDataPoint, error) {
	resp, err := p.client.GetTickerSnapshot(ctx, &models.GetTickerSnapshotParams{
		Ticker:     ticker,
		Locale:     models.US,
		MarketType: models.Stocks,
	})
	if err != nil {
		return types.MarketDataPoint{}, classifyPolygonError(err, "snapshot fetch failed for "+ticker)
	}

	snap := resp.Snapshot

	point := types.MarketDataPoint{
		Ticker:        ticker,
		Price:         snapshotPrice(snap),
		Timestamp:     time.Time(snap.Updated),
		PreviousClose: someIfPositive(snap.PrevDay.Close),
		ChangeValue:   optional.None[float64](),
		ChangePercent: optional.None[float64](),
		Bid:           someIfPositive(snap.LastQuote.BidPrice),
		Ask:           someIfPositive(snap.LastQuote.AskPrice),
		Volume:        someIfPositive(snap.Day.Volume),
		Yield:         optional.None[float64](),
		Duration:      optional.None[float64](),
		Convexity:     optional.None[float64](),
	}

	if snap.TodaysChange != 0 || snap.TodaysChangePerc != 0 {
		point.ChangeValue = optional.Some(snap.TodaysChange)
		point.ChangePercent = optional.Some(snap.TodaysChangePerc)
	}

	return point, nil
}

// snapshotPrice picks the freshest available price from a snapshot: the
// last trade, then today's bar, then the latest minute bar.
func snapshotPrice(snap models.TickerSnapshot) float64 {
	if snap.LastTrade.Price != 0 {
		return snap.LastTrade.Price
	}

	if snap.Day.Close != 0 {
		return snap.Day.Close
	}

	return snap.Minute.Close
}

// GetPreviousClose returns the prior session's closing bar for a ticker.
func (p *PolygonProvider) GetPreviousClose(ctx context.Context, ticker string) (types.MarketDataPoint, error) {
	resp, err := p.client.GetPreviousCloseAgg(ctx, models.GetPreviousCloseAggParams{
		Ticker: ticker,
	}.WithAdjusted(true))
	if err != nil {
		return types.MarketDataPoint{}, classifyPolygonError(err, "previous close fetch failed for "+ticker)
	}

	if len(resp.Results) == 0 {
		return types.MarketDataPoint{}, errors.Newf(errors.KindDataProvider, "no previous close for %s", ticker)
	}

	bar := resp.Results[0]

	return types.MarketDataPoint{
		Ticker:        ticker,
		Price:         bar.Close,
		Timestamp:     time.Time(bar.Timestamp),
		PreviousClose: optional.Some(bar.Close),
		ChangeValue:   optional.None[float64](),
		ChangePercent: optional.None[float64](),
		Bid:           optional.None[float64](),
		Ask:           optional.None[float64](),
		Volume:        someIfPositive(bar.Volume),
		Yield:         optional.None[float64](),
		Duration:      optional.None[float64](),
		Convexity:     optional.None[float64](),
	}, nil
}

// GetDailyBars returns daily closes for the window. An empty window is a
// valid response.
func (p *PolygonProvider) GetDailyBars(ctx context.Context, ticker string, start, end time.Time) ([]types.PricePoint, error) {
	params := models.ListAggsParams{
		Ticker:     ticker,
		Multiplier: 1,
		Timespan:   models.Day,
		From:       models.Millis(start),
		To:         models.Millis(end),
	}.WithLimit(50000).WithAdjusted(true)

	iter := p.client.ListAggs(ctx, params)

	points := make([]types.PricePoint, 0)

	for iter.Next() {
		agg := iter.Item()
		points = append(points, types.PricePoint{
			Date:  time.Time(agg.Timestamp),
			Value: agg.Close,
		})
	}

	if iter.Err() != nil {
		return nil, classifyPolygonError(iter.Err(), "daily bars fetch failed for "+ticker)
	}

	return points, nil
}

// classifyPolygonError maps a Polygon client error into the taxonomy:
// credential rejections become authorization errors, everything else is a
// data provider failure with the cause preserved.
func classifyPolygonError(err error, message string) error {
	var errResp *models.ErrorResponse
	if errors.As(err, &errResp) {
		if errResp.StatusCode == 401 || errResp.StatusCode == 403 {
			return errors.Wrap(errors.KindAuthorization, "market data credentials rejected", err)
		}
	}

	return errors.Wrap(errors.KindDataProvider, message, err)
}

func assetTypeFromPolygon(tickerType string) optional.Option[types.AssetType] {
	switch strings.ToUpper(tickerType) {
	case "":
		return optional.None[types.AssetType]()
	case "ETF", "ETN", "FUND":
		return optional.Some(types.AssetTypeIndexFund)
	case "BOND":
		return optional.Some(types.AssetTypeSovereignBond)
	default:
		return optional.Some(types.AssetTypeOther)
	}
}

func countryFromLocale(locale string) optional.Option[string] {
	if locale == "" {
		return optional.None[string]()
	}

	return optional.Some(strings.ToUpper(locale))
}

func someIfPositive(v float64) optional.Option[float64] {
	if v > 0 {
		return optional.Some(v)
	}

	return optional.None[float64]()
}
