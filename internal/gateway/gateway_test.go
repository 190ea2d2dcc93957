package gateway

import (
	"context"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/suite"

	"github.com/fairview-lab/terminal-gateway/internal/logger"
	"github.com/fairview-lab/terminal-gateway/internal/synthetic"
	"github.com/fairview-lab/terminal-gateway/internal/types"
	"github.com/fairview-lab/terminal-gateway/pkg/errors"
	"github.com/fairview-lab/terminal-gateway/pkg/marketdata/provider"
)

// stubProvider scripts per-ticker responses and records calls so tests can
// assert which tiers of the fallback chain ran.
type stubProvider struct {
	instruments []types.Instrument
	listErr     error

	snapshots    map[string]types.MarketDataPoint
	snapshotErr  map[string]error
	prevCloses   map[string]types.MarketDataPoint
	prevCloseErr map[string]error
	bars         map[string][]types.PricePoint
	barsErr      map[string]error

	snapshotCalls  []string
	prevCloseCalls []string
	barsCalls      []string
}

func newStubProvider() *stubProvider {
	return &stubProvider{
		snapshots:    make(map[string]types.MarketDataPoint),
		snapshotErr:  make(map[string]error),
		prevCloses:   make(map[string]types.MarketDataPoint),
		prevCloseErr: make(map[string]error),
		bars:         make(map[string][]types.PricePoint),
		barsErr:      make(map[string]error),
	}
}

func (s *stubProvider) ListInstruments(_ context.Context) ([]types.Instrument, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}

	return s.instruments, nil
}

func (s *stubProvider) GetSnapshot(_ context.Context, ticker string) (types.MarketDataPoint, error) {
	s.snapshotCalls = append(s.snapshotCalls, ticker)

	if err, ok := s.snapshotErr[ticker]; ok {
		return types.MarketDataPoint{}, err
	}

	return s.snapshots[ticker], nil
}

func (s *stubProvider) GetPreviousClose(_ context.Context, ticker string) (types.MarketDataPoint, error) {
	s.prevCloseCalls = append(s.prevCloseCalls, ticker)

	if err, ok := s.prevCloseErr[ticker]; ok {
		return types.MarketDataPoint{}, err
	}

	return s.prevCloses[ticker], nil
}

func (s *stubProvider) GetDailyBars(_ context.Context, ticker string, _, _ time.Time) ([]types.PricePoint, error) {
	s.barsCalls = append(s.barsCalls, ticker)

	if err, ok := s.barsErr[ticker]; ok {
		return nil, err
	}

	return s.bars[ticker], nil
}

var _ provider.Provider = (*stubProvider)(nil)

type GatewayTestSuite struct {
	suite.Suite
	stub *stubProvider
	log  *logger.Logger
}

func TestGatewayTestSuite(t *testing.T) {
	suite.Run(t, new(GatewayTestSuite))
}

func (s *GatewayTestSuite) SetupTest() {
	s.stub = newStubProvider()
	s.log = logger.NewNopLogger()
}

func (s *GatewayTestSuite) newGateway(opts Options) *Gateway {
	return New(s.stub, nil, opts, s.log)
}

func (s *GatewayTestSuite) TestGetMarketDataEmptyTickerRejected() {
	gw := s.newGateway(Options{})

	_, err := gw.GetMarketData(context.Background(), "   ")
	s.Require().Error(err)
	s.True(errors.HasKind(err, errors.KindValidation))
	s.Empty(s.stub.snapshotCalls)
}

func (s *GatewayTestSuite) TestGetMarketDataRounding() {
	s.stub.snapshots["SPY"] = types.MarketDataPoint{
		Ticker:        "SPY",
		Price:         521.123456,
		PreviousClose: optional.Some(519.987654),
		Timestamp:     time.Now().UTC(),
	}

	gw := s.newGateway(Options{})

	point, err := gw.GetMarketData(context.Background(), "SPY")
	s.Require().NoError(err)
	s.Equal(521.1235, point.Price)
	s.Equal(519.9877, point.PreviousClose.Unwrap())

	s.Require().True(point.ChangePercent.IsSome())
	pct := point.ChangePercent.Unwrap()
	s.Equal(pct, roundTo(pct, 2))
}

func (s *GatewayTestSuite) TestGetMarketDataBackfillNeverOverwrites() {
	// Snapshot carries a price but no previous close; the backfill call
	// must supply the missing close without touching the live price.
	s.stub.snapshots["AGG"] = types.MarketDataPoint{
		Ticker:    "AGG",
		Price:     98.5,
		Timestamp: time.Now().UTC(),
	}
	s.stub.prevCloses["AGG"] = types.MarketDataPoint{
		Ticker:        "AGG",
		Price:         97.9,
		PreviousClose: optional.Some(97.9),
		Timestamp:     time.Now().UTC().Add(-24 * time.Hour),
	}

	gw := s.newGateway(Options{})

	point, err := gw.GetMarketData(context.Background(), "AGG")
	s.Require().NoError(err)
	s.Equal(98.5, point.Price)
	s.Equal(97.9, point.PreviousClose.Unwrap())
	s.InDelta(0.6, point.ChangeValue.Unwrap(), 1e-9)
	s.Equal([]string{"AGG"}, s.stub.prevCloseCalls)
}

func (s *GatewayTestSuite) TestGetMarketDataPreviousCloseTier() {
	// Snapshot fails outright; the previous close becomes the price and
	// keeps its own stale timestamp.
	stale := time.Date(2026, 8, 31, 20, 0, 0, 0, time.UTC)
	s.stub.snapshotErr["MUB"] = errors.New(errors.KindDataProvider, "snapshot unavailable")
	s.stub.prevCloses["MUB"] = types.MarketDataPoint{
		Ticker:        "MUB",
		Price:         105.1,
		PreviousClose: optional.Some(105.1),
		Timestamp:     stale,
	}

	gw := s.newGateway(Options{})

	point, err := gw.GetMarketData(context.Background(), "MUB")
	s.Require().NoError(err)
	s.Equal(105.1, point.Price)
	s.Equal(stale, point.Timestamp)
}

func (s *GatewayTestSuite) TestGetMarketDataSyntheticFallback() {
	s.stub.snapshotErr["US10Y"] = errors.New(errors.KindDataProvider, "snapshot unavailable")
	s.stub.prevCloseErr["US10Y"] = errors.New(errors.KindDataProvider, "aggregates unavailable")

	fallback := provider.NewSyntheticProvider(synthetic.NewGenerator(7))
	gw := New(s.stub, fallback, Options{FallbackToSynthetic: true}, s.log)

	point, err := gw.GetMarketData(context.Background(), "US10Y")
	s.Require().NoError(err)
	s.Equal("US10Y", point.Ticker)
	s.Greater(point.Price, 0.0)
}

func (s *GatewayTestSuite) TestGetMarketDataExhaustedWithoutFallback() {
	s.stub.snapshotErr["GBPUSD"] = errors.New(errors.KindDataProvider, "snapshot unavailable")
	s.stub.prevCloseErr["GBPUSD"] = errors.New(errors.KindDataProvider, "aggregates unavailable")

	gw := s.newGateway(Options{})

	_, err := gw.GetMarketData(context.Background(), "GBPUSD")
	s.Require().Error(err)
	s.True(errors.HasKind(err, errors.KindDataProvider))
}

func (s *GatewayTestSuite) TestGetHistoricalDataUnknownRange() {
	gw := s.newGateway(Options{})

	_, err := gw.GetHistoricalData(context.Background(), "SPY", Range("5y"))
	s.Require().Error(err)
	s.True(errors.HasKind(err, errors.KindValidation))
}

func (s *GatewayTestSuite) TestRangeWindows() {
	tests := []struct {
		rng    Range
		points int
	}{
		{rng: RangeOneMonth, points: 22},
		{rng: RangeSixMonths, points: 126},
		{rng: RangeOneYear, points: 252},
	}

	for _, tt := range tests {
		points, ok := tt.rng.Window()
		s.Require().True(ok)
		s.Equal(tt.points, points)
	}

	_, ok := Range("5y").Window()
	s.False(ok)
}

func (s *GatewayTestSuite) TestGetHistoricalDataEmptySeriesIsValid() {
	s.stub.bars["IPO1"] = []types.PricePoint{}

	gw := s.newGateway(Options{})

	series, err := gw.GetHistoricalData(context.Background(), "IPO1", RangeOneMonth)
	s.Require().NoError(err)
	s.Equal("IPO1", series.Ticker)
	s.Empty(series.Points)
}

func (s *GatewayTestSuite) TestGetHistoricalDataRoundsValues() {
	s.stub.bars["SPY"] = []types.PricePoint{
		{Date: time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC), Value: 520.123456},
		{Date: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), Value: 521.987654},
	}

	gw := s.newGateway(Options{})

	series, err := gw.GetHistoricalData(context.Background(), "SPY", RangeSixMonths)
	s.Require().NoError(err)
	s.Equal(520.1235, series.Points[0].Value)
	s.Equal(521.9877, series.Points[1].Value)
}

func (s *GatewayTestSuite) TestSyntheticHistoricalEndsAtCurrentPrice() {
	synth := provider.NewSyntheticProvider(synthetic.NewGenerator(7))
	gw := New(synth, nil, Options{}, s.log)

	point, err := gw.GetMarketData(context.Background(), "SPY")
	s.Require().NoError(err)

	series, err := gw.GetHistoricalData(context.Background(), "SPY", RangeOneMonth)
	s.Require().NoError(err)
	s.Require().NotEmpty(series.Points)

	last, ok := series.Last()
	s.Require().True(ok)
	s.Equal(point.Price, last.Value)
}

func (s *GatewayTestSuite) TestGetGovBondYieldsOrderedByTenor() {
	curve := map[types.Tenor]string{
		types.Tenor10Y: "US10Y",
		types.Tenor1M:  "US1M",
		types.Tenor2Y:  "US2Y",
	}

	s.stub.snapshots["US1M"] = yieldSnapshot("US1M", 5.38)
	s.stub.snapshots["US2Y"] = yieldSnapshot("US2Y", 4.31)
	s.stub.snapshots["US10Y"] = yieldSnapshot("US10Y", 4.24)

	gw := s.newGateway(Options{YieldCurve: curve})

	points, err := gw.GetGovBondYields(context.Background())
	s.Require().NoError(err)
	s.Require().Len(points, 3)
	s.Equal(types.Tenor1M, points[0].Maturity)
	s.Equal(types.Tenor2Y, points[1].Maturity)
	s.Equal(types.Tenor10Y, points[2].Maturity)
}

func (s *GatewayTestSuite) TestGetGovBondYieldsPartialFailure() {
	curve := map[types.Tenor]string{
		types.Tenor1M:  "US1M",
		types.Tenor2Y:  "US2Y",
		types.Tenor10Y: "US10Y",
	}

	s.stub.snapshots["US1M"] = yieldSnapshot("US1M", 5.38)
	s.stub.snapshots["US10Y"] = yieldSnapshot("US10Y", 4.24)
	s.stub.snapshotErr["US2Y"] = errors.New(errors.KindDataProvider, "snapshot unavailable")
	s.stub.prevCloseErr["US2Y"] = errors.New(errors.KindDataProvider, "aggregates unavailable")

	gw := s.newGateway(Options{YieldCurve: curve})

	points, err := gw.GetGovBondYields(context.Background())
	s.Require().NoError(err)
	s.Require().Len(points, 2)
	s.Equal(types.Tenor1M, points[0].Maturity)
	s.Equal(types.Tenor10Y, points[1].Maturity)
}

func (s *GatewayTestSuite) TestGetGovBondYieldsAllFailed() {
	curve := map[types.Tenor]string{types.Tenor1M: "US1M", types.Tenor10Y: "US10Y"}

	for _, ticker := range []string{"US1M", "US10Y"} {
		s.stub.snapshotErr[ticker] = errors.New(errors.KindDataProvider, "snapshot unavailable")
		s.stub.prevCloseErr[ticker] = errors.New(errors.KindDataProvider, "aggregates unavailable")
	}

	gw := s.newGateway(Options{YieldCurve: curve})

	_, err := gw.GetGovBondYields(context.Background())
	s.Require().Error(err)
	s.True(errors.HasKind(err, errors.KindDataProvider))
	s.Contains(err.Error(), "no valid yield data")
}

func (s *GatewayTestSuite) TestGetGovBondYieldsEmptyCurve() {
	gw := s.newGateway(Options{})

	_, err := gw.GetGovBondYields(context.Background())
	s.Require().Error(err)
	s.True(errors.HasKind(err, errors.KindValidation))
}

func (s *GatewayTestSuite) TestGetTopMoversSplitsAndOrders() {
	universe := []string{"AAA", "BBB", "CCC", "DDD", "EEE"}
	changes := map[string]float64{"AAA": 2.4, "BBB": -1.1, "CCC": 0.8, "DDD": -3.6, "EEE": 1.5}

	for ticker, pct := range changes {
		s.stub.snapshots[ticker] = types.MarketDataPoint{
			Ticker:        ticker,
			Price:         100 * (1 + pct/100),
			PreviousClose: optional.Some(100.0),
			ChangeValue:   optional.Some(pct),
			ChangePercent: optional.Some(pct),
			Timestamp:     time.Now().UTC(),
		}
	}

	gw := s.newGateway(Options{})

	movers, err := gw.GetTopMovers(context.Background(), universe, 2)
	s.Require().NoError(err)

	s.Require().Len(movers.Gainers, 2)
	s.Equal("AAA", movers.Gainers[0].Ticker)
	s.Equal("EEE", movers.Gainers[1].Ticker)

	s.Require().Len(movers.Losers, 2)
	s.Equal("DDD", movers.Losers[0].Ticker)
	s.Equal("BBB", movers.Losers[1].Ticker)
}

func (s *GatewayTestSuite) TestGetTopMoversDropsFailures() {
	s.stub.snapshots["AAA"] = types.MarketDataPoint{
		Ticker:        "AAA",
		Price:         101,
		PreviousClose: optional.Some(100.0),
		ChangePercent: optional.Some(1.0),
		ChangeValue:   optional.Some(1.0),
		Timestamp:     time.Now().UTC(),
	}
	s.stub.snapshotErr["BAD"] = errors.New(errors.KindDataProvider, "snapshot unavailable")
	s.stub.prevCloseErr["BAD"] = errors.New(errors.KindDataProvider, "aggregates unavailable")

	gw := s.newGateway(Options{})

	movers, err := gw.GetTopMovers(context.Background(), []string{"AAA", "BAD"}, 5)
	s.Require().NoError(err)
	s.Require().Len(movers.Gainers, 1)
	s.Equal("AAA", movers.Gainers[0].Ticker)
	s.Require().Len(movers.Losers, 1)
	s.Equal("AAA", movers.Losers[0].Ticker)
}

func (s *GatewayTestSuite) TestGetTopMoversAllPositiveUniverse() {
	universe := []string{"AAA", "BBB", "CCC", "DDD"}
	changes := map[string]float64{"AAA": 2.4, "BBB": 1.1, "CCC": 0.8, "DDD": 3.6}

	for ticker, pct := range changes {
		s.stub.snapshots[ticker] = types.MarketDataPoint{
			Ticker:        ticker,
			Price:         100 * (1 + pct/100),
			PreviousClose: optional.Some(100.0),
			ChangeValue:   optional.Some(pct),
			ChangePercent: optional.Some(pct),
			Timestamp:     time.Now().UTC(),
		}
	}

	gw := s.newGateway(Options{})

	movers, err := gw.GetTopMovers(context.Background(), universe, 2)
	s.Require().NoError(err)

	s.Require().Len(movers.Gainers, 2)
	s.Equal("DDD", movers.Gainers[0].Ticker)
	s.Equal("AAA", movers.Gainers[1].Ticker)

	s.Require().Len(movers.Losers, 2)
	s.Equal("CCC", movers.Losers[0].Ticker)
	s.Equal("BBB", movers.Losers[1].Ticker)
}

func (s *GatewayTestSuite) TestGetInstrumentsFallback() {
	s.stub.listErr = errors.New(errors.KindDataProvider, "listing unavailable")

	fallback := provider.NewSyntheticProvider(synthetic.NewGenerator(7))
	gw := New(s.stub, fallback, Options{FallbackToSynthetic: true}, s.log)

	instruments, err := gw.GetInstruments(context.Background())
	s.Require().NoError(err)
	s.NotEmpty(instruments)
}

func (s *GatewayTestSuite) TestEnrichPositionsBestEffort() {
	s.stub.snapshots["SPY"] = types.MarketDataPoint{
		Ticker:        "SPY",
		Price:         520,
		PreviousClose: optional.Some(519.0),
		Timestamp:     time.Now().UTC(),
	}
	s.stub.snapshotErr["BAD"] = errors.New(errors.KindDataProvider, "snapshot unavailable")
	s.stub.prevCloseErr["BAD"] = errors.New(errors.KindDataProvider, "aggregates unavailable")

	gw := s.newGateway(Options{})

	positions := []types.Position{
		{Ticker: "SPY", Quantity: 10, AveragePrice: 500},
		{Ticker: "BAD", Quantity: 3, AveragePrice: 40},
	}

	enriched := gw.EnrichPositions(context.Background(), positions)
	s.Require().Len(enriched, 2)

	s.Equal(5200.0, enriched[0].MarketValue.Unwrap())
	s.Equal(200.0, enriched[0].UnrealizedPnl.Unwrap())
	s.True(enriched[1].CurrentPrice.IsNone())
}

func yieldSnapshot(ticker string, yield float64) types.MarketDataPoint {
	return types.MarketDataPoint{
		Ticker:        ticker,
		Price:         yield,
		PreviousClose: optional.Some(yield - 0.02),
		Yield:         optional.Some(yield),
		Timestamp:     time.Now().UTC(),
	}
}
