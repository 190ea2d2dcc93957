// Package synthetic produces internally-consistent mock market data for
// offline operation and as the fallback tier behind a failing external
// provider. The output is shaped like a real feed: snapshots carry a
// previous close and day change, and historical series follow a
// multiplicative random walk anchored to the live value.
package synthetic

import (
	"hash/fnv"
	"math"
	"math/rand"
	"time"

	"github.com/moznion/go-optional"

	"github.com/fairview-lab/terminal-gateway/internal/types"
)

const (
	// dailyDrift is the constant multiplicative bias per step of the
	// historical walk, a slight long-run upward trend.
	dailyDrift = 1.0003

	// baseVolatility scales the symmetric per-step noise for calm
	// instruments; volatile classes get volatileVolatility.
	baseVolatility     = 0.006
	volatileVolatility = 0.018

	// snapshotPerturbation bounds the previous-close perturbation and the
	// day-change perturbation of a point snapshot.
	snapshotPerturbation = 0.01
	// snapshotUpwardBias shifts the day-change perturbation slightly
	// positive so generated markets trend green more often than red.
	snapshotUpwardBias = 0.002

	// valueFloor clamps every generated value to a strictly positive
	// minimum.
	valueFloor = 0.01

	priceDecimals   = 4
	percentDecimals = 2
)

// Generator produces synthetic market data. It is pure with respect to its
// inputs except for the injected randomness source, so tests can fix the
// seed and assert exact output.
//
// Point snapshots are deterministic per ticker and calendar day: repeated
// reads within a day return the same value, which keeps a historical
// series' anchor consistent with an adjacent snapshot call. The historical
// walk itself draws from the advancing source, so intermediate points
// differ between calls.
type Generator struct {
	seed int64
	rng  *rand.Rand
	now  func() time.Time
}

// NewGenerator creates a Generator with the given seed.
// Use a fixed seed for reproducible results in tests.
func NewGenerator(seed int64) *Generator {
	return &Generator{
		seed: seed,
		rng:  rand.New(rand.NewSource(seed)),
		now:  time.Now,
	}
}

// NewGeneratorWithClock creates a Generator with a fixed clock, for tests
// that assert timestamps.
func NewGeneratorWithClock(seed int64, now func() time.Time) *Generator {
	return &Generator{
		seed: seed,
		rng:  rand.New(rand.NewSource(seed)),
		now:  now,
	}
}

// snapshotRand derives a deterministic source for a ticker's snapshot on
// the current calendar day.
func (g *Generator) snapshotRand(ticker string) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(ticker))
	h.Write([]byte(g.now().UTC().Format("2006-01-02")))

	return rand.New(rand.NewSource(g.seed ^ int64(h.Sum64())))
}

// Instruments returns the fixed reference instrument set.
func (g *Generator) Instruments() []types.Instrument {
	out := make([]types.Instrument, 0, len(referenceSet))
	for _, e := range referenceSet {
		out = append(out, e.instrument)
	}

	return out
}

// Snapshot generates a point-in-time snapshot for the ticker. The previous
// close is the base value under a small symmetric perturbation, and the
// current value perturbs the previous close with a slight upward bias.
func (g *Generator) Snapshot(ticker string) types.MarketDataPoint {
	base := baseValue(ticker)
	rng := g.snapshotRand(ticker)

	previousClose := base * (1 + symmetric(rng, snapshotPerturbation))
	if previousClose < valueFloor {
		previousClose = valueFloor
	}

	current := previousClose * (1 + symmetric(rng, snapshotPerturbation) + snapshotUpwardBias)
	if current < valueFloor {
		current = valueFloor
	}

	changeValue := current - previousClose

	changePercent := 0.0
	if previousClose != 0 {
		changePercent = changeValue / previousClose * 100
	}

	spread := current * 0.0005

	point := types.MarketDataPoint{
		Ticker:        ticker,
		Price:         roundTo(current, priceDecimals),
		Timestamp:     g.now(),
		PreviousClose: optional.Some(roundTo(previousClose, priceDecimals)),
		ChangeValue:   optional.Some(roundTo(changeValue, priceDecimals)),
		ChangePercent: optional.Some(roundTo(changePercent, percentDecimals)),
		Bid:           optional.Some(roundTo(current-spread, priceDecimals)),
		Ask:           optional.Some(roundTo(current+spread, priceDecimals)),
		Volume:        optional.Some(math.Floor(rng.Float64() * 1_000_000)),
		Yield:         optional.None[float64](),
		Duration:      optional.None[float64](),
		Convexity:     optional.None[float64](),
	}

	if isFixedIncome(ticker) {
		// For fixed income tickers the walked value is a yield in percent.
		point.Yield = optional.Some(point.Price)
	}

	return point
}

// Historical generates a daily series of the requested length ending at
// the given current value. The walk is multiplicative with a small upward
// drift and noise scaled by the instrument's volatility class; the final
// point is forcibly overwritten with the current value so the series stays
// continuous with live data.
func (g *Generator) Historical(ticker string, points int, current float64) []types.PricePoint {
	if points <= 0 {
		return []types.PricePoint{}
	}

	dates := g.tradingDays(points)
	volatility := g.volatilityFor(ticker)

	// Walk backward from the anchor so the series converges on the
	// current value, then clamp to the positive floor.
	values := make([]float64, points)
	values[points-1] = current

	for i := points - 2; i >= 0; i-- {
		noise := symmetric(g.rng, volatility)

		prev := values[i+1] / (dailyDrift * (1 + noise))
		if prev < valueFloor {
			prev = valueFloor
		}

		values[i] = prev
	}

	series := make([]types.PricePoint, points)
	for i := range series {
		series[i] = types.PricePoint{
			Date:  dates[i],
			Value: roundTo(values[i], priceDecimals),
		}
	}

	// Continuity anchor: the last point always equals the live value,
	// whatever the walk produced.
	series[points-1].Value = roundTo(current, priceDecimals)

	return series
}

// symmetric draws a uniform perturbation in [-magnitude, magnitude).
func symmetric(rng *rand.Rand, magnitude float64) float64 {
	return (rng.Float64()*2 - 1) * magnitude
}

// volatilityFor maps the instrument's asset classification to a per-step
// noise magnitude. Currency pairs and index funds move more than bonds.
func (g *Generator) volatilityFor(ticker string) float64 {
	if at, err := assetTypeOf(ticker).Take(); err == nil {
		switch at {
		case types.AssetTypeCurrencyPair, types.AssetTypeIndexFund:
			return volatileVolatility
		case types.AssetTypeSovereignBond, types.AssetTypeTreasuryBill,
			types.AssetTypeMunicipalBond, types.AssetTypeAgencyBond,
			types.AssetTypeInflationLinked, types.AssetTypeOther:
			return baseVolatility
		}
	}

	// Unknown tickers are treated as volatile; AAPL-style equities move
	// more like index funds than like bills.
	return volatileVolatility
}

// tradingDays returns the last n weekdays in ascending order, ending today.
func (g *Generator) tradingDays(n int) []time.Time {
	dates := make([]time.Time, n)

	day := g.now().UTC().Truncate(24 * time.Hour)
	for i := n - 1; i >= 0; i-- {
		for day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			day = day.AddDate(0, 0, -1)
		}

		dates[i] = day
		day = day.AddDate(0, 0, -1)
	}

	return dates
}

func isFixedIncome(ticker string) bool {
	if at, err := assetTypeOf(ticker).Take(); err == nil {
		switch at {
		case types.AssetTypeSovereignBond, types.AssetTypeTreasuryBill,
			types.AssetTypeMunicipalBond, types.AssetTypeAgencyBond,
			types.AssetTypeInflationLinked:
			return true
		case types.AssetTypeIndexFund, types.AssetTypeCurrencyPair, types.AssetTypeOther:
			return false
		}
	}

	return false
}

// roundTo rounds a value to the given number of decimal places.
func roundTo(val float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))

	return math.Round(val*pow) / pow
}
