package synthetic

import (
	"time"

	"github.com/moznion/go-optional"

	"github.com/fairview-lab/terminal-gateway/internal/types"
)

// referenceEntry pairs an instrument with the base value the random walk
// is seeded from. For fixed income tickers the base is a yield in percent;
// for everything else it is a price.
type referenceEntry struct {
	instrument types.Instrument
	base       float64
}

// DefaultBaseValue seeds the walk for tickers outside the reference set.
const DefaultBaseValue = 100.0

func maturity(year, month, day int) optional.Option[time.Time] {
	return optional.Some(time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC))
}

// referenceSet is the fixed instrument universe served when no external
// provider is configured. The curve tickers line up with the default
// yield-curve configuration.
var referenceSet = []referenceEntry{
	{
		instrument: types.Instrument{
			Ticker:       "US1M",
			Name:         "U.S. Treasury Bill 1 Month",
			AssetType:    optional.Some(types.AssetTypeTreasuryBill),
			Country:      optional.Some("US"),
			MaturityDate: maturity(2026, 10, 1),
		},
		base: 5.38,
	},
	{
		instrument: types.Instrument{
			Ticker:       "US3M",
			Name:         "U.S. Treasury Bill 3 Months",
			AssetType:    optional.Some(types.AssetTypeTreasuryBill),
			Country:      optional.Some("US"),
			MaturityDate: maturity(2026, 12, 1),
		},
		base: 5.27,
	},
	{
		instrument: types.Instrument{
			Ticker:       "US6M",
			Name:         "U.S. Treasury Bill 6 Months",
			AssetType:    optional.Some(types.AssetTypeTreasuryBill),
			Country:      optional.Some("US"),
			MaturityDate: maturity(2027, 3, 1),
		},
		base: 5.12,
	},
	{
		instrument: types.Instrument{
			Ticker:       "US1Y",
			Name:         "U.S. Treasury Note 1 Year",
			AssetType:    optional.Some(types.AssetTypeSovereignBond),
			Country:      optional.Some("US"),
			MaturityDate: maturity(2027, 9, 1),
		},
		base: 4.82,
	},
	{
		instrument: types.Instrument{
			Ticker:       "US2Y",
			Name:         "U.S. Treasury Note 2 Years",
			AssetType:    optional.Some(types.AssetTypeSovereignBond),
			Country:      optional.Some("US"),
			MaturityDate: maturity(2028, 9, 1),
		},
		base: 4.31,
	},
	{
		instrument: types.Instrument{
			Ticker:       "US5Y",
			Name:         "U.S. Treasury Note 5 Years",
			AssetType:    optional.Some(types.AssetTypeSovereignBond),
			Country:      optional.Some("US"),
			MaturityDate: maturity(2031, 9, 1),
		},
		base: 4.12,
	},
	{
		instrument: types.Instrument{
			Ticker:       "US10Y",
			Name:         "U.S. Treasury Note 10 Years",
			AssetType:    optional.Some(types.AssetTypeSovereignBond),
			Country:      optional.Some("US"),
			MaturityDate: maturity(2036, 9, 1),
		},
		base: 4.24,
	},
	{
		instrument: types.Instrument{
			Ticker:       "US30Y",
			Name:         "U.S. Treasury Bond 30 Years",
			AssetType:    optional.Some(types.AssetTypeSovereignBond),
			Country:      optional.Some("US"),
			MaturityDate: maturity(2056, 9, 1),
		},
		base: 4.47,
	},
	{
		instrument: types.Instrument{
			Ticker:       "TIP",
			Name:         "iShares TIPS Bond ETF",
			AssetType:    optional.Some(types.AssetTypeInflationLinked),
			Country:      optional.Some("US"),
			MaturityDate: optional.None[time.Time](),
		},
		base: 108.40,
	},
	{
		instrument: types.Instrument{
			Ticker:       "MUB",
			Name:         "iShares National Muni Bond ETF",
			AssetType:    optional.Some(types.AssetTypeMunicipalBond),
			Country:      optional.Some("US"),
			MaturityDate: optional.None[time.Time](),
		},
		base: 105.10,
	},
	{
		instrument: types.Instrument{
			Ticker:       "AGZ",
			Name:         "iShares Agency Bond ETF",
			AssetType:    optional.Some(types.AssetTypeAgencyBond),
			Country:      optional.Some("US"),
			MaturityDate: optional.None[time.Time](),
		},
		base: 106.75,
	},
	{
		instrument: types.Instrument{
			Ticker:       "SPY",
			Name:         "SPDR S&P 500 ETF Trust",
			AssetType:    optional.Some(types.AssetTypeIndexFund),
			Country:      optional.Some("US"),
			MaturityDate: optional.None[time.Time](),
		},
		base: 521.30,
	},
	{
		instrument: types.Instrument{
			Ticker:       "AGG",
			Name:         "iShares Core U.S. Aggregate Bond ETF",
			AssetType:    optional.Some(types.AssetTypeIndexFund),
			Country:      optional.Some("US"),
			MaturityDate: optional.None[time.Time](),
		},
		base: 98.20,
	},
	{
		instrument: types.Instrument{
			Ticker:       "EURUSD",
			Name:         "Euro / U.S. Dollar",
			AssetType:    optional.Some(types.AssetTypeCurrencyPair),
			Country:      optional.None[string](),
			MaturityDate: optional.None[time.Time](),
		},
		base: 1.0840,
	},
	{
		instrument: types.Instrument{
			Ticker:       "GBPUSD",
			Name:         "British Pound / U.S. Dollar",
			AssetType:    optional.Some(types.AssetTypeCurrencyPair),
			Country:      optional.None[string](),
			MaturityDate: optional.None[time.Time](),
		},
		base: 1.2710,
	},
}

// baseValue returns the walk seed for a ticker, falling back to
// DefaultBaseValue for tickers outside the reference set.
func baseValue(ticker string) float64 {
	for _, e := range referenceSet {
		if e.instrument.Ticker == ticker {
			return e.base
		}
	}

	return DefaultBaseValue
}

// assetTypeOf returns the reference asset type for a ticker, or None.
func assetTypeOf(ticker string) optional.Option[types.AssetType] {
	for _, e := range referenceSet {
		if e.instrument.Ticker == ticker {
			return e.instrument.AssetType
		}
	}

	return optional.None[types.AssetType]()
}
