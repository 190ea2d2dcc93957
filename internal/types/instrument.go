package types

import (
	"time"

	"github.com/moznion/go-optional"
)

// AssetType classifies an instrument for display grouping and for the
// synthetic generator's volatility model.
type AssetType string

const (
	AssetTypeSovereignBond   AssetType = "SOVEREIGN_BOND"
	AssetTypeTreasuryBill    AssetType = "TREASURY_BILL"
	AssetTypeMunicipalBond   AssetType = "MUNICIPAL_BOND"
	AssetTypeAgencyBond      AssetType = "AGENCY_BOND"
	AssetTypeInflationLinked AssetType = "INFLATION_LINKED"
	AssetTypeIndexFund       AssetType = "INDEX_FUND"
	AssetTypeCurrencyPair    AssetType = "CURRENCY_PAIR"
	AssetTypeOther           AssetType = "OTHER"
)

// Instrument is immutable reference data describing a tradeable instrument.
// It is created by the provider or generator and never mutated by clients.
type Instrument struct {
	// Ticker is the unique string key for the instrument.
	Ticker string `json:"ticker" yaml:"ticker"`
	// Name is the human-readable instrument name.
	Name string `json:"name" yaml:"name"`
	// AssetType is the instrument classification. Can be None when the
	// provider does not report one.
	AssetType optional.Option[AssetType] `json:"asset_type" yaml:"asset_type"`
	// Country is the ISO country of the issuer, if known.
	Country optional.Option[string] `json:"country" yaml:"country"`
	// MaturityDate is set for dated instruments such as bonds and bills.
	MaturityDate optional.Option[time.Time] `json:"maturity_date" yaml:"maturity_date"`
}
