package types

import "github.com/moznion/go-optional"

// Position is a read-only projection maintained by the backing brokerage.
// The gateway never computes or mutates it beyond best-effort enrichment
// with the current price.
type Position struct {
	Ticker       string  `json:"ticker" yaml:"ticker"`
	Quantity     float64 `json:"quantity" yaml:"quantity"`
	AveragePrice float64 `json:"average_price" yaml:"average_price"`
	// CurrentPrice is filled in by the gateway when a contemporaneous
	// market data read succeeds; None otherwise.
	CurrentPrice  optional.Option[float64] `json:"current_price" yaml:"current_price"`
	MarketValue   optional.Option[float64] `json:"market_value" yaml:"market_value"`
	UnrealizedPnl optional.Option[float64] `json:"unrealized_pnl" yaml:"unrealized_pnl"`
	RealizedPnl   optional.Option[float64] `json:"realized_pnl" yaml:"realized_pnl"`
}

// AccountBalance is a read-only snapshot of the account's cash state.
type AccountBalance struct {
	Cash           float64                  `json:"cash" yaml:"cash"`
	Currency       string                   `json:"currency" yaml:"currency"`
	BuyingPower    optional.Option[float64] `json:"buying_power" yaml:"buying_power"`
	PortfolioValue optional.Option[float64] `json:"portfolio_value" yaml:"portfolio_value"`
	SettledCash    optional.Option[float64] `json:"settled_cash" yaml:"settled_cash"`
}
