package types

import (
	"time"

	"github.com/moznion/go-optional"
)

// Tenor is a time-to-maturity label used to key yield-curve points.
type Tenor string

const (
	Tenor1M  Tenor = "1m"
	Tenor3M  Tenor = "3m"
	Tenor6M  Tenor = "6m"
	Tenor1Y  Tenor = "1y"
	Tenor2Y  Tenor = "2y"
	Tenor5Y  Tenor = "5y"
	Tenor10Y Tenor = "10y"
	Tenor30Y Tenor = "30y"
)

// CurveTenors is the fixed display ordering of the yield curve.
var CurveTenors = []Tenor{Tenor1M, Tenor3M, Tenor6M, Tenor1Y, Tenor2Y, Tenor5Y, Tenor10Y, Tenor30Y}

// TenorRank returns the position of a tenor in the fixed curve ordering.
// Unknown tenors rank after every known one so they sort last.
func TenorRank(t Tenor) int {
	for i, known := range CurveTenors {
		if known == t {
			return i
		}
	}

	return len(CurveTenors)
}

// YieldPoint is one point of a government bond yield curve snapshot.
type YieldPoint struct {
	Maturity Tenor   `json:"maturity" yaml:"maturity"`
	Yield    float64 `json:"yield" yaml:"yield"`
	// Change is the day-over-day yield change in percentage points.
	Change    optional.Option[float64] `json:"change" yaml:"change"`
	Timestamp time.Time                `json:"timestamp" yaml:"timestamp"`
}
