package errors

// Kind identifies a failure class in the gateway's closed error taxonomy.
type Kind string

const (
	// KindValidation indicates caller-supplied input violates a contract
	// (missing field, non-positive amount, limit order without limit price).
	// Never retried; surfaced immediately to the caller.
	KindValidation Kind = "validation"

	// KindDataProvider indicates the market, historical, or yield data
	// source returned no usable data or an unrecoverable response. May
	// trigger fallback to synthetic generation where configured.
	KindDataProvider Kind = "data_provider"

	// KindBrokerConnection indicates the order, position, or balance
	// backend is unreachable or misconfigured. Distinct from data errors
	// so the caller can tell "can't trade" from "can't see data".
	KindBrokerConnection Kind = "broker_connection"

	// KindAuthorization indicates rejected credentials. Distinct from
	// connection errors so the caller can prompt for re-authentication
	// rather than retry.
	KindAuthorization Kind = "authorization"

	// KindMarketCondition indicates the market or instrument is closed,
	// halted, or otherwise unable to accept the order right now.
	KindMarketCondition Kind = "market_condition"

	// KindCompliance indicates the order violates a policy or regulatory
	// rule such as a position limit or a restricted instrument.
	KindCompliance Kind = "compliance"

	// KindAPI is the catch-all kind wrapping any other unexpected failure.
	KindAPI Kind = "api"
)

// Retryable reports whether a failure of this kind is safe for the caller
// to retry. Validation, compliance, and market-condition failures are not;
// connection-level failures are.
func (k Kind) Retryable() bool {
	switch k {
	case KindBrokerConnection, KindDataProvider, KindAPI:
		return true
	case KindValidation, KindAuthorization, KindMarketCondition, KindCompliance:
		return false
	default:
		return false
	}
}
