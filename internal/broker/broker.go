// Package broker abstracts order submission and account state behind a
// single interface so the order pipeline and transaction manager never
// talk to a venue SDK directly. Two implementations ship: the live
// Binance-backed broker and an in-memory paper broker used for synthetic
// mode and tests.
package broker

import (
	"context"

	"github.com/fairview-lab/terminal-gateway/internal/types"
)

// Broker is the execution backend. Implementations classify every failure
// into the gateway error taxonomy; callers never see raw SDK errors.
type Broker interface {
	// SubmitOrder sends a validated order to the venue and returns the
	// broker-acknowledged order record.
	SubmitOrder(ctx context.Context, req types.OrderRequest) (types.Order, error)
	// GetOrderStatus looks up an order previously submitted through this
	// broker.
	GetOrderStatus(ctx context.Context, ticker, orderID string) (types.Order, error)
	// GetPositions returns all currently held positions.
	GetPositions(ctx context.Context) ([]types.Position, error)
	// GetAccountBalance returns the cash view of the account.
	GetAccountBalance(ctx context.Context) (types.AccountBalance, error)
}
