// Package transactions implements the money-movement workflows: deposit,
// withdraw, and transfer. The manager owns validation and per-method
// minimum amounts; actual settlement is delegated to a backend.
package transactions

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fairview-lab/terminal-gateway/internal/logger"
	"github.com/fairview-lab/terminal-gateway/internal/types"
	"github.com/fairview-lab/terminal-gateway/pkg/errors"
)

// Minimum amounts per method. Comparisons use decimals so 0.999999
// float artifacts never slip past a minimum.
var defaultMinimums = map[types.TransactionMethod]decimal.Decimal{
	types.TransactionMethodDeposit:  decimal.NewFromFloat(1.00),
	types.TransactionMethodWithdraw: decimal.NewFromFloat(1.00),
	types.TransactionMethodTransfer: decimal.NewFromFloat(0.01),
}

// Manager runs the transaction workflows.
type Manager struct {
	settlement Settlement
	minimums   map[types.TransactionMethod]decimal.Decimal
	log        *logger.Logger
}

// NewManager creates a manager over the settlement backend with the
// default per-method minimums.
func NewManager(settlement Settlement, log *logger.Logger) *Manager {
	return &Manager{
		settlement: settlement,
		minimums:   defaultMinimums,
		log:        log,
	}
}

// Process validates the request, enforces the method's minimum amount,
// and hands it to the settlement backend. The backend is never called
// for a request that fails validation.
func (m *Manager) Process(ctx context.Context, req types.TransactionRequest) (types.TransactionStatus, error) {
	if err := req.Validate(); err != nil {
		return types.TransactionStatus{}, err
	}

	minimum, ok := m.minimums[req.Method]
	if !ok {
		return types.TransactionStatus{}, errors.Newf(errors.KindValidation, "unsupported transaction method: %s", req.Method)
	}

	if decimal.NewFromFloat(req.Amount).LessThan(minimum) {
		return types.TransactionStatus{}, errors.Newf(errors.KindValidation,
			"%s amount %.2f is below the %s minimum", req.Method, req.Amount, minimum.StringFixed(2))
	}

	status, err := m.settlement.Settle(ctx, req)
	if err != nil {
		return types.TransactionStatus{}, errors.Ensure(err, "transaction settlement failed")
	}

	m.log.Info("transaction accepted",
		zap.String("id", status.TransactionID),
		zap.String("method", string(req.Method)),
		zap.Float64("amount", req.Amount),
		zap.String("status", string(status.Status)))

	return status, nil
}

// InitiateDeposit processes req as a deposit regardless of the method
// set on the request.
func (m *Manager) InitiateDeposit(ctx context.Context, req types.TransactionRequest) (types.TransactionStatus, error) {
	req.Method = types.TransactionMethodDeposit

	return m.Process(ctx, req)
}

// InitiateWithdraw processes req as a withdrawal.
func (m *Manager) InitiateWithdraw(ctx context.Context, req types.TransactionRequest) (types.TransactionStatus, error) {
	req.Method = types.TransactionMethodWithdraw

	return m.Process(ctx, req)
}

// InitiateTransfer processes req as a transfer.
func (m *Manager) InitiateTransfer(ctx context.Context, req types.TransactionRequest) (types.TransactionStatus, error) {
	req.Method = types.TransactionMethodTransfer

	return m.Process(ctx, req)
}

// Status looks up a previously accepted transaction.
func (m *Manager) Status(ctx context.Context, transactionID string) (types.TransactionStatus, error) {
	if transactionID == "" {
		return types.TransactionStatus{}, errors.New(errors.KindValidation, "transaction id is required")
	}

	status, err := m.settlement.Status(ctx, transactionID)
	if err != nil {
		return types.TransactionStatus{}, errors.Ensure(err, "transaction status lookup failed")
	}

	return status, nil
}
