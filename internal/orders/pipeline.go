// Package orders implements the order execution pipeline: structural
// validation, the pluggable pre-trade check chain, and submission to the
// configured broker. The pipeline guarantees that no broker call happens
// until validation and every pre-check have passed.
package orders

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fairview-lab/terminal-gateway/internal/broker"
	"github.com/fairview-lab/terminal-gateway/internal/logger"
	"github.com/fairview-lab/terminal-gateway/internal/types"
	"github.com/fairview-lab/terminal-gateway/pkg/errors"
)

// PreCheck is a pre-trade gate run between validation and submission.
// Checks run in registration order; the first failing check aborts the
// pipeline and its error reaches the caller unchanged.
type PreCheck interface {
	// Name identifies the check in logs.
	Name() string
	// Check returns a taxonomy error when the order must not be
	// submitted.
	Check(ctx context.Context, req types.OrderRequest) error
}

// Pipeline executes orders against a broker.
type Pipeline struct {
	broker broker.Broker
	checks []PreCheck
	log    *logger.Logger
	now    func() time.Time
}

// NewPipeline creates a pipeline over the broker with the given pre-trade
// checks.
func NewPipeline(b broker.Broker, checks []PreCheck, log *logger.Logger) *Pipeline {
	return &Pipeline{
		broker: b,
		checks: checks,
		log:    log,
		now:    time.Now,
	}
}

// Execute runs the full pipeline for one order request. Stages run in a
// fixed order: normalize, validate, pre-checks, submit. A failure at any
// stage stops the pipeline; earlier stages never touch the network.
func (p *Pipeline) Execute(ctx context.Context, req types.OrderRequest) (types.Order, error) {
	req = req.Normalized()

	if err := req.Validate(); err != nil {
		return types.Order{}, err
	}

	for _, check := range p.checks {
		if err := check.Check(ctx, req); err != nil {
			p.log.Warn("pre-trade check rejected order",
				zap.String("check", check.Name()),
				zap.String("ticker", req.Ticker),
				zap.Error(err))

			return types.Order{}, errors.Ensure(err, "pre-trade check "+check.Name()+" failed")
		}
	}

	order, err := p.broker.SubmitOrder(ctx, req)
	if err != nil {
		return types.Order{}, errors.Ensure(err, "order submission failed")
	}

	now := p.now().UTC()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}

	if order.UpdatedAt.IsZero() {
		order.UpdatedAt = now
	}

	if order.Status == "" {
		order.Status = types.OrderStatusAccepted
	}

	p.log.Info("order submitted",
		zap.String("id", order.ID),
		zap.String("ticker", order.Ticker),
		zap.String("side", string(order.Side)),
		zap.Float64("quantity", order.Quantity),
		zap.String("status", string(order.Status)))

	return order, nil
}

// Status looks up a previously submitted order.
func (p *Pipeline) Status(ctx context.Context, ticker, orderID string) (types.Order, error) {
	if orderID == "" {
		return types.Order{}, errors.New(errors.KindValidation, "order id is required")
	}

	order, err := p.broker.GetOrderStatus(ctx, ticker, orderID)
	if err != nil {
		return types.Order{}, errors.Ensure(err, "order status lookup failed")
	}

	return order, nil
}
