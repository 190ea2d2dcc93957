package broker

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"

	"github.com/fairview-lab/terminal-gateway/internal/types"
	"github.com/fairview-lab/terminal-gateway/pkg/errors"
)

// PriceFunc resolves the current price used to fill market orders.
type PriceFunc func(ctx context.Context, ticker string) (float64, error)

// PaperBroker is an in-memory broker that fills every accepted order
// immediately. It backs synthetic mode and tests; no order ever leaves
// the process.
type PaperBroker struct {
	mu        sync.Mutex
	cash      float64
	currency  string
	positions map[string]*types.Position
	orders    map[string]types.Order
	pricer    PriceFunc
	now       func() time.Time
}

// NewPaperBroker creates a paper broker seeded with starting cash. The
// pricer supplies fill prices for market orders; limit orders fill at
// their limit price.
func NewPaperBroker(startingCash float64, currency string, pricer PriceFunc) *PaperBroker {
	if currency == "" {
		currency = "USD"
	}

	return &PaperBroker{
		cash:      startingCash,
		currency:  currency,
		positions: make(map[string]*types.Position),
		orders:    make(map[string]types.Order),
		pricer:    pricer,
		now:       time.Now,
	}
}

func (p *PaperBroker) SubmitOrder(ctx context.Context, req types.OrderRequest) (types.Order, error) {
	req = req.Normalized()

	price, err := p.fillPrice(ctx, req)
	if err != nil {
		return types.Order{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	switch req.Side {
	case types.SideBuy:
		cost := price * req.Quantity
		if cost > p.cash {
			return types.Order{}, errors.Newf(errors.KindValidation,
				"insufficient cash: need %.2f, have %.2f", cost, p.cash)
		}

		p.cash -= cost
		p.applyBuy(req.Ticker, req.Quantity, price)
	case types.SideSell:
		pos, ok := p.positions[req.Ticker]
		if !ok || pos.Quantity < req.Quantity {
			return types.Order{}, errors.Newf(errors.KindValidation,
				"insufficient position in %s", req.Ticker)
		}

		p.cash += price * req.Quantity
		p.applySell(req.Ticker, req.Quantity)
	default:
		return types.Order{}, errors.Newf(errors.KindValidation, "unsupported order side: %s", req.Side)
	}

	now := p.now().UTC()
	order := types.Order{
		ID:         uuid.New().String(),
		Ticker:     req.Ticker,
		Side:       req.Side,
		Quantity:   req.Quantity,
		OrderType:  req.OrderType,
		LimitPrice: req.LimitPrice,
		Status:     types.OrderStatusFilled,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	p.orders[order.ID] = order

	return order, nil
}

func (p *PaperBroker) GetOrderStatus(_ context.Context, _, orderID string) (types.Order, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	order, ok := p.orders[orderID]
	if !ok {
		return types.Order{}, errors.Newf(errors.KindValidation, "unknown order %q", orderID)
	}

	return order, nil
}

func (p *PaperBroker) GetPositions(_ context.Context) ([]types.Position, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	positions := make([]types.Position, 0, len(p.positions))
	for _, pos := range p.positions {
		positions = append(positions, *pos)
	}

	return positions, nil
}

func (p *PaperBroker) GetAccountBalance(_ context.Context) (types.AccountBalance, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return types.AccountBalance{
		Cash:        p.cash,
		Currency:    p.currency,
		BuyingPower: optional.Some(p.cash),
		SettledCash: optional.Some(p.cash),
	}, nil
}

// Deposit credits cash directly. Used by the transaction settlement
// backend in synthetic mode.
func (p *PaperBroker) Deposit(amount float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.cash += amount
}

// Withdraw debits cash directly, failing when the balance would go
// negative.
func (p *PaperBroker) Withdraw(amount float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if amount > p.cash {
		return errors.Newf(errors.KindValidation,
			"insufficient cash: need %.2f, have %.2f", amount, p.cash)
	}

	p.cash -= amount

	return nil
}

func (p *PaperBroker) fillPrice(ctx context.Context, req types.OrderRequest) (float64, error) {
	if req.OrderType == types.OrderTypeLimit {
		return req.LimitPrice.Unwrap(), nil
	}

	if p.pricer == nil {
		return 0, errors.New(errors.KindBrokerConnection, "no price source configured")
	}

	price, err := p.pricer(ctx, req.Ticker)
	if err != nil {
		return 0, errors.Ensure(err, "failed to price "+req.Ticker)
	}

	if price <= 0 {
		return 0, errors.Newf(errors.KindMarketCondition, "no market price for %s", req.Ticker)
	}

	return price, nil
}

func (p *PaperBroker) applyBuy(ticker string, quantity, price float64) {
	pos, ok := p.positions[ticker]
	if !ok {
		p.positions[ticker] = &types.Position{
			Ticker:       ticker,
			Quantity:     quantity,
			AveragePrice: price,
		}

		return
	}

	total := pos.Quantity + quantity
	pos.AveragePrice = (pos.AveragePrice*pos.Quantity + price*quantity) / total
	pos.Quantity = total
}

func (p *PaperBroker) applySell(ticker string, quantity float64) {
	pos := p.positions[ticker]

	pos.Quantity -= quantity
	if pos.Quantity <= 0 {
		delete(p.positions, ticker)
	}
}

// Ensure PaperBroker implements Broker.
var _ Broker = (*PaperBroker)(nil)
