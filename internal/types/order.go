package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"

	"github.com/fairview-lab/terminal-gateway/pkg/errors"
)

type Side string

type OrderType string

type OrderStatus string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

const (
	OrderTypeMarket OrderType = "MARKET"
	OrderTypeLimit  OrderType = "LIMIT"
)

const (
	OrderStatusPending         OrderStatus = "PENDING"
	OrderStatusAccepted        OrderStatus = "ACCEPTED"
	OrderStatusNew             OrderStatus = "NEW"
	OrderStatusFilled          OrderStatus = "FILLED"
	OrderStatusPartiallyFilled OrderStatus = "PARTIALLY_FILLED"
	OrderStatusCancelled       OrderStatus = "CANCELLED"
	OrderStatusRejected        OrderStatus = "REJECTED"
)

// IsTerminal reports whether the status allows no further transitions.
// Orders are immutable once terminal.
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case OrderStatusFilled, OrderStatusCancelled, OrderStatusRejected:
		return true
	case OrderStatusPending, OrderStatusAccepted, OrderStatusNew, OrderStatusPartiallyFilled:
		return false
	default:
		return false
	}
}

// OrderRequest is the caller-supplied input to the order execution
// pipeline. OrderType defaults to MARKET when empty; a LIMIT order must
// carry a limit price.
type OrderRequest struct {
	Ticker    string    `json:"ticker" yaml:"ticker" validate:"required"`
	Side      Side      `json:"side" yaml:"side" validate:"required,oneof=BUY SELL"`
	Quantity  float64   `json:"quantity" yaml:"quantity" validate:"required,gt=0"`
	OrderType OrderType `json:"order_type" yaml:"order_type" validate:"omitempty,oneof=MARKET LIMIT"`
	// LimitPrice is required iff OrderType is LIMIT.
	LimitPrice optional.Option[float64] `json:"limit_price" yaml:"limit_price"`
}

// Normalized returns a copy with defaults applied.
func (r OrderRequest) Normalized() OrderRequest {
	if r.OrderType == "" {
		r.OrderType = OrderTypeMarket
	}

	return r
}

// Validate performs the structural checks of the order pipeline's first
// stage. Any violation is a validation error and no network call may be
// attempted after one.
func (r *OrderRequest) Validate() error {
	validate := validator.New()

	req := r.Normalized()
	if err := validate.Struct(req); err != nil {
		return errors.Wrap(errors.KindValidation, "invalid order request", err)
	}

	if req.OrderType == OrderTypeLimit {
		if req.LimitPrice.IsNone() {
			return errors.New(errors.KindValidation, "limit order requires a limit price")
		}

		if req.LimitPrice.Unwrap() <= 0 {
			return errors.New(errors.KindValidation, "limit price must be greater than zero")
		}
	}

	return nil
}

// Order is the fully-populated order record returned by the pipeline
// after successful submission.
type Order struct {
	// ID is the broker-assigned order identifier.
	ID         string                   `json:"id" yaml:"id"`
	Ticker     string                   `json:"ticker" yaml:"ticker"`
	Side       Side                     `json:"side" yaml:"side"`
	Quantity   float64                  `json:"quantity" yaml:"quantity"`
	OrderType  OrderType                `json:"order_type" yaml:"order_type"`
	LimitPrice optional.Option[float64] `json:"limit_price" yaml:"limit_price"`
	Status     OrderStatus              `json:"status" yaml:"status"`
	CreatedAt  time.Time                `json:"created_at" yaml:"created_at"`
	UpdatedAt  time.Time                `json:"updated_at" yaml:"updated_at"`
}
