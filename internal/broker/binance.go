package broker

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"
	"github.com/moznion/go-optional"

	"github.com/fairview-lab/terminal-gateway/internal/types"
	"github.com/fairview-lab/terminal-gateway/pkg/errors"
)

const (
	// binanceDecimalPrecision is the quantity precision sent on orders.
	// Production systems should use symbol-specific precision from the
	// exchange info endpoint (LOT_SIZE, PRICE_FILTER).
	binanceDecimalPrecision = 8
)

// Service interfaces for mocking the Binance API.

// CreateOrderService interface for creating orders.
type CreateOrderService interface {
	Symbol(symbol string) CreateOrderService
	Side(side binance.SideType) CreateOrderService
	Type(orderType binance.OrderType) CreateOrderService
	Quantity(quantity string) CreateOrderService
	Price(price string) CreateOrderService
	TimeInForce(tif binance.TimeInForceType) CreateOrderService
	Do(ctx context.Context) (*binance.CreateOrderResponse, error)
}

// GetOrderService interface for looking up a single order.
type GetOrderService interface {
	Symbol(symbol string) GetOrderService
	OrderID(orderID int64) GetOrderService
	Do(ctx context.Context) (*binance.Order, error)
}

// GetAccountService interface for getting account info.
type GetAccountService interface {
	Do(ctx context.Context) (*binance.Account, error)
}

// BinanceClient interface abstracts the Binance client for testing.
type BinanceClient interface {
	NewCreateOrderService() CreateOrderService
	NewGetOrderService() GetOrderService
	NewGetAccountService() GetAccountService
}

// realBinanceClient wraps the actual binance.Client.
type realBinanceClient struct {
	client *binance.Client
}

func (r *realBinanceClient) NewCreateOrderService() CreateOrderService {
	return &realCreateOrderService{service: r.client.NewCreateOrderService()}
}

func (r *realBinanceClient) NewGetOrderService() GetOrderService {
	return &realGetOrderService{service: r.client.NewGetOrderService()}
}

func (r *realBinanceClient) NewGetAccountService() GetAccountService {
	return &realGetAccountService{service: r.client.NewGetAccountService()}
}

type realCreateOrderService struct {
	service *binance.CreateOrderService
}

func (s *realCreateOrderService) Symbol(symbol string) CreateOrderService {
	s.service = s.service.Symbol(symbol)

	return s
}

func (s *realCreateOrderService) Side(side binance.SideType) CreateOrderService {
	s.service = s.service.Side(side)

	return s
}

func (s *realCreateOrderService) Type(orderType binance.OrderType) CreateOrderService {
	s.service = s.service.Type(orderType)

	return s
}

func (s *realCreateOrderService) Quantity(quantity string) CreateOrderService {
	s.service = s.service.Quantity(quantity)

	return s
}

func (s *realCreateOrderService) Price(price string) CreateOrderService {
	s.service = s.service.Price(price)

	return s
}

func (s *realCreateOrderService) TimeInForce(tif binance.TimeInForceType) CreateOrderService {
	s.service = s.service.TimeInForce(tif)

	return s
}

func (s *realCreateOrderService) Do(ctx context.Context) (*binance.CreateOrderResponse, error) {
	return s.service.Do(ctx)
}

type realGetOrderService struct {
	service *binance.GetOrderService
}

func (s *realGetOrderService) Symbol(symbol string) GetOrderService {
	s.service = s.service.Symbol(symbol)

	return s
}

func (s *realGetOrderService) OrderID(orderID int64) GetOrderService {
	s.service = s.service.OrderID(orderID)

	return s
}

func (s *realGetOrderService) Do(ctx context.Context) (*binance.Order, error) {
	return s.service.Do(ctx)
}

type realGetAccountService struct {
	service *binance.GetAccountService
}

func (s *realGetAccountService) Do(ctx context.Context) (*binance.Account, error) {
	return s.service.Do(ctx)
}

// BinanceConfig carries the credentials and connection settings for the
// live broker.
type BinanceConfig struct {
	APIKey    string
	SecretKey string
	// BaseURL overrides the default endpoint; takes precedence over
	// UseTestnet when set.
	BaseURL    string
	UseTestnet bool
	// QuoteAssets are the assets counted as cash. Defaults to
	// USDT/BUSD/USD when empty.
	QuoteAssets []string
}

// BinanceBroker implements Broker against the Binance spot API. It is
// stateless; all data is fetched directly from the API.
type BinanceBroker struct {
	client      BinanceClient
	quoteAssets map[string]bool
	precision   int
}

// NewBinanceBroker creates the live broker. Missing credentials fail
// fast as a connection error so the caller never gets a half-configured
// broker that rejects every order at submit time.
func NewBinanceBroker(config BinanceConfig) (*BinanceBroker, error) {
	if config.APIKey == "" || config.SecretKey == "" {
		return nil, errors.New(errors.KindBrokerConnection, "binance api credentials are required")
	}

	if config.UseTestnet {
		binance.UseTestnet = true
	}

	client := binance.NewClient(config.APIKey, config.SecretKey)
	if config.BaseURL != "" {
		client.BaseURL = config.BaseURL
	}

	return newBinanceBrokerWithClient(&realBinanceClient{client: client}, config.QuoteAssets), nil
}

// newBinanceBrokerWithClient is used by tests to inject a mock client.
func newBinanceBrokerWithClient(client BinanceClient, quoteAssets []string) *BinanceBroker {
	if len(quoteAssets) == 0 {
		quoteAssets = []string{"USDT", "BUSD", "USD"}
	}

	quotes := make(map[string]bool, len(quoteAssets))
	for _, asset := range quoteAssets {
		quotes[strings.ToUpper(asset)] = true
	}

	return &BinanceBroker{
		client:      client,
		quoteAssets: quotes,
		precision:   binanceDecimalPrecision,
	}
}

// SubmitOrder places the order on Binance. The request is assumed to have
// passed pipeline validation already; only venue-specific constraints are
// checked here.
func (b *BinanceBroker) SubmitOrder(ctx context.Context, req types.OrderRequest) (types.Order, error) {
	req = req.Normalized()

	var side binance.SideType

	switch req.Side {
	case types.SideBuy:
		side = binance.SideTypeBuy
	case types.SideSell:
		side = binance.SideTypeSell
	default:
		return types.Order{}, errors.Newf(errors.KindValidation, "unsupported order side: %s", req.Side)
	}

	var orderType binance.OrderType

	switch req.OrderType {
	case types.OrderTypeMarket:
		orderType = binance.OrderTypeMarket
	case types.OrderTypeLimit:
		orderType = binance.OrderTypeLimit
	default:
		return types.Order{}, errors.Newf(errors.KindValidation, "unsupported order type: %s", req.OrderType)
	}

	quantity := roundToPrecision(req.Quantity, b.precision)
	if quantity <= 0 {
		return types.Order{}, errors.Newf(errors.KindValidation,
			"order quantity %.8f is too small after rounding to %d decimal places",
			req.Quantity, b.precision)
	}

	service := b.client.NewCreateOrderService().
		Symbol(req.Ticker).
		Side(side).
		Type(orderType).
		Quantity(strconv.FormatFloat(quantity, 'f', b.precision, 64))

	if req.OrderType == types.OrderTypeLimit {
		service = service.
			Price(strconv.FormatFloat(req.LimitPrice.Unwrap(), 'f', -1, 64)).
			TimeInForce(binance.TimeInForceTypeGTC)
	}

	resp, err := service.Do(ctx)
	if err != nil {
		return types.Order{}, classifyBinanceError(err, "failed to place order")
	}

	created := time.UnixMilli(resp.TransactTime)

	return types.Order{
		ID:         strconv.FormatInt(resp.OrderID, 10),
		Ticker:     resp.Symbol,
		Side:       req.Side,
		Quantity:   quantity,
		OrderType:  req.OrderType,
		LimitPrice: req.LimitPrice,
		Status:     mapBinanceOrderStatus(resp.Status),
		CreatedAt:  created,
		UpdatedAt:  created,
	}, nil
}

// GetOrderStatus looks up the order on Binance. The venue keys orders by
// symbol plus numeric ID, so both are required.
func (b *BinanceBroker) GetOrderStatus(ctx context.Context, ticker, orderID string) (types.Order, error) {
	id, err := strconv.ParseInt(orderID, 10, 64)
	if err != nil {
		return types.Order{}, errors.Wrapf(errors.KindValidation, err, "invalid order id %q", orderID)
	}

	order, err := b.client.NewGetOrderService().Symbol(ticker).OrderID(id).Do(ctx)
	if err != nil {
		return types.Order{}, classifyBinanceError(err, "failed to fetch order")
	}

	quantity, _ := strconv.ParseFloat(order.OrigQuantity, 64)
	price, _ := strconv.ParseFloat(order.Price, 64)

	limit := optional.None[float64]()
	if order.Type == binance.OrderTypeLimit && price > 0 {
		limit = optional.Some(price)
	}

	return types.Order{
		ID:         strconv.FormatInt(order.OrderID, 10),
		Ticker:     order.Symbol,
		Side:       mapBinanceSide(order.Side),
		Quantity:   quantity,
		OrderType:  mapBinanceOrderType(order.Type),
		LimitPrice: limit,
		Status:     mapBinanceOrderStatus(order.Status),
		CreatedAt:  time.UnixMilli(order.Time),
		UpdatedAt:  time.UnixMilli(order.UpdateTime),
	}, nil
}

// GetPositions derives positions from non-quote account balances. Spot
// accounts carry no entry price, so AveragePrice stays zero and the
// gateway's enrichment fills in market values only.
func (b *BinanceBroker) GetPositions(ctx context.Context) ([]types.Position, error) {
	account, err := b.client.NewGetAccountService().Do(ctx)
	if err != nil {
		return nil, classifyBinanceError(err, "failed to fetch account")
	}

	positions := make([]types.Position, 0)

	for _, balance := range account.Balances {
		if b.quoteAssets[strings.ToUpper(balance.Asset)] {
			continue
		}

		free, _ := strconv.ParseFloat(balance.Free, 64)
		locked, _ := strconv.ParseFloat(balance.Locked, 64)

		if total := free + locked; total > 0 {
			positions = append(positions, types.Position{
				Ticker:   balance.Asset,
				Quantity: total,
			})
		}
	}

	return positions, nil
}

// GetAccountBalance totals the quote-asset balances. Free balance counts
// as settled cash and buying power; locked amounts count toward cash only.
func (b *BinanceBroker) GetAccountBalance(ctx context.Context) (types.AccountBalance, error) {
	account, err := b.client.NewGetAccountService().Do(ctx)
	if err != nil {
		return types.AccountBalance{}, classifyBinanceError(err, "failed to fetch account")
	}

	var cash, free float64

	for _, balance := range account.Balances {
		if !b.quoteAssets[strings.ToUpper(balance.Asset)] {
			continue
		}

		f, _ := strconv.ParseFloat(balance.Free, 64)
		locked, _ := strconv.ParseFloat(balance.Locked, 64)

		cash += f + locked
		free += f
	}

	return types.AccountBalance{
		Cash:        cash,
		Currency:    "USD",
		BuyingPower: optional.Some(free),
		SettledCash: optional.Some(free),
	}, nil
}

// classifyBinanceError maps a Binance SDK error into the gateway error
// taxonomy. API-level rejections carry a code and message; anything else
// is treated as a transport failure.
func classifyBinanceError(err error, message string) error {
	var apiErr *common.APIError

	if !errors.As(err, &apiErr) {
		return errors.Wrap(errors.KindBrokerConnection, message, err)
	}

	switch apiErr.Code {
	case -1022, -2014, -2015:
		return errors.Wrap(errors.KindAuthorization, message, err)
	case -1013:
		return errors.Wrap(errors.KindMarketCondition, message, err)
	}

	lower := strings.ToLower(apiErr.Message)

	switch {
	case strings.Contains(lower, "market is closed"),
		strings.Contains(lower, "trading is disabled"):
		return errors.Wrap(errors.KindMarketCondition, message, err)
	case strings.Contains(lower, "insufficient balance"):
		return errors.Wrap(errors.KindValidation, message, err)
	case strings.Contains(lower, "compliance"),
		strings.Contains(lower, "restricted"):
		return errors.Wrap(errors.KindCompliance, message, err)
	}

	return errors.Wrap(errors.KindAPI, message, err)
}

func mapBinanceOrderStatus(status binance.OrderStatusType) types.OrderStatus {
	switch status {
	case binance.OrderStatusTypeNew:
		return types.OrderStatusNew
	case binance.OrderStatusTypePartiallyFilled:
		return types.OrderStatusPartiallyFilled
	case binance.OrderStatusTypeFilled:
		return types.OrderStatusFilled
	case binance.OrderStatusTypeCanceled, binance.OrderStatusTypeExpired:
		return types.OrderStatusCancelled
	case binance.OrderStatusTypeRejected:
		return types.OrderStatusRejected
	case binance.OrderStatusTypePendingCancel:
		return types.OrderStatusPending
	default:
		return types.OrderStatusPending
	}
}

func mapBinanceSide(side binance.SideType) types.Side {
	if side == binance.SideTypeSell {
		return types.SideSell
	}

	return types.SideBuy
}

func mapBinanceOrderType(orderType binance.OrderType) types.OrderType {
	if orderType == binance.OrderTypeLimit {
		return types.OrderTypeLimit
	}

	return types.OrderTypeMarket
}

func roundToPrecision(val float64, decimals int) float64 {
	s := strconv.FormatFloat(val, 'f', decimals, 64)
	rounded, _ := strconv.ParseFloat(s, 64)

	return rounded
}

// Ensure BinanceBroker implements Broker.
var _ Broker = (*BinanceBroker)(nil)
