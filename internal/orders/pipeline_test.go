package orders

import (
	"context"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/suite"

	"github.com/fairview-lab/terminal-gateway/internal/logger"
	"github.com/fairview-lab/terminal-gateway/internal/types"
	"github.com/fairview-lab/terminal-gateway/pkg/errors"
)

// recordingBroker counts submissions so tests can prove that rejected
// orders never reach the backend.
type recordingBroker struct {
	submitted []types.OrderRequest
	submitErr error
	statusErr error
	order     types.Order
}

func (r *recordingBroker) SubmitOrder(_ context.Context, req types.OrderRequest) (types.Order, error) {
	r.submitted = append(r.submitted, req)

	if r.submitErr != nil {
		return types.Order{}, r.submitErr
	}

	order := r.order
	if order.ID == "" {
		order.ID = "order-1"
	}

	order.Ticker = req.Ticker
	order.Side = req.Side
	order.Quantity = req.Quantity
	order.OrderType = req.OrderType

	return order, nil
}

func (r *recordingBroker) GetOrderStatus(_ context.Context, _, orderID string) (types.Order, error) {
	if r.statusErr != nil {
		return types.Order{}, r.statusErr
	}

	return types.Order{ID: orderID, Status: types.OrderStatusFilled}, nil
}

func (r *recordingBroker) GetPositions(_ context.Context) ([]types.Position, error) {
	return nil, nil
}

func (r *recordingBroker) GetAccountBalance(_ context.Context) (types.AccountBalance, error) {
	return types.AccountBalance{}, nil
}

// failingCheck always rejects with a fixed error.
type failingCheck struct {
	err error
}

func (f *failingCheck) Name() string { return "failing" }

func (f *failingCheck) Check(_ context.Context, _ types.OrderRequest) error { return f.err }

// passingCheck records that it ran.
type passingCheck struct {
	calls int
}

func (p *passingCheck) Name() string { return "passing" }

func (p *passingCheck) Check(_ context.Context, _ types.OrderRequest) error {
	p.calls++

	return nil
}

type PipelineTestSuite struct {
	suite.Suite
	broker *recordingBroker
	log    *logger.Logger
}

func TestPipelineTestSuite(t *testing.T) {
	suite.Run(t, new(PipelineTestSuite))
}

func (s *PipelineTestSuite) SetupTest() {
	s.broker = &recordingBroker{}
	s.log = logger.NewNopLogger()
}

func (s *PipelineTestSuite) validRequest() types.OrderRequest {
	return types.OrderRequest{
		Ticker:   "SPY",
		Side:     types.SideBuy,
		Quantity: 10,
	}
}

func (s *PipelineTestSuite) TestExecuteSubmitsValidOrder() {
	check := &passingCheck{}
	pipeline := NewPipeline(s.broker, []PreCheck{check}, s.log)

	order, err := pipeline.Execute(context.Background(), s.validRequest())
	s.Require().NoError(err)

	s.Equal("order-1", order.ID)
	s.Equal(types.OrderTypeMarket, order.OrderType)
	s.Equal(types.OrderStatusAccepted, order.Status)
	s.False(order.CreatedAt.IsZero())
	s.Equal(1, check.calls)
	s.Len(s.broker.submitted, 1)
}

func (s *PipelineTestSuite) TestInvalidOrderNeverReachesBroker() {
	pipeline := NewPipeline(s.broker, nil, s.log)

	tests := []struct {
		name string
		req  types.OrderRequest
	}{
		{name: "missing ticker", req: types.OrderRequest{Side: types.SideBuy, Quantity: 1}},
		{name: "zero quantity", req: types.OrderRequest{Ticker: "SPY", Side: types.SideBuy}},
		{name: "negative quantity", req: types.OrderRequest{Ticker: "SPY", Side: types.SideBuy, Quantity: -5}},
		{name: "bad side", req: types.OrderRequest{Ticker: "SPY", Side: "HOLD", Quantity: 1}},
		{
			name: "limit without price",
			req:  types.OrderRequest{Ticker: "SPY", Side: types.SideBuy, Quantity: 1, OrderType: types.OrderTypeLimit},
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := pipeline.Execute(context.Background(), tt.req)
			s.Require().Error(err)
			s.True(errors.HasKind(err, errors.KindValidation))
		})
	}

	s.Empty(s.broker.submitted)
}

func (s *PipelineTestSuite) TestFailingCheckBlocksSubmission() {
	check := &failingCheck{err: errors.New(errors.KindCompliance, "account restricted")}
	pipeline := NewPipeline(s.broker, []PreCheck{check}, s.log)

	_, err := pipeline.Execute(context.Background(), s.validRequest())
	s.Require().Error(err)
	s.True(errors.HasKind(err, errors.KindCompliance))
	s.Empty(s.broker.submitted)
}

func (s *PipelineTestSuite) TestChecksRunInOrderAndStopAtFirstFailure() {
	first := &passingCheck{}
	second := &failingCheck{err: errors.New(errors.KindMarketCondition, "market is closed")}
	third := &passingCheck{}

	pipeline := NewPipeline(s.broker, []PreCheck{first, second, third}, s.log)

	_, err := pipeline.Execute(context.Background(), s.validRequest())
	s.Require().Error(err)
	s.True(errors.HasKind(err, errors.KindMarketCondition))
	s.Equal(1, first.calls)
	s.Equal(0, third.calls)
	s.Empty(s.broker.submitted)
}

func (s *PipelineTestSuite) TestBrokerErrorPreservesKind() {
	s.broker.submitErr = errors.New(errors.KindAuthorization, "invalid api key")
	pipeline := NewPipeline(s.broker, nil, s.log)

	_, err := pipeline.Execute(context.Background(), s.validRequest())
	s.Require().Error(err)
	s.True(errors.HasKind(err, errors.KindAuthorization))
}

func (s *PipelineTestSuite) TestStatusRequiresOrderID() {
	pipeline := NewPipeline(s.broker, nil, s.log)

	_, err := pipeline.Status(context.Background(), "SPY", "")
	s.Require().Error(err)
	s.True(errors.HasKind(err, errors.KindValidation))
}

type ChecksTestSuite struct {
	suite.Suite
}

func TestChecksTestSuite(t *testing.T) {
	suite.Run(t, new(ChecksTestSuite))
}

func (s *ChecksTestSuite) TestMarketHoursCheck() {
	check := NewMarketHoursCheck(time.UTC, 9*60+30, 16*60)

	tests := []struct {
		name string
		now  time.Time
		open bool
	}{
		{name: "mid session", now: time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC), open: true},
		{name: "at open", now: time.Date(2026, 9, 1, 9, 30, 0, 0, time.UTC), open: true},
		{name: "before open", now: time.Date(2026, 9, 1, 9, 29, 0, 0, time.UTC), open: false},
		{name: "at close", now: time.Date(2026, 9, 1, 16, 0, 0, 0, time.UTC), open: false},
		{name: "saturday", now: time.Date(2026, 9, 5, 12, 0, 0, 0, time.UTC), open: false},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			check.now = func() time.Time { return tt.now }

			err := check.Check(context.Background(), types.OrderRequest{})
			if tt.open {
				s.NoError(err)
			} else {
				s.Require().Error(err)
				s.True(errors.HasKind(err, errors.KindMarketCondition))
			}
		})
	}
}

func (s *ChecksTestSuite) TestRestrictedTickerCheck() {
	check := NewRestrictedTickerCheck([]string{"gme", " AMC "})

	err := check.Check(context.Background(), types.OrderRequest{Ticker: "GME"})
	s.Require().Error(err)
	s.True(errors.HasKind(err, errors.KindCompliance))

	s.NoError(check.Check(context.Background(), types.OrderRequest{Ticker: "SPY"}))
}

func (s *ChecksTestSuite) TestMaxNotionalCheck() {
	check := NewMaxNotionalCheck(10000, nil)

	err := check.Check(context.Background(), types.OrderRequest{
		Ticker:     "SPY",
		Quantity:   100,
		OrderType:  types.OrderTypeLimit,
		LimitPrice: optional.Some(520.0),
	})
	s.Require().Error(err)
	s.True(errors.HasKind(err, errors.KindCompliance))

	s.NoError(check.Check(context.Background(), types.OrderRequest{
		Ticker:     "SPY",
		Quantity:   10,
		OrderType:  types.OrderTypeLimit,
		LimitPrice: optional.Some(520.0),
	}))

	// Market orders pass when no price source is configured.
	s.NoError(check.Check(context.Background(), types.OrderRequest{
		Ticker:    "SPY",
		Quantity:  1000,
		OrderType: types.OrderTypeMarket,
	}))
}
