package orders

import (
	"context"
	"strings"
	"time"

	"github.com/fairview-lab/terminal-gateway/internal/types"
	"github.com/fairview-lab/terminal-gateway/pkg/errors"
)

// MarketHoursCheck rejects orders outside the venue's trading session.
// The window is evaluated in the configured location, weekends excluded.
type MarketHoursCheck struct {
	location *time.Location
	open     int
	close    int
	now      func() time.Time
}

// NewMarketHoursCheck builds a check for the given session, expressed as
// opening and closing minutes past midnight in the location. A nil
// location means UTC.
func NewMarketHoursCheck(location *time.Location, openMinute, closeMinute int) *MarketHoursCheck {
	if location == nil {
		location = time.UTC
	}

	return &MarketHoursCheck{
		location: location,
		open:     openMinute,
		close:    closeMinute,
		now:      time.Now,
	}
}

// NewYorkEquityHoursCheck returns the standard 09:30-16:00 US equity
// session.
func NewYorkEquityHoursCheck() (*MarketHoursCheck, error) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return nil, errors.Wrap(errors.KindAPI, "failed to load market timezone", err)
	}

	return NewMarketHoursCheck(loc, 9*60+30, 16*60), nil
}

func (c *MarketHoursCheck) Name() string { return "market_hours" }

func (c *MarketHoursCheck) Check(_ context.Context, _ types.OrderRequest) error {
	now := c.now().In(c.location)

	switch now.Weekday() {
	case time.Saturday, time.Sunday:
		return errors.New(errors.KindMarketCondition, "market is closed on weekends")
	case time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday:
	}

	minute := now.Hour()*60 + now.Minute()
	if minute < c.open || minute >= c.close {
		return errors.Newf(errors.KindMarketCondition, "market is closed at %s", now.Format("15:04"))
	}

	return nil
}

// RestrictedTickerCheck blocks orders in instruments the account may not
// trade.
type RestrictedTickerCheck struct {
	restricted map[string]bool
}

// NewRestrictedTickerCheck builds the check from a ticker blocklist.
// Matching is case-insensitive.
func NewRestrictedTickerCheck(tickers []string) *RestrictedTickerCheck {
	restricted := make(map[string]bool, len(tickers))
	for _, ticker := range tickers {
		restricted[strings.ToUpper(strings.TrimSpace(ticker))] = true
	}

	return &RestrictedTickerCheck{restricted: restricted}
}

func (c *RestrictedTickerCheck) Name() string { return "restricted_ticker" }

func (c *RestrictedTickerCheck) Check(_ context.Context, req types.OrderRequest) error {
	if c.restricted[strings.ToUpper(req.Ticker)] {
		return errors.Newf(errors.KindCompliance, "trading in %s is restricted for this account", req.Ticker)
	}

	return nil
}

// MaxNotionalCheck caps the estimated order value. Limit orders use the
// limit price; market orders use the supplied price source.
type MaxNotionalCheck struct {
	maxNotional float64
	pricer      func(ctx context.Context, ticker string) (float64, error)
}

// NewMaxNotionalCheck builds the check. The pricer may be nil, in which
// case market orders pass unchecked.
func NewMaxNotionalCheck(maxNotional float64, pricer func(ctx context.Context, ticker string) (float64, error)) *MaxNotionalCheck {
	return &MaxNotionalCheck{maxNotional: maxNotional, pricer: pricer}
}

func (c *MaxNotionalCheck) Name() string { return "max_notional" }

func (c *MaxNotionalCheck) Check(ctx context.Context, req types.OrderRequest) error {
	var price float64

	switch {
	case req.OrderType == types.OrderTypeLimit && req.LimitPrice.IsSome():
		price = req.LimitPrice.Unwrap()
	case c.pricer != nil:
		p, err := c.pricer(ctx, req.Ticker)
		if err != nil {
			// An unpriced instrument is not a compliance failure.
			return nil
		}

		price = p
	default:
		return nil
	}

	if notional := price * req.Quantity; notional > c.maxNotional {
		return errors.Newf(errors.KindCompliance,
			"order notional %.2f exceeds the %.2f limit", notional, c.maxNotional)
	}

	return nil
}
