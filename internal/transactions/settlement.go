package transactions

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"

	"github.com/fairview-lab/terminal-gateway/internal/broker"
	"github.com/fairview-lab/terminal-gateway/internal/types"
	"github.com/fairview-lab/terminal-gateway/pkg/errors"
)

// Settlement is the backend that actually moves money. The manager
// validates and enforces minimums, then delegates here.
type Settlement interface {
	Settle(ctx context.Context, req types.TransactionRequest) (types.TransactionStatus, error)
	Status(ctx context.Context, transactionID string) (types.TransactionStatus, error)
}

// SettlementConfig configures the HTTP settlement client.
type SettlementConfig struct {
	// BaseURL is the settlement service endpoint, e.g.
	// https://settlement.example.com/v1.
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// HTTPSettlement talks to the external settlement service over JSON.
type HTTPSettlement struct {
	cfg    SettlementConfig
	client *http.Client
}

// NewHTTPSettlement creates the client. A missing endpoint fails fast as
// a connection error rather than surfacing on the first transaction.
func NewHTTPSettlement(cfg SettlementConfig, client *http.Client) (*HTTPSettlement, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New(errors.KindBrokerConnection, "settlement endpoint is not configured")
	}

	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, errors.Wrap(errors.KindBrokerConnection, "invalid settlement endpoint", err)
	}

	if client == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 10 * time.Second
		}

		client = &http.Client{Timeout: timeout}
	}

	return &HTTPSettlement{cfg: cfg, client: client}, nil
}

type settlementRequest struct {
	Method       string  `json:"method"`
	Amount       float64 `json:"amount"`
	Currency     string  `json:"currency"`
	Account      string  `json:"account"`
	Counterparty string  `json:"counterparty,omitempty"`
	Memo         string  `json:"memo,omitempty"`
	Reference    string  `json:"reference,omitempty"`
}

type settlementResponse struct {
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
	Message       string `json:"message"`
	Timestamp     string `json:"timestamp"`
}

func (h *HTTPSettlement) Settle(ctx context.Context, req types.TransactionRequest) (types.TransactionStatus, error) {
	payload := settlementRequest{
		Method:       string(req.Method),
		Amount:       req.Amount,
		Currency:     req.Currency,
		Account:      req.Account,
		Counterparty: req.Counterparty.TakeOr(""),
		Memo:         req.Memo.TakeOr(""),
		Reference:    req.Reference.TakeOr(""),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return types.TransactionStatus{}, errors.Wrap(errors.KindAPI, "failed to encode transaction", err)
	}

	return h.do(ctx, http.MethodPost, h.cfg.BaseURL+"/transactions", bytes.NewReader(body))
}

func (h *HTTPSettlement) Status(ctx context.Context, transactionID string) (types.TransactionStatus, error) {
	endpoint := h.cfg.BaseURL + "/transactions/" + url.PathEscape(transactionID)

	return h.do(ctx, http.MethodGet, endpoint, nil)
}

func (h *HTTPSettlement) do(ctx context.Context, method, endpoint string, body io.Reader) (types.TransactionStatus, error) {
	httpReq, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return types.TransactionStatus{}, errors.Wrap(errors.KindAPI, "failed to build settlement request", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	if h.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+h.cfg.APIKey)
	}

	res, err := h.client.Do(httpReq)
	if err != nil {
		return types.TransactionStatus{}, errors.Wrap(errors.KindBrokerConnection, "settlement request failed", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		return types.TransactionStatus{}, classifySettlementStatus(res.StatusCode)
	}

	var decoded settlementResponse
	if err := json.NewDecoder(res.Body).Decode(&decoded); err != nil {
		return types.TransactionStatus{}, errors.Wrap(errors.KindBrokerConnection, "invalid settlement response", err)
	}

	status := types.TransactionStatus{
		TransactionID: decoded.TransactionID,
		Status:        types.TransactionStatusValue(decoded.Status),
		Timestamp:     time.Now().UTC(),
	}

	if decoded.Message != "" {
		status.Message = optional.Some(decoded.Message)
	}

	if decoded.Timestamp != "" {
		if ts, parseErr := time.Parse(time.RFC3339, decoded.Timestamp); parseErr == nil {
			status.Timestamp = ts
		}
	}

	return status, nil
}

// classifySettlementStatus maps settlement HTTP failures into the error
// taxonomy.
func classifySettlementStatus(code int) error {
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return errors.Newf(errors.KindAuthorization, "settlement rejected credentials (http %d)", code)
	case code == http.StatusUnprocessableEntity:
		return errors.Newf(errors.KindCompliance, "settlement rejected transaction (http %d)", code)
	case code == http.StatusBadRequest:
		return errors.Newf(errors.KindValidation, "settlement rejected request (http %d)", code)
	case code >= 500:
		return errors.Newf(errors.KindBrokerConnection, "settlement unavailable (http %d)", code)
	default:
		return errors.Newf(errors.KindAPI, "settlement error (http %d)", code)
	}
}

// PaperSettlement settles against the in-process paper broker. Deposits
// and withdrawals move cash immediately; transfers debit the account and
// complete without a counterparty leg.
type PaperSettlement struct {
	broker *broker.PaperBroker
	now    func() time.Time
}

func NewPaperSettlement(b *broker.PaperBroker) *PaperSettlement {
	return &PaperSettlement{broker: b, now: time.Now}
}

func (p *PaperSettlement) Settle(_ context.Context, req types.TransactionRequest) (types.TransactionStatus, error) {
	switch req.Method {
	case types.TransactionMethodDeposit:
		p.broker.Deposit(req.Amount)
	case types.TransactionMethodWithdraw, types.TransactionMethodTransfer:
		if err := p.broker.Withdraw(req.Amount); err != nil {
			return types.TransactionStatus{}, err
		}
	default:
		return types.TransactionStatus{}, errors.Newf(errors.KindValidation, "unsupported transaction method: %s", req.Method)
	}

	return types.TransactionStatus{
		TransactionID: uuid.New().String(),
		Status:        types.TransactionStatusCompleted,
		Timestamp:     p.now().UTC(),
	}, nil
}

func (p *PaperSettlement) Status(_ context.Context, transactionID string) (types.TransactionStatus, error) {
	// Paper settlements complete synchronously; any id we issued is done.
	return types.TransactionStatus{
		TransactionID: transactionID,
		Status:        types.TransactionStatusCompleted,
		Timestamp:     p.now().UTC(),
	}, nil
}

var (
	_ Settlement = (*HTTPSettlement)(nil)
	_ Settlement = (*PaperSettlement)(nil)
)
