package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"

	"github.com/fairview-lab/terminal-gateway/pkg/errors"
)

// TransactionMethod identifies a money-movement workflow.
type TransactionMethod string

const (
	TransactionMethodDeposit  TransactionMethod = "DEPOSIT"
	TransactionMethodWithdraw TransactionMethod = "WITHDRAW"
	TransactionMethodTransfer TransactionMethod = "TRANSFER"
)

// TransactionRequest is the caller-supplied input for a deposit, withdraw,
// or transfer. It is input only and never returned by the gateway.
type TransactionRequest struct {
	Method TransactionMethod `json:"method" yaml:"method" validate:"required,oneof=DEPOSIT WITHDRAW TRANSFER"`
	// Amount must be positive; each method additionally enforces its own
	// minimum at the workflow layer.
	Amount   float64 `json:"amount" yaml:"amount" validate:"required,gt=0"`
	Currency string  `json:"currency" yaml:"currency" validate:"required,len=3"`
	// Account identifies the funding source for deposits and the
	// destination for withdrawals.
	Account string `json:"account" yaml:"account" validate:"required"`
	// Counterparty is the receiving account for transfers.
	Counterparty optional.Option[string] `json:"counterparty" yaml:"counterparty"`
	Memo         optional.Option[string] `json:"memo" yaml:"memo"`
	// Reference is a caller-supplied idempotency reference.
	Reference optional.Option[string] `json:"reference" yaml:"reference"`
}

// Validate performs the structural checks shared by all transaction
// methods. Method-specific minimum amounts are enforced by the workflow
// manager.
func (r *TransactionRequest) Validate() error {
	validate := validator.New()
	if err := validate.Struct(r); err != nil {
		return errors.Wrap(errors.KindValidation, "invalid transaction request", err)
	}

	if r.Method == TransactionMethodTransfer && r.Counterparty.IsNone() {
		return errors.New(errors.KindValidation, "transfer requires a counterparty account")
	}

	return nil
}

// TransactionStatusValue is the lifecycle state of a money movement.
// Transitions after the initial handle are owned by the settlement
// authority.
type TransactionStatusValue string

const (
	TransactionStatusPending        TransactionStatusValue = "PENDING"
	TransactionStatusProcessing     TransactionStatusValue = "PROCESSING"
	TransactionStatusCompleted      TransactionStatusValue = "COMPLETED"
	TransactionStatusFailed         TransactionStatusValue = "FAILED"
	TransactionStatusCancelled      TransactionStatusValue = "CANCELLED"
	TransactionStatusRequiresAction TransactionStatusValue = "REQUIRES_ACTION"
)

// TransactionStatus is the asynchronous handle returned when a
// transaction request is accepted by the settlement backend.
type TransactionStatus struct {
	TransactionID string                  `json:"transaction_id" yaml:"transaction_id"`
	Status        TransactionStatusValue  `json:"status" yaml:"status"`
	Message       optional.Option[string] `json:"message" yaml:"message"`
	Timestamp     time.Time               `json:"timestamp" yaml:"timestamp"`
}
