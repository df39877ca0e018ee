package interfaces

import (
	"context"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// ChargeRequest is what the service asks an external provider to capture.
type ChargeRequest struct {
	Amount            decimal.Decimal
	Currency          string
	PayerID           string
	PayerEmail        string
	Description       string
	ExternalReference string
	PaymentMethodID   string
	Token             string
	Installments      int
}

// ChargeResult is the provider's view of a payment. Only Status "approved"
// means the money was captured.
type ChargeResult struct {
	TransactionID     string
	Status            string
	StatusDetail      string
	ExternalReference string
	Amount            decimal.Decimal
	Raw               json.RawMessage
}

const GatewayStatusApproved = "approved"

func (r ChargeResult) Approved() bool { return r.Status == GatewayStatusApproved }

// IPaymentGateway abstracts external payment providers (e.g. Mercado Pago).
type IPaymentGateway interface {
	Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error)
	GetPayment(ctx context.Context, transactionID string) (ChargeResult, error)
}
