package request

import "strings"

const (
	PaymentMethodWallet  = "wallet"
	PaymentMethodGateway = "gateway"
)

// PaymentRequest selects the rail used to settle a positive adjustment.
//
// The gateway fields are forwarded to Mercado Pago and ignored for the wallet.
type PaymentRequest struct {
	Method          string `json:"method" binding:"required,oneof=wallet gateway"`
	PaymentMethodID string `json:"payment_method_id"`
	Token           string `json:"token"`
	PayerEmail      string `json:"payer_email" binding:"omitempty,email"`
	Installments    int    `json:"installments" binding:"omitempty,min=1,max=12"`
}

// PaymentWebhookRequest is the Mercado Pago notification envelope.
//
//	{"type":"payment","action":"payment.updated","data":{"id":"123"}}
type PaymentWebhookRequest struct {
	Type   string `json:"type"`
	Action string `json:"action"`
	Data   struct {
		ID string `json:"id"`
	} `json:"data"`
}

// ResolvePaymentID returns the provider payment id, or "" for notifications
// about anything other than a payment.
func (r PaymentWebhookRequest) ResolvePaymentID() string {
	if t := strings.TrimSpace(r.Type); t != "" && t != "payment" {
		return ""
	}
	return strings.TrimSpace(r.Data.ID)
}
