package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"mealchange_service/internal/usecase/interfaces"
	"mealchange_service/pkg/logger"

	"github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/payment"
	"github.com/shopspring/decimal"
)

var (
	ErrMissingMercadoPagoAccessToken   = errors.New("missing MERCADOPAGO_ACCESS_TOKEN")
	ErrMercadoPagoGatewayNotConfigured = errors.New("mercado pago gateway not configured")
	ErrInvalidTransactionID            = errors.New("invalid mercado pago payment id")
	ErrMockPaymentNotFound             = errors.New("mock payment not found")
)

// MercadoPagoGateway charges meal change adjustments through Mercado Pago.
// In mock mode every charge is approved and kept in memory so webhook
// confirmations can be replayed locally.
type MercadoPagoGateway struct {
	client   payment.Client
	log      logger.Logger
	mockMode bool

	mu    sync.Mutex
	mocks map[string]interfaces.ChargeResult
}

var _ interfaces.IPaymentGateway = (*MercadoPagoGateway)(nil)

func NewMercadoPagoGateway(accessToken string, log logger.Logger) (*MercadoPagoGateway, error) {
	if log == nil {
		log = logger.NewNop()
	}
	if isPaymentGatewayMockEnabled() {
		log.Info("[payment][gateway] mock mode enabled")
		return NewMockGateway(log), nil
	}

	if accessToken == "" {
		log.Error("[payment][gateway] missing MERCADOPAGO_ACCESS_TOKEN")
		return nil, ErrMissingMercadoPagoAccessToken
	}

	cfg, err := config.New(accessToken)
	if err != nil {
		log.Error("[payment][gateway] failed creating sdk config", "err", err)
		return nil, err
	}
	log.Info("[payment][gateway] Mercado Pago client initialized")

	return &MercadoPagoGateway{client: payment.NewClient(cfg), log: log}, nil
}

// NewMockGateway returns a gateway that approves every charge without network calls.
func NewMockGateway(log logger.Logger) *MercadoPagoGateway {
	if log == nil {
		log = logger.NewNop()
	}
	return &MercadoPagoGateway{log: log, mockMode: true, mocks: map[string]interfaces.ChargeResult{}}
}

func (g *MercadoPagoGateway) Charge(ctx context.Context, req interfaces.ChargeRequest) (interfaces.ChargeResult, error) {
	if g != nil && g.mockMode {
		return g.mockCharge(req)
	}
	if g == nil || g.client == nil {
		return interfaces.ChargeResult{}, ErrMercadoPagoGatewayNotConfigured
	}
	g.log.Info("[payment][gateway] create start", "external_reference", req.ExternalReference, "amount", req.Amount.String())

	mpReq, err := buildPaymentRequest(req)
	if err != nil {
		g.log.Error("[payment][gateway] request build failed", "err", err)
		return interfaces.ChargeResult{}, err
	}

	resp, err := g.client.Create(ctx, mpReq)
	if err != nil {
		g.log.Error("[payment][gateway] sdk create failed", "external_reference", req.ExternalReference, "err", err)
		return interfaces.ChargeResult{}, err
	}

	res, err := toChargeResult(resp)
	if err != nil {
		return interfaces.ChargeResult{}, err
	}
	g.log.Info("[payment][gateway] create done", "provider_payment_id", res.TransactionID, "provider_status", res.Status)
	return res, nil
}

func (g *MercadoPagoGateway) GetPayment(ctx context.Context, transactionID string) (interfaces.ChargeResult, error) {
	if g != nil && g.mockMode {
		g.mu.Lock()
		defer g.mu.Unlock()
		res, ok := g.mocks[transactionID]
		if !ok {
			return interfaces.ChargeResult{}, ErrMockPaymentNotFound
		}
		return res, nil
	}
	if g == nil || g.client == nil {
		return interfaces.ChargeResult{}, ErrMercadoPagoGatewayNotConfigured
	}

	id, err := strconv.Atoi(strings.TrimSpace(transactionID))
	if err != nil {
		return interfaces.ChargeResult{}, ErrInvalidTransactionID
	}
	resp, err := g.client.Get(ctx, id)
	if err != nil {
		g.log.Error("[payment][gateway] sdk get failed", "provider_payment_id", transactionID, "err", err)
		return interfaces.ChargeResult{}, err
	}
	return toChargeResult(resp)
}

func (g *MercadoPagoGateway) mockCharge(req interfaces.ChargeRequest) (interfaces.ChargeResult, error) {
	id := strconv.FormatInt(time.Now().UTC().UnixNano(), 10)
	now := time.Now().UTC().Format(time.RFC3339Nano)
	raw, err := json.Marshal(map[string]any{
		"id":                 id,
		"status":             interfaces.GatewayStatusApproved,
		"status_detail":      "accredited",
		"external_reference": req.ExternalReference,
		"transaction_amount": req.Amount.String(),
		"currency_id":        req.Currency,
		"date_created":       now,
		"date_approved":      now,
	})
	if err != nil {
		g.log.Error("[payment][gateway] mock response marshal failed", "err", err)
		return interfaces.ChargeResult{}, err
	}

	res := interfaces.ChargeResult{
		TransactionID:     id,
		Status:            interfaces.GatewayStatusApproved,
		StatusDetail:      "accredited",
		ExternalReference: req.ExternalReference,
		Amount:            req.Amount,
		Raw:               raw,
	}
	g.mu.Lock()
	g.mocks[id] = res
	g.mu.Unlock()

	g.log.Info("[payment][gateway] mock create success", "provider_payment_id", id, "external_reference", req.ExternalReference)
	return res, nil
}

// buildPaymentRequest goes through JSON so the SDK's own field names and
// omitempty rules apply.
func buildPaymentRequest(req interfaces.ChargeRequest) (payment.Request, error) {
	body := map[string]any{
		"transaction_amount": req.Amount.InexactFloat64(),
		"description":        req.Description,
		"external_reference": req.ExternalReference,
		"metadata": map[string]any{
			"payer_id": req.PayerID,
			"currency": req.Currency,
		},
	}
	if req.PaymentMethodID != "" {
		body["payment_method_id"] = req.PaymentMethodID
	}
	if req.Token != "" {
		body["token"] = req.Token
	}
	if req.Installments > 0 {
		body["installments"] = req.Installments
	}
	if req.PayerEmail != "" {
		body["payer"] = map[string]any{"email": req.PayerEmail}
	}

	b, err := json.Marshal(body)
	if err != nil {
		return payment.Request{}, err
	}
	var out payment.Request
	if err := json.Unmarshal(b, &out); err != nil {
		return payment.Request{}, err
	}
	return out, nil
}

func toChargeResult(resp *payment.Response) (interfaces.ChargeResult, error) {
	if resp == nil {
		return interfaces.ChargeResult{}, errors.New("empty mercado pago response")
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return interfaces.ChargeResult{}, err
	}
	return interfaces.ChargeResult{
		TransactionID:     fmt.Sprintf("%d", resp.ID),
		Status:            resp.Status,
		StatusDetail:      resp.StatusDetail,
		ExternalReference: resp.ExternalReference,
		Amount:            decimal.NewFromFloat(resp.TransactionAmount),
		Raw:               raw,
	}, nil
}

func isPaymentGatewayMockEnabled() bool {
	for _, key := range []string{"PAYMENT_GATEWAY_MOCK", "MERCADOPAGO_MOCK"} {
		v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
		switch v {
		case "1", "true", "yes", "on", "mock":
			return true
		}
	}
	return false
}
