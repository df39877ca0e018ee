package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"mealchange_service/internal/domain/entities"
	"mealchange_service/internal/domain/policy"
	"mealchange_service/internal/usecase/interfaces"
)

const (
	refundLedgerNote   = "refund for cancelled request"
	reversalLedgerNote = "reversal of unrecorded meal change payment"
	walletTxnPrefix    = "WAL-"
)

// PaymentRail selects how a positive price adjustment is collected.
// The set is closed: WalletRail and GatewayRail are the only implementations.
type PaymentRail interface {
	Kind() entities.RailKind
	isPaymentRail()
}

// WalletRail debits the subscriber's internal balance.
type WalletRail struct{}

func (WalletRail) Kind() entities.RailKind { return entities.RailWallet }
func (WalletRail) isPaymentRail()          {}

// GatewayRail charges the subscriber through the external payment provider.
type GatewayRail struct {
	PaymentMethodID string
	Token           string
	PayerEmail      string
	Installments    int
}

func (GatewayRail) Kind() entities.RailKind { return entities.RailGateway }
func (GatewayRail) isPaymentRail()          {}

// SettlePayment collects the adjustment of a pending request and approves it.
// A request that needs no payment is approved without touching any rail.
func (u *MealChangeUseCase) SettlePayment(ctx context.Context, userID, id string, rail PaymentRail) (entities.MealChangeRequest, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.MealChangeRequest{}, ErrInvalidRequestID
	}
	if rail == nil {
		return entities.MealChangeRequest{}, ErrInvalidPaymentRail
	}
	unlock := u.locks.Lock(id)
	defer unlock()

	u.log.Info("[payment][usecase] settle start", "request_id", id, "rail", rail.Kind())
	req, err := u.loadOwned(ctx, userID, id)
	if err != nil {
		return entities.MealChangeRequest{}, err
	}
	if err := u.checkPayable(req); err != nil {
		u.log.Info("[payment][usecase] settle refused", "request_id", id, "status", req.Status, "payment_status", req.PaymentStatus, "err", err)
		return entities.MealChangeRequest{}, err
	}

	if !req.PaymentRequired {
		u.log.Info("[payment][usecase] no payment required, approving", "request_id", id)
		return u.finalizeApproval(ctx, req, req.Version)
	}

	start := time.Now()
	var (
		out     entities.MealChangeRequest
		outcome = "paid"
	)
	switch r := rail.(type) {
	case WalletRail:
		out, err = u.settleWithWallet(ctx, req)
	case GatewayRail:
		out, err = u.settleWithGateway(ctx, req, r)
	default:
		return entities.MealChangeRequest{}, ErrInvalidPaymentRail
	}
	if err != nil {
		outcome = settlementOutcome(err)
	}
	u.metrics.Settled(string(rail.Kind()), outcome, time.Since(start).Seconds())
	return out, err
}

func (u *MealChangeUseCase) checkPayable(req entities.MealChangeRequest) error {
	switch req.Status {
	case entities.RequestStatusPending:
	case entities.RequestStatusApproved:
		if req.PaymentStatus == entities.PaymentStatusPaid {
			return ErrAlreadyPaid
		}
		return ErrNotPayable
	default:
		return ErrNotPayable
	}
	if req.PaymentStatus == entities.PaymentStatusPaid {
		return ErrAlreadyPaid
	}
	if policy.Passed(req.CutoffTime, u.clock.Now()) {
		return ErrCutoffPassed
	}
	return nil
}

func (u *MealChangeUseCase) settleWithWallet(ctx context.Context, req entities.MealChangeRequest) (entities.MealChangeRequest, error) {
	if u.wallet == nil {
		return entities.MealChangeRequest{}, errors.New("wallet repository not configured")
	}
	entry, err := u.wallet.Debit(ctx, req.UserID, req.PriceAdjustment, "meal change "+req.ID, req.ID)
	if err != nil {
		if errors.Is(err, interfaces.ErrInsufficientBalance) {
			u.log.Info("[payment][usecase] wallet balance too low", "request_id", req.ID, "amount", req.PriceAdjustment.String())
			return entities.MealChangeRequest{}, ErrInsufficientFunds
		}
		u.log.Error("[payment][usecase] wallet debit failed", "request_id", req.ID, "err", err)
		return entities.MealChangeRequest{}, err
	}

	expected := req.Version
	if err := req.MarkPaid(entities.RailWallet, walletTxnPrefix+entry.ID); err != nil {
		u.compensateWallet(ctx, req)
		return entities.MealChangeRequest{}, err
	}
	approved, err := u.finalizeApproval(ctx, req, expected)
	if err != nil {
		u.compensateWallet(ctx, req)
		return entities.MealChangeRequest{}, err
	}
	u.log.Info("[payment][usecase] wallet settle success", "request_id", req.ID, "transaction_id", approved.TransactionID)
	return approved, nil
}

// compensateWallet puts back a debit whose request write did not land.
func (u *MealChangeUseCase) compensateWallet(ctx context.Context, req entities.MealChangeRequest) {
	ctx = context.WithoutCancel(ctx)
	if _, err := u.wallet.Credit(ctx, req.UserID, req.PriceAdjustment, reversalLedgerNote, req.ID); err != nil {
		u.log.Error("[payment][usecase] wallet compensation failed, manual reconciliation required",
			"request_id", req.ID, "user_id", req.UserID, "amount", req.PriceAdjustment.String(), "err", err)
		u.metrics.NeedsReconciliation("wallet_compensation_failed")
		return
	}
	u.log.Warn("[payment][usecase] wallet debit reversed after failed write", "request_id", req.ID)
}

func (u *MealChangeUseCase) settleWithGateway(ctx context.Context, req entities.MealChangeRequest, rail GatewayRail) (entities.MealChangeRequest, error) {
	if u.gateway == nil {
		u.log.Error("[payment][usecase] gateway not configured", "request_id", req.ID)
		return entities.MealChangeRequest{}, ErrGatewayNotConfigured
	}

	gctx, cancel := context.WithTimeout(ctx, u.opts.PaymentTimeout)
	res, err := u.gateway.Charge(gctx, interfaces.ChargeRequest{
		Amount:            req.PriceAdjustment,
		Currency:          u.opts.Currency,
		PayerID:           req.UserID,
		PayerEmail:        rail.PayerEmail,
		Description:       fmt.Sprintf("Meal change %s %s (%s)", req.ChangeDate, req.DeliverySlot, req.Reason),
		ExternalReference: req.ID,
		PaymentMethodID:   rail.PaymentMethodID,
		Token:             rail.Token,
		Installments:      rail.Installments,
	})
	cancel()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			u.log.Warn("[payment][usecase] gateway timeout", "request_id", req.ID, "timeout", u.opts.PaymentTimeout.String())
			return entities.MealChangeRequest{}, ErrGatewayUnavailable
		}
		u.log.Info("[payment][usecase] gateway failed", "request_id", req.ID, "err", err)
		return entities.MealChangeRequest{}, fmt.Errorf("%w: %s", ErrGatewayDeclined, err.Error())
	}
	if !res.Approved() {
		u.log.Info("[payment][usecase] gateway declined", "request_id", req.ID, "status", res.Status, "status_detail", res.StatusDetail)
		return entities.MealChangeRequest{}, fmt.Errorf("%w: %s", ErrGatewayDeclined, declineText(res))
	}

	return u.applyGatewayCapture(ctx, req, res)
}

// applyGatewayCapture records an approved provider payment on a pending request.
// The captured amount must match the current adjustment exactly.
func (u *MealChangeUseCase) applyGatewayCapture(ctx context.Context, req entities.MealChangeRequest, res interfaces.ChargeResult) (entities.MealChangeRequest, error) {
	if !res.Amount.Round(2).Equal(req.PriceAdjustment.Round(2)) {
		u.flagGatewayCapture(req, res, "gateway_amount_mismatch", fmt.Errorf("captured %s, expected %s", res.Amount.String(), req.PriceAdjustment.String()))
		return entities.MealChangeRequest{}, ErrReconciliationPending
	}
	expected := req.Version
	if err := req.MarkPaid(entities.RailGateway, res.TransactionID); err != nil {
		u.flagGatewayCapture(req, res, "gateway_write_failed", err)
		return entities.MealChangeRequest{}, ErrReconciliationPending
	}
	approved, err := u.finalizeApproval(ctx, req, expected)
	if err != nil {
		u.flagGatewayCapture(req, res, "gateway_write_failed", err)
		if errors.Is(err, ErrConflict) {
			return entities.MealChangeRequest{}, err
		}
		return entities.MealChangeRequest{}, ErrReconciliationPending
	}
	u.log.Info("[payment][usecase] gateway settle success", "request_id", req.ID, "transaction_id", res.TransactionID)
	return approved, nil
}

func (u *MealChangeUseCase) flagGatewayCapture(req entities.MealChangeRequest, res interfaces.ChargeResult, reason string, cause error) {
	u.log.Error("[payment][usecase] gateway captured but request not updated, manual reconciliation required",
		"request_id", req.ID, "user_id", req.UserID, "transaction_id", res.TransactionID,
		"amount", req.PriceAdjustment.String(), "captured", res.Amount.String(), "err", cause)
	u.metrics.NeedsReconciliation(reason)
}

// ConfirmGatewayPayment applies an asynchronous provider notification.
// Delivering the same transaction twice is a no-op.
func (u *MealChangeUseCase) ConfirmGatewayPayment(ctx context.Context, transactionID string) (entities.MealChangeRequest, error) {
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return entities.MealChangeRequest{}, ErrInvalidRequestID
	}
	if u.gateway == nil {
		return entities.MealChangeRequest{}, ErrGatewayNotConfigured
	}

	gctx, cancel := context.WithTimeout(ctx, u.opts.PaymentTimeout)
	res, err := u.gateway.GetPayment(gctx, transactionID)
	cancel()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return entities.MealChangeRequest{}, ErrGatewayUnavailable
		}
		return entities.MealChangeRequest{}, err
	}
	requestID := strings.TrimSpace(res.ExternalReference)
	if requestID == "" {
		return entities.MealChangeRequest{}, ErrRequestNotFound
	}

	unlock := u.locks.Lock(requestID)
	defer unlock()

	req, err := u.requests.GetByID(ctx, requestID)
	if err != nil {
		return entities.MealChangeRequest{}, err
	}
	if req.ID == "" {
		return entities.MealChangeRequest{}, ErrRequestNotFound
	}
	if req.PaymentStatus == entities.PaymentStatusPaid && req.TransactionID == res.TransactionID {
		u.log.Info("[payment][webhook] duplicate delivery ignored", "request_id", req.ID, "transaction_id", res.TransactionID)
		return req, nil
	}
	if !res.Approved() {
		return entities.MealChangeRequest{}, fmt.Errorf("%w: %s", ErrGatewayDeclined, declineText(res))
	}
	if !req.PaymentRequired {
		u.flagGatewayCapture(req, res, "gateway_write_failed", ErrNotPayable)
		return entities.MealChangeRequest{}, ErrNotPayable
	}
	if err := u.checkPayable(req); err != nil {
		u.flagGatewayCapture(req, res, "gateway_write_failed", err)
		return entities.MealChangeRequest{}, err
	}
	return u.applyGatewayCapture(ctx, req, res)
}

// finalizeApproval runs the settle-success transition: persist the approval
// with a version check, then propagate it to the delivery order. The order is
// never touched unless the approval is stored.
func (u *MealChangeUseCase) finalizeApproval(ctx context.Context, req entities.MealChangeRequest, expectedVersion int64) (entities.MealChangeRequest, error) {
	now := u.clock.Now().UTC()
	if err := req.Approve(now); err != nil {
		return entities.MealChangeRequest{}, ErrNotPayable
	}

	approved, err := u.requests.Update(ctx, req, expectedVersion)
	if err != nil {
		return entities.MealChangeRequest{}, u.mapWriteError("approve", req.ID, err)
	}
	updated := u.recordOrderSync(ctx, approved, now)

	msg := "Your meal change for " + updated.ChangeDate + " (" + string(updated.DeliverySlot) + ") is confirmed."
	if updated.PaymentStatus == entities.PaymentStatusPaid {
		msg += " Paid " + updated.PriceAdjustment.StringFixed(2) + " " + u.opts.Currency + "."
	}
	u.emit(ctx, updated, "Meal change confirmed", msg, entities.NotificationSuccess)
	return updated, nil
}

// reverse returns captured money for a cancelled request. The request has
// already been written as rejected with its RefundStatus.
func (u *MealChangeUseCase) reverse(ctx context.Context, req entities.MealChangeRequest) (entities.MealChangeRequest, string) {
	switch req.PaymentRail {
	case entities.RailWallet:
		if u.wallet != nil {
			_, err := u.wallet.Credit(context.WithoutCancel(ctx), req.UserID, req.PriceAdjustment, refundLedgerNote, req.ID)
			if err == nil {
				u.log.Info("[payment][usecase] wallet refund applied", "request_id", req.ID, "amount", req.PriceAdjustment.String())
				return req, "wallet"
			}
			u.log.Error("[payment][usecase] wallet refund failed", "request_id", req.ID, "err", err)
		}
		u.metrics.NeedsReconciliation("wallet_refund_failed")
		expected := req.Version
		req.RefundStatus = entities.RefundStatusManualReview
		if updated, err := u.requests.Update(ctx, req, expected); err == nil {
			req = updated
		} else {
			u.log.Error("[payment][usecase] could not flag refund for review", "request_id", req.ID, "err", err)
		}
		return req, "failed"
	default:
		u.log.Warn("[payment][usecase] gateway payment on cancelled request needs operator refund",
			"request_id", req.ID, "transaction_id", req.TransactionID, "amount", req.PriceAdjustment.String())
		u.metrics.NeedsReconciliation("gateway_refund")
		return req, "manual_review"
	}
}

func settlementOutcome(err error) string {
	switch {
	case errors.Is(err, ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, ErrGatewayDeclined):
		return "declined"
	case errors.Is(err, ErrGatewayUnavailable):
		return "timeout"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrReconciliationPending):
		return "reconciliation"
	default:
		return "error"
	}
}

func declineText(res interfaces.ChargeResult) string {
	if res.StatusDetail != "" {
		return res.Status + " (" + res.StatusDetail + ")"
	}
	if res.Status == "" {
		return "no status returned"
	}
	return res.Status
}
