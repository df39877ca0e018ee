package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"mealchange_service/internal/domain/entities"
	"mealchange_service/internal/usecase/interfaces"

	"go.uber.org/mock/gomock"
)

func TestMealChangeUseCase_SettlePayment_Wallet(t *testing.T) {
	t.Run("insufficient balance leaves request pending", func(t *testing.T) {
		h := newHarness(t, dayBefore)
		r := h.create(t, CreateRequestInput{NewTier: "premium"})
		h.wallet.EXPECT().Debit(gomock.Any(), testUser, decEq(50), gomock.Any(), r.ID).Return(entities.LedgerEntry{}, interfaces.ErrInsufficientBalance)

		_, err := h.uc.SettlePayment(context.Background(), testUser, r.ID, WalletRail{})
		if !errors.Is(err, ErrInsufficientFunds) {
			t.Fatalf("expected ErrInsufficientFunds, got %v", err)
		}
		stored := h.repo.get(r.ID)
		if stored.PaymentStatus != entities.PaymentStatusPending || stored.Status != entities.RequestStatusPending || stored.Version != r.Version {
			t.Fatalf("request must be unchanged: %+v", stored)
		}
	})

	t.Run("debit approves and syncs the order", func(t *testing.T) {
		h := newHarness(t, dayBefore)
		r := h.create(t, CreateRequestInput{NewTier: "premium", Notes: "no onions"})
		h.wallet.EXPECT().Debit(gomock.Any(), testUser, decEq(50), gomock.Any(), r.ID).Return(entities.LedgerEntry{ID: "led-1"}, nil)
		h.orders.EXPECT().FindOrder(gomock.Any(), testUser, testDate, entities.SlotLunch, "sub-1").
			Return(entities.Order{ID: "ord-1", UserID: testUser, TotalAmount: dec(100), FinalAmount: dec(100)}, nil)
		var saved entities.Order
		h.orders.EXPECT().SaveOrder(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, o entities.Order) error {
			saved = o
			return nil
		})

		got, err := h.uc.SettlePayment(context.Background(), testUser, r.ID, WalletRail{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Status != entities.RequestStatusApproved || got.PaymentStatus != entities.PaymentStatusPaid {
			t.Fatalf("unexpected state: %s %s", got.Status, got.PaymentStatus)
		}
		if got.TransactionID != "WAL-led-1" || got.PaymentRail != entities.RailWallet || got.ProcessedAt == nil {
			t.Fatalf("unexpected settlement fields: %+v", got)
		}
		if got.OrderID != "ord-1" || got.OrderSyncStatus != entities.OrderSyncSynced {
			t.Fatalf("unexpected order sync: %s %s", got.OrderID, got.OrderSyncStatus)
		}
		if !saved.TotalAmount.Equal(dec(150)) || !saved.FinalAmount.Equal(dec(150)) || len(saved.Notes) != 1 {
			t.Fatalf("unexpected saved order: %+v", saved)
		}
		if n := h.lastNotification(); n.Type != entities.NotificationSuccess {
			t.Fatalf("expected success notification, got %+v", n)
		}

		if _, err := h.uc.SettlePayment(context.Background(), testUser, r.ID, WalletRail{}); !errors.Is(err, ErrAlreadyPaid) {
			t.Fatalf("expected ErrAlreadyPaid on second settle, got %v", err)
		}
		if _, err := h.uc.Cancel(context.Background(), testUser, r.ID); !errors.Is(err, ErrNotCancellable) {
			t.Fatalf("expected ErrNotCancellable after approval, got %v", err)
		}
	})

	t.Run("failed write reverses the debit", func(t *testing.T) {
		h := newHarness(t, dayBefore)
		r := h.create(t, CreateRequestInput{NewTier: "premium"})
		h.wallet.EXPECT().Debit(gomock.Any(), testUser, decEq(50), gomock.Any(), r.ID).Return(entities.LedgerEntry{ID: "led-1"}, nil)
		h.orders.EXPECT().FindOrder(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
		h.orders.EXPECT().SaveOrder(gomock.Any(), gomock.Any()).Times(0)
		h.wallet.EXPECT().Credit(gomock.Any(), testUser, decEq(50), reversalLedgerNote, r.ID).Return(entities.LedgerEntry{ID: "led-2"}, nil)
		h.repo.updateErr = errors.New("dynamo unavailable")

		if _, err := h.uc.SettlePayment(context.Background(), testUser, r.ID, WalletRail{}); err == nil {
			t.Fatalf("expected error")
		}
		if stored := h.repo.get(r.ID); stored.Status != entities.RequestStatusPending || stored.PaymentStatus != entities.PaymentStatusPending {
			t.Fatalf("request must stay in its prior state: %+v", stored)
		}
		if n := h.lastNotification(); n.Type == entities.NotificationSuccess {
			t.Fatalf("no confirmation may be sent for an unstored approval: %+v", n)
		}
	})

	t.Run("lost order sync outcome keeps the approval", func(t *testing.T) {
		h := newHarness(t, dayBefore)
		r := h.create(t, CreateRequestInput{NewTier: "premium"})
		h.wallet.EXPECT().Debit(gomock.Any(), testUser, decEq(50), gomock.Any(), r.ID).Return(entities.LedgerEntry{ID: "led-1"}, nil)
		h.orders.EXPECT().FindOrder(gomock.Any(), testUser, testDate, entities.SlotLunch, "sub-1").
			DoAndReturn(func(context.Context, string, string, entities.DeliverySlot, string) (entities.Order, error) {
				stored := h.repo.get(r.ID)
				if stored.Status != entities.RequestStatusApproved || stored.OrderSyncStatus != "" {
					t.Fatalf("approval must be stored before the order is touched: %+v", stored)
				}
				h.repo.updateErr = errors.New("dynamo unavailable")
				return entities.Order{ID: "ord-1", UserID: testUser, TotalAmount: dec(100), FinalAmount: dec(100)}, nil
			})
		h.orders.EXPECT().SaveOrder(gomock.Any(), gomock.Any()).Return(nil)

		got, err := h.uc.SettlePayment(context.Background(), testUser, r.ID, WalletRail{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Status != entities.RequestStatusApproved || got.OrderSyncStatus != entities.OrderSyncSynced || got.OrderID != "ord-1" {
			t.Fatalf("unexpected result: %+v", got)
		}
		stored := h.repo.get(r.ID)
		if stored.Status != entities.RequestStatusApproved || stored.PaymentStatus != entities.PaymentStatusPaid {
			t.Fatalf("approval must stand: %+v", stored)
		}
		if n := h.lastNotification(); n.Type != entities.NotificationSuccess {
			t.Fatalf("expected success notification, got %+v", n)
		}
	})
}

func TestMealChangeUseCase_SettlePayment_NoPayment(t *testing.T) {
	h := newHarness(t, dayBefore)
	r := h.create(t, CreateRequestInput{NewTier: "low"})
	h.noOrder()

	got, err := h.uc.SettlePayment(context.Background(), testUser, r.ID, WalletRail{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != entities.RequestStatusApproved || got.PaymentStatus != entities.PaymentStatusNotRequired {
		t.Fatalf("unexpected state: %s %s", got.Status, got.PaymentStatus)
	}
	if got.OrderSyncStatus != entities.OrderSyncNoOrder || got.TransactionID != "" {
		t.Fatalf("unexpected fields: %+v", got)
	}
	if _, err := h.uc.SettlePayment(context.Background(), testUser, r.ID, WalletRail{}); !errors.Is(err, ErrNotPayable) {
		t.Fatalf("expected ErrNotPayable, got %v", err)
	}
}

func TestMealChangeUseCase_SettlePayment_Guards(t *testing.T) {
	h := newHarness(t, dayBefore)
	r := h.create(t, CreateRequestInput{NewTier: "premium"})

	if _, err := h.uc.SettlePayment(context.Background(), testUser, r.ID, nil); !errors.Is(err, ErrInvalidPaymentRail) {
		t.Fatalf("expected ErrInvalidPaymentRail, got %v", err)
	}
	if _, err := h.uc.SettlePayment(context.Background(), "user-2", r.ID, WalletRail{}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := h.uc.SettlePayment(context.Background(), testUser, "missing", WalletRail{}); !errors.Is(err, ErrRequestNotFound) {
		t.Fatalf("expected ErrRequestNotFound, got %v", err)
	}

	h.setNow(time.Date(2026, 10, 20, 6, 0, 1, 0, ist))
	if _, err := h.uc.SettlePayment(context.Background(), testUser, r.ID, WalletRail{}); !errors.Is(err, ErrCutoffPassed) {
		t.Fatalf("expected ErrCutoffPassed, got %v", err)
	}

	h.setNow(dayBefore)
	if _, err := h.uc.Cancel(context.Background(), testUser, r.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := h.uc.SettlePayment(context.Background(), testUser, r.ID, WalletRail{}); !errors.Is(err, ErrNotPayable) {
		t.Fatalf("expected ErrNotPayable on rejected request, got %v", err)
	}
}

func TestMealChangeUseCase_SettlePayment_Gateway(t *testing.T) {
	rail := GatewayRail{PaymentMethodID: "visa", Token: "tok", PayerEmail: "a@b.c", Installments: 1}

	t.Run("approved charge", func(t *testing.T) {
		h := newHarness(t, dayBefore)
		r := h.create(t, CreateRequestInput{NewTier: "premium"})
		h.gateway.EXPECT().Charge(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, req interfaces.ChargeRequest) (interfaces.ChargeResult, error) {
				if !req.Amount.Equal(dec(50)) || req.ExternalReference != r.ID || req.Currency != "INR" || req.PayerID != testUser {
					t.Fatalf("unexpected charge request: %+v", req)
				}
				if req.Token != "tok" || req.PaymentMethodID != "visa" {
					t.Fatalf("rail details not forwarded: %+v", req)
				}
				return interfaces.ChargeResult{TransactionID: "987", Status: "approved", ExternalReference: r.ID, Amount: dec(50)}, nil
			})
		h.noOrder()

		got, err := h.uc.SettlePayment(context.Background(), testUser, r.ID, rail)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.TransactionID != "987" || got.PaymentRail != entities.RailGateway || got.Status != entities.RequestStatusApproved {
			t.Fatalf("unexpected result: %+v", got)
		}
	})

	t.Run("declined charge passes provider text through", func(t *testing.T) {
		h := newHarness(t, dayBefore)
		r := h.create(t, CreateRequestInput{NewTier: "premium"})
		h.gateway.EXPECT().Charge(gomock.Any(), gomock.Any()).
			Return(interfaces.ChargeResult{TransactionID: "988", Status: "rejected", StatusDetail: "cc_rejected_insufficient_amount"}, nil)

		_, err := h.uc.SettlePayment(context.Background(), testUser, r.ID, rail)
		if !errors.Is(err, ErrGatewayDeclined) || !strings.Contains(err.Error(), "cc_rejected_insufficient_amount") {
			t.Fatalf("expected declined with provider detail, got %v", err)
		}
		if stored := h.repo.get(r.ID); stored.PaymentStatus != entities.PaymentStatusPending || stored.TransactionID != "" {
			t.Fatalf("request must be unchanged: %+v", stored)
		}
	})

	t.Run("transport error is a decline", func(t *testing.T) {
		h := newHarness(t, dayBefore)
		r := h.create(t, CreateRequestInput{NewTier: "premium"})
		h.gateway.EXPECT().Charge(gomock.Any(), gomock.Any()).Return(interfaces.ChargeResult{}, errors.New("card token expired"))

		_, err := h.uc.SettlePayment(context.Background(), testUser, r.ID, rail)
		if !errors.Is(err, ErrGatewayDeclined) || !strings.Contains(err.Error(), "card token expired") {
			t.Fatalf("expected declined, got %v", err)
		}
	})

	t.Run("timeout leaves request pending", func(t *testing.T) {
		opts := DefaultOptions()
		opts.PaymentTimeout = 20 * time.Millisecond
		h := newHarnessWithOptions(t, dayBefore, opts)
		r := h.create(t, CreateRequestInput{NewTier: "premium"})
		h.gateway.EXPECT().Charge(gomock.Any(), gomock.Any()).DoAndReturn(
			func(ctx context.Context, _ interfaces.ChargeRequest) (interfaces.ChargeResult, error) {
				<-ctx.Done()
				return interfaces.ChargeResult{}, ctx.Err()
			})

		_, err := h.uc.SettlePayment(context.Background(), testUser, r.ID, rail)
		if !errors.Is(err, ErrGatewayUnavailable) {
			t.Fatalf("expected ErrGatewayUnavailable, got %v", err)
		}
		if stored := h.repo.get(r.ID); stored.Status != entities.RequestStatusPending {
			t.Fatalf("request must stay pending: %+v", stored)
		}
	})

	t.Run("not configured", func(t *testing.T) {
		h := newHarness(t, dayBefore)
		h.uc.gateway = nil
		r := h.create(t, CreateRequestInput{NewTier: "premium"})

		_, err := h.uc.SettlePayment(context.Background(), testUser, r.ID, rail)
		if !errors.Is(err, ErrGatewayNotConfigured) {
			t.Fatalf("expected ErrGatewayNotConfigured, got %v", err)
		}
	})

	t.Run("capture without a write is reported for reconciliation", func(t *testing.T) {
		h := newHarness(t, dayBefore)
		r := h.create(t, CreateRequestInput{NewTier: "premium"})
		h.gateway.EXPECT().Charge(gomock.Any(), gomock.Any()).Return(interfaces.ChargeResult{TransactionID: "989", Status: "approved", Amount: dec(50)}, nil)
		h.orders.EXPECT().SaveOrder(gomock.Any(), gomock.Any()).Times(0)
		h.repo.updateErr = errors.New("dynamo unavailable")

		_, err := h.uc.SettlePayment(context.Background(), testUser, r.ID, rail)
		if !errors.Is(err, ErrReconciliationPending) {
			t.Fatalf("expected ErrReconciliationPending, got %v", err)
		}
	})

	t.Run("captured amount differing from the adjustment is not applied", func(t *testing.T) {
		h := newHarness(t, dayBefore)
		r := h.create(t, CreateRequestInput{NewTier: "premium"})
		h.gateway.EXPECT().Charge(gomock.Any(), gomock.Any()).
			Return(interfaces.ChargeResult{TransactionID: "990", Status: "approved", ExternalReference: r.ID, Amount: dec(1)}, nil)

		_, err := h.uc.SettlePayment(context.Background(), testUser, r.ID, rail)
		if !errors.Is(err, ErrReconciliationPending) {
			t.Fatalf("expected ErrReconciliationPending, got %v", err)
		}
		stored := h.repo.get(r.ID)
		if stored.Status != entities.RequestStatusPending || stored.PaymentStatus != entities.PaymentStatusPending || stored.TransactionID != "" {
			t.Fatalf("request must stay pending: %+v", stored)
		}
	})
}

func TestMealChangeUseCase_ConfirmGatewayPayment(t *testing.T) {
	t.Run("applies once per transaction", func(t *testing.T) {
		h := newHarness(t, dayBefore)
		r := h.create(t, CreateRequestInput{NewTier: "premium"})
		h.gateway.EXPECT().GetPayment(gomock.Any(), "555").
			Return(interfaces.ChargeResult{TransactionID: "555", Status: "approved", ExternalReference: r.ID, Amount: dec(50)}, nil).Times(2)
		h.noOrder()

		first, err := h.uc.ConfirmGatewayPayment(context.Background(), "555")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if first.Status != entities.RequestStatusApproved || first.TransactionID != "555" {
			t.Fatalf("unexpected result: %+v", first)
		}

		second, err := h.uc.ConfirmGatewayPayment(context.Background(), "555")
		if err != nil {
			t.Fatalf("duplicate delivery must be a no-op, got %v", err)
		}
		if second.Version != first.Version {
			t.Fatalf("duplicate delivery must not write: %d vs %d", second.Version, first.Version)
		}
	})

	t.Run("amount differing from the adjustment is not applied", func(t *testing.T) {
		h := newHarness(t, dayBefore)
		r := h.create(t, CreateRequestInput{NewTier: "premium"})
		h.gateway.EXPECT().GetPayment(gomock.Any(), "558").
			Return(interfaces.ChargeResult{TransactionID: "558", Status: "approved", ExternalReference: r.ID, Amount: dec(1)}, nil)

		if _, err := h.uc.ConfirmGatewayPayment(context.Background(), "558"); !errors.Is(err, ErrReconciliationPending) {
			t.Fatalf("expected ErrReconciliationPending, got %v", err)
		}
		stored := h.repo.get(r.ID)
		if stored.Status != entities.RequestStatusPending || stored.PaymentStatus != entities.PaymentStatusPending || stored.Version != r.Version {
			t.Fatalf("request must be unchanged: %+v", stored)
		}
	})

	t.Run("unknown reference", func(t *testing.T) {
		h := newHarness(t, dayBefore)
		h.gateway.EXPECT().GetPayment(gomock.Any(), "556").
			Return(interfaces.ChargeResult{TransactionID: "556", Status: "approved", ExternalReference: "nope"}, nil)

		if _, err := h.uc.ConfirmGatewayPayment(context.Background(), "556"); !errors.Is(err, ErrRequestNotFound) {
			t.Fatalf("expected ErrRequestNotFound, got %v", err)
		}
	})

	t.Run("pending provider status is not applied", func(t *testing.T) {
		h := newHarness(t, dayBefore)
		r := h.create(t, CreateRequestInput{NewTier: "premium"})
		h.gateway.EXPECT().GetPayment(gomock.Any(), "557").
			Return(interfaces.ChargeResult{TransactionID: "557", Status: "in_process", ExternalReference: r.ID}, nil)

		if _, err := h.uc.ConfirmGatewayPayment(context.Background(), "557"); !errors.Is(err, ErrGatewayDeclined) {
			t.Fatalf("expected ErrGatewayDeclined, got %v", err)
		}
		if h.repo.get(r.ID).Status != entities.RequestStatusPending {
			t.Fatalf("request must stay pending")
		}
	})

	t.Run("missing transaction id", func(t *testing.T) {
		h := newHarness(t, dayBefore)
		if _, err := h.uc.ConfirmGatewayPayment(context.Background(), ""); !errors.Is(err, ErrInvalidRequestID) {
			t.Fatalf("expected ErrInvalidRequestID, got %v", err)
		}
	})
}
