package usecase

import (
	"context"
	"testing"
	"time"

	"mealchange_service/internal/domain/entities"
)

func TestMealChangeUseCase_ExpireStale(t *testing.T) {
	h := newHarness(t, dayBefore)
	stale := h.create(t, CreateRequestInput{NewTier: "premium"})
	later := h.create(t, CreateRequestInput{Date: "2026-10-21", NewTier: "premium"})

	h.setNow(time.Date(2026, 10, 20, 6, 0, 0, 0, ist))
	n, err := h.uc.ExpireStale(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 expired, got %d", n)
	}

	got := h.repo.get(stale.ID)
	if got.Status != entities.RequestStatusExpired || got.ProcessedAt == nil {
		t.Fatalf("unexpected stale request: %+v", got)
	}
	if h.repo.get(later.ID).Status != entities.RequestStatusPending {
		t.Fatalf("request before its cutoff must stay pending")
	}
	if note := h.lastNotification(); note.Type != entities.NotificationWarning || note.Data["request_id"] != stale.ID {
		t.Fatalf("expected expiry notification, got %+v", note)
	}

	active, _ := h.repo.GetActiveBySlot(context.Background(), testUser, testDate, entities.SlotLunch)
	if active.ID != "" {
		t.Fatalf("expired request must release its slot")
	}

	n, err = h.uc.ExpireStale(context.Background())
	if err != nil || n != 0 {
		t.Fatalf("second sweep: n=%d err=%v", n, err)
	}
}

func TestMealChangeUseCase_RunExpirySweeper(t *testing.T) {
	h := newHarness(t, dayBefore)
	r := h.create(t, CreateRequestInput{NewTier: "premium"})
	h.setNow(time.Date(2026, 10, 20, 7, 0, 0, 0, ist))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		h.uc.RunExpirySweeper(ctx, 5*time.Millisecond)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for h.repo.get(r.ID).Status != entities.RequestStatusExpired {
		select {
		case <-deadline:
			cancel()
			t.Fatalf("sweeper did not expire the request")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	<-done
}
