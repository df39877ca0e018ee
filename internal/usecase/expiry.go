package usecase

import (
	"context"
	"errors"
	"time"

	"mealchange_service/internal/domain/entities"
	"mealchange_service/internal/usecase/interfaces"
)

// ExpireStale moves pending requests whose cutoff has passed to expired and
// frees their slot. DynamoDB TTL removes the items later; this makes the
// transition visible before that happens.
func (u *MealChangeUseCase) ExpireStale(ctx context.Context) (int, error) {
	now := u.clock.Now()
	stale, err := u.requests.ListPendingBefore(ctx, now, u.opts.SweepBatchSize)
	if err != nil {
		u.metrics.Failed("expire")
		return 0, err
	}

	expired := 0
	for _, candidate := range stale {
		if err := ctx.Err(); err != nil {
			return expired, err
		}
		ok, err := u.expireOne(ctx, candidate.ID, now)
		if err != nil {
			u.log.Warn("[expiry][usecase] expire failed", "request_id", candidate.ID, "err", err)
			continue
		}
		if ok {
			expired++
		}
	}
	u.metrics.Expired(expired)
	if expired > 0 {
		u.log.Info("[expiry][usecase] sweep done", "expired", expired, "candidates", len(stale))
	}
	return expired, nil
}

func (u *MealChangeUseCase) expireOne(ctx context.Context, id string, now time.Time) (bool, error) {
	unlock := u.locks.Lock(id)
	defer unlock()

	req, err := u.requests.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	if req.ID == "" || req.Status != entities.RequestStatusPending {
		return false, nil
	}
	expected := req.Version
	if err := req.Expire(now.UTC()); err != nil {
		return false, nil
	}
	updated, err := u.requests.Update(ctx, req, expected)
	if err != nil {
		if errors.Is(err, interfaces.ErrVersionConflict) {
			return false, nil
		}
		return false, u.mapWriteError("expire", id, err)
	}
	u.emit(ctx, updated, "Meal change expired",
		"Your meal change for "+updated.ChangeDate+" ("+string(updated.DeliverySlot)+") was not completed before the cutoff.",
		entities.NotificationWarning)
	return true, nil
}

// RunExpirySweeper calls ExpireStale every interval until ctx is done.
func (u *MealChangeUseCase) RunExpirySweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	u.log.Info("[expiry][usecase] sweeper started", "interval", interval.String())
	for {
		select {
		case <-ctx.Done():
			u.log.Info("[expiry][usecase] sweeper stopped")
			return
		case <-ticker.C:
			if _, err := u.ExpireStale(ctx); err != nil && !errors.Is(err, context.Canceled) {
				u.log.Error("[expiry][usecase] sweep failed", "err", err)
			}
		}
	}
}
