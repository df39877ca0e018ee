package interfaces

import (
	"context"
	"time"

	"mealchange_service/internal/domain/entities"
)

// IMealChangeRepository abstracts DynamoDB persistence for MealChangeRequest.
//
// Not found is reported as a zero-value request (empty ID), never as an error.
// Writes are conditional:
//   - Create fails with ErrSlotTaken when another active request holds the slot.
//   - Update fails with ErrVersionConflict when the stored version differs from
//     expectedVersion, and releases the slot when the new status is not active.
type IMealChangeRepository interface {
	Create(ctx context.Context, r entities.MealChangeRequest) (entities.MealChangeRequest, error)
	GetByID(ctx context.Context, id string) (entities.MealChangeRequest, error)
	GetActiveBySlot(ctx context.Context, userID, changeDate string, slot entities.DeliverySlot) (entities.MealChangeRequest, error)
	Update(ctx context.Context, r entities.MealChangeRequest, expectedVersion int64) (entities.MealChangeRequest, error)
	ListByUser(ctx context.Context, userID string, status entities.RequestStatus) ([]entities.MealChangeRequest, error)
	ListPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]entities.MealChangeRequest, error)
}
