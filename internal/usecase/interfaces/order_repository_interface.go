package interfaces

import (
	"context"

	"mealchange_service/internal/domain/entities"
)

// IOrderRepository reads and rewrites delivery orders created upstream.
// No order is a zero value (empty ID).
type IOrderRepository interface {
	FindOrder(ctx context.Context, userID, date string, slot entities.DeliverySlot, subscriptionID string) (entities.Order, error)
	SaveOrder(ctx context.Context, o entities.Order) error
}
