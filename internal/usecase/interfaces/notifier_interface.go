package interfaces

import (
	"context"

	"mealchange_service/internal/domain/entities"
)

// INotifier is fire-and-forget: implementations must not block the caller on
// delivery and never report failures back.
type INotifier interface {
	Notify(ctx context.Context, n entities.Notification)
}
