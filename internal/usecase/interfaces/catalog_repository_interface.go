package interfaces

import (
	"context"

	"mealchange_service/internal/domain/entities"
)

// IMenuRepository reads daily menus. A missing menu is a zero value (empty Date).
type IMenuRepository interface {
	GetDailyMenu(ctx context.Context, date string) (entities.DailyMenu, error)
}

// ISubscriptionRepository reads subscriptions owned by the billing cycle.
// No active subscription is a zero value (empty ID).
type ISubscriptionRepository interface {
	GetActiveSubscription(ctx context.Context, userID, date string) (entities.Subscription, error)
}
