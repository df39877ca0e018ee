package usecase

import (
	"context"

	"mealchange_service/internal/domain/entities"
)

func (u *MealChangeUseCase) emit(ctx context.Context, req entities.MealChangeRequest, title, message string, typ entities.NotificationType) {
	if u.notifier == nil {
		return
	}
	u.notifier.Notify(context.WithoutCancel(ctx), entities.Notification{
		UserID:  req.UserID,
		Title:   title,
		Message: message,
		Type:    typ,
		Data: map[string]string{
			"request_id":       req.ID,
			"status":           string(req.Status),
			"payment_status":   string(req.PaymentStatus),
			"price_adjustment": req.PriceAdjustment.StringFixed(2),
		},
	})
}
