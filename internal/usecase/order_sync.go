package usecase

import (
	"context"
	"strings"
	"time"

	"mealchange_service/internal/domain/entities"
)

// syncOrder mirrors an approved change into the delivery order for the same
// user, date, slot and subscription, and records the outcome on req.
// A missing order is not an error: the change stays approved.
func (u *MealChangeUseCase) syncOrder(ctx context.Context, req *entities.MealChangeRequest, now time.Time) {
	if u.orders == nil {
		req.OrderSyncStatus = entities.OrderSyncNoOrder
		return
	}
	sctx, cancel := context.WithTimeout(ctx, u.opts.OrderSyncTimeout)
	defer cancel()

	order, err := u.orders.FindOrder(sctx, req.UserID, req.ChangeDate, req.DeliverySlot, req.SubscriptionID)
	if err != nil {
		u.log.Error("[order-sync][usecase] find order failed", "request_id", req.ID, "err", err)
		u.metrics.NeedsReconciliation("order_sync_failed")
		req.OrderSyncStatus = entities.OrderSyncFailed
		return
	}
	if order.ID == "" {
		u.log.Info("[order-sync][usecase] no delivery order yet", "request_id", req.ID)
		req.OrderSyncStatus = entities.OrderSyncNoOrder
		return
	}

	updated := ApplyMealChange(order, *req, now)
	if err := u.orders.SaveOrder(sctx, updated); err != nil {
		u.log.Error("[order-sync][usecase] save order failed", "request_id", req.ID, "order_id", order.ID, "err", err)
		u.metrics.NeedsReconciliation("order_sync_failed")
		req.OrderSyncStatus = entities.OrderSyncFailed
		return
	}
	req.OrderID = order.ID
	req.OrderSyncStatus = entities.OrderSyncSynced
	u.log.Info("[order-sync][usecase] order updated", "request_id", req.ID, "order_id", order.ID, "total", updated.TotalAmount.String())
}

// recordOrderSync propagates an already stored approval into the delivery
// order and stores the outcome with a follow-up versioned write. A lost
// outcome write is flagged for reconciliation; the approval stands.
func (u *MealChangeUseCase) recordOrderSync(ctx context.Context, approved entities.MealChangeRequest, now time.Time) entities.MealChangeRequest {
	synced := approved
	u.syncOrder(ctx, &synced, now)

	updated, err := u.requests.Update(context.WithoutCancel(ctx), synced, approved.Version)
	if err != nil {
		u.log.Error("[order-sync][usecase] outcome not recorded", "request_id", approved.ID,
			"order_sync_status", synced.OrderSyncStatus, "order_id", synced.OrderID, "err", err)
		u.metrics.NeedsReconciliation("order_sync_unrecorded")
		return synced
	}
	return updated
}

// ApplyMealChange rewrites an order's lines and amounts to match the requested
// meal. Applying the same request twice yields the same lines and amounts.
func ApplyMealChange(o entities.Order, req entities.MealChangeRequest, now time.Time) entities.Order {
	items := make([]entities.OrderItem, 0, len(req.NewMeal.Items)+len(req.NewMeal.CustomItems))
	for _, it := range req.NewMeal.Items {
		items = append(items, entities.OrderItem{
			Name:     it.Name,
			Category: entities.OrderItemCategoryMain,
			Price:    it.Price,
			Quantity: 1,
		})
	}
	for _, c := range req.NewMeal.CustomItems {
		qty := c.Quantity
		if qty <= 0 {
			qty = 1
		}
		items = append(items, entities.OrderItem{
			Name:     c.Name,
			Category: entities.OrderItemCategoryAddon,
			Price:    c.Price,
			Quantity: qty,
		})
	}
	o.Items = items
	o.TotalAmount = req.NewMeal.TotalPrice
	o.FinalAmount = req.NewMeal.TotalPrice

	note := changeNote(req)
	found := false
	for _, n := range o.Notes {
		if n == note {
			found = true
			break
		}
	}
	if !found {
		o.Notes = append(o.Notes, note)
	}
	o.UpdatedAt = now
	return o
}

func changeNote(req entities.MealChangeRequest) string {
	var b strings.Builder
	b.WriteString("Meal changed (")
	b.WriteString(strings.ReplaceAll(string(req.Reason), "_", " "))
	b.WriteString(") to ")
	b.WriteString(string(req.NewMeal.PlanTier))
	if notes := strings.TrimSpace(req.Notes); notes != "" {
		b.WriteString(": ")
		b.WriteString(notes)
	}
	b.WriteString(" [request ")
	b.WriteString(req.ID)
	b.WriteString("]")
	return b.String()
}
