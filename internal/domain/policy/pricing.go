package policy

import (
	"errors"

	"mealchange_service/internal/domain/entities"

	"github.com/shopspring/decimal"
)

var ErrTierNotOnMenu = errors.New("tier or slot not offered on the menu")

// Quote is the deterministic pricing of a change request.
type Quote struct {
	OriginalMeal    entities.MealSnapshot
	NewMeal         entities.MealSnapshot
	PriceAdjustment decimal.Decimal
	PaymentRequired bool
	PaymentStatus   entities.PaymentStatus
}

// QuoteInput carries everything the price depends on. An empty RequestedTier
// keeps the current tier.
type QuoteInput struct {
	Menu          entities.DailyMenu
	Slot          entities.DeliverySlot
	CurrentTier   entities.PlanTier
	RequestedTier entities.PlanTier
	Addons        []entities.CustomItem
}

// ResolvePrice prices the original and requested meals from the same menu snapshot.
// Same input, same quote: it is re-run whenever add-ons change.
func ResolvePrice(in QuoteInput) (Quote, error) {
	original, ok := in.Menu.Slot(in.CurrentTier, in.Slot)
	if !ok {
		return Quote{}, ErrTierNotOnMenu
	}

	tier := in.RequestedTier
	if tier == "" {
		tier = in.CurrentTier
	}
	requested, ok := in.Menu.Slot(tier, in.Slot)
	if !ok {
		return Quote{}, ErrTierNotOnMenu
	}

	addons := make([]entities.CustomItem, 0, len(in.Addons))
	for _, a := range in.Addons {
		n, err := a.Normalize()
		if err != nil {
			return Quote{}, err
		}
		addons = append(addons, n)
	}

	req := entities.MealChangeRequest{
		OriginalMeal: entities.MealSnapshot{
			PlanTier:   in.CurrentTier,
			Items:      cloneItems(original.Items),
			BasePrice:  original.Price,
			TotalPrice: original.Price,
		},
		NewMeal: entities.MealSnapshot{
			PlanTier:    tier,
			Items:       cloneItems(requested.Items),
			BasePrice:   requested.Price,
			CustomItems: addons,
		},
	}
	req.Reprice()

	return Quote{
		OriginalMeal:    req.OriginalMeal,
		NewMeal:         req.NewMeal,
		PriceAdjustment: req.PriceAdjustment,
		PaymentRequired: req.PaymentRequired,
		PaymentStatus:   req.PaymentStatus,
	}, nil
}

// TierDeltas prices every other tier on the menu against the current one for slot.
func TierDeltas(menu entities.DailyMenu, current entities.PlanTier, slot entities.DeliverySlot) map[entities.PlanTier]decimal.Decimal {
	base, ok := menu.Slot(current, slot)
	if !ok {
		return nil
	}
	out := make(map[entities.PlanTier]decimal.Decimal)
	for _, tier := range entities.PlanTiers {
		if tier == current {
			continue
		}
		if sm, ok := menu.Slot(tier, slot); ok {
			out[tier] = sm.Price.Sub(base.Price)
		}
	}
	return out
}

func cloneItems(items []entities.MenuItem) []entities.MenuItem {
	if items == nil {
		return nil
	}
	out := make([]entities.MenuItem, len(items))
	copy(out, items)
	return out
}
