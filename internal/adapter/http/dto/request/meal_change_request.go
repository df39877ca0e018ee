package request

import (
	"strings"

	"mealchange_service/internal/domain/entities"

	"github.com/shopspring/decimal"
)

// AddonRequest is one extra attached to a meal change.
type AddonRequest struct {
	Name        string          `json:"name" binding:"required,max=80"`
	Description string          `json:"description" binding:"max=200"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity" binding:"omitempty,min=1,max=10"`
}

func (r AddonRequest) ToCustomItem() entities.CustomItem {
	return entities.CustomItem{
		Name:        strings.TrimSpace(r.Name),
		Description: strings.TrimSpace(r.Description),
		Price:       r.Price,
		Quantity:    r.Quantity,
	}
}

// MealChangeCreateRequest opens a change for one date and slot.
//
// `new_tier` may be omitted to keep the subscribed tier and only add extras;
// `reason` is derived from the price delta when omitted.
type MealChangeCreateRequest struct {
	Date        string         `json:"date" binding:"required,datetime=2006-01-02"`
	Slot        string         `json:"slot" binding:"required,oneof=lunch dinner"`
	NewTier     string         `json:"new_tier" binding:"omitempty,oneof=low basic premium"`
	CustomItems []AddonRequest `json:"custom_items" binding:"omitempty,max=10,dive"`
	Reason      string         `json:"reason" binding:"omitempty,oneof=upgrade downgrade dietary_preference custom_request other"`
	Notes       string         `json:"notes" binding:"max=500"`
}

func (r MealChangeCreateRequest) ResolveCustomItems() []entities.CustomItem {
	if len(r.CustomItems) == 0 {
		return nil
	}
	items := make([]entities.CustomItem, 0, len(r.CustomItems))
	for _, a := range r.CustomItems {
		items = append(items, a.ToCustomItem())
	}
	return items
}

// OptionsQuery is bound from the query string of the options route.
type OptionsQuery struct {
	Date string `form:"date" binding:"required,datetime=2006-01-02"`
	Slot string `form:"slot" binding:"required,oneof=lunch dinner"`
}

// HistoryQuery is bound from the query string of the history route.
type HistoryQuery struct {
	Page   int    `form:"page" binding:"omitempty,min=1"`
	Limit  int    `form:"limit" binding:"omitempty,min=1"`
	Status string `form:"status"`
}
