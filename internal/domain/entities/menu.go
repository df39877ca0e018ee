package entities

import (
	"strings"

	"github.com/shopspring/decimal"
)

// PlanTier selects the base meal of a subscription.
type PlanTier string

const (
	PlanTierLow     PlanTier = "low"
	PlanTierBasic   PlanTier = "basic"
	PlanTierPremium PlanTier = "premium"
)

// PlanTiers lists the tiers in ascending order.
var PlanTiers = []PlanTier{PlanTierLow, PlanTierBasic, PlanTierPremium}

func ParsePlanTier(v string) (PlanTier, bool) {
	switch t := PlanTier(strings.ToLower(strings.TrimSpace(v))); t {
	case PlanTierLow, PlanTierBasic, PlanTierPremium:
		return t, true
	}
	return "", false
}

type DeliverySlot string

const (
	SlotLunch  DeliverySlot = "lunch"
	SlotDinner DeliverySlot = "dinner"
)

func ParseDeliverySlot(v string) (DeliverySlot, bool) {
	switch s := DeliverySlot(strings.ToLower(strings.TrimSpace(v))); s {
	case SlotLunch, SlotDinner:
		return s, true
	}
	return "", false
}

type MenuItem struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category,omitempty"`
	Price       decimal.Decimal `json:"price"`
}

// SlotMenu is the meal served for one tier in one slot, with its quoted price.
type SlotMenu struct {
	Items []MenuItem      `json:"items"`
	Price decimal.Decimal `json:"price"`
}

// DailyMenu is the menu for a calendar date keyed by tier and slot.
//
// Storage model (DynamoDB):
//   - PK: date (YYYY-MM-DD)
type DailyMenu struct {
	Date  string                                `json:"date"`
	Tiers map[PlanTier]map[DeliverySlot]SlotMenu `json:"tiers"`
}

// Slot returns the meal for tier/slot, if the menu offers it.
func (m DailyMenu) Slot(tier PlanTier, slot DeliverySlot) (SlotMenu, bool) {
	slots, ok := m.Tiers[tier]
	if !ok {
		return SlotMenu{}, false
	}
	sm, ok := slots[slot]
	return sm, ok
}
