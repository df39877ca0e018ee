package entities

import "time"

type SubscriptionStatus string

const (
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusPaused    SubscriptionStatus = "paused"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
)

// Subscription is the read model of a subscriber's plan, owned by the
// subscription-billing system.
//
// Storage model (DynamoDB):
//   - PK: id
//   - GSI (user_id-index): user_id
type Subscription struct {
	ID        string             `json:"id"`
	UserID    string             `json:"user_id"`
	Tier      PlanTier           `json:"tier"`
	Status    SubscriptionStatus `json:"status"`
	StartDate string             `json:"start_date"`
	EndDate   string             `json:"end_date"`
	CreatedAt time.Time          `json:"created_at"`
}

// CoversDate reports whether the subscription is active on date (YYYY-MM-DD).
// An empty EndDate means open ended.
func (s Subscription) CoversDate(date string) bool {
	if s.Status != SubscriptionStatusActive {
		return false
	}
	if s.StartDate != "" && date < s.StartDate {
		return false
	}
	if s.EndDate != "" && date > s.EndDate {
		return false
	}
	return true
}
