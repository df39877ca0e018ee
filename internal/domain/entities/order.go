package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	OrderItemCategoryMain  = "main"
	OrderItemCategoryAddon = "addon"
)

type OrderItem struct {
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// Order is a delivery order created by the delivery-generation pipeline.
//
// Storage model (DynamoDB):
//   - PK: id
//   - GSI (user_id-delivery_date-index): user_id, delivery_date
type Order struct {
	ID             string          `json:"id"`
	UserID         string          `json:"user_id"`
	SubscriptionID string          `json:"subscription_id"`
	DeliveryDate   string          `json:"delivery_date"`
	DeliverySlot   DeliverySlot    `json:"delivery_slot"`
	Items          []OrderItem     `json:"items"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	FinalAmount    decimal.Decimal `json:"final_amount"`
	Notes          []string        `json:"notes,omitempty"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
