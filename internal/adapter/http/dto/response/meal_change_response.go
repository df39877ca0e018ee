package response

import (
	"time"

	"mealchange_service/internal/domain/entities"
	"mealchange_service/internal/usecase"

	"github.com/shopspring/decimal"
)

type MenuItemResponse struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Category    string  `json:"category,omitempty"`
	Price       float64 `json:"price"`
}

type CustomItemResponse struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}

type MealSnapshotResponse struct {
	PlanTier    string               `json:"plan_tier"`
	Items       []MenuItemResponse   `json:"items"`
	BasePrice   float64              `json:"base_price"`
	CustomItems []CustomItemResponse `json:"custom_items"`
	TotalPrice  float64              `json:"total_price"`
}

type MealChangeResponse struct {
	ID              string               `json:"id"`
	UserID          string               `json:"user_id"`
	SubscriptionID  string               `json:"subscription_id"`
	OrderID         string               `json:"order_id,omitempty"`
	ChangeDate      string               `json:"change_date"`
	DeliverySlot    string               `json:"delivery_slot"`
	OriginalMeal    MealSnapshotResponse `json:"original_meal"`
	NewMeal         MealSnapshotResponse `json:"new_meal"`
	PriceAdjustment float64              `json:"price_adjustment"`
	Reason          string               `json:"reason"`
	Status          string               `json:"status"`
	PaymentRequired bool                 `json:"payment_required"`
	PaymentStatus   string               `json:"payment_status"`
	PaymentMethod   string               `json:"payment_method,omitempty"`
	TransactionID   string               `json:"transaction_id,omitempty"`
	RefundStatus    string               `json:"refund_status,omitempty"`
	OrderSyncStatus string               `json:"order_sync_status,omitempty"`
	CutoffTime      time.Time            `json:"cutoff_time"`
	RequestedAt     time.Time            `json:"requested_at"`
	ProcessedAt     *time.Time           `json:"processed_at,omitempty"`
	RejectionReason string               `json:"rejection_reason,omitempty"`
	Notes           string               `json:"notes,omitempty"`
}

func FromMealChangeRequest(r entities.MealChangeRequest) MealChangeResponse {
	return MealChangeResponse{
		ID:              r.ID,
		UserID:          r.UserID,
		SubscriptionID:  r.SubscriptionID,
		OrderID:         r.OrderID,
		ChangeDate:      r.ChangeDate,
		DeliverySlot:    string(r.DeliverySlot),
		OriginalMeal:    FromMealSnapshot(r.OriginalMeal),
		NewMeal:         FromMealSnapshot(r.NewMeal),
		PriceAdjustment: money(r.PriceAdjustment),
		Reason:          string(r.Reason),
		Status:          string(r.Status),
		PaymentRequired: r.PaymentRequired,
		PaymentStatus:   string(r.PaymentStatus),
		PaymentMethod:   string(r.PaymentRail),
		TransactionID:   r.TransactionID,
		RefundStatus:    string(r.RefundStatus),
		OrderSyncStatus: string(r.OrderSyncStatus),
		CutoffTime:      r.CutoffTime,
		RequestedAt:     r.RequestedAt,
		ProcessedAt:     r.ProcessedAt,
		RejectionReason: r.RejectionReason,
		Notes:           r.Notes,
	}
}

func FromMealSnapshot(m entities.MealSnapshot) MealSnapshotResponse {
	out := MealSnapshotResponse{
		PlanTier:    string(m.PlanTier),
		Items:       fromMenuItems(m.Items),
		BasePrice:   money(m.BasePrice),
		CustomItems: fromCustomItems(m.CustomItems),
		TotalPrice:  money(m.TotalPrice),
	}
	return out
}

type TierOptionResponse struct {
	PlanTier   string             `json:"plan_tier"`
	Items      []MenuItemResponse `json:"items"`
	Price      float64            `json:"price"`
	PriceDelta float64            `json:"price_delta"`
}

type ChangeOptionsResponse struct {
	Date              string               `json:"date"`
	Slot              string               `json:"slot"`
	CurrentMeal       MealSnapshotResponse `json:"current_meal"`
	Upgrades          []TierOptionResponse `json:"upgrades"`
	Downgrades        []TierOptionResponse `json:"downgrades"`
	Addons            []CustomItemResponse `json:"addons"`
	CutoffTime        time.Time            `json:"cutoff_time"`
	CanChange         bool                 `json:"can_change"`
	ExistingRequestID string               `json:"existing_request_id,omitempty"`
	WalletBalance     float64              `json:"wallet_balance"`
}

func FromChangeOptions(o usecase.ChangeOptions) ChangeOptionsResponse {
	return ChangeOptionsResponse{
		Date:              o.Date,
		Slot:              string(o.Slot),
		CurrentMeal:       FromMealSnapshot(o.CurrentMeal),
		Upgrades:          fromTierOptions(o.Upgrades),
		Downgrades:        fromTierOptions(o.Downgrades),
		Addons:            fromCustomItems(o.Addons),
		CutoffTime:        o.CutoffTime,
		CanChange:         o.CanChange,
		ExistingRequestID: o.ExistingRequestID,
		WalletBalance:     money(o.WalletBalance),
	}
}

type PaginationResponse struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

type HistoryResponse struct {
	Items      []MealChangeResponse `json:"items"`
	Pagination PaginationResponse   `json:"pagination"`
}

func FromHistoryPage(p usecase.HistoryPage) HistoryResponse {
	items := make([]MealChangeResponse, 0, len(p.Items))
	for _, r := range p.Items {
		items = append(items, FromMealChangeRequest(r))
	}
	return HistoryResponse{
		Items: items,
		Pagination: PaginationResponse{
			Page:       p.Page,
			Limit:      p.Limit,
			Total:      p.Total,
			TotalPages: p.TotalPages,
		},
	}
}

func fromTierOptions(opts []usecase.TierOption) []TierOptionResponse {
	out := make([]TierOptionResponse, 0, len(opts))
	for _, o := range opts {
		out = append(out, TierOptionResponse{
			PlanTier:   string(o.Tier),
			Items:      fromMenuItems(o.Items),
			Price:      money(o.Price),
			PriceDelta: money(o.PriceDelta),
		})
	}
	return out
}

func fromMenuItems(items []entities.MenuItem) []MenuItemResponse {
	out := make([]MenuItemResponse, 0, len(items))
	for _, i := range items {
		out = append(out, MenuItemResponse{Name: i.Name, Description: i.Description, Category: i.Category, Price: money(i.Price)})
	}
	return out
}

func fromCustomItems(items []entities.CustomItem) []CustomItemResponse {
	out := make([]CustomItemResponse, 0, len(items))
	for _, i := range items {
		out = append(out, CustomItemResponse{Name: i.Name, Description: i.Description, Price: money(i.Price), Quantity: i.Quantity})
	}
	return out
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
