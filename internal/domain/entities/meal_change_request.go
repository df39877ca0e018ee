package entities

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrRequestNotPending  = errors.New("meal change request is not pending")
	ErrInvalidTransition  = errors.New("invalid meal change status transition")
	ErrPaidWithoutTxn     = errors.New("paid settlement requires a transaction id")
	ErrInvalidAddon       = errors.New("invalid add-on")
	ErrInvalidAddonAmount = errors.New("add-on price must be >= 0 and quantity >= 1")
)

// RequestStatus is the lifecycle state of a meal change request.
//
//   - pending  -> approved (settlement succeeded or nothing to pay)
//   - pending  -> rejected (cancelled by the subscriber)
//   - pending  -> expired  (cutoff passed, moved by the sweeper or store TTL)
//
// approved, rejected and expired are terminal.
type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusApproved RequestStatus = "approved"
	RequestStatusRejected RequestStatus = "rejected"
	RequestStatusExpired  RequestStatus = "expired"
)

func (s RequestStatus) IsTerminal() bool {
	return s == RequestStatusApproved || s == RequestStatusRejected || s == RequestStatusExpired
}

// Active statuses hold the (user, date, slot) tuple.
func (s RequestStatus) IsActive() bool {
	return s == RequestStatusPending || s == RequestStatusApproved
}

func ParseRequestStatus(v string) (RequestStatus, bool) {
	switch s := RequestStatus(strings.ToLower(strings.TrimSpace(v))); s {
	case RequestStatusPending, RequestStatusApproved, RequestStatusRejected, RequestStatusExpired:
		return s, true
	}
	return "", false
}

type PaymentStatus string

const (
	PaymentStatusNotRequired PaymentStatus = "not_required"
	PaymentStatusPending     PaymentStatus = "pending"
	PaymentStatusPaid        PaymentStatus = "paid"
	PaymentStatusFailed      PaymentStatus = "failed"
)

type ChangeReason string

const (
	ReasonUpgrade           ChangeReason = "upgrade"
	ReasonDowngrade         ChangeReason = "downgrade"
	ReasonDietaryPreference ChangeReason = "dietary_preference"
	ReasonCustomRequest     ChangeReason = "custom_request"
	ReasonOther             ChangeReason = "other"
)

func ParseChangeReason(v string) (ChangeReason, bool) {
	switch r := ChangeReason(strings.ToLower(strings.TrimSpace(v))); r {
	case ReasonUpgrade, ReasonDowngrade, ReasonDietaryPreference, ReasonCustomRequest, ReasonOther:
		return r, true
	}
	return "", false
}

// RailKind records which payment rail captured the adjustment.
type RailKind string

const (
	RailWallet  RailKind = "wallet"
	RailGateway RailKind = "gateway"
)

type RefundStatus string

const (
	RefundStatusNone         RefundStatus = ""
	RefundStatusRefunded     RefundStatus = "refunded"
	RefundStatusManualReview RefundStatus = "manual_review"
)

type OrderSyncStatus string

const (
	OrderSyncPending OrderSyncStatus = ""
	OrderSyncSynced  OrderSyncStatus = "synced"
	OrderSyncNoOrder OrderSyncStatus = "no_order"
	OrderSyncFailed  OrderSyncStatus = "failed"
)

// CustomItem is an add-on attached to the requested meal.
type CustomItem struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
}

// LineTotal is price x quantity, with a missing quantity counted as 1.
func (c CustomItem) LineTotal() decimal.Decimal {
	return c.Price.Mul(decimal.NewFromInt(int64(c.normalizedQuantity())))
}

func (c CustomItem) normalizedQuantity() int {
	if c.Quantity <= 0 {
		return 1
	}
	return c.Quantity
}

// Normalize trims the name and defaults the quantity to 1.
func (c CustomItem) Normalize() (CustomItem, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return CustomItem{}, ErrInvalidAddon
	}
	if c.Quantity < 0 || c.Price.IsNegative() {
		return CustomItem{}, ErrInvalidAddonAmount
	}
	c.Quantity = c.normalizedQuantity()
	return c, nil
}

// MealSnapshot is the priced content of a meal at a point in time.
//
// BasePrice is the per-slot price of PlanTier as quoted by the daily menu.
// TotalPrice is always BasePrice plus the line totals of CustomItems.
type MealSnapshot struct {
	PlanTier    PlanTier        `json:"plan_tier"`
	Items       []MenuItem      `json:"items"`
	BasePrice   decimal.Decimal `json:"base_price"`
	CustomItems []CustomItem    `json:"custom_items,omitempty"`
	TotalPrice  decimal.Decimal `json:"total_price"`
}

// ComputeTotal recomputes the total from scratch.
func (m MealSnapshot) ComputeTotal() decimal.Decimal {
	total := m.BasePrice
	for _, c := range m.CustomItems {
		total = total.Add(c.LineTotal())
	}
	return total
}

// MealChangeRequest is the aggregate root of the meal change workflow.
type MealChangeRequest struct {
	ID             string       `json:"id"`
	UserID         string       `json:"user_id"`
	SubscriptionID string       `json:"subscription_id"`
	OrderID        string       `json:"order_id,omitempty"`
	ChangeDate     string       `json:"change_date"`
	DeliverySlot   DeliverySlot `json:"delivery_slot"`

	OriginalMeal MealSnapshot `json:"original_meal"`
	NewMeal      MealSnapshot `json:"new_meal"`

	PriceAdjustment decimal.Decimal `json:"price_adjustment"`
	Reason          ChangeReason    `json:"reason"`
	Status          RequestStatus   `json:"status"`

	PaymentRequired bool            `json:"payment_required"`
	PaymentStatus   PaymentStatus   `json:"payment_status"`
	PaymentRail     RailKind        `json:"payment_rail,omitempty"`
	TransactionID   string          `json:"transaction_id,omitempty"`
	RefundStatus    RefundStatus    `json:"refund_status,omitempty"`
	OrderSyncStatus OrderSyncStatus `json:"order_sync_status,omitempty"`

	CutoffTime      time.Time  `json:"cutoff_time"`
	RequestedAt     time.Time  `json:"requested_at"`
	ProcessedAt     *time.Time `json:"processed_at,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	Notes           string     `json:"notes,omitempty"`

	// Version is bumped on every persisted write and used for compare-and-swap.
	Version int64 `json:"version"`
}

// SlotKey identifies the (user, date, slot) tuple guarded by the uniqueness invariant.
func (r MealChangeRequest) SlotKey() string {
	return SlotKey(r.UserID, r.ChangeDate, r.DeliverySlot)
}

func SlotKey(userID, changeDate string, slot DeliverySlot) string {
	return userID + "#" + changeDate + "#" + string(slot)
}

// Reprice re-derives the adjustment and payment flags from the two snapshots.
// A negative adjustment never creates a refund obligation.
func (r *MealChangeRequest) Reprice() {
	r.NewMeal.TotalPrice = r.NewMeal.ComputeTotal()
	r.PriceAdjustment = r.NewMeal.TotalPrice.Sub(r.OriginalMeal.TotalPrice)
	r.PaymentRequired = r.PriceAdjustment.IsPositive()
	if r.PaymentStatus == PaymentStatusPaid {
		return
	}
	if r.PaymentRequired {
		r.PaymentStatus = PaymentStatusPending
	} else {
		r.PaymentStatus = PaymentStatusNotRequired
	}
}

// AddAddon appends an add-on to the requested meal.
func (r *MealChangeRequest) AddAddon(item CustomItem) error {
	if r.Status != RequestStatusPending {
		return ErrRequestNotPending
	}
	item, err := item.Normalize()
	if err != nil {
		return err
	}
	r.NewMeal.CustomItems = append(r.NewMeal.CustomItems, item)
	r.Reprice()
	return nil
}

// RemoveAddon drops every add-on named name and recomputes the totals.
// Removing a name that is not present leaves the request unchanged.
func (r *MealChangeRequest) RemoveAddon(name string) error {
	if r.Status != RequestStatusPending {
		return ErrRequestNotPending
	}
	name = strings.TrimSpace(name)
	kept := r.NewMeal.CustomItems[:0:0]
	for _, c := range r.NewMeal.CustomItems {
		if !strings.EqualFold(c.Name, name) {
			kept = append(kept, c)
		}
	}
	r.NewMeal.CustomItems = kept
	r.Reprice()
	return nil
}

// MarkPaid records a captured settlement. It does not change Status.
func (r *MealChangeRequest) MarkPaid(rail RailKind, transactionID string) error {
	if r.Status != RequestStatusPending {
		return ErrRequestNotPending
	}
	if strings.TrimSpace(transactionID) == "" {
		return ErrPaidWithoutTxn
	}
	r.PaymentStatus = PaymentStatusPaid
	r.PaymentRail = rail
	r.TransactionID = transactionID
	return nil
}

// Approve moves a pending request to approved.
func (r *MealChangeRequest) Approve(now time.Time) error {
	if r.Status != RequestStatusPending {
		return ErrInvalidTransition
	}
	if r.PaymentRequired && r.PaymentStatus != PaymentStatusPaid {
		return ErrInvalidTransition
	}
	r.Status = RequestStatusApproved
	r.ProcessedAt = &now
	return nil
}

// Reject moves a pending request to rejected.
func (r *MealChangeRequest) Reject(now time.Time, reason string) error {
	if r.Status != RequestStatusPending {
		return ErrInvalidTransition
	}
	r.Status = RequestStatusRejected
	r.RejectionReason = reason
	r.ProcessedAt = &now
	return nil
}

// Expire moves a pending request whose cutoff has passed to expired.
func (r *MealChangeRequest) Expire(now time.Time) error {
	if r.Status != RequestStatusPending || now.Before(r.CutoffTime) {
		return ErrInvalidTransition
	}
	r.Status = RequestStatusExpired
	r.RejectionReason = "cutoff passed"
	r.ProcessedAt = &now
	return nil
}
