package usecase

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"mealchange_service/internal/domain/entities"
	"mealchange_service/internal/domain/policy"
	"mealchange_service/internal/usecase/interfaces"
	"mealchange_service/pkg/logger"
	"mealchange_service/pkg/metrics"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	defaultHistoryLimit = 10
	maxHistoryLimit     = 50
	cancelledByUser     = "Cancelled by user"
)

// IMealChangeUseCase exposes the meal change workflow.
//
//   - ListOptions / CreateRequest open a request before the cutoff
//   - AddAddon / RemoveAddon edit a pending request
//   - SettlePayment / ConfirmGatewayPayment approve it
//   - Cancel rejects it, ExpireStale expires it
type IMealChangeUseCase interface {
	ListOptions(ctx context.Context, userID, date, slot string) (ChangeOptions, error)
	CreateRequest(ctx context.Context, userID string, in CreateRequestInput) (entities.MealChangeRequest, error)
	GetByID(ctx context.Context, userID, id string) (entities.MealChangeRequest, error)
	History(ctx context.Context, userID string, q HistoryQuery) (HistoryPage, error)
	AddAddon(ctx context.Context, userID, id string, addon entities.CustomItem) (entities.MealChangeRequest, error)
	RemoveAddon(ctx context.Context, userID, id, name string) (entities.MealChangeRequest, error)
	SettlePayment(ctx context.Context, userID, id string, rail PaymentRail) (entities.MealChangeRequest, error)
	ConfirmGatewayPayment(ctx context.Context, transactionID string) (entities.MealChangeRequest, error)
	Cancel(ctx context.Context, userID, id string) (entities.MealChangeRequest, error)
	ExpireStale(ctx context.Context) (int, error)
}

// Dependencies are the collaborators of MealChangeUseCase. Gateway, Orders and
// Notifier are optional.
type Dependencies struct {
	Requests      interfaces.IMealChangeRepository
	Menus         interfaces.IMenuRepository
	Subscriptions interfaces.ISubscriptionRepository
	Wallet        interfaces.IWalletRepository
	Gateway       interfaces.IPaymentGateway
	Orders        interfaces.IOrderRepository
	Notifier      interfaces.INotifier
	Clock         policy.Clock
	Cutoff        policy.Cutoff
	Logger        logger.Logger
	Metrics       *metrics.Metrics
}

type Options struct {
	Currency         string
	PaymentTimeout   time.Duration
	OrderSyncTimeout time.Duration
	SweepBatchSize   int
	AddonCatalog     []entities.CustomItem
}

// DefaultAddonCatalog is the fixed list of extras offered with every meal.
var DefaultAddonCatalog = []entities.CustomItem{
	{Name: "Extra Roti", Description: "One whole wheat roti", Price: decimal.NewFromInt(10), Quantity: 1},
	{Name: "Extra Rice", Description: "One bowl steamed rice", Price: decimal.NewFromInt(15), Quantity: 1},
	{Name: "Raita", Description: "Cucumber raita", Price: decimal.NewFromInt(15), Quantity: 1},
	{Name: "Green Salad", Description: "Seasonal salad", Price: decimal.NewFromInt(20), Quantity: 1},
	{Name: "Sweet of the Day", Description: "Dessert", Price: decimal.NewFromInt(25), Quantity: 1},
}

func DefaultOptions() Options {
	return Options{
		Currency:         "INR",
		PaymentTimeout:   15 * time.Second,
		OrderSyncTimeout: 5 * time.Second,
		SweepBatchSize:   100,
		AddonCatalog:     DefaultAddonCatalog,
	}
}

type MealChangeUseCase struct {
	requests interfaces.IMealChangeRepository
	menus    interfaces.IMenuRepository
	subs     interfaces.ISubscriptionRepository
	wallet   interfaces.IWalletRepository
	gateway  interfaces.IPaymentGateway
	orders   interfaces.IOrderRepository
	notifier interfaces.INotifier
	clock    policy.Clock
	cutoff   policy.Cutoff
	log      logger.Logger
	metrics  *metrics.Metrics
	opts     Options
	locks    *keyedMutex
}

var _ IMealChangeUseCase = (*MealChangeUseCase)(nil)

func NewMealChangeUseCase(deps Dependencies, opts Options) *MealChangeUseCase {
	def := DefaultOptions()
	if opts.Currency == "" {
		opts.Currency = def.Currency
	}
	if opts.PaymentTimeout <= 0 {
		opts.PaymentTimeout = def.PaymentTimeout
	}
	if opts.OrderSyncTimeout <= 0 {
		opts.OrderSyncTimeout = def.OrderSyncTimeout
	}
	if opts.SweepBatchSize <= 0 {
		opts.SweepBatchSize = def.SweepBatchSize
	}
	if opts.AddonCatalog == nil {
		opts.AddonCatalog = def.AddonCatalog
	}
	if deps.Clock == nil {
		deps.Clock = policy.SystemClock{}
	}
	if deps.Cutoff.Location == nil {
		deps.Cutoff = policy.NewCutoff(time.Local)
	}
	if deps.Logger == nil {
		deps.Logger = logger.NewNop()
	}

	return &MealChangeUseCase{
		requests: deps.Requests,
		menus:    deps.Menus,
		subs:     deps.Subscriptions,
		wallet:   deps.Wallet,
		gateway:  deps.Gateway,
		orders:   deps.Orders,
		notifier: deps.Notifier,
		clock:    deps.Clock,
		cutoff:   deps.Cutoff,
		log:      deps.Logger,
		metrics:  deps.Metrics,
		opts:     opts,
		locks:    newKeyedMutex(),
	}
}

// TierOption is an alternative tier with its signed price delta.
type TierOption struct {
	Tier       entities.PlanTier
	Items      []entities.MenuItem
	Price      decimal.Decimal
	PriceDelta decimal.Decimal
}

// ChangeOptions is everything a subscriber needs to decide on a change.
type ChangeOptions struct {
	Date              string
	Slot              entities.DeliverySlot
	CurrentMeal       entities.MealSnapshot
	Upgrades          []TierOption
	Downgrades        []TierOption
	Addons            []entities.CustomItem
	CutoffTime        time.Time
	CanChange         bool
	ExistingRequestID string
	WalletBalance     decimal.Decimal
}

func (u *MealChangeUseCase) ListOptions(ctx context.Context, userID, date, slot string) (ChangeOptions, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ChangeOptions{}, ErrInvalidUserID
	}
	day, deliverySlot, err := u.parseDateSlot(date, slot)
	if err != nil {
		return ChangeOptions{}, err
	}
	if err := u.cutoff.Check(day, u.clock.Now()); err != nil {
		return ChangeOptions{}, err
	}
	changeDate := day.Format(policy.DateLayout)

	sub, menu, err := u.loadSubscriptionAndMenu(ctx, userID, changeDate)
	if err != nil {
		return ChangeOptions{}, err
	}
	current, ok := menu.Slot(sub.Tier, deliverySlot)
	if !ok {
		return ChangeOptions{}, ErrNoMenu
	}

	opts := ChangeOptions{
		Date: changeDate,
		Slot: deliverySlot,
		CurrentMeal: entities.MealSnapshot{
			PlanTier:   sub.Tier,
			Items:      current.Items,
			BasePrice:  current.Price,
			TotalPrice: current.Price,
		},
		Addons:     append([]entities.CustomItem(nil), u.opts.AddonCatalog...),
		CutoffTime: u.cutoff.CutoffFor(day),
		CanChange:  true,
	}
	for tier, delta := range policy.TierDeltas(menu, sub.Tier, deliverySlot) {
		sm, _ := menu.Slot(tier, deliverySlot)
		opt := TierOption{Tier: tier, Items: sm.Items, Price: sm.Price, PriceDelta: delta}
		if delta.IsNegative() {
			opts.Downgrades = append(opts.Downgrades, opt)
		} else {
			opts.Upgrades = append(opts.Upgrades, opt)
		}
	}
	sortTierOptions(opts.Upgrades)
	sortTierOptions(opts.Downgrades)

	existing, err := u.requests.GetActiveBySlot(ctx, userID, changeDate, deliverySlot)
	if err != nil {
		return ChangeOptions{}, err
	}
	if existing.ID != "" {
		opts.CanChange = false
		opts.ExistingRequestID = existing.ID
	}

	if u.wallet != nil {
		balance, err := u.wallet.GetBalance(ctx, userID)
		if err != nil {
			u.log.Warn("[meal-change][usecase] wallet balance unavailable", "user_id", userID, "err", err)
		} else {
			opts.WalletBalance = balance
		}
	}
	return opts, nil
}

// CreateRequestInput is the validated payload of a new change request.
// An empty NewTier keeps the subscribed tier; an empty Reason is derived.
type CreateRequestInput struct {
	Date        string
	Slot        string
	NewTier     string
	CustomItems []entities.CustomItem
	Reason      string
	Notes       string
}

func (u *MealChangeUseCase) CreateRequest(ctx context.Context, userID string, in CreateRequestInput) (entities.MealChangeRequest, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return entities.MealChangeRequest{}, ErrInvalidUserID
	}
	u.log.Info("[meal-change][usecase] create start", "user_id", userID, "date", in.Date, "slot", in.Slot)

	day, slot, err := u.parseDateSlot(in.Date, in.Slot)
	if err != nil {
		return entities.MealChangeRequest{}, err
	}
	var requestedTier entities.PlanTier
	if strings.TrimSpace(in.NewTier) != "" {
		t, ok := entities.ParsePlanTier(in.NewTier)
		if !ok {
			return entities.MealChangeRequest{}, ErrInvalidTier
		}
		requestedTier = t
	}
	var reason entities.ChangeReason
	if strings.TrimSpace(in.Reason) != "" {
		r, ok := entities.ParseChangeReason(in.Reason)
		if !ok {
			return entities.MealChangeRequest{}, ErrInvalidReason
		}
		reason = r
	}

	now := u.clock.Now()
	if err := u.cutoff.Check(day, now); err != nil {
		u.log.Info("[meal-change][usecase] create rejected by cutoff", "user_id", userID, "date", in.Date, "err", err)
		return entities.MealChangeRequest{}, err
	}
	changeDate := day.Format(policy.DateLayout)

	sub, menu, err := u.loadSubscriptionAndMenu(ctx, userID, changeDate)
	if err != nil {
		return entities.MealChangeRequest{}, err
	}

	existing, err := u.requests.GetActiveBySlot(ctx, userID, changeDate, slot)
	if err != nil {
		return entities.MealChangeRequest{}, err
	}
	if existing.ID != "" {
		return entities.MealChangeRequest{}, ErrDuplicateRequest
	}

	quote, err := policy.ResolvePrice(policy.QuoteInput{
		Menu:          menu,
		Slot:          slot,
		CurrentTier:   sub.Tier,
		RequestedTier: requestedTier,
		Addons:        in.CustomItems,
	})
	switch {
	case errors.Is(err, policy.ErrTierNotOnMenu):
		return entities.MealChangeRequest{}, ErrNoMenu
	case errors.Is(err, entities.ErrInvalidAddon), errors.Is(err, entities.ErrInvalidAddonAmount):
		return entities.MealChangeRequest{}, ErrInvalidAddon
	case err != nil:
		return entities.MealChangeRequest{}, err
	}
	notes := strings.TrimSpace(in.Notes)
	sameMeal := quote.NewMeal.PlanTier == quote.OriginalMeal.PlanTier && len(quote.NewMeal.CustomItems) == 0
	if sameMeal && reason == "" && notes == "" {
		return entities.MealChangeRequest{}, ErrNothingToChange
	}
	if reason == "" {
		reason = deriveReason(quote)
	}

	req := entities.MealChangeRequest{
		ID:              uuid.NewString(),
		UserID:          userID,
		SubscriptionID:  sub.ID,
		ChangeDate:      changeDate,
		DeliverySlot:    slot,
		OriginalMeal:    quote.OriginalMeal,
		NewMeal:         quote.NewMeal,
		PriceAdjustment: quote.PriceAdjustment,
		Reason:          reason,
		Status:          entities.RequestStatusPending,
		PaymentRequired: quote.PaymentRequired,
		PaymentStatus:   quote.PaymentStatus,
		CutoffTime:      u.cutoff.CutoffFor(day),
		RequestedAt:     now.UTC(),
		Notes:           notes,
	}

	created, err := u.requests.Create(ctx, req)
	if err != nil {
		if errors.Is(err, interfaces.ErrSlotTaken) {
			return entities.MealChangeRequest{}, ErrDuplicateRequest
		}
		u.log.Error("[meal-change][usecase] create failed", "user_id", userID, "err", err)
		u.metrics.Failed("create")
		return entities.MealChangeRequest{}, err
	}
	u.metrics.RequestCreated()
	u.log.Info("[meal-change][usecase] create success", "request_id", created.ID, "adjustment", created.PriceAdjustment.String(), "payment_required", created.PaymentRequired)

	u.emit(ctx, created, "Meal change requested",
		"Your meal change for "+created.ChangeDate+" ("+string(created.DeliverySlot)+") was received.",
		entities.NotificationInfo)
	return created, nil
}

func (u *MealChangeUseCase) GetByID(ctx context.Context, userID, id string) (entities.MealChangeRequest, error) {
	req, err := u.loadOwned(ctx, userID, id)
	if err != nil {
		return entities.MealChangeRequest{}, err
	}
	return u.effective(req), nil
}

type HistoryQuery struct {
	Page   int
	Limit  int
	Status string
}

type HistoryPage struct {
	Items      []entities.MealChangeRequest
	Page       int
	Limit      int
	Total      int
	TotalPages int
}

func (u *MealChangeUseCase) History(ctx context.Context, userID string, q HistoryQuery) (HistoryPage, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return HistoryPage{}, ErrInvalidUserID
	}
	var status entities.RequestStatus
	if strings.TrimSpace(q.Status) != "" {
		s, ok := entities.ParseRequestStatus(q.Status)
		if !ok {
			return HistoryPage{}, ErrInvalidStatus
		}
		status = s
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Limit <= 0 {
		q.Limit = defaultHistoryLimit
	}
	if q.Limit > maxHistoryLimit {
		q.Limit = maxHistoryLimit
	}

	all, err := u.requests.ListByUser(ctx, userID, status)
	if err != nil {
		return HistoryPage{}, err
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].RequestedAt.After(all[j].RequestedAt) })

	page := HistoryPage{Page: q.Page, Limit: q.Limit, Total: len(all)}
	page.TotalPages = (page.Total + q.Limit - 1) / q.Limit
	start := (q.Page - 1) * q.Limit
	if start < len(all) {
		end := start + q.Limit
		if end > len(all) {
			end = len(all)
		}
		for _, r := range all[start:end] {
			page.Items = append(page.Items, u.effective(r))
		}
	}
	return page, nil
}

func (u *MealChangeUseCase) AddAddon(ctx context.Context, userID, id string, addon entities.CustomItem) (entities.MealChangeRequest, error) {
	return u.mutatePending(ctx, userID, id, "add-addon", func(req *entities.MealChangeRequest) error {
		return req.AddAddon(addon)
	})
}

func (u *MealChangeUseCase) RemoveAddon(ctx context.Context, userID, id, name string) (entities.MealChangeRequest, error) {
	if strings.TrimSpace(name) == "" {
		return entities.MealChangeRequest{}, ErrInvalidAddon
	}
	return u.mutatePending(ctx, userID, id, "remove-addon", func(req *entities.MealChangeRequest) error {
		return req.RemoveAddon(name)
	})
}

// mutatePending applies fn to a pending, still actionable request and
// persists the result with a version check.
func (u *MealChangeUseCase) mutatePending(ctx context.Context, userID, id, op string, fn func(*entities.MealChangeRequest) error) (entities.MealChangeRequest, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.MealChangeRequest{}, ErrInvalidRequestID
	}
	unlock := u.locks.Lock(id)
	defer unlock()

	req, err := u.loadOwned(ctx, userID, id)
	if err != nil {
		return entities.MealChangeRequest{}, err
	}
	if req.Status != entities.RequestStatusPending {
		return entities.MealChangeRequest{}, ErrNotPending
	}
	if policy.Passed(req.CutoffTime, u.clock.Now()) {
		return entities.MealChangeRequest{}, ErrCutoffPassed
	}
	if req.PaymentStatus == entities.PaymentStatusPaid {
		return entities.MealChangeRequest{}, ErrAlreadyPaid
	}

	expected := req.Version
	if err := fn(&req); err != nil {
		switch {
		case errors.Is(err, entities.ErrRequestNotPending):
			return entities.MealChangeRequest{}, ErrNotPending
		case errors.Is(err, entities.ErrInvalidAddon), errors.Is(err, entities.ErrInvalidAddonAmount):
			return entities.MealChangeRequest{}, ErrInvalidAddon
		}
		return entities.MealChangeRequest{}, err
	}

	updated, err := u.requests.Update(ctx, req, expected)
	if err != nil {
		return entities.MealChangeRequest{}, u.mapWriteError(op, id, err)
	}
	u.log.Info("[meal-change][usecase] "+op+" success", "request_id", id, "total", updated.NewMeal.TotalPrice.String(), "adjustment", updated.PriceAdjustment.String())
	return updated, nil
}

func (u *MealChangeUseCase) Cancel(ctx context.Context, userID, id string) (entities.MealChangeRequest, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.MealChangeRequest{}, ErrInvalidRequestID
	}
	unlock := u.locks.Lock(id)
	defer unlock()

	req, err := u.loadOwned(ctx, userID, id)
	if err != nil {
		return entities.MealChangeRequest{}, err
	}
	if req.Status != entities.RequestStatusPending {
		return entities.MealChangeRequest{}, ErrNotCancellable
	}
	now := u.clock.Now()
	if policy.Passed(req.CutoffTime, now) {
		return entities.MealChangeRequest{}, ErrCutoffPassed
	}

	expected := req.Version
	wasPaid := req.PaymentStatus == entities.PaymentStatusPaid
	if wasPaid {
		req.RefundStatus = refundStatusFor(req.PaymentRail)
	}
	if err := req.Reject(now.UTC(), cancelledByUser); err != nil {
		return entities.MealChangeRequest{}, ErrNotCancellable
	}

	// The rejection is written before any money moves back, so a failed
	// write can never leave a refunded request cancellable a second time.
	updated, err := u.requests.Update(ctx, req, expected)
	if err != nil {
		return entities.MealChangeRequest{}, u.mapWriteError("cancel", id, err)
	}

	refund := "none"
	if wasPaid {
		updated, refund = u.reverse(ctx, updated)
	}
	u.metrics.Cancelled(refund)
	u.log.Info("[meal-change][usecase] cancel success", "request_id", id, "refund", refund)

	u.emit(ctx, updated, "Meal change cancelled",
		"Your meal change for "+updated.ChangeDate+" ("+string(updated.DeliverySlot)+") was cancelled.",
		entities.NotificationInfo)
	return updated, nil
}

func refundStatusFor(rail entities.RailKind) entities.RefundStatus {
	if rail == entities.RailWallet {
		return entities.RefundStatusRefunded
	}
	return entities.RefundStatusManualReview
}

func (u *MealChangeUseCase) parseDateSlot(date, slot string) (time.Time, entities.DeliverySlot, error) {
	day, err := u.cutoff.ParseDate(date)
	if err != nil {
		return time.Time{}, "", ErrInvalidDate
	}
	s, ok := entities.ParseDeliverySlot(slot)
	if !ok {
		return time.Time{}, "", ErrInvalidSlot
	}
	return day, s, nil
}

func (u *MealChangeUseCase) loadSubscriptionAndMenu(ctx context.Context, userID, changeDate string) (entities.Subscription, entities.DailyMenu, error) {
	sub, err := u.subs.GetActiveSubscription(ctx, userID, changeDate)
	if err != nil {
		return entities.Subscription{}, entities.DailyMenu{}, err
	}
	if sub.ID == "" {
		return entities.Subscription{}, entities.DailyMenu{}, ErrNoSubscription
	}
	menu, err := u.menus.GetDailyMenu(ctx, changeDate)
	if err != nil {
		return entities.Subscription{}, entities.DailyMenu{}, err
	}
	if menu.Date == "" {
		return entities.Subscription{}, entities.DailyMenu{}, ErrNoMenu
	}
	return sub, menu, nil
}

func (u *MealChangeUseCase) loadOwned(ctx context.Context, userID, id string) (entities.MealChangeRequest, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.MealChangeRequest{}, ErrInvalidRequestID
	}
	req, err := u.requests.GetByID(ctx, id)
	if err != nil {
		return entities.MealChangeRequest{}, err
	}
	if req.ID == "" {
		return entities.MealChangeRequest{}, ErrRequestNotFound
	}
	if req.UserID != strings.TrimSpace(userID) {
		return entities.MealChangeRequest{}, ErrForbidden
	}
	return req, nil
}

// effective reports a pending request past its cutoff as expired even if the
// sweeper has not reached it yet.
func (u *MealChangeUseCase) effective(req entities.MealChangeRequest) entities.MealChangeRequest {
	if req.Status == entities.RequestStatusPending && policy.Passed(req.CutoffTime, u.clock.Now()) {
		req.Status = entities.RequestStatusExpired
	}
	return req
}

func (u *MealChangeUseCase) mapWriteError(op, id string, err error) error {
	if errors.Is(err, interfaces.ErrVersionConflict) {
		u.log.Warn("[meal-change][usecase] concurrent write lost", "op", op, "request_id", id)
		return ErrConflict
	}
	u.log.Error("[meal-change][usecase] write failed", "op", op, "request_id", id, "err", err)
	u.metrics.Failed(op)
	return err
}

func deriveReason(q policy.Quote) entities.ChangeReason {
	if q.NewMeal.PlanTier != q.OriginalMeal.PlanTier {
		if q.NewMeal.BasePrice.GreaterThan(q.OriginalMeal.BasePrice) {
			return entities.ReasonUpgrade
		}
		if q.NewMeal.BasePrice.LessThan(q.OriginalMeal.BasePrice) {
			return entities.ReasonDowngrade
		}
		return entities.ReasonOther
	}
	return entities.ReasonCustomRequest
}

func sortTierOptions(opts []TierOption) {
	sort.Slice(opts, func(i, j int) bool { return opts[i].PriceDelta.LessThan(opts[j].PriceDelta) })
}
