package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"mealchange_service/internal/domain/entities"
	"mealchange_service/internal/domain/policy"
	"mealchange_service/internal/usecase/interfaces"
	mock_interfaces "mealchange_service/internal/usecase/interfaces/mocks"

	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"
)

var ist = time.FixedZone("IST", 5*3600+1800)

const (
	testUser = "user-1"
	testDate = "2026-10-20"
)

// dayBefore is comfortably ahead of the cutoff for testDate.
var dayBefore = time.Date(2026, 10, 19, 10, 0, 0, 0, ist)

// fakeRequestRepo is an in-memory IMealChangeRepository with the same
// conditional-write rules as the DynamoDB one.
type fakeRequestRepo struct {
	mu           sync.Mutex
	items        map[string]entities.MealChangeRequest
	updateErr    error
	beforeUpdate func(id string)
}

var _ interfaces.IMealChangeRepository = (*fakeRequestRepo)(nil)

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{items: map[string]entities.MealChangeRequest{}}
}

func cloneRequest(r entities.MealChangeRequest) entities.MealChangeRequest {
	r.NewMeal.CustomItems = append([]entities.CustomItem(nil), r.NewMeal.CustomItems...)
	r.OriginalMeal.CustomItems = append([]entities.CustomItem(nil), r.OriginalMeal.CustomItems...)
	return r
}

func (f *fakeRequestRepo) Create(_ context.Context, r entities.MealChangeRequest) (entities.MealChangeRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.items {
		if existing.SlotKey() == r.SlotKey() && existing.Status.IsActive() {
			return entities.MealChangeRequest{}, interfaces.ErrSlotTaken
		}
	}
	r.Version = 1
	f.items[r.ID] = cloneRequest(r)
	return r, nil
}

func (f *fakeRequestRepo) GetByID(_ context.Context, id string) (entities.MealChangeRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return cloneRequest(f.items[id]), nil
}

func (f *fakeRequestRepo) GetActiveBySlot(_ context.Context, userID, changeDate string, slot entities.DeliverySlot) (entities.MealChangeRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := entities.SlotKey(userID, changeDate, slot)
	for _, r := range f.items {
		if r.SlotKey() == key && r.Status.IsActive() {
			return cloneRequest(r), nil
		}
	}
	return entities.MealChangeRequest{}, nil
}

func (f *fakeRequestRepo) Update(_ context.Context, r entities.MealChangeRequest, expectedVersion int64) (entities.MealChangeRequest, error) {
	if f.beforeUpdate != nil {
		f.beforeUpdate(r.ID)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return entities.MealChangeRequest{}, f.updateErr
	}
	stored, ok := f.items[r.ID]
	if !ok || stored.Version != expectedVersion {
		return entities.MealChangeRequest{}, interfaces.ErrVersionConflict
	}
	r.Version = expectedVersion + 1
	f.items[r.ID] = cloneRequest(r)
	return r, nil
}

func (f *fakeRequestRepo) ListByUser(_ context.Context, userID string, status entities.RequestStatus) ([]entities.MealChangeRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entities.MealChangeRequest
	for _, r := range f.items {
		if r.UserID == userID && (status == "" || r.Status == status) {
			out = append(out, cloneRequest(r))
		}
	}
	return out, nil
}

func (f *fakeRequestRepo) ListPendingBefore(_ context.Context, cutoff time.Time, limit int) ([]entities.MealChangeRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entities.MealChangeRequest
	for _, r := range f.items {
		if r.Status == entities.RequestStatusPending && !r.CutoffTime.After(cutoff) {
			out = append(out, cloneRequest(r))
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (f *fakeRequestRepo) put(r entities.MealChangeRequest) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[r.ID] = cloneRequest(r)
}

func (f *fakeRequestRepo) get(id string) entities.MealChangeRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return cloneRequest(f.items[id])
}

func (f *fakeRequestRepo) bumpVersion(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := f.items[id]
	r.Version++
	f.items[id] = r
}

func testMenu(date string) entities.DailyMenu {
	slot := func(price int64, name string) map[entities.DeliverySlot]entities.SlotMenu {
		sm := entities.SlotMenu{
			Items: []entities.MenuItem{{Name: name, Category: entities.OrderItemCategoryMain, Price: decimal.NewFromInt(price)}},
			Price: decimal.NewFromInt(price),
		}
		return map[entities.DeliverySlot]entities.SlotMenu{entities.SlotLunch: sm, entities.SlotDinner: sm}
	}
	return entities.DailyMenu{
		Date: date,
		Tiers: map[entities.PlanTier]map[entities.DeliverySlot]entities.SlotMenu{
			entities.PlanTierLow:     slot(80, "Dal Rice"),
			entities.PlanTierBasic:   slot(100, "Thali"),
			entities.PlanTierPremium: slot(150, "Deluxe Thali"),
		},
	}
}

type harness struct {
	uc       *MealChangeUseCase
	repo     *fakeRequestRepo
	wallet   *mock_interfaces.MockIWalletRepository
	gateway  *mock_interfaces.MockIPaymentGateway
	orders   *mock_interfaces.MockIOrderRepository
	notifier *mock_interfaces.MockINotifier

	mu            sync.Mutex
	sub           entities.Subscription
	menuMissing   bool
	notifications []entities.Notification
}

func newHarness(t *testing.T, now time.Time) *harness {
	return newHarnessWithOptions(t, now, DefaultOptions())
}

func newHarnessWithOptions(t *testing.T, now time.Time, opts Options) *harness {
	t.Helper()
	ctrl := gomock.NewController(t)
	h := &harness{
		repo:     newFakeRequestRepo(),
		wallet:   mock_interfaces.NewMockIWalletRepository(ctrl),
		gateway:  mock_interfaces.NewMockIPaymentGateway(ctrl),
		orders:   mock_interfaces.NewMockIOrderRepository(ctrl),
		notifier: mock_interfaces.NewMockINotifier(ctrl),
		sub: entities.Subscription{
			ID: "sub-1", UserID: testUser, Tier: entities.PlanTierBasic, Status: entities.SubscriptionStatusActive,
		},
	}
	menus := mock_interfaces.NewMockIMenuRepository(ctrl)
	subs := mock_interfaces.NewMockISubscriptionRepository(ctrl)

	menus.EXPECT().GetDailyMenu(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, date string) (entities.DailyMenu, error) {
			h.mu.Lock()
			defer h.mu.Unlock()
			if h.menuMissing {
				return entities.DailyMenu{}, nil
			}
			return testMenu(date), nil
		}).AnyTimes()
	subs.EXPECT().GetActiveSubscription(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, userID, _ string) (entities.Subscription, error) {
			h.mu.Lock()
			defer h.mu.Unlock()
			if h.sub.ID == "" {
				return entities.Subscription{}, nil
			}
			s := h.sub
			s.UserID = userID
			return s, nil
		}).AnyTimes()
	h.notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Do(
		func(_ context.Context, n entities.Notification) {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.notifications = append(h.notifications, n)
		}).AnyTimes()

	h.uc = NewMealChangeUseCase(Dependencies{
		Requests:      h.repo,
		Menus:         menus,
		Subscriptions: subs,
		Wallet:        h.wallet,
		Gateway:       h.gateway,
		Orders:        h.orders,
		Notifier:      h.notifier,
		Clock:         policy.FixedClock{T: now},
		Cutoff:        policy.NewCutoff(ist),
	}, opts)
	return h
}

func (h *harness) setNow(now time.Time) { h.uc.clock = policy.FixedClock{T: now} }

func (h *harness) noOrder() {
	h.orders.EXPECT().FindOrder(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(entities.Order{}, nil)
}

func (h *harness) lastNotification() entities.Notification {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.notifications) == 0 {
		return entities.Notification{}
	}
	return h.notifications[len(h.notifications)-1]
}

func (h *harness) create(t *testing.T, in CreateRequestInput) entities.MealChangeRequest {
	t.Helper()
	if in.Date == "" {
		in.Date = testDate
	}
	if in.Slot == "" {
		in.Slot = "lunch"
	}
	r, err := h.uc.CreateRequest(context.Background(), testUser, in)
	if err != nil {
		t.Fatalf("create: unexpected error: %v", err)
	}
	return r
}

type decimalMatcher struct{ want decimal.Decimal }

func (m decimalMatcher) Matches(x any) bool {
	d, ok := x.(decimal.Decimal)
	return ok && d.Equal(m.want)
}

func (m decimalMatcher) String() string { return "is decimal " + m.want.String() }

func decEq(v int64) gomock.Matcher { return decimalMatcher{want: decimal.NewFromInt(v)} }

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }
