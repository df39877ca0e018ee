package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mealchange_service/internal/adapter/http/dto/request"
	"mealchange_service/internal/adapter/http/handlers/mocks"
	"mealchange_service/internal/adapter/http/middleware"
	"mealchange_service/internal/domain/entities"
	"mealchange_service/internal/usecase"
	"mealchange_service/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"
)

func newMealChangeRouter(t *testing.T) (*gin.Engine, *mocks.MockIMealChangeUseCase) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctrl := gomock.NewController(t)
	uc := mocks.NewMockIMealChangeUseCase(ctrl)
	h := NewMealChangeHandler(uc, logger.NewNop())

	r := gin.New()
	g := r.Group("/v1/meal-changes", middleware.RequireUser())
	g.GET("/options", h.ListOptions)
	g.POST("", h.CreateMealChange)
	g.GET("", h.ListHistory)
	g.GET("/:id", h.GetMealChange)
	g.POST("/:id/addons", h.AddAddon)
	g.DELETE("/:id/addons/:name", h.RemoveAddon)
	g.POST("/:id/payment", h.SettlePayment)
	g.POST("/:id/cancel", h.CancelMealChange)
	return r, uc
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var buf *bytes.Buffer
	if body != "" {
		buf = bytes.NewBufferString(body)
	} else {
		buf = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.HeaderUserID, "user-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json body %q: %v", w.Body.String(), err)
	}
	return body
}

func pendingRequest() entities.MealChangeRequest {
	return entities.MealChangeRequest{
		ID:              "req-1",
		UserID:          "user-1",
		ChangeDate:      "2026-10-20",
		DeliverySlot:    entities.SlotLunch,
		PriceAdjustment: decimal.NewFromInt(50),
		Status:          entities.RequestStatusPending,
		PaymentRequired: true,
		PaymentStatus:   entities.PaymentStatusPending,
		RequestedAt:     time.Date(2026, 10, 18, 10, 0, 0, 0, time.UTC),
	}
}

func TestMealChangeHandler_ListOptions(t *testing.T) {
	t.Run("missing slot", func(t *testing.T) {
		r, _ := newMealChangeRouter(t)
		w := do(r, http.MethodGet, "/v1/meal-changes/options?date=2026-10-20", "")
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("cutoff passed", func(t *testing.T) {
		r, uc := newMealChangeRouter(t)
		uc.EXPECT().ListOptions(gomock.Any(), "user-1", "2026-10-20", "lunch").Return(usecase.ChangeOptions{}, usecase.ErrCutoffPassed)
		w := do(r, http.MethodGet, "/v1/meal-changes/options?date=2026-10-20&slot=lunch", "")
		if w.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", w.Code)
		}
		if body := decodeBody(t, w); body["code"] != "CUTOFF_PASSED" {
			t.Fatalf("unexpected body: %v", body)
		}
	})

	t.Run("success", func(t *testing.T) {
		r, uc := newMealChangeRouter(t)
		uc.EXPECT().ListOptions(gomock.Any(), "user-1", "2026-10-20", "dinner").Return(usecase.ChangeOptions{
			Date:      "2026-10-20",
			Slot:      entities.SlotDinner,
			Upgrades:  []usecase.TierOption{{Tier: entities.PlanTierPremium, Price: decimal.NewFromInt(150), PriceDelta: decimal.NewFromInt(50)}},
			CanChange: true,
		}, nil)
		w := do(r, http.MethodGet, "/v1/meal-changes/options?date=2026-10-20&slot=dinner", "")
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		body := decodeBody(t, w)
		if body["can_change"] != true || len(body["upgrades"].([]any)) != 1 {
			t.Fatalf("unexpected body: %v", body)
		}
	})
}

func TestMealChangeHandler_CreateMealChange(t *testing.T) {
	t.Run("missing identity", func(t *testing.T) {
		r, _ := newMealChangeRouter(t)
		req := httptest.NewRequest(http.MethodPost, "/v1/meal-changes", bytes.NewBufferString(`{}`))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
	})

	invalid := map[string]string{
		"malformed json": `{`,
		"missing date":   `{"slot":"lunch","new_tier":"premium"}`,
		"bad date":       `{"date":"20-10-2026","slot":"lunch"}`,
		"bad slot":       `{"date":"2026-10-20","slot":"brunch"}`,
		"bad tier":       `{"date":"2026-10-20","slot":"lunch","new_tier":"gold"}`,
		"bad reason":     `{"date":"2026-10-20","slot":"lunch","reason":"whim"}`,
		"addon no name":  `{"date":"2026-10-20","slot":"lunch","custom_items":[{"price":10}]}`,
	}
	for name, body := range invalid {
		t.Run(name, func(t *testing.T) {
			r, _ := newMealChangeRouter(t)
			w := do(r, http.MethodPost, "/v1/meal-changes", body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
		})
	}

	t.Run("duplicate", func(t *testing.T) {
		r, uc := newMealChangeRouter(t)
		uc.EXPECT().CreateRequest(gomock.Any(), "user-1", gomock.Any()).Return(entities.MealChangeRequest{}, usecase.ErrDuplicateRequest)
		w := do(r, http.MethodPost, "/v1/meal-changes", `{"date":"2026-10-20","slot":"lunch","new_tier":"premium"}`)
		if w.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", w.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		r, uc := newMealChangeRouter(t)
		uc.EXPECT().CreateRequest(gomock.Any(), "user-1", gomock.Any()).DoAndReturn(
			func(_ any, _ string, in usecase.CreateRequestInput) (entities.MealChangeRequest, error) {
				if in.NewTier != "premium" || len(in.CustomItems) != 1 || in.CustomItems[0].Name != "Raita" {
					return entities.MealChangeRequest{}, fmt.Errorf("unexpected input %+v", in)
				}
				if !in.CustomItems[0].Price.Equal(decimal.RequireFromString("15.5")) {
					return entities.MealChangeRequest{}, fmt.Errorf("unexpected price %s", in.CustomItems[0].Price)
				}
				return pendingRequest(), nil
			})
		w := do(r, http.MethodPost, "/v1/meal-changes",
			`{"date":"2026-10-20","slot":"lunch","new_tier":"premium","custom_items":[{"name":"Raita","price":15.5,"quantity":1}]}`)
		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
		}
		body := decodeBody(t, w)
		if body["id"] != "req-1" || body["status"] != "pending" || body["price_adjustment"] != float64(50) {
			t.Fatalf("unexpected body: %v", body)
		}
	})
}

func TestMealChangeHandler_GetMealChange(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", usecase.ErrRequestNotFound, http.StatusNotFound},
		{"forbidden", usecase.ErrForbidden, http.StatusForbidden},
		{"store failure", errors.New("dynamo down"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, uc := newMealChangeRouter(t)
			uc.EXPECT().GetByID(gomock.Any(), "user-1", "req-1").Return(entities.MealChangeRequest{}, tc.err)
			w := do(r, http.MethodGet, "/v1/meal-changes/req-1", "")
			if w.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, w.Code)
			}
		})
	}

	t.Run("success", func(t *testing.T) {
		r, uc := newMealChangeRouter(t)
		uc.EXPECT().GetByID(gomock.Any(), "user-1", "req-1").Return(pendingRequest(), nil)
		w := do(r, http.MethodGet, "/v1/meal-changes/req-1", "")
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	})
}

func TestMealChangeHandler_ListHistory(t *testing.T) {
	t.Run("bad page", func(t *testing.T) {
		r, _ := newMealChangeRouter(t)
		w := do(r, http.MethodGet, "/v1/meal-changes?page=-1", "")
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("invalid status", func(t *testing.T) {
		r, uc := newMealChangeRouter(t)
		uc.EXPECT().History(gomock.Any(), "user-1", usecase.HistoryQuery{Page: 1, Limit: 5, Status: "done"}).Return(usecase.HistoryPage{}, usecase.ErrInvalidStatus)
		w := do(r, http.MethodGet, "/v1/meal-changes?page=1&limit=5&status=done", "")
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		r, uc := newMealChangeRouter(t)
		uc.EXPECT().History(gomock.Any(), "user-1", usecase.HistoryQuery{}).Return(usecase.HistoryPage{
			Items: []entities.MealChangeRequest{pendingRequest()}, Page: 1, Limit: 10, Total: 1, TotalPages: 1,
		}, nil)
		w := do(r, http.MethodGet, "/v1/meal-changes", "")
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		body := decodeBody(t, w)
		pagination := body["pagination"].(map[string]any)
		if pagination["total"] != float64(1) || len(body["items"].([]any)) != 1 {
			t.Fatalf("unexpected body: %v", body)
		}
	})
}

func TestMealChangeHandler_Addons(t *testing.T) {
	t.Run("add invalid payload", func(t *testing.T) {
		r, _ := newMealChangeRouter(t)
		w := do(r, http.MethodPost, "/v1/meal-changes/req-1/addons", `{"price":10}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("add on terminal request", func(t *testing.T) {
		r, uc := newMealChangeRouter(t)
		uc.EXPECT().AddAddon(gomock.Any(), "user-1", "req-1", gomock.Any()).Return(entities.MealChangeRequest{}, usecase.ErrNotPending)
		w := do(r, http.MethodPost, "/v1/meal-changes/req-1/addons", `{"name":"Raita","price":15}`)
		if w.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", w.Code)
		}
	})

	t.Run("add success", func(t *testing.T) {
		r, uc := newMealChangeRouter(t)
		uc.EXPECT().AddAddon(gomock.Any(), "user-1", "req-1", gomock.Cond(func(x any) bool {
			item, ok := x.(entities.CustomItem)
			return ok && item.Name == "Raita" && item.Quantity == 2 && item.Price.Equal(decimal.NewFromInt(15))
		})).Return(pendingRequest(), nil)
		w := do(r, http.MethodPost, "/v1/meal-changes/req-1/addons", `{"name":" Raita ","price":"15","quantity":2}`)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("remove after cutoff", func(t *testing.T) {
		r, uc := newMealChangeRouter(t)
		uc.EXPECT().RemoveAddon(gomock.Any(), "user-1", "req-1", "Extra Roti").Return(entities.MealChangeRequest{}, usecase.ErrCutoffPassed)
		w := do(r, http.MethodDelete, "/v1/meal-changes/req-1/addons/Extra%20Roti", "")
		if w.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", w.Code)
		}
	})
}

func TestMealChangeHandler_SettlePayment(t *testing.T) {
	t.Run("unknown method", func(t *testing.T) {
		r, _ := newMealChangeRouter(t)
		w := do(r, http.MethodPost, "/v1/meal-changes/req-1/payment", `{"method":"cash"}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("wallet insufficient funds", func(t *testing.T) {
		r, uc := newMealChangeRouter(t)
		uc.EXPECT().SettlePayment(gomock.Any(), "user-1", "req-1", usecase.WalletRail{}).Return(entities.MealChangeRequest{}, usecase.ErrInsufficientFunds)
		w := do(r, http.MethodPost, "/v1/meal-changes/req-1/payment", `{"method":"wallet"}`)
		if w.Code != http.StatusPaymentRequired {
			t.Fatalf("expected 402, got %d", w.Code)
		}
		if body := decodeBody(t, w); body["code"] != "INSUFFICIENT_FUNDS" {
			t.Fatalf("unexpected body: %v", body)
		}
	})

	t.Run("gateway decline text passes through", func(t *testing.T) {
		r, uc := newMealChangeRouter(t)
		rail := usecase.GatewayRail{PaymentMethodID: "visa", Token: "tok", PayerEmail: "a@b.com", Installments: 1}
		uc.EXPECT().SettlePayment(gomock.Any(), "user-1", "req-1", rail).
			Return(entities.MealChangeRequest{}, fmt.Errorf("%w: cc_rejected_insufficient_amount", usecase.ErrGatewayDeclined))
		w := do(r, http.MethodPost, "/v1/meal-changes/req-1/payment",
			`{"method":"gateway","payment_method_id":"visa","token":"tok","payer_email":"a@b.com","installments":1}`)
		if w.Code != http.StatusPaymentRequired {
			t.Fatalf("expected 402, got %d", w.Code)
		}
		body := decodeBody(t, w)
		if body["code"] != "PAYMENT_DECLINED" || body["message"] != "Payment declined by gateway: cc_rejected_insufficient_amount" {
			t.Fatalf("unexpected body: %v", body)
		}
	})

	t.Run("gateway timeout", func(t *testing.T) {
		r, uc := newMealChangeRouter(t)
		uc.EXPECT().SettlePayment(gomock.Any(), "user-1", "req-1", gomock.Any()).Return(entities.MealChangeRequest{}, usecase.ErrGatewayUnavailable)
		w := do(r, http.MethodPost, "/v1/meal-changes/req-1/payment", `{"method":"gateway"}`)
		if w.Code != http.StatusGatewayTimeout {
			t.Fatalf("expected 504, got %d", w.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		r, uc := newMealChangeRouter(t)
		approved := pendingRequest()
		approved.Status = entities.RequestStatusApproved
		approved.PaymentStatus = entities.PaymentStatusPaid
		approved.PaymentRail = entities.RailWallet
		approved.TransactionID = "WAL-1"
		uc.EXPECT().SettlePayment(gomock.Any(), "user-1", "req-1", usecase.WalletRail{}).Return(approved, nil)
		w := do(r, http.MethodPost, "/v1/meal-changes/req-1/payment", `{"method":"wallet"}`)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		body := decodeBody(t, w)
		if body["status"] != "approved" || body["transaction_id"] != "WAL-1" || body["payment_method"] != "wallet" {
			t.Fatalf("unexpected body: %v", body)
		}
	})
}

func TestToPaymentRail(t *testing.T) {
	cases := []struct {
		name string
		in   request.PaymentRequest
		want usecase.PaymentRail
	}{
		{"wallet", request.PaymentRequest{Method: request.PaymentMethodWallet, Token: "ignored"}, usecase.WalletRail{}},
		{"gateway", request.PaymentRequest{Method: request.PaymentMethodGateway, PaymentMethodID: " visa ", Token: "tok", PayerEmail: "a@b.com", Installments: 3},
			usecase.GatewayRail{PaymentMethodID: "visa", Token: "tok", PayerEmail: "a@b.com", Installments: 3}},
		{"unknown method", request.PaymentRequest{Method: "cash", Token: "tok"}, nil},
		{"empty method", request.PaymentRequest{}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := toPaymentRail(tc.in); got != tc.want {
				t.Fatalf("expected %#v, got %#v", tc.want, got)
			}
		})
	}
}

func TestMealChangeHandler_CancelMealChange(t *testing.T) {
	t.Run("not cancellable", func(t *testing.T) {
		r, uc := newMealChangeRouter(t)
		uc.EXPECT().Cancel(gomock.Any(), "user-1", "req-1").Return(entities.MealChangeRequest{}, usecase.ErrNotCancellable)
		w := do(r, http.MethodPost, "/v1/meal-changes/req-1/cancel", "")
		if w.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", w.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		r, uc := newMealChangeRouter(t)
		rejected := pendingRequest()
		rejected.Status = entities.RequestStatusRejected
		rejected.RejectionReason = "Cancelled by user"
		uc.EXPECT().Cancel(gomock.Any(), "user-1", "req-1").Return(rejected, nil)
		w := do(r, http.MethodPost, "/v1/meal-changes/req-1/cancel", "")
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		if body := decodeBody(t, w); body["status"] != "rejected" {
			t.Fatalf("unexpected body: %v", body)
		}
	})
}

func TestMapMealChangeError(t *testing.T) {
	cases := []struct {
		err    error
		code   string
		status int
	}{
		{usecase.ErrInvalidSlot, "VALIDATION_ERROR", http.StatusBadRequest},
		{usecase.ErrNothingToChange, "NOTHING_TO_CHANGE", http.StatusBadRequest},
		{usecase.ErrPastDate, "PAST_DATE", http.StatusBadRequest},
		{usecase.ErrNoMenu, "NO_MENU", http.StatusNotFound},
		{usecase.ErrNoSubscription, "NO_SUBSCRIPTION", http.StatusNotFound},
		{usecase.ErrNotPayable, "NOT_PAYABLE", http.StatusConflict},
		{usecase.ErrAlreadyPaid, "ALREADY_PAID", http.StatusConflict},
		{usecase.ErrConflict, "CONFLICT", http.StatusConflict},
		{usecase.ErrGatewayNotConfigured, "PAYMENT_PROVIDER_UNAVAILABLE", http.StatusServiceUnavailable},
		{usecase.ErrReconciliationPending, "RECONCILIATION_PENDING", http.StatusBadGateway},
		{fmt.Errorf("wrapped: %w", usecase.ErrForbidden), "FORBIDDEN", http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			appErr := mapMealChangeError(tc.err)
			if appErr.Code != tc.code || appErr.HTTPStatus != tc.status {
				t.Fatalf("expected %s/%d, got %s/%d", tc.code, tc.status, appErr.Code, appErr.HTTPStatus)
			}
		})
	}
}
