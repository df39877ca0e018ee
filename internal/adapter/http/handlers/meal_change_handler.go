package handlers

import (
	"net/http"
	"strings"

	request "mealchange_service/internal/adapter/http/dto/request"
	response "mealchange_service/internal/adapter/http/dto/response"
	"mealchange_service/internal/adapter/http/middleware"
	"mealchange_service/internal/usecase"
	"mealchange_service/pkg"
	"mealchange_service/pkg/logger"

	"github.com/gin-gonic/gin"
)

var (
	errInvalidMealChangePayload = pkg.NewDomainErrorSimple("VALIDATION_ERROR", "Invalid meal change payload", http.StatusBadRequest)
	errInvalidQuery             = pkg.NewDomainErrorSimple("VALIDATION_ERROR", "Invalid query parameters", http.StatusBadRequest)
	errInvalidPaymentPayload    = pkg.NewDomainErrorSimple("VALIDATION_ERROR", "Invalid payment payload", http.StatusBadRequest)
)

// MealChangeHandler handles HTTP requests for meal change requests.
// Every route expects the caller identity set by middleware.RequireUser.
type MealChangeHandler struct {
	usecase usecase.IMealChangeUseCase
	log     logger.Logger
}

func NewMealChangeHandler(uc usecase.IMealChangeUseCase, log logger.Logger) *MealChangeHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &MealChangeHandler{usecase: uc, log: log}
}

// ListOptions godoc
// @Summary      List meal change options
// @Tags         meal-changes
// @Produce      json
// @Param        X-User-ID  header  string  true  "Caller id"
// @Param        date       query   string  true  "Change date (YYYY-MM-DD)"
// @Param        slot       query   string  true  "lunch or dinner"
// @Success      200  {object}  response.ChangeOptionsResponse
// @Failure      400  {object}  pkg.HTTPError
// @Failure      404  {object}  pkg.HTTPError
// @Failure      422  {object}  pkg.HTTPError
// @Router       /meal-changes/options [get]
func (h *MealChangeHandler) ListOptions(c *gin.Context) {
	var q request.OptionsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(errInvalidQuery.HTTPStatus, errInvalidQuery.ToHTTPError())
		return
	}

	opts, err := h.usecase.ListOptions(c.Request.Context(), middleware.UserID(c), q.Date, q.Slot)
	if err != nil {
		h.fail(c, "options", err)
		return
	}
	c.JSON(http.StatusOK, response.FromChangeOptions(opts))
}

// CreateMealChange godoc
// @Summary      Request a meal change
// @Tags         meal-changes
// @Accept       json
// @Produce      json
// @Param        X-User-ID  header  string                           true  "Caller id"
// @Param        payload    body    request.MealChangeCreateRequest  true  "Change"
// @Success      201  {object}  response.MealChangeResponse
// @Failure      400  {object}  pkg.HTTPError
// @Failure      409  {object}  pkg.HTTPError
// @Failure      422  {object}  pkg.HTTPError
// @Router       /meal-changes [post]
func (h *MealChangeHandler) CreateMealChange(c *gin.Context) {
	var payload request.MealChangeCreateRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.log.Info("[meal-change][handler] invalid create payload", "err", err)
		c.JSON(errInvalidMealChangePayload.HTTPStatus, errInvalidMealChangePayload.ToHTTPError())
		return
	}

	created, err := h.usecase.CreateRequest(c.Request.Context(), middleware.UserID(c), usecase.CreateRequestInput{
		Date:        payload.Date,
		Slot:        payload.Slot,
		NewTier:     payload.NewTier,
		CustomItems: payload.ResolveCustomItems(),
		Reason:      payload.Reason,
		Notes:       payload.Notes,
	})
	if err != nil {
		h.fail(c, "create", err)
		return
	}
	c.JSON(http.StatusCreated, response.FromMealChangeRequest(created))
}

// GetMealChange godoc
// @Summary      Get a meal change request
// @Tags         meal-changes
// @Produce      json
// @Param        X-User-ID  header  string  true  "Caller id"
// @Param        id         path    string  true  "Request id"
// @Success      200  {object}  response.MealChangeResponse
// @Failure      403  {object}  pkg.HTTPError
// @Failure      404  {object}  pkg.HTTPError
// @Router       /meal-changes/{id} [get]
func (h *MealChangeHandler) GetMealChange(c *gin.Context) {
	req, err := h.usecase.GetByID(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		h.fail(c, "get", err)
		return
	}
	c.JSON(http.StatusOK, response.FromMealChangeRequest(req))
}

// ListHistory godoc
// @Summary      List the caller's meal change requests, newest first
// @Tags         meal-changes
// @Produce      json
// @Param        X-User-ID  header  string  true   "Caller id"
// @Param        page       query   int     false  "Page (default 1)"
// @Param        limit      query   int     false  "Page size (default 10, max 50)"
// @Param        status     query   string  false  "pending, approved, rejected or expired"
// @Success      200  {object}  response.HistoryResponse
// @Failure      400  {object}  pkg.HTTPError
// @Router       /meal-changes [get]
func (h *MealChangeHandler) ListHistory(c *gin.Context) {
	var q request.HistoryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(errInvalidQuery.HTTPStatus, errInvalidQuery.ToHTTPError())
		return
	}

	page, err := h.usecase.History(c.Request.Context(), middleware.UserID(c), usecase.HistoryQuery{
		Page:   q.Page,
		Limit:  q.Limit,
		Status: q.Status,
	})
	if err != nil {
		h.fail(c, "history", err)
		return
	}
	c.JSON(http.StatusOK, response.FromHistoryPage(page))
}

// AddAddon godoc
// @Summary      Attach an add-on to a pending request
// @Tags         meal-changes
// @Accept       json
// @Produce      json
// @Param        X-User-ID  header  string                true  "Caller id"
// @Param        id         path    string                true  "Request id"
// @Param        payload    body    request.AddonRequest  true  "Add-on"
// @Success      200  {object}  response.MealChangeResponse
// @Failure      400  {object}  pkg.HTTPError
// @Failure      409  {object}  pkg.HTTPError
// @Router       /meal-changes/{id}/addons [post]
func (h *MealChangeHandler) AddAddon(c *gin.Context) {
	var payload request.AddonRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidMealChangePayload.HTTPStatus, errInvalidMealChangePayload.ToHTTPError())
		return
	}

	updated, err := h.usecase.AddAddon(c.Request.Context(), middleware.UserID(c), c.Param("id"), payload.ToCustomItem())
	if err != nil {
		h.fail(c, "add-addon", err)
		return
	}
	c.JSON(http.StatusOK, response.FromMealChangeRequest(updated))
}

// RemoveAddon godoc
// @Summary      Remove an add-on from a pending request
// @Tags         meal-changes
// @Produce      json
// @Param        X-User-ID  header  string  true  "Caller id"
// @Param        id         path    string  true  "Request id"
// @Param        name       path    string  true  "Add-on name"
// @Success      200  {object}  response.MealChangeResponse
// @Failure      409  {object}  pkg.HTTPError
// @Router       /meal-changes/{id}/addons/{name} [delete]
func (h *MealChangeHandler) RemoveAddon(c *gin.Context) {
	updated, err := h.usecase.RemoveAddon(c.Request.Context(), middleware.UserID(c), c.Param("id"), c.Param("name"))
	if err != nil {
		h.fail(c, "remove-addon", err)
		return
	}
	c.JSON(http.StatusOK, response.FromMealChangeRequest(updated))
}

// SettlePayment godoc
// @Summary      Pay the price adjustment and approve the request
// @Tags         meal-changes
// @Accept       json
// @Produce      json
// @Param        X-User-ID  header  string                  true  "Caller id"
// @Param        id         path    string                  true  "Request id"
// @Param        payload    body    request.PaymentRequest  true  "Payment"
// @Success      200  {object}  response.MealChangeResponse
// @Failure      402  {object}  pkg.HTTPError
// @Failure      409  {object}  pkg.HTTPError
// @Router       /meal-changes/{id}/payment [post]
func (h *MealChangeHandler) SettlePayment(c *gin.Context) {
	var payload request.PaymentRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidPaymentPayload.HTTPStatus, errInvalidPaymentPayload.ToHTTPError())
		return
	}

	id := c.Param("id")
	h.log.Info("[payment][handler] settle start", "request_id", id, "method", payload.Method)
	updated, err := h.usecase.SettlePayment(c.Request.Context(), middleware.UserID(c), id, toPaymentRail(payload))
	if err != nil {
		h.fail(c, "settle", err)
		return
	}
	h.log.Info("[payment][handler] settle success", "request_id", id, "status", updated.Status, "transaction_id", updated.TransactionID)
	c.JSON(http.StatusOK, response.FromMealChangeRequest(updated))
}

// CancelMealChange godoc
// @Summary      Cancel a pending request, refunding a wallet payment
// @Tags         meal-changes
// @Produce      json
// @Param        X-User-ID  header  string  true  "Caller id"
// @Param        id         path    string  true  "Request id"
// @Success      200  {object}  response.MealChangeResponse
// @Failure      409  {object}  pkg.HTTPError
// @Failure      422  {object}  pkg.HTTPError
// @Router       /meal-changes/{id}/cancel [post]
func (h *MealChangeHandler) CancelMealChange(c *gin.Context) {
	updated, err := h.usecase.Cancel(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		h.fail(c, "cancel", err)
		return
	}
	c.JSON(http.StatusOK, response.FromMealChangeRequest(updated))
}

func (h *MealChangeHandler) fail(c *gin.Context, op string, err error) {
	appErr := mapMealChangeError(err)
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		h.log.Error("[meal-change][handler] "+op+" failed", "path", c.FullPath(), "err", err)
	} else {
		h.log.Info("[meal-change][handler] "+op+" rejected", "path", c.FullPath(), "code", appErr.Code)
	}
	c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
}

// toPaymentRail returns nil for a method outside the closed set; the use case
// rejects a nil rail with ErrInvalidPaymentRail.
func toPaymentRail(p request.PaymentRequest) usecase.PaymentRail {
	switch p.Method {
	case request.PaymentMethodWallet:
		return usecase.WalletRail{}
	case request.PaymentMethodGateway:
		return usecase.GatewayRail{
			PaymentMethodID: strings.TrimSpace(p.PaymentMethodID),
			Token:           strings.TrimSpace(p.Token),
			PayerEmail:      strings.TrimSpace(p.PayerEmail),
			Installments:    p.Installments,
		}
	}
	return nil
}
