package handlers

import (
	"net/http"
	"strings"

	request "mealchange_service/internal/adapter/http/dto/request"
	response "mealchange_service/internal/adapter/http/dto/response"
	"mealchange_service/internal/usecase"
	"mealchange_service/pkg"
	"mealchange_service/pkg/logger"

	"github.com/gin-gonic/gin"
)

// PaymentWebhookHandler receives asynchronous payment notifications from
// Mercado Pago. It is not behind RequireUser.
type PaymentWebhookHandler struct {
	usecase usecase.IMealChangeUseCase
	log     logger.Logger
}

func NewPaymentWebhookHandler(uc usecase.IMealChangeUseCase, log logger.Logger) *PaymentWebhookHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &PaymentWebhookHandler{usecase: uc, log: log}
}

// ReceivePayment godoc
// @Summary      Mercado Pago payment notification
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Param        payload  body  request.PaymentWebhookRequest  false  "Notification"
// @Param        data.id  query string  false  "Payment id (query form)"
// @Success      200  {object}  response.MealChangeResponse
// @Failure      400  {object}  pkg.HTTPError
// @Router       /webhooks/payments [post]
func (h *PaymentWebhookHandler) ReceivePayment(c *gin.Context) {
	var payload request.PaymentWebhookRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&payload); err != nil {
			h.log.Info("[payment][webhook] invalid payload", "err", err)
			appErr := pkg.NewDomainErrorSimple("INVALID_REQUEST", "Invalid request", http.StatusBadRequest)
			c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
			return
		}
	}

	topic := strings.TrimSpace(c.Query("topic"))
	if topic == "" {
		topic = strings.TrimSpace(c.Query("type"))
	}
	if topic != "" && topic != "payment" {
		c.Status(http.StatusAccepted)
		return
	}
	if payload.Type != "" && payload.ResolvePaymentID() == "" {
		c.Status(http.StatusAccepted)
		return
	}

	paymentID := payload.ResolvePaymentID()
	if paymentID == "" {
		paymentID = strings.TrimSpace(c.Query("data.id"))
	}
	if paymentID == "" {
		paymentID = strings.TrimSpace(c.Query("id"))
	}
	if paymentID == "" {
		appErr := pkg.NewDomainErrorSimple("INVALID_REQUEST", "Missing payment id", http.StatusBadRequest)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	h.log.Info("[payment][webhook] received", "payment_id", paymentID, "action", payload.Action)
	updated, err := h.usecase.ConfirmGatewayPayment(c.Request.Context(), paymentID)
	if err != nil {
		appErr := mapMealChangeError(err)
		h.log.Warn("[payment][webhook] not applied", "payment_id", paymentID, "code", appErr.Code, "err", err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}
	h.log.Info("[payment][webhook] applied", "payment_id", paymentID, "request_id", updated.ID, "status", updated.Status)
	c.JSON(http.StatusOK, response.FromMealChangeRequest(updated))
}
