package routes

import (
	"mealchange_service/internal/adapter/http/handlers"
	"mealchange_service/internal/adapter/http/middleware"

	"github.com/gin-gonic/gin"
)

const (
	PathMealChanges = "/meal-changes"
	PathWebhooks    = "/webhooks"
)

func addMealChangeRoutes(rg *gin.RouterGroup, h *handlers.MealChangeHandler) {
	mealChanges := rg.Group(PathMealChanges, middleware.RequireUser())
	{
		mealChanges.GET("/options", h.ListOptions)
		mealChanges.POST("", h.CreateMealChange)
		mealChanges.GET("", h.ListHistory)
		mealChanges.GET("/:id", h.GetMealChange)
		mealChanges.POST("/:id/addons", h.AddAddon)
		mealChanges.DELETE("/:id/addons/:name", h.RemoveAddon)
		mealChanges.POST("/:id/payment", h.SettlePayment)
		mealChanges.POST("/:id/cancel", h.CancelMealChange)
	}
}

func addWebhookRoutes(rg *gin.RouterGroup, h *handlers.PaymentWebhookHandler) {
	webhooks := rg.Group(PathWebhooks)
	{
		webhooks.POST("/payments", h.ReceivePayment)
	}
}

func addPingRoutes(rg *gin.RouterGroup) {
	rg.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
}
