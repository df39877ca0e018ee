package routes

import (
	"time"

	_ "mealchange_service/docs" // swagger spec registration
	"mealchange_service/internal/adapter/http/handlers"
	"mealchange_service/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handlers groups everything the router serves.
type Handlers struct {
	MealChange *handlers.MealChangeHandler
	Webhook    *handlers.PaymentWebhookHandler
	// Gatherer backs /metrics; nil serves the default registry.
	Gatherer prometheus.Gatherer
}

// NewRouter builds the gin engine with middlewares, swagger, metrics and the /v1 API.
func NewRouter(h Handlers, log logger.Logger) *gin.Engine {
	if log == nil {
		log = logger.NewNop()
	}
	router := gin.New()
	setMiddlewares(router, log)

	// Swagger documentation endpoint
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	gatherer := h.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	v1 := router.Group("/v1")
	addPingRoutes(v1)
	addMealChangeRoutes(v1, h.MealChange)
	addWebhookRoutes(v1, h.Webhook)

	return router
}

func setMiddlewares(router *gin.Engine, log logger.Logger) {
	router.Use(requestLogger(log))
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Error("[http] recovered from panic", "path", c.FullPath(), "panic", recovered)
		c.AbortWithStatus(500)
	}))
}

func requestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("[http] request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
		)
	}
}
