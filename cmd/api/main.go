package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mealchange_service/internal/adapter/http/handlers"
	"mealchange_service/internal/adapter/http/routes"
	"mealchange_service/internal/adapter/persistence/repository"
	"mealchange_service/internal/domain/policy"
	"mealchange_service/internal/infrastructure/config"
	"mealchange_service/internal/infrastructure/database"
	"mealchange_service/internal/infrastructure/notification"
	"mealchange_service/internal/infrastructure/payments"
	"mealchange_service/internal/usecase"
	"mealchange_service/internal/usecase/interfaces"
	"mealchange_service/pkg/logger"
	"mealchange_service/pkg/metrics"

	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
)

// @title           Meal Change Service API
// @version         1.0
// @description     Cutoff-gated meal change requests with wallet and gateway settlement, backed by DynamoDB.

// @host localhost:8080

// @BasePath  /v1

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.NewLogger("info").Fatal("Failed to load config", "error", err)
	}

	log := logger.NewLogger(cfg.LogLevel)
	defer func() { _ = log.Sync() }()
	log.Info("Starting meal change service", "version", cfg.AppVersion, "timezone", cfg.Location.String())
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ddb, err := database.NewDynamoDBClient(ctx, database.DynamoDBSettings{
		Region:          cfg.AWSRegion,
		Endpoint:        cfg.DynamoDBEndpoint,
		AccessKeyID:     cfg.AWSAccessKeyID,
		SecretAccessKey: cfg.AWSSecretAccessKey,
	})
	if err != nil {
		log.Fatal("Failed to connect to DynamoDB", "error", err)
	}

	var gateway interfaces.IPaymentGateway
	mpGateway, err := payments.NewMercadoPagoGateway(cfg.MercadoPagoAccessToken, log)
	if err != nil {
		log.Warn("Mercado Pago gateway not configured, gateway payments disabled", "error", err)
	} else {
		gateway = mpGateway
	}

	notifier := notification.NewDynamoNotifier(ddb, log, cfg.NotificationQueueSize)
	appMetrics := metrics.NewMetrics(cfg.MetricsNamespace, prometheus.DefaultRegisterer)

	mealChanges := usecase.NewMealChangeUseCase(usecase.Dependencies{
		Requests:      repository.NewMealChangeDynamoRepository(ddb),
		Menus:         repository.NewMenuDynamoRepository(ddb),
		Subscriptions: repository.NewSubscriptionDynamoRepository(ddb),
		Wallet:        repository.NewWalletDynamoRepository(ddb),
		Gateway:       gateway,
		Orders:        repository.NewOrderDynamoRepository(ddb),
		Notifier:      notifier,
		Clock:         policy.SystemClock{},
		Cutoff:        policy.NewCutoff(cfg.Location),
		Logger:        log,
		Metrics:       appMetrics,
	}, usecase.Options{
		Currency:         cfg.Currency,
		PaymentTimeout:   cfg.PaymentTimeout,
		OrderSyncTimeout: cfg.OrderSyncTimeout,
		SweepBatchSize:   cfg.SweepBatchSize,
	})

	go mealChanges.RunExpirySweeper(ctx, cfg.ExpirySweepInterval)

	router := routes.NewRouter(routes.Handlers{
		MealChange: handlers.NewMealChangeHandler(mealChanges, log),
		Webhook:    handlers.NewPaymentWebhookHandler(mealChanges, log),
	}, log)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		log.Info("Starting HTTP server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server error", "error", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("Received signal", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	cancel() // stops the expiry sweeper

	if err := notifier.Close(shutdownCtx); err != nil {
		log.Error("Notification queue not drained", "error", err)
	}

	log.Info("Meal change service stopped")
}
