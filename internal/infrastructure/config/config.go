package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata" // LoadLocation in minimal images

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// App
	AppVersion       string
	LogLevel         string
	MetricsNamespace string

	// Server
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// DynamoDB
	AWSRegion          string
	DynamoDBEndpoint   string
	AWSAccessKeyID     string
	AWSSecretAccessKey string

	// Meal change policy
	Location *time.Location
	Currency string

	// Collaborators
	PaymentTimeout         time.Duration
	OrderSyncTimeout       time.Duration
	MercadoPagoAccessToken string
	NotificationQueueSize  int

	// Expiry sweeper; an interval of zero disables it
	ExpirySweepInterval time.Duration
	SweepBatchSize      int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	tz := getEnv("TIMEZONE", "Asia/Kolkata")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", tz, err)
	}

	config := &Config{
		AppVersion:       getEnv("APP_VERSION", "1.0.0"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		MetricsNamespace: getEnv("METRICS_NAMESPACE", "mealchange"),

		Port:         getEnv("PORT", "8080"),
		ReadTimeout:  time.Duration(getEnvAsInt("READ_TIMEOUT", 30)) * time.Second,
		WriteTimeout: time.Duration(getEnvAsInt("WRITE_TIMEOUT", 30)) * time.Second,

		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		DynamoDBEndpoint:   getEnv("DYNAMODB_ENDPOINT", ""),
		AWSAccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),

		Location: loc,
		Currency: getEnv("CURRENCY", "INR"),

		PaymentTimeout:         getEnvAsDuration("PAYMENT_TIMEOUT", 15*time.Second),
		OrderSyncTimeout:       getEnvAsDuration("ORDER_SYNC_TIMEOUT", 5*time.Second),
		MercadoPagoAccessToken: getEnv("MERCADOPAGO_ACCESS_TOKEN", ""),
		NotificationQueueSize:  getEnvAsInt("NOTIFICATION_QUEUE_SIZE", 256),

		ExpirySweepInterval: getEnvAsDuration("EXPIRY_SWEEP_INTERVAL", 5*time.Minute),
		SweepBatchSize:      getEnvAsInt("EXPIRY_SWEEP_BATCH", 100),
	}

	return config, nil
}

// Helper functions to get environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
