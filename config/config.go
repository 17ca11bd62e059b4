package config

import (
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"planify/internal/gateway/razorpay"
)

type Config struct {
	// Server configuration
	Port        string
	Environment string

	// Redis configuration
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// PubNub configuration
	PubNubPublishKey   string
	PubNubSubscribeKey string
	PubNubSecretKey    string

	// Payment gateway configuration
	Razorpay razorpay.Config

	// Booking policy
	DefaultAdvancePercentage decimal.Decimal
	CommissionRate           decimal.Decimal
	Currency                 string

	// Timeout configuration
	SettleLockTimeout time.Duration
	OrderMapTTL       time.Duration

	// Monitoring
	EnableMetrics bool
	MetricsPort   string
}

func LoadConfig() *Config {
	return &Config{
		// Server
		Port:        getEnv("PORT", "8090"),
		Environment: getEnv("ENVIRONMENT", "development"),

		// Redis
		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		// PubNub
		PubNubPublishKey:   getEnv("PUBNUB_PUBLISH_KEY", ""),
		PubNubSubscribeKey: getEnv("PUBNUB_SUBSCRIBE_KEY", ""),
		PubNubSecretKey:    getEnv("PUBNUB_SECRET_KEY", ""),

		// Razorpay
		Razorpay: razorpay.Config{
			BaseURL:       getEnv("RAZORPAY_BASE_URL", "https://api.razorpay.com"),
			KeyID:         getEnv("RAZORPAY_KEY_ID", ""),
			KeySecret:     getEnv("RAZORPAY_KEY_SECRET", ""),
			WebhookSecret: getEnv("RAZORPAY_WEBHOOK_SECRET", ""),
		},

		// Booking policy
		DefaultAdvancePercentage: getEnvAsDecimal("DEFAULT_ADVANCE_PERCENTAGE", "20"),
		CommissionRate:           getEnvAsDecimal("COMMISSION_RATE", "10"),
		Currency:                 getEnv("CURRENCY", "INR"),

		// Timeouts
		SettleLockTimeout: getEnvAsDuration("SETTLE_LOCK_TIMEOUT", "30s"),
		OrderMapTTL:       getEnvAsDuration("ORDER_MAP_TTL", "24h"),

		// Monitoring
		EnableMetrics: getEnvAsBool("ENABLE_METRICS", true),
		MetricsPort:   getEnv("METRICS_PORT", "9090"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	// If parsing fails, try to parse default value
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}

func getEnvAsDecimal(key string, defaultValue string) decimal.Decimal {
	valueStr := getEnv(key, defaultValue)
	if value, err := decimal.NewFromString(valueStr); err == nil {
		return value
	}
	value, _ := decimal.NewFromString(defaultValue)
	return value
}
