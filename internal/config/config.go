package config

import (
	"time"

	"github.com/Elishanunana/hostel-booking-app-backend-deploy/pkg/config"
	"github.com/spf13/viper"
)

// PaystackConfig holds payment gateway configuration. The secret key also signs
// webhook notifications.
type PaystackConfig struct {
	SecretKey   string
	BaseURL     string
	CallbackURL string
}

// PaymentConfig holds reconciliation settings.
type PaymentConfig struct {
	Gateway         string
	Currency        string
	AmountTolerance int64
}

// WebhookConfig holds webhook rate limiting settings.
type WebhookConfig struct {
	RateLimit  int
	RateWindow time.Duration
}

// ServiceConfig holds all configuration for the booking service.
type ServiceConfig struct {
	Port           string
	AppEnv         string
	MigrationsDir  string
	TrustedProxies []string
	DBConfig       config.DatabaseConfig
	JWTConfig      config.JWTConfig
	KafkaConfig    config.KafkaConfig
	RedisConfig    config.RedisConfig
	PaystackConfig PaystackConfig
	PaymentConfig  PaymentConfig
	WebhookConfig  WebhookConfig
}

// Load reads configuration from environment variables and returns a ServiceConfig.
func Load() (*ServiceConfig, error) {
	v, err := config.Load("hostel-booking")
	if err != nil {
		return nil, err
	}

	v.SetDefault("MIGRATIONS_DIR", "migrations")
	v.SetDefault("PAYSTACK_BASE_URL", "https://api.paystack.co")
	v.SetDefault("PAYMENT_GATEWAY", "mock")
	v.SetDefault("PAYMENT_CURRENCY", "GHS")
	v.SetDefault("PAYMENT_AMOUNT_TOLERANCE", 1)
	v.SetDefault("WEBHOOK_RATE_LIMIT", 10)
	v.SetDefault("WEBHOOK_RATE_WINDOW", time.Minute)

	return &ServiceConfig{
		Port:           config.GetServicePort(v, "SERVICE_PORT"),
		AppEnv:         config.GetAppEnv(v),
		MigrationsDir:  v.GetString("MIGRATIONS_DIR"),
		TrustedProxies: config.GetList(v, "TRUSTED_PROXIES"),
		DBConfig:       config.LoadDatabaseConfig(v, "DB_NAME"),
		JWTConfig:      config.LoadJWTConfig(v),
		KafkaConfig:    config.LoadKafkaConfig(v),
		RedisConfig:    config.LoadRedisConfig(v),
		PaystackConfig: loadPaystackConfig(v),
		PaymentConfig:  loadPaymentConfig(v),
		WebhookConfig:  loadWebhookConfig(v),
	}, nil
}

func loadPaystackConfig(v *viper.Viper) PaystackConfig {
	return PaystackConfig{
		SecretKey:   v.GetString("PAYSTACK_SECRET_KEY"),
		BaseURL:     v.GetString("PAYSTACK_BASE_URL"),
		CallbackURL: v.GetString("PAYSTACK_CALLBACK_URL"),
	}
}

func loadPaymentConfig(v *viper.Viper) PaymentConfig {
	tolerance := v.GetInt64("PAYMENT_AMOUNT_TOLERANCE")
	if tolerance < 0 {
		tolerance = 0
	}
	return PaymentConfig{
		Gateway:         v.GetString("PAYMENT_GATEWAY"),
		Currency:        v.GetString("PAYMENT_CURRENCY"),
		AmountTolerance: tolerance,
	}
}

func loadWebhookConfig(v *viper.Viper) WebhookConfig {
	limit := v.GetInt("WEBHOOK_RATE_LIMIT")
	if limit <= 0 {
		limit = 10
	}
	window := v.GetDuration("WEBHOOK_RATE_WINDOW")
	if window <= 0 {
		window = time.Minute
	}
	return WebhookConfig{RateLimit: limit, RateWindow: window}
}
