package config

import (
	"fmt"
	"time"

	"github.com/Netflix/go-env"

	"github.com/agribuddy/notify-engine/internal/provider"
	"github.com/agribuddy/notify-engine/internal/ratelimit"
)

type Config struct {
	// Optional infrastructure. Empty value disables the integration:
	// without a DSN there is no delivery log, without a RabbitMQ URL the
	// async endpoint and worker are unavailable, without Redis the
	// in-memory rate limiter is used.
	DatabaseDSN string `env:"DATABASE_DSN"`
	RabbitMQURL string `env:"RABBITMQ_URL"`
	RedisURL    string `env:"REDIS_URL"`

	// SMS carriers. A provider is enabled when its credentials are set.
	AfricasTalkingUsername string `env:"AFRICASTALKING_USERNAME"`
	AfricasTalkingAPIKey   string `env:"AFRICASTALKING_API_KEY"`
	TwilioAccountSID       string `env:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken        string `env:"TWILIO_AUTH_TOKEN"`
	TwilioFromNumber       string `env:"TWILIO_PHONE_NUMBER"`
	MTNAPIKey              string `env:"MTN_API_KEY"`
	MTNAPISecret           string `env:"MTN_API_SECRET"`
	MTNAPIURL              string `env:"MTN_API_URL"`
	AirtelAPIKey           string `env:"AIRTEL_API_KEY"`
	AirtelAPISecret        string `env:"AIRTEL_API_SECRET"`
	AirtelAPIURL           string `env:"AIRTEL_API_URL"`
	SMSTestMode            bool   `env:"SMS_TEST_MODE,default=false"`
	SMSSenderID            string `env:"SMS_SENDER_ID,default=AgriBuddy"`
	DefaultCountry         string `env:"DEFAULT_COUNTRY,default=UG"`

	// SMTP email.
	SMTPHost       string `env:"SMTP_HOST"`
	SMTPPort       int    `env:"SMTP_PORT,default=587"`
	SMTPUsername   string `env:"SMTP_USERNAME"`
	SMTPPassword   string `env:"SMTP_PASSWORD"`
	SMTPFrom       string `env:"SMTP_FROM"`
	SMTPEncryption string `env:"SMTP_ENCRYPTION,default=starttls"`

	// Per-recipient rate limiting.
	RateLimitWindowMinutes int  `env:"RATE_LIMIT_WINDOW_MINUTES,default=60"`
	RateLimitMaxPerWindow  int  `env:"RATE_LIMIT_MAX_PER_WINDOW,default=10"`
	RateLimitSMS           bool `env:"RATE_LIMIT_SMS,default=false"`
	RateLimitEmail         bool `env:"RATE_LIMIT_EMAIL,default=true"`

	// Bulk dispatch back-pressure.
	BulkBatchSize    int `env:"BULK_BATCH_SIZE,default=10"`
	BulkBatchDelayMs int `env:"BULK_BATCH_DELAY_MS,default=1000"`

	WorkerConcurrency int    `env:"WORKER_CONCURRENCY,default=8"`
	APIPort           int    `env:"API_PORT,default=8080"`
	LogLevel          string `env:"LOG_LEVEL,default=info"`
}

func Load() (*Config, error) {
	var cfg Config
	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// ProviderSettings maps the carrier credential block for the registry.
func (c *Config) ProviderSettings() provider.Settings {
	return provider.Settings{
		AfricasTalkingUsername: c.AfricasTalkingUsername,
		AfricasTalkingAPIKey:   c.AfricasTalkingAPIKey,
		TwilioAccountSID:       c.TwilioAccountSID,
		TwilioAuthToken:        c.TwilioAuthToken,
		TwilioFromNumber:       c.TwilioFromNumber,
		MTNAPIKey:              c.MTNAPIKey,
		MTNAPISecret:           c.MTNAPISecret,
		MTNAPIURL:              c.MTNAPIURL,
		AirtelAPIKey:           c.AirtelAPIKey,
		AirtelAPISecret:        c.AirtelAPISecret,
		AirtelAPIURL:           c.AirtelAPIURL,
		TestMode:               c.SMSTestMode,
	}
}

// RateLimitConfig maps the fixed-window parameters for the limiter.
func (c *Config) RateLimitConfig() ratelimit.Config {
	return ratelimit.Config{
		Window:       time.Duration(c.RateLimitWindowMinutes) * time.Minute,
		MaxPerWindow: c.RateLimitMaxPerWindow,
	}
}

// BulkDelay is the pause between bulk dispatch chunks.
func (c *Config) BulkDelay() time.Duration {
	return time.Duration(c.BulkBatchDelayMs) * time.Millisecond
}

// EmailEnabled reports whether SMTP delivery is configured.
func (c *Config) EmailEnabled() bool {
	return c.SMTPHost != "" && c.SMTPFrom != ""
}
