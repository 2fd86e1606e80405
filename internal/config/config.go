package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sethvargo/go-envconfig"
)

const (
	StoreBackendPostgres = "postgres"
	StoreBackendSQLite   = "sqlite"
	StoreBackendRedis    = "redis"
)

// Config holds process-level settings. Store specific settings are loaded by
// the store packages themselves.
type Config struct {
	Env      string `env:"APP_ENV,default=development" validate:"required"`
	LogLevel string `env:"LOG_LEVEL,default=info" validate:"oneof=debug info warn error"`
	HTTPAddr string `env:"HTTP_ADDR,default=:8080" validate:"required"`

	StoreBackend string `env:"STORE_BACKEND,default=postgres" validate:"oneof=postgres sqlite redis"`
	SQLitePath   string `env:"SQLITE_PATH,default=notifications.db"`

	Pacing             time.Duration `env:"QUEUE_PACING,default=100ms" validate:"gte=0"`
	SendTimeout        time.Duration `env:"QUEUE_SEND_TIMEOUT,default=30s" validate:"gt=0"`
	BackoffBase        time.Duration `env:"QUEUE_BACKOFF_BASE,default=1s" validate:"gt=0"`
	BackoffMax         time.Duration `env:"QUEUE_BACKOFF_MAX,default=0s" validate:"gte=0"`
	BackoffJitter      bool          `env:"QUEUE_BACKOFF_JITTER,default=false"`
	StoreRetryDelay    time.Duration `env:"QUEUE_STORE_RETRY_DELAY,default=2s" validate:"gt=0"`
	DefaultMaxAttempts int           `env:"QUEUE_DEFAULT_MAX_ATTEMPTS,default=3" validate:"gte=1,lte=20"`
	Retention          time.Duration `env:"QUEUE_RETENTION,default=1h" validate:"gt=0"`
	CleanupSchedule    string        `env:"QUEUE_CLEANUP_SCHEDULE,default=@every 10m" validate:"required"`
	ShutdownTimeout    time.Duration `env:"SHUTDOWN_TIMEOUT,default=15s" validate:"gt=0"`

	SMTPHost        string `env:"SMTP_HOST"`
	SMTPPort        int    `env:"SMTP_PORT,default=587" validate:"gte=1,lte=65535"`
	SMTPUsername    string `env:"SMTP_USERNAME"`
	SMTPPassword    string `env:"SMTP_PASSWORD"`
	MailFrom        string `env:"MAIL_FROM,default=no-reply@shop.local" validate:"required,email"`
	AdminEmail      string `env:"ADMIN_EMAIL" validate:"omitempty,email"`
	AdminWebhookURL string `env:"ADMIN_WEBHOOK_URL" validate:"omitempty,url"`
}

// to help with testing
var envProcess = envconfig.Process

var validate = validator.New()

func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envProcess(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func validateConfig(cfg *Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	var errors []string
	for _, e := range verrs {
		errors = append(errors, fmt.Sprintf("%s failed %s", e.Field(), e.Tag()))
	}
	return fmt.Errorf("%s", strings.Join(errors, "; "))
}
