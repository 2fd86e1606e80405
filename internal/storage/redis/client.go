package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Addr        string        `env:"REDIS_ADDR,default=localhost:6379"`
	Password    string        `env:"REDIS_PASSWORD"`
	DB          int           `env:"REDIS_DB,default=0"`
	KeyPrefix   string        `env:"REDIS_KEY_PREFIX,default=notifyqueue"`
	DialTimeout time.Duration `env:"REDIS_DIAL_TIMEOUT,default=5s"`
}

// to help with testing
var envProcess = envconfig.Process

func LoadConfigFromEnv(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envProcess(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env config: %w", err)
	}

	var errors []string
	if strings.TrimSpace(cfg.Addr) == "" {
		errors = append(errors, "REDIS_ADDR is required")
	}
	if cfg.DB < 0 {
		errors = append(errors, "REDIS_DB must be non-negative")
	}
	if strings.TrimSpace(cfg.KeyPrefix) == "" {
		errors = append(errors, "REDIS_KEY_PREFIX is required")
	}
	if len(errors) > 0 {
		return nil, fmt.Errorf("config validation failed: %s", strings.Join(errors, "; "))
	}

	return &cfg, nil
}

// Connect opens a client and checks the server answers.
func Connect(ctx context.Context, cfg *Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis connect %s: %w", cfg.Addr, err)
	}
	return rdb, nil
}
