package config

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	pkgconfig "github.com/bloghead/payments/pkg/config"
	"github.com/bloghead/payments/pkg/logger"
	"github.com/bloghead/payments/pkg/messaging"
)

// EnvPrefix prefixes every environment override, e.g. BLOGHEAD_DATABASE_HOST.
const EnvPrefix = "BLOGHEAD"

type Config struct {
	Service  ServiceConfig         `yaml:"service"`
	Database DatabaseConfig        `yaml:"database"`
	Server   ServerConfig          `yaml:"server"`
	Log      logger.Config         `yaml:"log"`
	Redis    messaging.RedisConfig `yaml:"redis"`
}

// LoadConfig reads CONFIG_PATH (default ./configs/payment.yaml) and applies
// BLOGHEAD_* environment overrides.
func LoadConfig() (*Config, error) {
	var cfg Config
	err := pkgconfig.Load(pkgconfig.Options{
		Name:      "payment",
		EnvPrefix: EnvPrefix,
		Defaults:  defaults(),
	}, &cfg)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// defaults lists every key so environment overrides work even when the
// file omits them.
func defaults() map[string]interface{} {
	return map[string]interface{}{
		"service.name":                  "payment",
		"service.environment":           "development",
		"service.client_url":            "http://localhost:3000",
		"service.stripe_secret_key":     "",
		"service.stripe_webhook_secret": "",
		"service.platform_fee_percent":  "10",
		"service.supabase.jwt_secret":   "",

		"database.host":               "localhost",
		"database.port":               5432,
		"database.name":               "bloghead",
		"database.user":               "postgres",
		"database.password":           "",
		"database.ssl_mode":           "disable",
		"database.max_open_conns":     25,
		"database.max_idle_conns":     5,
		"database.conn_max_lifetime":  "30m",
		"database.conn_max_idle_time": "5m",
		"database.slow_threshold":     "200ms",
		"database.auto_migrate":       false,

		"server.http.host": "0.0.0.0",
		"server.http.port": 8080,
		"server.grpc.host": "0.0.0.0",
		"server.grpc.port": 9090,

		"log.level":  "info",
		"log.format": "json",
		"log.output": "stdout",

		"redis.enabled":  false,
		"redis.addr":     "localhost:6379",
		"redis.password": "",
		"redis.db":       0,
	}
}

// Validate checks the keys the service cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.Service.StripeSecretKey == "" {
		errs = append(errs, errors.New("service.stripe_secret_key is required"))
	}
	if c.Service.StripeWebhookSecret == "" {
		errs = append(errs, errors.New("service.stripe_webhook_secret is required"))
	}
	if c.Service.Supabase.JWTSecret == "" {
		errs = append(errs, errors.New("service.supabase.jwt_secret is required"))
	}
	if c.Service.ClientURL == "" {
		errs = append(errs, errors.New("service.client_url is required"))
	}
	fee, err := c.Service.FeePercent()
	if err != nil {
		errs = append(errs, err)
	} else if fee.IsNegative() || fee.GreaterThanOrEqual(decimal.NewFromInt(100)) {
		errs = append(errs, fmt.Errorf("service.platform_fee_percent must be in [0, 100), got %s", fee))
	}
	if c.Database.Host == "" || c.Database.Name == "" {
		errs = append(errs, errors.New("database.host and database.name are required"))
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		errs = append(errs, errors.New("redis.addr is required when redis is enabled"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}
