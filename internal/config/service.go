package config

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type ServiceConfig struct {
	Name                string         `yaml:"name"`
	Environment         string         `yaml:"environment"`
	ClientURL           string         `yaml:"client_url"`
	StripeSecretKey     string         `yaml:"stripe_secret_key"`
	StripeWebhookSecret string         `yaml:"stripe_webhook_secret"`
	PlatformFeePercent  string         `yaml:"platform_fee_percent"`
	Supabase            SupabaseConfig `yaml:"supabase"`
}

type SupabaseConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

// FeePercent parses the platform fee, e.g. "10" or "12.5".
func (c ServiceConfig) FeePercent() (decimal.Decimal, error) {
	fee, err := decimal.NewFromString(c.PlatformFeePercent)
	if err != nil {
		return decimal.Zero, fmt.Errorf("service.platform_fee_percent %q: %w", c.PlatformFeePercent, err)
	}
	return fee, nil
}

// IsProduction reports whether the service runs in production.
func (c ServiceConfig) IsProduction() bool {
	return c.Environment == "production"
}
