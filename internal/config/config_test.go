package config

import (
	"os"
	"testing"

	"github.com/spf13/viper"
)

func TestLoadConfig_Defaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	unsetEnvWithCleanup(t, "SERVER_PORT")
	unsetEnvWithCleanup(t, "PORT")
	unsetEnvWithCleanup(t, "SUBSCRIPTION_PRICE_CENTS")
	unsetEnvWithCleanup(t, "SUBSCRIPTION_PRICE")
	unsetEnvWithCleanup(t, "SUBSCRIPTION_EXPIRY_SCHEDULE")
	unsetEnvWithCleanup(t, "GENERATION_RATE_LIMIT_PER_MINUTE")
	unsetEnvWithCleanup(t, "REDIS_RATE_LIMIT_PREFIX")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.ServerPort != "8080" {
		t.Fatalf("expected default ServerPort 8080, got %q", cfg.ServerPort)
	}
	if cfg.SubscriptionPriceCents != 999 {
		t.Fatalf("expected default SubscriptionPriceCents 999, got %d", cfg.SubscriptionPriceCents)
	}
	if cfg.SubscriptionExpirySchedule != "@hourly" {
		t.Fatalf("expected default SubscriptionExpirySchedule @hourly, got %q", cfg.SubscriptionExpirySchedule)
	}
	if cfg.GenerationRateLimitPerMinute != 10 {
		t.Fatalf("expected default GenerationRateLimitPerMinute 10, got %d", cfg.GenerationRateLimitPerMinute)
	}
	if cfg.RedisRateLimitPrefix != "brandforge:rate_limit" {
		t.Fatalf("expected default RedisRateLimitPrefix, got %q", cfg.RedisRateLimitPrefix)
	}
}

func TestLoadConfig_PortEnvOverridesServerPort(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	setEnvWithCleanup(t, "SERVER_PORT", "8080")
	setEnvWithCleanup(t, "PORT", "9090")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.ServerPort != "9090" {
		t.Fatalf("expected PORT to override ServerPort, got %q", cfg.ServerPort)
	}
}

func TestLoadConfig_SubscriptionPriceWholeUnitsAlias(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	unsetEnvWithCleanup(t, "SUBSCRIPTION_PRICE_CENTS")
	setEnvWithCleanup(t, "SUBSCRIPTION_PRICE", "19.99")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.SubscriptionPriceCents != 1999 {
		t.Fatalf("expected SUBSCRIPTION_PRICE to convert to 1999 cents, got %d", cfg.SubscriptionPriceCents)
	}
}

func TestLoadConfig_NegativeSubscriptionPriceCoercedToZero(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	unsetEnvWithCleanup(t, "SUBSCRIPTION_PRICE")
	setEnvWithCleanup(t, "SUBSCRIPTION_PRICE_CENTS", "-500")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.SubscriptionPriceCents != 0 {
		t.Fatalf("expected negative price to coerce to 0, got %d", cfg.SubscriptionPriceCents)
	}
}

func setEnvWithCleanup(t *testing.T, key string, value string) {
	t.Helper()
	prev, hadPrev := os.LookupEnv(key)
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("failed to set env %s: %v", key, err)
	}
	t.Cleanup(func() {
		if hadPrev {
			_ = os.Setenv(key, prev)
			return
		}
		_ = os.Unsetenv(key)
	})
}

func unsetEnvWithCleanup(t *testing.T, key string) {
	t.Helper()
	prev, hadPrev := os.LookupEnv(key)
	if err := os.Unsetenv(key); err != nil {
		t.Fatalf("failed to unset env %s: %v", key, err)
	}
	t.Cleanup(func() {
		if hadPrev {
			_ = os.Setenv(key, prev)
			return
		}
		_ = os.Unsetenv(key)
	})
}
