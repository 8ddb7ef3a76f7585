/**
 * @description
 * This package handles the configuration management for the service. It uses the
 * Viper library to read configuration from environment variables, providing a
 * centralized and straightforward way to manage application settings.
 *
 * @dependencies
 * - github.com/spf13/viper: A popular library for Go application configuration.
 */

package config

import (
	"log"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all the configuration variables for the brand-service.
// These values are loaded from environment variables.
type Config struct {
	ServerPort                   string `mapstructure:"SERVER_PORT"`
	DatabaseURL                  string `mapstructure:"DATABASE_URL"`
	RedisURL                     string `mapstructure:"REDIS_URL"`
	RedisRateLimitPrefix         string `mapstructure:"REDIS_RATE_LIMIT_PREFIX"`
	RabbitMQURL                  string `mapstructure:"RABBITMQ_URL"`
	GenAIAPIBaseURL              string `mapstructure:"GENAI_API_BASE_URL"`
	GenAIAPIKey                  string `mapstructure:"GENAI_API_KEY"`
	PaymentAPIBaseURL            string `mapstructure:"PAYMENT_API_BASE_URL"`
	PaymentAPIKey                string `mapstructure:"PAYMENT_API_KEY"`
	AuthJWKSURL                  string `mapstructure:"AUTH_JWKS_URL"`
	AdminBootstrapEmail          string `mapstructure:"ADMIN_BOOTSTRAP_EMAIL"`
	SubscriptionPriceCents       int64  `mapstructure:"SUBSCRIPTION_PRICE_CENTS"`
	SubscriptionExpirySchedule   string `mapstructure:"SUBSCRIPTION_EXPIRY_SCHEDULE"`
	GenerationRateLimitPerMinute int    `mapstructure:"GENERATION_RATE_LIMIT_PER_MINUTE"`
}

// LoadConfig reads configuration from environment variables from the given path.
// It uses Viper to automatically bind environment variables to the Config struct.
func LoadConfig(path string) (config Config, err error) {
	// Tell viper the path to look for the optional .env file.
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	// Enable automatic binding of environment variables.
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("REDIS_RATE_LIMIT_PREFIX", "brandforge:rate_limit")
	viper.SetDefault("SUBSCRIPTION_PRICE_CENTS", 999)
	viper.SetDefault("SUBSCRIPTION_EXPIRY_SCHEDULE", "@hourly")
	viper.SetDefault("GENERATION_RATE_LIMIT_PER_MINUTE", 10)

	// Bind environment variables explicitly to ensure they appear in Unmarshal
	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("PORT")
	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("REDIS_URL", "REDIS_URL", "BRAND_REDIS_URL")
	_ = viper.BindEnv("REDIS_RATE_LIMIT_PREFIX")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("GENAI_API_BASE_URL")
	_ = viper.BindEnv("GENAI_API_KEY")
	_ = viper.BindEnv("PAYMENT_API_BASE_URL")
	_ = viper.BindEnv("PAYMENT_API_KEY")
	_ = viper.BindEnv("AUTH_JWKS_URL")
	_ = viper.BindEnv("ADMIN_BOOTSTRAP_EMAIL")
	_ = viper.BindEnv("SUBSCRIPTION_PRICE_CENTS")
	_ = viper.BindEnv("SUBSCRIPTION_PRICE")
	_ = viper.BindEnv("SUBSCRIPTION_EXPIRY_SCHEDULE")
	_ = viper.BindEnv("GENERATION_RATE_LIMIT_PER_MINUTE")

	// Attempt to read the config file. It's okay if it doesn't exist.
	if err = viper.ReadInConfig(); err != nil {
		// If the config file is not found, we can ignore the error.
		// For other errors, we should return them.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("level=warn component=config msg=\"failed to read config file; using environment values\" err=%v", err)
		}
	}

	// Unmarshal the configuration into the Config struct.
	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		config.ServerPort = port
	}
	config.RedisURL = strings.TrimSpace(config.RedisURL)
	config.RedisRateLimitPrefix = strings.TrimSpace(config.RedisRateLimitPrefix)
	if config.RedisRateLimitPrefix == "" {
		config.RedisRateLimitPrefix = "brandforge:rate_limit"
	}
	config.AdminBootstrapEmail = strings.TrimSpace(config.AdminBootstrapEmail)

	// Allow specifying the subscription price in whole currency units via SUBSCRIPTION_PRICE.
	if viper.IsSet("SUBSCRIPTION_PRICE") {
		priceStr := strings.TrimSpace(viper.GetString("SUBSCRIPTION_PRICE"))
		if priceStr != "" {
			priceValue, parseErr := strconv.ParseFloat(priceStr, 64)
			if parseErr != nil {
				log.Printf("level=warn component=config msg=\"invalid SUBSCRIPTION_PRICE\" value=%q err=%v", priceStr, parseErr)
			} else {
				config.SubscriptionPriceCents = int64(math.Round(priceValue * 100))
			}
		}
	}

	if config.SubscriptionPriceCents < 0 {
		log.Printf("level=warn component=config msg=\"negative subscription price configured; coercing to zero\" price_cents=%d", config.SubscriptionPriceCents)
		config.SubscriptionPriceCents = 0
	}

	if strings.TrimSpace(config.SubscriptionExpirySchedule) == "" {
		config.SubscriptionExpirySchedule = "@hourly"
	}
	if config.GenerationRateLimitPerMinute <= 0 {
		config.GenerationRateLimitPerMinute = 10
	}

	return
}
