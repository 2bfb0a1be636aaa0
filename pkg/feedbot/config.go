package feedbot

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the liquidity bot.
type Config struct {
	// Engine connection settings
	ServerAddr     string
	RequestTimeout time.Duration

	// Quoting parameters
	NumLevels         int
	ReferencePrice    float64
	BaseSpreadPercent float64
	PriceStepPercent  float64
	OrderSize         int64
	UpdateInterval    time.Duration
	BotID             string
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	v := viper.New()

	v.SetDefault("LIMITBOOK_SERVER_ADDR", "http://localhost:8080")
	v.SetDefault("REQUEST_TIMEOUT_SECONDS", 5)
	v.SetDefault("NUM_LEVELS", 3)
	v.SetDefault("REFERENCE_PRICE", 100.0)
	v.SetDefault("BASE_SPREAD_PERCENT", 0.1)
	v.SetDefault("PRICE_STEP_PERCENT", 0.05)
	v.SetDefault("ORDER_SIZE", 10)
	v.SetDefault("UPDATE_INTERVAL_SECONDS", 10)
	v.SetDefault("BOT_ID", "feedbot-01")

	v.AutomaticEnv()

	cfg := &Config{
		ServerAddr:        v.GetString("LIMITBOOK_SERVER_ADDR"),
		RequestTimeout:    time.Duration(v.GetInt("REQUEST_TIMEOUT_SECONDS")) * time.Second,
		NumLevels:         v.GetInt("NUM_LEVELS"),
		ReferencePrice:    v.GetFloat64("REFERENCE_PRICE"),
		BaseSpreadPercent: v.GetFloat64("BASE_SPREAD_PERCENT"),
		PriceStepPercent:  v.GetFloat64("PRICE_STEP_PERCENT"),
		OrderSize:         v.GetInt64("ORDER_SIZE"),
		UpdateInterval:    time.Duration(v.GetInt("UPDATE_INTERVAL_SECONDS")) * time.Second,
		BotID:             v.GetString("BOT_ID"),
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.ServerAddr == "" {
		return fmt.Errorf("LIMITBOOK_SERVER_ADDR must not be empty")
	}
	if cfg.NumLevels <= 0 {
		return fmt.Errorf("NUM_LEVELS must be positive")
	}
	if cfg.ReferencePrice <= 0 {
		return fmt.Errorf("REFERENCE_PRICE must be positive")
	}
	if cfg.BaseSpreadPercent <= 0 {
		return fmt.Errorf("BASE_SPREAD_PERCENT must be positive")
	}
	if cfg.PriceStepPercent <= 0 {
		return fmt.Errorf("PRICE_STEP_PERCENT must be positive")
	}
	if cfg.OrderSize <= 0 {
		return fmt.Errorf("ORDER_SIZE must be positive")
	}
	if cfg.UpdateInterval <= 0 {
		return fmt.Errorf("UPDATE_INTERVAL_SECONDS must be positive")
	}
	if cfg.BotID == "" {
		return fmt.Errorf("BOT_ID must not be empty")
	}
	return nil
}
