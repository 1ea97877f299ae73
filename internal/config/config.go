// Package config loads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // TIMEZONE must resolve on hosts without a zoneinfo database

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/mmynk/swisscoin/internal/calculator"
	"github.com/mmynk/swisscoin/internal/money"
)

type Config struct {
	Server struct {
		Port            int           `envconfig:"PORT" default:"8080"`
		ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
		CORSOrigins     []string      `envconfig:"CORS_ORIGINS" default:"*"`
	}

	DB struct {
		Path string `envconfig:"DB_PATH" default:"./data/swisscoin.db"`
	}

	Auth struct {
		JWTSecret string        `envconfig:"JWT_SECRET"`
		TokenTTL  time.Duration `envconfig:"TOKEN_TTL" default:"24h"`
	}

	Ledger struct {
		Currency         string `envconfig:"CURRENCY" default:"CHF"`
		SettlementPolicy string `envconfig:"SETTLEMENT_POLICY" default:"reject"`
		TimeZone         string `envconfig:"TIMEZONE" default:"UTC"`
	}

	Log struct {
		Level  string `envconfig:"LOG_LEVEL" default:"info"`
		Format string `envconfig:"LOG_FORMAT" default:"pretty"`
	}
}

// Ledger holds the parsed bookkeeping settings.
type Ledger struct {
	Currency money.Currency
	Policy   calculator.SettlementPolicy
	Location *time.Location
}

// Load reads an optional .env file, then the environment, and validates the result.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d out of range", c.Server.Port))
	}
	if c.DB.Path == "" {
		errs = append(errs, errors.New("DB_PATH is required"))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if f := strings.ToLower(c.Log.Format); f != "pretty" && f != "json" {
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be pretty or json, got %q", c.Log.Format))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("TOKEN_TTL must be positive, got %s", c.Auth.TokenTTL))
	}
	if _, err := c.ParseLedger(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ParseLedger resolves the currency, settlement policy and time zone.
func (c *Config) ParseLedger() (Ledger, error) {
	currency, err := money.Lookup(c.Ledger.Currency)
	if err != nil {
		return Ledger{}, fmt.Errorf("CURRENCY: %w", err)
	}
	policy, err := calculator.ParseSettlementPolicy(c.Ledger.SettlementPolicy)
	if err != nil {
		return Ledger{}, fmt.Errorf("SETTLEMENT_POLICY: %w", err)
	}
	loc, err := time.LoadLocation(c.Ledger.TimeZone)
	if err != nil {
		return Ledger{}, fmt.Errorf("TIMEZONE: %w", err)
	}
	return Ledger{Currency: currency, Policy: policy, Location: loc}, nil
}
