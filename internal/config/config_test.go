package config

import (
	"strings"
	"testing"
	"time"

	"github.com/mmynk/swisscoin/internal/calculator"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Log.Format != "pretty" {
		t.Errorf("Log.Format = %q, want pretty", cfg.Log.Format)
	}
	if cfg.Auth.TokenTTL != 24*time.Hour {
		t.Errorf("TokenTTL = %s, want 24h", cfg.Auth.TokenTTL)
	}
	if len(cfg.Server.CORSOrigins) != 1 || cfg.Server.CORSOrigins[0] != "*" {
		t.Errorf("CORSOrigins = %v, want [*]", cfg.Server.CORSOrigins)
	}

	ledger, err := cfg.ParseLedger()
	if err != nil {
		t.Fatalf("ParseLedger failed: %v", err)
	}
	if ledger.Currency.Code != "CHF" || ledger.Policy != calculator.SettlementReject || ledger.Location != time.UTC {
		t.Errorf("ledger = %+v, want CHF, reject, UTC", ledger)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("PORT", "9090")
	t.Setenv("CURRENCY", "jpy")
	t.Setenv("SETTLEMENT_POLICY", "clamp")
	t.Setenv("TIMEZONE", "Europe/Zurich")
	t.Setenv("CORS_ORIGINS", "http://localhost:3000,https://swisscoin.app")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Server.Port)
	}
	if len(cfg.Server.CORSOrigins) != 2 {
		t.Errorf("CORSOrigins = %v, want two origins", cfg.Server.CORSOrigins)
	}

	ledger, err := cfg.ParseLedger()
	if err != nil {
		t.Fatalf("ParseLedger failed: %v", err)
	}
	if ledger.Currency.Code != "JPY" || ledger.Currency.Exponent != 0 {
		t.Errorf("Currency = %+v, want JPY with no minor unit", ledger.Currency)
	}
	if ledger.Policy != calculator.SettlementClamp {
		t.Errorf("Policy = %s, want clamp", ledger.Policy)
	}
	if ledger.Location.String() != "Europe/Zurich" {
		t.Errorf("Location = %s, want Europe/Zurich", ledger.Location)
	}
}

func TestValidate(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("CURRENCY", "XXX")
	t.Setenv("SETTLEMENT_POLICY", "ignore")
	t.Setenv("LOG_FORMAT", "xml")

	_, err := Load()
	if err == nil {
		t.Fatal("Load succeeded, want error")
	}
	for _, want := range []string{"JWT_SECRET", "CURRENCY", "LOG_FORMAT"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}
