package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default tuning failed validation: %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Tuning)
	}{
		{"zero phase 2 countdown", func(c *Tuning) { c.Phase2Seconds = 0 }},
		{"zero trade ttl", func(c *Tuning) { c.TradeTTLSeconds = 0 }},
		{"max level below 1", func(c *Tuning) { c.MaxRoboticonLevel = 0 }},
		{"too few upgrade tiers", func(c *Tuning) { c.UpgradeCosts = []int{10} }},
		{"decreasing upgrade costs", func(c *Tuning) { c.UpgradeCosts = []int{20, 10} }},
		{"missing market entry", func(c *Tuning) { delete(c.Market, "ORE") }},
		{"free market base price", func(c *Tuning) {
			c.Market["ENERGY"] = MarketEntry{Stock: 16, BasePrice: 0}
		}},
		{"negative market money", func(c *Tuning) { c.MarketMoney = -1 }},
		{"unknown starting resource", func(c *Tuning) { c.StartingLedger["GOLD"] = 5 }},
		{"negative starting amount", func(c *Tuning) { c.StartingLedger["MONEY"] = -1 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Expected validation error, got nil")
			}
		})
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	body := []byte("phase2_seconds: 10\ntrade_ttl_seconds: 7\nmarket_money: 250\n")
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Phase2Duration() != 10*time.Second {
		t.Errorf("Expected 10s phase-2 countdown, got %v", cfg.Phase2Duration())
	}
	if cfg.TradeTTL() != 7*time.Second {
		t.Errorf("Expected 7s trade ttl, got %v", cfg.TradeTTL())
	}
	if cfg.MarketMoney != 250 {
		t.Errorf("Expected market money 250, got %d", cfg.MarketMoney)
	}
	// Untouched keys keep the defaults.
	if cfg.Phase3Seconds != 45 {
		t.Errorf("Expected default phase-3 countdown, got %d", cfg.Phase3Seconds)
	}
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(path, []byte("phase2_seconds: -5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Expected error for invalid tuning, got nil")
	}
}

func TestStartingAmountsUsesTypedKeys(t *testing.T) {
	cfg := Default()
	amounts := cfg.StartingAmounts()
	if amounts["MONEY"] != 50 {
		t.Errorf("Expected 50 starting money, got %d", amounts["MONEY"])
	}
}
