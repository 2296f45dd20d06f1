// Package config loads the engine's tuning parameters from a YAML file.
// All gameplay constants live here so deployments can rebalance without
// rebuilding.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/teamfractal/roboticon-quest/server/internal/domain/resource"
)

// MarketEntry configures one tradeable resource at the market.
type MarketEntry struct {
	Stock     int `yaml:"stock"`
	BasePrice int `yaml:"base_price"`
}

// TileYield configures the base per-phase output of every tile.
type TileYield struct {
	Ore    int `yaml:"ore"`
	Energy int `yaml:"energy"`
	Food   int `yaml:"food"`
}

// Tuning holds every gameplay constant the engine consumes.
type Tuning struct {
	Phase2Seconds   int `yaml:"phase2_seconds"`
	Phase3Seconds   int `yaml:"phase3_seconds"`
	TradeTTLSeconds int `yaml:"trade_ttl_seconds"`

	MaxRoboticonLevel int   `yaml:"max_roboticon_level"`
	UpgradeCosts      []int `yaml:"upgrade_costs"` // indexed by current level - 1

	TileYield      TileYield              `yaml:"tile_yield"`
	Market         map[string]MarketEntry `yaml:"market"`          // keyed by resource kind
	MarketMoney    int                    `yaml:"market_money"`    // opening money pool
	StartingLedger map[string]int         `yaml:"starting_ledger"` // keyed by resource kind

	// RandomSeed pins the effect/AI RNG for reproducible games. 0 seeds
	// from the clock.
	RandomSeed int64 `yaml:"random_seed"`
}

// Default returns the stock tuning used when no file is supplied.
func Default() *Tuning {
	return &Tuning{
		Phase2Seconds:     30,
		Phase3Seconds:     45,
		TradeTTLSeconds:   3,
		MaxRoboticonLevel: 3,
		UpgradeCosts:      []int{10, 20},
		TileYield:         TileYield{Ore: 5, Energy: 5, Food: 5},
		Market: map[string]MarketEntry{
			string(resource.Ore):       {Stock: 16, BasePrice: 5},
			string(resource.Energy):    {Stock: 16, BasePrice: 6},
			string(resource.Food):      {Stock: 16, BasePrice: 6},
			string(resource.Roboticon): {Stock: 12, BasePrice: 10},
		},
		MarketMoney: 100,
		StartingLedger: map[string]int{
			string(resource.Money): 50,
		},
	}
}

// Load reads a tuning file and validates it.
func Load(path string) (*Tuning, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	t := Default()
	if err := yaml.Unmarshal(raw, t); err != nil {
		return nil, fmt.Errorf("tuning file %s: %w", path, err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks the invariants the engine depends on. A failure here is
// fatal at startup.
func (t *Tuning) Validate() error {
	if t.Phase2Seconds <= 0 || t.Phase3Seconds <= 0 {
		return fmt.Errorf("phase countdowns must be positive")
	}
	if t.TradeTTLSeconds <= 0 {
		return fmt.Errorf("trade_ttl_seconds must be positive")
	}
	if t.MaxRoboticonLevel < 1 {
		return fmt.Errorf("max_roboticon_level must be at least 1")
	}
	if len(t.UpgradeCosts) < t.MaxRoboticonLevel-1 {
		return fmt.Errorf("upgrade_costs needs %d tiers for max level %d",
			t.MaxRoboticonLevel-1, t.MaxRoboticonLevel)
	}
	for i, cost := range t.UpgradeCosts {
		if cost <= 0 {
			return fmt.Errorf("upgrade cost tier %d must be positive", i)
		}
		if i > 0 && cost < t.UpgradeCosts[i-1] {
			return fmt.Errorf("upgrade costs must not decrease with level")
		}
	}
	for _, k := range resource.TradeableKinds {
		entry, ok := t.Market[string(k)]
		if !ok {
			return fmt.Errorf("market entry missing for %s", k)
		}
		if entry.Stock < 0 || entry.BasePrice < 1 {
			return fmt.Errorf("market entry for %s: stock must be >= 0, base price >= 1", k)
		}
	}
	if t.MarketMoney < 0 {
		return fmt.Errorf("market_money must not be negative")
	}
	for name, amount := range t.StartingLedger {
		if !resource.Valid(resource.Kind(name)) {
			return fmt.Errorf("starting ledger names unknown resource %q", name)
		}
		if amount < 0 {
			return fmt.Errorf("starting ledger amount for %s must not be negative", name)
		}
	}
	return nil
}

// Phase2Duration returns the phase-2 countdown.
func (t *Tuning) Phase2Duration() time.Duration {
	return time.Duration(t.Phase2Seconds) * time.Second
}

// Phase3Duration returns the phase-3 countdown.
func (t *Tuning) Phase3Duration() time.Duration {
	return time.Duration(t.Phase3Seconds) * time.Second
}

// TradeTTL returns how long a submitted trade stays pending.
func (t *Tuning) TradeTTL() time.Duration {
	return time.Duration(t.TradeTTLSeconds) * time.Second
}

// StartingAmounts converts the starting ledger to typed keys.
func (t *Tuning) StartingAmounts() map[resource.Kind]int {
	out := make(map[resource.Kind]int, len(t.StartingLedger))
	for name, amount := range t.StartingLedger {
		out[resource.Kind(name)] = amount
	}
	return out
}
