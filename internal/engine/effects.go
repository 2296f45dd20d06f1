package engine

import (
	"github.com/teamfractal/roboticon-quest/server/internal/domain/player"
	"github.com/teamfractal/roboticon-quest/server/internal/domain/resource"
)

// EffectCategory splits the random-event deck in two: plot effects bend the
// board's production and are undone before the next draw, player effects hit
// one ledger once and stand.
type EffectCategory string

const (
	EffectPlot   EffectCategory = "PLOT"
	EffectPlayer EffectCategory = "PLAYER"
)

// Effect is one entry in the random-event deck. Plot effects must carry a
// Revert; player effects must not.
type Effect struct {
	Name        string
	Description string
	Category    EffectCategory
	Apply       func(e *Engine, target *player.Player)
	Revert      func(e *Engine)
}

// validateEffects enforces the deck invariants at setup.
func validateEffects(deck []Effect) error {
	for _, eff := range deck {
		if eff.Apply == nil {
			return refuse(ReasonInvalidConfiguration, "effect %q has no apply", eff.Name)
		}
		switch eff.Category {
		case EffectPlot:
			if eff.Revert == nil {
				return refuse(ReasonInvalidConfiguration, "plot effect %q has no revert", eff.Name)
			}
		case EffectPlayer:
			if eff.Revert != nil {
				return refuse(ReasonInvalidConfiguration, "player effect %q must not revert", eff.Name)
			}
		default:
			return refuse(ReasonInvalidConfiguration, "effect %q has unknown category %q", eff.Name, eff.Category)
		}
	}
	return nil
}

// DefaultEffects returns the built-in deck. Plot effects adjust the global
// yield bonus the production step folds in; player effects touch the target's
// ledger directly.
func DefaultEffects() []Effect {
	plotBonus := func(k resource.Kind, delta int) (func(*Engine, *player.Player), func(*Engine)) {
		apply := func(e *Engine, _ *player.Player) {
			e.yieldBonus[k] += delta
		}
		revert := func(e *Engine) {
			e.yieldBonus[k] -= delta
		}
		return apply, revert
	}

	oreApply, oreRevert := plotBonus(resource.Ore, 3)
	powerApply, powerRevert := plotBonus(resource.Energy, -2)
	harvestApply, harvestRevert := plotBonus(resource.Food, 3)

	return []Effect{
		{
			Name:        "ore_rush",
			Description: "A rich seam surfaces: every tile yields 3 extra ore.",
			Category:    EffectPlot,
			Apply:       oreApply,
			Revert:      oreRevert,
		},
		{
			Name:        "power_outage",
			Description: "Grid failure: every tile yields 2 less energy.",
			Category:    EffectPlot,
			Apply:       powerApply,
			Revert:      powerRevert,
		},
		{
			Name:        "bumper_harvest",
			Description: "Perfect weather: every tile yields 3 extra food.",
			Category:    EffectPlot,
			Apply:       harvestApply,
			Revert:      harvestRevert,
		},
		{
			Name:        "government_grant",
			Description: "The Vice-Chancellor smiles on you: +20 money.",
			Category:    EffectPlayer,
			Apply: func(_ *Engine, target *player.Player) {
				target.Ledger.Credit(resource.Money, 20)
			},
		},
		{
			Name:        "surplus_roboticon",
			Description: "A crate falls off a lorry: +1 roboticon.",
			Category:    EffectPlayer,
			Apply: func(_ *Engine, target *player.Player) {
				target.Ledger.Credit(resource.Roboticon, 1)
			},
		},
		{
			Name:        "tax_audit",
			Description: "The auditors come knocking: up to 10 money seized.",
			Category:    EffectPlayer,
			Apply: func(_ *Engine, target *player.Player) {
				seize := 10
				if held := target.Ledger.Amount(resource.Money); held < seize {
					seize = held
				}
				target.Ledger.Spend(resource.Money, seize)
			},
		},
	}
}
