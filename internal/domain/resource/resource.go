// Package resource defines the closed set of resource kinds and the per-player
// ledger. This package is PURE and must NOT import any infrastructure packages
// (network, events, platform).
package resource

// Kind identifies one of the game's resource types.
type Kind string

const (
	Ore       Kind = "ORE"
	Energy    Kind = "ENERGY"
	Food      Kind = "FOOD"
	Money     Kind = "MONEY"
	Roboticon Kind = "ROBOTICON" // undeployed production units
)

// Kinds lists every resource kind.
var Kinds = []Kind{Ore, Energy, Food, Money, Roboticon}

// YieldKinds are the kinds a tile can yield and a roboticon can be upgraded for.
var YieldKinds = []Kind{Ore, Energy, Food}

// TradeableKinds are the kinds the market deals in. Roboticons are buy-only.
var TradeableKinds = []Kind{Ore, Energy, Food, Roboticon}

// Valid reports whether k is a member of the closed set.
func Valid(k Kind) bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// IsYield reports whether k is one of the three tile-yield kinds.
func IsYield(k Kind) bool {
	return k == Ore || k == Energy || k == Food
}

// Ledger maps resource kinds to held quantities. Quantities never go negative:
// Spend refuses before mutating.
type Ledger map[Kind]int

// NewLedger returns a ledger with every kind present at zero, overlaid with
// the given starting amounts.
func NewLedger(starting map[Kind]int) Ledger {
	l := make(Ledger, len(Kinds))
	for _, k := range Kinds {
		l[k] = 0
	}
	for k, n := range starting {
		l[k] = n
	}
	return l
}

// Amount returns the held quantity of k.
func (l Ledger) Amount(k Kind) int {
	return l[k]
}

// Credit adds n (n >= 0) of k to the ledger.
func (l Ledger) Credit(k Kind, n int) {
	if n < 0 {
		return
	}
	l[k] += n
}

// Spend removes n of k if the ledger holds at least that much.
// Returns false, leaving the ledger untouched, on a shortfall.
func (l Ledger) Spend(k Kind, n int) bool {
	if n < 0 || l[k] < n {
		return false
	}
	l[k] -= n
	return true
}

// Clone returns an independent copy, for snapshotting.
func (l Ledger) Clone() Ledger {
	c := make(Ledger, len(l))
	for k, n := range l {
		c[k] = n
	}
	return c
}
