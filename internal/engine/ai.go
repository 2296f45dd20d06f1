package engine

import (
	"github.com/teamfractal/roboticon-quest/server/internal/domain/resource"
)

// AIPolicy decides one AI turn. The policy is handed a Turn scoped to the
// acting player and the current phase; the engine advances the turn itself
// after the policy returns.
type AIPolicy func(t *Turn)

// Turn is the restricted command surface an AI policy acts through. The
// engine mutex is already held, so the methods delegate to the lock-free
// command cores.
type Turn struct {
	e *Engine
}

// Phase returns the phase the turn is in.
func (t *Turn) Phase() int {
	return t.e.phase
}

// PlayerID returns the acting player.
func (t *Turn) PlayerID() int {
	return t.e.players[t.e.currentIdx].ID
}

// Amount returns how much of k the acting player holds.
func (t *Turn) Amount(k resource.Kind) int {
	return t.e.players[t.e.currentIdx].Ledger.Amount(k)
}

// UnclaimedTiles lists the tiles nobody owns yet.
func (t *Turn) UnclaimedTiles() []int {
	var out []int
	for _, tl := range t.e.tiles {
		if !tl.Owned() {
			out = append(out, tl.ID)
		}
	}
	return out
}

// EmptyOwnedTiles lists the acting player's tiles without a roboticon.
func (t *Turn) EmptyOwnedTiles() []int {
	id := t.PlayerID()
	var out []int
	for _, tl := range t.e.tiles {
		if tl.OwnerID == id && !tl.HasRoboticon() {
			out = append(out, tl.ID)
		}
	}
	return out
}

// OccupiedOwnedTiles lists the acting player's tiles with a roboticon.
func (t *Turn) OccupiedOwnedTiles() []int {
	id := t.PlayerID()
	var out []int
	for _, tl := range t.e.tiles {
		if tl.OwnerID == id && tl.HasRoboticon() {
			out = append(out, tl.ID)
		}
	}
	return out
}

// BuyPrice quotes the next-unit buy price for k.
func (t *Turn) BuyPrice(k resource.Kind) int {
	return t.e.market.BuyPrice(k)
}

// ClaimTile claims an unowned tile. Unlike the public command, the turn
// does not auto-advance; the engine's AI loop handles that.
func (t *Turn) ClaimTile(tileID int) error {
	return t.e.claimTileLocked(tileID)
}

// BuyFromMarket purchases from the market for the acting player.
func (t *Turn) BuyFromMarket(k resource.Kind, qty int) error {
	return t.e.marketBuyLocked(k, qty)
}

// SellToMarket sells to the market for the acting player.
func (t *Turn) SellToMarket(k resource.Kind, qty int) error {
	return t.e.marketSellLocked(k, qty)
}

// Deploy places a roboticon from inventory onto an owned, empty tile.
func (t *Turn) Deploy(tileID int) error {
	return t.e.deployLocked(tileID)
}

// Upgrade raises one resource level on the unit at tileID.
func (t *Turn) Upgrade(tileID int, k resource.Kind) error {
	return t.e.upgradeLocked(tileID, k)
}

// PendingTrades lists the trades awaiting the acting player's decision.
func (t *Turn) PendingTrades() []Trade {
	out := []Trade{}
	for _, tr := range t.e.trades.pendingFor(t.PlayerID()) {
		out = append(out, *tr)
	}
	return out
}

// ResolveTrade accepts or rejects a trade addressed to the acting player.
func (t *Turn) ResolveTrade(tradeID string, accept bool) error {
	return t.e.resolveTradeLocked(tradeID, accept)
}

// DefaultAIPolicy is a greedy baseline: claim the first free tile, keep one
// roboticon in stock, deploy everywhere possible, upgrade ore when rich,
// sell surplus, and accept any trade it can pay for.
func DefaultAIPolicy(t *Turn) {
	switch t.Phase() {
	case PhaseAcquisition:
		if free := t.UnclaimedTiles(); len(free) > 0 {
			_ = t.ClaimTile(free[0])
		}
	case PhasePurchase:
		if t.Amount(resource.Roboticon) == 0 && t.Amount(resource.Money) >= t.BuyPrice(resource.Roboticon) {
			_ = t.BuyFromMarket(resource.Roboticon, 1)
		}
	case PhasePlacement:
		for _, tileID := range t.EmptyOwnedTiles() {
			if t.Amount(resource.Roboticon) == 0 {
				break
			}
			_ = t.Deploy(tileID)
		}
		if t.Amount(resource.Money) >= 40 {
			if occupied := t.OccupiedOwnedTiles(); len(occupied) > 0 {
				_ = t.Upgrade(occupied[0], resource.Ore)
			}
		}
	case PhaseAuction:
		for _, tr := range t.PendingTrades() {
			accept := t.Amount(resource.Money) >= tr.Price
			_ = t.ResolveTrade(tr.ID, accept)
		}
		for _, k := range resource.YieldKinds {
			if surplus := t.Amount(k); surplus > 0 {
				_ = t.SellToMarket(k, surplus)
			}
		}
	}
}
