package engine

import (
	"testing"
	"time"

	"github.com/teamfractal/roboticon-quest/server/internal/domain/resource"
)

// tradeFixture walks a 2-human game to phase 5, where each player holds one
// tile's production (5 ore / 5 energy / 5 food) and 50 money.
func tradeFixture(t *testing.T) *Engine {
	t.Helper()
	e := newTestEngine(t, 2, 0, nil)
	advanceTo(t, e, PhaseAuction)
	return e
}

func TestTradeAcceptTransfersBothWays(t *testing.T) {
	e := tradeFixture(t)

	id, err := e.SubmitTrade(1, map[resource.Kind]int{resource.Ore: 3}, 10)
	if err != nil {
		t.Fatalf("SubmitTrade: %v", err)
	}
	if len(e.PendingTrades(1)) != 1 {
		t.Fatalf("Expected 1 pending trade for player 1, got %d", len(e.PendingTrades(1)))
	}

	// The target resolves on their own turn.
	if err := e.AdvancePhase(); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if err := e.ResolveTrade(id, true); err != nil {
		t.Fatalf("ResolveTrade: %v", err)
	}

	p0, _ := e.PlayerSnapshot(0)
	p1, _ := e.PlayerSnapshot(1)
	if p0.Ledger.Amount(resource.Ore) != 2 || p0.Ledger.Amount(resource.Money) != 60 {
		t.Errorf("Seller: expected 2 ore / 60 money, got %d / %d",
			p0.Ledger.Amount(resource.Ore), p0.Ledger.Amount(resource.Money))
	}
	if p1.Ledger.Amount(resource.Ore) != 8 || p1.Ledger.Amount(resource.Money) != 40 {
		t.Errorf("Buyer: expected 8 ore / 40 money, got %d / %d",
			p1.Ledger.Amount(resource.Ore), p1.Ledger.Amount(resource.Money))
	}
	if len(e.PendingTrades(1)) != 0 {
		t.Error("Expected trade removed after resolution")
	}
}

func TestTradeRejectLeavesLedgersUntouched(t *testing.T) {
	e := tradeFixture(t)

	id, err := e.SubmitTrade(1, map[resource.Kind]int{resource.Food: 2}, 5)
	if err != nil {
		t.Fatalf("SubmitTrade: %v", err)
	}
	if err := e.AdvancePhase(); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if err := e.ResolveTrade(id, false); err != nil {
		t.Fatalf("ResolveTrade reject: %v", err)
	}

	p0, _ := e.PlayerSnapshot(0)
	p1, _ := e.PlayerSnapshot(1)
	if p0.Ledger.Amount(resource.Food) != 5 || p1.Ledger.Amount(resource.Money) != 50 {
		t.Error("Rejected trade must not move resources or money")
	}
	if len(e.PendingTrades(1)) != 0 {
		t.Error("Expected rejected trade removed")
	}
}

func TestTradeValidation(t *testing.T) {
	e := tradeFixture(t)

	// Offering more than held.
	if _, err := e.SubmitTrade(1, map[resource.Kind]int{resource.Ore: 99}, 1); ReasonOf(err) != ReasonInsufficientResources {
		t.Errorf("Expected INSUFFICIENT_RESOURCES, got %v", err)
	}
	// Money is not an offerable kind.
	if _, err := e.SubmitTrade(1, map[resource.Kind]int{resource.Money: 1}, 1); ReasonOf(err) != ReasonInvalidAction {
		t.Errorf("Expected INVALID_ACTION offering money, got %v", err)
	}
	// Self-trades and unknown targets.
	if _, err := e.SubmitTrade(0, map[resource.Kind]int{resource.Ore: 1}, 1); ReasonOf(err) != ReasonInvalidAction {
		t.Errorf("Expected INVALID_ACTION trading with self, got %v", err)
	}
	if _, err := e.SubmitTrade(9, map[resource.Kind]int{resource.Ore: 1}, 1); ReasonOf(err) != ReasonInvalidAction {
		t.Errorf("Expected INVALID_ACTION for unknown target, got %v", err)
	}
	// Empty offers.
	if _, err := e.SubmitTrade(1, map[resource.Kind]int{}, 1); ReasonOf(err) != ReasonInvalidAction {
		t.Errorf("Expected INVALID_ACTION for empty offer, got %v", err)
	}

	// One pending trade per pair.
	if _, err := e.SubmitTrade(1, map[resource.Kind]int{resource.Ore: 1}, 1); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if _, err := e.SubmitTrade(1, map[resource.Kind]int{resource.Energy: 1}, 1); ReasonOf(err) != ReasonDuplicatePendingTrade {
		t.Errorf("Expected DUPLICATE_PENDING_TRADE, got %v", err)
	}
}

func TestTradeResolveOnlyByTarget(t *testing.T) {
	e := tradeFixture(t)

	id, err := e.SubmitTrade(1, map[resource.Kind]int{resource.Ore: 1}, 1)
	if err != nil {
		t.Fatalf("SubmitTrade: %v", err)
	}
	// Player 0 is still current and is not the target.
	if err := e.ResolveTrade(id, true); ReasonOf(err) != ReasonInvalidAction {
		t.Errorf("Expected INVALID_ACTION resolving someone else's trade, got %v", err)
	}
}

func TestTradeBuyerCannotPayRemovesTrade(t *testing.T) {
	e := tradeFixture(t)

	id, err := e.SubmitTrade(1, map[resource.Kind]int{resource.Ore: 1}, 999)
	if err != nil {
		t.Fatalf("SubmitTrade: %v", err)
	}
	if err := e.AdvancePhase(); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if err := e.ResolveTrade(id, true); ReasonOf(err) != ReasonInsufficientResources {
		t.Fatalf("Expected INSUFFICIENT_RESOURCES, got %v", err)
	}
	if len(e.PendingTrades(1)) != 0 {
		t.Error("Unpayable trade must be removed")
	}
	p1, _ := e.PlayerSnapshot(1)
	if p1.Ledger.Amount(resource.Money) != 50 {
		t.Errorf("Failed resolution must not debit, money is %d", p1.Ledger.Amount(resource.Money))
	}
}

func TestTradeExpiresAfterTTL(t *testing.T) {
	e := tradeFixture(t)

	base := time.Now()
	e.now = func() time.Time { return base }

	id, err := e.SubmitTrade(1, map[resource.Kind]int{resource.Ore: 1}, 1)
	if err != nil {
		t.Fatalf("SubmitTrade: %v", err)
	}

	// Just inside the TTL the trade is still live.
	e.now = func() time.Time { return base.Add(2 * time.Second) }
	if got := len(e.PendingTrades(1)); got != 1 {
		t.Fatalf("Expected trade still pending at 2s, got %d", got)
	}

	// Past the 3 second TTL it is gone, and resolving it fails.
	e.now = func() time.Time { return base.Add(4 * time.Second) }
	if got := len(e.PendingTrades(1)); got != 0 {
		t.Fatalf("Expected trade expired at 4s, got %d pending", got)
	}
	if err := e.AdvancePhase(); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if err := e.ResolveTrade(id, true); ReasonOf(err) != ReasonInvalidAction {
		t.Errorf("Expected INVALID_ACTION resolving expired trade, got %v", err)
	}

	// The expired pair can submit again in the next round's phase 5.
	e.now = func() time.Time { return base.Add(5 * time.Second) }
	if err := e.AdvancePhase(); err != nil {
		t.Fatalf("advance out of phase 5: %v", err)
	}
	advanceTo(t, e, PhaseAuction)
	if _, err := e.SubmitTrade(1, map[resource.Kind]int{resource.Ore: 1}, 1); err != nil {
		t.Errorf("Expected resubmission after expiry to pass, got %v", err)
	}
}
