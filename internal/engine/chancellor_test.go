package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/teamfractal/roboticon-quest/server/internal/platform/config"
)

// recordingChancellor captures the minigame window signals. The engine calls
// it from the timer goroutine too, so access is locked.
type recordingChancellor struct {
	mu            sync.Mutex
	activations   []int
	deactivations int
}

func (c *recordingChancellor) Activate(playerID int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.activations = append(c.activations, playerID)
}

func (c *recordingChancellor) Deactivate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deactivations++
}

func (c *recordingChancellor) log() ([]int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]int, len(c.activations))
	copy(out, c.activations)
	return out, c.deactivations
}

func TestChancellorWindowFollowsPlacementTurns(t *testing.T) {
	rec := &recordingChancellor{}
	cfg := config.Default()
	cfg.RandomSeed = 42
	e := NewEngine(cfg, nil, nil)
	e.SetEffects(nil)
	e.SetChancellor(rec)
	if err := e.Initialize(2, 0); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	advanceTo(t, e, PhasePurchase)
	if acts, _ := rec.log(); len(acts) != 0 {
		t.Fatalf("Window opened before phase 3: %v", acts)
	}

	// Player 0's placement turn opens the window for them.
	advanceTo(t, e, PhasePlacement)
	acts, deacts := rec.log()
	if len(acts) != 1 || acts[0] != 0 || deacts != 0 {
		t.Fatalf("Expected one activation for player 0, got %v / %d deactivations", acts, deacts)
	}

	// Ending the turn closes it and reopens it for player 1.
	if err := e.AdvancePhase(); err != nil {
		t.Fatalf("advance: %v", err)
	}
	acts, deacts = rec.log()
	if len(acts) != 2 || acts[1] != 1 || deacts != 1 {
		t.Fatalf("Expected activation for player 1 after one close, got %v / %d", acts, deacts)
	}

	// Leaving phase 3 closes the window without opening another.
	if err := e.AdvancePhase(); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if e.Phase() != PhaseProduction {
		t.Fatalf("Expected phase 4, got %d", e.Phase())
	}
	acts, deacts = rec.log()
	if len(acts) != 2 || deacts != 2 {
		t.Errorf("Expected window closed entering phase 4, got %v / %d", acts, deacts)
	}
}

func TestChancellorWindowClosesWhilePaused(t *testing.T) {
	rec := &recordingChancellor{}
	cfg := config.Default()
	cfg.RandomSeed = 42
	e := NewEngine(cfg, nil, nil)
	e.SetEffects(nil)
	e.SetChancellor(rec)
	if err := e.Initialize(2, 0); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	advanceTo(t, e, PhasePlacement)
	if err := e.Pause(); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	acts, deacts := rec.log()
	if deacts != 1 {
		t.Fatalf("Expected pause to close the window, got %d closes", deacts)
	}

	if err := e.Resume(); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	acts, deacts = rec.log()
	if len(acts) != 2 || acts[1] != 0 || deacts != 1 {
		t.Errorf("Expected resume to reopen the window for player 0, got %v / %d", acts, deacts)
	}
}

func TestChancellorWindowClosesOnCountdownExpiry(t *testing.T) {
	rec := &recordingChancellor{}
	cfg := config.Default()
	cfg.RandomSeed = 42
	cfg.Phase2Seconds = 1
	cfg.Phase3Seconds = 1
	e := NewEngine(cfg, nil, nil)
	e.SetEffects(nil)
	e.SetChancellor(rec)
	if err := e.Initialize(2, 0); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	advanceTo(t, e, PhasePurchase)
	// Both phase-2 and both phase-3 turns expire on their own.
	deadline := time.Now().Add(8 * time.Second)
	for e.Phase() != PhaseProduction {
		if time.Now().After(deadline) {
			t.Fatalf("Countdowns never reached phase 4, stuck at %d", e.Phase())
		}
		time.Sleep(50 * time.Millisecond)
	}

	acts, deacts := rec.log()
	if len(acts) != 2 || acts[0] != 0 || acts[1] != 1 {
		t.Errorf("Expected window opened for players 0 then 1, got %v", acts)
	}
	if deacts != 2 {
		t.Errorf("Expected both expiring turns to close the window, got %d", deacts)
	}
}
