package engine

import (
	"sync"
	"time"
)

// phaseTimer drives the phase-2 and phase-3 countdowns. Pausing stops the
// underlying timer and banks the exact remaining duration; resuming restarts
// with that remainder, no rounding or padding.
type phaseTimer struct {
	mu        sync.Mutex
	timer     *time.Timer
	fire      func()
	deadline  time.Time
	remaining time.Duration
	running   bool
	paused    bool
	gen       uint64
}

func newPhaseTimer() *phaseTimer {
	return &phaseTimer{}
}

// Start arms the countdown. Any previous countdown is discarded.
func (t *phaseTimer) Start(d time.Duration, fire func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
	t.gen++
	t.fire = fire
	t.paused = false
	t.armLocked(d)
}

// Pause freezes the countdown, preserving the remaining duration.
func (t *phaseTimer) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running || t.paused {
		return
	}
	t.remaining = time.Until(t.deadline)
	if t.remaining < 0 {
		t.remaining = 0
	}
	t.stopLocked()
	t.paused = true
}

// Resume rearms the countdown with the banked remainder.
func (t *phaseTimer) Resume() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.paused {
		return
	}
	t.paused = false
	t.gen++
	t.armLocked(t.remaining)
}

// Stop discards the countdown entirely.
func (t *phaseTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
	t.paused = false
	t.gen++
}

// Remaining reports how much countdown is left, whether running or paused.
func (t *phaseTimer) Remaining() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.paused {
		return t.remaining
	}
	if !t.running {
		return 0
	}
	r := time.Until(t.deadline)
	if r < 0 {
		r = 0
	}
	return r
}

func (t *phaseTimer) armLocked(d time.Duration) {
	g := t.gen
	t.deadline = time.Now().Add(d)
	t.running = true
	t.timer = time.AfterFunc(d, func() {
		t.mu.Lock()
		stale := t.gen != g
		if !stale {
			t.running = false
		}
		fire := t.fire
		t.mu.Unlock()
		if !stale && fire != nil {
			fire()
		}
	})
}

func (t *phaseTimer) stopLocked() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.running = false
}
