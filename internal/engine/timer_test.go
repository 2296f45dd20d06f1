package engine

import (
	"testing"
	"time"
)

func TestPhaseTimerFires(t *testing.T) {
	pt := newPhaseTimer()
	fired := make(chan struct{})
	pt.Start(20*time.Millisecond, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("Timer never fired")
	}
	if r := pt.Remaining(); r != 0 {
		t.Errorf("Expected 0 remaining after firing, got %v", r)
	}
}

func TestPhaseTimerStopPreventsFire(t *testing.T) {
	pt := newPhaseTimer()
	fired := make(chan struct{}, 1)
	pt.Start(30*time.Millisecond, func() { fired <- struct{}{} })
	pt.Stop()

	select {
	case <-fired:
		t.Fatal("Stopped timer fired")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestPhaseTimerPausePreservesRemaining(t *testing.T) {
	pt := newPhaseTimer()
	fired := make(chan struct{})
	pt.Start(200*time.Millisecond, func() { close(fired) })

	time.Sleep(50 * time.Millisecond)
	pt.Pause()
	banked := pt.Remaining()
	if banked <= 0 || banked >= 200*time.Millisecond {
		t.Fatalf("Expected banked remainder inside (0, 200ms), got %v", banked)
	}

	// The banked remainder holds steady while paused.
	time.Sleep(100 * time.Millisecond)
	select {
	case <-fired:
		t.Fatal("Paused timer fired")
	default:
	}
	if got := pt.Remaining(); got != banked {
		t.Errorf("Remaining drifted while paused: %v != %v", got, banked)
	}

	pt.Resume()
	select {
	case <-fired:
	case <-time.After(1 * time.Second):
		t.Fatal("Resumed timer never fired")
	}
}

func TestPhaseTimerRestartDiscardsPrevious(t *testing.T) {
	pt := newPhaseTimer()
	first := make(chan struct{}, 1)
	second := make(chan struct{}, 1)
	pt.Start(30*time.Millisecond, func() { first <- struct{}{} })
	pt.Start(60*time.Millisecond, func() { second <- struct{}{} })

	select {
	case <-first:
		t.Fatal("Discarded countdown fired")
	case <-second:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("Replacement countdown never fired")
	}
}
