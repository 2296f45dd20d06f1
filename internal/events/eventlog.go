// Package events provides the append-only audit log of the game.
// Every state-changing command lands here before the engine reports
// success, so a finished game can be reviewed action by action.
package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType defines the category of a game event.
type EventType string

const (
	EventTypeGameInitialized   EventType = "GAME_INITIALIZED"
	EventTypePhaseAdvanced     EventType = "PHASE_ADVANCED"
	EventTypeTileClaimed       EventType = "TILE_CLAIMED"
	EventTypeRoboticonDeployed EventType = "ROBOTICON_DEPLOYED"
	EventTypeRoboticonUpgraded EventType = "ROBOTICON_UPGRADED"
	EventTypeMarketBuy         EventType = "MARKET_BUY"
	EventTypeMarketSell        EventType = "MARKET_SELL"
	EventTypeTradeSubmitted    EventType = "TRADE_SUBMITTED"
	EventTypeTradeAccepted     EventType = "TRADE_ACCEPTED"
	EventTypeTradeRejected     EventType = "TRADE_REJECTED"
	EventTypeTradeExpired      EventType = "TRADE_EXPIRED"
	EventTypeResourcesProduced EventType = "RESOURCES_PRODUCED"
	EventTypeEffectApplied     EventType = "EFFECT_APPLIED"
	EventTypeEffectsReverted   EventType = "EFFECTS_REVERTED"
	EventTypeGamePaused        EventType = "GAME_PAUSED"
	EventTypeGameResumed       EventType = "GAME_RESUMED"
	EventTypeGameEnded         EventType = "GAME_ENDED"
)

// GameEvent represents an immutable record of an action in the game.
type GameEvent struct {
	ID        string      `json:"id"`
	Timestamp time.Time   `json:"timestamp"`
	Type      EventType   `json:"type"`
	ActorID   string      `json:"actor_id"`  // Who performed the action
	TargetID  string      `json:"target_id"` // Who was affected (optional)
	Payload   interface{} `json:"payload"`   // Event-specific data
	Phase     int         `json:"phase"`     // Phase the game was in
}

// EventPersister defines how an event is durably stored.
type EventPersister interface {
	Append(event GameEvent) error
}

// EventLog is the in-memory append-only log of game events.
type EventLog struct {
	mu        sync.RWMutex
	events    []GameEvent
	persister EventPersister
}

// NewEventLog creates a new event log with an optional persister.
func NewEventLog(persister EventPersister) *EventLog {
	return &EventLog{
		events:    make([]GameEvent, 0),
		persister: persister,
	}
}

// Append adds a new event to the log. Events are immutable once appended.
func (el *EventLog) Append(event GameEvent) {
	el.mu.Lock()
	defer el.mu.Unlock()
	el.events = append(el.events, event)

	if el.persister != nil {
		// Write through to persistent storage
		go func(e GameEvent) {
			_ = el.persister.Append(e)
		}(event)
	}
}

// GetByActor returns all events performed by a specific actor.
func (el *EventLog) GetByActor(actorID string) []GameEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()

	var result []GameEvent
	for _, e := range el.events {
		if e.ActorID == actorID {
			result = append(result, e)
		}
	}
	return result
}

// GetByType returns all events of a specific category.
func (el *EventLog) GetByType(t EventType) []GameEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()

	var result []GameEvent
	for _, e := range el.events {
		if e.Type == t {
			result = append(result, e)
		}
	}
	return result
}

// History returns the full ordered log for review.
func (el *EventLog) History() []GameEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()
	out := make([]GameEvent, len(el.events))
	copy(out, el.events)
	return out
}

// Len reports how many events have been recorded.
func (el *EventLog) Len() int {
	el.mu.RLock()
	defer el.mu.RUnlock()
	return len(el.events)
}

// GenerateEventID creates a unique event identifier.
func GenerateEventID() string {
	return uuid.NewString()
}
