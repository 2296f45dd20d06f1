// Package storage provides the persistence layer for the game server.
// Only the event audit trail is persisted: the engine never reads game
// state back from here.
package storage

import (
	"context"
	"time"
)

// GameEvent mirrors the in-memory event structure for persistence.
// The domain packages do NOT import this; use interfaces instead.
type GameEvent struct {
	ID        string                 `json:"id" db:"id"`
	GameID    string                 `json:"game_id" db:"game_id"`
	Timestamp time.Time              `json:"timestamp" db:"timestamp"`
	EventType string                 `json:"event_type" db:"event_type"`
	ActorID   string                 `json:"actor_id" db:"actor_id"`
	TargetID  string                 `json:"target_id" db:"target_id"`
	Payload   map[string]interface{} `json:"payload" db:"payload"`
	Phase     int                    `json:"phase" db:"phase"`
}

// EventRepository defines the interface for event persistence.
type EventRepository interface {
	// Append adds a new event to the immutable ledger.
	Append(ctx context.Context, event GameEvent) error

	// GetByGameID retrieves all events for a specific game, oldest first.
	GetByGameID(ctx context.Context, gameID string) ([]GameEvent, error)

	// GetByActorID retrieves all events performed by a player.
	GetByActorID(ctx context.Context, gameID, actorID string) ([]GameEvent, error)

	// GetByPhase retrieves all events recorded during one phase number.
	GetByPhase(ctx context.Context, gameID string, phase int) ([]GameEvent, error)

	// GetByEventType retrieves all events of a specific type.
	GetByEventType(ctx context.Context, gameID string, eventType string) ([]GameEvent, error)
}
