// Package player defines the core domain entity for game participants.
// This package is PURE and must NOT import any infrastructure packages
// (network, events, platform).
package player

import (
	"github.com/teamfractal/roboticon-quest/server/internal/domain/resource"
)

// Player represents one participant, human or AI.
type Player struct {
	ID        int             `json:"id"`
	CollegeID int             `json:"college_id"`
	IsAI      bool            `json:"is_ai"`
	Ledger    resource.Ledger `json:"ledger"`

	// TileIDs lists the tiles this player has claimed, in claim order.
	TileIDs []int `json:"tile_ids"`

	// HasClaimed marks that a tile was acquired during the current
	// phase-1 visit. Cleared when the player's next visit begins.
	HasClaimed bool `json:"has_claimed"`
}

// New creates a player with the given starting ledger.
// The college is bound once at setup and never reassigned.
func New(id, collegeID int, isAI bool, starting map[resource.Kind]int) *Player {
	return &Player{
		ID:        id,
		CollegeID: collegeID,
		IsAI:      isAI,
		Ledger:    resource.NewLedger(starting),
		TileIDs:   []int{},
	}
}

// AssignTile records ownership of a tile.
func (p *Player) AssignTile(tileID int) {
	p.TileIDs = append(p.TileIDs, tileID)
}

// OwnsTile reports whether the player has claimed the given tile.
func (p *Player) OwnsTile(tileID int) bool {
	for _, id := range p.TileIDs {
		if id == tileID {
			return true
		}
	}
	return false
}

// RoboticonInventory returns the count of purchased, undeployed roboticons.
func (p *Player) RoboticonInventory() int {
	return p.Ledger.Amount(resource.Roboticon)
}
