// Package tile defines the domain entity for a map tile.
// This package is PURE and must NOT import any infrastructure packages.
package tile

import (
	"github.com/teamfractal/roboticon-quest/server/internal/domain/resource"
	"github.com/teamfractal/roboticon-quest/server/internal/domain/roboticon"
)

// Unowned marks a tile that no player has claimed yet.
const Unowned = -1

// Yield is a tile's base per-phase output.
type Yield struct {
	Ore    int `json:"ore"`
	Energy int `json:"energy"`
	Food   int `json:"food"`
}

// Of returns the yield amount for a single kind.
func (y Yield) Of(k resource.Kind) int {
	switch k {
	case resource.Ore:
		return y.Ore
	case resource.Energy:
		return y.Energy
	case resource.Food:
		return y.Food
	}
	return 0
}

// Tile represents one of the 16 fixed map plots.
type Tile struct {
	ID        int                  `json:"id"` // 1..16
	Yield     Yield                `json:"yield"`
	OwnerID   int                  `json:"owner_id"` // Unowned until claimed, set once
	Roboticon *roboticon.Roboticon `json:"roboticon,omitempty"`
}

// New creates an unclaimed tile with the given base yield.
func New(id int, y Yield) *Tile {
	return &Tile{ID: id, Yield: y, OwnerID: Unowned}
}

// Owned reports whether any player has claimed this tile.
func (t *Tile) Owned() bool {
	return t.OwnerID != Unowned
}

// Claim assigns ownership. Returns false if the tile is already owned;
// ownership is never transferred once set.
func (t *Tile) Claim(playerID int) bool {
	if t.Owned() {
		return false
	}
	t.OwnerID = playerID
	return true
}

// HasRoboticon reports whether a production unit is deployed here.
func (t *Tile) HasRoboticon() bool {
	return t.Roboticon != nil
}

// Attach binds a roboticon to the tile. At most one unit per tile.
func (t *Tile) Attach(r *roboticon.Roboticon) bool {
	if t.Roboticon != nil {
		return false
	}
	t.Roboticon = r
	return true
}
