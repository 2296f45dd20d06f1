// Package roboticon defines the production-unit entity deployed on tiles.
// This package is PURE and must NOT import any infrastructure packages.
package roboticon

import (
	"github.com/teamfractal/roboticon-quest/server/internal/domain/resource"
)

// DefaultMaxLevel caps each per-resource upgrade counter.
const DefaultMaxLevel = 3

// Roboticon is a deployed production unit. Each yield resource has an
// independent level; the level is the output multiplier for that resource.
// A fresh unit starts at level 1, reproducing the tile's base yield.
type Roboticon struct {
	ID      int                   `json:"id"` // globally unique, monotonically increasing
	OwnerID int                   `json:"owner_id"`
	TileID  int                   `json:"tile_id"`
	Levels  map[resource.Kind]int `json:"levels"`
}

// New creates a fresh unit bound to a player and tile, all levels at 1.
func New(id, ownerID, tileID int) *Roboticon {
	levels := make(map[resource.Kind]int, len(resource.YieldKinds))
	for _, k := range resource.YieldKinds {
		levels[k] = 1
	}
	return &Roboticon{ID: id, OwnerID: ownerID, TileID: tileID, Levels: levels}
}

// Level returns the upgrade level for a yield kind (0 for non-yield kinds).
func (r *Roboticon) Level(k resource.Kind) int {
	return r.Levels[k]
}

// CanUpgrade reports whether the level for k is below the given cap.
func (r *Roboticon) CanUpgrade(k resource.Kind, maxLevel int) bool {
	if !resource.IsYield(k) {
		return false
	}
	return r.Levels[k] < maxLevel
}

// Upgrade increments the level for k. The caller guards the cap and cost.
func (r *Roboticon) Upgrade(k resource.Kind) {
	r.Levels[k]++
}
