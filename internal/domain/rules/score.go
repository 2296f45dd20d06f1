// Package rules contains the pure calculation logic for game mechanics.
// This package is PURE and must NOT import any infrastructure packages.
package rules

import (
	"github.com/teamfractal/roboticon-quest/server/internal/domain/player"
	"github.com/teamfractal/roboticon-quest/server/internal/domain/resource"
)

// Value a tile contributes to the final score, over and above whatever its
// production has already banked into the ledger.
const tilePoints = 10

// Score computes a player's final standing: money, held resources valued at
// the market's closing sell prices, and a flat bonus per owned tile.
func Score(p *player.Player, sellPrices map[resource.Kind]int) int {
	score := p.Ledger.Amount(resource.Money)
	for _, k := range resource.YieldKinds {
		score += p.Ledger.Amount(k) * sellPrices[k]
	}
	score += p.RoboticonInventory() * sellPrices[resource.Roboticon]
	score += len(p.TileIDs) * tilePoints
	return score
}

// Winner returns the ID of the highest-scoring player. Ties resolve to the
// earliest player in the given order (lowest ID when passed in ID order).
func Winner(players []*player.Player, sellPrices map[resource.Kind]int) int {
	best := -1
	bestScore := 0
	for _, p := range players {
		s := Score(p, sellPrices)
		if best == -1 || s > bestScore {
			best = p.ID
			bestScore = s
		}
	}
	return best
}
