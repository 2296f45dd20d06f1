package rules

import (
	"testing"

	"github.com/teamfractal/roboticon-quest/server/internal/domain/player"
	"github.com/teamfractal/roboticon-quest/server/internal/domain/resource"
)

func closingPrices() map[resource.Kind]int {
	return map[resource.Kind]int{
		resource.Ore:       4,
		resource.Energy:    5,
		resource.Food:      5,
		resource.Roboticon: 9,
	}
}

func TestScoreComposition(t *testing.T) {
	p := player.New(0, 0, false, map[resource.Kind]int{resource.Money: 30})
	p.Ledger.Credit(resource.Ore, 2)
	p.Ledger.Credit(resource.Food, 1)
	p.Ledger.Credit(resource.Roboticon, 1)
	p.AssignTile(4)
	p.AssignTile(9)

	// 30 money + 2*4 ore + 1*5 food + 1*9 roboticon + 2*10 tiles
	want := 30 + 8 + 5 + 9 + 20
	if got := Score(p, closingPrices()); got != want {
		t.Errorf("Expected score %d, got %d", want, got)
	}
}

func TestWinnerPicksHighestScore(t *testing.T) {
	a := player.New(0, 0, false, map[resource.Kind]int{resource.Money: 10})
	b := player.New(1, 1, false, map[resource.Kind]int{resource.Money: 90})
	c := player.New(2, 2, true, map[resource.Kind]int{resource.Money: 40})

	if got := Winner([]*player.Player{a, b, c}, closingPrices()); got != 1 {
		t.Errorf("Expected winner 1, got %d", got)
	}
}

func TestWinnerTieResolvesToEarliestPlayer(t *testing.T) {
	a := player.New(0, 0, false, map[resource.Kind]int{resource.Money: 50})
	b := player.New(1, 1, false, map[resource.Kind]int{resource.Money: 50})

	if got := Winner([]*player.Player{a, b}, closingPrices()); got != 0 {
		t.Errorf("Expected tie to resolve to player 0, got %d", got)
	}
}
