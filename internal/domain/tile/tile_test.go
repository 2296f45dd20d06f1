package tile

import (
	"testing"

	"github.com/teamfractal/roboticon-quest/server/internal/domain/resource"
	"github.com/teamfractal/roboticon-quest/server/internal/domain/roboticon"
)

func TestClaimIsSetOnce(t *testing.T) {
	tl := New(3, Yield{Ore: 5, Energy: 5, Food: 5})
	if tl.Owned() {
		t.Fatal("Fresh tile reports owned")
	}
	if !tl.Claim(1) {
		t.Fatal("First claim refused")
	}
	if tl.Claim(2) {
		t.Fatal("Second claim succeeded")
	}
	if tl.OwnerID != 1 {
		t.Errorf("Ownership transferred: owner %d", tl.OwnerID)
	}
}

func TestAttachHoldsOneUnit(t *testing.T) {
	tl := New(1, Yield{Ore: 5})
	if tl.HasRoboticon() {
		t.Fatal("Fresh tile reports a roboticon")
	}
	if !tl.Attach(roboticon.New(1, 1, tl.ID)) {
		t.Fatal("First attach refused")
	}
	if tl.Attach(roboticon.New(2, 1, tl.ID)) {
		t.Fatal("Second attach succeeded")
	}
}

func TestYieldOf(t *testing.T) {
	y := Yield{Ore: 1, Energy: 2, Food: 3}
	if y.Of(resource.Ore) != 1 || y.Of(resource.Energy) != 2 || y.Of(resource.Food) != 3 {
		t.Error("Yield lookup returned wrong amounts")
	}
	if y.Of(resource.Money) != 0 {
		t.Error("Non-yield kind returned nonzero")
	}
}
