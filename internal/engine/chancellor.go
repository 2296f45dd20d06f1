package engine

// Chancellor is the hook surface for the catch-the-chancellor minigame.
// The engine only signals when the window opens and closes; the minigame
// itself runs outside the engine.
type Chancellor interface {
	// Activate opens the minigame window for the given player's
	// placement turn.
	Activate(playerID int)
	// Deactivate closes the window when the turn ends.
	Deactivate()
}

// nopChancellor is the default hook when no minigame is attached.
type nopChancellor struct{}

func (nopChancellor) Activate(int) {}
func (nopChancellor) Deactivate()  {}
