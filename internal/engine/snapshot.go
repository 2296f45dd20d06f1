package engine

import (
	"time"

	"github.com/teamfractal/roboticon-quest/server/internal/domain/college"
	"github.com/teamfractal/roboticon-quest/server/internal/domain/resource"
	"github.com/teamfractal/roboticon-quest/server/internal/domain/tile"
)

// PlayerView is a read-only copy of one player's public state.
type PlayerView struct {
	ID          int             `json:"id"`
	CollegeID   int             `json:"college_id"`
	CollegeName string          `json:"college_name"`
	IsAI        bool            `json:"is_ai"`
	Ledger      resource.Ledger `json:"ledger"`
	TileIDs     []int           `json:"tile_ids"`
}

// RoboticonView is a read-only copy of a deployed unit.
type RoboticonView struct {
	ID      int                   `json:"id"`
	OwnerID int                   `json:"owner_id"`
	Levels  map[resource.Kind]int `json:"levels"`
}

// TileView is a read-only copy of one board tile.
type TileView struct {
	ID        int            `json:"id"`
	Yield     tile.Yield     `json:"yield"`
	OwnerID   int            `json:"owner_id"`
	Roboticon *RoboticonView `json:"roboticon,omitempty"`
}

// StateSnapshot aggregates everything a client needs to render the game.
type StateSnapshot struct {
	Initialized   bool         `json:"initialized"`
	Phase         int          `json:"phase"`
	CurrentPlayer int          `json:"current_player"`
	Paused        bool         `json:"paused"`
	Ended         bool         `json:"ended"`
	Winner        int          `json:"winner"` // -1 until the game ends
	Players       []PlayerView `json:"players"`
	Tiles         []TileView   `json:"tiles"`
	Market        []Quote      `json:"market"`
	MarketMoney   int          `json:"market_money"`
}

// Phase returns the current phase (1..5), or 0 before initialization.
func (e *Engine) Phase() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialized {
		return 0
	}
	return e.phase
}

// CurrentPlayerID returns the player whose turn it is.
func (e *Engine) CurrentPlayerID() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialized {
		return -1
	}
	return e.players[e.currentIdx].ID
}

// Paused reports whether play is frozen.
func (e *Engine) Paused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.paused
}

// Ended reports whether the game has finished.
func (e *Engine) Ended() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ended
}

// Winner returns the winning player once the game has ended.
func (e *Engine) Winner() (int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.ended {
		return -1, false
	}
	return e.winnerID, true
}

// CountdownRemaining reports how much of the phase countdown is left. Zero
// outside phases 2 and 3.
func (e *Engine) CountdownRemaining() time.Duration {
	return e.timer.Remaining()
}

// PlayerSnapshot returns one player's view.
func (e *Engine) PlayerSnapshot(id int) (PlayerView, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	p := e.playerByID(id)
	if p == nil {
		return PlayerView{}, false
	}
	return e.playerViewLocked(id), true
}

// Players returns every player's view in id order.
func (e *Engine) Players() []PlayerView {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]PlayerView, 0, len(e.players))
	for _, p := range e.players {
		out = append(out, e.playerViewLocked(p.ID))
	}
	return out
}

// Tiles returns the full board.
func (e *Engine) Tiles() []TileView {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tileViewsLocked()
}

// MarketQuotes returns the current stock and prices per tradeable kind.
func (e *Engine) MarketQuotes() []Quote {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.market == nil {
		return nil
	}
	return e.market.Quotes()
}

// MarketMoney returns the market's money pool balance.
func (e *Engine) MarketMoney() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.market == nil {
		return 0
	}
	return e.market.Money()
}

// PendingTrades returns the trades awaiting the given player's decision.
// Expired trades are dropped first.
func (e *Engine) PendingTrades(playerID int) []Trade {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.trades == nil {
		return nil
	}
	e.expireTradesLocked()
	out := []Trade{}
	for _, t := range e.trades.pendingFor(playerID) {
		out = append(out, *t)
	}
	return out
}

// Snapshot returns the aggregated client view of the whole game.
func (e *Engine) Snapshot() StateSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := StateSnapshot{
		Initialized:   e.initialized,
		CurrentPlayer: -1,
		Winner:        e.winnerID,
		Paused:        e.paused,
		Ended:         e.ended,
	}
	if !e.initialized {
		return s
	}
	s.Phase = e.phase
	s.CurrentPlayer = e.players[e.currentIdx].ID
	for _, p := range e.players {
		s.Players = append(s.Players, e.playerViewLocked(p.ID))
	}
	s.Tiles = e.tileViewsLocked()
	s.Market = e.market.Quotes()
	s.MarketMoney = e.market.Money()
	return s
}

func (e *Engine) playerViewLocked(id int) PlayerView {
	p := e.playerByID(id)
	c, _ := college.Get(p.CollegeID)
	tiles := make([]int, len(p.TileIDs))
	copy(tiles, p.TileIDs)
	return PlayerView{
		ID:          p.ID,
		CollegeID:   p.CollegeID,
		CollegeName: c.Name,
		IsAI:        p.IsAI,
		Ledger:      p.Ledger.Clone(),
		TileIDs:     tiles,
	}
}

func (e *Engine) tileViewsLocked() []TileView {
	out := make([]TileView, 0, len(e.tiles))
	for _, t := range e.tiles {
		v := TileView{ID: t.ID, Yield: t.Yield, OwnerID: t.OwnerID}
		if t.HasRoboticon() {
			levels := make(map[resource.Kind]int, len(t.Roboticon.Levels))
			for k, lvl := range t.Roboticon.Levels {
				levels[k] = lvl
			}
			v.Roboticon = &RoboticonView{ID: t.Roboticon.ID, OwnerID: t.Roboticon.OwnerID, Levels: levels}
		}
		out = append(out, v)
	}
	return out
}
